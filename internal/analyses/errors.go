package analyses

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRequiredSkills means the model found no technical skills in the job description.
	ErrNoRequiredSkills = errors.New("could not identify any required technical skills")
	// ErrModelCall marks a failed call to the language model.
	ErrModelCall = errors.New("llm call failed")
)

const (
	ErrorKindValidation = "validation"
	ErrorKindTooLarge   = "upload_too_large"
	ErrorKindExtraction = "extraction"
	ErrorKindSchema     = "schema"
	ErrorKindTimeout    = "llm_timeout"
	ErrorKindModel      = "llm_error"
	ErrorKindCanceled   = "canceled"
	ErrorKindInternal   = "internal"
)

// SchemaError reports a model answer that does not match the expected shape.
type SchemaError struct {
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm output invalid: %s: %v", e.Reason, e.Err)
	}
	return "llm output invalid: " + e.Reason
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ValidationError reports a malformed request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation field=%s: %s", e.Field, e.Reason)
}

// UploadTooLargeError reports an upload over the configured size limit.
type UploadTooLargeError struct {
	Field string
	Limit int64
}

func (e *UploadTooLargeError) Error() string {
	return fmt.Sprintf("upload field=%s exceeds %d bytes", e.Field, e.Limit)
}
