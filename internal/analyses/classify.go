package analyses

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"

	"resume-matcher/internal/extract"
	"resume-matcher/internal/llm"
)

const messageAnalysisFailed = "analysis failed, please retry"

// Failure is the user-facing shape of an error.
type Failure struct {
	Status  int
	Code    string
	Message string
	Kind    string
	Details any
}

// Classify maps an error from Analyze or upload parsing to an HTTP status, code and message.
func Classify(err error) Failure {
	var (
		validationErr *ValidationError
		tooLargeErr   *UploadTooLargeError
		extractErr    *extract.ExtractionError
		schemaErr     *SchemaError
	)
	switch {
	case err == nil:
		return Failure{Status: http.StatusOK}
	case errors.As(err, &validationErr):
		return Failure{
			Status:  http.StatusBadRequest,
			Code:    "validation_error",
			Message: validationErr.Reason,
			Kind:    ErrorKindValidation,
			Details: []map[string]string{{"field": validationErr.Field, "issue": validationErr.Reason}},
		}
	case errors.As(err, &tooLargeErr):
		return Failure{
			Status:  http.StatusRequestEntityTooLarge,
			Code:    "upload_too_large",
			Message: fmt.Sprintf("file is larger than %s", humanize.IBytes(uint64(tooLargeErr.Limit))),
			Kind:    ErrorKindTooLarge,
			Details: []map[string]string{{"field": tooLargeErr.Field, "issue": "too_large"}},
		}
	case errors.As(err, &extractErr):
		return Failure{
			Status:  http.StatusUnprocessableEntity,
			Code:    "extraction_error",
			Message: "could not read file",
			Kind:    ErrorKindExtraction,
			Details: []map[string]string{{"field": extractErr.Field, "issue": extractErr.Reason}},
		}
	case errors.As(err, &schemaErr):
		return Failure{
			Status:  http.StatusBadGateway,
			Code:    "analysis_failed",
			Message: messageAnalysisFailed,
			Kind:    ErrorKindSchema,
		}
	case errors.Is(err, context.Canceled):
		return Failure{
			Status:  499,
			Code:    "canceled",
			Message: "request canceled",
			Kind:    ErrorKindCanceled,
		}
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return Failure{
			Status:  http.StatusGatewayTimeout,
			Code:    "analysis_timeout",
			Message: messageAnalysisFailed,
			Kind:    ErrorKindTimeout,
		}
	case errors.Is(err, ErrModelCall):
		return Failure{
			Status:  http.StatusBadGateway,
			Code:    "analysis_failed",
			Message: messageAnalysisFailed,
			Kind:    ErrorKindModel,
		}
	default:
		return Failure{
			Status:  http.StatusInternalServerError,
			Code:    "internal",
			Message: "Unexpected server error",
			Kind:    ErrorKindInternal,
		}
	}
}
