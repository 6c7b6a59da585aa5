package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Client abstracts LLM providers for skill-match analysis.
type Client interface {
	AnalyzeMatch(ctx context.Context, input AnalyzeInput) (json.RawMessage, error)
}

// AnalyzeInput captures the inputs needed for one analysis.
type AnalyzeInput struct {
	ResumeText     string
	JobDescription string
	PromptVersion  string
}

var (
	// ErrTimeout marks a model call that ran out of time.
	ErrTimeout = errors.New("llm timeout")
	// ErrEmptyResponse marks a model answer with no content.
	ErrEmptyResponse = errors.New("llm empty response")
)

// StatusError is a non-2xx answer from a provider API.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Transient reports whether a retry may succeed.
func (e *StatusError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

type promptHashKey struct{}

// WithPromptHashCapture returns a context that receives the hash of the prompt sent.
func WithPromptHashCapture(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, promptHashKey{}, sink)
}

// PromptHashSinkFromContext returns the sink set by WithPromptHashCapture.
func PromptHashSinkFromContext(ctx context.Context) (*string, bool) {
	sink, ok := ctx.Value(promptHashKey{}).(*string)
	return sink, ok && sink != nil
}

// CapturePromptHash stores the prompt hash into the context sink, if any.
func CapturePromptHash(ctx context.Context, p Prompt) {
	if sink, ok := PromptHashSinkFromContext(ctx); ok {
		*sink = p.Hash()
	}
}
