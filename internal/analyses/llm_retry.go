package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/metrics"
)

const llmRetryBaseDelay = 300 * time.Millisecond

// retryingLLM bounds each model call with a timeout and retries once on transient failure.
type retryingLLM struct {
	base           llm.Client
	attemptTimeout time.Duration
	delay          time.Duration
	requestID      string
	runID          string
}

func newRetryingLLM(base llm.Client, attemptTimeout time.Duration, runID, requestID string) llm.Client {
	if base == nil {
		return nil
	}
	return retryingLLM{
		base:           base,
		attemptTimeout: attemptTimeout,
		delay:          llmRetryBaseDelay,
		requestID:      requestID,
		runID:          runID,
	}
}

func (r retryingLLM) AnalyzeMatch(ctx context.Context, input llm.AnalyzeInput) (json.RawMessage, error) {
	resp, err := r.attempt(ctx, input)
	if err == nil || !shouldRetryLLM(err) || ctx.Err() != nil {
		return resp, err
	}

	metrics.IncLLMRetry()
	log.Printf("llm retry attempt=1 request_id=%s run_id=%s error=%s", r.requestID, r.runID, sanitizeError(err))
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return r.attempt(ctx, input)
}

func (r retryingLLM) attempt(ctx context.Context, input llm.AnalyzeInput) (json.RawMessage, error) {
	if r.attemptTimeout <= 0 {
		return r.base.AnalyzeMatch(ctx, input)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()
	resp, err := r.base.AnalyzeMatch(attemptCtx, input)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, llm.ErrTimeout) {
		err = fmt.Errorf("%w after %s: %w", llm.ErrTimeout, r.attemptTimeout, err)
	}
	return resp, err
}

func shouldRetryLLM(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, llm.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "unexpected eof") {
		return true
	}

	return false
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
