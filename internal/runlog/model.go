package runlog

import (
	"context"
	"time"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is the operational record of one analysis attempt. It never holds document text.
type Run struct {
	ID              string    `json:"id"`
	RequestID       string    `json:"requestId,omitempty"`
	Status          string    `json:"status"`
	ErrorKind       string    `json:"errorKind,omitempty"`
	MatchPercentage float64   `json:"matchPercentage"`
	MatchedCount    int       `json:"matchedCount"`
	RequiredCount   int       `json:"requiredCount"`
	Provider        string    `json:"provider"`
	Model           string    `json:"model"`
	PromptVersion   string    `json:"promptVersion"`
	PromptHash      string    `json:"promptHash,omitempty"`
	DurationMs      float64   `json:"durationMs"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Repo persists run records.
type Repo interface {
	Record(ctx context.Context, run Run) error
	ListRecent(ctx context.Context, limit int) ([]Run, error)
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ClampLimit maps a requested page size into [1, MaxListLimit].
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
