package runlog

import (
	"context"
	"sync"
)

const memoryCapacity = 500

// MemoryRepo keeps the most recent runs in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	runs []Run
	cap  int
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{cap: memoryCapacity}
}

// Record appends the run, evicting the oldest when full.
func (r *MemoryRepo) Record(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	if over := len(r.runs) - r.cap; over > 0 {
		r.runs = append(r.runs[:0:0], r.runs[over:]...)
	}
	return nil
}

// ListRecent returns runs newest first.
func (r *MemoryRepo) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = ClampLimit(limit)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Run, 0, min(limit, len(r.runs)))
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[i])
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
