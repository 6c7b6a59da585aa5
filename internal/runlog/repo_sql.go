package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"resume-matcher/internal/shared/storage/db"
)

// SQLRepo implements Repo on Postgres or SQLite.
type SQLRepo struct {
	DB      *sql.DB
	Dialect db.Dialect
}

// Record inserts a run.
func (r *SQLRepo) Record(ctx context.Context, run Run) error {
	query := r.rebind(`
INSERT INTO analysis_runs (
	id, request_id, status, error_kind, match_percentage, matched_count, required_count,
	provider, model, prompt_version, prompt_hash, duration_ms, created_at
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.RequestID,
		run.Status,
		run.ErrorKind,
		run.MatchPercentage,
		run.MatchedCount,
		run.RequiredCount,
		run.Provider,
		run.Model,
		run.PromptVersion,
		run.PromptHash,
		run.DurationMs,
		run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert analysis run: %w", err)
	}
	return nil
}

// ListRecent returns runs newest first.
func (r *SQLRepo) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	query := r.rebind(`
SELECT id, request_id, status, error_kind, match_percentage, matched_count, required_count,
	provider, model, prompt_version, prompt_hash, duration_ms, created_at
FROM analysis_runs
ORDER BY created_at DESC
LIMIT ?`)
	rows, err := r.DB.QueryContext(ctx, query, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list analysis runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID,
			&run.RequestID,
			&run.Status,
			&run.ErrorKind,
			&run.MatchPercentage,
			&run.MatchedCount,
			&run.RequiredCount,
			&run.Provider,
			&run.Model,
			&run.PromptVersion,
			&run.PromptHash,
			&run.DurationMs,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan analysis run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis runs: %w", err)
	}
	return out, nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (r *SQLRepo) rebind(query string) string {
	if r.Dialect != db.DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

var _ Repo = (*SQLRepo)(nil)
