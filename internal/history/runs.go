package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mediasort/internal/media"
	"mediasort/internal/oracle"
	"mediasort/internal/services"
)

// Run is one journaled planning run.
type Run struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Files     []string           `json:"files"`
	Category  media.Category     `json:"category,omitempty"`
	Reason    string             `json:"reason,omitempty"`
	Decided   bool               `json:"decided,omitempty"`
	Usage     oracle.Usage       `json:"usage"`
	Plan      []media.PlanAction `json:"plan"`
	Error     string             `json:"error,omitempty"`
}

const (
	defaultListLimit = 20
	// timeLayout is fixed-width so created_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Record inserts run. A zero CreatedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		return services.Wrap(services.ErrValidation, "history", "record", "run has no id", nil)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	files, err := json.Marshal(nonNil(run.Files))
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}
	usage, err := json.Marshal(run.Usage)
	if err != nil {
		return fmt.Errorf("encode usage: %w", err)
	}
	plan, err := json.Marshal(nonNil(run.Plan))
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO runs (id, created_at, files_json, category, reason, decided, usage_json, plan_json, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.CreatedAt.UTC().Format(timeLayout),
			string(files),
			string(run.Category),
			run.Reason,
			boolToInt(run.Decided),
			string(usage),
			string(plan),
			run.Error,
		)
		return err
	})
}

// List returns up to limit runs, newest first. A non-positive limit uses 20.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, files_json, category, reason, decided, usage_json, plan_json, error
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get loads one run by id, or a services.ErrNotFound error.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, files_json, category, reason, decided, usage_json, plan_json, error
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, services.Wrap(services.ErrNotFound, "history", "get", fmt.Sprintf("no run %q", id), nil)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run                   Run
		created, files, usage string
		plan, category        string
		decided               int
	)
	if err := row.Scan(&run.ID, &created, &files, &category, &run.Reason, &decided, &usage, &plan, &run.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	ts, err := time.Parse(timeLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at of %s: %w", run.ID, err)
	}
	run.CreatedAt = ts
	run.Category = media.Category(category)
	run.Decided = decided != 0
	if err := json.Unmarshal([]byte(files), &run.Files); err != nil {
		return Run{}, fmt.Errorf("decode files of %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(usage), &run.Usage); err != nil {
		return Run{}, fmt.Errorf("decode usage of %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(plan), &run.Plan); err != nil {
		return Run{}, fmt.Errorf("decode plan of %s: %w", run.ID, err)
	}
	return run, nil
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
