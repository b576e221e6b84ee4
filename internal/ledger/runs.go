package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a run ID matches nothing.
var ErrNotFound = errors.New("run not found")

const runColumns = "id, status, input_path, input_sha256, text_column, label_column, test_fraction, val_fraction, val_basis, seed, stratified, output_dir, rows_loaded, rows_cleaned, train_rows, val_rows, test_rows, error_message, started_at, finished_at"

// Begin records a new running entry. An empty run.ID is filled with a
// random UUID; StartedAt defaults to now. The stored run is returned.
func (s *Store) Begin(ctx context.Context, run Run) (*Run, error) {
	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = StatusRunning

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (
            id, status, input_path, input_sha256, text_column, label_column,
            test_fraction, val_fraction, val_basis, seed, stratified, output_dir, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Status,
		run.InputPath,
		nullableString(run.InputSHA256),
		run.TextColumn,
		run.LabelColumn,
		run.TestFraction,
		run.ValFraction,
		run.ValBasis,
		run.Seed,
		boolToInt(run.Stratified),
		run.OutputDir,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s.Get(ctx, run.ID)
}

// Complete marks a running entry completed with the final counts.
func (s *Store) Complete(ctx context.Context, id string, counts Counts) error {
	return s.finish(ctx, id, StatusCompleted, counts, "")
}

// Fail marks a running entry failed and stores the error message. Counts
// gathered before the failure are kept.
func (s *Store) Fail(ctx context.Context, id string, counts Counts, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return s.finish(ctx, id, StatusFailed, counts, msg)
}

func (s *Store) finish(ctx context.Context, id string, status Status, counts Counts, errMsg string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE runs
         SET status = ?, rows_loaded = ?, rows_cleaned = ?, train_rows = ?, val_rows = ?,
             test_rows = ?, error_message = ?, finished_at = ?
         WHERE id = ? AND status = ?`,
		status,
		counts.Loaded,
		counts.Cleaned,
		counts.Train,
		counts.Val,
		counts.Test,
		nullableString(errMsg),
		formatTime(time.Now()),
		id,
		StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: no running entry with id %s", ErrNotFound, id)
	}
	return nil
}

// Get fetches a run by ID. A unique ID prefix is accepted so the short IDs
// shown in tables and logs can be pasted back.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY id = ? DESC LIMIT 2`,
		id, stripWildcards(id)+"%", id,
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case found[0].ID == id || len(found) == 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// List returns the most recent runs first. A limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int, statuses ...Status) ([]*Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs`
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` ORDER BY started_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Stats returns a count of runs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		status      string
		inputSHA    sql.NullString
		stratified  int
		errorMsg    sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&status,
		&run.InputPath,
		&inputSHA,
		&run.TextColumn,
		&run.LabelColumn,
		&run.TestFraction,
		&run.ValFraction,
		&run.ValBasis,
		&run.Seed,
		&stratified,
		&run.OutputDir,
		&run.Counts.Loaded,
		&run.Counts.Cleaned,
		&run.Counts.Train,
		&run.Counts.Val,
		&run.Counts.Test,
		&errorMsg,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Status = Status(status)
	run.InputSHA256 = inputSHA.String
	run.Stratified = stratified != 0
	run.ErrorMessage = errorMsg.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func stripWildcards(value string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(value)
}
