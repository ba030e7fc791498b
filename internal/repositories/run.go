package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/desertthunder/playlistinator/internal/shared"
)

// RunRepository implements [models.Repository] for [*models.Run].
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Run] = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// RunSummary aggregates the non-deleted history.
type RunSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Tracks    int `json:"tracks"`
}

const runColumns = `id, sequence, surface, success, message, track_count, duration_ms, created_at, deleted_at`

// Create inserts a run with a generated ID and the next sequence number
func (r *RunRepository) Create(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()

	var count any
	if n, ok := run.Result().TrackCount(); ok {
		count = n
	}

	query := `
		INSERT INTO runs (id, sequence, surface, success, message, track_count, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var sequence int
	err := withTx(r.db, func(tx *sql.Tx) error {
		var err error
		if sequence, err = NextSequence(tx, "runs"); err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		_, err = tx.Exec(query,
			id,
			sequence,
			string(run.Surface()),
			run.Success(),
			run.Message(),
			count,
			run.Duration().Milliseconds(),
			run.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return nil
}

// RecordRun stores a settled run; it lets the repository act as a tasks.Recorder.
func (r *RunRepository) RecordRun(run *models.Run) error {
	return r.Create(run)
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? AND deleted_at IS NULL`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return run, err
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

// List retrieves runs newest first.
//
// Supported criteria: "surface" (string or [models.Surface]), "success" (bool), "limit" (int > 0).
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL`
	args := []any{}

	switch surface := criteria["surface"].(type) {
	case string:
		if surface != "" {
			query += " AND surface = ?"
			args = append(args, surface)
		}
	case models.Surface:
		if surface != "" {
			query += " AND surface = ?"
			args = append(args, string(surface))
		}
	}

	if success, ok := criteria["success"].(bool); ok {
		query += " AND success = ?"
		args = append(args, success)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Summary counts non-deleted runs by outcome and sums the reported track counts.
func (r *RunRepository) Summary() (*RunSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(COALESCE(track_count, 0)), 0)
		FROM runs
		WHERE deleted_at IS NULL
	`

	var s RunSummary
	if err := r.db.QueryRow(query).Scan(&s.Total, &s.Succeeded, &s.Tracks); err != nil {
		return nil, fmt.Errorf("failed to summarize runs: %w", err)
	}
	s.Failed = s.Total - s.Succeeded
	return &s, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	var (
		id         string
		sequence   int
		surface    string
		success    bool
		message    string
		trackCount sql.NullInt64
		durationMS int64
		createdAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &surface, &success, &message, &trackCount, &durationMS, &createdAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	result := models.GenerationResult{Success: success, Message: message}
	if trackCount.Valid {
		n := int(trackCount.Int64)
		result.Count = &n
	}

	run := models.NewRun(models.Surface(surface), result, time.Duration(durationMS)*time.Millisecond)
	run.SetID(id)
	run.SetSequence(sequence)
	run.SetCreatedAt(createdAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
