package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pirtoo/extunes/internal/models"
	"github.com/pirtoo/extunes/internal/shared"
)

// RunRepository implements models.Repository[*models.Run] for run history.
//
// Every completed export run is recorded so the history command can show
// what past runs changed. Dry runs are recorded too, flagged as such.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, sequence, started_at, finished_at, dry_run, forced,
	playlists_exported, playlists_missing, playlists_ignored, playlists_empty,
	tracks_desired, tracks_copied, bytes_desired, bytes_copied,
	files_removed, dirs_removed, created_at, updated_at, deleted_at`

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = r.db.Exec(query,
		run.ID(),
		sequence,
		run.StartedAt(),
		run.FinishedAt(),
		run.DryRun(),
		run.Forced(),
		run.PlaylistsExported(),
		run.PlaylistsMissing(),
		run.PlaylistsIgnored(),
		run.PlaylistsEmpty(),
		run.TracksDesired(),
		run.TracksCopied(),
		run.BytesDesired(),
		run.BytesCopied(),
		run.FilesRemoved(),
		run.DirsRemoved(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `
		SELECT ` + runColumns + `
		FROM runs
		WHERE id = ? AND deleted_at IS NULL
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return run, err
}

// Update modifies an existing run in the database
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET finished_at = ?, tracks_copied = ?, bytes_copied = ?,
			files_removed = ?, dirs_removed = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.FinishedAt(),
		run.TracksCopied(),
		run.BytesCopied(),
		run.FilesRemoved(),
		run.DirsRemoved(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", run.ID())
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves runs matching the given criteria, newest first, excluding
// soft-deleted runs. Supported criteria: "dry_run" (bool), "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `
		SELECT ` + runColumns + `
		FROM runs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if dryRun, ok := criteria["dry_run"].(bool); ok {
		query += " AND dry_run = ?"
		args = append(args, dryRun)
	}

	query += " ORDER BY started_at DESC"

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

// scanner covers both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans one row into a [models.Run]
func scanRun(row scanner) (*models.Run, error) {
	var (
		id                string
		sequence          int
		startedAt         time.Time
		finishedAt        time.Time
		dryRun            bool
		forced            bool
		playlistsExported int
		playlistsMissing  int
		playlistsIgnored  int
		playlistsEmpty    int
		tracksDesired     int
		tracksCopied      int
		bytesDesired      int64
		bytesCopied       int64
		filesRemoved      int
		dirsRemoved       int
		createdAt         time.Time
		updatedAt         time.Time
		deletedAt         sql.NullTime
	)

	err := row.Scan(&id, &sequence, &startedAt, &finishedAt, &dryRun, &forced,
		&playlistsExported, &playlistsMissing, &playlistsIgnored, &playlistsEmpty,
		&tracksDesired, &tracksCopied, &bytesDesired, &bytesCopied,
		&filesRemoved, &dirsRemoved, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := &models.Run{}
	run.SetID(id)
	run.SetSequence(sequence)
	run.SetStartedAt(startedAt)
	run.SetFinishedAt(finishedAt)
	run.SetDryRun(dryRun)
	run.SetForced(forced)
	run.SetCounts(playlistsExported, playlistsMissing, playlistsIgnored, playlistsEmpty, tracksDesired, tracksCopied)
	run.SetBytes(bytesDesired, bytesCopied)
	run.SetRemovals(filesRemoved, dirsRemoved)
	run.SetTimestamps(createdAt, updatedAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
