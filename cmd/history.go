package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/pirtoo/extunes/internal/repositories"
	"github.com/pirtoo/extunes/internal/shared"
)

// History lists past export runs from the history database, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if cmd.Bool("dry-runs") {
		criteria["dry_run"] = true
	}

	runs, err := repositories.NewRunRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded yet.\n")
		return nil
	}

	r.writePlain("%-5s %-20s %-8s %10s %12s %10s %9s\n",
		"#", "Started", "Mode", "Playlists", "Tracks", "Copied", "Removed")
	for _, run := range runs {
		mode := "write"
		if run.DryRun() {
			mode = "dry-run"
		}
		r.writePlain("%-5d %-20s %-8s %10d %7d/%-4d %10s %4d/%-4d\n",
			run.Sequence(),
			run.StartedAt().Format("2006-01-02 15:04:05"),
			mode,
			run.PlaylistsExported(),
			run.TracksCopied(),
			run.TracksDesired(),
			shared.FormatBytes(run.BytesCopied()),
			run.FilesRemoved(),
			run.DirsRemoved(),
		)
	}

	return nil
}
