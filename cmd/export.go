package main

import (
	"context"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/pirtoo/extunes/internal/models"
	"github.com/pirtoo/extunes/internal/repositories"
	"github.com/pirtoo/extunes/internal/shared"
	"github.com/pirtoo/extunes/internal/tasks"
)

// Export runs the full export pipeline: playlist files, destination
// reconciliation, and track copies.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	// Flags layer over the loaded config for this run only.
	config := *r.config
	if dest := cmd.String("dest"); dest != "" {
		config.Destination.Path = dest
	}
	if workers := cmd.Int("workers"); workers > 0 {
		config.Sync.Workers = int(workers)
	}

	opts := tasks.Options{
		Playlists: append(cmd.StringSlice("playlist"), cmd.Args().Slice()...),
		All:       cmd.Bool("all"),
		Force:     cmd.Bool("force") || config.Sync.Force,
		DryRun:    cmd.Bool("dry-run"),
	}
	if err := tasks.ValidateOptions(opts); err != nil {
		return err
	}

	snap, err := r.loadSnapshot(cmd.String("library"))
	if err != nil {
		return err
	}

	if opts.DryRun {
		r.writePlain("Dry run: nothing will be written.\n\n")
	}

	quiet := cmd.Bool("quiet")
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if quiet {
				continue
			}
			switch update.Phase {
			case tasks.SelectPlaylists:
				r.writePlain("  %s\n", update.Message)
			case tasks.WritePlaylists, tasks.CopyTracks:
				r.writePlain("  %s\n", update.Message)
			case tasks.CleanPlaylists, tasks.CleanMusic, tasks.PlanCopies:
				r.writePlain("» %s\n", update.Message)
			}
		}
	}()

	engine := tasks.NewExportEngine(&config, snap, opts, r.logger, progressCh)
	summary, err := engine.Run(ctx)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.printSummary(summary)
	r.recordRun(summary)
	return nil
}

// printSummary writes the run's externally observable counts.
func (r *Runner) printSummary(s *models.SyncSummary) {
	title := "Export Complete"
	if s.DryRun {
		title = "Dry Run Complete"
	}

	r.writePlain("\n")
	r.writePlainHeader(title)
	r.writePlain("Playlists exported: %d\n", len(s.PlaylistsExported))
	if len(s.PlaylistsEmpty) > 0 {
		r.writePlain("Playlists with no eligible tracks: %s\n", strings.Join(s.PlaylistsEmpty, ", "))
	}
	if len(s.PlaylistsMissing) > 0 {
		r.writePlain("Playlists not found: %s\n", strings.Join(s.PlaylistsMissing, ", "))
	}
	if len(s.PlaylistsIgnored) > 0 {
		r.writePlain("Playlists ignored: %s\n", strings.Join(s.PlaylistsIgnored, ", "))
	}
	r.writePlain("Tracks: %d/%d copied (%s of %s)\n",
		s.TracksCopied, s.TracksDesired,
		shared.FormatBytes(s.BytesCopied), shared.FormatBytes(s.BytesDesired))
	r.writePlain("Removed: %d files, %d directories\n", s.FilesRemoved, s.DirsRemoved)
	r.writePlain("Elapsed: %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
}

// recordRun appends the run to the history database. History is reporting
// only, so failures are logged and never fail the export.
func (r *Runner) recordRun(s *models.SyncSummary) {
	if r.config.Database.Path == "" {
		return
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warn("failed to open history database", "error", err)
		return
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("failed to migrate history database", "error", err)
		return
	}

	run := models.NewRun(s)
	run.SetID(s.RunID)
	if err := repositories.NewRunRepository(db).Create(run); err != nil {
		r.logger.Warn("failed to record run", "error", err)
		return
	}
	r.logger.Debug("run recorded", "id", run.ID(), "sequence", run.Sequence())
}
