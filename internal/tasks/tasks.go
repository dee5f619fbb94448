package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pirtoo/extunes/internal/formatter"
	"github.com/pirtoo/extunes/internal/models"
	"github.com/pirtoo/extunes/internal/paths"
	"github.com/pirtoo/extunes/internal/shared"
	"github.com/pirtoo/extunes/internal/syncer"
)

// Options selects what an export run operates on.
type Options struct {
	Playlists []string // explicit playlist names, in request order
	All       bool     // export every playlist not on the ignore list
	Force     bool     // copy every desired track regardless of destination state
	DryRun    bool     // report without mutating the destination
}

// ValidateOptions rejects contradictory or empty playlist selections before
// any library or destination access happens.
func ValidateOptions(opts Options) error {
	if opts.All && len(opts.Playlists) > 0 {
		return fmt.Errorf("%w: both --all and explicit playlist names given", shared.ErrConfig)
	}
	if !opts.All && len(opts.Playlists) == 0 {
		return fmt.Errorf("%w: no playlists selected; pass names or --all", shared.ErrConfig)
	}
	return nil
}

// ExportEngine runs one playlist export against a destination tree.
type ExportEngine struct {
	cfg      *shared.Config
	snap     *models.LibrarySnapshot
	opts     Options
	fs       syncer.Mutator
	logger   *log.Logger
	progress chan<- ProgressUpdate
}

// NewExportEngine creates an engine for one run. A nil progress channel
// disables progress reporting. Dry runs swap in a no-op mutator so the whole
// pipeline executes with identical decisions and zero destination writes.
func NewExportEngine(cfg *shared.Config, snap *models.LibrarySnapshot, opts Options, logger *log.Logger, progress chan<- ProgressUpdate) *ExportEngine {
	var fs syncer.Mutator = syncer.OSMutator{}
	if opts.DryRun {
		fs = syncer.DryRunMutator{}
	}
	return &ExportEngine{
		cfg:      cfg,
		snap:     snap,
		opts:     opts,
		fs:       fs,
		logger:   logger,
		progress: progress,
	}
}

// playlistFile is one resolved playlist ready to be written.
type playlistFile struct {
	name    string
	path    string
	content []byte
}

// Run executes the export pipeline and returns the run summary. The desired
// state and copy plan are computed in full before the first mutation, so a
// filename collision aborts with the destination untouched. Any filesystem
// failure after that point is fatal; partial runs report what was applied.
func (e *ExportEngine) Run(ctx context.Context) (*models.SyncSummary, error) {
	if err := ValidateOptions(e.opts); err != nil {
		return nil, err
	}

	summary := &models.SyncSummary{
		RunID:     shared.GenerateID(),
		StartedAt: time.Now(),
		DryRun:    e.opts.DryRun,
		Forced:    e.opts.Force,
	}

	destRoot := shared.ExpandHome(e.cfg.Destination.Path)
	musicRoot := filepath.Join(destRoot, e.cfg.Destination.MusicDir)
	playlistRoot := filepath.Join(destRoot, e.cfg.Destination.PlaylistDir)

	nOpts := paths.Options{
		Lowercase:       e.cfg.Normalize.Lowercase,
		RestrictCharset: e.cfg.Normalize.RestrictCharset,
	}

	selected, err := e.selectPlaylists(summary)
	if err != nil {
		return nil, err
	}

	policy := syncer.NewPolicy(e.cfg.Sync)

	// Desired state first. Everything below is pure computation over the
	// snapshot plus destination stat calls; no writes happen until the
	// plan is known to be collision free.
	var files []playlistFile
	var trackLists [][]models.TrackID
	destByID := make(map[models.TrackID]string)

	for i := range selected {
		p := selected[i]
		eligible := syncer.EligibleTracks(e.snap, p.Tracks, policy)
		if len(eligible) == 0 {
			e.logger.Warn("playlist has no eligible tracks", "playlist", p.Name)
			summary.PlaylistsEmpty = append(summary.PlaylistsEmpty, p.Name)
			e.send(ignoredPlaylistUpdate(i+1, len(selected), p.Name, "empty"))
			continue
		}

		lines := make([]string, 0, len(eligible))
		for _, id := range eligible {
			dest, ok := destByID[id]
			if !ok {
				t, _ := e.snap.Track(id)
				dest, err = paths.Normalize(t.Location, e.snap.MusicRoot, musicRoot, nOpts)
				if err != nil {
					return nil, err
				}
				destByID[id] = dest
			}
			line, err := e.playlistLine(dest, playlistRoot)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}

		filename := formatter.PlaylistFilename(p.Name, e.cfg.Sync.PlaylistPrefix, nOpts)
		files = append(files, playlistFile{
			name:    p.Name,
			path:    filepath.Join(playlistRoot, filename),
			content: formatter.BuildM3U(lines, e.cfg.Normalize.WriteHeader),
		})
		trackLists = append(trackLists, eligible)
		e.send(foundPlaylistUpdate(i+1, len(selected), p.Name, len(eligible)))
	}

	unique := syncer.UniqueTracks(trackLists...)
	desired := make([]syncer.DesiredTrack, 0, len(unique))
	for _, id := range unique {
		t, _ := e.snap.Track(id)
		desired = append(desired, syncer.DesiredTrack{
			ID:     id,
			Source: t.Location,
			Dest:   destByID[id],
			Size:   *t.Size,
		})
		summary.BytesDesired += *t.Size
	}
	summary.TracksDesired = len(desired)

	plan, err := syncer.BuildPlan(desired, e.opts.Force)
	if err != nil {
		return nil, err
	}
	e.send(planUpdate(len(plan.Copies), plan.Skipped, shared.FormatBytes(plan.BytesToCopy)))

	// First mutations: the scoped roots, then the playlist files.
	if err := e.ensureDir(musicRoot); err != nil {
		return summary, err
	}
	if err := e.ensureDir(playlistRoot); err != nil {
		return summary, err
	}

	keepPlaylists := make(map[string]bool, len(files))
	exported := make(map[string]int, len(files))
	for i, f := range files {
		idx, overwrite := exported[f.path]
		if overwrite {
			e.logger.Warn("playlist filename collision, last writer wins", "path", f.path, "playlist", f.name)
		}
		e.logger.Debug("writing playlist", "path", f.path, "bytes", len(f.content))
		if err := e.fs.WriteFile(f.path, f.content); err != nil {
			return summary, fmt.Errorf("failed to write playlist %q: %w", f.path, err)
		}
		// One file on disk is one exported playlist; an overwrite replaces
		// the earlier name instead of counting the path twice.
		if overwrite {
			summary.PlaylistsExported[idx] = f.name
		} else {
			exported[f.path] = len(summary.PlaylistsExported)
			summary.PlaylistsExported = append(summary.PlaylistsExported, f.name)
		}
		keepPlaylists[f.path] = true
		e.send(writePlaylistUpdate(i+1, len(files), filepath.Base(f.path)))
	}

	rec := syncer.NewReconciler(e.fs, e.logger)

	fr, dr, err := e.clean(rec, playlistRoot, keepPlaylists)
	if err != nil {
		return summary, err
	}
	summary.FilesRemoved += fr
	summary.DirsRemoved += dr
	e.send(cleanUpdate(CleanPlaylists, fr, dr))

	keepTracks := make(map[string]bool, len(desired))
	for _, d := range desired {
		keepTracks[d.Dest] = true
	}
	fr, dr, err = e.clean(rec, musicRoot, keepTracks)
	if err != nil {
		return summary, err
	}
	summary.FilesRemoved += fr
	summary.DirsRemoved += dr
	e.send(cleanUpdate(CleanMusic, fr, dr))

	exec := syncer.NewExecutor(e.fs, e.cfg.Sync.Workers, e.logger)
	exec.OnCopy = func(step, total int, dest string) {
		e.send(copyTrackUpdate(step, total, dest))
	}
	if err := exec.Execute(ctx, plan, musicRoot); err != nil {
		return summary, err
	}
	summary.TracksCopied = len(plan.Copies)
	summary.BytesCopied = plan.BytesToCopy

	summary.FinishedAt = time.Now()
	e.send(completeUpdate(summary))
	return summary, nil
}

// selectPlaylists resolves the requested names against the snapshot. Missing
// and ignored playlists are recorded on the summary and logged, not fatal,
// except when nothing resolves at all: reconciling against an empty desired
// state would empty the destination, so that is refused.
func (e *ExportEngine) selectPlaylists(summary *models.SyncSummary) ([]*models.Playlist, error) {
	ignored := make(map[string]bool, len(e.cfg.Sync.IgnorePlaylists))
	for _, name := range e.cfg.Sync.IgnorePlaylists {
		ignored[name] = true
	}

	byName := make(map[string]*models.Playlist, len(e.snap.Playlists))
	for i := range e.snap.Playlists {
		byName[e.snap.Playlists[i].Name] = &e.snap.Playlists[i]
	}

	e.send(selectPlaylistsUpdate(0, len(e.snap.Playlists)))

	var selected []*models.Playlist
	if e.opts.All {
		for i := range e.snap.Playlists {
			p := &e.snap.Playlists[i]
			if ignored[p.Name] {
				e.logger.Debug("skipping ignored playlist", "playlist", p.Name)
				summary.PlaylistsIgnored = append(summary.PlaylistsIgnored, p.Name)
				continue
			}
			selected = append(selected, p)
		}
	} else {
		for _, name := range e.opts.Playlists {
			if ignored[name] {
				e.logger.Warn("requested playlist is on the ignore list", "playlist", name)
				summary.PlaylistsIgnored = append(summary.PlaylistsIgnored, name)
				continue
			}
			p, ok := byName[name]
			if !ok {
				e.logger.Warn("playlist not found in library", "playlist", name)
				summary.PlaylistsMissing = append(summary.PlaylistsMissing, name)
				continue
			}
			selected = append(selected, p)
		}
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no requested playlist resolved against the library", shared.ErrConfig)
	}
	return selected, nil
}

// playlistLine renders one destination track path as a playlist line,
// relative to the playlist directory when configured and rewritten to the
// configured path separator.
func (e *ExportEngine) playlistLine(dest, playlistRoot string) (string, error) {
	sep := e.cfg.Normalize.PathSeparator
	if e.cfg.Normalize.RelativePaths {
		return paths.Portable(dest, playlistRoot, sep)
	}
	if sep != "" && sep != string(filepath.Separator) {
		dest = strings.ReplaceAll(dest, string(filepath.Separator), sep)
	}
	return dest, nil
}

// ensureDir creates dir if it does not exist. Only the scoped roots directly
// under the destination go through here; deeper parents are handled by the
// executor.
func (e *ExportEngine) ensureDir(dir string) error {
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %q exists and is not a directory", shared.ErrDestination, dir)
		}
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %q: %w", dir, err)
	}
	if err := e.fs.Mkdir(dir); err != nil {
		return fmt.Errorf("failed to create %q: %w", dir, err)
	}
	return nil
}

// clean reconciles one scoped root, treating a root that does not exist yet
// as already clean. Dry runs against a fresh destination hit that case.
func (e *ExportEngine) clean(rec *syncer.Reconciler, root string, keep map[string]bool) (int, int, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return 0, 0, nil
	}
	return rec.Clean(root, keep)
}

// send delivers a progress update without blocking. A slow or absent
// consumer drops updates rather than stalling the run.
func (e *ExportEngine) send(u ProgressUpdate) {
	if e.progress == nil {
		return
	}
	select {
	case e.progress <- u:
	default:
	}
}
