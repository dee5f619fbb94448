package syncer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Reconciler removes untracked entries under a scoped root directory.
type Reconciler struct {
	fs     Mutator
	logger *log.Logger
}

// NewReconciler creates a Reconciler applying mutations through fs.
func NewReconciler(fs Mutator, logger *log.Logger) *Reconciler {
	return &Reconciler{fs: fs, logger: logger}
}

// Clean deletes every file under root whose full path is not in keep, then
// prunes directories left empty, children before parents. The root itself
// is never deleted. Returns the number of files and directories removed.
//
// The walk is two-phase: the existing tree is snapshotted into explicit
// lists first, deletions are applied against that stable snapshot, and
// directory emptiness is then re-checked with fresh directory reads rather
// than the stale walk listings. Any deletion failure is fatal; a partially
// reconciled tree must not be mistaken for a cleaned one.
func (r *Reconciler) Clean(root string, keep map[string]bool) (int, int, error) {
	var files, dirs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		} else {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to walk %q: %w", root, err)
	}

	removed := make(map[string]bool)
	filesRemoved := 0
	for _, f := range files {
		if keep[f] {
			continue
		}
		r.logger.Debug("deleting file", "path", f)
		if err := r.fs.RemoveFile(f); err != nil {
			return filesRemoved, 0, fmt.Errorf("failed to delete file %q: %w", f, err)
		}
		removed[f] = true
		filesRemoved++
	}

	// Deepest directories first so children are pruned before parents.
	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})

	dirsRemoved := 0
	for _, dir := range dirs {
		empty, err := r.dirEmpty(dir, removed)
		if err != nil {
			return filesRemoved, dirsRemoved, fmt.Errorf("failed to check directory %q: %w", dir, err)
		}
		if !empty {
			continue
		}
		r.logger.Debug("deleting directory", "path", dir)
		if err := r.fs.RemoveDir(dir); err != nil {
			return filesRemoved, dirsRemoved, fmt.Errorf("failed to delete directory %q: %w", dir, err)
		}
		removed[dir] = true
		dirsRemoved++
	}

	return filesRemoved, dirsRemoved, nil
}

// dirEmpty re-reads the directory and reports whether every remaining entry
// has been removed this run. During a dry run removals are staged in the
// removed set instead of on disk, so the same check covers both modes.
func (r *Reconciler) dirEmpty(dir string, removed map[string]bool) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !removed[filepath.Join(dir, e.Name())] {
			return false, nil
		}
	}
	return true, nil
}
