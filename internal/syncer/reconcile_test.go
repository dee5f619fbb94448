package syncer

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pirtoo/extunes/internal/shared"
)

func testLogger() *log.Logger { return shared.NewLogger(io.Discard) }

func TestReconcilerClean(t *testing.T) {
	t.Run("deletes untracked files and prunes empty dirs", func(t *testing.T) {
		root := t.TempDir()
		keepPath := filepath.Join(root, "artist/album/keep.mp3")
		dropPath := filepath.Join(root, "artist/old/drop.mp3")
		writeFile(t, keepPath, 1)
		writeFile(t, dropPath, 1)
		if err := os.MkdirAll(filepath.Join(root, "empty/nested"), 0755); err != nil {
			t.Fatal(err)
		}

		r := NewReconciler(OSMutator{}, testLogger())
		files, dirs, err := r.Clean(root, map[string]bool{keepPath: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if files != 1 {
			t.Errorf("expected 1 file removed, got %d", files)
		}
		// artist/old plus empty/nested plus empty.
		if dirs != 3 {
			t.Errorf("expected 3 directories removed, got %d", dirs)
		}

		if _, err := os.Stat(keepPath); err != nil {
			t.Errorf("kept file should survive: %v", err)
		}
		if _, err := os.Stat(dropPath); !os.IsNotExist(err) {
			t.Error("untracked file should be deleted")
		}
		if _, err := os.Stat(filepath.Join(root, "empty")); !os.IsNotExist(err) {
			t.Error("empty directory tree should be pruned")
		}
		if _, err := os.Stat(root); err != nil {
			t.Errorf("root must never be deleted: %v", err)
		}
	})

	t.Run("root survives even when desired state is empty", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "a/b/c.mp3"), 1)

		r := NewReconciler(OSMutator{}, testLogger())
		files, dirs, err := r.Clean(root, map[string]bool{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if files != 1 || dirs != 2 {
			t.Errorf("expected 1 file and 2 dirs removed, got %d and %d", files, dirs)
		}
		if _, err := os.Stat(root); err != nil {
			t.Errorf("root must never be deleted: %v", err)
		}
	})

	t.Run("directories holding kept files survive", func(t *testing.T) {
		root := t.TempDir()
		keep := filepath.Join(root, "artist/album/keep.mp3")
		writeFile(t, keep, 1)
		writeFile(t, filepath.Join(root, "artist/album/drop.mp3"), 1)

		r := NewReconciler(OSMutator{}, testLogger())
		files, dirs, err := r.Clean(root, map[string]bool{keep: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if files != 1 {
			t.Errorf("expected 1 file removed, got %d", files)
		}
		if dirs != 0 {
			t.Errorf("expected no directories removed, got %d", dirs)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		root := t.TempDir()
		keep := filepath.Join(root, "artist/keep.mp3")
		writeFile(t, keep, 1)
		writeFile(t, filepath.Join(root, "other/drop.mp3"), 1)

		r := NewReconciler(OSMutator{}, testLogger())
		if _, _, err := r.Clean(root, map[string]bool{keep: true}); err != nil {
			t.Fatalf("first clean: %v", err)
		}

		files, dirs, err := r.Clean(root, map[string]bool{keep: true})
		if err != nil {
			t.Fatalf("second clean: %v", err)
		}
		if files != 0 || dirs != 0 {
			t.Errorf("second run should be a no-op, removed %d files and %d dirs", files, dirs)
		}
	})

	t.Run("dry run counts without deleting", func(t *testing.T) {
		root := t.TempDir()
		drop := filepath.Join(root, "artist/album/drop.mp3")
		writeFile(t, drop, 1)

		r := NewReconciler(DryRunMutator{}, testLogger())
		files, dirs, err := r.Clean(root, map[string]bool{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if files != 1 {
			t.Errorf("expected 1 file counted, got %d", files)
		}
		if dirs != 2 {
			t.Errorf("expected 2 dirs counted, got %d", dirs)
		}
		if _, err := os.Stat(drop); err != nil {
			t.Errorf("dry run must not delete: %v", err)
		}
	})
}
