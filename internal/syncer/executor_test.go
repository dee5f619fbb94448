package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestExecutorExecute(t *testing.T) {
	t.Run("creates parents and copies content", func(t *testing.T) {
		src := t.TempDir()
		dest := t.TempDir()

		source := filepath.Join(src, "song.mp3")
		if err := os.WriteFile(source, []byte("audio-bytes"), 0644); err != nil {
			t.Fatal(err)
		}
		target := filepath.Join(dest, "artist/album/song.mp3")

		plan := &Plan{Copies: []CopyOp{{ID: "1", Source: source, Dest: target, Size: 11}}}
		e := NewExecutor(OSMutator{}, 2, testLogger())
		if err := e.Execute(context.Background(), plan, dest); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(target)
		if err != nil {
			t.Fatalf("destination missing: %v", err)
		}
		if string(data) != "audio-bytes" {
			t.Errorf("unexpected content: %q", data)
		}
	})

	t.Run("parallel copies land for every op", func(t *testing.T) {
		src := t.TempDir()
		dest := t.TempDir()

		plan := &Plan{}
		for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
			source := filepath.Join(src, name+".mp3")
			if err := os.WriteFile(source, []byte(name), 0644); err != nil {
				t.Fatal(err)
			}
			plan.Copies = append(plan.Copies, CopyOp{
				ID:     "x",
				Source: source,
				Dest:   filepath.Join(dest, name, name+".mp3"),
				Size:   1,
			})
		}

		e := NewExecutor(OSMutator{}, 3, testLogger())
		if err := e.Execute(context.Background(), plan, dest); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, op := range plan.Copies {
			if _, err := os.Stat(op.Dest); err != nil {
				t.Errorf("missing copy %q: %v", op.Dest, err)
			}
		}
	})

	t.Run("missing source is fatal", func(t *testing.T) {
		dest := t.TempDir()
		plan := &Plan{Copies: []CopyOp{{
			ID:     "1",
			Source: filepath.Join(t.TempDir(), "gone.mp3"),
			Dest:   filepath.Join(dest, "gone.mp3"),
			Size:   1,
		}}}

		e := NewExecutor(OSMutator{}, 1, testLogger())
		if err := e.Execute(context.Background(), plan, dest); err == nil {
			t.Fatal("expected error for missing source")
		}
	})

	t.Run("never creates the stop root's parents", func(t *testing.T) {
		src := t.TempDir()
		source := filepath.Join(src, "song.mp3")
		if err := os.WriteFile(source, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		dest := t.TempDir()
		outside := filepath.Join(filepath.Dir(dest), "elsewhere", "song.mp3")
		plan := &Plan{Copies: []CopyOp{{ID: "1", Source: source, Dest: outside, Size: 1}}}

		e := NewExecutor(OSMutator{}, 1, testLogger())
		if err := e.Execute(context.Background(), plan, dest); err == nil {
			t.Fatal("expected error for destination outside the scoped root")
		}
		if _, err := os.Stat(filepath.Dir(outside)); !os.IsNotExist(err) {
			t.Error("no directory may be created outside the scoped root")
		}
	})

	t.Run("dry run copies nothing", func(t *testing.T) {
		src := t.TempDir()
		dest := t.TempDir()
		source := filepath.Join(src, "song.mp3")
		if err := os.WriteFile(source, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		target := filepath.Join(dest, "a/song.mp3")

		plan := &Plan{Copies: []CopyOp{{ID: "1", Source: source, Dest: target, Size: 1}}}
		e := NewExecutor(DryRunMutator{}, 1, testLogger())
		if err := e.Execute(context.Background(), plan, dest); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(target); !os.IsNotExist(err) {
			t.Error("dry run must not copy")
		}
		if _, err := os.Stat(filepath.Join(dest, "a")); !os.IsNotExist(err) {
			t.Error("dry run must not create directories")
		}
	})

	t.Run("reports each completed copy in step order", func(t *testing.T) {
		src := t.TempDir()
		dest := t.TempDir()

		plan := &Plan{}
		for _, name := range []string{"a", "b", "c", "d"} {
			source := filepath.Join(src, name+".mp3")
			if err := os.WriteFile(source, []byte(name), 0644); err != nil {
				t.Fatal(err)
			}
			plan.Copies = append(plan.Copies, CopyOp{
				ID:     "x",
				Source: source,
				Dest:   filepath.Join(dest, name+".mp3"),
				Size:   1,
			})
		}

		type report struct {
			step, total int
			dest        string
		}
		var got []report

		e := NewExecutor(OSMutator{}, 3, testLogger())
		e.OnCopy = func(step, total int, dest string) {
			got = append(got, report{step, total, dest})
		}
		if err := e.Execute(context.Background(), plan, dest); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(got) != len(plan.Copies) {
			t.Fatalf("got %d reports, want %d", len(got), len(plan.Copies))
		}
		seen := map[string]bool{}
		for i, r := range got {
			if r.step != i+1 {
				t.Errorf("report %d has step %d, want %d", i, r.step, i+1)
			}
			if r.total != len(plan.Copies) {
				t.Errorf("report %d has total %d, want %d", i, r.total, len(plan.Copies))
			}
			seen[r.dest] = true
		}
		for _, op := range plan.Copies {
			if !seen[op.Dest] {
				t.Errorf("no report for %q", op.Dest)
			}
		}
	})

	t.Run("failed copy is not reported", func(t *testing.T) {
		dest := t.TempDir()
		plan := &Plan{Copies: []CopyOp{{
			ID:     "1",
			Source: filepath.Join(t.TempDir(), "gone.mp3"),
			Dest:   filepath.Join(dest, "gone.mp3"),
			Size:   1,
		}}}

		calls := 0
		e := NewExecutor(OSMutator{}, 1, testLogger())
		e.OnCopy = func(step, total int, dest string) { calls++ }
		if err := e.Execute(context.Background(), plan, dest); err == nil {
			t.Fatal("expected error for missing source")
		}
		if calls != 0 {
			t.Errorf("OnCopy called %d times for a failed copy, want 0", calls)
		}
	})

	t.Run("canceled context aborts", func(t *testing.T) {
		src := t.TempDir()
		dest := t.TempDir()
		source := filepath.Join(src, "song.mp3")
		if err := os.WriteFile(source, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		plan := &Plan{Copies: []CopyOp{{ID: "1", Source: source, Dest: filepath.Join(dest, "song.mp3"), Size: 1}}}
		e := NewExecutor(OSMutator{}, 1, testLogger())
		if err := e.Execute(ctx, plan, dest); err == nil {
			t.Fatal("expected context error")
		}
	})
}

func TestCopyFileOverwrite(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	source := filepath.Join(src, "song.mp3")
	if err := os.WriteFile(source, []byte("full-content"), 0644); err != nil {
		t.Fatal(err)
	}

	// Simulate a partial file left by an interrupted run.
	target := filepath.Join(dest, "song.mp3")
	if err := os.WriteFile(target, []byte("part"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := (OSMutator{}).CopyFile(source, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "full-content" {
		t.Errorf("expected overwrite, got %q", data)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files must not remain, found %d entries", len(entries))
	}
}
