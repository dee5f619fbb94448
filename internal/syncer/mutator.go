package syncer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Mutator abstracts every filesystem mutation the syncer performs.
type Mutator interface {
	Mkdir(path string) error
	WriteFile(path string, data []byte) error
	RemoveFile(path string) error
	RemoveDir(path string) error
	CopyFile(src, dst string) error
}

// OSMutator applies mutations to the real filesystem.
type OSMutator struct{}

func (OSMutator) Mkdir(path string) error {
	return os.Mkdir(path, 0755)
}

func (OSMutator) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

func (OSMutator) RemoveFile(path string) error {
	return os.Remove(path)
}

func (OSMutator) RemoveDir(path string) error {
	return os.Remove(path)
}

// CopyFile copies src to dst through a temporary file in the destination
// directory, renamed into place once fully written. An interrupted run
// leaves at worst a stray temp file, never a truncated destination.
func (OSMutator) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %q: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".extunes-copy-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %q: %w", dst, err)
	}

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to copy %q: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to flush %q: %w", dst, err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to rename into %q: %w", dst, err)
	}
	return nil
}

// DryRunMutator turns every mutation into a no-op. Counts are kept by the
// callers, so dry runs report the same numbers a real run would apply.
type DryRunMutator struct{}

func (DryRunMutator) Mkdir(string) error             { return nil }
func (DryRunMutator) WriteFile(string, []byte) error { return nil }
func (DryRunMutator) RemoveFile(string) error        { return nil }
func (DryRunMutator) RemoveDir(string) error         { return nil }
func (DryRunMutator) CopyFile(string, string) error  { return nil }
