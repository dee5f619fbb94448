package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/pirtoo/extunes/internal/shared"
)

// Executor applies a copy plan to the destination tree.
type Executor struct {
	fs      Mutator
	workers int
	logger  *log.Logger

	// OnCopy, when set, is called after each completed copy. Calls are
	// serialized and step increases monotonically to total.
	OnCopy func(step, total int, dest string)
}

// NewExecutor creates an Executor copying through fs with the given worker
// count (minimum one).
func NewExecutor(fs Mutator, workers int, logger *log.Logger) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{fs: fs, workers: workers, logger: logger}
}

// Execute creates the missing parent directories for every scheduled copy,
// then runs the copies on a bounded worker pool. All directory creation
// completes before the first copy starts. Any failure aborts the run.
func (e *Executor) Execute(ctx context.Context, plan *Plan, stopRoot string) error {
	for _, op := range plan.Copies {
		if err := e.mkdirUpTo(filepath.Dir(op.Dest), stopRoot); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	var mu sync.Mutex
	done := 0

	for _, op := range plan.Copies {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			e.logger.Debug("copying", "src", op.Source, "dst", op.Dest)
			if err := e.fs.CopyFile(op.Source, op.Dest); err != nil {
				return err
			}
			if e.OnCopy != nil {
				mu.Lock()
				done++
				e.OnCopy(done, len(plan.Copies), op.Dest)
				mu.Unlock()
			}
			return nil
		})
	}

	return g.Wait()
}

// mkdirUpTo creates dir and its missing parents, stopping at (and never
// creating) stopRoot.
func (e *Executor) mkdirUpTo(dir, stopRoot string) error {
	dir = filepath.Clean(dir)
	stopRoot = filepath.Clean(stopRoot)

	if dir == stopRoot {
		return nil
	}
	if !strings.HasPrefix(dir, stopRoot+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q not under %q", shared.ErrPath, dir, stopRoot)
	}
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return nil
	}

	if err := e.mkdirUpTo(filepath.Dir(dir), stopRoot); err != nil {
		return err
	}
	if err := e.fs.Mkdir(dir); err != nil && !os.IsExist(err) {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}
	return nil
}
