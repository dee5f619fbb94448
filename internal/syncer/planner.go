package syncer

import (
	"fmt"
	"os"

	"github.com/pirtoo/extunes/internal/models"
	"github.com/pirtoo/extunes/internal/shared"
)

// DesiredTrack is one eligible, selected track with its resolved
// destination path.
type DesiredTrack struct {
	ID     models.TrackID
	Source string
	Dest   string
	Size   int64
}

// CopyOp schedules one source-to-destination file transfer.
type CopyOp struct {
	ID     models.TrackID
	Source string
	Dest   string
	Size   int64
}

// Plan is the copy schedule derived from the desired track set and the
// current destination state.
type Plan struct {
	Copies      []CopyOp
	Skipped     int
	BytesToCopy int64
}

// BuildPlan decides skip-or-copy per desired track. A track is skipped when
// its destination exists with the recorded size and force mode is off;
// everything else is scheduled. Two distinct tracks resolving to the same
// destination path abort planning with [shared.ErrCollision] before any
// copy can execute, since silently overwriting would lose one of the two
// undetectably.
//
// Planning is pure metadata computation: stat calls only, no content reads,
// no mutation.
func BuildPlan(desired []DesiredTrack, force bool) (*Plan, error) {
	byDest := make(map[string]models.TrackID, len(desired))
	for _, d := range desired {
		if prev, dup := byDest[d.Dest]; dup && prev != d.ID {
			return nil, fmt.Errorf("%w: tracks %s and %s both normalize to %q",
				shared.ErrCollision, prev, d.ID, d.Dest)
		}
		byDest[d.Dest] = d.ID
	}

	plan := &Plan{}
	for _, d := range desired {
		info, err := os.Stat(d.Dest)
		switch {
		case err == nil:
			if !force && info.Size() == d.Size {
				plan.Skipped++
				continue
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to stat destination %q: %w", d.Dest, err)
		}

		plan.Copies = append(plan.Copies, CopyOp(d))
		plan.BytesToCopy += d.Size
	}

	return plan, nil
}
