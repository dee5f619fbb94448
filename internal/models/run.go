package models

import (
	"fmt"
	"time"
)

// Run is a persisted record of one export run's summary counts.
// Implements [Model].
type Run struct {
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
	deletedAt         *time.Time
}

// NewRun builds a Run record from a completed run's summary.
func NewRun(s *SyncSummary) *Run {
	now := time.Now()
	return &Run{
		startedAt:         s.StartedAt,
		finishedAt:        s.FinishedAt,
		dryRun:            s.DryRun,
		forced:            s.Forced,
		playlistsExported: len(s.PlaylistsExported),
		playlistsMissing:  len(s.PlaylistsMissing),
		playlistsIgnored:  len(s.PlaylistsIgnored),
		playlistsEmpty:    len(s.PlaylistsEmpty),
		tracksDesired:     s.TracksDesired,
		tracksCopied:      s.TracksCopied,
		bytesDesired:      s.BytesDesired,
		bytesCopied:       s.BytesCopied,
		filesRemoved:      s.FilesRemoved,
		dirsRemoved:       s.DirsRemoved,
		createdAt:         now,
		updatedAt:         now,
	}
}

func (r *Run) ID() string             { return r.id }
func (r *Run) Sequence() int          { return r.sequence }
func (r *Run) StartedAt() time.Time   { return r.startedAt }
func (r *Run) FinishedAt() time.Time  { return r.finishedAt }
func (r *Run) DryRun() bool           { return r.dryRun }
func (r *Run) Forced() bool           { return r.forced }
func (r *Run) PlaylistsExported() int { return r.playlistsExported }
func (r *Run) PlaylistsMissing() int  { return r.playlistsMissing }
func (r *Run) PlaylistsIgnored() int  { return r.playlistsIgnored }
func (r *Run) PlaylistsEmpty() int    { return r.playlistsEmpty }
func (r *Run) TracksDesired() int     { return r.tracksDesired }
func (r *Run) TracksCopied() int      { return r.tracksCopied }
func (r *Run) BytesDesired() int64    { return r.bytesDesired }
func (r *Run) BytesCopied() int64     { return r.bytesCopied }
func (r *Run) FilesRemoved() int      { return r.filesRemoved }
func (r *Run) DirsRemoved() int       { return r.dirsRemoved }
func (r *Run) CreatedAt() time.Time   { return r.createdAt }
func (r *Run) UpdatedAt() time.Time   { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time  { return r.deletedAt }

func (r *Run) SetID(id string)              { r.id = id }
func (r *Run) SetSequence(seq int)          { r.sequence = seq }
func (r *Run) SetUpdatedAt(t time.Time)     { r.updatedAt = t }
func (r *Run) SetDeletedAt(t *time.Time)    { r.deletedAt = t }
func (r *Run) SetTimestamps(c, u time.Time) { r.createdAt, r.updatedAt = c, u }
func (r *Run) SetStartedAt(t time.Time)     { r.startedAt = t }
func (r *Run) SetFinishedAt(t time.Time)    { r.finishedAt = t }
func (r *Run) SetDryRun(v bool)             { r.dryRun = v }
func (r *Run) SetForced(v bool)             { r.forced = v }
func (r *Run) SetCounts(exported, missing, ignored, empty, desired, copied int) {
	r.playlistsExported = exported
	r.playlistsMissing = missing
	r.playlistsIgnored = ignored
	r.playlistsEmpty = empty
	r.tracksDesired = desired
	r.tracksCopied = copied
}
func (r *Run) SetBytes(desired, copied int64) { r.bytesDesired, r.bytesCopied = desired, copied }
func (r *Run) SetRemovals(files, dirs int)    { r.filesRemoved, r.dirsRemoved = files, dirs }

// Validate checks if the run's data is valid.
func (r *Run) Validate() error {
	if r.id == "" {
		return fmt.Errorf("run ID is required")
	}
	if r.startedAt.IsZero() {
		return fmt.Errorf("run start time is required")
	}
	if r.finishedAt.Before(r.startedAt) {
		return fmt.Errorf("run finished before it started")
	}
	return nil
}
