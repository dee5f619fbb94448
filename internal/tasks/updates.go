package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SelectPlaylists Phase = iota
	WritePlaylists
	CleanPlaylists
	CleanMusic
	PlanCopies
	CopyTracks
	Complete
)

func (p Phase) String() string {
	switch p {
	case SelectPlaylists:
		return "select_playlists"
	case WritePlaylists:
		return "write_playlists"
	case CleanPlaylists:
		return "clean_playlists"
	case CleanMusic:
		return "clean_music"
	case PlanCopies:
		return "plan_copies"
	case CopyTracks:
		return "copy_tracks"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func selectPlaylistsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SelectPlaylists,
		Step:    step,
		Total:   total,
		Message: "Matching requested playlists against the library...",
	}
}

func foundPlaylistUpdate(step, total int, name string, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SelectPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", name, tracks),
	}
}

func ignoredPlaylistUpdate(step, total int, name, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SelectPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Playlist %s (%s)", reason, name),
	}
}

func writePlaylistUpdate(step, total int, filename string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WritePlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Writing %s", step, total, filename),
	}
}

func cleanUpdate(phase Phase, files, dirs int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Removed %d files and %d directories", files, dirs),
	}
}

func planUpdate(copies, skipped int, bytes string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlanCopies,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d tracks to copy (%s), %d up to date", copies, bytes, skipped),
	}
}

func copyTrackUpdate(step, total int, dest string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CopyTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Copying %s", step, total, dest),
	}
}

func completeUpdate(summary any) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: "Export complete",
		Data:    summary,
	}
}
