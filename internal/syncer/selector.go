package syncer

import (
	"sort"
	"strings"

	"github.com/pirtoo/extunes/internal/models"
	"github.com/pirtoo/extunes/internal/shared"
)

// Policy controls which tracks are eligible for export.
type Policy struct {
	IncludeVideos bool
	AllTypes      bool
	allowedTypes  map[string]bool
}

// NewPolicy builds a Policy from the sync configuration.
func NewPolicy(cfg shared.SyncConfig) Policy {
	p := Policy{
		IncludeVideos: cfg.IncludeVideos,
		AllTypes:      cfg.AllTypes,
		allowedTypes:  make(map[string]bool, len(cfg.AllowedTypes)),
	}
	for _, t := range cfg.AllowedTypes {
		p.allowedTypes[strings.ToLower(t)] = true
	}
	return p
}

// TypeAllowed reports whether the extension-derived type tag passes the
// allow-set, or unconditionally in all-types mode.
func (p Policy) TypeAllowed(tag string) bool {
	if p.AllTypes {
		return true
	}
	return p.allowedTypes[tag]
}

// videoKind reports whether a library kind string names a video category.
func videoKind(kind string) bool {
	k := strings.ToLower(kind)
	return strings.Contains(k, "video") || strings.Contains(k, "movie")
}

// Eligible applies the selection filters to one track. An ineligible track
// never appears in desired state, playlist content, or size accounting.
func Eligible(t models.Track, p Policy) bool {
	if t.Location == "" {
		return false
	}
	if t.Kind == "" {
		return false
	}
	if t.Protected {
		return false
	}
	if t.Size == nil {
		// No recorded size means a non-local/streaming reference.
		return false
	}
	if !p.IncludeVideos && (t.HasVideo || videoKind(t.Kind)) {
		return false
	}
	return p.TypeAllowed(t.TypeTag)
}

// EligibleTracks filters an ordered track reference list, dropping
// ineligible and unknown tracks while preserving order and duplicates.
func EligibleTracks(snap *models.LibrarySnapshot, ids []models.TrackID, p Policy) []models.TrackID {
	out := make([]models.TrackID, 0, len(ids))
	for _, id := range ids {
		t, ok := snap.Track(id)
		if !ok {
			continue
		}
		if Eligible(t, p) {
			out = append(out, id)
		}
	}
	return out
}

// UniqueTracks returns the deduplicated union of the given track lists,
// sorted by ID for deterministic planning.
func UniqueTracks(lists ...[]models.TrackID) []models.TrackID {
	seen := make(map[models.TrackID]bool)
	var out []models.TrackID
	for _, list := range lists {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
