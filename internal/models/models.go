package models

import (
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// TrackID is an opaque, library-scoped track identifier, stable across runs.
type TrackID string

// Track is one media item from the library snapshot.
// Immutable for the duration of a run.
type Track struct {
	ID        TrackID
	Location  string // absolute local source path; empty if not resolvable
	Size      *int64 // byte size; nil means a non-local/streaming reference
	Kind      string // library category string, e.g. "MPEG audio file"
	Protected bool   // DRM restriction flag
	HasVideo  bool
	TypeTag   string // lowercased file extension without the dot
}

// Playlist is a named, ordered list of track references.
// Duplicate entries are allowed and order is meaningful.
//
// The optional attribute fields mirror which keys were present on the
// library entry; nil means the key was absent.
type Playlist struct {
	Name   string
	Tracks []TrackID

	Master       *bool
	Music        *bool
	Visible      *bool
	Movies       *bool
	TVShows      *bool
	Purchased    *bool
	PartyShuffle *bool
	Smart        *bool
}

// playlistFlag pairs an optional playlist attribute with its listing letter.
type playlistFlag struct {
	letter  string
	present func(*Playlist) bool
}

// Flag letters follow the extunes listing convention.
var playlistFlagTable = []playlistFlag{
	{"A", func(p *Playlist) bool { return p.Master != nil }},
	{"M", func(p *Playlist) bool { return p.Music != nil }},
	{"N", func(p *Playlist) bool { return p.Visible != nil }},
	{"V", func(p *Playlist) bool { return p.Movies != nil }},
	{"T", func(p *Playlist) bool { return p.TVShows != nil }},
	{"P", func(p *Playlist) bool { return p.Purchased != nil }},
	{"D", func(p *Playlist) bool { return p.PartyShuffle != nil }},
	{"S", func(p *Playlist) bool { return p.Smart != nil }},
}

// Flags returns the concatenated flag letters for the attributes present on
// this playlist, in fixed table order.
func (p *Playlist) Flags() string {
	flags := ""
	for _, f := range playlistFlagTable {
		if f.present(p) {
			flags += f.letter
		}
	}
	return flags
}

// LibrarySnapshot is the library metadata read once at the start of a run.
type LibrarySnapshot struct {
	MusicRoot string // source-side music folder
	Version   string // library format version tag
	Date      time.Time
	Tracks    map[TrackID]Track
	Playlists []Playlist
}

// Track returns the track for the given ID and whether it exists.
func (s *LibrarySnapshot) Track(id TrackID) (Track, bool) {
	t, ok := s.Tracks[id]
	return t, ok
}

// PlaylistSize sums the known byte sizes of a playlist's tracks.
func (s *LibrarySnapshot) PlaylistSize(p *Playlist) int64 {
	var total int64
	for _, id := range p.Tracks {
		if t, ok := s.Tracks[id]; ok && t.Size != nil {
			total += *t.Size
		}
	}
	return total
}

// TotalSize sums the known byte sizes of the whole track universe.
func (s *LibrarySnapshot) TotalSize() int64 {
	var total int64
	for _, t := range s.Tracks {
		if t.Size != nil {
			total += *t.Size
		}
	}
	return total
}

// SyncSummary holds the externally observable counts of one export run.
type SyncSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Forced     bool

	PlaylistsExported []string // playlist files written this run
	PlaylistsMissing  []string // requested but not found in the library
	PlaylistsIgnored  []string // excluded by the ignore list
	PlaylistsEmpty    []string // resolved to zero eligible tracks

	TracksDesired int   // unique eligible tracks across selected playlists
	TracksCopied  int   // copies actually executed (or counted in dry-run)
	BytesDesired  int64 // aggregate size of desired tracks
	BytesCopied   int64 // aggregate size of copied tracks

	FilesRemoved int // across both scoped roots
	DirsRemoved  int
}
