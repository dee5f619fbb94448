// package services defines interface Service for media servers that accept
// playlist uploads.
//
// Plex is the only implementation today.
package services

import (
	"context"
)

// Service is a remote media server whose playlists can be replaced from
// local playlist files. Track matching happens by file location, so the
// server must already know about the exported files.
type Service interface {
	// Connect verifies the server is reachable and resolves the music
	// section. Must be called before any other method.
	Connect(ctx context.Context) error

	// UpdateLibrary asks the server to rescan the music section so
	// recently exported files are matched.
	UpdateLibrary(ctx context.Context) error

	// Tracks returns every track in the music section keyed by its file
	// location as the server sees it.
	Tracks(ctx context.Context) (map[string]TrackRef, error)

	// Playlists returns the server's audio playlists keyed by title.
	Playlists(ctx context.Context) (map[string]RemotePlaylist, error)

	// PlaylistItems returns the ordered items of one server playlist.
	PlaylistItems(ctx context.Context, playlistKey string) ([]TrackRef, error)

	// CreatePlaylist creates a playlist with the given ordered items.
	CreatePlaylist(ctx context.Context, title string, keys []string) error

	// DeletePlaylist removes a server playlist.
	DeletePlaylist(ctx context.Context, playlistKey string) error

	// Name returns the name of the service (e.g., "Plex")
	Name() string
}

// TrackRef identifies one track on the remote server.
type TrackRef struct {
	Key      string // server-side item identifier
	Location string // file path as the server sees it
}

// RemotePlaylist is a playlist that already exists on the server.
type RemotePlaylist struct {
	Key   string
	Title string
}
