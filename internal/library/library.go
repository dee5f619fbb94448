package library

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"howett.net/plist"

	"github.com/pirtoo/extunes/internal/models"
	"github.com/pirtoo/extunes/internal/shared"
)

// libraryXML mirrors the top-level dict of an iTunes XML property list.
type libraryXML struct {
	MajorVersion *int                `plist:"Major Version"`
	MinorVersion *int                `plist:"Minor Version"`
	Date         time.Time           `plist:"Date"`
	MusicFolder  string              `plist:"Music Folder"`
	Tracks       map[string]trackXML `plist:"Tracks"`
	Playlists    []playlistXML       `plist:"Playlists"`
}

type trackXML struct {
	Location  string `plist:"Location"`
	Size      *int64 `plist:"Size"`
	Kind      string `plist:"Kind"`
	Protected *bool  `plist:"Protected"`
	HasVideo  *bool  `plist:"Has Video"`
}

type playlistXML struct {
	Name          string            `plist:"Name"`
	Items         []playlistItemXML `plist:"Playlist Items"`
	Master        *bool             `plist:"Master"`
	Music         *bool             `plist:"Music"`
	Visible       *bool             `plist:"Visible"`
	Movies        *bool             `plist:"Movies"`
	TVShows       *bool             `plist:"TV Shows"`
	Purchased     *bool             `plist:"Purchased Music"`
	PartyShuffle  *bool             `plist:"Party Shuffle"`
	SmartCriteria []byte            `plist:"Smart Criteria"`
}

type playlistItemXML struct {
	TrackID *int `plist:"Track ID"`
}

// Load reads and parses the iTunes XML file at path into a snapshot.
func Load(path string) (*models.LibrarySnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %q: %v", shared.ErrLibraryFormat, path, err)
	}
	return Parse(data)
}

// Parse decodes raw iTunes XML property list data into a snapshot.
func Parse(data []byte) (*models.LibrarySnapshot, error) {
	var lib libraryXML
	if _, err := plist.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLibraryFormat, err)
	}

	if lib.MajorVersion == nil || lib.MinorVersion == nil {
		return nil, fmt.Errorf("%w: version keys missing (corrupt or newer format?)", shared.ErrLibraryFormat)
	}
	if lib.MusicFolder == "" {
		return nil, fmt.Errorf("%w: Music Folder key missing", shared.ErrLibraryFormat)
	}
	if lib.Tracks == nil {
		return nil, fmt.Errorf("%w: Tracks key missing", shared.ErrLibraryFormat)
	}
	if lib.Playlists == nil {
		return nil, fmt.Errorf("%w: Playlists key missing", shared.ErrLibraryFormat)
	}

	musicRoot, err := locationToPath(lib.MusicFolder)
	if err != nil {
		return nil, fmt.Errorf("%w: bad Music Folder location: %v", shared.ErrLibraryFormat, err)
	}

	snap := &models.LibrarySnapshot{
		MusicRoot: musicRoot,
		Version:   fmt.Sprintf("%d.%d", *lib.MajorVersion, *lib.MinorVersion),
		Date:      lib.Date,
		Tracks:    make(map[models.TrackID]models.Track, len(lib.Tracks)),
	}

	for id, t := range lib.Tracks {
		track := models.Track{
			ID:        models.TrackID(id),
			Size:      t.Size,
			Kind:      t.Kind,
			Protected: t.Protected != nil && *t.Protected,
			HasVideo:  t.HasVideo != nil && *t.HasVideo,
		}
		if t.Location != "" {
			loc, err := locationToPath(t.Location)
			if err != nil {
				return nil, fmt.Errorf("%w: track %s has bad location %q: %v", shared.ErrLibraryFormat, id, t.Location, err)
			}
			track.Location = loc
			track.TypeTag = strings.ToLower(strings.TrimPrefix(filepath.Ext(loc), "."))
		}
		snap.Tracks[track.ID] = track
	}

	for _, p := range lib.Playlists {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: playlist without a Name", shared.ErrLibraryFormat)
		}

		playlist := models.Playlist{
			Name:         p.Name,
			Master:       p.Master,
			Music:        p.Music,
			Visible:      p.Visible,
			Movies:       p.Movies,
			TVShows:      p.TVShows,
			Purchased:    p.Purchased,
			PartyShuffle: p.PartyShuffle,
		}
		if p.SmartCriteria != nil {
			yes := true
			playlist.Smart = &yes
		}

		for _, item := range p.Items {
			if item.TrackID == nil {
				return nil, fmt.Errorf("%w: playlist %q has an item without a Track ID", shared.ErrLibraryFormat, p.Name)
			}
			playlist.Tracks = append(playlist.Tracks, models.TrackID(strconv.Itoa(*item.TrackID)))
		}

		snap.Playlists = append(snap.Playlists, playlist)
	}

	return snap, nil
}

// locationToPath converts an iTunes file URL (file://localhost/... or
// file:///...) into a local filesystem path, percent-decoded.
func locationToPath(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported location scheme %q", u.Scheme)
	}
	if u.Path == "" {
		return "", fmt.Errorf("empty path in location %q", location)
	}
	return u.Path, nil
}
