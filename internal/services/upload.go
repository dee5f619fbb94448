package services

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pirtoo/extunes/internal/shared"
)

// Uploader pushes a directory of exported playlist files to a remote
// service. The service's copy of each playlist is replaced outright, so any
// edits made on the server side are lost.
type Uploader struct {
	svc    Service
	prefix string // server-side path prefix for the exported music tree
	logger *log.Logger
}

// NewUploader creates an Uploader pushing through svc. The prefix is
// prepended to each playlist line to form the path as the server sees it.
func NewUploader(svc Service, prefix string, logger *log.Logger) *Uploader {
	return &Uploader{svc: svc, prefix: prefix, logger: logger}
}

// UploadResult summarizes one push.
type UploadResult struct {
	Playlists int      // playlist files processed
	Created   int      // playlists new to the server
	Updated   int      // playlists replaced because contents differed
	Unchanged int      // playlists already matching
	Missing   []string // rewritten locations the server did not know
}

// Push uploads every .m3u file under dir. The server library is rescanned
// first so freshly exported tracks can be matched by location. Playlists
// whose server copy already matches are left alone; the rest are replaced.
func (u *Uploader) Push(ctx context.Context, dir string) (*UploadResult, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: playlist directory %q", shared.ErrDestination, dir)
	}

	if err := u.svc.Connect(ctx); err != nil {
		return nil, err
	}

	u.logger.Info("requesting library update", "service", u.svc.Name())
	if err := u.svc.UpdateLibrary(ctx); err != nil {
		return nil, err
	}

	tracks, err := u.svc.Tracks(ctx)
	if err != nil {
		return nil, err
	}
	remote, err := u.svc.Playlists(ctx)
	if err != nil {
		return nil, err
	}
	u.logger.Debug("fetched server state", "tracks", len(tracks), "playlists", len(remote))

	files, err := filepath.Glob(filepath.Join(dir, "*.m3u"))
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists in %q: %w", dir, err)
	}

	result := &UploadResult{}
	for _, file := range files {
		result.Playlists++
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

		keys, missing, err := u.resolveFile(file, tracks)
		if err != nil {
			return result, err
		}
		result.Missing = append(result.Missing, missing...)

		if len(keys) == 0 {
			u.logger.Warn("no playlist entries matched server tracks", "playlist", name)
			continue
		}

		existing, known := remote[name]
		if !known {
			u.logger.Info("creating playlist", "playlist", name, "tracks", len(keys))
			if err := u.svc.CreatePlaylist(ctx, name, keys); err != nil {
				return result, err
			}
			result.Created++
			continue
		}

		items, err := u.svc.PlaylistItems(ctx, existing.Key)
		if err != nil {
			return result, err
		}
		if sameItems(items, keys) {
			result.Unchanged++
			continue
		}

		u.logger.Info("replacing playlist", "playlist", name, "tracks", len(keys))
		if err := u.svc.DeletePlaylist(ctx, existing.Key); err != nil {
			return result, err
		}
		if err := u.svc.CreatePlaylist(ctx, name, keys); err != nil {
			return result, err
		}
		result.Updated++
	}

	return result, nil
}

// resolveFile reads one playlist file and maps its lines to server track
// keys, preserving order. Lines the server does not know are reported, not
// fatal; a partially matched playlist is still worth pushing.
func (u *Uploader) resolveFile(file string, tracks map[string]TrackRef) ([]string, []string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open playlist %q: %w", file, err)
	}
	defer f.Close()

	var keys, missing []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		loc := u.serverLocation(line)
		if ref, ok := tracks[loc]; ok {
			keys = append(keys, ref.Key)
		} else {
			u.logger.Warn("not found on server", "location", loc)
			missing = append(missing, loc)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read playlist %q: %w", file, err)
	}

	return keys, missing, nil
}

// serverLocation rewrites one playlist line into the path the server sees:
// separators normalized to forward slashes, the relative lead-in dropped,
// and the server-side prefix prepended.
func (u *Uploader) serverLocation(line string) string {
	loc := strings.ReplaceAll(line, `\`, "/")
	loc = strings.TrimLeft(loc, "./")
	return u.prefix + loc
}

// sameItems reports whether the server playlist already holds exactly the
// desired keys, in order.
func sameItems(items []TrackRef, keys []string) bool {
	if len(items) != len(keys) {
		return false
	}
	for i := range items {
		if items[i].Key != keys[i] {
			return false
		}
	}
	return true
}
