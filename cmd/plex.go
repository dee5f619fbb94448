package main

import (
	"context"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/pirtoo/extunes/internal/services"
	"github.com/pirtoo/extunes/internal/shared"
)

// Plex uploads the exported playlist directory to a Plex server, replacing
// each server playlist whose contents differ from the local file.
func (r *Runner) Plex(ctx context.Context, cmd *cli.Command) error {
	plexConfig := r.config.Plex
	if url := cmd.String("url"); url != "" {
		plexConfig.URL = url
	}
	if token := cmd.String("token"); token != "" {
		plexConfig.Token = token
	}

	dir := cmd.String("dir")
	if dir == "" {
		dir = filepath.Join(shared.ExpandHome(r.config.Destination.Path), r.config.Destination.PlaylistDir)
	}

	r.logger.Info("uploading playlists", "dir", dir, "server", plexConfig.URL)

	svc := services.NewPlexService(plexConfig, r.httpClient, r.logger)
	uploader := services.NewUploader(svc, plexConfig.Prefix, r.logger)

	result, err := uploader.Push(ctx, dir)
	if err != nil {
		return err
	}

	r.writePlainHeader("Upload Complete")
	r.writePlain("Playlists: %d processed\n", result.Playlists)
	r.writePlain("Created: %d  Updated: %d  Unchanged: %d\n",
		result.Created, result.Updated, result.Unchanged)
	if len(result.Missing) > 0 {
		r.writePlain("\nTracks the server did not know:\n")
		for _, loc := range result.Missing {
			r.writePlain("  %s\n", loc)
		}
	}

	return nil
}
