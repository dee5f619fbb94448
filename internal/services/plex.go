// Plex implementation of [Service]
//
// Endpoints follow the Plex Media Server HTTP API; only token auth is
// supported.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/pirtoo/extunes/internal/shared"
)

// plexContainer is the envelope every Plex JSON response arrives in.
type plexContainer struct {
	MediaContainer struct {
		MachineIdentifier string          `json:"machineIdentifier"`
		Directory         []plexDirectory `json:"Directory"`
		Metadata          []plexMetadata  `json:"Metadata"`
	} `json:"MediaContainer"`
}

type plexDirectory struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type plexMetadata struct {
	RatingKey string `json:"ratingKey"`
	Title     string `json:"title"`
	Media     []struct {
		Part []struct {
			File string `json:"file"`
		} `json:"Part"`
	} `json:"Media"`
}

// PlexService implements the Service interface against a Plex Media Server.
// Requests are paced by a token-bucket limiter so bulk playlist pushes do
// not hammer the server.
type PlexService struct {
	baseURL    string
	token      string
	section    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger

	machineID  string
	sectionKey string
}

// NewPlexService creates a Plex service from the server connection settings.
func NewPlexService(cfg shared.PlexConfig, client *http.Client, logger *log.Logger) *PlexService {
	if client == nil {
		client = http.DefaultClient
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	return &PlexService{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		section:    cfg.Section,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

func (p *PlexService) Name() string {
	return "Plex"
}

// doRequest performs one rate-limited, token-authenticated request and
// decodes the response envelope when result is non-nil.
func (p *PlexService) doRequest(ctx context.Context, method, endpoint string, result *plexContainer) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", p.token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: status %d", shared.ErrAPIRequest, method, endpoint, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Connect reads the server identity and resolves the configured music
// section to its key.
func (p *PlexService) Connect(ctx context.Context) error {
	var root plexContainer
	if err := p.doRequest(ctx, http.MethodGet, "/", &root); err != nil {
		return err
	}
	p.machineID = root.MediaContainer.MachineIdentifier

	var sections plexContainer
	if err := p.doRequest(ctx, http.MethodGet, "/library/sections", &sections); err != nil {
		return err
	}
	for _, d := range sections.MediaContainer.Directory {
		if d.Title == p.section {
			p.sectionKey = d.Key
			p.logger.Debug("resolved section", "title", d.Title, "key", d.Key)
			return nil
		}
	}

	return fmt.Errorf("%w: no library section named %q", shared.ErrAPIRequest, p.section)
}

// UpdateLibrary triggers a rescan of the music section.
func (p *PlexService) UpdateLibrary(ctx context.Context) error {
	endpoint := fmt.Sprintf("/library/sections/%s/refresh", p.sectionKey)
	return p.doRequest(ctx, http.MethodGet, endpoint, nil)
}

// Tracks fetches the whole music section keyed by file location. A track
// with no media part has no location and is skipped.
func (p *PlexService) Tracks(ctx context.Context) (map[string]TrackRef, error) {
	// type=10 selects track items.
	endpoint := fmt.Sprintf("/library/sections/%s/all?type=10", p.sectionKey)

	var container plexContainer
	if err := p.doRequest(ctx, http.MethodGet, endpoint, &container); err != nil {
		return nil, err
	}

	tracks := make(map[string]TrackRef, len(container.MediaContainer.Metadata))
	for _, m := range container.MediaContainer.Metadata {
		if len(m.Media) == 0 || len(m.Media[0].Part) == 0 {
			continue
		}
		loc := m.Media[0].Part[0].File
		tracks[loc] = TrackRef{Key: m.RatingKey, Location: loc}
	}
	return tracks, nil
}

// Playlists fetches the server's audio playlists keyed by title.
func (p *PlexService) Playlists(ctx context.Context) (map[string]RemotePlaylist, error) {
	var container plexContainer
	if err := p.doRequest(ctx, http.MethodGet, "/playlists?playlistType=audio", &container); err != nil {
		return nil, err
	}

	playlists := make(map[string]RemotePlaylist, len(container.MediaContainer.Metadata))
	for _, m := range container.MediaContainer.Metadata {
		playlists[m.Title] = RemotePlaylist{Key: m.RatingKey, Title: m.Title}
	}
	return playlists, nil
}

// PlaylistItems fetches the ordered items of one server playlist.
func (p *PlexService) PlaylistItems(ctx context.Context, playlistKey string) ([]TrackRef, error) {
	endpoint := fmt.Sprintf("/playlists/%s/items", playlistKey)

	var container plexContainer
	if err := p.doRequest(ctx, http.MethodGet, endpoint, &container); err != nil {
		return nil, err
	}

	items := make([]TrackRef, 0, len(container.MediaContainer.Metadata))
	for _, m := range container.MediaContainer.Metadata {
		ref := TrackRef{Key: m.RatingKey}
		if len(m.Media) > 0 && len(m.Media[0].Part) > 0 {
			ref.Location = m.Media[0].Part[0].File
		}
		items = append(items, ref)
	}
	return items, nil
}

// CreatePlaylist creates an audio playlist containing the given items, in
// order, referenced through the server's own metadata URI scheme.
func (p *PlexService) CreatePlaylist(ctx context.Context, title string, keys []string) error {
	uri := fmt.Sprintf("server://%s/com.plexapp.plugins.library/library/metadata/%s",
		p.machineID, strings.Join(keys, ","))

	params := url.Values{}
	params.Set("type", "audio")
	params.Set("smart", "0")
	params.Set("title", title)
	params.Set("uri", uri)

	return p.doRequest(ctx, http.MethodPost, "/playlists?"+params.Encode(), nil)
}

// DeletePlaylist removes a playlist from the server.
func (p *PlexService) DeletePlaylist(ctx context.Context, playlistKey string) error {
	return p.doRequest(ctx, http.MethodDelete, "/playlists/"+playlistKey, nil)
}
