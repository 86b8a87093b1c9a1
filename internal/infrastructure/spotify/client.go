package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/streamsync/sync-worker/internal/config"
	"github.com/streamsync/sync-worker/internal/domain"
)

// maxPages caps cursor-following so a misbehaving upstream cannot hold the
// worker in an unbounded pagination loop.
const maxPages = 200

const pageLimit = 50

// Client reads playlists and tracks from the source catalog. Auth failures
// propagate as domain.ErrAuth without retry; the caller decides on refresh.
type Client interface {
	GetPlaylistMetadata(ctx context.Context, cred *domain.Credential, playlistID string) (*domain.PlaylistRef, error)
	ListPlaylistTracks(ctx context.Context, cred *domain.Credential, playlistID string) ([]*domain.Track, error)
	ListPlaylists(ctx context.Context, cred *domain.Credential) ([]*domain.PlaylistRef, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.SpotifyConfig) Client {
	return &client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type playlistResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type tracksPageResponse struct {
	Items []trackItem `json:"items"`
	Next  string      `json:"next"`
}

type trackItem struct {
	Track *trackPayload `json:"track"`
}

type trackPayload struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []artist `json:"artists"`
}

type artist struct {
	Name string `json:"name"`
}

type playlistsPageResponse struct {
	Items []playlistResponse `json:"items"`
	Next  string             `json:"next"`
}

func (c *client) GetPlaylistMetadata(ctx context.Context, cred *domain.Credential, playlistID string) (*domain.PlaylistRef, error) {
	url := fmt.Sprintf("%s/playlists/%s?fields=id,name", c.baseURL, playlistID)

	var result playlistResponse
	if err := c.get(ctx, cred, url, &result); err != nil {
		return nil, err
	}

	return &domain.PlaylistRef{ID: result.ID, Name: result.Name}, nil
}

// ListPlaylistTracks follows the upstream pagination cursor until absent and
// concatenates the pages into one ordered sequence. A listing entry whose
// track payload is null keeps its position as a sentinel so downstream
// accounting still sees every slot.
func (c *client) ListPlaylistTracks(ctx context.Context, cred *domain.Credential, playlistID string) ([]*domain.Track, error) {
	var tracks []*domain.Track

	url := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", c.baseURL, playlistID, pageLimit)

	for page := 0; url != ""; page++ {
		if page >= maxPages {
			return nil, &domain.UpstreamError{
				Status: http.StatusBadGateway,
				Body:   fmt.Sprintf("pagination cursor did not terminate after %d pages", maxPages),
			}
		}

		var result tracksPageResponse
		if err := c.get(ctx, cred, url, &result); err != nil {
			return nil, err
		}

		for _, item := range result.Items {
			tracks = append(tracks, toTrack(item.Track))
		}

		url = result.Next
	}

	return tracks, nil
}

func (c *client) ListPlaylists(ctx context.Context, cred *domain.Credential) ([]*domain.PlaylistRef, error) {
	var playlists []*domain.PlaylistRef

	url := fmt.Sprintf("%s/me/playlists?limit=%d", c.baseURL, pageLimit)

	for page := 0; url != ""; page++ {
		if page >= maxPages {
			return nil, &domain.UpstreamError{
				Status: http.StatusBadGateway,
				Body:   fmt.Sprintf("pagination cursor did not terminate after %d pages", maxPages),
			}
		}

		var result playlistsPageResponse
		if err := c.get(ctx, cred, url, &result); err != nil {
			return nil, err
		}

		for _, item := range result.Items {
			playlists = append(playlists, &domain.PlaylistRef{ID: item.ID, Name: item.Name})
		}

		url = result.Next
	}

	return playlists, nil
}

func (c *client) get(ctx context.Context, cred *domain.Credential, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call spotify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusToError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func statusToError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("spotify: %w", domain.ErrAuth)
	case http.StatusNotFound:
		return fmt.Errorf("spotify: %w", domain.ErrNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("spotify: %w", domain.ErrRateLimit)
	default:
		return &domain.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
}

func toTrack(payload *trackPayload) *domain.Track {
	if payload == nil || payload.Name == "" {
		return domain.NewSentinelTrack()
	}

	var primaryArtist string
	if len(payload.Artists) > 0 {
		primaryArtist = payload.Artists[0].Name
	}

	return &domain.Track{
		ID:     payload.ID,
		Title:  payload.Name,
		Artist: primaryArtist,
	}
}
