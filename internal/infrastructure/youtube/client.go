package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/streamsync/sync-worker/internal/config"
	"github.com/streamsync/sync-worker/internal/domain"
)

// Client writes collections on the destination platform. Search runs on the
// platform API key, not the user credential, so resolution never depends on
// write-authorization state; only CreatePlaylist and AppendItem can report
// domain.ErrAuth, which the orchestrator may recover once via
// RefreshCredential.
type Client interface {
	CreatePlaylist(ctx context.Context, cred *domain.Credential, title, description string) (collectionID string, err error)
	SearchBestMatch(ctx context.Context, query string) (videoID, videoTitle string, err error)
	AppendItem(ctx context.Context, cred *domain.Credential, collectionID, videoID string) (bool, error)
	RefreshCredential(ctx context.Context, cred *domain.Credential) (*domain.Credential, error)
	CollectionURL(collectionID string) string
}

type client struct {
	baseURL      string
	oauthURL     string
	apiKey       string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	searchLimit  *rate.Limiter
}

func NewClient(cfg config.YouTubeConfig) Client {
	return &client{
		baseURL:      cfg.BaseURL,
		oauthURL:     cfg.OAuthURL,
		apiKey:       cfg.APIKey,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		searchLimit: rate.NewLimiter(rate.Limit(cfg.SearchRate), 1),
	}
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID      searchItemID  `json:"id"`
	Snippet searchSnippet `json:"snippet"`
}

type searchItemID struct {
	VideoID string `json:"videoId"`
}

type searchSnippet struct {
	Title string `json:"title"`
}

type createPlaylistRequest struct {
	Snippet playlistSnippet `json:"snippet"`
	Status  playlistStatus  `json:"status"`
}

type playlistSnippet struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type playlistStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type createPlaylistResponse struct {
	ID string `json:"id"`
}

type appendItemRequest struct {
	Snippet itemSnippet `json:"snippet"`
}

type itemSnippet struct {
	PlaylistID string     `json:"playlistId"`
	ResourceID resourceID `json:"resourceId"`
}

type resourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (c *client) CreatePlaylist(ctx context.Context, cred *domain.Credential, title, description string) (string, error) {
	createURL := fmt.Sprintf("%s/playlists?part=snippet,status", c.baseURL)

	reqBody := createPlaylistRequest{
		Snippet: playlistSnippet{Title: title, Description: description},
		Status:  playlistStatus{PrivacyStatus: "private"},
	}

	var result createPlaylistResponse
	if err := c.post(ctx, cred, createURL, reqBody, &result); err != nil {
		return "", err
	}

	return result.ID, nil
}

// SearchBestMatch issues a single top-1 search. A missing match is not fatal
// to a sync, so an empty result set and upstream failures both collapse to no
// match; only transport errors propagate.
func (c *client) SearchBestMatch(ctx context.Context, query string) (string, string, error) {
	if err := c.searchLimit.Wait(ctx); err != nil {
		return "", "", err
	}

	searchURL := fmt.Sprintf("%s/search?part=snippet&maxResults=1&type=video&q=%s&key=%s",
		c.baseURL, url.QueryEscape(query), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("youtube search for %q returned status %d: %s", query, resp.StatusCode, string(body))
		return "", "", nil
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Items) == 0 || result.Items[0].ID.VideoID == "" {
		return "", "", nil
	}

	return result.Items[0].ID.VideoID, result.Items[0].Snippet.Title, nil
}

// AppendItem adds one video to the collection. The destination keeps items in
// insertion order, so callers must issue appends in source order. A non-auth
// failure returns (false, nil): the track is lost, the sync is not.
func (c *client) AppendItem(ctx context.Context, cred *domain.Credential, collectionID, videoID string) (bool, error) {
	addURL := fmt.Sprintf("%s/playlistItems?part=snippet", c.baseURL)

	reqBody := appendItemRequest{
		Snippet: itemSnippet{
			PlaylistID: collectionID,
			ResourceID: resourceID{Kind: "youtube#video", VideoID: videoID},
		},
	}

	err := c.post(ctx, cred, addURL, reqBody, nil)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrAuth) {
		return false, err
	}

	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrRateLimit) {
		log.Printf("failed to append video %s: %v", videoID, err)
		return false, nil
	}

	return false, err
}

func (c *client) RefreshCredential(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	if !cred.Refreshable() {
		return nil, fmt.Errorf("credential has no refresh token: %w", domain.ErrAuth)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", cred.RefreshToken)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	tokenURL := c.oauthURL + "/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh credential: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var result tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	refreshed := &domain.Credential{
		Platform:     cred.Platform,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}
	if refreshed.RefreshToken == "" {
		// Google omits the refresh token on renewals; keep the original.
		refreshed.RefreshToken = cred.RefreshToken
	}

	return refreshed, nil
}

func (c *client) CollectionURL(collectionID string) string {
	return "https://www.youtube.com/playlist?list=" + collectionID
}

func (c *client) post(ctx context.Context, cred *domain.Credential, postURL string, body, result any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call youtube: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusToError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func statusToError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("youtube: %w", domain.ErrAuth)
	case http.StatusNotFound:
		return fmt.Errorf("youtube: %w", domain.ErrNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("youtube: %w", domain.ErrRateLimit)
	default:
		return &domain.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
}
