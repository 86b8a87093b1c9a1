package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/streamsync/sync-worker/internal/config"
	"github.com/streamsync/sync-worker/internal/domain"
)

func testClient(baseURL, oauthURL string) Client {
	return NewClient(config.YouTubeConfig{
		BaseURL:      baseURL,
		OAuthURL:     oauthURL,
		APIKey:       "api-key",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Timeout:      5 * time.Second,
		SearchRate:   1000,
	})
}

func testCred() *domain.Credential {
	return &domain.Credential{
		Platform:     domain.PlatformYouTube,
		AccessToken:  "yt-token",
		RefreshToken: "yt-refresh",
	}
}

func TestClient_SearchBestMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "Song A Artist X" || q.Get("maxResults") != "1" || q.Get("type") != "video" {
			t.Errorf("search query params = %v", q)
		}
		if q.Get("key") != "api-key" {
			t.Errorf("search used key %q, want platform API key", q.Get("key"))
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("search sent the user credential")
		}
		fmt.Fprint(w, `{"items": [{"id": {"videoId": "vid1"}, "snippet": {"title": "Song A (Official Video)"}}]}`)
	}))
	defer srv.Close()

	videoID, title, err := testClient(srv.URL, srv.URL).SearchBestMatch(context.Background(), "Song A Artist X")
	if err != nil {
		t.Fatal(err)
	}
	if videoID != "vid1" || title != "Song A (Official Video)" {
		t.Errorf("got (%q, %q)", videoID, title)
	}
}

func TestClient_SearchBestMatch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": []}`)
	}))
	defer srv.Close()

	videoID, _, err := testClient(srv.URL, srv.URL).SearchBestMatch(context.Background(), "Song B Artist Y")
	if err != nil || videoID != "" {
		t.Errorf("got (%q, %v), want no match and no error", videoID, err)
	}
}

func TestClient_SearchBestMatch_SwallowsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": "quotaExceeded"}`)
	}))
	defer srv.Close()

	videoID, _, err := testClient(srv.URL, srv.URL).SearchBestMatch(context.Background(), "Song A Artist X")
	if err != nil || videoID != "" {
		t.Errorf("got (%q, %v), want search failure reported as no match", videoID, err)
	}
}

func TestClient_CreatePlaylist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer yt-token" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}

		var body struct {
			Snippet struct {
				Title       string `json:"title"`
				Description string `json:"description"`
			} `json:"snippet"`
			Status struct {
				PrivacyStatus string `json:"privacyStatus"`
			} `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Snippet.Title != "Road Trip" {
			t.Errorf("title = %q", body.Snippet.Title)
		}
		if body.Status.PrivacyStatus != "private" {
			t.Errorf("privacy = %q, want private", body.Status.PrivacyStatus)
		}

		fmt.Fprint(w, `{"id": "col-1"}`)
	}))
	defer srv.Close()

	id, err := testClient(srv.URL, srv.URL).CreatePlaylist(context.Background(), testCred(), "Road Trip", "desc")
	if err != nil {
		t.Fatal(err)
	}
	if id != "col-1" {
		t.Errorf("collection id = %q", id)
	}
}

func TestClient_CreatePlaylist_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, srv.URL).CreatePlaylist(context.Background(), testCred(), "Road Trip", "")
	if !errors.Is(err, domain.ErrAuth) {
		t.Errorf("err = %v, want ErrAuth", err)
	}
}

func TestClient_AppendItem(t *testing.T) {
	var gotVideoID, gotPlaylistID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Snippet struct {
				PlaylistID string `json:"playlistId"`
				ResourceID struct {
					Kind    string `json:"kind"`
					VideoID string `json:"videoId"`
				} `json:"resourceId"`
			} `json:"snippet"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		gotVideoID = body.Snippet.ResourceID.VideoID
		gotPlaylistID = body.Snippet.PlaylistID
		if body.Snippet.ResourceID.Kind != "youtube#video" {
			t.Errorf("kind = %q", body.Snippet.ResourceID.Kind)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	ok, err := testClient(srv.URL, srv.URL).AppendItem(context.Background(), testCred(), "col-1", "vid1")
	if err != nil || !ok {
		t.Fatalf("AppendItem = (%v, %v)", ok, err)
	}
	if gotVideoID != "vid1" || gotPlaylistID != "col-1" {
		t.Errorf("appended %q to %q", gotVideoID, gotPlaylistID)
	}
}

func TestClient_AppendItem_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantOK  bool
		wantErr error
	}{
		{"auth failure propagates", http.StatusUnauthorized, false, domain.ErrAuth},
		{"conflict is non-fatal", http.StatusConflict, false, nil},
		{"throttling is non-fatal", http.StatusTooManyRequests, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			ok, err := testClient(srv.URL, srv.URL).AppendItem(context.Background(), testCred(), "col-1", "vid1")
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("err = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_RefreshCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.Form.Get("grant_type") != "refresh_token" || r.Form.Get("refresh_token") != "yt-refresh" {
			t.Errorf("form = %v", r.Form)
		}
		// Renewal responses omit the refresh token.
		fmt.Fprint(w, `{"access_token": "new-token", "expires_in": 3600}`)
	}))
	defer srv.Close()

	refreshed, err := testClient(srv.URL, srv.URL).RefreshCredential(context.Background(), testCred())
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.AccessToken != "new-token" {
		t.Errorf("access token = %q", refreshed.AccessToken)
	}
	if refreshed.RefreshToken != "yt-refresh" {
		t.Errorf("refresh token = %q, want original kept", refreshed.RefreshToken)
	}
	if refreshed.ExpiresAt.Before(time.Now()) {
		t.Error("refreshed credential already expired")
	}
}

func TestClient_RefreshCredential_NotRefreshable(t *testing.T) {
	cred := &domain.Credential{Platform: domain.PlatformYouTube, AccessToken: "yt-token"}

	_, err := testClient("http://localhost", "http://localhost").RefreshCredential(context.Background(), cred)
	if !errors.Is(err, domain.ErrAuth) {
		t.Errorf("err = %v, want ErrAuth", err)
	}
}
