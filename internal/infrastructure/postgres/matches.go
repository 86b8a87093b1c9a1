package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamsync/sync-worker/internal/domain"
)

// MatchRepository caches resolved source-track → destination-video pairs so a
// repeat sync of the same tracks skips the fuzzy search entirely. Sync runs
// themselves are never persisted.
type MatchRepository interface {
	Get(ctx context.Context, sourceTrackID string) (string, error)
	Put(ctx context.Context, track *domain.Track, videoID string) error
}

type matchRepository struct {
	pool *pgxpool.Pool
}

func NewMatchRepository(client Client) MatchRepository {
	return &matchRepository{pool: client.Pool()}
}

// Get returns the cached video id for a source track, or "" on a cache miss.
func (r *matchRepository) Get(ctx context.Context, sourceTrackID string) (string, error) {
	query := `SELECT video_id FROM track_matches WHERE source_track_id = $1`

	var videoID string
	err := r.pool.QueryRow(ctx, query, sourceTrackID).Scan(&videoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to query track match: %w", err)
	}

	return videoID, nil
}

func (r *matchRepository) Put(ctx context.Context, track *domain.Track, videoID string) error {
	if track == nil || track.ID == "" || videoID == "" {
		return errors.New("track id and video id cannot be empty")
	}

	query := `
		INSERT INTO track_matches (source_track_id, video_id, source_title, source_artist)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_track_id)
		DO UPDATE SET video_id = EXCLUDED.video_id, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, track.ID, videoID, track.Title, track.Artist); err != nil {
		return fmt.Errorf("failed to upsert track match: %w", err)
	}

	return nil
}
