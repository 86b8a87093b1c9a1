package postgres

import (
	"context"
	"fmt"
)

const createTrackMatchesTableSQL = `
CREATE TABLE IF NOT EXISTS track_matches (
    source_track_id VARCHAR(255) PRIMARY KEY,
    video_id VARCHAR(255) NOT NULL,
    source_title VARCHAR(500),
    source_artist VARCHAR(500),
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_track_matches_video_id ON track_matches(video_id);
`

func RunMigrations(ctx context.Context, client Client) error {
	if _, err := client.Pool().Exec(ctx, createTrackMatchesTableSQL); err != nil {
		return fmt.Errorf("failed to create track_matches table: %w", err)
	}
	return nil
}
