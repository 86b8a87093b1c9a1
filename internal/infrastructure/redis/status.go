package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/streamsync/sync-worker/internal/domain"
)

const (
	statusKeyPrefix = "streamsync:sync:"
	statusKeySuffix = ":status"
	statusTTL       = 24 * time.Hour
)

// SyncStatusData is the wire shape the presentation layer polls while a run
// is in flight.
type SyncStatusData struct {
	JobID           string            `json:"jobId"`
	Status          domain.SyncStatus `json:"status"`
	Progress        int               `json:"progress"`
	TotalTracks     int               `json:"totalTracks"`
	ProcessedTracks int               `json:"processedTracks"`
	MatchedTracks   int               `json:"matchedTracks"`
	FailedTracks    int               `json:"failedTracks"`
	CollectionURL   string            `json:"collectionUrl,omitempty"`
	Error           string            `json:"error,omitempty"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

type StatusStore interface {
	Set(ctx context.Context, status *SyncStatusData) error
	Get(ctx context.Context, jobID string) (*SyncStatusData, error)
	Delete(ctx context.Context, jobID string) error
}

type statusStore struct {
	rdb *redis.Client
}

func NewStatusStore(client Client) StatusStore {
	return &statusStore{rdb: client.RDB()}
}

func statusKey(jobID string) string {
	return statusKeyPrefix + jobID + statusKeySuffix
}

func (s *statusStore) Set(ctx context.Context, status *SyncStatusData) error {
	status.UpdatedAt = time.Now()

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	if err := s.rdb.Set(ctx, statusKey(status.JobID), data, statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}

	return nil
}

func (s *statusStore) Get(ctx context.Context, jobID string) (*SyncStatusData, error) {
	data, err := s.rdb.Get(ctx, statusKey(jobID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	var status SyncStatusData
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}

	return &status, nil
}

func (s *statusStore) Delete(ctx context.Context, jobID string) error {
	if err := s.rdb.Del(ctx, statusKey(jobID)).Err(); err != nil {
		return fmt.Errorf("failed to delete status: %w", err)
	}
	return nil
}

func NewStatusFromRun(run *domain.SyncRun) *SyncStatusData {
	return &SyncStatusData{
		JobID:           run.ID,
		Status:          run.Status,
		Progress:        run.Progress(),
		TotalTracks:     run.TotalTracks,
		ProcessedTracks: run.ProcessedTracks,
		MatchedTracks:   run.MatchedTracks,
		FailedTracks:    run.FailedTracks,
		CollectionURL:   run.CollectionURL,
		Error:           run.ErrorMessage,
		UpdatedAt:       run.UpdatedAt,
	}
}
