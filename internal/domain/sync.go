package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "PENDING"
	SyncStatusFetching  SyncStatus = "FETCHING"
	SyncStatusCreating  SyncStatus = "CREATING"
	SyncStatusResolving SyncStatus = "RESOLVING"
	SyncStatusCompleted SyncStatus = "COMPLETED"
	SyncStatusFailed    SyncStatus = "FAILED"
)

func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusPending, SyncStatusFetching, SyncStatusCreating,
		SyncStatusResolving, SyncStatusCompleted, SyncStatusFailed:
		return true
	default:
		return false
	}
}

func (s SyncStatus) IsTerminal() bool {
	return s == SyncStatusCompleted || s == SyncStatusFailed
}

// SyncJob is the queue payload for one sync invocation.
type SyncJob struct {
	JobID            string    `json:"jobId"`
	SessionID        string    `json:"sessionId"`
	SourcePlaylistID string    `json:"sourcePlaylistId"`
	TargetName       string    `json:"targetName,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func NewSyncJob(sessionID, sourcePlaylistID, targetName string) *SyncJob {
	return &SyncJob{
		JobID:            uuid.New().String(),
		SessionID:        sessionID,
		SourcePlaylistID: sourcePlaylistID,
		TargetName:       targetName,
		CreatedAt:        time.Now(),
	}
}

// SyncRun is the live state of one sync invocation, from queue pickup to the
// terminal report.
type SyncRun struct {
	ID                 string     `json:"id"`
	SessionID          string     `json:"sessionId"`
	SourcePlaylistID   string     `json:"sourcePlaylistId"`
	SourcePlaylistName string     `json:"sourcePlaylistName,omitempty"`
	CollectionID       string     `json:"collectionId,omitempty"`
	CollectionURL      string     `json:"collectionUrl,omitempty"`
	CollectionName     string     `json:"collectionName,omitempty"`
	Status             SyncStatus `json:"status"`
	TotalTracks        int        `json:"totalTracks"`
	ProcessedTracks    int        `json:"processedTracks"`
	MatchedTracks      int        `json:"matchedTracks"`
	FailedTracks       int        `json:"failedTracks"`
	ErrorMessage       string     `json:"errorMessage,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

func NewSyncRun(job *SyncJob) (*SyncRun, error) {
	if job == nil {
		return nil, errors.New("job cannot be nil")
	}
	if job.JobID == "" {
		return nil, errors.New("job ID cannot be empty")
	}
	if job.SessionID == "" {
		return nil, errors.New("session ID cannot be empty")
	}
	if job.SourcePlaylistID == "" {
		return nil, errors.New("source playlist ID cannot be empty")
	}

	now := time.Now()
	return &SyncRun{
		ID:               job.JobID,
		SessionID:        job.SessionID,
		SourcePlaylistID: job.SourcePlaylistID,
		CollectionName:   job.TargetName,
		Status:           SyncStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (r *SyncRun) StartFetching() {
	r.Status = SyncStatusFetching
	r.UpdatedAt = time.Now()
}

func (r *SyncRun) StartCreating(totalTracks int, sourcePlaylistName string) {
	r.Status = SyncStatusCreating
	r.TotalTracks = totalTracks
	r.SourcePlaylistName = sourcePlaylistName
	if r.CollectionName == "" {
		r.CollectionName = sourcePlaylistName
	}
	r.UpdatedAt = time.Now()
}

func (r *SyncRun) StartResolving(collectionID, collectionURL string) {
	r.Status = SyncStatusResolving
	r.CollectionID = collectionID
	r.CollectionURL = collectionURL
	r.UpdatedAt = time.Now()
}

func (r *SyncRun) UpdateProgress(processed, matched, failed int) {
	r.ProcessedTracks = processed
	r.MatchedTracks = matched
	r.FailedTracks = failed
	r.UpdatedAt = time.Now()
}

func (r *SyncRun) Complete() {
	now := time.Now()
	r.Status = SyncStatusCompleted
	r.UpdatedAt = now
	r.CompletedAt = &now
}

func (r *SyncRun) Fail(errorMessage string) {
	now := time.Now()
	r.Status = SyncStatusFailed
	r.ErrorMessage = errorMessage
	r.UpdatedAt = now
	r.CompletedAt = &now
}

func (r *SyncRun) Progress() int {
	if r.TotalTracks == 0 {
		return 0
	}
	return (r.ProcessedTracks * 100) / r.TotalTracks
}

// SyncReport is the immutable terminal outcome of one sync run. Invariant:
// Matched + Failed == Total once the run has completed.
type SyncReport struct {
	JobID          string `json:"jobId"`
	PlaylistName   string `json:"playlistName"`
	CollectionID   string `json:"collectionId,omitempty"`
	CollectionURL  string `json:"collectionUrl,omitempty"`
	TotalTracks    int    `json:"totalTracks"`
	MatchedTracks  int    `json:"matchedTracks"`
	FailedTracks   int    `json:"failedTracks"`
	Succeeded      bool   `json:"succeeded"`
	Message        string `json:"message"`
}

// NewSyncReport builds the report for a run that reached the terminal state
// with a destination collection in place.
func NewSyncReport(run *SyncRun) *SyncReport {
	return &SyncReport{
		JobID:         run.ID,
		PlaylistName:  run.CollectionName,
		CollectionID:  run.CollectionID,
		CollectionURL: run.CollectionURL,
		TotalTracks:   run.TotalTracks,
		MatchedTracks: run.MatchedTracks,
		FailedTracks:  run.FailedTracks,
		Succeeded:     run.Status == SyncStatusCompleted,
		Message: fmt.Sprintf("%d de %d vídeos adicionados à playlist %q",
			run.MatchedTracks, run.TotalTracks, run.CollectionName),
	}
}

// NewFailedReport builds the all-failed report for a run that aborted before
// processing any track.
func NewFailedReport(run *SyncRun, reason string) *SyncReport {
	return &SyncReport{
		JobID:        run.ID,
		PlaylistName: run.CollectionName,
		TotalTracks:  run.TotalTracks,
		Succeeded:    false,
		Message:      reason,
	}
}
