package application

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/streamsync/sync-worker/internal/domain"
	"github.com/streamsync/sync-worker/internal/infrastructure/redis"
	"github.com/streamsync/sync-worker/internal/infrastructure/spotify"
	"github.com/streamsync/sync-worker/internal/infrastructure/youtube"
)

// Syncer runs one sync invocation end to end: fetch source playlist metadata
// and tracks, create the destination collection, drive the resolver, and
// aggregate the report. It always returns a SyncReport; per-track failures
// never escape its boundary.
type Syncer interface {
	Sync(ctx context.Context, job *domain.SyncJob) *domain.SyncReport
}

type syncer struct {
	spotifyClient spotify.Client
	youtubeClient youtube.Client
	resolver      Resolver
	credentials   redis.CredentialStore
	statusStore   redis.StatusStore
}

func NewSyncer(
	spotifyClient spotify.Client,
	youtubeClient youtube.Client,
	resolver Resolver,
	credentials redis.CredentialStore,
	statusStore redis.StatusStore,
) Syncer {
	return &syncer{
		spotifyClient: spotifyClient,
		youtubeClient: youtubeClient,
		resolver:      resolver,
		credentials:   credentials,
		statusStore:   statusStore,
	}
}

// credState is the per-run slot for the destination credential. The refresh
// exchange runs at most once per run, whatever its outcome.
type credState struct {
	cred       *domain.Credential
	refreshed  bool
	refreshErr error
}

func (s *syncer) Sync(ctx context.Context, job *domain.SyncJob) (report *domain.SyncReport) {
	run, err := domain.NewSyncRun(job)
	if err != nil {
		return &domain.SyncReport{Succeeded: false, Message: fmt.Sprintf("invalid job: %v", err)}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic during sync %s: %v", run.ID, r)
			run.Fail(fmt.Sprintf("internal error: %v", r))
			s.saveStatus(ctx, run)
			report = domain.NewFailedReport(run, run.ErrorMessage)
		}
	}()

	srcCred, err := s.credentials.Get(ctx, job.SessionID, domain.PlatformSpotify)
	if err != nil {
		return s.fail(ctx, run, "failed to load spotify credential", err)
	}

	dstCred, err := s.credentials.Get(ctx, job.SessionID, domain.PlatformYouTube)
	if err != nil {
		return s.fail(ctx, run, "failed to load youtube credential", err)
	}

	run.StartFetching()
	s.saveStatus(ctx, run)

	// No refresh flow on the source side: an expired source credential
	// aborts the run before anything was created downstream.
	meta, err := s.spotifyClient.GetPlaylistMetadata(ctx, srcCred, job.SourcePlaylistID)
	if err != nil {
		return s.fail(ctx, run, "failed to fetch playlist metadata", err)
	}

	tracks, err := s.spotifyClient.ListPlaylistTracks(ctx, srcCred, job.SourcePlaylistID)
	if err != nil {
		return s.fail(ctx, run, "failed to fetch playlist tracks", err)
	}

	run.StartCreating(len(tracks), meta.Name)
	s.saveStatus(ctx, run)

	st := &credState{cred: dstCred}

	collectionID, err := s.createCollection(ctx, run, st, meta.Name)
	if err != nil {
		return s.fail(ctx, run, "failed to create destination collection", err)
	}

	run.StartResolving(collectionID, s.youtubeClient.CollectionURL(collectionID))
	s.saveStatus(ctx, run)

	matches := s.resolver.Resolve(ctx, tracks, s.appendFunc(run, st), func(processed, matched, failed int) {
		run.UpdateProgress(processed, matched, failed)
		s.saveStatus(ctx, run)
	})

	matched := 0
	for _, match := range matches {
		if match.Matched() {
			matched++
		}
	}
	run.UpdateProgress(len(matches), matched, len(matches)-matched)

	if st.refreshErr != nil {
		run.Fail(fmt.Sprintf("credential refresh failed: %v", st.refreshErr))
		s.saveStatus(ctx, run)

		report = domain.NewSyncReport(run)
		report.Message = run.ErrorMessage
		return report
	}

	run.Complete()
	s.saveStatus(ctx, run)

	report = domain.NewSyncReport(run)
	log.Printf("sync %s completed: %s", run.ID, report.Message)
	return report
}

func (s *syncer) createCollection(ctx context.Context, run *domain.SyncRun, st *credState, sourceName string) (string, error) {
	description := fmt.Sprintf("Importado do Spotify: %s", sourceName)

	collectionID, err := s.youtubeClient.CreatePlaylist(ctx, st.cred, run.CollectionName, description)
	if errors.Is(err, domain.ErrAuth) && !st.refreshed {
		if rerr := s.refresh(ctx, run.SessionID, st); rerr != nil {
			return "", rerr
		}
		collectionID, err = s.youtubeClient.CreatePlaylist(ctx, st.cred, run.CollectionName, description)
	}

	return collectionID, err
}

// appendFunc wraps AppendItem with the one-shot refresh-and-retry. A second
// auth failure after a successful refresh is not retried again; that single
// track counts as failed and the run continues.
func (s *syncer) appendFunc(run *domain.SyncRun, st *credState) AppendFunc {
	return func(ctx context.Context, videoID string) (bool, error) {
		ok, err := s.youtubeClient.AppendItem(ctx, st.cred, run.CollectionID, videoID)
		if errors.Is(err, domain.ErrAuth) && !st.refreshed {
			if rerr := s.refresh(ctx, run.SessionID, st); rerr != nil {
				return false, rerr
			}
			ok, err = s.youtubeClient.AppendItem(ctx, st.cred, run.CollectionID, videoID)
		}
		return ok, err
	}
}

func (s *syncer) refresh(ctx context.Context, sessionID string, st *credState) error {
	st.refreshed = true

	refreshed, err := s.youtubeClient.RefreshCredential(ctx, st.cred)
	if err != nil {
		st.refreshErr = err
		return fmt.Errorf("failed to refresh credential: %w", err)
	}

	st.cred = refreshed
	log.Printf("refreshed youtube credential for session %s", sessionID)

	if err := s.credentials.Set(ctx, sessionID, refreshed); err != nil {
		log.Printf("failed to store refreshed credential: %v", err)
	}

	return nil
}

func (s *syncer) fail(ctx context.Context, run *domain.SyncRun, message string, err error) *domain.SyncReport {
	full := message
	if err != nil {
		full = fmt.Sprintf("%s: %v", message, err)
	}

	run.Fail(full)
	s.saveStatus(ctx, run)

	log.Printf("sync %s failed: %s", run.ID, full)
	return domain.NewFailedReport(run, full)
}

func (s *syncer) saveStatus(ctx context.Context, run *domain.SyncRun) {
	if err := s.statusStore.Set(ctx, redis.NewStatusFromRun(run)); err != nil {
		log.Printf("failed to update status in redis: %v", err)
	}
}
