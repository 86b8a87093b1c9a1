package application

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/streamsync/sync-worker/internal/domain"
	"github.com/streamsync/sync-worker/internal/infrastructure/postgres"
	"github.com/streamsync/sync-worker/internal/infrastructure/youtube"
)

// AcceptancePolicy decides whether the destination's top search result is
// good enough to append. The default accepts the first result
// unconditionally; stricter matchers plug in here without the orchestrator
// knowing.
type AcceptancePolicy interface {
	Accept(source *domain.Track, videoID, videoTitle string) bool
}

type acceptFirst struct{}

func (acceptFirst) Accept(*domain.Track, string, string) bool { return true }

// AcceptFirst takes whatever the destination's fuzzy ranking puts on top.
func AcceptFirst() AcceptancePolicy { return acceptFirst{} }

type termFilter struct {
	excludeTerms []string
}

func (p termFilter) Accept(_ *domain.Track, _, videoTitle string) bool {
	titleLower := strings.ToLower(videoTitle)
	for _, term := range p.excludeTerms {
		if strings.Contains(titleLower, term) {
			return false
		}
	}
	return true
}

// RejectTerms drops candidates whose title contains any of the given terms,
// e.g. covers and karaoke versions.
func RejectTerms(terms ...string) AcceptancePolicy {
	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}
	return termFilter{excludeTerms: lowered}
}

// AppendFunc writes one resolved video into the destination collection. The
// orchestrator supplies it so credential refresh stays outside the engine.
type AppendFunc func(ctx context.Context, videoID string) (bool, error)

// Resolver turns an ordered sequence of source tracks into an ordered
// sequence of match results, one per track, in source order.
type Resolver interface {
	Resolve(ctx context.Context, tracks []*domain.Track, appendItem AppendFunc, onProgress func(processed, matched, failed int)) []*domain.TrackMatch
}

type resolver struct {
	youtubeClient youtube.Client
	cache         postgres.MatchRepository
	policy        AcceptancePolicy
	concurrency   int
}

func NewResolver(youtubeClient youtube.Client, cache postgres.MatchRepository, policy AcceptancePolicy, concurrency int) Resolver {
	if policy == nil {
		policy = AcceptFirst()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &resolver{
		youtubeClient: youtubeClient,
		cache:         cache,
		policy:        policy,
		concurrency:   concurrency,
	}
}

type candidate struct {
	videoID string
	err     error
	cached  bool
}

// Resolve searches concurrently but appends strictly in source order, so the
// destination collection preserves the source listing and the result slice
// lines up index-for-index with the input.
func (r *resolver) Resolve(ctx context.Context, tracks []*domain.Track, appendItem AppendFunc, onProgress func(processed, matched, failed int)) []*domain.TrackMatch {
	if len(tracks) == 0 {
		return nil
	}

	candidates := r.searchAll(ctx, tracks)

	matches := make([]*domain.TrackMatch, len(tracks))
	matched, failed := 0, 0

	for i, track := range tracks {
		matches[i] = r.writeOne(ctx, track, candidates[i], appendItem)

		if matches[i].Matched() {
			matched++
		} else {
			failed++
		}

		if onProgress != nil {
			onProgress(i+1, matched, failed)
		}
	}

	return matches
}

func (r *resolver) searchAll(ctx context.Context, tracks []*domain.Track) []candidate {
	candidates := make([]candidate, len(tracks))

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i, track := range tracks {
		if track.Sentinel() {
			continue
		}

		wg.Add(1)
		go func(i int, t *domain.Track) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				candidates[i] = candidate{err: ctx.Err()}
				return
			default:
			}

			candidates[i] = r.searchOne(ctx, t)
		}(i, track)
	}

	wg.Wait()
	return candidates
}

func (r *resolver) searchOne(ctx context.Context, track *domain.Track) candidate {
	if r.cache != nil && track.ID != "" {
		videoID, err := r.cache.Get(ctx, track.ID)
		if err != nil {
			log.Printf("match cache lookup failed for %s: %v", track.ID, err)
		} else if videoID != "" {
			return candidate{videoID: videoID, cached: true}
		}
	}

	videoID, videoTitle, err := r.youtubeClient.SearchBestMatch(ctx, track.SearchQuery())
	if err != nil {
		return candidate{err: err}
	}

	if videoID == "" || !r.policy.Accept(track, videoID, videoTitle) {
		return candidate{}
	}

	return candidate{videoID: videoID}
}

func (r *resolver) writeOne(ctx context.Context, track *domain.Track, cand candidate, appendItem AppendFunc) *domain.TrackMatch {
	if track.Sentinel() {
		return domain.NewNotFound(track)
	}

	if cand.err != nil {
		return domain.NewSearchError(track, cand.err.Error())
	}

	if cand.videoID == "" {
		return domain.NewNotFound(track)
	}

	ok, err := appendItem(ctx, cand.videoID)
	if err != nil {
		return domain.NewAppendError(track, cand.videoID, err.Error())
	}
	if !ok {
		return domain.NewAppendError(track, cand.videoID, "destination rejected append")
	}

	if r.cache != nil && !cand.cached && track.ID != "" {
		if err := r.cache.Put(ctx, track, cand.videoID); err != nil {
			log.Printf("match cache write failed for %s: %v", track.ID, err)
		}
	}

	return domain.NewMatched(track, cand.videoID)
}
