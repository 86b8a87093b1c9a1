package domain

type Track struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// NewSentinelTrack represents a listing entry whose underlying track payload
// is gone from the source catalog but still occupies a position in the
// source ordering.
func NewSentinelTrack() *Track {
	return &Track{}
}

// Sentinel reports whether the track is a placeholder for a deleted entry.
func (t *Track) Sentinel() bool {
	return t == nil || t.Title == ""
}

// SearchQuery is the verbatim concatenation the destination search receives.
// No normalization: the destination is assumed to do its own fuzzy ranking.
func (t *Track) SearchQuery() string {
	return t.Title + " " + t.Artist
}

type PlaylistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MatchOutcome string

const (
	OutcomeMatched     MatchOutcome = "MATCHED"
	OutcomeNotFound    MatchOutcome = "NOT_FOUND"
	OutcomeSearchError MatchOutcome = "SEARCH_ERROR"
	OutcomeAppendError MatchOutcome = "APPEND_ERROR"
)

// TrackMatch is the outcome of resolving one source track against the
// destination catalog.
type TrackMatch struct {
	SourceTrack *Track       `json:"sourceTrack"`
	VideoID     string       `json:"videoId,omitempty"`
	Outcome     MatchOutcome `json:"outcome"`
	Error       string       `json:"error,omitempty"`
}

func NewMatched(source *Track, videoID string) *TrackMatch {
	return &TrackMatch{SourceTrack: source, VideoID: videoID, Outcome: OutcomeMatched}
}

func NewNotFound(source *Track) *TrackMatch {
	return &TrackMatch{SourceTrack: source, Outcome: OutcomeNotFound}
}

func NewSearchError(source *Track, err string) *TrackMatch {
	return &TrackMatch{SourceTrack: source, Outcome: OutcomeSearchError, Error: err}
}

func NewAppendError(source *Track, videoID, err string) *TrackMatch {
	return &TrackMatch{SourceTrack: source, VideoID: videoID, Outcome: OutcomeAppendError, Error: err}
}

// Matched reports whether the track ended up in the destination collection.
func (m *TrackMatch) Matched() bool {
	return m.Outcome == OutcomeMatched
}
