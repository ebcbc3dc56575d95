package models

// Movie is a candidate film served to a lobby. Instances come from the
// catalog provider and are immutable once fetched; ID is a local ordinal
// ("m1", "m2", ...) unique within the fetched pool.
type Movie struct {
	ID          string  `json:"id"`
	TMDBID      int64   `json:"tmdbId,omitempty"`
	Title       string  `json:"title"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Description string  `json:"description,omitempty"`
	ReleaseYear string  `json:"releaseYear"`
	Rating      float64 `json:"rating"`
	Duration    int     `json:"duration"`
}

// VoteCounts tallies the three vote kinds cast on a single movie.
type VoteCounts struct {
	Up   int `json:"up"`
	Down int `json:"down"`
	Pass int `json:"pass"`
}

// MovieResult is a movie enriched with its tally and net score.
type MovieResult struct {
	Movie
	Votes VoteCounts `json:"votes"`
	Score int        `json:"score"`
}

// RoundResults is the round:complete payload: movies sorted by score
// (descending, ties in original order) plus the raw per-player vote map
// so clients can reconstruct who voted what.
type RoundResults struct {
	Results []MovieResult                  `json:"results"`
	Votes   map[string]map[string]VoteType `json:"votes"`
}
