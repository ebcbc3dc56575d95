// internal/tmdb/client.go
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reelparty/reelparty/internal/models"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	imageBaseURL   = "https://image.tmdb.org/t/p/w500"
)

// topicEndpoints maps named topics to TMDB API paths. Unknown topics fall
// back to "popular".
var topicEndpoints = map[string]string{
	"popular":     "/movie/popular",
	"topRated":    "/movie/top_rated",
	"nowPlaying":  "/movie/now_playing",
	"upcoming":    "/movie/upcoming",
	"animation":   "/discover/movie?with_genres=16",
	"action":      "/discover/movie?with_genres=28",
	"comedy":      "/discover/movie?with_genres=35",
	"horror":      "/discover/movie?with_genres=27",
	"sciFi":       "/discover/movie?with_genres=878",
	"romance":     "/discover/movie?with_genres=10749",
	"documentary": "/discover/movie?with_genres=99",
	"classic":     "/discover/movie?with_primary_release_date.lte=1990-01-01",
}

// Client fetches movie candidates from TMDB. Results are cached per
// topic+count, and any upstream failure degrades to the built-in fallback
// catalog, so callers always receive a non-empty list and never an error.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	logger  *logrus.Logger

	mu    sync.Mutex
	cache map[string][]models.Movie
}

// New builds a Client. An empty apiKey disables upstream calls entirely;
// every request is then served from the fallback catalog.
func New(apiKey string, logger *logrus.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		cache:   make(map[string][]models.Movie),
	}
}

// MoviesForGame resolves a topic to an ordered candidate list. Recognized
// forms: a named topic ("popular", "topRated", genre names, ...), a year
// range ("classics", "modern", "90s", "80s"), and free-text search
// ("search:<query>").
func (c *Client) MoviesForGame(ctx context.Context, topic string, count int) []models.Movie {
	switch {
	case topic == "classics":
		return c.byYearRange(ctx, 1930, 1980, count)
	case topic == "modern":
		return c.byYearRange(ctx, 2010, time.Now().Year(), count)
	case topic == "90s":
		return c.byYearRange(ctx, 1990, 1999, count)
	case topic == "80s":
		return c.byYearRange(ctx, 1980, 1989, count)
	case strings.HasPrefix(topic, "search:"):
		query := strings.TrimSpace(strings.TrimPrefix(topic, "search:"))
		return c.search(ctx, query, count)
	default:
		return c.byTopic(ctx, topic, count)
	}
}

// CustomMovies resolves caller-supplied titles to movie records, one
// best-effort TMDB match per title. Titles with no match (or a failed
// lookup) become placeholder records so the lobby still gets one candidate
// per requested title.
func (c *Client) CustomMovies(ctx context.Context, titles []string, count int) []models.Movie {
	if len(titles) > count {
		titles = titles[:count]
	}
	movies := make([]models.Movie, 0, len(titles))
	for i, title := range titles {
		movies = append(movies, c.resolveTitle(ctx, title, i))
	}
	return movies
}

func (c *Client) resolveTitle(ctx context.Context, title string, index int) models.Movie {
	placeholder := models.Movie{
		ID:    fmt.Sprintf("m%d", index+1),
		Title: title,
	}
	if c.apiKey == "" {
		return placeholder
	}

	var page pageResponse
	err := c.get(ctx, "/search/movie", url.Values{
		"query":         {title},
		"include_adult": {"false"},
	}, &page)
	if err != nil || len(page.Results) == 0 {
		if err != nil {
			c.logger.WithError(err).Warnf("tmdb: search for %q failed", title)
		}
		return placeholder
	}

	entry := page.Results[0]
	return c.formatMovie(ctx, entry, index)
}

func (c *Client) byTopic(ctx context.Context, topic string, count int) []models.Movie {
	endpoint, ok := topicEndpoints[topic]
	if !ok {
		endpoint = topicEndpoints["popular"]
	}
	return c.fetchList(ctx, fmt.Sprintf("%s_%d", topic, count), endpoint, nil, count)
}

func (c *Client) byYearRange(ctx context.Context, startYear, endYear, count int) []models.Movie {
	params := url.Values{
		"sort_by":                  {"popularity.desc"},
		"primary_release_date.gte": {fmt.Sprintf("%d-01-01", startYear)},
		"primary_release_date.lte": {fmt.Sprintf("%d-12-31", endYear)},
	}
	cacheKey := fmt.Sprintf("years_%d_%d_%d", startYear, endYear, count)
	return c.fetchList(ctx, cacheKey, "/discover/movie", params, count)
}

func (c *Client) search(ctx context.Context, query string, count int) []models.Movie {
	params := url.Values{"query": {query}}
	return c.fetchList(ctx, fmt.Sprintf("search_%s_%d", query, count), "/search/movie", params, count)
}

// fetchList pulls one page from endpoint, trims it to count, enriches each
// entry with its runtime and caches the result under cacheKey.
func (c *Client) fetchList(ctx context.Context, cacheKey, endpoint string, params url.Values, count int) []models.Movie {
	c.mu.Lock()
	if cached, ok := c.cache[cacheKey]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	if c.apiKey == "" {
		return Fallback(count)
	}

	var page pageResponse
	if err := c.get(ctx, endpoint, params, &page); err != nil {
		c.logger.WithError(err).Warnf("tmdb: fetch %s failed, serving fallback", endpoint)
		return Fallback(count)
	}

	entries := page.Results
	if len(entries) > count {
		entries = entries[:count]
	}
	if len(entries) == 0 {
		return Fallback(count)
	}

	movies := make([]models.Movie, 0, len(entries))
	for i, entry := range entries {
		movies = append(movies, c.formatMovie(ctx, entry, i))
	}

	c.mu.Lock()
	c.cache[cacheKey] = movies
	c.mu.Unlock()
	return movies
}

// formatMovie converts a TMDB entry into the lobby-local movie shape,
// fetching the detail record for its runtime. A failed detail lookup just
// leaves duration at zero.
func (c *Client) formatMovie(ctx context.Context, entry movieEntry, index int) models.Movie {
	var details detailsResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", entry.ID), nil, &details); err != nil {
		c.logger.WithError(err).Debugf("tmdb: details for movie %d failed", entry.ID)
	}

	imageURL := ""
	if entry.PosterPath != "" {
		imageURL = imageBaseURL + entry.PosterPath
	}
	releaseYear := ""
	if len(entry.ReleaseDate) >= 4 {
		releaseYear = entry.ReleaseDate[:4]
	}

	return models.Movie{
		ID:          fmt.Sprintf("m%d", index+1),
		TMDBID:      entry.ID,
		Title:       entry.Title,
		ImageURL:    imageURL,
		Description: entry.Overview,
		ReleaseYear: releaseYear,
		Rating:      entry.VoteAverage,
		Duration:    details.Runtime,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return fmt.Errorf("tmdb: bad endpoint %s: %w", endpoint, err)
	}
	q := u.Query()
	for key, vals := range params {
		for _, v := range vals {
			q.Set(key, v)
		}
	}
	q.Set("api_key", c.apiKey)
	q.Set("language", "en-US")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("tmdb: build request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb: unexpected status %s for %s", resp.Status, endpoint)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb: decode %s: %w", endpoint, err)
	}
	return nil
}

type pageResponse struct {
	Results []movieEntry `json:"results"`
}

type movieEntry struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

type detailsResponse struct {
	Runtime int `json:"runtime"`
}
