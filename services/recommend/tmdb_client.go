package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinesage/models"
)

const (
	tmdbBaseURL    = "https://api.themoviedb.org/3"
	tmdbPosterBase = "https://image.tmdb.org/t/p/"
	tmdbPosterSize = "w500"
)

type tmdbClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func newTMDBClient(apiKey string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: tmdbBaseURL,
		httpc:   httpc,
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c.apiKey != ""
}

// tmdbEntry is a raw list row from search or related-content endpoints.
// Movie rows use title/release_date, TV rows use name/first_air_date.
type tmdbEntry struct {
	ID           int64   `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	PosterPath   string  `json:"poster_path"`
	Overview     string  `json:"overview"`
	GenreIDs     []int64 `json:"genre_ids"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
}

type tmdbListResponse struct {
	Results []tmdbEntry `json:"results"`
}

type tmdbDetailsResponse struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	PosterPath   string  `json:"poster_path"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Genres       []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// summaryFromEntry is the single normalization point for raw TMDB list rows.
// mediaType overrides the row's own media_type for endpoints that omit it
// (the per-type related-content lists).
func summaryFromEntry(e tmdbEntry, mediaType string) *models.MediaSummary {
	if mediaType == "" {
		mediaType = e.MediaType
	}
	title := e.Title
	if title == "" {
		title = e.Name
	}
	date := e.ReleaseDate
	if date == "" {
		date = e.FirstAirDate
	}
	return &models.MediaSummary{
		ID:          e.ID,
		Title:       title,
		MediaType:   mediaType,
		PosterPath:  e.PosterPath,
		Overview:    e.Overview,
		GenreIDs:    e.GenreIDs,
		VoteAverage: e.VoteAverage,
		VoteCount:   e.VoteCount,
		Popularity:  e.Popularity,
		ReleaseDate: date,
	}
}

func (c *tmdbClient) getJSON(ctx context.Context, endpoint string, query url.Values, v any) error {
	if !c.isConfigured() {
		return errors.New("tmdb api key not configured")
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	query.Set("language", "en-US")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create tmdb request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("tmdb request %s failed: status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode tmdb response %s: %w", endpoint, err)
	}
	return nil
}

// searchMulti resolves a free-text title via multi search and returns the
// first movie or TV result, skipping every other entity type (people,
// collections). A (nil, nil) return means the search succeeded but nothing
// qualified.
func (c *tmdbClient) searchMulti(ctx context.Context, query string) (*models.MediaSummary, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", "1")

	var resp tmdbListResponse
	if err := c.getJSON(ctx, "/search/multi", q, &resp); err != nil {
		return nil, err
	}

	for _, e := range resp.Results {
		if e.MediaType == "movie" || e.MediaType == "tv" {
			return summaryFromEntry(e, ""), nil
		}
	}
	return nil, nil
}

// fetchDetails fetches the single-item detail record, with genres flattened
// to names.
func (c *tmdbClient) fetchDetails(ctx context.Context, mediaType string, id int64) (*models.MediaSummary, error) {
	var resp tmdbDetailsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/%d", mediaType, id), nil, &resp); err != nil {
		return nil, err
	}

	title := resp.Title
	if title == "" {
		title = resp.Name
	}
	date := resp.ReleaseDate
	if date == "" {
		date = resp.FirstAirDate
	}
	genres := make([]string, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		genres = append(genres, g.Name)
	}

	return &models.MediaSummary{
		ID:          resp.ID,
		Title:       title,
		MediaType:   mediaType,
		PosterPath:  resp.PosterPath,
		Overview:    resp.Overview,
		Genres:      genres,
		VoteAverage: resp.VoteAverage,
		VoteCount:   resp.VoteCount,
		Popularity:  resp.Popularity,
		ReleaseDate: date,
	}, nil
}

// fetchRelated fetches one of the two related-content flavors ("similar" or
// "recommendations") for a media item.
func (c *tmdbClient) fetchRelated(ctx context.Context, mediaType string, id int64, kind string) ([]models.MediaSummary, error) {
	var resp tmdbListResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/%d/%s", mediaType, id, kind), nil, &resp); err != nil {
		return nil, err
	}

	items := make([]models.MediaSummary, 0, len(resp.Results))
	for _, e := range resp.Results {
		items = append(items, *summaryFromEntry(e, mediaType))
	}
	return items, nil
}

// posterURL derives the full poster URL by template substitution. An absent
// path yields nil, never a broken link.
func posterURL(path string) *string {
	if path == "" {
		return nil
	}
	u := tmdbPosterBase + tmdbPosterSize + path
	return &u
}
