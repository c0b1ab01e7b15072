package models

// MediaSummary is the normalized form of a TMDB movie or TV row. Search
// results carry genre ids; detail lookups carry flat genre names. The movie
// and TV title/date field differences are unified at ingestion, so consumers
// only ever see Title and ReleaseDate.
type MediaSummary struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	MediaType   string   `json:"mediaType"` // "movie" | "tv"
	PosterPath  string   `json:"posterPath,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	GenreIDs    []int64  `json:"genreIds,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	VoteAverage float64  `json:"voteAverage,omitempty"`
	VoteCount   int64    `json:"voteCount,omitempty"`
	Popularity  float64  `json:"popularity,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"` // YYYY-MM-DD (first air date for TV)
}

// Recommendation is the UI-ready display record returned by the API.
// Optional fields are pointers so absent values serialize as null rather
// than zero values (a missing poster must never render as a broken link).
type Recommendation struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	PosterURL *string  `json:"posterUrl"`
	Year      *string  `json:"year"`
	Rating    *float64 `json:"rating"`
	Overview  *string  `json:"overview"`
	MediaType string   `json:"mediaType"`
}
