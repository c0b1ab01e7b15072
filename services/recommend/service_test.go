package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"cinesage/models"
)

const geminiHost = "generativelanguage.googleapis.com"

func newTestService(geminiKey string, rt roundTripFunc) *Service {
	return NewService("tmdb-key", geminiKey, 10*time.Minute, &http.Client{Transport: rt})
}

func geminiText(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func TestResolveTitleNegativeCache(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	svc := newTestService("", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return jsonResponse(http.StatusOK, `{"results":[]}`), nil
	}))

	if got := svc.ResolveTitle(context.Background(), "CompletelyMadeUpTitleXYZ123"); got != nil {
		t.Fatalf("expected nil for unknown title, got %+v", got)
	}
	if got := svc.ResolveTitle(context.Background(), "CompletelyMadeUpTitleXYZ123"); got != nil {
		t.Fatalf("expected nil from negative cache, got %+v", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected 1 outbound search, got %d", calls)
	}
}

// Transport failures are not a stable "not found" signal, so they must not
// be cached; the next call retries the network.
func TestResolveTitleErrorNotCached(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	svc := newTestService("", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return jsonResponse(http.StatusInternalServerError, `{}`), nil
	}))

	svc.ResolveTitle(context.Background(), "Flaky")
	svc.ResolveTitle(context.Background(), "Flaky")

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Fatalf("expected failed lookups to retry on next call, got %d calls", calls)
	}
}

func TestResolveDetailsValidation(t *testing.T) {
	svc := newTestService("", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected network call to %s", req.URL)
		return nil, nil
	}))

	if got := svc.ResolveDetails(context.Background(), "book", 1); got != nil {
		t.Fatalf("expected nil for invalid media type, got %+v", got)
	}
	if got := svc.ResolveDetails(context.Background(), "movie", 0); got != nil {
		t.Fatalf("expected nil for missing id, got %+v", got)
	}
}

func TestResolveAllToleratesFailuresAndDedups(t *testing.T) {
	svc := newTestService("", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Query().Get("query") {
		case "RealMovie":
			return jsonResponse(http.StatusOK, `{"results":[{
				"id":550,"media_type":"movie","title":"RealMovie","poster_path":"/real.jpg",
				"overview":"A real movie.","vote_average":8.4,"release_date":"1999-10-15"
			}]}`), nil
		default:
			return jsonResponse(http.StatusOK, `{"results":[]}`), nil
		}
	}))

	records := svc.ResolveAll(context.Background(), []string{"RealMovie", "ThisWillNotResolve123xyz", "RealMovie"})
	if len(records) != 1 {
		t.Fatalf("expected exactly 1 deduplicated record, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != 550 || rec.Title != "RealMovie" || rec.MediaType != "movie" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.PosterURL == nil || *rec.PosterURL != "https://image.tmdb.org/t/p/w500/real.jpg" {
		t.Fatalf("unexpected poster url: %v", rec.PosterURL)
	}
	if rec.Year == nil || *rec.Year != "1999" {
		t.Fatalf("unexpected year: %v", rec.Year)
	}
	if rec.Rating == nil || *rec.Rating != 8.4 {
		t.Fatalf("unexpected rating: %v", rec.Rating)
	}
}

func TestResolveAllEmptyInput(t *testing.T) {
	svc := newTestService("", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected network call to %s", req.URL)
		return nil, nil
	}))

	records := svc.ResolveAll(context.Background(), nil)
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", records)
	}
}

// A movie and a TV show can share a numeric id; the compound key keeps both,
// bare-id keeps only the first occurrence.
func TestDedupeStrategies(t *testing.T) {
	records := []models.Recommendation{
		{ID: 5, Title: "Movie Five", MediaType: "movie"},
		{ID: 5, Title: "Show Five", MediaType: "tv"},
	}

	svc := newTestService("", nil)
	got := svc.dedupe(append([]models.Recommendation(nil), records...))
	if len(got) != 2 {
		t.Fatalf("compound key should keep both entries, got %d", len(got))
	}

	svc.SetDedupStrategy(DedupBareID)
	got = svc.dedupe(append([]models.Recommendation(nil), records...))
	if len(got) != 1 || got[0].Title != "Movie Five" {
		t.Fatalf("bare-id dedup should keep first occurrence only, got %+v", got)
	}
}

// searchStub resolves every queried title to a distinct synthetic movie.
func searchStub(t *testing.T) roundTripFunc {
	var (
		mu   sync.Mutex
		ids  = map[string]int{}
		next = 100
	)
	return func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == geminiHost {
			t.Fatalf("unexpected gemini call: %s", req.URL)
		}
		query := req.URL.Query().Get("query")
		mu.Lock()
		id, ok := ids[query]
		if !ok {
			next++
			id = next
			ids[query] = id
		}
		mu.Unlock()
		body := fmt.Sprintf(`{"results":[{"id":%d,"media_type":"movie","title":%q}]}`, id, query)
		return jsonResponse(http.StatusOK, body), nil
	}
}

func TestGenreRecommendationsFallbackWhenUnconfigured(t *testing.T) {
	svc := newTestService("", searchStub(t))

	records := svc.GenreRecommendations(context.Background(), "Horror")
	if len(records) != len(fallbackBuckets["horror"]) {
		t.Fatalf("expected the full horror bucket resolved, got %d records", len(records))
	}
	if records[0].Title != "The Shining" {
		t.Fatalf("expected bucket order preserved, got %q first", records[0].Title)
	}
}

func TestGenreRecommendationsFallbackOnGeminiError(t *testing.T) {
	searches := searchStub(t)
	svc := newTestService("gemini-key", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == geminiHost {
			return jsonResponse(http.StatusServiceUnavailable, `{}`), nil
		}
		return searches(req)
	}))

	records := svc.GenreRecommendations(context.Background(), "Horror")
	if len(records) != len(fallbackBuckets["horror"]) {
		t.Fatalf("expected fallback bucket after gemini failure, got %d records", len(records))
	}
}

func TestGenreRecommendationsResolvesGeneratedTitles(t *testing.T) {
	svc := newTestService("gemini-key", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == geminiHost {
			return jsonResponse(http.StatusOK, geminiText("1. Alpha\n2. \"Beta\"")), nil
		}
		switch req.URL.Query().Get("query") {
		case "Alpha":
			return jsonResponse(http.StatusOK, `{"results":[{"id":1,"media_type":"movie","title":"Alpha"}]}`), nil
		case "Beta":
			return jsonResponse(http.StatusOK, `{"results":[{"id":2,"media_type":"tv","name":"Beta"}]}`), nil
		}
		return jsonResponse(http.StatusOK, `{"results":[]}`), nil
	}))

	records := svc.GenreRecommendations(context.Background(), "Drama")
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Title != "Alpha" || records[1].Title != "Beta" {
		t.Fatalf("unexpected order or titles: %+v", records)
	}
}

func TestGenreRecommendationsEmptyCandidates(t *testing.T) {
	var (
		mu        sync.Mutex
		tmdbCalls int
	)
	svc := newTestService("gemini-key", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == geminiHost {
			return jsonResponse(http.StatusOK, geminiText("  \n \n")), nil
		}
		mu.Lock()
		tmdbCalls++
		mu.Unlock()
		return jsonResponse(http.StatusOK, `{"results":[]}`), nil
	}))

	records := svc.GenreRecommendations(context.Background(), "Drama")
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", records)
	}

	mu.Lock()
	defer mu.Unlock()
	if tmdbCalls != 0 {
		t.Fatalf("expected no resolution calls for zero candidates, got %d", tmdbCalls)
	}
}

func TestSimilarRecommendationsNotFound(t *testing.T) {
	svc := newTestService("", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"results":[]}`), nil
	}))

	_, err := svc.SimilarRecommendations(context.Background(), "CompletelyMadeUpTitleXYZ123")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSimilarRecommendationsDetailsFailure(t *testing.T) {
	svc := newTestService("", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if strings.HasPrefix(req.URL.Path, "/search/multi") {
			return jsonResponse(http.StatusOK, `{"results":[{"id":42,"media_type":"movie","title":"RealMovie"}]}`), nil
		}
		return jsonResponse(http.StatusInternalServerError, `{}`), nil
	}))

	_, err := svc.SimilarRecommendations(context.Background(), "RealMovie")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected internal error after successful search, got %v", err)
	}
}

// Every candidate resolving back to the reference item must leave the result
// empty: a title never recommends itself.
func TestSimilarRecommendationsExcludesSelf(t *testing.T) {
	svc := newTestService("", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/movie/42" {
			return jsonResponse(http.StatusOK, `{"id":42,"title":"RealMovie","genres":[{"id":27,"name":"Horror"}]}`), nil
		}
		// Every search, including the reference lookup, lands on id 42.
		return jsonResponse(http.StatusOK, `{"results":[{"id":42,"media_type":"movie","title":"RealMovie"}]}`), nil
	}))

	records, err := svc.SimilarRecommendations(context.Background(), "RealMovie")
	if err != nil {
		t.Fatalf("SimilarRecommendations failed: %v", err)
	}
	for _, r := range records {
		if r.ID == 42 {
			t.Fatalf("reference item leaked into its own recommendations: %+v", r)
		}
	}
	if len(records) != 0 {
		t.Fatalf("expected empty result when all candidates are the reference, got %d", len(records))
	}
}

func TestRelatedRecommendationsMergesAndRanks(t *testing.T) {
	svc := newTestService("", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/movie/42/recommendations":
			return jsonResponse(http.StatusOK, `{"results":[
				{"id":1,"title":"Good","vote_average":9,"release_date":"2020-01-01"},
				{"id":2,"title":"Okay","vote_average":5,"release_date":"2020-01-01"}
			]}`), nil
		case "/movie/42/similar":
			return jsonResponse(http.StatusOK, `{"results":[
				{"id":2,"title":"Okay Duplicate","vote_average":5},
				{"id":3,"title":"Great","vote_average":10,"release_date":"2021-01-01"}
			]}`), nil
		}
		return jsonResponse(http.StatusNotFound, `{}`), nil
	}))

	records := svc.RelatedRecommendations(context.Background(), "movie", 42)
	if len(records) != 3 {
		t.Fatalf("expected 3 merged records, got %d", len(records))
	}
	if records[0].ID != 3 {
		t.Fatalf("expected the highest-scored item first, got id %d", records[0].ID)
	}
	// The duplicate id from the similar set keeps the recommendation row.
	for _, r := range records {
		if r.ID == 2 && r.Title != "Okay" {
			t.Fatalf("similar-set duplicate overwrote the recommendations row: %+v", r)
		}
		if r.MediaType != "movie" {
			t.Fatalf("expected media type carried through, got %+v", r)
		}
	}
}

func TestRelatedRecommendationsToleratesFailedSide(t *testing.T) {
	svc := newTestService("", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/movie/42/recommendations":
			return jsonResponse(http.StatusInternalServerError, `{}`), nil
		case "/movie/42/similar":
			return jsonResponse(http.StatusOK, `{"results":[{"id":3,"title":"Survivor","vote_average":7}]}`), nil
		}
		return jsonResponse(http.StatusNotFound, `{}`), nil
	}))

	records := svc.RelatedRecommendations(context.Background(), "movie", 42)
	if len(records) != 1 || records[0].ID != 3 {
		t.Fatalf("expected the surviving side's item, got %+v", records)
	}
}

func TestRelatedRecommendationsEmpty(t *testing.T) {
	svc := newTestService("", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{}`), nil
	}))

	records := svc.RelatedRecommendations(context.Background(), "movie", 42)
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", records)
	}
}
