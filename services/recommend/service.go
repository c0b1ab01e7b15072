package recommend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"cinesage/models"
)

// ErrNotFound is returned when a reference title cannot be resolved against
// the metadata service. Callers surface it as a 404, distinct from bad input.
var ErrNotFound = errors.New("title not found")

// candidateCount is how many titles we ask the generation backend for per
// request.
const candidateCount = 20

// DedupStrategy selects the identity key used when deduplicating resolved
// results. A movie and a TV show can share a numeric id in TMDB's namespace,
// so the compound (id, mediaType) key is the safe default; bare-id matches
// the historical behavior some consumers may still rely on.
type DedupStrategy int

const (
	DedupCompoundKey DedupStrategy = iota
	DedupBareID
)

// Service is the recommendation pipeline: generated candidate titles are
// resolved against TMDB, deduplicated and mapped to display records. The
// only state it holds is the metadata cache.
type Service struct {
	gemini *geminiClient
	tmdb   *tmdbClient
	cache  *memoryCache
	dedup  DedupStrategy
}

func NewService(tmdbAPIKey, geminiAPIKey string, cacheTTL time.Duration, httpc *http.Client) *Service {
	return &Service{
		gemini: newGeminiClient(geminiAPIKey, httpc),
		tmdb:   newTMDBClient(tmdbAPIKey, httpc),
		cache:  newMemoryCache(cacheTTL),
		dedup:  DedupCompoundKey,
	}
}

// SetDedupStrategy switches how resolved batches are deduplicated.
func (s *Service) SetDedupStrategy(strategy DedupStrategy) {
	s.dedup = strategy
}

// SweepExpired drops expired cache entries and returns how many were
// removed. The scheduler invokes it periodically; the cache itself never
// runs background work.
func (s *Service) SweepExpired() int {
	return s.cache.sweepExpired()
}

// ResolveTitle resolves a free-text title to its first movie or TV match.
// A nil return means not found or upstream failure. "Not found" is cached
// (negative cache); failures are not, since an error is no evidence the
// title doesn't exist.
func (s *Service) ResolveTitle(ctx context.Context, title string) *models.MediaSummary {
	key := cacheKey("search", title)
	if v, ok := s.cache.get(key); ok {
		return v
	}

	summary, err := s.tmdb.searchMulti(ctx, title)
	if err != nil {
		log.Printf("[recommend] search failed for %q: %v", title, err)
		return nil
	}

	s.cache.set(key, summary)
	return summary
}

// ResolveDetails fetches the full detail record for a media item. Invalid
// input short-circuits to nil without a network call.
func (s *Service) ResolveDetails(ctx context.Context, mediaType string, id int64) *models.MediaSummary {
	if id <= 0 || (mediaType != "movie" && mediaType != "tv") {
		log.Printf("[recommend] invalid details query type=%q id=%d", mediaType, id)
		return nil
	}

	key := cacheKey("details_"+mediaType, strconv.FormatInt(id, 10))
	if v, ok := s.cache.get(key); ok {
		return v
	}

	summary, err := s.tmdb.fetchDetails(ctx, mediaType, id)
	if err != nil {
		log.Printf("[recommend] details fetch failed %s/%d: %v", mediaType, id, err)
		return nil
	}

	s.cache.set(key, summary)
	return summary
}

// candidatesForGenre returns generated candidate titles for a genre, falling
// back to the static buckets when the generation backend is unconfigured or
// fails. A request must never fail solely because the generator is down.
func (s *Service) candidatesForGenre(ctx context.Context, genre string, count int) []string {
	if !s.gemini.isConfigured() {
		log.Printf("[recommend] gemini not configured, using fallback titles for genre %q", genre)
		return fallbackTitles(genre)
	}
	titles, err := s.gemini.genreTitles(ctx, genre, count, "movies and TV shows")
	if err != nil {
		log.Printf("[recommend] gemini genre request failed for %q, using fallback titles: %v", genre, err)
		return fallbackTitles(genre)
	}
	return titles
}

// candidatesForTitle is the similarity-path twin of candidatesForGenre; the
// fallback is keyed on the reference item's genre names.
func (s *Service) candidatesForTitle(ctx context.Context, ref *models.MediaSummary, count int) []string {
	genreQuery := strings.ToLower(strings.Join(ref.Genres, " "))
	if !s.gemini.isConfigured() {
		log.Printf("[recommend] gemini not configured, using fallback titles for %q", ref.Title)
		return fallbackTitles(genreQuery)
	}
	titles, err := s.gemini.similarTitles(ctx, ref.Title, ref.Genres, ref.Overview, count)
	if err != nil {
		log.Printf("[recommend] gemini similar request failed for %q, using fallback titles: %v", ref.Title, err)
		return fallbackTitles(genreQuery)
	}
	return titles
}

// ResolveAll resolves candidate titles concurrently and maps the survivors
// to display records. Every title's outcome is independent: a failed or
// unresolvable lookup drops that item, never the batch. The result keeps
// first-appearance order and is deduplicated per the configured strategy.
func (s *Service) ResolveAll(ctx context.Context, titles []string) []models.Recommendation {
	if len(titles) == 0 {
		return []models.Recommendation{}
	}

	resolved := make([]*models.MediaSummary, len(titles))
	p := pool.New().WithMaxGoroutines(len(titles))
	for i, title := range titles {
		i, title := i, title
		p.Go(func() {
			resolved[i] = s.ResolveTitle(ctx, title)
		})
	}
	p.Wait()

	records := make([]models.Recommendation, 0, len(titles))
	for _, m := range resolved {
		if m == nil {
			continue
		}
		records = append(records, displayRecord(*m))
	}
	return s.dedupe(records)
}

func (s *Service) dedupe(records []models.Recommendation) []models.Recommendation {
	type identity struct {
		id        int64
		mediaType string
	}
	seen := make(map[identity]bool, len(records))
	out := records[:0]
	for _, r := range records {
		k := identity{id: r.ID}
		if s.dedup == DedupCompoundKey {
			k.mediaType = r.MediaType
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// displayRecord maps a summary to the UI-ready shape.
func displayRecord(m models.MediaSummary) models.Recommendation {
	rec := models.Recommendation{
		ID:        m.ID,
		Title:     m.Title,
		MediaType: m.MediaType,
		PosterURL: posterURL(m.PosterPath),
	}
	if year := releaseYear(m.ReleaseDate); year > 0 {
		y := strconv.Itoa(year)
		rec.Year = &y
	}
	if m.VoteAverage > 0 {
		rating := m.VoteAverage
		rec.Rating = &rating
	}
	if m.Overview != "" {
		overview := m.Overview
		rec.Overview = &overview
	}
	return rec
}

// GenreRecommendations is the full genre pipeline: generated candidates
// resolved against TMDB and deduplicated. Zero candidates is a valid empty
// result, not an error.
func (s *Service) GenreRecommendations(ctx context.Context, genre string) []models.Recommendation {
	titles := s.candidatesForGenre(ctx, genre, candidateCount)
	if len(titles) == 0 {
		return []models.Recommendation{}
	}
	return s.ResolveAll(ctx, titles)
}

// SimilarRecommendations resolves the reference title, generates similar
// candidates from its full details and resolves them. The reference item is
// filtered out of the result: a title never recommends itself.
func (s *Service) SimilarRecommendations(ctx context.Context, title string) ([]models.Recommendation, error) {
	ref := s.ResolveTitle(ctx, title)
	if ref == nil {
		return nil, ErrNotFound
	}

	details := s.ResolveDetails(ctx, ref.MediaType, ref.ID)
	if details == nil {
		// Search succeeded but details didn't; that's on us, not the caller.
		return nil, fmt.Errorf("fetching details for %s/%d after successful search", ref.MediaType, ref.ID)
	}

	titles := s.candidatesForTitle(ctx, details, candidateCount)
	if len(titles) == 0 {
		return []models.Recommendation{}, nil
	}

	records := s.ResolveAll(ctx, titles)
	out := records[:0]
	for _, r := range records {
		if r.ID == details.ID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// RelatedRecommendations pulls TMDB's similar and recommendations sets for a
// media item concurrently, merges them with recommendations prioritized,
// and returns the top-scored slice as display records. A failed side
// contributes an empty set rather than aborting.
func (s *Service) RelatedRecommendations(ctx context.Context, mediaType string, id int64) []models.Recommendation {
	var similar, recommendations []models.MediaSummary

	p := pool.New()
	p.Go(func() {
		items, err := s.tmdb.fetchRelated(ctx, mediaType, id, "similar")
		if err != nil {
			log.Printf("[recommend] similar fetch failed %s/%d: %v", mediaType, id, err)
			return
		}
		similar = items
	})
	p.Go(func() {
		items, err := s.tmdb.fetchRelated(ctx, mediaType, id, "recommendations")
		if err != nil {
			log.Printf("[recommend] recommendations fetch failed %s/%d: %v", mediaType, id, err)
			return
		}
		recommendations = items
	})
	p.Wait()

	merged := mergeRelated(recommendations, similar)
	if len(merged) == 0 {
		return []models.Recommendation{}
	}

	ranked := rankRelated(merged, time.Now().Year())
	records := make([]models.Recommendation, 0, len(ranked))
	for _, m := range ranked {
		records = append(records, displayRecord(m))
	}
	return records
}
