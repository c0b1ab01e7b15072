package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"cinesage/config"
	"cinesage/models"
	"cinesage/services/recommend"
)

type recommendService interface {
	GenreRecommendations(ctx context.Context, genre string) []models.Recommendation
	SimilarRecommendations(ctx context.Context, title string) ([]models.Recommendation, error)
	RelatedRecommendations(ctx context.Context, mediaType string, id int64) []models.Recommendation
}

var _ recommendService = (*recommend.Service)(nil)

type RecommendHandler struct {
	Service recommendService
	Cfg     config.Config
}

func NewRecommendHandler(s recommendService, cfg config.Config) *RecommendHandler {
	return &RecommendHandler{Service: s, Cfg: cfg}
}

// errorResponse is the error envelope for every non-2xx response. Details
// carry internal error text and are attached only outside production.
type errorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (h *RecommendHandler) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Message: message}
	if err != nil && !h.Cfg.IsProduction() {
		resp.Details = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeRecords(w http.ResponseWriter, records []models.Recommendation) {
	if records == nil {
		records = []models.Recommendation{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// ByGenre handles GET /recommend/genre?genre=<string>.
func (h *RecommendHandler) ByGenre(w http.ResponseWriter, r *http.Request) {
	genre := strings.TrimSpace(r.URL.Query().Get("genre"))
	if genre == "" {
		h.writeError(w, http.StatusBadRequest, "Genre query parameter is required and must be a string.", nil)
		return
	}

	records := h.Service.GenreRecommendations(r.Context(), genre)
	log.Printf("[handlers] genre=%q -> %d recommendations", genre, len(records))
	writeRecords(w, records)
}

// BySimilarTitle handles GET /recommend/similar?title=<string>. A missing
// title is the caller's mistake (400); a title TMDB doesn't know is a
// distinct not-found outcome (404).
func (h *RecommendHandler) BySimilarTitle(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		h.writeError(w, http.StatusBadRequest, "Title query parameter is required and must be a string.", nil)
		return
	}

	records, err := h.Service.SimilarRecommendations(r.Context(), title)
	if errors.Is(err, recommend.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("Could not find movie/show titled %q.", title), nil)
		return
	}
	if err != nil {
		log.Printf("[handlers] similar recommendations failed for %q: %v", title, err)
		h.writeError(w, http.StatusInternalServerError, "Error fetching details for the input title.", err)
		return
	}

	log.Printf("[handlers] similar to %q -> %d recommendations", title, len(records))
	writeRecords(w, records)
}

// Related handles GET /recommend/related?type=movie|tv&id=<int>, the ranked
// related-content list for a known media item.
func (h *RecommendHandler) Related(w http.ResponseWriter, r *http.Request) {
	mediaType := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))
	if mediaType == "" {
		mediaType = "movie"
	}
	if mediaType != "movie" && mediaType != "tv" {
		h.writeError(w, http.StatusBadRequest, "Type query parameter must be 'movie' or 'tv'.", nil)
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("id")), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "Id query parameter is required and must be a positive integer.", nil)
		return
	}

	records := h.Service.RelatedRecommendations(r.Context(), mediaType, id)
	log.Printf("[handlers] related %s/%d -> %d items", mediaType, id, len(records))
	writeRecords(w, records)
}
