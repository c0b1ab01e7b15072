package utils

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"cinesage/config"
)

// corsMiddleware allows cross-origin requests. The API serves a separately
// hosted frontend, so the policy is wide open.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// keyStatus reports configured/missing without leaking the key itself.
func keyStatus(key string) string {
	if key == "" {
		return "missing"
	}
	return "configured"
}

// NewRouter constructs the base mux router with CORS and the health route.
func NewRouter(cfg config.Config) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":       "ok",
			"environment":  cfg.Environment,
			"tmdbApiKey":   keyStatus(cfg.TMDBAPIKey),
			"geminiApiKey": keyStatus(cfg.GeminiAPIKey),
		})
	}).Methods(http.MethodGet)

	return r
}
