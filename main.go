package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cinesage/api"
	"cinesage/config"
	"cinesage/handlers"
	"cinesage/services/recommend"
	"cinesage/services/scheduler"
	"cinesage/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.TMDBAPIKey == "" {
		log.Println("[main] WARNING: TMDB_API_KEY is not set; metadata lookups will fail")
	}
	if cfg.GeminiAPIKey == "" {
		log.Println("[main] WARNING: GEMINI_API_KEY is not set; serving static fallback titles")
	}

	svc := recommend.NewService(cfg.TMDBAPIKey, cfg.GeminiAPIKey, cfg.CacheTTL, nil)

	// Sweep at twice the TTL: entries expire lazily on read anyway, the
	// sweep only bounds memory for keys that are never read again.
	sweep := scheduler.NewService(svc, 2*cfg.CacheTTL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := sweep.Start(ctx); err != nil {
		log.Fatalf("[main] failed to start scheduler: %v", err)
	}

	r := utils.NewRouter(cfg)
	r.Use(api.RequestLogging())

	h := handlers.NewRecommendHandler(svc, cfg)
	r.HandleFunc("/recommend/genre", h.ByGenre).Methods(http.MethodGet)
	r.HandleFunc("/recommend/similar", h.BySimilarTitle).Methods(http.MethodGet)
	r.HandleFunc("/recommend/related", h.Related).Methods(http.MethodGet)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Printf("[main] listening on :%s (environment=%s)", cfg.Port, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Println("[main] shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
	sweep.Stop()
}
