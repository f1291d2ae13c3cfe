package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/cors"

	"github.com/fiberagent/gateway/internal/catalog"
	"github.com/fiberagent/gateway/internal/handlers"
	"github.com/fiberagent/gateway/internal/identity"
	"github.com/fiberagent/gateway/internal/ratelimit"
	"github.com/fiberagent/gateway/internal/router"
	"github.com/fiberagent/gateway/internal/store"
	"github.com/fiberagent/gateway/internal/tools"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	liveURL := os.Getenv("FIBER_API_URL")
	if liveURL == "" {
		liveURL = "https://api.fiber.shop"
	}
	liveTimeout := catalog.DefaultLiveTimeout
	if ms := os.Getenv("FIBER_API_TIMEOUT_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n > 0 {
			liveTimeout = time.Duration(n) * time.Millisecond
		}
	}

	mem := store.NewMemory()
	idSvc := identity.NewService(mem)
	limiter := ratelimit.New(ratelimit.DefaultConfig())
	resolver := catalog.NewResolver(liveURL, liveTimeout, logger)

	dispatcher, err := tools.NewDispatcher(idSvc, resolver, limiter, logger)
	if err != nil {
		slog.Error("Failed to build tool dispatcher", "error", err)
		os.Exit(1)
	}

	h := handlers.NewHandler(idSvc, resolver, limiter, dispatcher, logger)
	mux := router.New(h, idSvc)

	origins := []string{"*"}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{
			"X-RateLimit-Minute-Limit", "X-RateLimit-Minute-Remaining", "X-RateLimit-Minute-Reset",
			"X-RateLimit-Hour-Limit", "X-RateLimit-Hour-Remaining", "X-RateLimit-Hour-Reset",
			"X-RateLimit-Day-Limit", "X-RateLimit-Day-Remaining", "X-RateLimit-Day-Reset",
			"Retry-After",
		},
	}).Handler(mux)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // Fallback for local development
	}
	addr := "0.0.0.0:" + port

	slog.Info("Starting gateway", "addr", addr, "live_api", liveURL, "live_timeout", liveTimeout)
	if err := http.ListenAndServe(addr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
