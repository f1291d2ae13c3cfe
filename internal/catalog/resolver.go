// Package catalog resolves keyword searches into ranked products. The live
// merchant API is tried first with a bounded timeout; anything unusable
// from it (timeout, non-200, malformed body, empty result set) degrades to
// the static fallback catalog, never to an error.
package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fiberagent/gateway/internal/models"
)

// Source names which path produced the final result list.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
	SourceEmpty    Source = "empty"
)

const (
	// DefaultLiveTimeout bounds the live API call.
	DefaultLiveTimeout = 8 * time.Second
	// DefaultMaxResults applies when the caller passes no limit.
	DefaultMaxResults = 10
)

// Resolver tries the live merchant API and falls back to the static
// catalog.
type Resolver struct {
	BaseURL string
	Client  *http.Client
	Static  []models.Product
	Logger  *slog.Logger
}

// NewResolver returns a Resolver against the given live API base URL. An
// empty baseURL disables the live path entirely.
func NewResolver(baseURL string, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultLiveTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
		Static:  StaticCatalog(),
		Logger:  logger,
	}
}

// Resolve returns up to max ranked products for the keywords, plus the
// source that served them. Live results pass through normalization and
// dedupe; fallback results are ranked locally. SourceEmpty means both
// paths produced nothing after filtering.
func (r *Resolver) Resolve(ctx context.Context, keywords, agentID string, max int) ([]models.Product, Source) {
	if max <= 0 {
		max = DefaultMaxResults
	}

	if live := r.liveSearch(ctx, keywords, agentID, max); len(live) > 0 {
		live = Dedupe(live)
		if len(live) > max {
			live = live[:max]
		}
		return live, SourceLive
	}

	ranked := Dedupe(Rank(r.Static, keywords, max))
	if len(ranked) == 0 {
		return nil, SourceEmpty
	}
	return ranked, SourceFallback
}

// liveSearch calls the upstream search endpoint. Every failure mode maps
// to "no usable result" (nil); the caller decides whether to fall back.
func (r *Resolver) liveSearch(ctx context.Context, keywords, agentID string, max int) []models.Product {
	if r.BaseURL == "" {
		return nil
	}

	q := url.Values{}
	q.Set("keywords", keywords)
	q.Set("agent_id", agentID)
	q.Set("size", strconv.Itoa(max))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/v1/agent/search?"+q.Encode(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		r.Logger.Warn("live catalog unavailable, using fallback", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.Logger.Warn("live catalog returned non-200, using fallback", "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.Logger.Warn("live catalog body read failed, using fallback", "error", err)
		return nil
	}

	return NormalizeBody(body)
}
