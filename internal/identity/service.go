// Package identity implements agent registration, bearer token issuance
// and validation, and per-agent statistics over an injected store.
package identity

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fiberagent/gateway/internal/models"
	"github.com/fiberagent/gateway/internal/store"
)

// ErrInvalidToken is returned for unknown or invalidated bearer tokens.
var ErrInvalidToken = errors.New("invalid auth token")

// tokenPrefix marks gateway-issued tokens; the value after it is random.
const tokenPrefix = "fbr_"

// Stats is the derived per-agent view. Conversions is a fixed multiplier
// of searches (a placeholder metric, not real conversion tracking), and
// fiber points accrue at 10 per search.
type Stats struct {
	AgentID       string    `json:"agent_id"`
	AgentName     string    `json:"agent_name"`
	TotalSearches int       `json:"total_searches"`
	TotalEarnings float64   `json:"total_earnings"`
	APICallsMade  int       `json:"api_calls_made"`
	Conversions   int       `json:"conversions"`
	FiberPoints   int       `json:"fiber_points"`
	RegisteredAt  time.Time `json:"registered_at"`
}

// LeaderboardEntry ranks one agent by earnings, then searches.
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	AgentID       string  `json:"agent_id"`
	AgentName     string  `json:"agent_name"`
	TotalEarnings float64 `json:"total_earnings"`
	TotalSearches int     `json:"total_searches"`
	FiberPoints   int     `json:"fiber_points"`
}

// PlatformStats aggregates store-wide counts.
type PlatformStats struct {
	TotalAgentsRegistered int `json:"total_agents_registered"`
	TotalSearches         int `json:"total_searches"`
	TotalTokensIssued     int `json:"total_tokens_issued"`
}

type Service interface {
	Register(ctx context.Context, agentID, displayName, walletAddress, rewardToken string) (*models.Agent, error)
	Get(ctx context.Context, agentID string) (*models.Agent, error)
	IssueToken(ctx context.Context, agentID string) (*models.AuthToken, error)
	// ValidateToken strips an optional Bearer scheme prefix and returns the
	// owning agent_id, or ErrInvalidToken.
	ValidateToken(ctx context.Context, raw string) (string, error)
	// RecordSearch logs one search and bumps the agent's counters. Called
	// exactly once per successfully dispatched search, regardless of which
	// catalog source served the results.
	RecordSearch(ctx context.Context, agentID, query string, resultCount int) error
	Stats(ctx context.Context, agentID string) (*Stats, error)
	Leaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, int, error)
	PlatformStats(ctx context.Context) (PlatformStats, error)
}

type service struct {
	store store.Store

	tokensIssued atomic.Int64
	now          func() time.Time
}

// NewService returns the identity service backed by the given store.
func NewService(s store.Store) *service {
	return &service{store: s, now: time.Now}
}

var _ Service = (*service)(nil)

func (s *service) Register(ctx context.Context, agentID, displayName, walletAddress, rewardToken string) (*models.Agent, error) {
	if displayName == "" {
		displayName = agentID
	}
	if rewardToken == "" {
		rewardToken = models.DefaultRewardToken
	}
	agent := &models.Agent{
		AgentID:       agentID,
		DisplayName:   displayName,
		WalletAddress: walletAddress,
		RewardToken:   rewardToken,
		RegisteredAt:  s.now().UTC(),
	}
	if err := s.store.CreateAgent(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *service) Get(ctx context.Context, agentID string) (*models.Agent, error) {
	return s.store.GetAgent(ctx, agentID)
}

func (s *service) IssueToken(ctx context.Context, agentID string) (*models.AuthToken, error) {
	t := &models.AuthToken{
		Token:    newTokenValue(),
		AgentID:  agentID,
		IssuedAt: s.now().UTC(),
		Valid:    true,
	}
	if err := s.store.PutToken(ctx, t); err != nil {
		return nil, err
	}
	s.tokensIssued.Add(1)
	return t, nil
}

// newTokenValue builds an opaque bearer value. Unguessable enough for a
// demo credential; not a signed token.
func newTokenValue() string {
	return tokenPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *service) ValidateToken(ctx context.Context, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if len(value) >= 7 && strings.EqualFold(value[:7], "bearer ") {
		value = strings.TrimSpace(value[7:])
	}
	if value == "" {
		return "", ErrInvalidToken
	}
	t, err := s.store.GetToken(ctx, value)
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}
	return t.AgentID, nil
}

func (s *service) RecordSearch(ctx context.Context, agentID, query string, resultCount int) error {
	return s.store.AppendSearch(ctx, models.SearchRecord{
		AgentID:     agentID,
		Query:       query,
		ResultCount: resultCount,
		Timestamp:   s.now().UTC(),
	})
}

func (s *service) Stats(ctx context.Context, agentID string) (*Stats, error) {
	agent, err := s.store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return &Stats{
		AgentID:       agent.AgentID,
		AgentName:     agent.DisplayName,
		TotalSearches: agent.SearchesMade,
		TotalEarnings: agent.TotalEarnings,
		APICallsMade:  agent.APICallsMade,
		Conversions:   agent.SearchesMade / 10,
		FiberPoints:   agent.SearchesMade * 10,
		RegisteredAt:  agent.RegisteredAt,
	}, nil
}

func (s *service) Leaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, int, error) {
	agents, err := s.store.ListAgents(ctx)
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(agents, func(i, j int) bool {
		if agents[i].TotalEarnings != agents[j].TotalEarnings {
			return agents[i].TotalEarnings > agents[j].TotalEarnings
		}
		if agents[i].SearchesMade != agents[j].SearchesMade {
			return agents[i].SearchesMade > agents[j].SearchesMade
		}
		return agents[i].AgentID < agents[j].AgentID
	})

	total := len(agents)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}

	out := make([]LeaderboardEntry, 0, end-offset)
	for i := offset; i < end; i++ {
		a := agents[i]
		out = append(out, LeaderboardEntry{
			Rank:          i + 1,
			AgentID:       a.AgentID,
			AgentName:     a.DisplayName,
			TotalEarnings: a.TotalEarnings,
			TotalSearches: a.SearchesMade,
			FiberPoints:   a.SearchesMade * 10,
		})
	}
	return out, total, nil
}

func (s *service) PlatformStats(ctx context.Context) (PlatformStats, error) {
	agents, err := s.store.ListAgents(ctx)
	if err != nil {
		return PlatformStats{}, err
	}
	searches, err := s.store.CountSearches(ctx)
	if err != nil {
		return PlatformStats{}, err
	}
	return PlatformStats{
		TotalAgentsRegistered: len(agents),
		TotalSearches:         searches,
		TotalTokensIssued:     int(s.tokensIssued.Load()),
	}, nil
}
