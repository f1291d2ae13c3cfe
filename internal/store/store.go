// Package store holds the gateway's shared mutable state behind a small
// interface so call-handling logic can be tested against the in-memory
// implementation and later pointed at a persistent backend.
package store

import (
	"context"
	"errors"

	"github.com/fiberagent/gateway/internal/models"
)

var (
	// ErrAgentExists is returned when creating an agent whose id is taken.
	ErrAgentExists = errors.New("agent already registered")
	// ErrAgentNotFound is returned when an agent id is unknown.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrTokenNotFound is returned when a token value is unknown.
	ErrTokenNotFound = errors.New("token not found")
)

// Store is the state surface used by the identity service.
type Store interface {
	// CreateAgent inserts the agent, failing with ErrAgentExists if the
	// agent_id is already present. Registration is never an overwrite.
	CreateAgent(ctx context.Context, a *models.Agent) error
	GetAgent(ctx context.Context, agentID string) (*models.Agent, error)
	ListAgents(ctx context.Context) ([]*models.Agent, error)

	PutToken(ctx context.Context, t *models.AuthToken) error
	GetToken(ctx context.Context, token string) (*models.AuthToken, error)

	// AppendSearch logs the search and bumps the agent's searches_made and
	// api_calls_made counters in one step.
	AppendSearch(ctx context.Context, rec models.SearchRecord) error
	CountSearches(ctx context.Context) (int, error)
}
