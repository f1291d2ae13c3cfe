package store

import (
	"context"
	"sync"

	"github.com/fiberagent/gateway/internal/models"
)

// Memory is the in-memory Store. State lifetime equals process lifetime.
type Memory struct {
	mu       sync.RWMutex
	agents   map[string]*models.Agent
	tokens   map[string]*models.AuthToken
	searches []models.SearchRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		agents: make(map[string]*models.Agent),
		tokens: make(map[string]*models.AuthToken),
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) CreateAgent(_ context.Context, a *models.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agents[a.AgentID]; ok {
		return ErrAgentExists
	}
	cp := *a
	m.agents[a.AgentID] = &cp
	return nil
}

func (m *Memory) GetAgent(_ context.Context, agentID string) (*models.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[agentID]
	if !ok {
		return nil, ErrAgentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) ListAgents(_ context.Context) ([]*models.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Agent, 0, len(m.agents))
	for _, a := range m.agents {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) PutToken(_ context.Context, t *models.AuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tokens[t.Token] = &cp
	return nil
}

func (m *Memory) GetToken(_ context.Context, token string) (*models.AuthToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) AppendSearch(_ context.Context, rec models.SearchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, rec)
	if a, ok := m.agents[rec.AgentID]; ok {
		a.SearchesMade++
		a.APICallsMade++
	}
	return nil
}

func (m *Memory) CountSearches(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.searches), nil
}
