package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/fiberagent/gateway/internal/catalog"
	"github.com/fiberagent/gateway/internal/errs"
	"github.com/fiberagent/gateway/internal/intent"
	"github.com/fiberagent/gateway/internal/models"
	"github.com/fiberagent/gateway/internal/store"
)

// SearchPayload is the structured result of the search-family tools.
type SearchPayload struct {
	Query        string           `json:"query"`
	AgentID      string           `json:"agent_id"`
	TotalResults int              `json:"total_results"`
	Results      []models.Product `json:"results"`
	Source       catalog.Source   `json:"source"`
}

func (d *Dispatcher) searchProducts(ctx context.Context, identityID string, args json.RawMessage) (*Response, *errs.Error) {
	var a struct {
		Keywords   string `json:"keywords"`
		MaxResults int    `json:"max_results"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, errs.New(errs.CodeInvalidRequest, "Arguments must be a JSON object")
	}

	products, source := d.catalog.Resolve(ctx, a.Keywords, identityID, a.MaxResults)

	if err := d.identity.RecordSearch(ctx, identityID, a.Keywords, len(products)); err != nil {
		d.logger.Warn("record search failed", "agent_id", identityID, "error", err)
	}

	return &Response{
		OK:   true,
		Text: fmt.Sprintf("## Search: %q\n\n%s\n\n---\n*%d products from the merchant network (source: %s).*", a.Keywords, formatResults(products), len(products), source),
		Payload: SearchPayload{
			Query:        a.Keywords,
			AgentID:      identityID,
			TotalResults: len(products),
			Results:      products,
			Source:       source,
		},
	}, nil
}

// intentPayload extends SearchPayload with what the parser understood.
type intentPayload struct {
	SearchPayload
	Intent         string  `json:"intent"`
	ParsedKeywords string  `json:"parsed_keywords"`
	MaxPrice       float64 `json:"max_price,omitempty"`
	PreferCashback bool    `json:"prefer_cashback"`
}

func (d *Dispatcher) searchByIntent(ctx context.Context, identityID string, args json.RawMessage) (*Response, *errs.Error) {
	var a struct {
		Intent      string   `json:"intent"`
		Preferences []string `json:"preferences"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, errs.New(errs.CodeInvalidRequest, "Arguments must be a JSON object")
	}

	keywords := intent.Keywords(a.Intent)
	if keywords == "" {
		return &Response{
			OK:   true,
			Text: `Could not parse your request. Try: "Find Nike shoes under $150"`,
		}, nil
	}

	maxPrice, hasCeiling := intent.MaxPrice(a.Intent)
	preferCashback := intent.WantsCashback(a.Intent)

	// Rank wide first; the ceiling and preference sorts are post-filters
	// and must not change which products counted as relevant.
	products, source := d.catalog.Resolve(ctx, keywords, identityID, 20)

	if hasCeiling {
		kept := products[:0]
		for _, p := range products {
			if p.Price <= maxPrice {
				kept = append(kept, p)
			}
		}
		products = kept
	}
	if len(a.Preferences) > 0 {
		products = boostPreferred(products, a.Preferences)
	}
	if preferCashback {
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Cashback.Amount > products[j].Cashback.Amount
		})
	}
	if len(products) > 5 {
		products = products[:5]
	}

	if err := d.identity.RecordSearch(ctx, identityID, keywords, len(products)); err != nil {
		d.logger.Warn("record search failed", "agent_id", identityID, "error", err)
	}

	parsed := fmt.Sprintf("**Parsed:** %s", keywords)
	if hasCeiling {
		parsed += fmt.Sprintf(" | max $%.0f", maxPrice)
	}
	if preferCashback {
		parsed += " | best cashback"
	}

	payload := intentPayload{
		SearchPayload: SearchPayload{
			Query:        keywords,
			AgentID:      identityID,
			TotalResults: len(products),
			Results:      products,
			Source:       source,
		},
		Intent:         a.Intent,
		ParsedKeywords: keywords,
		PreferCashback: preferCashback,
	}
	if hasCeiling {
		payload.MaxPrice = maxPrice
	}

	return &Response{
		OK:      true,
		Text:    fmt.Sprintf("## Shopping request: %q\n%s\n\n%s", a.Intent, parsed, formatResults(products)),
		Payload: payload,
	}, nil
}

// boostPreferred stable-sorts products whose title mentions any preference
// ahead of the rest, preserving relative order within each group.
func boostPreferred(products []models.Product, preferences []string) []models.Product {
	matches := func(p models.Product) bool {
		for _, pref := range preferences {
			if pref == "" {
				continue
			}
			if containsFold(p.Title, pref) {
				return true
			}
		}
		return false
	}
	sort.SliceStable(products, func(i, j int) bool {
		return matches(products[i]) && !matches(products[j])
	})
	return products
}

// RegisterPayload carries the one-time token alongside the new agent. The
// token is unrecoverable after this response.
type RegisterPayload struct {
	Agent     *models.Agent `json:"agent"`
	AuthToken string        `json:"auth_token"`
	TokenType string        `json:"token_type"`
}

func (d *Dispatcher) registerAgent(ctx context.Context, _ string, args json.RawMessage) (*Response, *errs.Error) {
	var a struct {
		AgentID          string `json:"agent_id"`
		WalletAddress    string `json:"wallet_address"`
		AgentName        string `json:"agent_name"`
		CryptoPreference string `json:"crypto_preference"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, errs.New(errs.CodeInvalidRequest, "Arguments must be a JSON object")
	}

	agent, err := d.identity.Register(ctx, a.AgentID, a.AgentName, a.WalletAddress, a.CryptoPreference)
	if err != nil {
		if errors.Is(err, store.ErrAgentExists) {
			e := errs.Newf(errs.CodeConflict, "Agent %q already registered", a.AgentID).
				WithDetail("error_code", "AGENT_ALREADY_EXISTS").
				WithDetail("existing_agent_id", a.AgentID)
			if existing, getErr := d.identity.Get(ctx, a.AgentID); getErr == nil {
				e = e.WithDetail("registered_at", existing.RegisteredAt)
			}
			return nil, e
		}
		return nil, errs.Newf(errs.CodeInternal, "Registration failed: %v", err)
	}

	token, err := d.identity.IssueToken(ctx, agent.AgentID)
	if err != nil {
		return nil, errs.Newf(errs.CodeInternal, "Token issuance failed: %v", err)
	}

	return &Response{
		OK: true,
		Text: fmt.Sprintf(
			"Registered!\n\n**ID:** %s\n**Wallet:** %s\n**Reward token:** %s\n\nUse the auth_token as a Bearer credential on future calls. It is shown only once.",
			agent.AgentID, agent.WalletAddress, agent.RewardToken,
		),
		Payload: RegisterPayload{
			Agent:     agent,
			AuthToken: token.Token,
			TokenType: "Bearer",
		},
	}, nil
}

func (d *Dispatcher) getAgentStats(ctx context.Context, identityID string, args json.RawMessage) (*Response, *errs.Error) {
	var a struct {
		AgentID string `json:"agent_id"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, errs.New(errs.CodeInvalidRequest, "Arguments must be a JSON object")
	}

	stats, err := d.identity.Stats(ctx, a.AgentID)
	if err != nil {
		if errors.Is(err, store.ErrAgentNotFound) {
			// Unregistered agents get zeroed stats rather than a hard 404.
			return &Response{
				OK:   true,
				Text: fmt.Sprintf("Agent %q is not registered; showing zeroed stats.", a.AgentID),
				Payload: map[string]any{
					"agent_id":       a.AgentID,
					"total_searches": 0,
					"total_earnings": 0,
					"fiber_points":   0,
					"conversions":    0,
					"note":           "Not registered",
				},
			}, nil
		}
		return nil, errs.Newf(errs.CodeInternal, "Stats lookup failed: %v", err)
	}

	return &Response{
		OK:      true,
		Text:    fmt.Sprintf("Agent %s: %d searches, %.2f earned, %d fiber points.", stats.AgentID, stats.TotalSearches, stats.TotalEarnings, stats.FiberPoints),
		Payload: stats,
	}, nil
}

// ComparePayload ranks merchants for one product by cashback rate.
type ComparePayload struct {
	Query        string           `json:"query"`
	Results      []models.Product `json:"results"`
	BestMerchant string           `json:"best_merchant"`
	BestRate     float64          `json:"best_rate_percent"`
	Source       catalog.Source   `json:"source"`
}

func (d *Dispatcher) compareCashback(ctx context.Context, identityID string, args json.RawMessage) (*Response, *errs.Error) {
	var a struct {
		ProductQuery string `json:"product_query"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, errs.New(errs.CodeInvalidRequest, "Arguments must be a JSON object")
	}

	products, source := d.catalog.Resolve(ctx, a.ProductQuery, identityID, 20)
	if len(products) == 0 {
		return &Response{
			OK:   true,
			Text: fmt.Sprintf("No products found for %q.", a.ProductQuery),
			Payload: ComparePayload{
				Query:  a.ProductQuery,
				Source: source,
			},
		}, nil
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Cashback.RatePercent > products[j].Cashback.RatePercent
	})

	if err := d.identity.RecordSearch(ctx, identityID, a.ProductQuery, len(products)); err != nil {
		d.logger.Warn("record search failed", "agent_id", identityID, "error", err)
	}

	best := products[0]
	return &Response{
		OK:   true,
		Text: fmt.Sprintf("## Cashback comparison: %q\n\n%s\n\nBest: %s at %.2f%%", a.ProductQuery, formatComparison(products), best.Merchant.Name, best.Cashback.RatePercent),
		Payload: ComparePayload{
			Query:        a.ProductQuery,
			Results:      products,
			BestMerchant: best.Merchant.Name,
			BestRate:     best.Cashback.RatePercent,
			Source:       source,
		},
	}, nil
}
