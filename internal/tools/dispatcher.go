// Package tools is the gateway's call façade. Every tool call runs the
// same state machine: validate arguments, resolve the calling identity,
// enforce the rate limit, route to the identity service or the catalog
// resolver, apply side effects, and wrap the result in a uniform envelope.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fiberagent/gateway/internal/catalog"
	"github.com/fiberagent/gateway/internal/errs"
	"github.com/fiberagent/gateway/internal/identity"
	"github.com/fiberagent/gateway/internal/models"
	"github.com/fiberagent/gateway/internal/ratelimit"
)

// Tool names.
const (
	ToolSearchProducts  = "search_products"
	ToolSearchByIntent  = "search_by_intent"
	ToolRegisterAgent   = "register_agent"
	ToolGetAgentStats   = "get_agent_stats"
	ToolCompareCashback = "compare_cashback"
)

// AnonymousIdentity is the shared rate-limit bucket for identity-free calls.
const AnonymousIdentity = "anonymous"

// Resolver is the catalog surface the dispatcher needs.
type Resolver interface {
	Resolve(ctx context.Context, keywords, agentID string, max int) ([]models.Product, catalog.Source)
}

// Request is one structured tool call.
type Request struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
	// AuthToken is the bearer credential hint, with or without the
	// "Bearer " scheme prefix. Optional-but-verified: absent is fine,
	// present-but-invalid is not.
	AuthToken string `json:"auth_token,omitempty"`
}

// ErrorInfo is the error half of the envelope.
type ErrorInfo struct {
	Code      errs.Code      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// Response is the uniform tool-call envelope.
type Response struct {
	OK        bool                                  `json:"ok"`
	Tool      string                                `json:"tool"`
	Text      string                                `json:"text,omitempty"`
	Payload   any                                   `json:"payload,omitempty"`
	Error     *ErrorInfo                            `json:"error,omitempty"`
	RateLimit map[ratelimit.Window]ratelimit.Status `json:"rate_limit,omitempty"`
	Timestamp time.Time                             `json:"timestamp"`
}

// Definition describes one tool for discovery listings.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type toolSpec struct {
	description string
	rawSchema   string
	required    []string
	// needsIdentity marks tools that cannot run without a resolved agent;
	// lacking one yields a conversational prompt, not a protocol error.
	needsIdentity bool
	handle        func(d *Dispatcher, ctx context.Context, identityID string, args json.RawMessage) (*Response, *errs.Error)
}

// Dispatcher routes tool calls.
type Dispatcher struct {
	identity identity.Service
	catalog  Resolver
	limiter  *ratelimit.Limiter
	logger   *slog.Logger
	specs    map[string]toolSpec
	schemas  map[string]*jsonschema.Schema
}

// NewDispatcher compiles all tool schemas up front; a bad schema is a
// programming error and fails construction.
func NewDispatcher(idSvc identity.Service, resolver Resolver, limiter *ratelimit.Limiter, logger *slog.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		identity: idSvc,
		catalog:  resolver,
		limiter:  limiter,
		logger:   logger,
		specs: map[string]toolSpec{
			ToolSearchProducts: {
				description:   "Search for products across the merchant network with real-time cashback rates. Returns products with prices, cashback amounts, and affiliate purchase links.",
				rawSchema:     searchProductsSchema,
				required:      []string{"keywords"},
				needsIdentity: true,
				handle:        (*Dispatcher).searchProducts,
			},
			ToolSearchByIntent: {
				description: "Natural language shopping — describe what you want. Supports price limits (\"under $30\"), cashback optimization, and preferences.",
				rawSchema:   searchByIntentSchema,
				required:    []string{"intent"},
				handle:      (*Dispatcher).searchByIntent,
			},
			ToolRegisterAgent: {
				description: "Register an AI agent with a crypto wallet to earn cashback commissions. Supports MON, BONK, USDC.",
				rawSchema:   registerAgentSchema,
				required:    []string{"agent_id", "wallet_address"},
				handle:      (*Dispatcher).registerAgent,
			},
			ToolGetAgentStats: {
				description: "Get performance statistics for a registered agent.",
				rawSchema:   agentStatsSchema,
				required:    []string{"agent_id"},
				handle:      (*Dispatcher).getAgentStats,
			},
			ToolCompareCashback: {
				description: "Compare the same product across different merchants to find the highest cashback.",
				rawSchema:   compareCashbackSchema,
				required:    []string{"product_query"},
				handle:      (*Dispatcher).compareCashback,
			},
		},
		schemas: make(map[string]*jsonschema.Schema),
	}

	for name, spec := range d.specs {
		schema, err := jsonschema.CompileString("https://fiberagent.shop/schemas/tools/"+name+".json", spec.rawSchema)
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", name, err)
		}
		d.schemas[name] = schema
	}
	return d, nil
}

// List returns tool definitions for discovery.
func (d *Dispatcher) List() []Definition {
	order := []string{ToolSearchProducts, ToolSearchByIntent, ToolRegisterAgent, ToolGetAgentStats, ToolCompareCashback}
	out := make([]Definition, 0, len(order))
	for _, name := range order {
		spec := d.specs[name]
		out = append(out, Definition{
			Name:        name,
			Description: spec.description,
			InputSchema: json.RawMessage(spec.rawSchema),
		})
	}
	return out
}

// Call runs one tool call to completion. It never panics outward: an
// unexpected failure is logged and returned as INTERNAL_ERROR with the
// original message preserved.
func (d *Dispatcher) Call(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool call panicked", "tool", req.Tool, "panic", r)
			resp = d.errorResponse(req.Tool, errs.Newf(errs.CodeInternal, "Internal server error: %v", r), nil)
		}
	}()

	spec, ok := d.specs[req.Tool]
	if !ok {
		return d.errorResponse(req.Tool, errs.Newf(errs.CodeNotFound, "Unknown tool %q", req.Tool), nil)
	}

	args := req.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	if e := d.validateArgs(req.Tool, spec, args); e != nil {
		return d.errorResponse(req.Tool, e, nil)
	}

	identityID, e := d.resolveIdentity(ctx, req, args)
	if e != nil {
		return d.errorResponse(req.Tool, e, nil)
	}
	if identityID == "" {
		if spec.needsIdentity {
			return d.identityPrompt(req.Tool)
		}
		identityID = AnonymousIdentity
	}

	check := d.limiter.Check(identityID)
	if !check.Allowed {
		e := errs.Newf(errs.CodeRateLimited, "Rate limit exceeded: %s window", check.LimitType).
			WithDetail("limit_type", string(check.LimitType)).
			WithDetail("retry_after", check.RetryAfter).
			WithDetail("reset_time", check.Reset.Unix())
		return d.errorResponse(req.Tool, e, check.Windows)
	}

	out, e := spec.handle(d, ctx, identityID, args)
	if e != nil {
		return d.errorResponse(req.Tool, e, check.Windows)
	}
	out.Tool = req.Tool
	out.RateLimit = check.Windows
	out.Timestamp = time.Now().UTC()
	return *out
}

// validateArgs reports missing required fields distinctly from other
// schema violations.
func (d *Dispatcher) validateArgs(tool string, spec toolSpec, args json.RawMessage) *errs.Error {
	var doc map[string]any
	if err := json.Unmarshal(args, &doc); err != nil {
		return errs.New(errs.CodeInvalidRequest, "Arguments must be a JSON object")
	}

	var missing []string
	for _, f := range spec.required {
		v, ok := doc[f]
		if !ok {
			missing = append(missing, f)
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return errs.MissingFields(missing...)
	}

	if err := d.schemas[tool].Validate(doc); err != nil {
		return errs.Newf(errs.CodeInvalidRequest, "Invalid arguments: %v", err)
	}
	return nil
}

// resolveIdentity prefers a validated bearer token over an explicit
// agent_id argument. A present-but-invalid token is terminal; a present
// token that contradicts an explicit agent_id is forbidden.
func (d *Dispatcher) resolveIdentity(ctx context.Context, req Request, args json.RawMessage) (string, *errs.Error) {
	var hint struct {
		AgentID string `json:"agent_id"`
	}
	_ = json.Unmarshal(args, &hint)

	if req.AuthToken == "" {
		return hint.AgentID, nil
	}

	tokenAgent, err := d.identity.ValidateToken(ctx, req.AuthToken)
	if err != nil {
		return "", errs.New(errs.CodeUnauthorized, "Invalid or expired Bearer token")
	}
	if hint.AgentID != "" && hint.AgentID != tokenAgent {
		return "", errs.New(errs.CodeForbidden, "Token is for a different agent").
			WithDetail("requested_agent", hint.AgentID).
			WithDetail("token_agent", tokenAgent)
	}
	return tokenAgent, nil
}

// identityPrompt is the soft, conversational failure for tools that need
// an agent but got none. Not a protocol error: ok stays true.
func (d *Dispatcher) identityPrompt(tool string) Response {
	return Response{
		OK:   true,
		Tool: tool,
		Text: "I need to know who is searching. Pass your agent_id, or register first with register_agent (agent_id + wallet_address) to start earning cashback.",
		Payload: map[string]any{
			"action_needed": "provide_agent_id",
			"register_with": ToolRegisterAgent,
		},
		Timestamp: time.Now().UTC(),
	}
}

func (d *Dispatcher) errorResponse(tool string, e *errs.Error, windows map[ratelimit.Window]ratelimit.Status) Response {
	return Response{
		OK:   false,
		Tool: tool,
		Error: &ErrorInfo{
			Code:      e.Code,
			Message:   e.Message,
			Retryable: errs.Retryable(e.Code),
			Details:   e.Details,
		},
		RateLimit: windows,
		Timestamp: time.Now().UTC(),
	}
}
