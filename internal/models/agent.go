package models

import (
	"time"
)

// Reward token preferences supported for commission payouts.
const (
	RewardTokenMON  = "MON"
	RewardTokenBONK = "BONK"
	RewardTokenUSDC = "USDC"

	DefaultRewardToken = RewardTokenMON
)

// Agent is a registered caller identified by agent_id. Counters are
// maintained by the identity service; TotalEarnings stays 0 here because
// settlement happens outside this process.
type Agent struct {
	AgentID       string    `json:"agent_id"`
	DisplayName   string    `json:"agent_name"`
	WalletAddress string    `json:"wallet_address"`
	RewardToken   string    `json:"crypto_preference"`
	RegisteredAt  time.Time `json:"registered_at"`
	TotalEarnings float64   `json:"total_earnings"`
	APICallsMade  int       `json:"api_calls_made"`
	SearchesMade  int       `json:"searches_made"`
}

// AuthToken is an opaque bearer credential. One agent may hold several
// tokens; a token maps to exactly one agent. There is no revocation path:
// Valid is true from issuance onward.
type AuthToken struct {
	Token    string    `json:"token"`
	AgentID  string    `json:"agent_id"`
	IssuedAt time.Time `json:"issued_at"`
	Valid    bool      `json:"valid"`
}
