package models

import "time"

// SearchRecord is an append-only log entry. It feeds derived statistics
// only; the gateway never reads it back as per-query history.
type SearchRecord struct {
	AgentID     string    `json:"agent_id"`
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	Timestamp   time.Time `json:"timestamp"`
}
