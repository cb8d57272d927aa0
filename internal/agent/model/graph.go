package model

import (
	"github.com/cloudwego/eino/schema"
)

// AppState stores per-turn state for the Eino graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//   - Persistence goes through repositories (the orchestrator owns writes);
//     History here is a read-only snapshot taken at the start of the turn.
type AppState struct {
	UserID string
	TurnID string
	Query  string

	History  []*schema.Message // snapshot loaded by the input converter
	Intent   *IntentRecord     // set by the parser post-handler
	Evidence *EvidenceBlob     // set by the evidence post-handler

	// Accumulated total LLM cost (USD) across model invocations for this turn.
	TotalCostUSD float64
}

// QueryInput represents one incoming user message.
type QueryInput struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
	TurnID string `json:"turn_id,omitempty"`
}
