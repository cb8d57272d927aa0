package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationRepository is the injected history store. The orchestrator is
// its only writer; pipeline stages receive read-only snapshots.
type ConversationRepository interface {
	// AddMessage appends a message to the conversation history.
	AddMessage(ctx context.Context, conversationID string, message *schema.Message) error

	// LoadHistory retrieves the conversation history for a conversation.
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)

	// TrimHistory drops all but the newest max messages.
	TrimHistory(ctx context.Context, conversationID string, max int) error

	// ClearHistory removes all conversation history for a conversation.
	ClearHistory(ctx context.Context, conversationID string) error

	// MessageCount returns the number of stored messages.
	MessageCount(ctx context.Context, conversationID string) (int, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}
