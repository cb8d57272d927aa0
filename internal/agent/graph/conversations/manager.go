package conversations

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/gamenerd/server/internal/agent/model"
)

// evidenceEntryMaxLen caps how much of any single history entry reaches the
// evidence model; long widget narrations add noise, not context.
const evidenceEntryMaxLen = 500

// MessagesManager shapes conversation history into the per-stage context
// windows. It only reads through the repository; persisting the finished
// exchange is the orchestrator's job.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	classifierWindow int
	evidenceWindow   int
	responderWindow  int
	maxStored        int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		classifierWindow: config.ClassifierWindow,
		evidenceWindow:   config.EvidenceWindow,
		responderWindow:  config.ResponderWindow,
		maxStored:        config.MaxStored,
	}
}

// Snapshot loads the stored history for one user. The returned slice is the
// turn's read-only view; later writes do not affect it.
func (cm *MessagesManager) Snapshot(ctx context.Context, userID string) ([]*schema.Message, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return history.Messages, nil
}

// ClassifierContext renders the classification user message: recent history
// plus the message under analysis.
func (cm *MessagesManager) ClassifierContext(history []*schema.Message, query string) string {
	recent := trimTail(history, cm.classifierWindow)

	var b strings.Builder
	b.WriteString("<conversation_context>\n")
	for _, msg := range recent {
		if msg == nil || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			b.WriteString("UserMessage(" + msg.Content + ")\n")
		case schema.Assistant:
			b.WriteString("AssistantMessage(" + msg.Content + ")\n")
		}
	}
	b.WriteString("</conversation_context>\n")
	b.WriteString("<current_message_to_classify>\n")
	b.WriteString("UserMessage(" + query + ")\n")
	b.WriteString("</current_message_to_classify>")
	return b.String()
}

// EvidenceContext renders the small history window that travels with an
// evidence fetch, skipping oversized entries.
func (cm *MessagesManager) EvidenceContext(history []*schema.Message) string {
	recent := trimTail(history, cm.evidenceWindow)

	var b strings.Builder
	for _, msg := range recent {
		if msg == nil || msg.Content == "" || len(msg.Content) > evidenceEntryMaxLen {
			continue
		}
		switch msg.Role {
		case schema.User:
			b.WriteString("User: " + msg.Content + "\n")
		case schema.Assistant:
			b.WriteString("Assistant: " + msg.Content + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// ResponderContext returns the trailing history window forwarded verbatim to
// the dispatch model.
func (cm *MessagesManager) ResponderContext(history []*schema.Message) []*schema.Message {
	return trimTail(history, cm.responderWindow)
}

// AppendExchange persists one completed turn: the user message, then the
// assistant reply when there is one, then trims the stored history to the
// configured bound.
func (cm *MessagesManager) AppendExchange(ctx context.Context, userID, query, reply string) error {
	if err := cm.conversationRepo.AddMessage(ctx, userID, schema.UserMessage(query)); err != nil {
		return err
	}
	if strings.TrimSpace(reply) != "" {
		if err := cm.conversationRepo.AddMessage(ctx, userID, schema.AssistantMessage(reply, nil)); err != nil {
			return err
		}
	}
	return cm.conversationRepo.TrimHistory(ctx, userID, cm.maxStored)
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) == 0 {
		return nil
	}
	if len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
