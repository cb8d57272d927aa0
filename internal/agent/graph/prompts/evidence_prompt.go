package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/evidence_prompt.txt
var evidenceSystemPrompt string

// RenderEvidenceSystem returns the evidence-fetch system prompt, routed
// through the Eino prompt component so Prompt callbacks fire.
func RenderEvidenceSystem(ctx context.Context) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(evidenceSystemPrompt)},
	})
	if err != nil {
		return "", fmt.Errorf("evidence prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("evidence prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}
