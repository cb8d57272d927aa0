package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/gamenerd/server/internal/agent/model"
	"github.com/gamenerd/server/internal/agent/search"
)

//go:embed template/responder_prompt.txt
var responderSystemPrompt string

// RenderResponderSystem renders the dispatch-stage persona prompt and
// triggers prompt callbacks.
func RenderResponderSystem(ctx context.Context, cfg model.PromptConfig) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(responderSystemPrompt),
	)
	vars := map[string]any{
		"AssistantName": cfg.AssistantName,
		"Domain":        cfg.Domain,
		"SearchTool":    search.ToolWebSearch,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("responder prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("responder prompt render: empty result")
	}
	return msgs[0].Content, nil
}
