package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/gamenerd/server/internal/agent/model"
)

//go:embed template/classifier_prompt.txt
var classifierSystemPrompt string

// RenderClassifierSystem renders the classifier system prompt via the Eino
// prompt component. This triggers Prompt callbacks and returns the final
// system prompt string.
func RenderClassifierSystem(ctx context.Context, promptCfg *model.PromptConfig) (string, error) {
	if promptCfg == nil {
		return "", fmt.Errorf("prompt config is nil")
	}

	// Replace known tokens only so the JSON braces in the template survive
	content := strings.NewReplacer(
		"{assistant_name}", promptCfg.AssistantName,
		"{domain}", promptCfg.Domain,
		"{sport_id_table}", sportIDTable(),
	).Replace(classifierSystemPrompt)

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("classifier prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("classifier prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}

// sportIDTable renders the sport_id enumeration from model.SportNames so the
// prompt can never drift from the IDs the rest of the pipeline resolves.
func sportIDTable() string {
	ids := make([]int, 0, len(model.SportNames))
	for id := range model.SportNames {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d=%s", id, model.SportNames[id]))
	}
	return strings.Join(parts, " ")
}
