package nodes

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/gamenerd/server/internal/agent/model"
	logx "github.com/gamenerd/server/pkg/logger"
)

// ===== Small helpers to keep handlers simple/readable =====

// recordUsageCost attaches usage cost to the message Extra and accumulates
// the running turn total in state.
func recordUsageCost(out *schema.Message, state *model.AppState, modelName, node string) {
	if !model.CostEnabled() || out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	pricing := model.ResolvePricing(modelName)
	inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
	if out.Extra == nil {
		out.Extra = map[string]any{}
	}
	out.Extra["usage_cost"] = map[string]any{
		"currency":          "USD",
		"model":             modelName,
		"prompt_tokens":     out.ResponseMeta.Usage.PromptTokens,
		"completion_tokens": out.ResponseMeta.Usage.CompletionTokens,
		"total_tokens":      out.ResponseMeta.Usage.TotalTokens,
		"input_cost":        inC,
		"output_cost":       outC,
		"total_cost":        totalC,
	}
	logx.Debug().
		Str("user_id", state.UserID).
		Str("turn_id", state.TurnID).
		Str("node", node).
		Str("model", modelName).
		Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
		Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
		Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")

	state.TotalCostUSD += totalC
	out.Extra["usage_cost_total_usd"] = state.TotalCostUSD
}

// humanizeComponent turns a component tag into display words, e.g.
// "match_schedule_table" becomes "Match Schedule Table".
func humanizeComponent(component string) string {
	parts := strings.Split(component, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
