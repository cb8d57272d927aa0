package nodes

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/gamenerd/server/internal/agent/model"
	"github.com/gamenerd/server/internal/agent/registry"
	"github.com/gamenerd/server/internal/agent/sanitize"
	"github.com/gamenerd/server/internal/agent/search"
	errx "github.com/gamenerd/server/internal/core/error"
	logx "github.com/gamenerd/server/pkg/logger"
)

// NewResponderNode runs the tool-dispatch model and converts its output into
// the final reply envelope. A lambda rather than a chat-model node so
// provider failures degrade to an apology envelope instead of failing the
// graph.
func NewResponderNode(
	chatModels *ChatModels,
	reg *registry.Registry,
	searcher search.Searcher,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, messages []*schema.Message) (*model.TurnResult, error) {
		var intent model.IntentRecord
		var evidence model.EvidenceBlob
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			if state.Intent != nil {
				intent = *state.Intent
			}
			if state.Evidence != nil {
				evidence = *state.Evidence
			}
			return nil
		})

		// classification glitches should never leak off-topic content
		if intent.IsShortCircuitType() {
			return scopeDeclineResult(intent), nil
		}

		out, err := chatModels.Responder.Generate(ctx, messages)
		if err != nil {
			logx.Error().Err(errx.WrapDispatch(err)).Str("node", NodeResponder).Msg("responder generation failed")
			return providerFailureResult(intent, err), nil
		}
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			recordUsageCost(out, state, chatModels.ResponderModelName, NodeResponder)
			return nil
		})

		// one bounded search round-trip, then a final generation
		if wantsSearch(out) && searcher != nil {
			out = runSearchRound(ctx, chatModels, messages, out, searcher)
			compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
				recordUsageCost(out, state, chatModels.ResponderModelName, NodeResponder)
				return nil
			})
		}

		result := assembleResult(out, intent, evidence, reg)
		result.Reply = sanitize.StripLinks(result.Reply)
		return result, nil
	})
}

// wantsSearch reports whether the first tool call requests the web search
// tool. Only the first call is ever considered.
func wantsSearch(out *schema.Message) bool {
	return out != nil && len(out.ToolCalls) > 0 && out.ToolCalls[0].Function.Name == search.ToolWebSearch
}

// runSearchRound executes the requested search and asks the model once more
// with the results appended. On any failure it returns the original message
// so dispatch proceeds with what it has.
func runSearchRound(
	ctx context.Context,
	chatModels *ChatModels,
	messages []*schema.Message,
	out *schema.Message,
	searcher search.Searcher,
) *schema.Message {
	tc := out.ToolCalls[0]
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil || strings.TrimSpace(args.Query) == "" {
		logx.Warn().Str("node", NodeResponder).Str("arguments", tc.Function.Arguments).Msg("unusable search arguments")
		return out
	}

	results, err := searcher.Search(ctx, args.Query)
	resultText := ""
	if err != nil {
		logx.Warn().Err(err).Str("node", NodeResponder).Str("query", args.Query).Msg("search round failed")
		resultText = "Search failed; answer from the data you already have."
	} else {
		resultText = search.FormatResults(results)
	}

	callID := tc.ID
	if strings.TrimSpace(callID) == "" {
		// some providers omit tool call IDs
		callID = "call_1"
		out.ToolCalls[0].ID = callID
	}

	followUp := make([]*schema.Message, 0, len(messages)+2)
	followUp = append(followUp, messages...)
	followUp = append(followUp, out, &schema.Message{
		Role:       schema.Tool,
		ToolCallID: callID,
		Content:    resultText,
	})

	final, err := chatModels.Responder.Generate(ctx, followUp)
	if err != nil {
		logx.Error().Err(err).Str("node", NodeResponder).Msg("post-search generation failed")
		return out
	}
	return final
}

// structuringIssueReply is worded for the case where the model did call a
// widget but its payload could not be parsed: the data exists, only the
// structured display is lost.
const structuringIssueReply = "I found the information, but there was an issue structuring it for display."

// assembleResult turns the final model message into the reply envelope.
func assembleResult(out *schema.Message, intent model.IntentRecord, evidence model.EvidenceBlob, reg *registry.Registry) *model.TurnResult {
	reply := ""
	if out != nil {
		reply = strings.TrimSpace(out.Content)
	}

	tc, ok := firstWidgetCall(out)
	if !ok {
		if reply == "" {
			reply = fallbackReply(intent, evidence)
		}
		return &model.TurnResult{
			Reply:     reply,
			UI:        model.GenericUI(nil),
			InputType: intent.InputType,
		}
	}

	component := reg.ComponentTypeFor(tc.Function.Name)
	var data map[string]any
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &data); err != nil || data == nil {
		logx.Warn().
			Str("node", NodeResponder).
			Str("tool_name", tc.Function.Name).
			Msg("malformed widget arguments, degrading to generic text")
		reply = strings.TrimSpace(reply + " " + structuringIssueReply)
		return &model.TurnResult{
			Reply: reply,
			UI: model.GenericUI(map[string]any{
				"error":     "malformed tool arguments",
				"tool_name": tc.Function.Name,
			}),
			InputType: intent.InputType,
		}
	}

	if reply == "" {
		reply = "Okay, here is the " + humanizeComponent(component) + " you requested."
	}
	return &model.TurnResult{
		Reply:     reply,
		UI:        model.UIResponsePayload{ComponentType: component, Data: data},
		InputType: intent.InputType,
	}
}

// firstWidgetCall returns the first tool call that is not the search tool.
// Extra calls in the same message are dropped.
func firstWidgetCall(out *schema.Message) (schema.ToolCall, bool) {
	if out == nil {
		return schema.ToolCall{}, false
	}
	if len(out.ToolCalls) > 1 {
		logx.Debug().Int("tool_calls", len(out.ToolCalls)).Msg("multiple tool calls, keeping first widget call")
	}
	for _, tc := range out.ToolCalls {
		if tc.Function.Name == search.ToolWebSearch {
			continue
		}
		return tc, true
	}
	return schema.ToolCall{}, false
}

// scopeDeclineResult declines a short-circuit intent that slipped past the
// branch. The classifier's own canned reply is preferred; the fixed decline
// only covers records that carry none.
func scopeDeclineResult(intent model.IntentRecord) *model.TurnResult {
	reply := strings.TrimSpace(intent.Conversation)
	if reply == "" {
		reply = "I can only help with sports and gaming topics. Is there a match, team or player you'd like to know about?"
	}
	return &model.TurnResult{
		Reply:     reply,
		UI:        model.GenericUI(nil),
		InputType: intent.InputType,
	}
}

func providerFailureResult(intent model.IntentRecord, err error) *model.TurnResult {
	return &model.TurnResult{
		Reply:     "Sorry, I ran into a problem answering that. Please try again in a moment.",
		UI:        model.GenericUI(map[string]any{"error": err.Error()}),
		InputType: intent.InputType,
	}
}

// fallbackReply words the empty-content fallback by cause.
func fallbackReply(intent model.IntentRecord, evidence model.EvidenceBlob) string {
	if intent.InputType == model.InputIdentityQuery {
		return "I'm your sports and gaming assistant. Ask me about matches, teams, players, standings or schedules."
	}
	if evidence.Status == model.EvidenceFailed || evidence.Status == model.EvidenceEmpty {
		return "I couldn't find the specific information for your sports query at the moment. Please try again shortly."
	}
	return "I'm not sure how to answer that one. Could you rephrase your sports or gaming question?"
}
