package nodes

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/gamenerd/server/internal/agent/graph/conversations"
	"github.com/gamenerd/server/internal/agent/graph/prompts"
	"github.com/gamenerd/server/internal/agent/model"
	errx "github.com/gamenerd/server/internal/core/error"
	logx "github.com/gamenerd/server/pkg/logger"
)

// fetchableRequestTypes are conversational request labels that still warrant
// a data fetch.
var fetchableRequestTypes = map[string]bool{
	"match_schedule":      true,
	"standings":           true,
	"h2h":                 true,
	"results":             true,
	"team_stats":          true,
	"live_score":          true,
	"lineups":             true,
	"top_performers":      true,
	"player_profile":      true,
	"player_comparison":   true,
	"news":                true,
	"prediction":          true,
	"percentage_analysis": true,
}

// refusalPhrases mark evidence output that is a polite refusal rather than
// data. Matching output is treated as a failed fetch.
var refusalPhrases = []string{
	"sorry",
	"don't have specific information",
	"cannot assist",
	"no specific sports/gaming data fetching is required",
}

const refusalMaxLen = 100

// NewEvidenceNode runs the conditional data-fetch stage. It always returns
// a blob, never an error: provider failures become EvidenceFailed so the
// responder can word an honest fallback.
func NewEvidenceNode(
	mm *conversations.MessagesManager,
	chatModels *ChatModels,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, rec model.IntentRecord) (model.EvidenceBlob, error) {
		if reason, skip := skipReason(rec); skip {
			logx.Debug().
				Str("node", NodeEvidence).
				Str("input_type", string(rec.InputType)).
				Str("reason", reason).
				Msg("evidence fetch skipped")
			return model.SkippedEvidence(reason), nil
		}

		var history []*schema.Message
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			history = state.History
			return nil
		})

		systemPrompt, err := prompts.RenderEvidenceSystem(ctx)
		if err != nil {
			logx.Error().Err(err).Str("node", NodeEvidence).Msg("evidence prompt render failed")
			return model.FailedEvidence("prompt render failed"), nil
		}

		messages := []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(buildFetchRequest(mm, history, rec)),
		}

		out, err := chatModels.Evidence.Generate(ctx, messages)
		if err != nil {
			logx.Error().Err(errx.WrapEvidence(err)).Str("node", NodeEvidence).Msg("evidence fetch failed")
			return model.FailedEvidence("provider error"), nil
		}

		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			recordUsageCost(out, state, chatModels.EvidenceModelName, NodeEvidence)
			return nil
		})

		text := ""
		if out != nil {
			text = strings.TrimSpace(out.Content)
		}
		if text == "" {
			return model.EvidenceBlob{Status: model.EvidenceEmpty, Reason: "provider returned no content"}, nil
		}
		if isRefusal(text) {
			logx.Warn().Str("node", NodeEvidence).Str("text", text).Msg("evidence model refused")
			return model.FailedEvidence("provider refused"), nil
		}
		return model.EvidenceBlob{Status: model.EvidenceFetched, Text: text}, nil
	})
}

// NewEvidencePostHandler stores the blob in state for the assembler.
func NewEvidencePostHandler() func(context.Context, model.EvidenceBlob, *model.AppState) (model.EvidenceBlob, error) {
	return func(ctx context.Context, out model.EvidenceBlob, state *model.AppState) (model.EvidenceBlob, error) {
		state.Evidence = &out
		return out, nil
	}
}

// skipReason decides whether this intent needs grounding data at all.
func skipReason(rec model.IntentRecord) (string, bool) {
	switch rec.InputType {
	case model.InputSportsQuery:
		return "", false
	case model.InputIdentityQuery:
		return "identity replies need no data", true
	case model.InputConversational:
		if strings.Contains(strings.ToLower(rec.Interpretation), "trivia") {
			return "", false
		}
		if fetchableRequestTypes[strings.ToLower(rec.RequestType)] {
			return "", false
		}
		return "conversational chatter needs no data", true
	default:
		return "input type never fetches", true
	}
}

// buildFetchRequest blends the resolved interpretation with the extracted
// entities and a slim history window into one fetch instruction.
func buildFetchRequest(mm *conversations.MessagesManager, history []*schema.Message, rec model.IntentRecord) string {
	query := strings.TrimSpace(rec.Interpretation)
	if query == "" {
		query = rec.OriginalQuery
	}

	var b strings.Builder
	if histCtx := mm.EvidenceContext(history); histCtx != "" {
		b.WriteString("Recent conversation:\n")
		b.WriteString(histCtx)
		b.WriteString("\n\n")
	}
	b.WriteString("Request: ")
	b.WriteString(query)
	b.WriteString("\n")
	if rec.SportID != nil {
		if name, ok := model.SportNames[*rec.SportID]; ok {
			b.WriteString("Sport: " + name + "\n")
		}
	}
	if len(rec.Teams) > 0 {
		b.WriteString("Teams: " + strings.Join(rec.Teams, ", ") + "\n")
	}
	if len(rec.CountryCodes) > 0 {
		pairs := make([]string, 0, len(rec.CountryCodes))
		for k, v := range rec.CountryCodes {
			pairs = append(pairs, k+"="+v)
		}
		b.WriteString("Regions: " + strings.Join(pairs, ", ") + "\n")
	}
	return strings.TrimSpace(b.String())
}

func isRefusal(text string) bool {
	lower := strings.ToLower(text)
	// the explicit no-data marker counts regardless of length
	if strings.Contains(lower, refusalPhrases[len(refusalPhrases)-1]) {
		return true
	}
	if len(text) >= refusalMaxLen {
		return false
	}
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
