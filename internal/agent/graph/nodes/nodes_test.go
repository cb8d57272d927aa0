package nodes

import (
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenerd/server/internal/agent/graph/conversations"
	"github.com/gamenerd/server/internal/agent/model"
	"github.com/gamenerd/server/internal/agent/registry"
	"github.com/gamenerd/server/internal/agent/repo"
)

func intPtr(v int) *int { return &v }

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.New()
	require.NoError(t, err)
	return r
}

func widgetCall(name string, args any) *schema.Message {
	b, _ := json.Marshal(args)
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			ID:       "call_1",
			Function: schema.FunctionCall{Name: name, Arguments: string(b)},
		}},
	}
}

// ---- evidence policy ----

func TestSkipReasonSportsQueryAlwaysFetches(t *testing.T) {
	_, skip := skipReason(model.IntentRecord{InputType: model.InputSportsQuery})
	assert.False(t, skip)
}

func TestSkipReasonIdentitySkips(t *testing.T) {
	reason, skip := skipReason(model.IntentRecord{InputType: model.InputIdentityQuery})
	assert.True(t, skip)
	assert.NotEmpty(t, reason)
}

func TestSkipReasonConversational(t *testing.T) {
	// plain chatter skips
	_, skip := skipReason(model.IntentRecord{InputType: model.InputConversational})
	assert.True(t, skip)

	// trivia fetches
	_, skip = skipReason(model.IntentRecord{
		InputType:      model.InputConversational,
		Interpretation: "Sports trivia about the 1998 World Cup",
	})
	assert.False(t, skip)

	// recognized data request labels fetch
	_, skip = skipReason(model.IntentRecord{
		InputType:   model.InputConversational,
		RequestType: "standings",
	})
	assert.False(t, skip)
}

func TestSkipReasonShortCircuitTypesNeverFetch(t *testing.T) {
	for _, it := range []model.InputType{
		model.InputAcknowledgment,
		model.InputSimpleGreeting,
		model.InputInvalidRequest,
		model.InputOutOfScope,
		model.InputError,
	} {
		_, skip := skipReason(model.IntentRecord{InputType: it})
		assert.True(t, skip, "input type %s", it)
	}
}

func TestIsRefusal(t *testing.T) {
	assert.True(t, isRefusal("Sorry, I can't help."))
	assert.True(t, isRefusal("I cannot assist with that."))
	assert.True(t, isRefusal("no specific sports/gaming data fetching is required"))
	// long factual answers that happen to contain "sorry" are kept
	long := "Sorry for the delay. Arsenal won 2-1 against Chelsea on Saturday in the Premier League, with goals from Saka and Odegaard, and they now sit third in the table."
	assert.False(t, isRefusal(long))
	assert.False(t, isRefusal("Arsenal 2-1 Chelsea, FT."))
}

func TestBuildFetchRequest(t *testing.T) {
	mm := conversations.NewMessagesManager(repo.NewMemoryConversationRepository(5), model.ConversationConfig{
		ClassifierWindow: 4, EvidenceWindow: 2, ResponderWindow: 3, MaxStored: 10,
	})
	history := []*schema.Message{
		schema.UserMessage("earlier question"),
		schema.AssistantMessage("earlier answer", nil),
	}
	rec := model.IntentRecord{
		InputType:      model.InputSportsQuery,
		OriginalQuery:  "when do they play?",
		Interpretation: "Upcoming Lakers schedule",
		SportID:        intPtr(2),
		Teams:          []string{"Lakers"},
		CountryCodes:   map[string]string{"United States": "US"},
	}

	out := buildFetchRequest(mm, history, rec)

	assert.Contains(t, out, "Request: Upcoming Lakers schedule")
	assert.Contains(t, out, "Sport: basketball")
	assert.Contains(t, out, "Teams: Lakers")
	assert.Contains(t, out, "United States=US")
	assert.Contains(t, out, "earlier question")
}

func TestBuildFetchRequestFallsBackToOriginalQuery(t *testing.T) {
	mm := conversations.NewMessagesManager(repo.NewMemoryConversationRepository(5), model.ConversationConfig{EvidenceWindow: 2})
	rec := model.IntentRecord{InputType: model.InputSportsQuery, OriginalQuery: "nba scores tonight"}

	out := buildFetchRequest(mm, nil, rec)
	assert.Contains(t, out, "Request: nba scores tonight")
}

// ---- responder assembly ----

func TestAssembleResultFreeText(t *testing.T) {
	reg := testRegistry(t)
	out := &schema.Message{Role: schema.Assistant, Content: "The match ended 2-1."}

	result := assembleResult(out, model.IntentRecord{InputType: model.InputSportsQuery}, model.EvidenceBlob{}, reg)

	assert.Equal(t, "The match ended 2-1.", result.Reply)
	assert.Equal(t, model.ComponentGenericText, result.UI.ComponentType)
	assert.NotNil(t, result.UI.Data)
}

func TestAssembleResultWidgetCall(t *testing.T) {
	reg := testRegistry(t)
	args := map[string]any{
		"title":   "Upcoming Matches",
		"headers": []string{"Date", "Opponent"},
		"rows":    [][]string{{"2026-08-30", "Celtics"}, {"2026-09-02", "Heat"}},
	}
	out := widgetCall("show_match_schedule", args)
	out.Content = "Here is the schedule."

	result := assembleResult(out, model.IntentRecord{InputType: model.InputSportsQuery}, model.EvidenceBlob{Status: model.EvidenceFetched, Text: "data"}, reg)

	assert.Equal(t, "Here is the schedule.", result.Reply)
	assert.Equal(t, "match_schedule_table", result.UI.ComponentType)
	rows, ok := result.UI.Data["rows"].([]any)
	require.True(t, ok)
	assert.Len(t, rows, 2)
}

func TestAssembleResultSynthesizesReplyForSilentWidgetCall(t *testing.T) {
	reg := testRegistry(t)
	out := widgetCall("display_standings_table", map[string]any{
		"league_name": "Premier League",
		"standings":   []any{},
	})

	result := assembleResult(out, model.IntentRecord{InputType: model.InputSportsQuery}, model.EvidenceBlob{}, reg)

	assert.Equal(t, "Okay, here is the Standings Table you requested.", result.Reply)
	assert.Equal(t, "standings_table", result.UI.ComponentType)
}

func TestAssembleResultMalformedArgumentsDegrades(t *testing.T) {
	reg := testRegistry(t)
	out := &schema.Message{
		Role:    schema.Assistant,
		Content: "Here you go.",
		ToolCalls: []schema.ToolCall{{
			ID:       "call_1",
			Function: schema.FunctionCall{Name: "show_match_schedule", Arguments: "{not valid json"},
		}},
	}

	result := assembleResult(out, model.IntentRecord{InputType: model.InputSportsQuery}, model.EvidenceBlob{}, reg)

	assert.Equal(t, "Here you go. "+structuringIssueReply, result.Reply)
	assert.Equal(t, model.ComponentGenericText, result.UI.ComponentType)
	assert.Equal(t, "malformed tool arguments", result.UI.Data["error"])
	assert.Equal(t, "show_match_schedule", result.UI.Data["tool_name"])
}

func TestAssembleResultMalformedArgumentsWithoutFreeText(t *testing.T) {
	reg := testRegistry(t)
	out := &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			ID:       "call_1",
			Function: schema.FunctionCall{Name: "show_match_schedule", Arguments: "{not valid json"},
		}},
	}

	result := assembleResult(out, model.IntentRecord{InputType: model.InputSportsQuery}, model.EvidenceBlob{}, reg)

	// the data was found, only structuring failed; the reply must say so
	// instead of asking the user to rephrase
	assert.Equal(t, structuringIssueReply, result.Reply)
	assert.Equal(t, model.ComponentGenericText, result.UI.ComponentType)
	assert.Equal(t, "malformed tool arguments", result.UI.Data["error"])
}

func TestScopeDeclineResultPrefersCannedReply(t *testing.T) {
	result := scopeDeclineResult(model.IntentRecord{
		InputType:    model.InputOutOfScope,
		Conversation: "I stick to sports and gaming, sorry!",
	})

	assert.Equal(t, "I stick to sports and gaming, sorry!", result.Reply)
	assert.Equal(t, model.InputOutOfScope, result.InputType)
	assert.Equal(t, model.ComponentGenericText, result.UI.ComponentType)
}

func TestScopeDeclineResultFallsBackWithoutCannedReply(t *testing.T) {
	result := scopeDeclineResult(model.IntentRecord{InputType: model.InputSimpleGreeting})

	assert.Contains(t, result.Reply, "sports and gaming topics")
	assert.Equal(t, model.InputSimpleGreeting, result.InputType)
}

func TestAssembleResultUnknownToolNamePassesThrough(t *testing.T) {
	reg := testRegistry(t)
	out := widgetCall("made_up_tool", map[string]any{"k": "v"})

	result := assembleResult(out, model.IntentRecord{InputType: model.InputSportsQuery}, model.EvidenceBlob{}, reg)

	assert.Equal(t, "made_up_tool", result.UI.ComponentType)
	assert.Equal(t, "v", result.UI.Data["k"])
}

func TestAssembleResultFallbacks(t *testing.T) {
	reg := testRegistry(t)
	empty := &schema.Message{Role: schema.Assistant}

	identity := assembleResult(empty, model.IntentRecord{InputType: model.InputIdentityQuery}, model.EvidenceBlob{}, reg)
	assert.Contains(t, identity.Reply, "sports and gaming assistant")

	failed := assembleResult(empty, model.IntentRecord{InputType: model.InputSportsQuery}, model.FailedEvidence("provider error"), reg)
	assert.Contains(t, failed.Reply, "couldn't find the specific information")

	general := assembleResult(empty, model.IntentRecord{InputType: model.InputConversational}, model.EvidenceBlob{Status: model.EvidenceSkipped}, reg)
	assert.NotEmpty(t, general.Reply)
	assert.NotEqual(t, failed.Reply, general.Reply)
}

func TestFirstWidgetCallSkipsSearch(t *testing.T) {
	out := &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{Function: schema.FunctionCall{Name: "search_web", Arguments: `{"query":"x"}`}},
			{Function: schema.FunctionCall{Name: "offer_suggestion", Arguments: `{}`}},
		},
	}

	tc, ok := firstWidgetCall(out)
	require.True(t, ok)
	assert.Equal(t, "offer_suggestion", tc.Function.Name)

	assert.True(t, wantsSearch(out))
}

func TestFirstWidgetCallNone(t *testing.T) {
	_, ok := firstWidgetCall(&schema.Message{Role: schema.Assistant})
	assert.False(t, ok)
	_, ok = firstWidgetCall(nil)
	assert.False(t, ok)
}

// ---- assembler context ----

func TestBuildResponderContext(t *testing.T) {
	intent := &model.IntentRecord{
		InputType:      model.InputSportsQuery,
		OriginalQuery:  "lakers schedule",
		Interpretation: "Upcoming Lakers games",
		SportID:        intPtr(2),
		Teams:          []string{"Lakers"},
		RequestType:    "match_schedule",
	}
	evidence := model.EvidenceBlob{Status: model.EvidenceFetched, Text: "Lakers vs Celtics on Saturday"}

	out := buildResponderContext(intent, evidence)

	assert.Contains(t, out, "<user_request>\nlakers schedule")
	assert.Contains(t, out, "<interpretation>\nUpcoming Lakers games")
	assert.Contains(t, out, "<sport>basketball</sport>")
	assert.Contains(t, out, "<teams>Lakers</teams>")
	assert.Contains(t, out, "<request_type>match_schedule</request_type>")
	assert.Contains(t, out, "Lakers vs Celtics on Saturday")
}

func TestBuildResponderContextNoData(t *testing.T) {
	intent := &model.IntentRecord{InputType: model.InputSportsQuery, OriginalQuery: "q"}

	skipped := buildResponderContext(intent, model.SkippedEvidence("chatter"))
	assert.Contains(t, skipped, "No fetched data is available")
	assert.NotContains(t, skipped, "fetch failed")

	failed := buildResponderContext(intent, model.FailedEvidence("provider error"))
	assert.Contains(t, failed, "because the data fetch failed")
}

func TestBuildResponderContextIdentityNote(t *testing.T) {
	intent := &model.IntentRecord{InputType: model.InputIdentityQuery, OriginalQuery: "who are you"}
	out := buildResponderContext(intent, model.SkippedEvidence("identity"))
	assert.Contains(t, out, "Introduce yourself")
}

func TestHumanizeComponent(t *testing.T) {
	assert.Equal(t, "Match Schedule Table", humanizeComponent("match_schedule_table"))
	assert.Equal(t, "H2h Comparison Table", humanizeComponent("h2h_comparison_table"))
	assert.Equal(t, "Widget", humanizeComponent("widget"))
}
