package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenerd/server/internal/agent/model"
)

func TestParseIntentSportsQuery(t *testing.T) {
	content := `{
		"input_type": "sports_query",
		"sport_id": 2,
		"teams": ["Lakers"],
		"request_type": "match_schedule",
		"cc": {"United States": "US"},
		"contextual_query_interpretation": "Upcoming Lakers games",
		"message": null
	}`

	rec := ParseIntent(content, "when do the lakers play next?")

	assert.Equal(t, model.InputSportsQuery, rec.InputType)
	assert.Equal(t, "when do the lakers play next?", rec.OriginalQuery)
	require.NotNil(t, rec.SportID)
	assert.Equal(t, 2, *rec.SportID)
	assert.Equal(t, []string{"Lakers"}, rec.Teams)
	assert.Equal(t, "match_schedule", rec.RequestType)
	assert.Equal(t, "US", rec.CountryCodes["United States"])
	assert.Equal(t, "Upcoming Lakers games", rec.Interpretation)
	assert.Empty(t, rec.Conversation)
	assert.False(t, rec.IsShortCircuitType())
}

func TestParseIntentFencedJSON(t *testing.T) {
	content := "```json\n{\"input_type\": \"simple_greeting\", \"message\": \"Hello!\"}\n```"

	rec := ParseIntent(content, "hi")

	assert.Equal(t, model.InputSimpleGreeting, rec.InputType)
	assert.Equal(t, "Hello!", rec.Conversation)
	assert.True(t, rec.HasCannedReply())
}

func TestParseIntentSalvagesEmbeddedJSON(t *testing.T) {
	content := `Here is the classification you asked for:
{"input_type": "acknowledgment", "message": "Anytime!"} hope that helps.`

	rec := ParseIntent(content, "thanks")

	assert.Equal(t, model.InputAcknowledgment, rec.InputType)
	assert.Equal(t, "Anytime!", rec.Conversation)
}

func TestParseIntentBackfillsCannedReply(t *testing.T) {
	for _, it := range []model.InputType{
		model.InputAcknowledgment,
		model.InputSimpleGreeting,
		model.InputInvalidRequest,
		model.InputOutOfScope,
	} {
		rec := ParseIntent(`{"input_type": "`+string(it)+`"}`, "q")
		assert.Equal(t, it, rec.InputType)
		assert.NotEmpty(t, rec.Conversation, "canned reply missing for %s", it)
		assert.True(t, rec.HasCannedReply())
	}
}

func TestParseIntentIdentityQueryHasNoCannedReply(t *testing.T) {
	rec := ParseIntent(`{"input_type": "identity_query", "message": "I am a bot"}`, "who are you?")

	assert.Equal(t, model.InputIdentityQuery, rec.InputType)
	assert.Empty(t, rec.Conversation)
	assert.False(t, rec.IsShortCircuitType())
}

func TestParseIntentGarbageBecomesErrorRecord(t *testing.T) {
	for _, content := range []string{
		"",
		"not json at all",
		"{broken json",
		"[1,2,3]",
	} {
		rec := ParseIntent(content, "query")
		assert.Equal(t, model.InputError, rec.InputType, "content: %q", content)
		assert.Equal(t, "query", rec.OriginalQuery)
		assert.NotEmpty(t, rec.Message)
	}
}

func TestParseIntentUnknownInputType(t *testing.T) {
	rec := ParseIntent(`{"input_type": "weather_report"}`, "q")

	assert.Equal(t, model.InputError, rec.InputType)
}

func TestParseIntentInvalidSportIDDropped(t *testing.T) {
	rec := ParseIntent(`{"input_type": "sports_query", "sport_id": 99}`, "q")

	assert.Equal(t, model.InputSportsQuery, rec.InputType)
	assert.Nil(t, rec.SportID)
}

func TestParseIntentTrimsTeams(t *testing.T) {
	rec := ParseIntent(`{"input_type": "sports_query", "teams": ["  Arsenal  ", "", "Chelsea"]}`, "q")

	assert.Equal(t, []string{"Arsenal", "Chelsea"}, rec.Teams)
}

func TestParseIntentOversizedContent(t *testing.T) {
	content := strings.Repeat("x", maxContentLen+1000)
	rec := ParseIntent(content, "q")

	assert.Equal(t, model.InputError, rec.InputType)
}

func TestExtractJSONBalancedBraces(t *testing.T) {
	// nested braces and braces inside strings must not confuse the scanner
	content := `prefix {"a": {"b": "close } brace"}, "c": 1} suffix`
	got := extractJSON(content)
	assert.Equal(t, `{"a": {"b": "close } brace"}, "c": 1}`, got)
}
