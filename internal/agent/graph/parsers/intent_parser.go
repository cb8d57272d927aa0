// Package parsers turns raw classifier model output into a validated
// IntentRecord. The parser never fails the turn: anything unusable becomes
// an InputError record so the pipeline degrades instead of aborting.
package parsers

import (
	"encoding/json"
	"strings"

	"github.com/gamenerd/server/internal/agent/model"
	logx "github.com/gamenerd/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 64 * 1024
	maxTeams      = 20
	maxErrSnippet = 200
)

// defaultCannedReplies backfill the reply when the classifier labels a
// short-circuit category but omits the message text.
var defaultCannedReplies = map[model.InputType]string{
	model.InputAcknowledgment: "You're welcome! Let me know if there's anything else about sports or gaming I can help with.",
	model.InputSimpleGreeting: "Hi there! Ask me anything about sports or gaming.",
	model.InputInvalidRequest: "Sorry, I couldn't understand that. Could you rephrase your question?",
	model.InputOutOfScope:     "I can only help with sports and gaming topics. Is there a match, team or player you'd like to know about?",
}

var knownInputTypes = map[model.InputType]bool{
	model.InputSportsQuery:    true,
	model.InputConversational: true,
	model.InputAcknowledgment: true,
	model.InputSimpleGreeting: true,
	model.InputIdentityQuery:  true,
	model.InputInvalidRequest: true,
	model.InputOutOfScope:     true,
}

// rawIntent mirrors the classifier's JSON contract before validation.
type rawIntent struct {
	InputType      string            `json:"input_type"`
	SportID        *int              `json:"sport_id"`
	Teams          []string          `json:"teams"`
	RequestType    string            `json:"request_type"`
	CountryCodes   map[string]string `json:"cc"`
	Interpretation string            `json:"contextual_query_interpretation"`
	Message        string            `json:"message"`
}

// ParseIntent converts classifier output into an IntentRecord. It always
// returns a record; malformed output yields an InputError record with the
// diagnostic in Message.
func ParseIntent(content string, originalQuery string) (rec model.IntentRecord) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "intent_parser").Msgf("panic recovered: %v", r)
			rec = errorRecord(originalQuery, "classifier output parsing panicked")
		}
	}()

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "intent_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}

	payload := extractJSON(content)
	if payload == "" {
		logx.Error().
			Str("component", "intent_parser").
			Str("snippet", safeSnippet(content)).
			Msg("no JSON object found in classifier output")
		return errorRecord(originalQuery, "classifier returned no parseable JSON")
	}

	var raw rawIntent
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		logx.Error().
			Err(err).
			Str("component", "intent_parser").
			Str("snippet", safeSnippet(payload)).
			Msg("failed to unmarshal classifier JSON")
		return errorRecord(originalQuery, "classifier JSON did not unmarshal")
	}

	it := model.InputType(strings.TrimSpace(raw.InputType))
	if !knownInputTypes[it] {
		logx.Warn().
			Str("component", "intent_parser").
			Str("input_type", raw.InputType).
			Msg("unknown input_type from classifier")
		return errorRecord(originalQuery, "classifier produced an unknown input_type")
	}

	rec = model.IntentRecord{
		InputType:     it,
		OriginalQuery: originalQuery,
	}

	switch it {
	case model.InputSportsQuery, model.InputConversational:
		rec.SportID = validateSportID(raw.SportID)
		rec.Teams = trimTeams(raw.Teams)
		rec.RequestType = strings.TrimSpace(raw.RequestType)
		rec.CountryCodes = raw.CountryCodes
		rec.Interpretation = strings.TrimSpace(raw.Interpretation)
	case model.InputIdentityQuery:
		// deferred to the responder; no canned text, no enrichment
	default:
		rec.Conversation = strings.TrimSpace(raw.Message)
		if rec.Conversation == "" {
			rec.Conversation = defaultCannedReplies[it]
		}
	}
	return rec
}

func errorRecord(originalQuery, diagnostic string) model.IntentRecord {
	return model.IntentRecord{
		InputType:     model.InputError,
		OriginalQuery: originalQuery,
		Message:       diagnostic,
	}
}

// extractJSON pulls the JSON object out of model output that may be wrapped
// in markdown fences or surrounding prose. Returns "" when no balanced
// object is found.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") && json.Valid([]byte(s)) {
		return s
	}

	// salvage: scan for the first balanced top-level object
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					candidate := s[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate
					}
					return ""
				}
			}
		}
	}
	return ""
}

func validateSportID(id *int) *int {
	if id == nil {
		return nil
	}
	if _, ok := model.SportNames[*id]; !ok {
		return nil
	}
	return id
}

func trimTeams(teams []string) []string {
	out := make([]string, 0, len(teams))
	for _, t := range teams {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) >= maxTeams {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
