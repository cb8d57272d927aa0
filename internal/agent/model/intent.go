package model

// InputType is the classified category of a user message. It drives all
// downstream branching in the turn graph.
type InputType string

const (
	InputSportsQuery    InputType = "sports_query"
	InputConversational InputType = "conversational"
	InputAcknowledgment InputType = "acknowledgment"
	InputSimpleGreeting InputType = "simple_greeting"
	InputIdentityQuery  InputType = "identity_query"
	InputInvalidRequest InputType = "invalid_request"
	InputOutOfScope     InputType = "out_of_scope_request"
	InputError          InputType = "error"
)

// SportNames is the fixed sport enumeration used by the classifier for
// sport_id extraction. IDs follow the upstream data-provider convention.
var SportNames = map[int]string{
	1:  "soccer",
	2:  "basketball",
	3:  "american_football",
	4:  "baseball",
	5:  "ice_hockey",
	6:  "tennis",
	7:  "cricket",
	8:  "esports",
	9:  "boxing",
	10: "mma",
}

// IntentRecord is the output of the classification stage.
//
// Exactly one of two things holds per record: it either carries a ready-made
// Conversation reply (the short-circuit types), or it requires the
// evidence + tool-dispatch stages to produce the reply.
type IntentRecord struct {
	InputType     InputType `json:"input_type"`
	OriginalQuery string    `json:"original_query"`

	// Conversation is the pre-formed reply text. Non-empty for the four
	// short-circuit categories; intentionally empty for sports_query,
	// conversational and identity_query, which defer to the responder.
	Conversation string `json:"conversation,omitempty"`

	// Enrichment fields, populated only for sports_query.
	SportID        *int              `json:"sport_id,omitempty"`
	Teams          []string          `json:"teams,omitempty"`
	RequestType    string            `json:"request_type,omitempty"`
	CountryCodes   map[string]string `json:"cc,omitempty"`
	Interpretation string            `json:"contextual_query_interpretation,omitempty"`

	// Message carries the diagnostic when InputType == InputError.
	Message string `json:"message,omitempty"`
}

// shortCircuitTypes are the categories the classifier answers by itself.
var shortCircuitTypes = map[InputType]bool{
	InputAcknowledgment: true,
	InputSimpleGreeting: true,
	InputInvalidRequest: true,
	InputOutOfScope:     true,
}

// HasCannedReply reports whether the record carries a usable pre-formed reply
// that allows the orchestrator to skip evidence fetching and tool dispatch.
func (r *IntentRecord) HasCannedReply() bool {
	return shortCircuitTypes[r.InputType] && r.Conversation != ""
}

// IsShortCircuitType reports whether the category belongs to the set that
// never needs evidence or tool dispatch, regardless of the canned text.
func (r *IntentRecord) IsShortCircuitType() bool {
	return shortCircuitTypes[r.InputType]
}
