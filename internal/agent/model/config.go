package model

// ================ Config ================

type ConversationConfig struct {
	TTL string `envconfig:"CONVERSATION_TTL" default:"15m"`
	// MaxStored bounds the per-user history; each exchange adds up to two
	// entries (user + assistant).
	MaxStored int `envconfig:"CONVERSATION_MAX_TURNS" default:"10"`
	// Context windows per pipeline stage, in stored messages.
	ClassifierWindow int `envconfig:"CONVERSATION_CLASSIFIER_WINDOW" default:"4"`
	EvidenceWindow   int `envconfig:"CONVERSATION_EVIDENCE_WINDOW" default:"2"`
	ResponderWindow  int `envconfig:"CONVERSATION_RESPONDER_WINDOW" default:"3"`
	// MaxSessions bounds the in-memory store's distinct user count (LRU).
	MaxSessions int `envconfig:"CONVERSATION_MAX_SESSIONS" default:"1000"`
}

// ClassifierModelConfig configures the intent classification call.
// Low temperature is required so the same (query, history) pair classifies
// consistently.
type ClassifierModelConfig struct {
	Model       string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"CLASSIFIER_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0.1"`
	TimeoutSec  int     `envconfig:"CLASSIFIER_TIMEOUT" default:"30"`
}

// EvidenceModelConfig configures the search-capable evidence call.
type EvidenceModelConfig struct {
	Model       string  `envconfig:"EVIDENCE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"EVIDENCE_MAX_TOKENS" default:"1500"`
	Temperature float32 `envconfig:"EVIDENCE_TEMPERATURE" default:"0.3"`
	TimeoutSec  int     `envconfig:"EVIDENCE_TIMEOUT" default:"60"`
}

// ResponderModelConfig configures the tool-dispatch call.
type ResponderModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.3"`
	TimeoutSec  int     `envconfig:"RESPONSE_TIMEOUT" default:"60"`
}

// PromptConfig carries the assistant persona rendered into every system
// prompt.
type PromptConfig struct {
	AssistantName string `envconfig:"PROMPT_ASSISTANT_NAME" default:"GameNerd"`
	Domain        string `envconfig:"PROMPT_DOMAIN" default:"sports and gaming"`
}
