package model

// ComponentGenericText is the sentinel component type used when no UI
// widget applies and the client should render plain text.
const ComponentGenericText = "generic_text"

// UIResponsePayload tells a rendering client which widget to draw and with
// what data. Data conforms to the widget's ToolSpec schema unless
// ComponentType is ComponentGenericText.
type UIResponsePayload struct {
	ComponentType string         `json:"component_type"`
	Data          map[string]any `json:"data"`
}

// GenericUI builds a generic_text payload. A nil data map is normalised to
// an empty one so the envelope always carries both keys.
func GenericUI(data map[string]any) UIResponsePayload {
	if data == nil {
		data = map[string]any{}
	}
	return UIResponsePayload{ComponentType: ComponentGenericText, Data: data}
}

// TurnResult is the uniform reply envelope for one processed message.
type TurnResult struct {
	Reply string            `json:"reply"`
	UI    UIResponsePayload `json:"ui_data"`

	// InputType records the classified category so the orchestrator can
	// decide whether to remember the turn. Not part of the wire envelope.
	InputType InputType `json:"-"`
}

// Normalize enforces the envelope invariants: a non-empty reply and a
// structurally valid ui_data with both keys present.
func (t *TurnResult) Normalize() {
	if t.Reply == "" {
		t.Reply = "Request processed."
	}
	if t.UI.ComponentType == "" {
		t.UI.ComponentType = ComponentGenericText
	}
	if t.UI.Data == nil {
		t.UI.Data = map[string]any{}
	}
}
