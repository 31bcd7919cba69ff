package chat

// SSE event names emitted by the chatOverStream endpoint. These are part of
// the remote wire contract and must not be renamed.
const (
	eventDelta    = "copilotMessageDelta"
	eventComplete = "copilotMessageComplete"
	eventError    = "error"
)

// wireAttribution is an attribution record as it appears on the wire.
type wireAttribution struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// wireSensitivityLabel is a sensitivity label update on the wire.
type wireSensitivityLabel struct {
	DisplayName string `json:"displayName"`
}

// deltaFrame is the payload of a copilotMessageDelta event. Fields are
// optional; the schema grows over time, so unknown fields are ignored.
type deltaFrame struct {
	Delta struct {
		Content          *string               `json:"content"`
		Attributions     []wireAttribution     `json:"attributions"`
		SensitivityLabel *wireSensitivityLabel `json:"sensitivityLabel"`
	} `json:"delta"`
}

// completionFrame is the payload of a copilotMessageComplete event.
type completionFrame struct {
	Attributions []wireAttribution `json:"attributions"`
}

// chatMessage is one message in the outgoing request body.
type chatMessage struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// groundingOptions controls what data sources ground the answer.
type groundingOptions struct {
	DisableWebGrounding bool `json:"disableWebGrounding"`
}

// externalContext references a file to ground the answer against.
type externalContext struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// chatRequest is the body of a chatOverStream call.
type chatRequest struct {
	Messages         []chatMessage     `json:"messages"`
	GroundingOptions *groundingOptions `json:"groundingOptions,omitempty"`
	ExternalContexts []externalContext `json:"externalContexts,omitempty"`
}
