package dialogue

// Option is one multiple-choice branch offered to the user after a turn.
type Option struct {
	OptionText string `json:"optionText"`
	NextNode   int    `json:"nextNode"`
}

// InputDescriptor tells the client which node a free-text reply routes to.
type InputDescriptor struct {
	NextNode int `json:"nextNode"`
}

// Turn is one agent response cycle. It is constructed per request and
// consumed entirely by a single emitter invocation; no turn state survives
// the request.
type Turn struct {
	NodeID   int              `json:"nodeId"`
	FullText string           `json:"fullText"`
	Input    *InputDescriptor `json:"input,omitempty"`
	Options  []Option         `json:"options"`
}

// ScriptNode is one entry of the offline conversation script. The response
// block marks nodes whose dialogue is rewritten by the negotiation provider
// at runtime; those keep their routing but skip audio pre-generation.
type ScriptNode struct {
	NodeID   int              `json:"nodeId"`
	Dialogue string           `json:"dialogue"`
	Input    *InputDescriptor `json:"input,omitempty"`
	Options  []Option         `json:"options,omitempty"`
	Response *ScriptResponse  `json:"response,omitempty"`
	AudioF   *EnrichedAudio   `json:"audioF,omitempty"`
	AudioM   *EnrichedAudio   `json:"audioM,omitempty"`
}

// ScriptResponse describes runtime behavior attached to a script node.
type ScriptResponse struct {
	AlterDialogue bool `json:"alterDialogue"`
}

// Scripted reports whether the node's dialogue is served verbatim rather
// than regenerated by the negotiation provider.
func (n ScriptNode) Scripted() bool {
	return n.Dialogue != "" && (n.Response == nil || !n.Response.AlterDialogue)
}
