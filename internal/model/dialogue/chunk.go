package dialogue

// ChunkKind discriminates the streamed chunk variants. Branching on the
// kind, not on field presence, keeps the wire shape unambiguous.
type ChunkKind string

const (
	// ChunkNewAudio marks the first sentence of a turn.
	ChunkNewAudio ChunkKind = "NEW_AUDIO"
	// ChunkSentence marks every following sentence.
	ChunkSentence ChunkKind = "CHUNK"
	// ChunkEnd is the terminal summary carrying routing for the next turn.
	ChunkEnd ChunkKind = "END"
)

// EnrichedAudio packages synthesized speech with word-level timing. Offsets
// and durations are parallel to Words and expressed in milliseconds.
type EnrichedAudio struct {
	AudioBase64 string    `json:"audioBase64"`
	Words       []string  `json:"words,omitempty"`
	WTimesMs    []float64 `json:"wtimesMs,omitempty"`
	WDursMs     []float64 `json:"wdurationsMs,omitempty"`
}

// SentenceChunk is one newline-delimited JSON unit of the interaction
// stream. Chunks of a turn are emitted in sentence order: exactly one
// NEW_AUDIO first and one END last. Input and Options are only meaningful
// on the terminal chunk.
type SentenceChunk struct {
	Kind           ChunkKind        `json:"kind"`
	NodeID         int              `json:"nodeId"`
	SentenceText   string           `json:"sentenceText"`
	CumulativeText string           `json:"cumulativeText"`
	Audio          *EnrichedAudio   `json:"audio"`
	Input          *InputDescriptor `json:"input,omitempty"`
	Options        []Option         `json:"options"`
}
