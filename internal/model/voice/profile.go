package voice

// Profile captures the synthesis attributes of one avatar voice.
type Profile struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Gender      string  `json:"gender"`
	TTSVoice    string  `json:"ttsVoice"`
	TempoFactor float64 `json:"tempoFactor"`
}

// Seed provides the default demo voices. The tempo factor of 1.1 matches
// the playback speed the avatar front-end was tuned against.
func Seed() []Profile {
	return []Profile{
		{
			ID:          "alex-female",
			Name:        "Alex",
			Gender:      "female",
			TTSVoice:    "shimmer",
			TempoFactor: 1.1,
		},
		{
			ID:          "alex-male",
			Name:        "Alex",
			Gender:      "male",
			TTSVoice:    "echo",
			TempoFactor: 1.1,
		},
	}
}
