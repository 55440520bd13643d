package speech

import "context"

// WordTiming is one transcribed word with provider-reported boundaries.
type WordTiming struct {
	Word     string
	StartSec float64
	EndSec   float64
}

// Synthesizer converts text into raw audio bytes for a given voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Transcriber extracts word-level timing from synthesized audio.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) ([]WordTiming, error)
}

// TempoTransformer rewrites an audio file at an adjusted playback speed.
type TempoTransformer interface {
	SpeedUp(ctx context.Context, inputPath, outputPath string, factor float64) error
}
