// Package speech turns dialogue sentences into transport-ready audio with
// word-level timing for avatar lip-sync.
package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/parleylab/negotiation-avatar/internal/config"
	"github.com/parleylab/negotiation-avatar/internal/model/dialogue"
	"github.com/parleylab/negotiation-avatar/internal/model/voice"
)

// wordLeadMs shifts every word start earlier to compensate for perceived
// playback/display lag. Fixed empirical constant, not derived.
const wordLeadMs = 150

// Enricher runs the per-sentence synthesis pipeline: synthesize, persist,
// tempo-shift, encode, transcribe. Temporary artifacts are scoped to one
// call and removed on every exit path.
type Enricher struct {
	config      config.SpeechConfig
	synthesizer Synthesizer
	transcriber Transcriber
	tempo       TempoTransformer
}

// NewEnricher wires the pipeline from provider implementations.
func NewEnricher(cfg config.SpeechConfig, synth Synthesizer, stt Transcriber, tempo TempoTransformer) *Enricher {
	return &Enricher{
		config:      cfg,
		synthesizer: synth,
		transcriber: stt,
		tempo:       tempo,
	}
}

// NewDefaultEnricher builds an Enricher with the OpenAI providers and
// ffmpeg tempo transform from configuration.
func NewDefaultEnricher(cfg config.SpeechConfig) *Enricher {
	return NewEnricher(cfg, NewOpenAITTSClient(cfg), NewWhisperClient(cfg), NewFFmpegTempo(cfg.FFmpegPath))
}

// Enrich produces audio with timing for one sentence in the given voice.
// A nil result with a non-nil error means the sentence should be streamed
// text-only; the caller must not abort the remaining sentences.
func (e *Enricher) Enrich(ctx context.Context, sentence string, profile voice.Profile) (_ *dialogue.EnrichedAudio, err error) {
	if sentence == "" {
		return nil, fmt.Errorf("sentence is empty")
	}

	var created []string
	defer func() {
		for _, path := range created {
			if removeErr := os.Remove(path); removeErr != nil {
				// Cleanup failures are logged, never propagated.
				log.Printf("[enrich] failed to remove temp artifact %s: %v", path, removeErr)
			}
		}
	}()

	audio, err := e.synthesizer.Synthesize(ctx, sentence, profile.TTSVoice)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	id := uuid.NewString()
	speechPath := filepath.Join(e.config.TempDir, fmt.Sprintf("speech_%s.wav", id))
	if err := os.WriteFile(speechPath, audio, 0o600); err != nil {
		return nil, fmt.Errorf("persist synthesized audio: %w", err)
	}
	created = append(created, speechPath)

	factor := profile.TempoFactor
	if factor == 0 {
		factor = e.config.TempoFactor
	}

	spedUpPath := filepath.Join(e.config.TempDir, fmt.Sprintf("spedup_speech_%s.wav", id))
	if err := e.tempo.SpeedUp(ctx, speechPath, spedUpPath, factor); err != nil {
		return nil, fmt.Errorf("tempo transform: %w", err)
	}
	created = append(created, spedUpPath)

	spedUp, err := os.ReadFile(spedUpPath)
	if err != nil {
		return nil, fmt.Errorf("read tempo-shifted audio: %w", err)
	}

	timings, err := e.transcriber.Transcribe(ctx, spedUp)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	enriched := &dialogue.EnrichedAudio{
		AudioBase64: base64.StdEncoding.EncodeToString(spedUp),
	}
	for _, timing := range timings {
		enriched.Words = append(enriched.Words, timing.Word)
		enriched.WTimesMs = append(enriched.WTimesMs, 1000*timing.StartSec-wordLeadMs)
		enriched.WDursMs = append(enriched.WDursMs, 1000*(timing.EndSec-timing.StartSec))
	}

	return enriched, nil
}
