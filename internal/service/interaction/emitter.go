// Package interaction orchestrates the per-turn chunk stream: segment the
// dialogue, enrich each sentence, and emit ordered chunks to the client.
package interaction

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/parleylab/negotiation-avatar/internal/model/dialogue"
	"github.com/parleylab/negotiation-avatar/internal/model/voice"
	"github.com/parleylab/negotiation-avatar/internal/segment"
	"github.com/parleylab/negotiation-avatar/pkg/utils"
)

// ErrEmptyDialogue signals a turn with no text to stream. Callers must
// respond with a client error before any chunk is written.
var ErrEmptyDialogue = errors.New("dialogue text is empty")

// SentenceEnricher abstracts the audio pipeline so the emitter can be
// tested without providers.
type SentenceEnricher interface {
	Enrich(ctx context.Context, sentence string, profile voice.Profile) (*dialogue.EnrichedAudio, error)
}

// ChunkWriter delivers one chunk to the client. Implementations frame the
// chunk for their transport (NDJSON line, WebSocket message).
type ChunkWriter interface {
	WriteChunk(chunk dialogue.SentenceChunk) error
}

// NDJSONWriter frames chunks as newline-delimited JSON over a response
// body, flushing per line.
type NDJSONWriter struct {
	W io.Writer
}

// WriteChunk writes one chunk line.
func (n NDJSONWriter) WriteChunk(chunk dialogue.SentenceChunk) error {
	return utils.WriteJSONLine(n.W, chunk)
}

// Emitter streams a dialogue turn as SentenceChunk units. One emitter is
// safe for concurrent use; each Emit call owns its writer exclusively.
type Emitter struct {
	enricher SentenceEnricher
}

// NewEmitter creates an Emitter over the given enrichment pipeline.
func NewEmitter(enricher SentenceEnricher) *Emitter {
	return &Emitter{enricher: enricher}
}

// Emit writes one chunk per sentence in original order, then the terminal
// END chunk. The first sentence is enriched synchronously so the client
// sees content before the slower tail resolves; the remaining sentences
// are enriched concurrently and awaited as a batch. A failed enrichment
// degrades that chunk to text-only, it never aborts the turn.
func (e *Emitter) Emit(ctx context.Context, sink ChunkWriter, turn dialogue.Turn, profile voice.Profile) error {
	if strings.TrimSpace(turn.FullText) == "" {
		return ErrEmptyDialogue
	}

	sentences := segment.Sentences(turn.FullText)

	first := e.enrichSentence(ctx, sentences[0], profile)
	cumulative := sentences[0]
	if err := sink.WriteChunk(dialogue.SentenceChunk{
		Kind:           dialogue.ChunkNewAudio,
		NodeID:         turn.NodeID,
		SentenceText:   sentences[0],
		CumulativeText: cumulative,
		Audio:          first,
		Options:        []dialogue.Option{},
	}); err != nil {
		return err
	}

	rest := sentences[1:]
	results := make([]*dialogue.EnrichedAudio, len(rest))

	var wg sync.WaitGroup
	for i, sentence := range rest {
		wg.Add(1)
		go func(idx int, text string) {
			defer wg.Done()
			results[idx] = e.enrichSentence(ctx, text, profile)
		}(i, sentence)
	}
	wg.Wait()

	for i, sentence := range rest {
		if err := ctx.Err(); err != nil {
			// Client went away; abandon the remaining chunks.
			return err
		}
		cumulative = cumulative + " " + sentence
		if err := sink.WriteChunk(dialogue.SentenceChunk{
			Kind:           dialogue.ChunkSentence,
			NodeID:         turn.NodeID,
			SentenceText:   sentence,
			CumulativeText: cumulative,
			Audio:          results[i],
			Options:        []dialogue.Option{},
		}); err != nil {
			return err
		}
	}

	options := turn.Options
	if options == nil {
		options = []dialogue.Option{}
	}
	return sink.WriteChunk(dialogue.SentenceChunk{
		Kind:           dialogue.ChunkEnd,
		NodeID:         turn.NodeID,
		CumulativeText: turn.FullText,
		Audio:          nil,
		Input:          turn.Input,
		Options:        options,
	})
}

// enrichSentence wraps the pipeline call with the degrade-to-text policy.
func (e *Emitter) enrichSentence(ctx context.Context, sentence string, profile voice.Profile) *dialogue.EnrichedAudio {
	if e.enricher == nil {
		return nil
	}

	enriched, err := e.enricher.Enrich(ctx, sentence, profile)
	if err != nil {
		log.Printf("[interaction] enrichment failed, streaming text-only sentence: %v", err)
		return nil
	}
	return enriched
}
