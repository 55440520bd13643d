package interaction

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/parleylab/negotiation-avatar/internal/model/dialogue"
	"github.com/parleylab/negotiation-avatar/internal/model/voice"
)

// scriptedEnricher fails for configured sentences and can delay per
// sentence to exercise out-of-order completion.
type scriptedEnricher struct {
	fail   map[string]bool
	delays map[string]time.Duration
}

func (s *scriptedEnricher) Enrich(_ context.Context, sentence string, _ voice.Profile) (*dialogue.EnrichedAudio, error) {
	if d, ok := s.delays[sentence]; ok {
		time.Sleep(d)
	}
	if s.fail[sentence] {
		return nil, errors.New("synthesis failed")
	}
	return &dialogue.EnrichedAudio{AudioBase64: "audio:" + sentence}, nil
}

func decodeChunks(t *testing.T, raw []byte) []dialogue.SentenceChunk {
	t.Helper()
	var chunks []dialogue.SentenceChunk
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk dialogue.SentenceChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			t.Fatalf("invalid chunk line %q: %v", line, err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

func testTurn(text string) dialogue.Turn {
	return dialogue.Turn{
		NodeID:   3,
		FullText: text,
		Input:    &dialogue.InputDescriptor{NextNode: 4},
	}
}

func TestEmitChunkCountAndKinds(t *testing.T) {
	emitter := NewEmitter(&scriptedEnricher{})
	var buf bytes.Buffer

	err := emitter.Emit(context.Background(), NDJSONWriter{W: &buf}, testTurn("Hello. How are you?"), voice.Profile{})
	if err != nil {
		t.Fatalf("Emit err: %v", err)
	}

	chunks := decodeChunks(t, buf.Bytes())
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 2 sentences, got %d", len(chunks))
	}
	if chunks[0].Kind != dialogue.ChunkNewAudio {
		t.Fatalf("first chunk kind = %s", chunks[0].Kind)
	}
	if chunks[1].Kind != dialogue.ChunkSentence {
		t.Fatalf("second chunk kind = %s", chunks[1].Kind)
	}
	if chunks[2].Kind != dialogue.ChunkEnd {
		t.Fatalf("terminal chunk kind = %s", chunks[2].Kind)
	}

	if chunks[0].SentenceText != "Hello." || chunks[1].SentenceText != "How are you?" {
		t.Fatalf("sentence order broken: %q, %q", chunks[0].SentenceText, chunks[1].SentenceText)
	}
	if chunks[2].CumulativeText != "Hello. How are you?" {
		t.Fatalf("terminal cumulative text = %q", chunks[2].CumulativeText)
	}
	if chunks[2].Input == nil || chunks[2].Input.NextNode != 4 {
		t.Fatal("terminal chunk missing input descriptor")
	}
}

func TestEmitOrderSurvivesOutOfOrderEnrichment(t *testing.T) {
	enricher := &scriptedEnricher{delays: map[string]time.Duration{
		"Two.":   30 * time.Millisecond,
		"Three.": 5 * time.Millisecond,
		"Four.":  15 * time.Millisecond,
	}}
	emitter := NewEmitter(enricher)
	var buf bytes.Buffer

	err := emitter.Emit(context.Background(), NDJSONWriter{W: &buf}, testTurn("One. Two. Three. Four."), voice.Profile{})
	if err != nil {
		t.Fatalf("Emit err: %v", err)
	}

	chunks := decodeChunks(t, buf.Bytes())
	want := []string{"One.", "Two.", "Three.", "Four."}
	for i, sentence := range want {
		if chunks[i].SentenceText != sentence {
			t.Fatalf("chunk %d out of order: got %q want %q", i, chunks[i].SentenceText, sentence)
		}
		if chunks[i].Audio == nil || chunks[i].Audio.AudioBase64 != "audio:"+sentence {
			t.Fatalf("chunk %d carries wrong audio", i)
		}
	}
}

func TestEmitDegradesFailedSentenceOnly(t *testing.T) {
	enricher := &scriptedEnricher{fail: map[string]bool{"Two.": true}}
	emitter := NewEmitter(enricher)
	var buf bytes.Buffer

	err := emitter.Emit(context.Background(), NDJSONWriter{W: &buf}, testTurn("One. Two. Three."), voice.Profile{})
	if err != nil {
		t.Fatalf("Emit err: %v", err)
	}

	chunks := decodeChunks(t, buf.Bytes())
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	if chunks[0].Audio == nil || chunks[2].Audio == nil {
		t.Fatal("healthy sentences lost their audio")
	}
	if chunks[1].Audio != nil {
		t.Fatal("failed sentence should stream text-only")
	}
	if chunks[3].Kind != dialogue.ChunkEnd {
		t.Fatal("turn did not complete with END after sentence failure")
	}
}

func TestEmitEmptyDialogue(t *testing.T) {
	emitter := NewEmitter(&scriptedEnricher{})
	var buf bytes.Buffer

	err := emitter.Emit(context.Background(), NDJSONWriter{W: &buf}, testTurn("   "), voice.Profile{})
	if !errors.Is(err, ErrEmptyDialogue) {
		t.Fatalf("expected ErrEmptyDialogue, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatal("no chunk may be written for an empty turn")
	}
}

func TestEmitCumulativeTextGrows(t *testing.T) {
	emitter := NewEmitter(&scriptedEnricher{})
	var buf bytes.Buffer

	if err := emitter.Emit(context.Background(), NDJSONWriter{W: &buf}, testTurn("A. B. C."), voice.Profile{}); err != nil {
		t.Fatalf("Emit err: %v", err)
	}

	chunks := decodeChunks(t, buf.Bytes())
	prev := 0
	for _, chunk := range chunks[:len(chunks)-1] {
		if len(chunk.CumulativeText) < prev {
			t.Fatalf("cumulative text shrank: %q", chunk.CumulativeText)
		}
		if !strings.HasSuffix(chunk.CumulativeText, chunk.SentenceText) {
			t.Fatalf("cumulative %q does not end with sentence %q", chunk.CumulativeText, chunk.SentenceText)
		}
		prev = len(chunk.CumulativeText)
	}
}

func TestEmitSingleSentenceTurn(t *testing.T) {
	emitter := NewEmitter(&scriptedEnricher{})
	var buf bytes.Buffer

	if err := emitter.Emit(context.Background(), NDJSONWriter{W: &buf}, testTurn("Deal."), voice.Profile{}); err != nil {
		t.Fatalf("Emit err: %v", err)
	}

	chunks := decodeChunks(t, buf.Bytes())
	if len(chunks) != 2 {
		t.Fatalf("expected NEW_AUDIO + END, got %d chunks", len(chunks))
	}
}
