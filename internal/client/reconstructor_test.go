package client

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/parleylab/negotiation-avatar/internal/model/dialogue"
)

func chunkLine(t *testing.T, chunk dialogue.SentenceChunk) string {
	t.Helper()
	data, err := json.Marshal(chunk)
	if err != nil {
		t.Fatalf("marshal chunk: %v", err)
	}
	return string(data) + "\n"
}

func drainPlayback(r *Reconstructor) []*dialogue.EnrichedAudio {
	var out []*dialogue.EnrichedAudio
	for audio := range r.Playback() {
		out = append(out, audio)
	}
	return out
}

func TestReconstructorMergesLongerText(t *testing.T) {
	conv := NewConversation()
	r := NewReconstructor(conv)

	r.Feed([]byte(chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkNewAudio,
		NodeID:         1,
		SentenceText:   "Hello.",
		CumulativeText: "Hello.",
	})))
	if r.State() != StreamStreaming {
		t.Fatal("first text chunk should start streaming")
	}

	r.Feed([]byte(chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkSentence,
		NodeID:         1,
		SentenceText:   "How are you?",
		CumulativeText: "Hello. How are you?",
	})))
	r.Finalize()

	msgs := conv.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	if msgs[0].Text != "Hello. How are you?" {
		t.Fatalf("text = %q", msgs[0].Text)
	}
	if msgs[0].State != StateComplete {
		t.Fatalf("finalize must complete the message, state = %s", msgs[0].State)
	}
}

func TestReconstructorBuffersPartialLine(t *testing.T) {
	conv := NewConversation()
	r := NewReconstructor(conv)

	line := chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkNewAudio,
		NodeID:         3,
		SentenceText:   "Split delivery.",
		CumulativeText: "Split delivery.",
	})
	cut := len(line) / 2

	r.Feed([]byte(line[:cut]))
	if conv.Len() != 0 {
		t.Fatal("partial line must not produce a message")
	}

	r.Feed([]byte(line[cut:]))
	if conv.Len() != 1 {
		t.Fatal("completed line must produce a message")
	}
	if got := conv.Messages()[0].Text; got != "Split delivery." {
		t.Fatalf("text = %q", got)
	}
}

func TestReconstructorIgnoresDuplicateLines(t *testing.T) {
	conv := NewConversation()
	r := NewReconstructor(conv)

	line := chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkNewAudio,
		NodeID:         1,
		SentenceText:   "Once only.",
		CumulativeText: "Once only.",
	})
	r.Feed([]byte(line))
	r.Feed([]byte(line))
	r.Finalize()

	if conv.Len() != 1 {
		t.Fatalf("duplicate line must not duplicate the message, got %d", conv.Len())
	}
	if got := conv.Messages()[0].Text; got != "Once only." {
		t.Fatalf("text = %q", got)
	}
}

func TestReconstructorSkipsMalformedLines(t *testing.T) {
	conv := NewConversation()
	r := NewReconstructor(conv)

	r.Feed([]byte("{not json at all\n"))
	r.Feed([]byte(chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkNewAudio,
		SentenceText:   "Still fine.",
		CumulativeText: "Still fine.",
	})))
	r.Finalize()

	if conv.Len() != 1 {
		t.Fatalf("stream must survive a malformed line, got %d messages", conv.Len())
	}
}

func TestReconstructorDefersRoutingUntilFinalize(t *testing.T) {
	conv := NewConversation()
	r := NewReconstructor(conv)

	r.Feed([]byte(chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkNewAudio,
		SentenceText:   "Hello.",
		CumulativeText: "Hello.",
	})))
	r.Feed([]byte(chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkEnd,
		CumulativeText: "Hello.",
		Input:          &dialogue.InputDescriptor{NextNode: 4},
		Options:        []dialogue.Option{{OptionText: "Continue", NextNode: 4}},
	})))

	if r.Input() != nil || r.Options() != nil {
		t.Fatal("routing must stay hidden while streaming")
	}

	r.Finalize()

	if r.Input() == nil || r.Input().NextNode != 4 {
		t.Fatal("input descriptor missing after finalize")
	}
	if len(r.Options()) != 1 || r.Options()[0].NextNode != 4 {
		t.Fatal("options missing after finalize")
	}
}

func TestReconstructorQueuesAudioInArrivalOrder(t *testing.T) {
	conv := NewConversation()
	r := NewReconstructor(conv)

	r.Feed([]byte(chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkNewAudio,
		SentenceText:   "One.",
		CumulativeText: "One.",
		Audio:          &dialogue.EnrichedAudio{AudioBase64: "first"},
	})))
	r.Feed([]byte(chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkSentence,
		SentenceText:   "Two.",
		CumulativeText: "One. Two.",
		Audio:          &dialogue.EnrichedAudio{AudioBase64: "second"},
	})))
	r.Finalize()

	queue := drainPlayback(r)
	if len(queue) != 2 {
		t.Fatalf("expected 2 queued records, got %d", len(queue))
	}
	if queue[0].AudioBase64 != "first" || queue[1].AudioBase64 != "second" {
		t.Fatal("playback order must match arrival order")
	}
}

func TestReconstructorFinalizeIdempotent(t *testing.T) {
	conv := NewConversation()
	r := NewReconstructor(conv)

	r.Feed([]byte(chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkNewAudio,
		SentenceText:   "Done.",
		CumulativeText: "Done.",
	})))
	r.Finalize()
	r.Finalize()

	if r.State() != StreamFinalized {
		t.Fatal("state must stay finalized")
	}
	if conv.Len() != 1 {
		t.Fatalf("expected one message, got %d", conv.Len())
	}

	// Feeding after finalize is ignored.
	r.Feed([]byte(chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkSentence,
		SentenceText:   "Late.",
		CumulativeText: "Done. Late.",
	})))
	if got := conv.Messages()[0].Text; got != "Done." {
		t.Fatalf("finalized text must not change, got %q", got)
	}
}

func TestReconstructorConsumeReader(t *testing.T) {
	conv := NewConversation()
	r := NewReconstructor(conv)

	stream := chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkNewAudio,
		SentenceText:   "Hello.",
		CumulativeText: "Hello.",
	}) + chunkLine(t, dialogue.SentenceChunk{
		Kind:           dialogue.ChunkEnd,
		CumulativeText: "Hello.",
		Input:          &dialogue.InputDescriptor{NextNode: 2},
	})

	if err := r.Consume(strings.NewReader(stream)); err != nil {
		t.Fatalf("Consume err: %v", err)
	}

	if r.State() != StreamFinalized {
		t.Fatal("end-of-stream must finalize the turn")
	}
	if conv.Messages()[0].State != StateComplete {
		t.Fatal("message must be complete after consume")
	}
	if r.Input() == nil || r.Input().NextNode != 2 {
		t.Fatal("input routing lost")
	}
}
