package client

import (
	"bytes"
	"encoding/json"
	"io"
	"log"

	"github.com/parleylab/negotiation-avatar/internal/model/dialogue"
)

// StreamState is the per-turn phase of the reconstructor.
type StreamState int

const (
	// StreamIdle means no chunk with text has arrived yet.
	StreamIdle StreamState = iota
	// StreamStreaming means an in-progress message exists in the log.
	StreamStreaming
	// StreamFinalized means end-of-stream was reached and the message
	// was committed.
	StreamFinalized
)

// defaultPlaybackBuffer bounds the playback queue; a turn rarely has
// more than a handful of sentences.
const defaultPlaybackBuffer = 64

// Reconstructor rebuilds one agent turn from a raw chunk byte stream.
// Bytes are split on newline boundaries with a partial trailing line
// buffered until the rest arrives. Text merging keeps whichever of the
// tracked and incoming cumulative text is longer, so streams that
// repeat the dialogue-so-far and streams that send only increments
// both converge on the same message. Not safe for concurrent use; one
// reconstructor serves one turn at a time.
type Reconstructor struct {
	conversation *Conversation

	state     StreamState
	partial   bytes.Buffer
	messageID string
	text      string

	playback chan *dialogue.EnrichedAudio
	input    *dialogue.InputDescriptor
	options  []dialogue.Option
}

// NewReconstructor creates a reconstructor rendering into the given
// conversation log.
func NewReconstructor(conversation *Conversation) *Reconstructor {
	return &Reconstructor{
		conversation: conversation,
		playback:     make(chan *dialogue.EnrichedAudio, defaultPlaybackBuffer),
	}
}

// State reports the current stream phase.
func (r *Reconstructor) State() StreamState {
	return r.state
}

// MessageID returns the id of the in-progress or finalized message,
// empty while idle.
func (r *Reconstructor) MessageID() string {
	return r.messageID
}

// Playback exposes the audio queue in chunk-arrival order. The channel
// is closed on finalization.
func (r *Reconstructor) Playback() <-chan *dialogue.EnrichedAudio {
	return r.playback
}

// Input returns the captured next-step descriptor. Nil until the
// stream is finalized; routing must not render mid-turn.
func (r *Reconstructor) Input() *dialogue.InputDescriptor {
	if r.state != StreamFinalized {
		return nil
	}
	return r.input
}

// Options returns the captured option buttons, nil until finalized.
func (r *Reconstructor) Options() []dialogue.Option {
	if r.state != StreamFinalized {
		return nil
	}
	return r.options
}

// Feed consumes the next slice of raw stream bytes. Complete lines are
// parsed immediately; a trailing partial line is held until the next
// call supplies the remainder.
func (r *Reconstructor) Feed(p []byte) {
	if r.state == StreamFinalized {
		return
	}
	r.partial.Write(p)

	for {
		data := r.partial.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return
		}
		line := make([]byte, idx)
		copy(line, data[:idx])
		r.partial.Next(idx + 1)
		r.handleLine(line)
	}
}

// Finalize commits the in-progress message and releases the playback
// queue. Safe to call more than once; only the first call transitions
// state.
func (r *Reconstructor) Finalize() {
	if r.state == StreamFinalized {
		return
	}

	// Flush a last line that arrived without a trailing newline.
	if rest := bytes.TrimSpace(r.partial.Bytes()); len(rest) > 0 {
		r.handleLine(rest)
	}
	r.partial.Reset()

	if r.messageID != "" {
		if err := r.conversation.MarkComplete(r.messageID); err != nil {
			log.Printf("[client] finalize: %v", err)
		}
	}
	r.state = StreamFinalized
	close(r.playback)
}

// Consume reads the stream to completion, feeding every read into the
// reconstructor and finalizing at end-of-stream. Read errors other
// than EOF are returned after finalization so the partial turn is
// still committed.
func (r *Reconstructor) Consume(reader io.Reader) error {
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			r.Feed(buf[:n])
		}
		if err != nil {
			r.Finalize()
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func (r *Reconstructor) handleLine(line []byte) {
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}

	var chunk dialogue.SentenceChunk
	if err := json.Unmarshal(line, &chunk); err != nil {
		log.Printf("[client] skipping malformed chunk line: %v", err)
		return
	}

	text := chunk.CumulativeText
	if text == "" {
		text = chunk.SentenceText
	}

	if r.state == StreamIdle && text != "" {
		r.messageID = r.conversation.Append(RoleAgent, "", StateStreaming)
		r.state = StreamStreaming
	}

	if r.state == StreamStreaming && len(text) > len(r.text) {
		r.text = text
		if err := r.conversation.UpdateContent(r.messageID, r.text); err != nil {
			log.Printf("[client] update content: %v", err)
		}
	}

	if chunk.Audio != nil {
		select {
		case r.playback <- chunk.Audio:
		default:
			log.Printf("[client] playback queue full, dropping audio for node=%d", chunk.NodeID)
		}
	}

	if chunk.Input != nil {
		r.input = chunk.Input
	}
	if len(chunk.Options) > 0 {
		r.options = chunk.Options
	}
}
