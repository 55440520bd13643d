package client

import (
	"testing"
)

func TestConversationAppendAndUpdate(t *testing.T) {
	conv := NewConversation()

	id := conv.Append(RoleAgent, "", StatePending)
	if conv.Len() != 1 {
		t.Fatalf("expected 1 message, got %d", conv.Len())
	}

	if err := conv.UpdateContent(id, "Hello."); err != nil {
		t.Fatalf("UpdateContent err: %v", err)
	}

	msgs := conv.Messages()
	if msgs[0].Text != "Hello." {
		t.Fatalf("text = %q", msgs[0].Text)
	}
	if msgs[0].State != StateStreaming {
		t.Fatalf("pending message should move to streaming on first update, got %s", msgs[0].State)
	}
}

func TestConversationMarkComplete(t *testing.T) {
	conv := NewConversation()
	id := conv.Append(RoleAgent, "done", StateStreaming)

	if err := conv.MarkComplete(id); err != nil {
		t.Fatalf("MarkComplete err: %v", err)
	}
	if state := conv.Messages()[0].State; state != StateComplete {
		t.Fatalf("state = %s", state)
	}

	// Completing twice stays complete.
	if err := conv.MarkComplete(id); err != nil {
		t.Fatalf("second MarkComplete err: %v", err)
	}
}

func TestConversationUnknownID(t *testing.T) {
	conv := NewConversation()

	if err := conv.UpdateContent("missing", "x"); err != ErrMessageNotFound {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
	if err := conv.MarkComplete("missing"); err != ErrMessageNotFound {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestConversationAppendOnlyAndReset(t *testing.T) {
	conv := NewConversation()
	conv.Append(RoleUser, "Hi", StateComplete)
	conv.Append(RoleAgent, "Hello.", StateComplete)

	msgs := conv.Messages()
	if len(msgs) != 2 || msgs[0].Role != RoleUser || msgs[1].Role != RoleAgent {
		t.Fatalf("unexpected log: %+v", msgs)
	}

	conv.Reset()
	if conv.Len() != 0 {
		t.Fatal("reset must clear the log")
	}
}
