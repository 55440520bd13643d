package segment

import (
	"strings"
	"testing"
)

func TestSentencesBasicSplit(t *testing.T) {
	got := Sentences("Hello. How are you?")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(got), got)
	}
	if got[0] != "Hello." {
		t.Fatalf("unexpected first sentence: %q", got[0])
	}
	if got[1] != "How are you?" {
		t.Fatalf("unexpected second sentence: %q", got[1])
	}
}

func TestSentencesNoTerminator(t *testing.T) {
	got := Sentences("let me think about that")
	if len(got) != 1 {
		t.Fatalf("expected whole input as single sentence, got %v", got)
	}
	if got[0] != "let me think about that" {
		t.Fatalf("unexpected sentence: %q", got[0])
	}
}

func TestSentencesKeepsTrailingFragment(t *testing.T) {
	got := Sentences("Deal! But only if")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %v", got)
	}
	if got[1] != "But only if" {
		t.Fatalf("trailing fragment dropped: %v", got)
	}
}

func TestSentencesEmptyInput(t *testing.T) {
	if got := Sentences("   "); got != nil {
		t.Fatalf("expected nil for blank input, got %v", got)
	}
}

func TestSentencesConcatenationProperty(t *testing.T) {
	inputs := []string{
		"Hello. How are you?",
		"One! Two? Three.",
		"No terminator here",
		"Mixed... endings?! And a tail",
		"Single.",
	}

	normalize := func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	}

	for _, input := range inputs {
		parts := Sentences(input)
		if len(parts) == 0 {
			t.Fatalf("empty result for %q", input)
		}
		joined := normalize(strings.Join(parts, " "))
		if joined != normalize(input) {
			t.Fatalf("concatenation mismatch for %q: got %q", input, joined)
		}
	}
}

func TestSentencesMultipleTerminators(t *testing.T) {
	got := Sentences("Really?! Yes.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %v", got)
	}
	if got[0] != "Really?!" {
		t.Fatalf("terminator run split incorrectly: %q", got[0])
	}
}
