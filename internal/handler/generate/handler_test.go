package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/parleylab/negotiation-avatar/internal/model/dialogue"
	"github.com/parleylab/negotiation-avatar/internal/model/voice"
	"github.com/parleylab/negotiation-avatar/internal/service/script"
)

type stubEnricher struct{}

func (stubEnricher) Enrich(_ context.Context, text string, profile voice.Profile) (*dialogue.EnrichedAudio, error) {
	return &dialogue.EnrichedAudio{AudioBase64: profile.TTSVoice + ":" + text}, nil
}

func setup(t *testing.T) (*chi.Mux, string) {
	t.Helper()
	dir := t.TempDir()

	nodes := []dialogue.ScriptNode{{NodeID: 1, Dialogue: "Hello there."}}
	data, _ := json.Marshal(nodes)
	if err := os.WriteFile(filepath.Join(dir, "ConversationScript.json"), data, 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	generator := script.NewGenerator(dir, stubEnricher{}, voice.NewMemoryStore(voice.Seed()))
	handler := New(generator)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, dir
}

func TestGenerateScriptEndpoint(t *testing.T) {
	r, dir := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/generate/script", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	if _, err := os.Stat(filepath.Join(dir, "CompleteConversationScript.json")); err != nil {
		t.Fatalf("complete script not written: %v", err)
	}
}

func TestGeneratePlaceholdersEndpoint(t *testing.T) {
	r, dir := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/generate/placeholders", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	if _, err := os.Stat(filepath.Join(dir, "Placeholders.json")); err != nil {
		t.Fatalf("placeholders not written: %v", err)
	}
}

func TestGenerateScriptMissingInput(t *testing.T) {
	dir := t.TempDir()
	generator := script.NewGenerator(dir, stubEnricher{}, voice.NewMemoryStore(voice.Seed()))
	handler := New(generator)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/generate/script", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for missing input script, got %d", resp.Code)
	}
}
