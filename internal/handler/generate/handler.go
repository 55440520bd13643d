// Package generate exposes the offline audio pre-generation jobs over
// HTTP. These endpoints are operator tools, not part of the live
// interaction flow.
package generate

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parleylab/negotiation-avatar/internal/service/script"
	"github.com/parleylab/negotiation-avatar/pkg/utils"
)

// Handler serves the batch generation endpoints.
type Handler struct {
	generator *script.Generator
}

// New creates the generation handler.
func New(generator *script.Generator) *Handler {
	return &Handler{generator: generator}
}

// RegisterRoutes registers the generation endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/generate", func(gen chi.Router) {
		gen.Get("/script", h.handleGenerateScript)
		gen.Get("/placeholders", h.handleGeneratePlaceholders)
	})
}

func (h *Handler) handleGenerateScript(w http.ResponseWriter, r *http.Request) {
	outputFile, err := h.generator.GenerateScript(r.Context())
	if err != nil {
		log.Printf("[generate] script generation failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to generate script audio")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message":    "audio generation complete",
		"outputFile": outputFile,
	})
}

func (h *Handler) handleGeneratePlaceholders(w http.ResponseWriter, r *http.Request) {
	outputFile, err := h.generator.GeneratePlaceholders(r.Context())
	if err != nil {
		log.Printf("[generate] placeholder generation failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to generate placeholder audio")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message":    "audio generation complete",
		"outputFile": outputFile,
	})
}
