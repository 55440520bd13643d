package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	generatehandler "github.com/parleylab/negotiation-avatar/internal/handler/generate"
	interactionhandler "github.com/parleylab/negotiation-avatar/internal/handler/interaction"
	middlewarePkg "github.com/parleylab/negotiation-avatar/internal/middleware"
	"github.com/parleylab/negotiation-avatar/internal/model/voice"
	interactionsvc "github.com/parleylab/negotiation-avatar/internal/service/interaction"
	"github.com/parleylab/negotiation-avatar/internal/service/negotiate"
	"github.com/parleylab/negotiation-avatar/internal/service/script"
	sessionsvc "github.com/parleylab/negotiation-avatar/internal/service/session"
	"github.com/parleylab/negotiation-avatar/pkg/utils"
)

// NewRouter wires HTTP routes to core services. The negotiator and
// generator may be nil when their credentials are absent; the affected
// endpoints degrade to explicit errors instead of panics.
func NewRouter(
	emitter *interactionsvc.Emitter,
	negotiator negotiate.Provider,
	scripts *script.Store,
	voices voice.Store,
	sessions *sessionsvc.Service,
	generator *script.Generator,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewarePkg.CORS)
	r.Use(middlewarePkg.WithSession(sessions))

	interactionHandler := interactionhandler.New(emitter, negotiator, scripts, voices)
	interactionHandler.RegisterRoutes(r)

	if generator != nil {
		generateHandler := generatehandler.New(generator)
		generateHandler.RegisterRoutes(r)
	} else {
		r.Get("/generate/script", generationUnavailable)
		r.Get("/generate/placeholders", generationUnavailable)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": sessions.Count(),
		})
	})

	return r
}

func generationUnavailable(w http.ResponseWriter, _ *http.Request) {
	utils.RespondError(w, http.StatusServiceUnavailable, "speech credentials not configured")
}
