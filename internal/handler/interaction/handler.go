package interaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parleylab/negotiation-avatar/internal/middleware"
	"github.com/parleylab/negotiation-avatar/internal/model/dialogue"
	"github.com/parleylab/negotiation-avatar/internal/model/voice"
	interactionsvc "github.com/parleylab/negotiation-avatar/internal/service/interaction"
	"github.com/parleylab/negotiation-avatar/internal/service/negotiate"
	"github.com/parleylab/negotiation-avatar/internal/service/script"
	"github.com/parleylab/negotiation-avatar/pkg/utils"
)

// fallbackReply is spoken when the provider answers with an empty reply.
const fallbackReply = "I'm sorry, I don't have a response right now."

// Handler serves the live interaction endpoints.
type Handler struct {
	emitter    *interactionsvc.Emitter
	negotiator negotiate.Provider
	scripts    *script.Store
	voices     voice.Store
}

// New creates the interaction handler. The negotiator may be nil when no
// provider is configured; scripted nodes still work then.
func New(emitter *interactionsvc.Emitter, negotiator negotiate.Provider, scripts *script.Store, voices voice.Store) *Handler {
	return &Handler{
		emitter:    emitter,
		negotiator: negotiator,
		scripts:    scripts,
		voices:     voices,
	}
}

// RegisterRoutes registers the interaction endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/interaction/{nodeID}", h.handleInteraction)
	r.Get("/interaction/ws/{nodeID}", h.handleWebSocket)
}

type interactionRequest struct {
	UserInput string `json:"userInput"`
	Gender    string `json:"gender,omitempty"`
}

func (h *Handler) handleInteraction(w http.ResponseWriter, r *http.Request) {
	nodeID, err := strconv.Atoi(chi.URLParam(r, "nodeID"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid node id")
		return
	}

	var payload interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserInput == "" {
		utils.RespondError(w, http.StatusBadRequest, "no user input provided")
		return
	}

	turn, err := h.buildTurn(r.Context(), nodeID, payload.UserInput)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, negotiate.ErrUpstreamUnavailable) {
			status = http.StatusBadGateway
		}
		log.Printf("[interaction] failed to build turn for node=%d: %v", nodeID, err)
		utils.RespondError(w, status, "failed to get negotiation response")
		return
	}

	utils.SetupStreamHeaders(w)
	sink := interactionsvc.NDJSONWriter{W: w}
	if err := h.emitter.Emit(r.Context(), sink, turn, h.profileFor(payload.Gender)); err != nil {
		// Headers are gone; the broken stream itself signals the failure.
		log.Printf("[interaction] stream aborted for node=%d: %v", nodeID, err)
	}
}

// buildTurn resolves the dialogue for this node: a scripted node is served
// verbatim with its scripted routing, everything else goes through the
// negotiation provider with free-text routing to the next node.
func (h *Handler) buildTurn(ctx context.Context, nodeID int, userInput string) (dialogue.Turn, error) {
	if h.scripts != nil {
		if node, ok := h.scripts.FindNode(nodeID); ok && node.Scripted() {
			return dialogue.Turn{
				NodeID:   nodeID,
				FullText: node.Dialogue,
				Input:    node.Input,
				Options:  node.Options,
			}, nil
		}
	}

	if h.negotiator == nil {
		return dialogue.Turn{}, fmt.Errorf("%w: no negotiation provider configured", negotiate.ErrUpstreamUnavailable)
	}

	sessionID := "default-session"
	if sess, ok := middleware.SessionFromContext(ctx); ok {
		sessionID = sess.ID
	}

	reply, err := h.negotiator.Negotiate(ctx, sessionID, userInput)
	if err != nil {
		return dialogue.Turn{}, err
	}
	if reply == "" {
		log.Printf("[interaction] provider returned empty reply for node=%d", nodeID)
		reply = fallbackReply
	}

	return dialogue.Turn{
		NodeID:   nodeID,
		FullText: reply,
		Input:    &dialogue.InputDescriptor{NextNode: nodeID + 1},
		Options:  []dialogue.Option{},
	}, nil
}

func (h *Handler) profileFor(gender string) voice.Profile {
	if gender == "" {
		gender = "female"
	}
	if profile, ok := h.voices.FindByGender(gender); ok {
		return profile
	}
	if profiles := h.voices.List(); len(profiles) > 0 {
		return profiles[0]
	}
	return voice.Profile{}
}
