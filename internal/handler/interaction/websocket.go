package interaction

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/parleylab/negotiation-avatar/internal/model/dialogue"
	interactionsvc "github.com/parleylab/negotiation-avatar/internal/service/interaction"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsChunkWriter frames each chunk as one WebSocket text message.
type wsChunkWriter struct {
	conn *websocket.Conn
}

func (w wsChunkWriter) WriteChunk(chunk dialogue.SentenceChunk) error {
	return w.conn.WriteJSON(chunk)
}

// handleWebSocket mirrors the NDJSON stream over a WebSocket for clients
// behind proxies that buffer chunked responses. One turn per connection;
// the server closes the socket after the END chunk.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	nodeID, err := strconv.Atoi(chi.URLParam(r, "nodeID"))
	if err != nil {
		http.Error(w, "invalid node id", http.StatusBadRequest)
		return
	}

	userInput := r.URL.Query().Get("input")
	if userInput == "" {
		http.Error(w, "input query parameter is required", http.StatusBadRequest)
		return
	}
	gender := r.URL.Query().Get("gender")

	turn, err := h.buildTurn(r.Context(), nodeID, userInput)
	if err != nil {
		log.Printf("[ws] failed to build turn for node=%d: %v", nodeID, err)
		http.Error(w, "failed to get negotiation response", http.StatusBadGateway)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if err := h.emitter.Emit(r.Context(), wsChunkWriter{conn: conn}, turn, h.profileFor(gender)); err != nil {
		if !errors.Is(err, interactionsvc.ErrEmptyDialogue) {
			log.Printf("[ws] stream aborted for node=%d: %v", nodeID, err)
		}
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "turn complete")
	_ = conn.WriteMessage(websocket.CloseMessage, closeMsg)
}
