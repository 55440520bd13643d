package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"github.com/parleylab/negotiation-avatar/internal/client"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] failed to load .env, using system environment only: %v", err)
	}

	server := flag.String("server", "http://localhost:3000", "base URL of the interaction backend")
	node := flag.Int("node", 1, "conversation node to address")
	input := flag.String("input", "", "user input text for the turn")
	gender := flag.String("gender", "", "voice gender (female or male), defaults to server choice")
	useWS := flag.Bool("ws", false, "use the WebSocket mirror instead of the NDJSON stream")
	timeout := flag.Duration("timeout", 90*time.Second, "request timeout")

	flag.Parse()

	if strings.TrimSpace(*input) == "" {
		flag.Usage()
		log.Fatal("provide the user input via -input")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conversation := client.NewConversation()
	conversation.Append(client.RoleUser, *input, client.StateComplete)
	reconstructor := client.NewReconstructor(conversation)

	log.Printf("sending turn: node=%d input=%q ws=%v", *node, *input, *useWS)
	start := time.Now()

	var err error
	if *useWS {
		err = runWebSocketTurn(ctx, reconstructor, *server, *node, *input, *gender)
	} else {
		err = runStreamTurn(ctx, reconstructor, *server, *node, *input, *gender)
	}
	if err != nil {
		log.Fatalf("turn failed: %v", err)
	}

	audioCount := 0
	totalWords := 0
	for audio := range reconstructor.Playback() {
		audioCount++
		totalWords += len(audio.Words)
	}

	for _, msg := range conversation.Messages() {
		log.Printf("%-5s [%s] %s", msg.Role, msg.State, msg.Text)
	}

	log.Printf("turn complete in %s: %d audio record(s), %d timed word(s)", time.Since(start).Round(time.Millisecond), audioCount, totalWords)

	if in := reconstructor.Input(); in != nil {
		log.Printf("next free-text node: %d", in.NextNode)
	}
	for _, opt := range reconstructor.Options() {
		log.Printf("option: %q -> node %d", opt.OptionText, opt.NextNode)
	}
}

// runStreamTurn drives one turn over the NDJSON endpoint, feeding the raw
// response body into the reconstructor.
func runStreamTurn(ctx context.Context, reconstructor *client.Reconstructor, server string, node int, input, gender string) error {
	payload, err := json.Marshal(map[string]string{
		"userInput": input,
		"gender":    gender,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/interaction/%d", strings.TrimRight(server, "/"), node)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, errBody["error"])
	}

	return reconstructor.Consume(resp.Body)
}

// runWebSocketTurn drives one turn over the WebSocket mirror. Each message
// is one chunk; a newline is appended so the reconstructor sees the same
// framing as the NDJSON stream.
func runWebSocketTurn(ctx context.Context, reconstructor *client.Reconstructor, server string, node int, input, gender string) error {
	wsURL, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return fmt.Errorf("parse server url: %w", err)
	}
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = fmt.Sprintf("/interaction/ws/%d", node)

	query := wsURL.Query()
	query.Set("input", input)
	if gender != "" {
		query.Set("gender", gender)
	}
	wsURL.RawQuery = query.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			reconstructor.Finalize()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		reconstructor.Feed(append(message, '\n'))
	}
}
