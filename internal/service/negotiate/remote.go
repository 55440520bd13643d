package negotiate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/parleylab/negotiation-avatar/internal/config"
)

// retryBackoff is the pause before the single retry on a transient
// upstream failure.
const retryBackoff = 500 * time.Millisecond

// RemoteClient implements Provider against the external negotiation API.
type RemoteClient struct {
	url    string
	client *http.Client
}

// NewRemoteClient creates a client for the configured negotiation API.
func NewRemoteClient(cfg config.NegotiatorConfig) *RemoteClient {
	return &RemoteClient{
		url:    cfg.RemoteURL,
		client: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}
}

type negotiateRequest struct {
	UserInput string `json:"userInput"`
	SessionID string `json:"sessionId"`
}

type negotiateResponse struct {
	Reply string `json:"reply"`
}

// Negotiate posts the user input and returns the agent reply. Transient
// failures are retried once with a short backoff before the turn is
// declared unavailable.
func (c *RemoteClient) Negotiate(ctx context.Context, sessionID, userInput string) (string, error) {
	reply, err := c.post(ctx, sessionID, userInput)
	if err == nil {
		return reply, nil
	}

	log.Printf("[negotiate] remote call failed, retrying once: %v", err)
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err())
	case <-time.After(retryBackoff):
	}

	reply, err = c.post(ctx, sessionID, userInput)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return reply, nil
}

func (c *RemoteClient) post(ctx context.Context, sessionID, userInput string) (string, error) {
	payload, err := json.Marshal(negotiateRequest{UserInput: userInput, SessionID: sessionID})
	if err != nil {
		return "", fmt.Errorf("marshal negotiation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create negotiation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("negotiation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("negotiation API returned %d: %s", resp.StatusCode, string(detail))
	}

	var parsed negotiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode negotiation response: %w", err)
	}
	return parsed.Reply, nil
}
