package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/parleylab/negotiation-avatar/internal/config"
)

// OpenAITTSClient implements Synthesizer against the OpenAI speech API.
type OpenAITTSClient struct {
	config config.SpeechConfig
	client *http.Client
}

// NewOpenAITTSClient creates an OpenAI TTS client.
func NewOpenAITTSClient(cfg config.SpeechConfig) *OpenAITTSClient {
	return &OpenAITTSClient{
		config: cfg,
		client: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}
}

type openAITTSRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// Synthesize requests WAV audio for the given text and voice.
func (c *OpenAITTSClient) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("speech API key not configured")
	}
	if text == "" {
		return nil, fmt.Errorf("synthesis text is empty")
	}

	voice := voiceID
	if voice == "" {
		voice = c.config.Voice
	}

	payload, err := json.Marshal(openAITTSRequest{
		Model:          c.config.TTSModel,
		Input:          text,
		Voice:          voice,
		ResponseFormat: "wav",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create tts request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tts provider returned %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}
	return audio, nil
}
