package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/parleylab/negotiation-avatar/internal/config"
)

// WhisperClient implements Transcriber against the OpenAI transcription
// API with word-level timestamp granularity.
type WhisperClient struct {
	config config.SpeechConfig
	client *http.Client
}

// NewWhisperClient creates a transcription client.
func NewWhisperClient(cfg config.SpeechConfig) *WhisperClient {
	return &WhisperClient{
		config: cfg,
		client: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}
}

type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperResponse struct {
	Text  string        `json:"text"`
	Words []whisperWord `json:"words"`
}

// Transcribe submits the audio and returns per-word timings. Audio is
// uploaded as a WAV attachment; the provider infers the codec from it.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) ([]WordTiming, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("speech API key not configured")
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("transcription audio is empty")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", "speech.wav")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("write audio payload: %w", err)
	}

	fields := map[string]string{
		"model":           c.config.STTModel,
		"response_format": "verbose_json",
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", key, err)
		}
	}
	for _, granularity := range []string{"word", "segment"} {
		if err := form.WriteField("timestamp_granularities[]", granularity); err != nil {
			return nil, fmt.Errorf("write granularity field: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("create transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("transcription provider returned %d: %s", resp.StatusCode, string(detail))
	}

	var parsed whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}

	timings := make([]WordTiming, 0, len(parsed.Words))
	for _, w := range parsed.Words {
		timings = append(timings, WordTiming{
			Word:     w.Word,
			StartSec: w.Start,
			EndSec:   w.End,
		})
	}
	return timings, nil
}
