package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every tunable of the service.
type Config struct {
	Server     ServerConfig
	Negotiator NegotiatorConfig
	Speech     SpeechConfig
	Script     ScriptConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	negotiator, err := loadNegotiatorConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:     server,
		Negotiator: negotiator,
		Speech:     speech,
		Script:     loadScriptConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":3000" or "127.0.0.1:3000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// NegotiatorConfig describes how dialogue replies are produced. When
// RemoteURL is set the remote negotiation API is used; otherwise an Ark
// chat model takes over if its credentials are present.
type NegotiatorConfig struct {
	RemoteURL   string
	Timeout     int
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	MaxTokens   *int
}

// RemoteEnabled reports whether the remote negotiation API is configured.
func (c NegotiatorConfig) RemoteEnabled() bool {
	return c.RemoteURL != ""
}

// ModelEnabled reports whether the Ark model credentials are complete.
func (c NegotiatorConfig) ModelEnabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds an Ark chat model from the configuration.
func (c NegotiatorConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.ModelEnabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL or AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadNegotiatorConfig() (NegotiatorConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return NegotiatorConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return NegotiatorConfig{}, err
	}

	timeout, err := parseOptionalIntEnv("NEGOTIATOR_TIMEOUT")
	if err != nil {
		return NegotiatorConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	return NegotiatorConfig{
		RemoteURL:   strings.TrimSpace(os.Getenv("NEGOTIATOR_API_URL")),
		Timeout:     timeoutSeconds,
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

// SpeechConfig describes the synthesis/transcription providers and the
// tempo transform applied before transport.
type SpeechConfig struct {
	APIKey      string
	BaseURL     string
	TTSModel    string
	STTModel    string
	Voice       string
	TempoFactor float64
	Timeout     int
	FFmpegPath  string
	TempDir     string
	Enabled     bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	tempo, err := parseOptionalFloatEnv("SPEECH_TEMPO_FACTOR")
	if err != nil {
		return SpeechConfig{}, err
	}
	tempoFactor := 1.1
	if tempo != nil {
		tempoFactor = *tempo
	}

	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))

	return SpeechConfig{
		APIKey:      apiKey,
		BaseURL:     getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		TTSModel:    getEnvOrDefault("SPEECH_TTS_MODEL", "tts-1"),
		STTModel:    getEnvOrDefault("SPEECH_STT_MODEL", "whisper-1"),
		Voice:       getEnvOrDefault("SPEECH_TTS_VOICE", "shimmer"),
		TempoFactor: tempoFactor,
		Timeout:     timeoutSeconds,
		FFmpegPath:  getEnvOrDefault("FFMPEG_PATH", "ffmpeg"),
		TempDir:     getEnvOrDefault("SPEECH_TEMP_DIR", os.TempDir()),
		Enabled:     apiKey != "",
	}, nil
}

// ScriptConfig locates the offline conversation script files.
type ScriptConfig struct {
	Dir string
}

func loadScriptConfig() ScriptConfig {
	return ScriptConfig{Dir: getEnvOrDefault("SCRIPT_DIR", "./json")}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
