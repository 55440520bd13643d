package negotiate

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/parleylab/negotiation-avatar/internal/config"
)

const negotiatorSystemPrompt = "You are Alex, a hiring manager negotiating a compensation package with a job candidate. " +
	"Stay in character, keep replies conversational, and answer in short plain sentences ending with standard punctuation. " +
	"Push back politely on unreasonable demands and move the negotiation forward one topic at a time."

// historyLimit bounds how many prior turns are replayed into the prompt.
const historyLimit = 10

// ModelNegotiator implements Provider with a local chat-model chain. Each
// session keeps its own transcript so the model sees the negotiation so far.
type ModelNegotiator struct {
	chain compose.Runnable[map[string]any, *schema.Message]

	mu      sync.Mutex
	history map[string][]*schema.Message
}

// NewModelNegotiator compiles the prompt chain against the configured
// Ark chat model.
func NewModelNegotiator(ctx context.Context, cfg config.NegotiatorConfig) (*ModelNegotiator, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile negotiation chain: %w", err)
	}

	return &ModelNegotiator{
		chain:   runnable,
		history: make(map[string][]*schema.Message),
	}, nil
}

// Negotiate generates the agent reply and records both turns in the
// session transcript.
func (m *ModelNegotiator) Negotiate(ctx context.Context, sessionID, userInput string) (string, error) {
	input := map[string]any{
		"system":  negotiatorSystemPrompt,
		"history": m.recentHistory(sessionID),
		"query":   userInput,
	}

	response, err := m.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	m.record(sessionID, userInput, response.Content)
	log.Printf("[negotiate] model reply for session=%s length=%d", sessionID, len(response.Content))
	return response.Content, nil
}

func (m *ModelNegotiator) recentHistory(sessionID string) []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := m.history[sessionID]
	if len(messages) > historyLimit {
		messages = messages[len(messages)-historyLimit:]
	}
	return append([]*schema.Message(nil), messages...)
}

func (m *ModelNegotiator) record(sessionID, userInput, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history[sessionID] = append(m.history[sessionID],
		schema.UserMessage(userInput),
		schema.AssistantMessage(reply, nil),
	)
}
