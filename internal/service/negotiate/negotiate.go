// Package negotiate produces the agent's dialogue replies, either from the
// remote negotiation API or from a local chat-model chain.
package negotiate

import (
	"context"
	"errors"
)

// ErrUpstreamUnavailable marks a reply failure that aborts the whole turn
// before any chunk is streamed.
var ErrUpstreamUnavailable = errors.New("negotiation provider unavailable")

// Provider generates one agent reply for the user's input within a session.
type Provider interface {
	Negotiate(ctx context.Context, sessionID, userInput string) (string, error)
}
