// Package bot contains the decision core of the auto-responder: which
// conversations get an automated reply this cycle (Filter), how the two-step
// reply is sequenced (Dispatcher) and the timer-driven loop that ties them
// together (Runner). The bot package only talks to the outside world through
// the small interfaces below, so every piece is testable with fakes.
package bot

import (
	"context"

	"github.com/pkryuchkov/avitobot/pkg/avitobot/avito"
)

// Messenger is the transport capability: the three inbox operations against
// the messaging platform. Implemented by *avito.Client.
type Messenger interface {
	ListChats(ctx context.Context, token string) ([]avito.Chat, error)
	ListMessages(ctx context.Context, token, chatID string) ([]avito.Message, error)
	SendMessage(ctx context.Context, token, chatID, text string) error
}

// IntentClassifier maps a customer message onto the intent vocabulary.
// Implemented by *intent.Classifier.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// TokenSource is the authenticator capability: produce a valid bearer token,
// or force a fresh one when the platform rejects the current token.
// Implemented by *auth.Authenticator.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	ForceRefresh(ctx context.Context) (string, error)
}
