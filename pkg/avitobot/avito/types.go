// Package avito – types.go defines the wire types returned by the Avito
// messenger API. Only the fields the bot actually inspects are mapped.
package avito

// Message directions as reported by the messenger API.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// PlatformAuthorID marks messages authored by Avito itself (system
// notifications, delivery updates). Chats whose last message carries this
// author are never answered.
const PlatformAuthorID = 0

// Chat is a conversation summary from the chat list endpoint.
// It is an immutable snapshot used for a single eligibility decision.
type Chat struct {
	ID          string      `json:"id"`
	Updated     int64       `json:"updated"`
	LastMessage LastMessage `json:"last_message"`
}

// LastMessage is the newest message embedded in a chat summary.
type LastMessage struct {
	AuthorID int64          `json:"author_id"`
	Content  MessageContent `json:"content"`
}

// Message is a single entry of a chat's message history.
// Histories are returned newest first.
type Message struct {
	Direction string         `json:"direction"`
	Created   int64          `json:"created"`
	Content   MessageContent `json:"content"`
}

// MessageContent holds the text payload of a message.
type MessageContent struct {
	Text string `json:"text"`
}
