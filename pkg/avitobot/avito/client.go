// Package avito implements the thin HTTP transport for the Avito messenger
// API: list chats for an account, list messages in a chat, post a text
// message. It is a dumb pipe — eligibility and sequencing logic live in the
// bot package.
package avito

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to the Avito messenger REST API for a single account.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a messenger client for the given account.
func New(baseURL, userID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = "https://api.avito.ru"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &Client{
		baseURL: baseURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With("component", "avito"),
	}
}

// ---------- Wire envelopes ----------

// sendRequest is the body of the post-message endpoint.
type sendRequest struct {
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
	Type string `json:"type"`
}

// ---------- Public methods ----------

// ListChats returns conversation summaries for the account, one page,
// most recently updated first.
func (c *Client) ListChats(ctx context.Context, token string) ([]Chat, error) {
	const op = "list chats"
	url := fmt.Sprintf("%s/messenger/v2/accounts/%s/chats", c.baseURL, c.userID)

	body, err := c.get(ctx, op, url, token)
	if err != nil {
		return nil, err
	}

	raw, err := envelope(op, body, "chats")
	if err != nil {
		return nil, err
	}

	var chats []Chat
	if err := json.Unmarshal(raw, &chats); err != nil {
		return nil, &ProtocolError{Op: op, Detail: fmt.Sprintf("decoding chats: %v", err)}
	}

	c.logger.Debug("chats listed", "count", len(chats))
	return chats, nil
}

// ListMessages returns the first page of a chat's message history,
// newest first.
func (c *Client) ListMessages(ctx context.Context, token, chatID string) ([]Message, error) {
	const op = "list messages"
	url := fmt.Sprintf("%s/messenger/v3/accounts/%s/chats/%s/messages/", c.baseURL, c.userID, chatID)

	body, err := c.get(ctx, op, url, token)
	if err != nil {
		return nil, err
	}

	raw, err := envelope(op, body, "messages")
	if err != nil {
		return nil, err
	}

	var messages []Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, &ProtocolError{Op: op, Detail: fmt.Sprintf("decoding messages: %v", err)}
	}

	c.logger.Debug("messages listed", "chat_id", chatID, "count", len(messages))
	return messages, nil
}

// SendMessage posts a text message to a chat.
func (c *Client) SendMessage(ctx context.Context, token, chatID, text string) error {
	const op = "send message"
	url := fmt.Sprintf("%s/messenger/v1/accounts/%s/chats/%s/messages", c.baseURL, c.userID, chatID)

	var payload sendRequest
	payload.Message.Text = text
	payload.Type = "text"

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return &ProtocolError{Op: op, Detail: fmt.Sprintf("marshaling request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return &ProtocolError{Op: op, Detail: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectionError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProtocolError{Op: op, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	c.logger.Info("message sent", "chat_id", chatID, "length", len(text))
	return nil
}

// ---------- Helpers ----------

// get performs an authenticated GET and returns the raw body.
func (c *Client) get(ctx context.Context, op, url, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ProtocolError{Op: op, Detail: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProtocolError{Op: op, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Op: op, Err: err}
	}
	return body, nil
}

// envelope extracts the expected top-level key from a response body.
// A well-formed body without the key is the authorization failure
// signature and maps to ErrUnauthorized.
func envelope(op string, body []byte, key string) (json.RawMessage, error) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, &ProtocolError{Op: op, Detail: fmt.Sprintf("decoding response: %v", err)}
	}

	raw, ok := wrapper[key]
	if !ok {
		return nil, ErrUnauthorized
	}
	return raw, nil
}
