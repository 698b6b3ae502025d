package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/pkryuchkov/avitobot/pkg/avitobot/avito"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentMsg struct {
	ChatID string
	Text   string
}

// fakeMessenger is an in-memory Messenger recording every interaction.
type fakeMessenger struct {
	mu sync.Mutex

	chats []avito.Chat
	// listChatsErrs is consumed one entry per call; a nil entry means
	// success. When exhausted, calls succeed.
	listChatsErrs []error

	history         []avito.Message
	listMessagesErr error

	// sendErrChatID makes SendMessage fail for that chat only.
	sendErrChatID string

	listChatsCalls    int
	listChatsTokens   []string
	listMessagesCalls int
	sent              []sentMsg
}

func (m *fakeMessenger) ListChats(_ context.Context, token string) ([]avito.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listChatsCalls++
	m.listChatsTokens = append(m.listChatsTokens, token)

	if len(m.listChatsErrs) > 0 {
		err := m.listChatsErrs[0]
		m.listChatsErrs = m.listChatsErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return m.chats, nil
}

func (m *fakeMessenger) ListMessages(_ context.Context, _, _ string) ([]avito.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listMessagesCalls++
	if m.listMessagesErr != nil {
		return nil, m.listMessagesErr
	}
	return m.history, nil
}

func (m *fakeMessenger) SendMessage(_ context.Context, _ string, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErrChatID != "" && chatID == m.sendErrChatID {
		return errors.New("send failed")
	}
	m.sent = append(m.sent, sentMsg{ChatID: chatID, Text: text})
	return nil
}

func (m *fakeMessenger) sentTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	texts := make([]string, len(m.sent))
	for i, s := range m.sent {
		texts[i] = s.Text
	}
	return texts
}

// fakeTokens is an in-memory TokenSource.
type fakeTokens struct {
	mu sync.Mutex

	token        string
	refreshed    string
	refreshErr   error
	refreshCalls int
}

func (f *fakeTokens) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeTokens) ForceRefresh(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.refreshCalls++
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return f.refreshed, nil
}

// fakeClassifier returns a fixed label or error.
type fakeClassifier struct {
	label string
	err   error
	calls int
	last  string
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (string, error) {
	f.calls++
	f.last = text
	if f.err != nil {
		return "", f.err
	}
	return f.label, nil
}
