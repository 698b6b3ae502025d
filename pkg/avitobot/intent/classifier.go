// Package intent implements customer-message intent classification through a
// single call to an OpenAI-compatible chat completions endpoint. The model is
// handed the full vocabulary and told to answer with exactly one keyword; the
// answer is normalized and exact-matched, anything else becomes IntentOther.
package intent

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

// ClassifierError means the language-model backend failed; the caller treats
// it as "no intent reply possible this turn" and never blocks the greeting.
type ClassifierError struct {
	Err error
}

func (e *ClassifierError) Error() string { return fmt.Sprintf("classifier: %v", e.Err) }

func (e *ClassifierError) Unwrap() error { return e.Err }

// Config configures the classifier backend.
type Config struct {
	// BaseURL is the OpenAI-compatible API root.
	BaseURL string `yaml:"base_url"`

	// APIKey authorizes requests. Required at startup.
	APIKey string `yaml:"api_key"`

	// Model is the completion model to use.
	Model string `yaml:"model"`
}

// Classifier maps free text onto the intent vocabulary.
type Classifier struct {
	baseURL    string
	apiKey     string
	model      string
	vocabulary []string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Classifier. vocabulary is the set of answerable intents
// (typically the template table keys); the reserved greeting/other labels are
// always part of the prompt.
func New(cfg Config, vocabulary []string, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &Classifier{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		vocabulary: vocabulary,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger.With("component", "classifier"),
	}
}

// ---------- Wire types (OpenAI-compatible) ----------

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ---------- Public methods ----------

// Classify issues one completion call and returns an intent keyword.
// A confident vocabulary match comes back verbatim; everything else is
// IntentOther. Backend failures return a *ClassifierError.
func (c *Classifier) Classify(ctx context.Context, text string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: c.buildPrompt(text)},
		},
		MaxTokens:   20,
		Temperature: 0.5,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ClassifierError{Err: fmt.Errorf("marshaling request: %w", err)}
	}

	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &ClassifierError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ClassifierError{Err: fmt.Errorf("API request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ClassifierError{Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ClassifierError{Err: fmt.Errorf("API returned %d: %s", resp.StatusCode, truncate(string(respBody), 200))}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", &ClassifierError{Err: fmt.Errorf("parsing response: %w", err)}
	}
	if chatResp.Error != nil {
		return "", &ClassifierError{Err: fmt.Errorf("API error: %s", chatResp.Error.Message)}
	}
	if len(chatResp.Choices) == 0 {
		return "", &ClassifierError{Err: fmt.Errorf("no response from model")}
	}

	raw := chatResp.Choices[0].Message.Content
	label := strings.ToUpper(strings.TrimSpace(raw))

	c.logger.Info("intent classified",
		"intent", label,
		"known", c.known(label),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if !c.known(label) {
		return IntentOther, nil
	}
	return label, nil
}

// buildPrompt embeds the vocabulary plus reserved labels and asks for a
// single keyword, no explanations.
func (c *Classifier) buildPrompt(text string) string {
	labels := strings.Join(append(append([]string{}, c.vocabulary...), IntentGreeting, IntentOther), ", ")
	return fmt.Sprintf(
		"Являясь помощником, оцени следующее сообщение пользователя: '%s'. "+
			"Определи основное намерение из списка: %s. "+
			"Выведи только одно ключевое слово, соответствующее намерению, без объяснений. "+
			"Например: %s.",
		text, labels, IntentVisit,
	)
}

// known reports whether a normalized label belongs to the vocabulary or the
// reserved set.
func (c *Classifier) known(label string) bool {
	if label == IntentGreeting || label == IntentOther {
		return true
	}
	for _, v := range c.vocabulary {
		if label == v {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
