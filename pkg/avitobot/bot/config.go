// Package bot – config.go defines all configuration for the auto-responder.
package bot

import (
	"fmt"
	"time"

	"github.com/pkryuchkov/avitobot/pkg/avitobot/intent"
)

// ConfigError means a required startup value is missing. Fatal: the process
// exits before entering the poll loop.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: missing required value %q", e.Field)
}

// Config holds all responder configuration.
type Config struct {
	// Avito configures the messenger account and identity provider.
	Avito AvitoConfig `yaml:"avito"`

	// Classifier configures the intent classification backend.
	Classifier intent.Config `yaml:"classifier"`

	// Replies configures greetings, templates and the working window.
	Replies RepliesConfig `yaml:"replies"`

	// Filter configures the eligibility thresholds.
	Filter FilterConfig `yaml:"filter"`

	// Schedule configures the poll and token-renewal timers.
	Schedule ScheduleConfig `yaml:"schedule"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// AvitoConfig holds the messenger account and OAuth settings.
type AvitoConfig struct {
	// BaseURL is the messenger API root.
	BaseURL string `yaml:"base_url"`

	// TokenURL is the identity provider token endpoint.
	TokenURL string `yaml:"token_url"`

	// UserID is the Avito account identifier.
	UserID string `yaml:"user_id"`

	// ClientID for the client-credentials grant.
	ClientID string `yaml:"client_id"`

	// ClientSecret for the client-credentials grant.
	// Resolved via keyring → env → config; avoid plaintext here.
	ClientSecret string `yaml:"client_secret"`

	// TokenFile is where the current bearer token is persisted.
	TokenFile string `yaml:"token_file"`
}

// RepliesConfig configures what gets sent and when.
type RepliesConfig struct {
	// Timezone is the reference time zone for the working window.
	Timezone string `yaml:"timezone"`

	// WorkStart and WorkEnd bound the working window ("HH:MM", both
	// inclusive). Inside the window customers get Greeting, outside
	// GreetingOffHours.
	WorkStart string `yaml:"work_start"`
	WorkEnd   string `yaml:"work_end"`

	// Greeting is sent first to every eligible conversation during
	// working hours.
	Greeting string `yaml:"greeting"`

	// GreetingOffHours replaces Greeting outside the working window.
	GreetingOffHours string `yaml:"greeting_off_hours"`

	// Templates maps intent keywords to canned replies.
	Templates map[string]string `yaml:"templates"`

	// EscalateUnrecognized, when true, sends EscalationMessage after an
	// unrecognized intent or a classifier failure. Off in production:
	// a silent miss beats a false reply.
	EscalateUnrecognized bool `yaml:"escalate_unrecognized"`

	// EscalationMessage is the "calling a human" fallback text.
	EscalationMessage string `yaml:"escalation_message"`
}

// FilterConfig configures the eligibility thresholds.
type FilterConfig struct {
	// MaxSignalAge rejects conversations whose last update is older than
	// this. The inbound signal is considered stale.
	MaxSignalAge time.Duration `yaml:"max_signal_age"`

	// ReplyCooldown suppresses a new reply sequence when any outgoing
	// message exists within this window.
	ReplyCooldown time.Duration `yaml:"reply_cooldown"`
}

// ScheduleConfig configures the two runner timers and the pacing delay.
type ScheduleConfig struct {
	// PollInterval is the time between poll cycles.
	PollInterval time.Duration `yaml:"poll_interval"`

	// TokenRefreshInterval is the proactive credential renewal period.
	TokenRefreshInterval time.Duration `yaml:"token_refresh_interval"`

	// PacingDelay is the wait between the greeting and the intent reply.
	// An anti-spam pacing constraint, not a correctness requirement.
	PacingDelay time.Duration `yaml:"pacing_delay"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is the log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the log format ("json", "text").
	Format string `yaml:"format"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Avito: AvitoConfig{
			BaseURL:   "https://api.avito.ru",
			TokenURL:  "https://api.avito.ru/token",
			TokenFile: "token.yml",
		},
		Classifier: intent.Config{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Replies: RepliesConfig{
			Timezone:             "Europe/Moscow",
			WorkStart:            "09:00",
			WorkEnd:              "20:00",
			Greeting:             intent.GreetingMessage,
			GreetingOffHours:     intent.GreetingOffHoursMessage,
			Templates:            intent.DefaultTemplates(),
			EscalateUnrecognized: false,
			EscalationMessage:    intent.CantAnswerMessage,
		},
		Filter: FilterConfig{
			MaxSignalAge:  180 * time.Second,
			ReplyCooldown: 3 * time.Hour,
		},
		Schedule: ScheduleConfig{
			PollInterval:         20 * time.Second,
			TokenRefreshInterval: 12 * time.Hour,
			PacingDelay:          2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the values the responder cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.Avito.UserID == "":
		return &ConfigError{Field: "avito.user_id"}
	case c.Avito.ClientID == "":
		return &ConfigError{Field: "avito.client_id"}
	case c.Avito.ClientSecret == "":
		return &ConfigError{Field: "avito.client_secret"}
	case c.Classifier.APIKey == "":
		return &ConfigError{Field: "classifier.api_key"}
	}
	return nil
}
