// Package bot – dispatch.go sequences the two-step reply for an eligible
// conversation: greeting first (working-hours or off-hours variant), a pacing
// delay, then the intent-based reply if the classified intent maps to a
// template.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkryuchkov/avitobot/pkg/avitobot/avito"
	"github.com/pkryuchkov/avitobot/pkg/avitobot/intent"
)

// Dispatcher sends the automated reply sequence to eligible conversations.
type Dispatcher struct {
	messenger  Messenger
	classifier IntentClassifier

	greeting         string
	greetingOffHours string
	templates        map[string]string
	escalate         bool
	escalationMsg    string

	location  *time.Location
	workStart int // seconds since local midnight, inclusive
	workEnd   int // seconds since local midnight, inclusive

	// pacing is the anti-spam delay between the greeting and the intent
	// reply. Not a correctness requirement.
	pacing time.Duration

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher from the replies configuration.
func NewDispatcher(m Messenger, cl IntentClassifier, cfg RepliesConfig, pacing time.Duration, logger *slog.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}

	start, err := parseClock(cfg.WorkStart)
	if err != nil {
		return nil, fmt.Errorf("parsing work_start: %w", err)
	}
	end, err := parseClock(cfg.WorkEnd)
	if err != nil {
		return nil, fmt.Errorf("parsing work_end: %w", err)
	}

	return &Dispatcher{
		messenger:        m,
		classifier:       cl,
		greeting:         cfg.Greeting,
		greetingOffHours: cfg.GreetingOffHours,
		templates:        cfg.Templates,
		escalate:         cfg.EscalateUnrecognized,
		escalationMsg:    cfg.EscalationMessage,
		location:         loc,
		workStart:        start,
		workEnd:          end,
		pacing:           pacing,
		now:              time.Now,
		sleep:            ctxSleep,
		logger:           logger.With("component", "dispatcher"),
	}, nil
}

// Reply runs the full reply sequence for one eligible chat. The greeting
// always goes out first; a classifier failure or an unmapped intent only
// suppresses the second message (or swaps in the escalation fallback when
// enabled). Returns an error only when a send or fetch fails — the runner
// logs it and moves on to the next conversation.
func (d *Dispatcher) Reply(ctx context.Context, token string, chat avito.Chat) error {
	log := d.logger.With("chat_id", chat.ID)

	greeting := d.greeting
	if !d.withinWorkingWindow(d.now()) {
		greeting = d.greetingOffHours
	}
	if err := d.messenger.SendMessage(ctx, token, chat.ID, greeting); err != nil {
		return fmt.Errorf("sending greeting: %w", err)
	}
	log.Info("greeting sent")

	if err := d.sleep(ctx, d.pacing); err != nil {
		return err
	}

	// Re-fetch instead of reusing the eligibility snapshot: the customer may
	// have written more during the pacing delay, and the newest message is
	// the one worth classifying.
	history, err := d.messenger.ListMessages(ctx, token, chat.ID)
	if err != nil {
		return fmt.Errorf("fetching latest message: %w", err)
	}
	if len(history) == 0 {
		return fmt.Errorf("fetching latest message: empty history")
	}

	label, err := d.classifier.Classify(ctx, history[0].Content.Text)
	if err != nil {
		log.Warn("classification failed, no intent reply", "error", err)
		return d.maybeEscalate(ctx, token, chat.ID, log)
	}

	template, ok := d.templates[label]
	if !ok {
		log.Info("no template for intent, no intent reply", "intent", label)
		return d.maybeEscalate(ctx, token, chat.ID, log)
	}

	if err := d.messenger.SendMessage(ctx, token, chat.ID, template); err != nil {
		return fmt.Errorf("sending intent reply: %w", err)
	}
	log.Info("intent reply sent", "intent", label)
	return nil
}

// maybeEscalate sends the "calling a human" fallback when enabled.
// Intent ПРИВЕТСТВИЕ and ДРУГОЕ both land here via the template miss.
func (d *Dispatcher) maybeEscalate(ctx context.Context, token, chatID string, log *slog.Logger) error {
	if !d.escalate {
		return nil
	}
	if err := d.messenger.SendMessage(ctx, token, chatID, d.escalationMsg); err != nil {
		return fmt.Errorf("sending escalation message: %w", err)
	}
	log.Info("escalation message sent", "intent", intent.IntentOther)
	return nil
}

// withinWorkingWindow reports whether t falls inside the configured working
// window, both bounds inclusive, at second precision in the reference zone.
func (d *Dispatcher) withinWorkingWindow(t time.Time) bool {
	local := t.In(d.location)
	secs := local.Hour()*3600 + local.Minute()*60 + local.Second()
	return secs >= d.workStart && secs <= d.workEnd
}

// parseClock converts "HH:MM" to seconds since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*3600 + t.Minute()*60, nil
}

// ctxSleep waits for d or until the context is cancelled.
func ctxSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
