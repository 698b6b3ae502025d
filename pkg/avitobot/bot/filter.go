// Package bot – filter.go decides, for one chat summary, whether an automated
// reply sequence should start now. Checks run cheapest first and short-circuit
// on the first failure; the message history is only fetched after the free
// checks pass.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkryuchkov/avitobot/pkg/avitobot/avito"
)

// Rejection reasons, for logs and tests.
const (
	ReasonEligible           = "eligible"
	ReasonPlatformAuthor     = "platform_author"
	ReasonStale              = "stale"
	ReasonHistoryUnavailable = "history_unavailable"
	ReasonBusinessSpokeLast  = "business_spoke_last"
	ReasonRecentOutgoing     = "recent_outgoing"
)

// Verdict is the result of one eligibility check. History carries the fetched
// message history (newest first) when the check got that far.
type Verdict struct {
	Eligible bool
	Reason   string
	History  []avito.Message
}

// Filter applies the eligibility rules to chat summaries.
type Filter struct {
	messenger     Messenger
	maxSignalAge  time.Duration
	replyCooldown time.Duration

	// now is injectable for tests.
	now func() time.Time

	logger *slog.Logger
}

// NewFilter creates a Filter with the given thresholds.
func NewFilter(m Messenger, cfg FilterConfig, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Filter{
		messenger:     m,
		maxSignalAge:  cfg.MaxSignalAge,
		replyCooldown: cfg.ReplyCooldown,
		now:           time.Now,
		logger:        logger.With("component", "filter"),
	}
}

// Check runs the ordered eligibility checks for one chat:
//
//  1. The last message must come from a customer, not the platform.
//  2. The chat must have been updated within the signal-age window.
//  3. The message history must be fetchable and non-empty.
//  4. The newest message must be incoming (the customer spoke last).
//  5. No outgoing message may exist within the reply cooldown.
//
// Check never sends anything and is idempotent on an unchanged snapshot.
func (f *Filter) Check(ctx context.Context, token string, chat avito.Chat) Verdict {
	log := f.logger.With("chat_id", chat.ID)

	if chat.LastMessage.AuthorID == avito.PlatformAuthorID {
		log.Debug("skipping: last message authored by the platform")
		return Verdict{Reason: ReasonPlatformAuthor}
	}

	now := f.now()
	age := now.Unix() - chat.Updated
	if age > int64(f.maxSignalAge.Seconds()) {
		log.Debug("skipping: inbound signal is stale", "age_seconds", age)
		return Verdict{Reason: ReasonStale}
	}

	history, err := f.messenger.ListMessages(ctx, token, chat.ID)
	if err != nil {
		log.Warn("skipping: could not fetch message history", "error", err)
		return Verdict{Reason: ReasonHistoryUnavailable}
	}
	if len(history) == 0 {
		log.Warn("skipping: empty message history")
		return Verdict{Reason: ReasonHistoryUnavailable}
	}

	if history[0].Direction == avito.DirectionOut {
		log.Debug("skipping: the business spoke last")
		return Verdict{Reason: ReasonBusinessSpokeLast, History: history}
	}

	// First outgoing entry from the top is the most recent one; the history
	// is newest first.
	var lastOutgoing int64
	for _, msg := range history {
		if msg.Direction == avito.DirectionOut {
			lastOutgoing = msg.Created
			break
		}
	}
	if lastOutgoing != 0 && now.Unix()-lastOutgoing < int64(f.replyCooldown.Seconds()) {
		log.Debug("skipping: a reply was already sent recently",
			"seconds_since_outgoing", now.Unix()-lastOutgoing)
		return Verdict{Reason: ReasonRecentOutgoing, History: history}
	}

	log.Info("chat needs a reply", "age_seconds", age)
	return Verdict{Eligible: true, Reason: ReasonEligible, History: history}
}
