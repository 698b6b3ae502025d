// Package bot – runner.go drives the poll loop: two cron timers (poll cycle
// and proactive token renewal), one cycle at a time, every failure caught at
// the cycle boundary so the process never dies from inside the loop.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/pkryuchkov/avitobot/pkg/avitobot/avito"
)

// Runner owns the periodic poll-filter-dispatch loop.
type Runner struct {
	messenger  Messenger
	tokens     TokenSource
	filter     *Filter
	dispatcher *Dispatcher

	pollInterval    time.Duration
	refreshInterval time.Duration

	cron *cron.Cron

	// cycleMu guarantees cycles never overlap: if a cycle outlasts the poll
	// interval the next tick is skipped, not queued.
	cycleMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger
}

// NewRunner wires the loop together.
func NewRunner(m Messenger, tokens TokenSource, filter *Filter, dispatcher *Dispatcher, cfg ScheduleConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		messenger:       m,
		tokens:          tokens,
		filter:          filter,
		dispatcher:      dispatcher,
		pollInterval:    cfg.PollInterval,
		refreshInterval: cfg.TokenRefreshInterval,
		cron:            cron.New(),
		logger:          logger.With("component", "runner"),
	}
}

// Start registers the timers and runs the first poll cycle immediately.
func (r *Runner) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	if _, err := r.cron.AddFunc("@every "+r.pollInterval.String(), func() {
		r.runCycle(r.ctx)
	}); err != nil {
		return err
	}

	if _, err := r.cron.AddFunc("@every "+r.refreshInterval.String(), func() {
		r.renewToken(r.ctx)
	}); err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Info("runner started",
		"poll_interval", r.pollInterval.String(),
		"refresh_interval", r.refreshInterval.String(),
	)

	// Do not wait a full poll interval for the first cycle.
	go r.runCycle(r.ctx)
	return nil
}

// Stop halts the timers and waits for an in-flight cycle to finish.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()

	// Taking the cycle lock means no cycle is in flight.
	r.cycleMu.Lock()
	defer r.cycleMu.Unlock()
	r.logger.Info("runner stopped")
}

// renewToken is the proactive 12-hour credential refresh.
func (r *Runner) renewToken(ctx context.Context) {
	if _, err := r.tokens.ForceRefresh(ctx); err != nil {
		r.logger.Error("proactive token refresh failed", "error", err)
	}
}

// runCycle executes one poll-filter-dispatch cycle. Every error is caught
// here; a failed cycle just waits for the next tick.
func (r *Runner) runCycle(ctx context.Context) {
	if !r.cycleMu.TryLock() {
		r.logger.Warn("previous cycle still running, skipping tick")
		return
	}
	defer r.cycleMu.Unlock()

	log := r.logger.With("cycle_id", uuid.NewString()[:8])

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("cycle panicked", "panic", rec)
		}
	}()

	token, err := r.tokens.Token(ctx)
	if err != nil {
		log.Error("no credential, skipping cycle", "error", err)
		return
	}

	chats, token, err := r.listChats(ctx, log, token)
	if err != nil {
		log.Error("could not list chats", "error", err)
		return
	}
	if len(chats) == 0 {
		log.Debug("no chats this cycle")
		return
	}
	log.Info("cycle started", "chats", len(chats))

	dispatched := 0
	for _, chat := range chats {
		if ctx.Err() != nil {
			log.Info("cycle interrupted", "dispatched", dispatched)
			return
		}

		verdict := r.filter.Check(ctx, token, chat)
		if !verdict.Eligible {
			continue
		}

		if err := r.dispatcher.Reply(ctx, token, chat); err != nil {
			// Conversation-level failure; the rest of the cycle proceeds.
			log.Error("reply sequence failed", "chat_id", chat.ID, "error", err)
			continue
		}
		dispatched++
	}

	log.Info("cycle finished", "dispatched", dispatched)
}

// listChats fetches the chat list, forcing a token refresh and retrying
// exactly once when the response carries the authorization failure signature.
// Returns the token that produced the successful response.
func (r *Runner) listChats(ctx context.Context, log *slog.Logger, token string) ([]avito.Chat, string, error) {
	chats, err := r.messenger.ListChats(ctx, token)
	if err == nil {
		return chats, token, nil
	}
	if !errors.Is(err, avito.ErrUnauthorized) {
		return nil, token, err
	}

	log.Warn("chat list rejected the token, refreshing and retrying once")
	fresh, err := r.tokens.ForceRefresh(ctx)
	if err != nil {
		return nil, token, err
	}

	chats, err = r.messenger.ListChats(ctx, fresh)
	if err != nil {
		return nil, fresh, err
	}
	return chats, fresh, nil
}
