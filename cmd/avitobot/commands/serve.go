package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkryuchkov/avitobot/pkg/avitobot/auth"
	"github.com/pkryuchkov/avitobot/pkg/avitobot/avito"
	"github.com/pkryuchkov/avitobot/pkg/avitobot/bot"
	"github.com/pkryuchkov/avitobot/pkg/avitobot/intent"
)

// newServeCmd creates the `avitobot serve` command that starts the daemon.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the auto-responder daemon",
		Long: `Start avitobot as a long-running daemon: poll the Avito messenger inbox,
answer new customer messages with a greeting and an intent-based reply.

Examples:
  avitobot serve
  avitobot serve --config ./config.yaml --verbose`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// ── Load config ──
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// ── Configure logger ──
	logger := newLogger(cmd, cfg)

	// ── Resolve secrets (keyring → env → config) ──
	bot.ResolveSecrets(cfg, logger)

	// Missing startup secrets are fatal before the loop starts.
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── Wire components ──
	messenger := avito.New(cfg.Avito.BaseURL, cfg.Avito.UserID, logger)
	authenticator := auth.New(
		cfg.Avito.ClientID,
		cfg.Avito.ClientSecret,
		cfg.Avito.TokenURL,
		cfg.Avito.TokenFile,
		logger,
	)
	classifier := intent.New(cfg.Classifier, templateKeys(cfg.Replies.Templates), logger)
	filter := bot.NewFilter(messenger, cfg.Filter, logger)

	dispatcher, err := bot.NewDispatcher(messenger, classifier, cfg.Replies, cfg.Schedule.PacingDelay, logger)
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	runner := bot.NewRunner(messenger, authenticator, filter, dispatcher, cfg.Schedule, logger)

	// ── Start ──
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("starting runner: %w", err)
	}

	logger.Info("avitobot running. Press Ctrl+C to stop.",
		"user_id", cfg.Avito.UserID,
		"timezone", cfg.Replies.Timezone,
		"poll_interval", cfg.Schedule.PollInterval.String(),
	)

	// ── Wait for shutdown ──
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping...")
	cancel()

	done := make(chan struct{})
	go func() {
		runner.Stop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out after 10s, forcing exit")
	}

	return nil
}

// newLogger builds the process logger from config and the --verbose flag.
func newLogger(cmd *cobra.Command, cfg *bot.Config) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logLevel := slog.LevelInfo
	if verbose || cfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	return slog.New(handler)
}

// resolveConfig loads config from the --config flag or standard locations,
// falling back to defaults when no file exists.
func resolveConfig(cmd *cobra.Command) (*bot.Config, error) {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")

	if configPath != "" {
		cfg, err := bot.LoadConfigFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	if found := bot.FindConfigFile(); found != "" {
		cfg, err := bot.LoadConfigFromFile(found)
		if err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", found, err)
		}
		slog.Info("config loaded", "path", found)
		return cfg, nil
	}

	return bot.DefaultConfig(), nil
}

// templateKeys returns the intent vocabulary in stable order for the
// classifier prompt.
func templateKeys(templates map[string]string) []string {
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
