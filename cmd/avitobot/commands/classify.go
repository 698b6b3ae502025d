package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkryuchkov/avitobot/pkg/avitobot/bot"
	"github.com/pkryuchkov/avitobot/pkg/avitobot/intent"
)

// newClassifyCmd creates the `avitobot classify` command: a one-shot intent
// classification for smoke-testing the vocabulary and templates without
// touching the messenger.
func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <message>",
		Short: "Classify a message and print the reply template",
		Long: `Run the intent classifier on a single message and print the detected
intent plus the template that would be sent.

Examples:
  avitobot classify "Сколько стоит этот фикус?"
  avitobot classify "А когда можно приехать посмотреть?"`,
		Args: cobra.ExactArgs(1),
		RunE: runClassify,
	}
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	bot.ResolveSecrets(cfg, logger)

	if cfg.Classifier.APIKey == "" {
		return &bot.ConfigError{Field: "classifier.api_key"}
	}

	classifier := intent.New(cfg.Classifier, templateKeys(cfg.Replies.Templates), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	label, err := classifier.Classify(ctx, args[0])
	if err != nil {
		return fmt.Errorf("classifying: %w", err)
	}

	fmt.Printf("Intent: %s\n", label)
	if template, ok := cfg.Replies.Templates[label]; ok {
		fmt.Printf("Reply:\n%s\n", template)
	} else {
		fmt.Println("Reply: (none — no template for this intent)")
	}
	return nil
}
