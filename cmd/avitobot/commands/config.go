package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pkryuchkov/avitobot/pkg/avitobot/bot"
)

// newConfigCmd creates the `avitobot config` command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration and secrets",
	}

	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigShowCmd(),
		newConfigSetSecretCmd(),
	)
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			const path = "config.yaml"
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", path)
			}
			if err := bot.SaveConfigToFile(bot.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Printf("Wrote %s. Fill in avito.user_id and avito.client_id,\n", path)
			fmt.Println("then store secrets with: avitobot config set-secret")
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			// Never print resolved secrets.
			redacted := *cfg
			if redacted.Avito.ClientSecret != "" {
				redacted.Avito.ClientSecret = "(set)"
			}
			if redacted.Classifier.APIKey != "" {
				redacted.Classifier.APIKey = "(set)"
			}

			out, err := yaml.Marshal(&redacted)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}

func newConfigSetSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-secret <name> <value>",
		Short: "Store a secret in the OS keyring",
		Long: fmt.Sprintf(`Store a secret in the operating system keyring so it never sits in
config.yaml. Known names: %s, %s.`, bot.KeyClientSecret, bot.KeyClassifierAPIKey),
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			name, value := args[0], args[1]
			if name != bot.KeyClientSecret && name != bot.KeyClassifierAPIKey {
				return fmt.Errorf("unknown secret %q", name)
			}
			if err := bot.StoreKeyring(name, value); err != nil {
				return fmt.Errorf("storing secret: %w", err)
			}
			fmt.Printf("Secret %s stored in the OS keyring.\n", name)
			return nil
		},
	}
}
