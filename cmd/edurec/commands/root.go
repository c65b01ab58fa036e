// Package commands defines all Cobra CLI commands for the edurec binary.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/54b3r/edurec-go/internal/audit"
	"github.com/54b3r/edurec-go/internal/config"
	"github.com/54b3r/edurec-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// envFile holds the --env-file flag value.
var envFile string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "edurec",
		Short: "edurec: personalised learning-content recommendations",
		Long: `edurec recommends the next three pieces of learning content for a learner.

Each request embeds the content catalogue and the learner profile, retrieves
the closest unviewed items by cosine similarity, and re-ranks them with a chat
model. Without a model credential, or whenever the model call fails, a
deterministic rule-based ranking is used instead.

Providers are selected via environment variables (MODEL_PROVIDER,
EMBEDDING_PROVIDER), a .env file, or a YAML config file
(~/.edurec/config.yaml). Environment variables always win.
See 'edurec --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := config.LoadDotEnv(envFile, slog.New(slog.DiscardHandler)); err != nil {
				return err
			}

			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.edurec/config.yaml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a dotenv file (default: ./.env if present)")

	root.AddCommand(
		NewServeCmd(),
		NewRecommendCmd(),
		NewCatalogCmd(),
		NewVersionCmd(),
	)

	return root
}
