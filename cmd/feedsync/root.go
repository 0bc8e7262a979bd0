package main

import (
	"strings"

	"feedsync/internal/config"
	"feedsync/internal/logger"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "feedsync.yaml"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "feedsync",
		Short:         "Import new feed items and events into a static site",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "Configuration file path (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format override (text, json, auto)")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newManifestCommand(opts))

	return rootCmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.LoadConfig(strings.TrimSpace(o.configPath))
}

// logger builds the command logger. Flags win over the config file.
func (o *rootOptions) logger(cmd *cobra.Command, cfg *config.Config) *logger.Logger {
	format := cfg.Logging.Format
	if o.logFormat != "" {
		format = o.logFormat
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.Logging.Level, format)
	if o.logLevel != "" {
		log.SetLevel(o.logLevel)
	}

	return log
}
