package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tendant/simple-song-sync/internal/logging"
	"github.com/tendant/simple-song-sync/pkg/songsync/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configFile string
	envFile    string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "songsync",
		Short: "Keep a Koel library in sync with an audio bucket",
		Long: `songsync reacts to S3 and MinIO object notifications for audio files.

Created objects are downloaded, their tags, duration, cover art and lyrics are
read, and the result is posted to the library. Removed objects are deleted
from the library.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load %s: %w", opts.envFile, err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (optional)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded when present")

	rootCmd.AddCommand(NewLambdaCommand(opts))
	rootCmd.AddCommand(NewServeCommand(opts))
	rootCmd.AddCommand(NewReplayCommand(opts))
	rootCmd.AddCommand(NewInspectCommand())
	rootCmd.AddCommand(NewConfigCommand(opts))

	return rootCmd
}

// loadConfig reads file and environment configuration, applies overrides and
// installs the configured logger as the slog default.
func loadConfig(cmd *cobra.Command, opts *rootOptions, overrides ...config.Option) (*config.Config, *slog.Logger, error) {
	options := append([]config.Option{config.WithFile(opts.configFile), config.WithEnv()}, overrides...)
	cfg, err := config.Load(options...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}
