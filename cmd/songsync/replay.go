package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-song-sync/pkg/songsync"
	"github.com/tendant/simple-song-sync/pkg/songsync/config"
	"github.com/tendant/simple-song-sync/pkg/songsync/library"
)

func NewReplayCommand(opts *rootOptions) *cobra.Command {
	var dryRun bool
	var storageDir string

	cmd := &cobra.Command{
		Use:   "replay <event.json>",
		Short: "Run a saved notification through the pipeline",
		Long: `Replay reads an S3 or MinIO notification from a file and handles it once.

With --dry-run the library request is logged instead of sent. With
--storage-dir objects are read from <dir>/<bucket>/<key> instead of S3.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read event: %w", err)
			}
			event, err := songsync.ParseEvent(data)
			if err != nil {
				return err
			}

			var overrides []config.Option
			if storageDir != "" {
				overrides = append(overrides, config.WithFilesystemStorage(storageDir))
			}
			cfg, logger, err := loadConfig(cmd, opts, overrides...)
			if err != nil {
				return err
			}

			var extra []songsync.Option
			if dryRun {
				extra = append(extra, songsync.WithNotifier(library.NewLoggingNotifier(logger, cfg.Library.AppKey)))
			}
			handler, err := cfg.BuildHandler(cmd.Context(), logger, nil, extra...)
			if err != nil {
				return err
			}

			msg, err := handler.HandleEvent(cmd.Context(), event)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log the library request instead of sending it")
	cmd.Flags().StringVar(&storageDir, "storage-dir", "", "read objects from a local directory")
	return cmd
}
