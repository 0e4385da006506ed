package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tendant/simple-song-sync/pkg/songsync/config"
)

func NewConfigCommand(opts *rootOptions) *cobra.Command {
	var envHelp bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envHelp {
				desc, err := config.EnvDescription()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), desc)
				return nil
			}

			cfg, _, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&envHelp, "env", false, "list supported environment variables")
	return cmd
}
