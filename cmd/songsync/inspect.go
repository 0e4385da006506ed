package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-song-sync/pkg/songsync"
)

func NewInspectCommand() *cobra.Command {
	var omitCover bool

	cmd := &cobra.Command{
		Use:   "inspect <audio-file>",
		Short: "Print the tags that would be sent for a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := songsync.MediaType(filepath.Base(path)); err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}

			md, err := songsync.NewTagExtractor().Extract(cmd.Context(), f, info.Size(), filepath.Base(path))
			if err != nil {
				return err
			}
			if omitCover && md.Cover != nil {
				md.Cover.Data = fmt.Sprintf("<%d base64 chars>", len(md.Cover.Data))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(md)
		},
	}

	cmd.Flags().BoolVar(&omitCover, "omit-cover", false, "replace cover data with its length")
	return cmd
}
