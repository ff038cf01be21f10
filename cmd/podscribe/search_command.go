package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"podscribe/internal/itunes"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search the podcast directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			client := itunes.New(cfg)
			podcasts, err := client.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(podcasts))
			for _, podcast := range podcasts {
				rows = append(rows, []string{
					strconv.FormatInt(podcast.CollectionID, 10),
					podcast.CollectionName,
					podcast.ArtistName,
					podcast.FeedURL,
				})
			}
			writeTable(cmd.OutOrStdout(),
				[]string{"Collection ID", "Name", "Artist", "Feed"}, rows)
			return nil
		},
	}
}
