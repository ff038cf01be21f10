package main

import (
	"github.com/spf13/cobra"

	"podscribe/internal/store"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect the podcast library",
	}
	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	return libraryCmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List library podcasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			items, err := st.ListLibraryItems(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.CollectionID,
					item.Name,
					item.Artist,
					item.FeedURL,
				})
			}
			writeTable(cmd.OutOrStdout(),
				[]string{"Collection ID", "Name", "Artist", "Feed"}, rows)
			return nil
		},
	}
}
