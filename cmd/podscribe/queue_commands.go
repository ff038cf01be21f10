package main

import (
	"time"

	"github.com/spf13/cobra"

	"podscribe/internal/store"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the transcription queue",
	}
	queueCmd.AddCommand(newQueueListCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued episodes across all sessions",
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

			items, err := st.AllQueueItems(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				created := ""
				if !item.CreatedAt.IsZero() {
					created = item.CreatedAt.Local().Format(time.RFC3339)
				}
				rows = append(rows, []string{
					item.SessionID,
					item.EpisodeID,
					item.PodcastName,
					item.EpisodeTitle,
					string(item.Status),
					created,
				})
			}
			writeTable(cmd.OutOrStdout(),
				[]string{"Session", "Episode ID", "Podcast", "Title", "Status", "Queued At"}, rows)
			return nil
		},
	}
}
