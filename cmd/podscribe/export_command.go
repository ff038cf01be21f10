package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podscribe/internal/export"
	"podscribe/internal/logging"
	"podscribe/internal/store"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write stored transcripts to the export directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			exporter := export.New(cfg, st, logging.NewNop())
			summary, err := exporter.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transcript(s), skipped %d, failed %d\n",
				summary.Exported, summary.Skipped, summary.Failed)
			if summary.Failed > 0 {
				return fmt.Errorf("%d transcript(s) failed to export", summary.Failed)
			}
			return nil
		},
	}
}
