// Package export writes stored transcripts out as plain text files arranged
// by podcast.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"podscribe/internal/config"
	"podscribe/internal/store"
)

// Summary reports the outcome of one export run.
type Summary struct {
	Exported int
	Skipped  int
	Failed   int
}

// Exporter dumps the transcript table to disk.
type Exporter struct {
	store     *store.Store
	exportDir string
	logger    *slog.Logger
}

// New builds an exporter writing under the configured export directory.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		store:     st,
		exportDir: cfg.Paths.ExportDir,
		logger:    logger.With("component", "export"),
	}
}

// Run writes every stored transcript to <export_dir>/<podcast>/<episode>.txt.
// Files that already exist are skipped, as are transcripts with no text. A
// failure to write one file never stops the run.
func (e *Exporter) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	transcripts, err := e.store.AllTranscripts(ctx)
	if err != nil {
		return summary, fmt.Errorf("load transcripts: %w", err)
	}

	for _, transcript := range transcripts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if strings.TrimSpace(transcript.Text) == "" {
			summary.Skipped++
			continue
		}

		dir := filepath.Join(e.exportDir, sanitizeName(transcript.PodcastName))
		target := filepath.Join(dir, sanitizeName(transcript.EpisodeTitle)+".txt")
		if _, err := os.Stat(target); err == nil {
			summary.Skipped++
			continue
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			e.logger.Warn("export directory creation failed", "dir", dir, "error", err)
			summary.Failed++
			continue
		}
		if err := os.WriteFile(target, []byte(transcript.Text), 0o644); err != nil {
			e.logger.Warn("transcript write failed", "path", target, "error", err)
			summary.Failed++
			continue
		}
		e.logger.Info("transcript exported", "podcast", transcript.PodcastName,
			"episode", transcript.EpisodeTitle, "path", target)
		summary.Exported++
	}
	return summary, nil
}

// sanitizeName produces a filesystem-safe component: NFC-normalized, path
// separators and control characters replaced, never empty.
func sanitizeName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	var builder strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':':
			builder.WriteRune('-')
		case r < 0x20:
			builder.WriteRune(' ')
		default:
			builder.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(builder.String())
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}
