// Package media converts fetched audio into the fixed PCM format required by
// the transcription engine.
package media

import (
	"context"
	"os/exec"
	"strings"

	"podscribe/internal/services"
)

var commandContext = exec.CommandContext

// ConvertToWAV converts an arbitrary audio container into 16 kHz mono
// 16-bit signed little-endian PCM. Conversion failures are fatal and never
// retried; codec problems are not transient.
func ConvertToWAV(ctx context.Context, ffmpegBinary, inputPath, outputPath string) error {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputPath,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		outputPath,
	}
	cmd := commandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrConversion, "converting", "ffmpeg",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}
