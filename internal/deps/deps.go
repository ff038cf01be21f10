// Package deps reports the availability of the external binaries the
// transcription pipeline shells out to.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"podscribe/internal/config"
)

// Requirement defines an external dependency podscribe relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries the configured pipeline needs. The engine
// binary is optional because it is built on first use; git and make are what
// that build needs.
func Requirements(cfg *config.Config) []Requirement {
	ffmpeg := strings.TrimSpace(cfg.Engine.FFmpegBinary)
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "audio conversion"},
		{Name: "Git", Command: "git", Description: "engine source checkout", Optional: true},
		{Name: "Make", Command: "make", Description: "engine build", Optional: true},
		{Name: "Whisper engine", Command: cfg.Engine.Binary, Description: "speech recognition", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Commands given as absolute paths are checked on disk; bare names resolve
// through PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if filepath.IsAbs(cmd) {
			if _, err := os.Stat(cmd); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
				results = append(results, status)
				continue
			}
		} else if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired filters statuses down to unavailable required dependencies.
func MissingRequired(statuses []Status) []Status {
	missing := make([]Status, 0, len(statuses))
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
