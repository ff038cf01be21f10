// Package whispercpp drives a local whisper.cpp build as a transcription
// engine, streaming recognized text line by line as the subprocess emits it.
package whispercpp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"podscribe/internal/config"
	"podscribe/internal/services"
)

var commandContext = exec.CommandContext

// Service wraps a whisper.cpp installation: the compiled binary and a
// downloaded ggml model. Both are provisioned on demand.
type Service struct {
	binary    string
	buildDir  string
	repoURL   string
	modelPath string
	modelURL  string
	client    *http.Client
	logger    *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithHTTPClient overrides the client used for model downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// New builds a Service from the engine configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &Service{
		binary:    cfg.Engine.Binary,
		buildDir:  cfg.Engine.BuildDir,
		repoURL:   cfg.Engine.RepoURL,
		modelPath: cfg.Engine.ModelPath,
		modelURL:  cfg.Engine.ModelURL,
		client:    http.DefaultClient,
		logger:    logger.With("component", "whispercpp"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// EnsureModel downloads the ggml model if it is not already on disk.
func (s *Service) EnsureModel(ctx context.Context) error {
	if _, err := os.Stat(s.modelPath); err == nil {
		return nil
	}
	if s.modelURL == "" {
		return services.Wrap(services.ErrEngine, "preparing", "model",
			fmt.Sprintf("model missing at %s and no download URL configured", s.modelPath), nil)
	}
	s.logger.Info("downloading model", "url", s.modelURL, "path", s.modelPath)

	if err := os.MkdirAll(filepath.Dir(s.modelPath), 0o755); err != nil {
		return services.Wrap(services.ErrEngine, "preparing", "model", "create model directory", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.modelURL, nil)
	if err != nil {
		return services.Wrap(services.ErrEngine, "preparing", "model", "build request", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrEngine, "preparing", "model", "download", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return services.Wrap(services.ErrEngine, "preparing", "model",
			fmt.Sprintf("download returned status %d", resp.StatusCode), nil)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.modelPath), "model-*.part")
	if err != nil {
		return services.Wrap(services.ErrEngine, "preparing", "model", "create temp file", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return services.Wrap(services.ErrEngine, "preparing", "model", "write model", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return services.Wrap(services.ErrEngine, "preparing", "model", "close model file", err)
	}
	if err := os.Rename(tmp.Name(), s.modelPath); err != nil {
		os.Remove(tmp.Name())
		return services.Wrap(services.ErrEngine, "preparing", "model", "finalize model file", err)
	}
	return nil
}

// EnsureBinary clones and builds whisper.cpp when the binary is absent.
func (s *Service) EnsureBinary(ctx context.Context) error {
	if _, err := os.Stat(s.binary); err == nil {
		return nil
	}
	if _, err := os.Stat(filepath.Join(s.buildDir, "Makefile")); err != nil {
		s.logger.Info("cloning engine repository", "url", s.repoURL, "dir", s.buildDir)
		if err := os.MkdirAll(filepath.Dir(s.buildDir), 0o755); err != nil {
			return services.Wrap(services.ErrEngine, "preparing", "build", "create build directory", err)
		}
		clone := commandContext(ctx, "git", "clone", "--depth", "1", s.repoURL, s.buildDir)
		if output, err := clone.CombinedOutput(); err != nil {
			return services.Wrap(services.ErrEngine, "preparing", "build",
				"git clone: "+strings.TrimSpace(string(output)), err)
		}
	}

	s.logger.Info("building engine", "dir", s.buildDir)
	build := commandContext(ctx, "make", "-C", s.buildDir)
	if output, err := build.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrEngine, "preparing", "build",
			"make: "+strings.TrimSpace(string(output)), err)
	}
	if _, err := os.Stat(s.binary); err != nil {
		return services.Wrap(services.ErrEngine, "preparing", "build",
			fmt.Sprintf("binary missing at %s after build", s.binary), err)
	}
	return nil
}

// Transcribe runs the engine on a prepared WAV file. Each non-empty text line
// is delivered to onLine as it arrives; the return value is the full
// transcript with lines joined by single spaces.
func (s *Service) Transcribe(ctx context.Context, wavPath string, onLine func(string)) (string, error) {
	args := []string{
		"-m", s.modelPath,
		"-f", wavPath,
		"--no-timestamps",
		"--no-prints",
		"--print-progress",
	}
	cmd := commandContext(ctx, s.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", services.Wrap(services.ErrEngine, "transcribing", "run", "stdout pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return "", services.Wrap(services.ErrEngine, "transcribing", "run", "start engine", err)
	}

	var lines []string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if onLine != nil {
			onLine(line)
		}
	}
	scanErr := scanner.Err()
	waitErr := cmd.Wait()
	if waitErr != nil {
		return "", services.Wrap(services.ErrEngine, "transcribing", "run", "engine exited", waitErr)
	}
	if scanErr != nil {
		return "", services.Wrap(services.ErrEngine, "transcribing", "run", "read output", scanErr)
	}
	// The engine closes stdout with a line naming the text output mode; it
	// is status noise, not speech, and never belongs in the transcript.
	if n := len(lines); n > 0 && strings.HasPrefix(lines[n-1], "output_txt") {
		lines = lines[:n-1]
	}
	return strings.Join(lines, " "), nil
}
