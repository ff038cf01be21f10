package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"podscribe/internal/config"
	"podscribe/internal/services"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Fetcher downloads remote audio files with bounded retries.
type Fetcher struct {
	client     *http.Client
	scratchDir string
	maxRetries int
	retryDelay time.Duration
	chunkSize  int
	logger     *slog.Logger
}

// New constructs a Fetcher from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Fetcher {
	timeout := time.Duration(cfg.Fetch.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		scratchDir: cfg.Paths.ScratchDir,
		maxRetries: cfg.Fetch.MaxRetries,
		retryDelay: time.Duration(cfg.Fetch.RetryDelay) * time.Second,
		chunkSize:  cfg.Fetch.ChunkSize,
		logger:     logger,
	}
}

// WithRetryDelay overrides the delay between attempts (used in tests).
func (f *Fetcher) WithRetryDelay(delay time.Duration) *Fetcher {
	f.retryDelay = delay
	return f
}

// Download fetches the audio at rawURL into a temporary file under the
// scratch directory and returns the file path. The URL is percent-decoded
// first. On retry exhaustion no partial file remains on disk and the
// returned error carries the fetch marker.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (string, error) {
	decoded, err := url.PathUnescape(rawURL)
	if err != nil {
		// Keep the raw URL when decoding fails; some feeds double-encode.
		decoded = rawURL
	}

	parsed, err := url.Parse(decoded)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", services.Wrap(services.ErrFetch, "fetching", "parse url", decoded, err)
	}
	referer := parsed.Scheme + "://" + parsed.Host
	logger := f.logger.With(services.LogAttrs(ctx)...)

	var lastErr error
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		path, err := f.downloadOnce(ctx, decoded, referer)
		if err == nil {
			logger.Info("audio downloaded", "url", decoded, "path", path, "attempt", attempt)
			return path, nil
		}
		lastErr = err
		if attempt < f.maxRetries {
			logger.Warn("download attempt failed, retrying",
				"url", decoded, "attempt", attempt, "delay", f.retryDelay, "error", err)
			select {
			case <-time.After(f.retryDelay):
			case <-ctx.Done():
				return "", services.Wrap(services.ErrFetch, "fetching", "download", "cancelled", ctx.Err())
			}
		}
	}

	return "", services.Wrap(services.ErrFetch, "fetching", "download",
		fmt.Sprintf("after %d attempts", f.maxRetries), lastErr)
}

func (f *Fetcher) downloadOnce(ctx context.Context, audioURL, referer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(f.scratchDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure scratch dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.scratchDir, "episode-*.mp3")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	buf := make([]byte, f.chunkSize)
	if _, err := io.CopyBuffer(tmp, resp.Body, buf); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("stream body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), nil
}
