// Package feeds reads podcast RSS/Atom feeds directly, so library entries
// that carry a feed URL can be browsed without going through the search
// proxy.
package feeds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Episode is one feed entry with the fields the transcription flow needs.
type Episode struct {
	GUID            string `json:"guid"`
	Title           string `json:"title"`
	AudioURL        string `json:"audio_url"`
	PublicationDate string `json:"publication_date,omitempty"`
	Description     string `json:"description,omitempty"`
}

// Reader parses podcast feeds.
type Reader struct {
	parser *gofeed.Parser
}

// NewReader creates a feed reader.
func NewReader() *Reader {
	return &Reader{parser: gofeed.NewParser()}
}

// Episodes fetches and parses a feed, returning entries that carry an audio
// enclosure. Publication dates are rendered as RFC 3339 when present.
func (r *Reader) Episodes(ctx context.Context, feedURL string) ([]Episode, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, fmt.Errorf("feed url must not be empty")
	}
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	episodes := make([]Episode, 0, len(feed.Items))
	for _, item := range feed.Items {
		audioURL := enclosureURL(item)
		if audioURL == "" {
			continue
		}
		episode := Episode{
			GUID:        item.GUID,
			Title:       item.Title,
			AudioURL:    audioURL,
			Description: item.Description,
		}
		if item.PublishedParsed != nil {
			episode.PublicationDate = item.PublishedParsed.UTC().Format(time.RFC3339)
		}
		episodes = append(episodes, episode)
	}
	return episodes, nil
}

func enclosureURL(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		if strings.HasPrefix(enc.Type, "audio/") || enc.Type == "" {
			return enc.URL
		}
	}
	return ""
}
