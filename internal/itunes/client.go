// Package itunes provides a thin client for the iTunes Search API, used to
// find podcasts and list their episodes.
package itunes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"podscribe/internal/config"
)

// Podcast is a single podcast search match.
type Podcast struct {
	CollectionID   int64  `json:"collectionId"`
	CollectionName string `json:"collectionName"`
	ArtistName     string `json:"artistName"`
	ArtworkURL     string `json:"artworkUrl600"`
	FeedURL        string `json:"feedUrl"`
}

// Episode is a single podcast episode entry from a lookup.
type Episode struct {
	TrackID     int64  `json:"trackId"`
	TrackName   string `json:"trackName"`
	Description string `json:"description"`
	ReleaseDate string `json:"releaseDate"`
	EpisodeURL  string `json:"episodeUrl"`
	Duration    int64  `json:"trackTimeMillis"`
}

type searchResponse struct {
	ResultCount int               `json:"resultCount"`
	Results     []json.RawMessage `json:"results"`
}

// Client queries the iTunes Search API.
type Client struct {
	baseURL      string
	searchLimit  int
	episodeLimit int
	httpClient   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an iTunes client from configuration.
func New(cfg *config.Config, opts ...Option) *Client {
	timeout := time.Duration(cfg.ITunes.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		baseURL:      strings.TrimRight(cfg.ITunes.BaseURL, "/"),
		searchLimit:  cfg.ITunes.SearchLimit,
		episodeLimit: cfg.ITunes.EpisodeLimit,
		httpClient:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Search finds podcasts matching the term.
func (c *Client) Search(ctx context.Context, term string) ([]Podcast, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.New("search term must not be empty")
	}
	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "podcast")
	params.Set("entity", "podcast")
	params.Set("limit", strconv.Itoa(c.searchLimit))

	raw, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	podcasts := make([]Podcast, 0, len(raw))
	for _, entry := range raw {
		var p Podcast
		if err := json.Unmarshal(entry, &p); err != nil {
			continue
		}
		podcasts = append(podcasts, p)
	}
	return podcasts, nil
}

// Episodes lists episodes for a podcast by collection ID. The lookup response
// leads with the podcast's own row, which is not an episode and is skipped.
func (c *Client) Episodes(ctx context.Context, collectionID string) ([]Episode, error) {
	collectionID = strings.TrimSpace(collectionID)
	if collectionID == "" {
		return nil, errors.New("collection id must not be empty")
	}
	params := url.Values{}
	params.Set("id", collectionID)
	params.Set("media", "podcast")
	params.Set("entity", "podcastEpisode")
	params.Set("limit", strconv.Itoa(c.episodeLimit))

	raw, err := c.get(ctx, "/lookup", params)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		raw = raw[1:]
	}

	episodes := make([]Episode, 0, len(raw))
	for _, entry := range raw {
		var e Episode
		if err := json.Unmarshal(entry, &e); err != nil {
			continue
		}
		episodes = append(episodes, e)
	}
	return episodes, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse itunes url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("itunes returned %d", resp.StatusCode)
	}
	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode itunes response: %w", err)
	}
	return payload.Results, nil
}
