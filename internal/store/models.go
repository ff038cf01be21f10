package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

var allStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusSuccess,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	// Accept the dashed spelling used by older clients.
	if normalized == "in-progress" {
		normalized = StatusInProgress
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the queue item's lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

// Transcript is the durable record of one transcribed episode. At most one
// row exists per (PodcastName, EpisodeTitle) pair; writes are upserts keyed
// on that pair and CreatedAt is set once on first insert.
type Transcript struct {
	ID              int64
	PodcastName     string
	EpisodeTitle    string
	Text            string
	CreatedAt       time.Time
	PublicationDate *time.Time
}

// LibraryItem is a podcast the user tracks. CollectionID is unique;
// duplicate adds are a no-op.
type LibraryItem struct {
	ID           int64
	CollectionID string
	Name         string
	Artist       string
	ArtworkURL   string
	FeedURL      string
}

// QueueItem is one entry in a session's transcription worklist. EpisodeID is
// unique within a session. PublicationDate carries the raw value supplied by
// the client and is parsed only when a transcript is persisted.
type QueueItem struct {
	ID              int64
	SessionID       string
	EpisodeID       string
	EpisodeTitle    string
	AudioURL        string
	PodcastName     string
	PublicationDate string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
