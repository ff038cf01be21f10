package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Enqueue adds an episode to a session's worklist with status pending.
// Enqueueing an episode id already present in the same session returns
// ErrAlreadyQueued and leaves the queue unchanged.
func (s *Store) Enqueue(ctx context.Context, item QueueItem) (*QueueItem, error) {
	if item.SessionID == "" {
		return nil, errors.New("session id is required")
	}
	if item.EpisodeID == "" {
		return nil, errors.New("episode id is required")
	}

	// The conflict clause makes the duplicate check atomic: two concurrent
	// enqueues for the same episode race to one inserted row, and the loser
	// sees zero rows affected.
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO queue_items (
            session_id, episode_id, episode_title, audio_url, podcast_name,
            publication_date, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (session_id, episode_id) DO NOTHING`,
		item.SessionID,
		item.EpisodeID,
		item.EpisodeTitle,
		item.AudioURL,
		item.PodcastName,
		nullableString(item.PublicationDate),
		StatusPending,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert queue item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrAlreadyQueued
	}

	return s.getQueueItem(ctx, item.SessionID, item.EpisodeID)
}

// DequeueEpisode removes an episode from a session's worklist.
func (s *Store) DequeueEpisode(ctx context.Context, sessionID, episodeID string) (bool, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM queue_items WHERE session_id = ? AND episode_id = ?`,
		sessionID,
		episodeID,
	)
	if err != nil {
		return false, fmt.Errorf("delete queue item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// QueueForSession returns a session's worklist in enqueue order. Items that
// reached status success are pruned before the read, matching the contract
// that completed work disappears from the queue on its next listing.
func (s *Store) QueueForSession(ctx context.Context, sessionID string) ([]*QueueItem, error) {
	if _, err := s.db.ExecContext(
		ctx,
		`DELETE FROM queue_items WHERE session_id = ? AND status = ?`,
		sessionID,
		StatusSuccess,
	); err != nil {
		return nil, fmt.Errorf("prune completed queue items: %w", err)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+queueColumns+` FROM queue_items WHERE session_id = ? ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	defer rows.Close()

	var items []*QueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AllQueueItems returns every queue row across sessions, oldest first.
func (s *Store) AllQueueItems(ctx context.Context) ([]*QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+queueColumns+` FROM queue_items ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	defer rows.Close()

	var items []*QueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateQueueStatus transitions an episode's queue status within a session.
func (s *Store) UpdateQueueStatus(ctx context.Context, sessionID, episodeID string, status Status) (bool, error) {
	if _, ok := statusSet[status]; !ok {
		return false, fmt.Errorf("unknown queue status %q", status)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE queue_items SET status = ?, updated_at = ? WHERE session_id = ? AND episode_id = ?`,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		sessionID,
		episodeID,
	)
	if err != nil {
		return false, fmt.Errorf("update queue status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// NormalizeQueues repairs queue state across all sessions after a restart:
// success rows are dropped and in_progress rows return to pending, since no
// job survives the process.
func (s *Store) NormalizeQueues(ctx context.Context) (reset int64, pruned int64, err error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE queue_items SET status = ?, updated_at = ? WHERE status = ?`,
		StatusPending,
		now,
		StatusInProgress,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("reset in-progress queue items: %w", err)
	}
	if reset, err = res.RowsAffected(); err != nil {
		return 0, 0, fmt.Errorf("rows affected: %w", err)
	}

	res, err = s.db.ExecContext(ctx, `DELETE FROM queue_items WHERE status = ?`, StatusSuccess)
	if err != nil {
		return reset, 0, fmt.Errorf("prune completed queue items: %w", err)
	}
	if pruned, err = res.RowsAffected(); err != nil {
		return reset, 0, fmt.Errorf("rows affected: %w", err)
	}

	return reset, pruned, nil
}

func (s *Store) getQueueItem(ctx context.Context, sessionID, episodeID string) (*QueueItem, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+queueColumns+` FROM queue_items WHERE session_id = ? AND episode_id = ?`,
		sessionID,
		episodeID,
	)
	item, err := scanQueueItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get queue item: %w", err)
	}
	return item, nil
}

const queueColumns = "id, session_id, episode_id, episode_title, audio_url, podcast_name, publication_date, status, created_at, updated_at"

func scanQueueItem(scanner interface{ Scan(dest ...any) error }) (*QueueItem, error) {
	var (
		id             int64
		sessionID      string
		episodeID      string
		episodeTitle   string
		audioURL       string
		podcastName    string
		publicationRaw sql.NullString
		statusStr      string
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sessionID,
		&episodeID,
		&episodeTitle,
		&audioURL,
		&podcastName,
		&publicationRaw,
		&statusStr,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &QueueItem{
		ID:              id,
		SessionID:       sessionID,
		EpisodeID:       episodeID,
		EpisodeTitle:    episodeTitle,
		AudioURL:        audioURL,
		PodcastName:     podcastName,
		PublicationDate: publicationRaw.String,
		Status:          Status(statusStr),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}
