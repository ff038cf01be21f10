package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertTranscript creates or overwrites the transcript for a
// (podcast, episode) pair. The second return value reports whether a new row
// was created. CreatedAt is set on first insert and never modified afterwards;
// concurrent writes for the same pair are last-write-wins.
func (s *Store) UpsertTranscript(ctx context.Context, podcastName, episodeTitle, text string, publicationDate *time.Time) (*Transcript, bool, error) {
	if podcastName == "" || episodeTitle == "" {
		return nil, false, errors.New("podcast name and episode title are required")
	}

	existing, err := s.GetTranscript(ctx, podcastName, episodeTitle)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO transcripts (podcast_name, episode_title, transcript_text, created_at, publication_date)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (podcast_name, episode_title)
         DO UPDATE SET transcript_text = excluded.transcript_text,
                       publication_date = excluded.publication_date`,
		podcastName,
		episodeTitle,
		text,
		now,
		nullableTime(publicationDate),
	)
	if err != nil {
		return nil, false, fmt.Errorf("upsert transcript: %w", err)
	}

	stored, err := s.GetTranscript(ctx, podcastName, episodeTitle)
	if err != nil {
		return nil, false, err
	}
	return stored, existing == nil, nil
}

// GetTranscript returns the transcript for a (podcast, episode) pair, or nil
// when none exists.
func (s *Store) GetTranscript(ctx context.Context, podcastName, episodeTitle string) (*Transcript, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+transcriptColumns+` FROM transcripts WHERE podcast_name = ? AND episode_title = ?`,
		podcastName,
		episodeTitle,
	)
	transcript, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return transcript, nil
}

// AllTranscripts returns every stored transcript ordered by creation time.
func (s *Store) AllTranscripts(ctx context.Context) ([]*Transcript, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+transcriptColumns+` FROM transcripts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []*Transcript
	for rows.Next() {
		transcript, err := scanTranscript(rows)
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, transcript)
	}
	return transcripts, rows.Err()
}

const transcriptColumns = "id, podcast_name, episode_title, transcript_text, created_at, publication_date"

func scanTranscript(scanner interface{ Scan(dest ...any) error }) (*Transcript, error) {
	var (
		id             int64
		podcastName    string
		episodeTitle   string
		text           string
		createdRaw     sql.NullString
		publicationRaw sql.NullString
	)

	if err := scanner.Scan(&id, &podcastName, &episodeTitle, &text, &createdRaw, &publicationRaw); err != nil {
		return nil, err
	}

	transcript := &Transcript{
		ID:           id,
		PodcastName:  podcastName,
		EpisodeTitle: episodeTitle,
		Text:         text,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		transcript.CreatedAt = created
	}
	if publicationRaw.Valid {
		if published, err := parseTimeString(publicationRaw.String); err == nil {
			transcript.PublicationDate = &published
		}
	}
	return transcript, nil
}
