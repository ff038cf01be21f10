package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddLibraryItem inserts a podcast into the library. When the collection
// identifier is already present the existing row is returned unchanged and
// the second return value is false.
func (s *Store) AddLibraryItem(ctx context.Context, item LibraryItem) (*LibraryItem, bool, error) {
	if item.CollectionID == "" {
		return nil, false, errors.New("collection id is required")
	}

	// The conflict clause keeps concurrent adds for the same collection id
	// from surfacing a constraint error: the loser reads back the row the
	// winner inserted.
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO library_items (collection_id, name, artist, artwork_url, feed_url)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (collection_id) DO NOTHING`,
		item.CollectionID,
		item.Name,
		item.Artist,
		item.ArtworkURL,
		nullableString(item.FeedURL),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert library item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	stored, err := s.getLibraryItem(ctx, item.CollectionID)
	if err != nil {
		return nil, false, err
	}
	return stored, affected > 0, nil
}

// RemoveLibraryItem deletes a podcast from the library by collection id.
func (s *Store) RemoveLibraryItem(ctx context.Context, collectionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM library_items WHERE collection_id = ?`, collectionID)
	if err != nil {
		return false, fmt.Errorf("delete library item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListLibraryItems returns all library items ordered alphabetically by name.
func (s *Store) ListLibraryItems(ctx context.Context) ([]*LibraryItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+libraryColumns+` FROM library_items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list library items: %w", err)
	}
	defer rows.Close()

	var items []*LibraryItem
	for rows.Next() {
		item, err := scanLibraryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetLibraryItem returns a library item by collection id, or nil when absent.
func (s *Store) GetLibraryItem(ctx context.Context, collectionID string) (*LibraryItem, error) {
	return s.getLibraryItem(ctx, collectionID)
}

func (s *Store) getLibraryItem(ctx context.Context, collectionID string) (*LibraryItem, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+libraryColumns+` FROM library_items WHERE collection_id = ?`,
		collectionID,
	)
	item, err := scanLibraryItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get library item: %w", err)
	}
	return item, nil
}

const libraryColumns = "id, collection_id, name, artist, artwork_url, feed_url"

func scanLibraryItem(scanner interface{ Scan(dest ...any) error }) (*LibraryItem, error) {
	var (
		id           int64
		collectionID string
		name         string
		artist       string
		artworkURL   string
		feedURL      sql.NullString
	)

	if err := scanner.Scan(&id, &collectionID, &name, &artist, &artworkURL, &feedURL); err != nil {
		return nil, err
	}

	return &LibraryItem{
		ID:           id,
		CollectionID: collectionID,
		Name:         name,
		Artist:       artist,
		ArtworkURL:   artworkURL,
		FeedURL:      feedURL.String,
	}, nil
}
