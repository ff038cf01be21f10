package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"podscribe/internal/store"
	"podscribe/internal/testsupport"
)

func TestAddLibraryItemDuplicateIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := store.LibraryItem{
		CollectionID: "12345",
		Name:         "Radiolab",
		Artist:       "WNYC Studios",
		ArtworkURL:   "https://example.com/art.jpg",
	}
	first, created, err := st.AddLibraryItem(ctx, item)
	if err != nil {
		t.Fatalf("AddLibraryItem failed: %v", err)
	}
	if !created {
		t.Fatal("expected first add to create")
	}

	item.Name = "Renamed"
	second, created, err := st.AddLibraryItem(ctx, item)
	if err != nil {
		t.Fatalf("duplicate add failed: %v", err)
	}
	if created {
		t.Fatal("duplicate add must report already exists")
	}
	if second.Name != first.Name {
		t.Fatalf("duplicate add must not mutate, got %q", second.Name)
	}
}

func TestAddLibraryItemConcurrentAddsCreateOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := store.LibraryItem{
		CollectionID: "12345",
		Name:         "Radiolab",
		Artist:       "WNYC Studios",
	}

	const attempts = 8
	type result struct {
		created bool
		err     error
	}
	results := make(chan result, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stored, created, err := st.AddLibraryItem(ctx, item)
			if err == nil && stored == nil {
				err = errors.New("add returned no row")
			}
			results <- result{created: created, err: err}
		}()
	}
	wg.Wait()
	close(results)

	var created int
	for r := range results {
		if r.err != nil {
			t.Fatalf("concurrent add failed: %v", r.err)
		}
		if r.created {
			created++
		}
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	items, err := st.ListLibraryItems(ctx)
	if err != nil {
		t.Fatalf("ListLibraryItems failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one library row, got %d", len(items))
	}
}

func TestListLibraryItemsSortedByName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, it := range []store.LibraryItem{
		{CollectionID: "2", Name: "Zig Zag"},
		{CollectionID: "1", Name: "Acquired", FeedURL: "https://example.com/feed.xml"},
	} {
		if _, _, err := st.AddLibraryItem(ctx, it); err != nil {
			t.Fatalf("AddLibraryItem failed: %v", err)
		}
	}

	items, err := st.ListLibraryItems(ctx)
	if err != nil {
		t.Fatalf("ListLibraryItems failed: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Acquired" {
		t.Fatalf("unexpected ordering: %#v", items)
	}
	if items[0].FeedURL != "https://example.com/feed.xml" {
		t.Fatalf("feed url not persisted: %#v", items[0])
	}
}

func TestRemoveLibraryItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, _, err := st.AddLibraryItem(ctx, store.LibraryItem{CollectionID: "9", Name: "Del"}); err != nil {
		t.Fatalf("AddLibraryItem failed: %v", err)
	}
	removed, err := st.RemoveLibraryItem(ctx, "9")
	if err != nil {
		t.Fatalf("RemoveLibraryItem failed: %v", err)
	}
	if !removed {
		t.Fatal("expected removal")
	}
	removed, err = st.RemoveLibraryItem(ctx, "9")
	if err != nil {
		t.Fatalf("second removal errored: %v", err)
	}
	if removed {
		t.Fatal("expected second removal to be a no-op")
	}
}
