package store_test

import (
	"context"
	"testing"
	"time"

	"podscribe/internal/testsupport"
)

func TestUpsertTranscriptCreatesAndOverwrites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	published := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first, created, err := st.UpsertTranscript(ctx, "P1", "E1", "first pass", &published)
	if err != nil {
		t.Fatalf("UpsertTranscript failed: %v", err)
	}
	if !created {
		t.Fatal("expected first write to create a row")
	}
	if first.Text != "first pass" {
		t.Fatalf("unexpected text: %q", first.Text)
	}
	if first.PublicationDate == nil || !first.PublicationDate.Equal(published) {
		t.Fatalf("unexpected publication date: %v", first.PublicationDate)
	}

	second, created, err := st.UpsertTranscript(ctx, "P1", "E1", "second pass", nil)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if created {
		t.Fatal("expected second write to update, not create")
	}
	if second.Text != "second pass" {
		t.Fatalf("last write should win, got %q", second.Text)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at must be immutable: %v vs %v", second.CreatedAt, first.CreatedAt)
	}

	all, err := st.AllTranscripts(ctx)
	if err != nil {
		t.Fatalf("AllTranscripts failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one row per (podcast, episode), got %d", len(all))
	}
}

func TestGetTranscriptMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	transcript, err := st.GetTranscript(context.Background(), "P1", "missing")
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if transcript != nil {
		t.Fatalf("expected nil for missing transcript, got %#v", transcript)
	}
}

func TestUpsertTranscriptRequiresKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if _, _, err := st.UpsertTranscript(context.Background(), "", "E1", "text", nil); err == nil {
		t.Fatal("expected error for empty podcast name")
	}
}

func TestTranscriptsDistinctPerPair(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	pairs := [][2]string{{"P1", "E1"}, {"P1", "E2"}, {"P2", "E1"}}
	for _, pair := range pairs {
		if _, _, err := st.UpsertTranscript(ctx, pair[0], pair[1], "text", nil); err != nil {
			t.Fatalf("upsert %v failed: %v", pair, err)
		}
	}

	all, err := st.AllTranscripts(ctx)
	if err != nil {
		t.Fatalf("AllTranscripts failed: %v", err)
	}
	if len(all) != len(pairs) {
		t.Fatalf("expected %d rows, got %d", len(pairs), len(all))
	}
}
