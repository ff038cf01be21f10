package services_test

import (
	"context"
	"reflect"
	"testing"

	"podscribe/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithEpisodeID(ctx, "ep-42")
	ctx = services.WithStep(ctx, "fetching")
	ctx = services.WithRunID(ctx, "run-123")

	if id, ok := services.EpisodeIDFromContext(ctx); !ok || id != "ep-42" {
		t.Fatalf("unexpected episode id: %v %v", id, ok)
	}
	if step, ok := services.StepFromContext(ctx); !ok || step != "fetching" {
		t.Fatalf("unexpected step: %v %v", step, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestLogAttrs(t *testing.T) {
	ctx := context.Background()
	if got := services.LogAttrs(ctx); len(got) != 0 {
		t.Fatalf("attrs for bare context = %v, want none", got)
	}

	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithEpisodeID(ctx, "ep-42")
	ctx = services.WithStep(ctx, "converting")
	want := []any{"run_id", "run-123", "episode_id", "ep-42", "step", "converting"}
	if got := services.LogAttrs(ctx); !reflect.DeepEqual(got, want) {
		t.Fatalf("attrs = %v, want %v", got, want)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := services.WithStep(context.Background(), "")
	if _, ok := services.StepFromContext(ctx); ok {
		t.Fatal("expected no step value")
	}
}
