package consent

import (
	"context"
	"testing"

	"github.com/zip2job/zip2job/internal/catalog"
)

func TestGateDeniesByDefault(t *testing.T) {
	gate := NewGate(catalog.NewMemoryStore())
	if gate.CanUseLLM(context.Background()) {
		t.Fatalf("absence of a consent record must deny LLM use")
	}
	if gate.ModelAllowed(context.Background(), "gpt-4o") {
		t.Fatalf("model check must deny without consent")
	}
	if len(gate.IgnorePatterns(context.Background())) == 0 {
		t.Fatalf("defaults expected when no record exists")
	}
}

func TestGateHonoursLatestRecord(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	gate := NewGate(store)

	if err := store.UpsertConsent(ctx, &catalog.ConsentRecord{AllowLLM: true, AllowedModels: []string{"gpt-4o"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !gate.CanUseLLM(ctx) {
		t.Fatalf("consent granted but gate denied")
	}
	if !gate.ModelAllowed(ctx, "gpt-4o") {
		t.Fatalf("allowed model rejected")
	}
	if gate.ModelAllowed(ctx, "other-model") {
		t.Fatalf("model outside allow-list accepted")
	}

	if err := store.UpsertConsent(ctx, &catalog.ConsentRecord{AllowLLM: false}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if gate.CanUseLLM(ctx) {
		t.Fatalf("most recent record must win")
	}
}

func TestGateCustomIgnorePatterns(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	gate := NewGate(store)
	if err := store.UpsertConsent(ctx, &catalog.ConsentRecord{IgnorePatterns: []string{"*.log", "tmp"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got := gate.IgnorePatterns(ctx)
	if len(got) != 2 || got[0] != "*.log" {
		t.Fatalf("custom patterns not honoured: %v", got)
	}
}
