package catalog

import (
	"context"
	"errors"
	"testing"
)

func seedProjects(t *testing.T, store Store, names ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(names))
	for i, name := range names {
		p := &Project{ID: name + "-id", Name: name, RelPath: name, Role: "Unknown", FileCount: i + 1}
		if err := store.CreateProject(context.Background(), p); err != nil {
			t.Fatalf("create project %s: %v", name, err)
		}
		ids = append(ids, p.ID)
	}
	return ids
}

func TestRerankRejectsDuplicateRanks(t *testing.T) {
	store := NewMemoryStore()
	ids := seedProjects(t, store, "alpha", "beta")
	err := store.Rerank(context.Background(), []RankAssignment{
		{ProjectID: ids[0], Rank: 1},
		{ProjectID: ids[1], Rank: 1},
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	// No mutation may be persisted after a rejected rerank.
	for _, id := range ids {
		p, err := store.GetProject(context.Background(), id)
		if err != nil {
			t.Fatalf("get project: %v", err)
		}
		if p.ImportanceRank != 0 {
			t.Fatalf("rank mutated despite validation failure: %d", p.ImportanceRank)
		}
	}
}

func TestRerankIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ids := seedProjects(t, store, "alpha", "beta", "gamma")
	assignments := []RankAssignment{
		{ProjectID: ids[2], Rank: 1},
		{ProjectID: ids[0], Rank: 2},
		{ProjectID: ids[1], Rank: 3},
	}
	for i := 0; i < 2; i++ {
		if err := store.Rerank(context.Background(), assignments); err != nil {
			t.Fatalf("rerank pass %d: %v", i+1, err)
		}
	}
	seen := make(map[int]bool)
	for _, id := range ids {
		p, err := store.GetProject(context.Background(), id)
		if err != nil {
			t.Fatalf("get project: %v", err)
		}
		if p.ImportanceRank < 1 || p.ImportanceRank > 3 || seen[p.ImportanceRank] {
			t.Fatalf("ranks are not exactly {1..n}: got %d twice or out of range", p.ImportanceRank)
		}
		seen[p.ImportanceRank] = true
	}
}

func TestUpsertSkillIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	first, err := store.UpsertSkill(context.Background(), "Docker", "tool")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := store.UpsertSkill(context.Background(), "Docker", "tool")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("upsert created a duplicate skill: %d vs %d", first.ID, second.ID)
	}
	practice, err := store.UpsertSkill(context.Background(), "Docker", "practice")
	if err != nil {
		t.Fatalf("practice upsert: %v", err)
	}
	if practice.ID == first.ID {
		t.Fatalf("(name, kind) uniqueness violated")
	}
}

func TestUpsertSkillRejectsBadKind(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.UpsertSkill(context.Background(), "Docker", "framework"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestLatestConsentWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if _, err := store.LatestConsent(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no consent rows, got %v", err)
	}
	if err := store.UpsertConsent(ctx, &ConsentRecord{AllowLLM: true}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.UpsertConsent(ctx, &ConsentRecord{AllowLLM: false, IgnorePatterns: []string{"node_modules"}}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	latest, err := store.LatestConsent(ctx)
	if err != nil {
		t.Fatalf("latest consent: %v", err)
	}
	if latest.AllowLLM {
		t.Fatalf("most recent record must win")
	}
	if len(latest.IgnorePatterns) != 1 {
		t.Fatalf("ignore patterns lost: %v", latest.IgnorePatterns)
	}
}

func TestValidateRanks(t *testing.T) {
	cases := []struct {
		name    string
		in      []RankAssignment
		wantErr bool
	}{
		{"empty", nil, false},
		{"valid", []RankAssignment{{"a", 1}, {"b", 2}}, false},
		{"duplicate rank", []RankAssignment{{"a", 1}, {"b", 1}}, true},
		{"duplicate project", []RankAssignment{{"a", 1}, {"a", 2}}, true},
		{"zero rank", []RankAssignment{{"a", 0}}, true},
		{"gap", []RankAssignment{{"a", 1}, {"b", 3}}, true},
	}
	for _, tc := range cases {
		err := ValidateRanks(tc.in)
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}
