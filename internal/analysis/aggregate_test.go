package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zip2job/zip2job/internal/catalog"
	"github.com/zip2job/zip2job/internal/consent"
	"github.com/zip2job/zip2job/internal/gitlog"
	"github.com/zip2job/zip2job/internal/store"
)

// spyGit counts Log invocations so the fingerprint gate can be observed.
type spyGit struct {
	mu      sync.Mutex
	calls   int
	commits []gitlog.Commit
	err     error
}

func (s *spyGit) Log(ctx context.Context, root string) ([]gitlog.Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.commits, nil
}

func (s *spyGit) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// spyAugmenter records whether the LLM skill path was consulted.
type spyAugmenter struct {
	mu    sync.Mutex
	calls int
}

func (s *spyAugmenter) SuggestSkills(ctx context.Context, summary string) ([]string, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return []string{"SpyTool"}, nil, nil
}

func seedProject(t *testing.T, cat catalog.Store, objects *store.ContentStore, files map[string]string) string {
	t.Helper()
	ctx := context.Background()
	project := &catalog.Project{ID: "proj-1", Name: "demo", RelPath: "demo", Role: "Unknown"}
	if err := cat.CreateProject(ctx, project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	for rel, content := range files {
		hash, err := objects.Put([]byte(content))
		if err != nil {
			t.Fatalf("put object: %v", err)
		}
		if err := cat.PutContentObject(ctx, &catalog.ContentObject{Hash: hash, Size: int64(len(content))}); err != nil {
			t.Fatalf("put content row: %v", err)
		}
		if err := cat.UpsertFileEntry(ctx, &catalog.FileEntry{ProjectID: project.ID, RelPath: rel, ContentHash: hash}); err != nil {
			t.Fatalf("upsert entry: %v", err)
		}
	}
	return project.ID
}

func pipelineFixture(t *testing.T, git gitlog.Capability, files map[string]string, opts ...Option) (*Pipeline, catalog.Store, string) {
	t.Helper()
	objects, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("content store: %v", err)
	}
	cat := catalog.NewMemoryStore()
	projectID := seedProject(t, cat, objects, files)
	gate := consent.NewGate(cat)
	opts = append([]Option{WithGitCapability(git)}, opts...)
	pipeline := NewPipeline(cat, objects, gate, gitlog.Identity{Name: "Dana Example", Email: "dana@example.com"}, opts...)
	return pipeline, cat, projectID
}

var pythonFiles = map[string]string{
	"main.py":          "def main() -> None:\n    print('hi')\n",
	"util.py":          "def util(x: int) -> int:\n    return x\n",
	"requirements.txt": "fastapi\n",
}

func TestAnalyzeProjectEndToEnd(t *testing.T) {
	git := &spyGit{}
	pipeline, cat, projectID := pipelineFixture(t, git, pythonFiles)
	analysis, err := pipeline.AnalyzeProject(context.Background(), projectID, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Language != LangPython {
		t.Fatalf("language: %q", analysis.Language)
	}
	if analysis.Framework != "FastAPI" {
		t.Fatalf("framework: %q", analysis.Framework)
	}
	if analysis.Role != gitlog.RoleUnknown || analysis.IsCollaborative {
		t.Fatalf("non-git project: role=%q collaborative=%v", analysis.Role, analysis.IsCollaborative)
	}
	if analysis.CodeMetrics.FileCount != 2 {
		t.Fatalf("python file count: %d", analysis.CodeMetrics.FileCount)
	}
	if git.count() != 0 {
		t.Fatalf("no .git directory, git capability must not run")
	}

	project, err := cat.GetProject(context.Background(), projectID)
	if err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if project.Language != LangPython || project.Fingerprint == "" {
		t.Fatalf("persisted project: language=%q fingerprint=%q", project.Language, project.Fingerprint)
	}
	skills, err := cat.ListProjectSkills(context.Background(), projectID)
	if err != nil {
		t.Fatalf("list skills: %v", err)
	}
	if len(skills) == 0 {
		t.Fatalf("skills not persisted")
	}
	analyses, err := cat.ListCodeAnalyses(context.Background(), projectID)
	if err != nil || len(analyses) != 1 {
		t.Fatalf("code analysis rows: %v %d", err, len(analyses))
	}
}

func TestFingerprintGateSkipsWork(t *testing.T) {
	git := &spyGit{commits: []gitlog.Commit{
		{SHA: "c1", AuthorName: "Dana Example", AuthorEmail: "dana@example.com", Timestamp: time.Now().UTC()},
	}}
	files := map[string]string{
		".git/HEAD": "ref: refs/heads/main\n",
		"main.py":   "def main() -> None:\n    pass\n",
	}
	pipeline, _, projectID := pipelineFixture(t, git, files)
	ctx := context.Background()

	first, err := pipeline.AnalyzeProject(ctx, projectID, false)
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	if first.Cached {
		t.Fatalf("first run cannot be cached")
	}
	callsAfterFirst := git.count()
	if callsAfterFirst != 1 {
		t.Fatalf("expected one git log call, got %d", callsAfterFirst)
	}

	second, err := pipeline.AnalyzeProject(ctx, projectID, false)
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if !second.Cached {
		t.Fatalf("unchanged fingerprint must return the cached analysis")
	}
	if git.count() != callsAfterFirst {
		t.Fatalf("fingerprint gate leaked a git call")
	}

	third, err := pipeline.AnalyzeProject(ctx, projectID, true)
	if err != nil {
		t.Fatalf("forced analyze: %v", err)
	}
	if third.Cached {
		t.Fatalf("force must bypass the gate")
	}
	if git.count() != callsAfterFirst+1 {
		t.Fatalf("forced run should re-run git")
	}
}

func TestConsentGateBlocksAugmenter(t *testing.T) {
	aug := &spyAugmenter{}
	git := &spyGit{}
	pipeline, cat, projectID := pipelineFixture(t, git, pythonFiles, WithAugmenter(aug))
	ctx := context.Background()

	if _, err := pipeline.AnalyzeProject(ctx, projectID, true); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if aug.calls != 0 {
		t.Fatalf("augmenter ran without consent")
	}

	if err := cat.UpsertConsent(ctx, &catalog.ConsentRecord{AllowLLM: true}); err != nil {
		t.Fatalf("upsert consent: %v", err)
	}
	result, err := pipeline.AnalyzeProject(ctx, projectID, true)
	if err != nil {
		t.Fatalf("analyze with consent: %v", err)
	}
	if aug.calls != 1 {
		t.Fatalf("augmenter should run once consented, calls=%d", aug.calls)
	}
	found := false
	for _, tool := range result.Tools {
		if tool == "SpyTool" {
			found = true
		}
	}
	if !found {
		t.Fatalf("augmented tool missing from %v", result.Tools)
	}
}

func TestDamagedGitDegradesToNonGit(t *testing.T) {
	git := &spyGit{err: gitlog.ErrNoRepository}
	files := map[string]string{
		".git/HEAD": "ref: refs/heads/main\n",
		"main.py":   "def main():\n    pass\n",
	}
	pipeline, _, projectID := pipelineFixture(t, git, files)
	analysis, err := pipeline.AnalyzeProject(context.Background(), projectID, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Role != gitlog.RoleUnknown {
		t.Fatalf("damaged metadata must analyse as non-git, role=%q", analysis.Role)
	}
	if len(analysis.Diagnostics) == 0 {
		t.Fatalf("damaged metadata must leave a diagnostic")
	}
}

func TestLockContentionReturnsConflict(t *testing.T) {
	git := &spyGit{}
	pipeline, _, projectID := pipelineFixture(t, git, pythonFiles)
	if !pipeline.tryLock(projectID) {
		t.Fatalf("fresh lock should succeed")
	}
	_, err := pipeline.AnalyzeProject(context.Background(), projectID, false)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict while lock held, got %v", err)
	}
	pipeline.unlock(projectID)
	if _, err := pipeline.AnalyzeProject(context.Background(), projectID, false); err != nil {
		t.Fatalf("analyze after unlock: %v", err)
	}
}

func TestBatchScoresAcrossProjects(t *testing.T) {
	objects, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("content store: %v", err)
	}
	cat := catalog.NewMemoryStore()
	ctx := context.Background()

	mkProject := func(id string, files map[string]string) {
		project := &catalog.Project{ID: id, Name: id, RelPath: id, Role: "Unknown"}
		if err := cat.CreateProject(ctx, project); err != nil {
			t.Fatalf("create: %v", err)
		}
		for rel, content := range files {
			hash, _ := objects.Put([]byte(content))
			cat.PutContentObject(ctx, &catalog.ContentObject{Hash: hash, Size: int64(len(content))})
			cat.UpsertFileEntry(ctx, &catalog.FileEntry{ProjectID: id, RelPath: rel, ContentHash: hash})
		}
	}
	mkProject("big", map[string]string{
		"a.py": "def a() -> None: ...\n", "b.py": "def b() -> None: ...\n",
		"c.py": "def c() -> None: ...\n", "requirements.txt": "flask\n",
	})
	mkProject("small", map[string]string{"x.py": "def x(): ...\n"})

	pipeline := NewPipeline(cat, objects, consent.NewGate(cat), gitlog.Identity{}, WithGitCapability(&spyGit{}), WithWorkers(2))
	results, err := pipeline.AnalyzeBatch(ctx, []string{"big", "small"}, false)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	ranks := map[int]bool{}
	for _, a := range results {
		if ranks[a.ImportanceRank] {
			t.Fatalf("duplicate rank %d", a.ImportanceRank)
		}
		ranks[a.ImportanceRank] = true
	}
	if !ranks[1] || !ranks[2] {
		t.Fatalf("ranks must be exactly {1..n}: %v", ranks)
	}
}
