package ingest

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zip2job/zip2job/internal/catalog"
	"github.com/zip2job/zip2job/internal/consent"
	"github.com/zip2job/zip2job/internal/store"
)

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func newIngestor(t *testing.T) (*Ingestor, catalog.Store) {
	t.Helper()
	objects, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("content store: %v", err)
	}
	cat := catalog.NewMemoryStore()
	return NewIngestor(objects, cat, 64<<20), cat
}

func defaultMatcher() *Matcher {
	return NewMatcher(consent.DefaultIgnorePatterns())
}

func TestSingleProjectIngest(t *testing.T) {
	ing, cat := newIngestor(t)
	zipPath := writeZip(t, map[string]string{
		"demo/main.py":   "print('hello world, one hundred bytes of python')\n",
		"demo/README.md": "# demo\nforty bytes of documentation here\n",
	})
	result, err := ing.IngestArchive(context.Background(), zipPath, nil, defaultMatcher())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(result.Projects) != 1 {
		t.Fatalf("expected one project, got %d", len(result.Projects))
	}
	project := result.Projects[0].Project
	if project.Name != "demo" {
		t.Fatalf("project name: %q", project.Name)
	}
	if project.FileCount != 2 {
		t.Fatalf("file count: %d", project.FileCount)
	}
	if project.HasGit {
		t.Fatalf("no .git present, has_git must be false")
	}
	if project.Role != "Unknown" {
		t.Fatalf("fresh project role: %q", project.Role)
	}
	entries, err := cat.ListFileEntries(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 file entries, got %d", len(entries))
	}
}

func TestIncrementalMergeDedupes(t *testing.T) {
	ing, cat := newIngestor(t)
	ctx := context.Background()

	first := writeZip(t, map[string]string{
		"demo/main.py": "print('main')\n",
		"demo/util.py": "def util(): pass\n",
	})
	res1, err := ing.IngestArchive(ctx, first, nil, defaultMatcher())
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	projectID := res1.Projects[0].Project.ID

	second := writeZip(t, map[string]string{
		"demo/main.py": "print('main')\n", // unchanged
		"demo/api.py":  "def api(): pass\n",
	})
	res2, err := ing.IngestArchive(ctx, second, map[string]string{"demo": projectID}, defaultMatcher())
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	pr := res2.Projects[0]
	if !pr.Merged {
		t.Fatalf("expected merge into existing project")
	}
	if pr.Added != 1 || pr.Modified != 0 || pr.Deduped != 1 {
		t.Fatalf("added/modified/deduped = %d/%d/%d", pr.Added, pr.Modified, pr.Deduped)
	}

	entries, err := cat.ListFileEntries(ctx, projectID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 file entries after merge, got %d", len(entries))
	}
	sources, err := cat.ListArtifactSources(ctx, projectID)
	if err != nil {
		t.Fatalf("list sources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected two artifact source rows, got %d", len(sources))
	}
	if sources[1].ArtifactCount != 1 {
		t.Fatalf("incremental artifact count should be 1, got %d", sources[1].ArtifactCount)
	}
}

func TestIngestTwiceIsIdempotent(t *testing.T) {
	ing, cat := newIngestor(t)
	ctx := context.Background()
	files := map[string]string{
		"demo/main.py": "print('main')\n",
		"demo/util.py": "def util(): pass\n",
	}
	res1, err := ing.IngestArchive(ctx, writeZip(t, files), nil, defaultMatcher())
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	projectID := res1.Projects[0].Project.ID
	before, _ := cat.ListFileEntries(ctx, projectID)

	res2, err := ing.IngestArchive(ctx, writeZip(t, files), map[string]string{"demo": projectID}, defaultMatcher())
	if err != nil {
		t.Fatalf("replay ingest: %v", err)
	}
	if res2.Projects[0].Added != 0 || res2.Projects[0].Modified != 0 {
		t.Fatalf("replay must be a no-op, got added=%d modified=%d", res2.Projects[0].Added, res2.Projects[0].Modified)
	}
	after, _ := cat.ListFileEntries(ctx, projectID)
	if len(before) != len(after) {
		t.Fatalf("file entry count changed on replay: %d -> %d", len(before), len(after))
	}
	project, _ := cat.GetProject(ctx, projectID)
	if project.FileCount != 2 {
		t.Fatalf("file count after replay: %d", project.FileCount)
	}
}

func TestLatestWinsOnModifiedFile(t *testing.T) {
	ing, cat := newIngestor(t)
	ctx := context.Background()
	res1, err := ing.IngestArchive(ctx, writeZip(t, map[string]string{"demo/main.py": "v1\n"}), nil, defaultMatcher())
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	projectID := res1.Projects[0].Project.ID
	res2, err := ing.IngestArchive(ctx, writeZip(t, map[string]string{"demo/main.py": "v2\n"}),
		map[string]string{"demo": projectID}, defaultMatcher())
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if res2.Projects[0].Modified != 1 {
		t.Fatalf("expected one modified entry, got %d", res2.Projects[0].Modified)
	}
	entries, _ := cat.ListFileEntries(ctx, projectID)
	if len(entries) != 1 {
		t.Fatalf("expected a single entry, got %d", len(entries))
	}
	if entries[0].ContentHash != store.HashBytes([]byte("v2\n")) {
		t.Fatalf("latest upload must win")
	}
}

func TestInvalidArchiveIsFatal(t *testing.T) {
	ing, cat := newIngestor(t)
	bogus := filepath.Join(t.TempDir(), "bogus.zip")
	if err := os.WriteFile(bogus, []byte("this is not a zip"), 0o644); err != nil {
		t.Fatalf("write bogus: %v", err)
	}
	_, err := ing.IngestArchive(context.Background(), bogus, nil, defaultMatcher())
	if !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("expected ErrInvalidArchive, got %v", err)
	}
	projects, _ := cat.ListProjects(context.Background())
	if len(projects) != 0 {
		t.Fatalf("no partial rows may remain after a rejected archive")
	}
}

func TestArchiveTooLarge(t *testing.T) {
	objects, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("content store: %v", err)
	}
	ing := NewIngestor(objects, catalog.NewMemoryStore(), 16)
	zipPath := writeZip(t, map[string]string{"demo/big.txt": "this payload is comfortably larger than sixteen bytes"})
	_, err = ing.IngestArchive(context.Background(), zipPath, nil, defaultMatcher())
	if !errors.Is(err, ErrArchiveTooLarge) {
		t.Fatalf("expected ErrArchiveTooLarge, got %v", err)
	}
}

func TestAmbiguousMappingRejected(t *testing.T) {
	ing, cat := newIngestor(t)
	ctx := context.Background()
	res, err := ing.IngestArchive(ctx, writeZip(t, map[string]string{"app/main.py": "x\n"}), nil, defaultMatcher())
	if err != nil {
		t.Fatalf("seed ingest: %v", err)
	}
	projectID := res.Projects[0].Project.ID

	// Two candidates named "app" under different parents plus a mapping for
	// the shared name cannot be applied deterministically.
	zipPath := writeZip(t, map[string]string{
		"one/app/package.json": "{}",
		"one/app/index.js":     "console.log(1)\n",
		"two/app/package.json": "{}",
		"two/app/index.js":     "console.log(2)\n",
	})
	_, err = ing.IngestArchive(ctx, zipPath, map[string]string{"app": projectID}, defaultMatcher())
	if !errors.Is(err, ErrAmbiguousMapping) {
		t.Fatalf("expected ErrAmbiguousMapping, got %v", err)
	}
	sources, _ := cat.ListArtifactSources(ctx, projectID)
	if len(sources) != 1 {
		t.Fatalf("ambiguous ingest must not append sources, got %d", len(sources))
	}
}

func TestMappingToMissingProject(t *testing.T) {
	ing, _ := newIngestor(t)
	zipPath := writeZip(t, map[string]string{"demo/main.py": "x\n"})
	_, err := ing.IngestArchive(context.Background(), zipPath, map[string]string{"demo": "nope"}, defaultMatcher())
	if !errors.Is(err, ErrUnknownProject) {
		t.Fatalf("expected ErrUnknownProject, got %v", err)
	}
}

func TestDiscoverShadowsNestedRoots(t *testing.T) {
	entries := []Entry{
		{Path: "mono/services/api/go.mod", Data: []byte("module api\n")},
		{Path: "mono/services/api/main.go", Data: []byte("package main\n")},
		{Path: "mono/services/api/vendor/lib/go.mod", Data: []byte("module lib\n")},
		{Path: "mono/web/package.json", Data: []byte("{}")},
		{Path: "mono/web/index.js", Data: []byte("1\n")},
	}
	candidates := Discover(entries, "mono.zip")
	if len(candidates) != 2 {
		t.Fatalf("expected two projects, got %d: %+v", len(candidates), candidates)
	}
	names := map[string]int{}
	for _, c := range candidates {
		names[c.Name] = c.FileCount
	}
	if names["api"] != 3 {
		t.Fatalf("nested manifest must be shadowed by its ancestor root: %+v", names)
	}
	if names["web"] != 2 {
		t.Fatalf("web project files: %+v", names)
	}
}

func TestDiscoverGitRoot(t *testing.T) {
	entries := []Entry{
		{Path: "proj/.git/HEAD", Data: []byte("ref: refs/heads/main\n")},
		{Path: "proj/src/a.c", Data: []byte("int main(){}\n")},
	}
	candidates := Discover(entries, "a.zip")
	if len(candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if !c.HasGit {
		t.Fatalf("git metadata not detected")
	}
	if c.FileCount != 1 {
		t.Fatalf(".git internals must not count as project files, got %d", c.FileCount)
	}
}

func TestDiscoverLooseDocsBecomePseudoProject(t *testing.T) {
	entries := []Entry{
		{Path: "notes.md", Data: []byte("# notes\n")},
		{Path: "app/package.json", Data: []byte("{}")},
		{Path: "app/index.js", Data: []byte("1\n")},
	}
	candidates := Discover(entries, "work.zip")
	var docs *Candidate
	for i := range candidates {
		if candidates[i].Name == "docs" {
			docs = &candidates[i]
		}
	}
	if docs == nil {
		t.Fatalf("loose docs should form a pseudo-project: %+v", candidates)
	}
	if docs.FileCount != 1 {
		t.Fatalf("docs file count: %d", docs.FileCount)
	}
}

func TestMatcherPatterns(t *testing.T) {
	m := NewMatcher([]string{"node_modules", "*.log", "build/output"})
	cases := map[string]bool{
		"src/node_modules/lib/index.js": true,
		"app/debug.log":                 true,
		"build/output":                  true,
		"src/main.py":                   false,
		"buildx/output":                 false,
	}
	for p, want := range cases {
		if got := m.Match(p); got != want {
			t.Fatalf("Match(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestIgnorePatternsExcludeFiles(t *testing.T) {
	ing, _ := newIngestor(t)
	zipPath := writeZip(t, map[string]string{
		"demo/main.py":                    "x\n",
		"demo/node_modules/pkg/index.js":  "ignored\n",
		"demo/__pycache__/main.cpython":   "ignored\n",
		"demo/.venv/lib/site-packages/x":  "ignored\n",
	})
	res, err := ing.IngestArchive(context.Background(), zipPath, nil, defaultMatcher())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.Projects[0].Project.FileCount != 1 {
		t.Fatalf("ignored paths counted: %d", res.Projects[0].Project.FileCount)
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]string{
		"src/main.py":  CategoryCode,
		"README.md":    CategoryDoc,
		"logo.png":     CategoryMedia,
		"mock.fig":     CategoryDesign,
		"data.parquet": CategoryOther,
	}
	for p, want := range cases {
		if got := Classify(p); got != want {
			t.Fatalf("Classify(%q) = %q, want %q", p, got, want)
		}
	}
}
