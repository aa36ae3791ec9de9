package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zip2job/zip2job/internal/gitlog"
)

func sourceFiles(paths ...string) []SourceFile {
	out := make([]SourceFile, 0, len(paths))
	for _, p := range paths {
		out = append(out, SourceFile{Path: p, Data: []byte("x")})
	}
	return out
}

func hasSkill(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}

func TestExtractSkillsBaselineTools(t *testing.T) {
	files := sourceFiles(
		"Dockerfile",
		"docker-compose.yml",
		"requirements.txt",
		".github/workflows/ci.yml",
		"schema/init.sql",
		"src/app/main.py",
		"tests/test_main.py",
		".gitignore",
	)
	skills := ExtractSkills(context.Background(), files, nil, nil)
	for _, tool := range []string{"Docker", "pip", "GitHub Actions", "SQL"} {
		if !hasSkill(skills.Tools, tool) {
			t.Fatalf("missing tool %q in %v", tool, skills.Tools)
		}
	}
	for _, practice := range []string{"Automated Testing", "CI/CD", "Version Control (Git)", "Modular Architecture"} {
		if !hasSkill(skills.Practices, practice) {
			t.Fatalf("missing practice %q in %v", practice, skills.Practices)
		}
	}
}

func TestExtractSkillsCommitPractices(t *testing.T) {
	now := time.Now().UTC()
	commits := []gitlog.Commit{
		{SHA: "1", Subject: "feat: add ingest", Timestamp: now},
		{SHA: "2", Subject: "fix(api): handle nil", Timestamp: now},
		{SHA: "3", Subject: "docs: readme", Timestamp: now},
		{SHA: "4", Subject: "Merge pull request #12 from peer/branch", IsMerge: true, Timestamp: now},
	}
	skills := ExtractSkills(context.Background(), sourceFiles("main.py"), commits, nil)
	if !hasSkill(skills.Practices, "Conventional Commits") {
		t.Fatalf("conventional commit ratio not detected: %v", skills.Practices)
	}
	if !hasSkill(skills.Practices, "Code Review") {
		t.Fatalf("merge-based review signal not detected: %v", skills.Practices)
	}
}

type failingAugmenter struct{}

func (f failingAugmenter) SuggestSkills(ctx context.Context, summary string) ([]string, []string, error) {
	return nil, nil, errors.New("boom")
}

func TestExtractSkillsDiscardsFailedAugmentation(t *testing.T) {
	files := sourceFiles("Dockerfile", "main.py")
	baseline := ExtractSkills(context.Background(), files, nil, nil)
	augmented := ExtractSkills(context.Background(), files, nil, failingAugmenter{})
	if len(augmented.Tools) != len(baseline.Tools) {
		t.Fatalf("failed augmentation must leave the baseline untouched: %v vs %v", augmented.Tools, baseline.Tools)
	}
}

func TestExtractSkillsDocumentationDensity(t *testing.T) {
	files := sourceFiles("README.md", "docs/guide.md", "main.py", "util.py")
	skills := ExtractSkills(context.Background(), files, nil, nil)
	if !hasSkill(skills.Practices, "Documentation Discipline") {
		t.Fatalf("doc density of 50%% should register: %v", skills.Practices)
	}
}
