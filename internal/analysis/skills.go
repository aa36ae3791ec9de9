package analysis

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/zip2job/zip2job/internal/common"
	"github.com/zip2job/zip2job/internal/gitlog"
	"github.com/zip2job/zip2job/internal/ingest"
)

// SkillSet is the deduplicated outcome of skill extraction.
type SkillSet struct {
	Tools     []string `json:"tools"`
	Practices []string `json:"practices"`
}

// Augmenter is the optional LLM-backed skill source. It only ever runs
// behind the consent gate; a failure or malformed response is discarded
// silently and the baseline stands.
type Augmenter interface {
	SuggestSkills(ctx context.Context, treeSummary string) (tools []string, practices []string, err error)
}

// toolFileNames maps exact (lowercased) file names to tool skills.
var toolFileNames = map[string]string{
	"dockerfile":          "Docker",
	"docker-compose.yml":  "Docker",
	"docker-compose.yaml": "Docker",
	".dockerignore":       "Docker",
	"package.json":        "npm",
	"package-lock.json":   "npm",
	"yarn.lock":           "yarn",
	"pnpm-lock.yaml":      "pnpm",
	"poetry.lock":         "Poetry",
	"uv.lock":             "uv",
	"requirements.txt":    "pip",
	"cargo.toml":          "Cargo",
	"go.mod":              "Go Modules",
	"composer.json":       "Composer",
	"gemfile":             "Bundler",
	"pom.xml":             "Maven",
	"build.gradle":        "Gradle",
	"build.gradle.kts":    "Gradle",
	"makefile":            "Make",
	"cmakelists.txt":      "CMake",
	"pytest.ini":          "PyTest",
	"jest.config.js":      "Jest",
	"jest.config.ts":      "Jest",
	"vitest.config.ts":    "Vitest",
	"cypress.config.js":   "Cypress",
	"cypress.config.ts":   "Cypress",
	"webpack.config.js":   "Webpack",
	"vite.config.js":      "Vite",
	"vite.config.ts":      "Vite",
	"ruff.toml":           "Ruff",
	".pre-commit-config.yaml": "pre-commit",
	"jenkinsfile":           "Jenkins",
	".travis.yml":           "Travis CI",
	"azure-pipelines.yml":   "Azure Pipelines",
	".gitlab-ci.yml":        "GitLab CI",
	"schema.prisma":         "Prisma",
	"alembic.ini":           "Alembic",
	"serverless.yml":        "Serverless Framework",
	"vercel.json":           "Vercel",
	"netlify.toml":          "Netlify",
	"next.config.js":        "Next.js",
	"nuxt.config.ts":        "Nuxt",
	"svelte.config.js":      "SvelteKit",
	"tauri.conf.json":       "Tauri",
	"turbo.json":            "Turborepo",
	"lerna.json":            "Lerna",
}

// toolSuffixes maps file suffixes to tool skills.
var toolSuffixes = map[string]string{
	".sql":      "SQL",
	".tf":       "Terraform",
	".proto":    "gRPC",
	".graphql":  "GraphQL",
	"_test.go":  "Go testing",
}

// linterConfigNames are configuration files indicating enforced code
// quality.
var linterConfigNames = map[string]struct{}{
	".flake8": {}, "pylintrc": {}, ".pylintrc": {}, "mypy.ini": {}, "ruff.toml": {},
	".eslintrc": {}, ".eslintrc.js": {}, ".eslintrc.json": {}, ".prettierrc": {},
	"prettier.config.js": {}, ".rubocop.yml": {}, "checkstyle.xml": {}, ".golangci.yml": {},
}

var conventionalPrefixes = []string{
	"feat", "fix", "chore", "docs", "refactor", "test", "ci", "build", "perf", "style",
}

// ExtractSkills runs the always-on offline baseline: tool detection from
// manifests, lockfiles, CI configs and container descriptors, and
// evidence-based practice detection from tree layout and commit history.
// When aug is non-nil its suggestions are merged in; aug must already sit
// behind the consent gate.
func ExtractSkills(ctx context.Context, files []SourceFile, commits []gitlog.Commit, aug Augmenter) SkillSet {
	tools := map[string]struct{}{}
	practices := map[string]struct{}{}

	docFiles := 0
	hasTestDir := false
	hasCI := false
	hasLinter := false

	for _, file := range files {
		lower := strings.ToLower(file.Path)
		base := path.Base(lower)

		if tool, ok := toolFileNames[base]; ok {
			tools[tool] = struct{}{}
		}
		for suffix, tool := range toolSuffixes {
			if strings.HasSuffix(lower, suffix) {
				tools[tool] = struct{}{}
			}
		}
		if strings.Contains(lower, ".github/workflows/") {
			tools["GitHub Actions"] = struct{}{}
			hasCI = true
		}
		if base == ".gitlab-ci.yml" || base == "jenkinsfile" || base == ".travis.yml" || base == "azure-pipelines.yml" {
			hasCI = true
		}
		if _, ok := linterConfigNames[base]; ok {
			hasLinter = true
		}
		if base == "dockerfile" || strings.HasPrefix(base, "docker-compose") {
			tools["Docker"] = struct{}{}
		}

		if isTest, _ := isTestPath(file.Path); isTest {
			hasTestDir = true
		}
		if ingest.IsDoc(file.Path) {
			docFiles++
		}
		switch base {
		case ".gitignore", ".gitattributes":
			practices["Version Control (Git)"] = struct{}{}
		case "openapi.yaml", "openapi.yml", "swagger.json", "swagger.yaml":
			practices["API Design"] = struct{}{}
		case ".env.example", ".nvmrc", ".tool-versions":
			practices["Environment Management"] = struct{}{}
		}
		if strings.Contains(lower, "/api/") || strings.HasPrefix(lower, "api/") {
			practices["API Design"] = struct{}{}
		}
		if strings.HasPrefix(lower, "src/") || strings.Contains(lower, "/src/") ||
			strings.Contains(lower, "internal/") || strings.Contains(lower, "modules/") {
			practices["Modular Architecture"] = struct{}{}
		}
	}

	if hasTestDir {
		practices["Automated Testing"] = struct{}{}
	}
	if hasCI {
		practices["CI/CD"] = struct{}{}
	}
	if hasLinter {
		practices["Code Quality Enforcement"] = struct{}{}
	}
	if len(files) > 0 && float64(docFiles)/float64(len(files)) >= 0.1 {
		practices["Documentation Discipline"] = struct{}{}
	}

	if len(commits) > 0 {
		conventional := 0
		reviews := 0
		for _, commit := range commits {
			subject := strings.ToLower(strings.TrimSpace(commit.Subject))
			for _, prefix := range conventionalPrefixes {
				if strings.HasPrefix(subject, prefix+":") || strings.HasPrefix(subject, prefix+"(") {
					conventional++
					break
				}
			}
			if commit.IsMerge && (strings.HasPrefix(subject, "merge pull request") || strings.HasPrefix(subject, "merge branch")) {
				reviews++
			}
		}
		if float64(conventional)/float64(len(commits)) >= 0.3 {
			practices["Conventional Commits"] = struct{}{}
		}
		if reviews > 0 {
			practices["Code Review"] = struct{}{}
		}
		practices["Version Control (Git)"] = struct{}{}
	}

	if aug != nil {
		augTools, augPractices, err := aug.SuggestSkills(ctx, summarizeTree(files))
		if err != nil {
			common.Logger().Warn("skills: augmentation discarded", "error", err)
		} else {
			for _, t := range augTools {
				if t = strings.TrimSpace(t); t != "" {
					tools[t] = struct{}{}
				}
			}
			for _, p := range augPractices {
				if p = strings.TrimSpace(p); p != "" {
					practices[p] = struct{}{}
				}
			}
		}
	}

	return SkillSet{Tools: sortedKeys(tools), Practices: sortedKeys(practices)}
}

// summarizeTree builds the redacted file-tree summary sent to the LLM:
// relative paths only, capped, no file contents beyond manifest names.
func summarizeTree(files []SourceFile) string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	sort.Strings(paths)
	if len(paths) > 200 {
		paths = paths[:200]
	}
	return strings.Join(paths, "\n")
}
