// Package consent is the sole authority on whether the pipeline may make
// outbound LLM calls and which paths are excluded from ingestion. Every
// component that contemplates an external call goes through the gate.
package consent

import (
	"context"

	"github.com/zip2job/zip2job/internal/catalog"
)

// Default ignore patterns applied when no consent record customises them.
// These mirror the usual dependency, build-output and VCS directories.
var defaultIgnorePatterns = []string{
	".git", ".svn", ".hg",
	"node_modules", "vendor", "bower_components",
	"venv", ".venv", "__pycache__", ".pytest_cache", ".mypy_cache", ".ruff_cache", ".tox",
	".idea", ".vscode", ".vs",
	"build", "dist", "out", "target", ".next", ".nuxt",
	".cache", "coverage", ".nyc_output",
	".DS_Store", "Thumbs.db",
}

// Gate reads the latest consent record and answers policy questions.
// Absence of a record denies external calls.
type Gate struct {
	store catalog.Store
}

// NewGate builds a Gate over the catalog.
func NewGate(store catalog.Store) *Gate {
	return &Gate{store: store}
}

// CanUseLLM reports whether outbound LLM calls are permitted.
func (g *Gate) CanUseLLM(ctx context.Context) bool {
	record, err := g.store.LatestConsent(ctx)
	if err != nil {
		return false
	}
	return record.AllowLLM
}

// ModelAllowed reports whether a specific model may be used. An empty
// allow-list permits any model once LLM use itself is consented.
func (g *Gate) ModelAllowed(ctx context.Context, model string) bool {
	record, err := g.store.LatestConsent(ctx)
	if err != nil || !record.AllowLLM {
		return false
	}
	if len(record.AllowedModels) == 0 {
		return true
	}
	for _, allowed := range record.AllowedModels {
		if allowed == model {
			return true
		}
	}
	return false
}

// IgnorePatterns returns the active ignore globs, falling back to the
// defaults when no record exists or the record has none.
func (g *Gate) IgnorePatterns(ctx context.Context) []string {
	record, err := g.store.LatestConsent(ctx)
	if err != nil || len(record.IgnorePatterns) == 0 {
		return append([]string(nil), defaultIgnorePatterns...)
	}
	return append([]string(nil), record.IgnorePatterns...)
}

// DefaultIgnorePatterns exposes the built-in pattern list.
func DefaultIgnorePatterns() []string {
	return append([]string(nil), defaultIgnorePatterns...)
}
