package analysis

import (
	"context"
	"errors"
)

// ErrAnalyzerFailed marks a catastrophic failure of a language variant.
// The pipeline falls back to the generic path without aborting the project.
var ErrAnalyzerFailed = errors.New("analysis: analyzer failed")

// Analyzer is one language-specific code analyser. Variants are registered
// by language string; adding a language means registering, not editing
// existing variants.
type Analyzer interface {
	Name() string
	Match(language string) bool
	Analyze(ctx context.Context, files []SourceFile) (*Report, error)
}

// Registry resolves analysers by detected language.
type Registry struct {
	analyzers []Analyzer
}

// NewRegistry returns a registry with the built-in variants.
func NewRegistry() *Registry {
	return &Registry{analyzers: defaultAnalyzers()}
}

func defaultAnalyzers() []Analyzer {
	return []Analyzer{
		&pythonAnalyzer{},
		&jsAnalyzer{},
		&javaAnalyzer{},
		&cppAnalyzer{},
	}
}

// Register prepends a variant. Later registrations win on overlap.
func (r *Registry) Register(a Analyzer) {
	r.analyzers = append([]Analyzer{a}, r.analyzers...)
}

// ForLanguage returns the variant claiming the language, or nil when only
// the generic path applies.
func (r *Registry) ForLanguage(language string) Analyzer {
	if language == "" {
		return nil
	}
	for _, a := range r.analyzers {
		if a.Match(language) {
			return a
		}
	}
	return nil
}
