package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SkillAugmenter asks the provider to spot additional tools and practices
// from a redacted file-tree summary. It satisfies the analysis package's
// Augmenter contract; a malformed reply is an error and the caller keeps
// its offline baseline.
type SkillAugmenter struct {
	provider Provider
}

// NewSkillAugmenter wraps a provider. Returns nil when the provider cannot
// complete anything, so callers can skip wiring it entirely.
func NewSkillAugmenter(provider Provider) *SkillAugmenter {
	if provider == nil || !provider.Available() {
		return nil
	}
	return &SkillAugmenter{provider: provider}
}

type skillSuggestion struct {
	Tools     []string `json:"tools"`
	Practices []string `json:"practices"`
}

// SuggestSkills sends the tree summary with a schema-constrained prompt and
// merges nothing itself; it only reports what the model saw.
func (s *SkillAugmenter) SuggestSkills(ctx context.Context, treeSummary string) ([]string, []string, error) {
	prompt := "Identify developer tools and engineering practices evidenced by this project file listing. " +
		`Respond with ONLY a JSON object of the form {"tools": ["..."], "practices": ["..."]}. ` +
		"Name only what the listing supports; do not guess.\n\nFiles:\n" + treeSummary
	raw, err := s.provider.Complete(ctx, prompt, 20*time.Second)
	if err != nil {
		return nil, nil, err
	}
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, nil, fmt.Errorf("no json object in response")
	}
	var suggestion skillSuggestion
	if err := json.Unmarshal([]byte(raw[start:end+1]), &suggestion); err != nil {
		return nil, nil, fmt.Errorf("decode suggestion: %w", err)
	}
	return suggestion.Tools, suggestion.Practices, nil
}
