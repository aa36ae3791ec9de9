// Package bullets synthesises résumé bullet points from an aggregated
// project analysis. The AI path is tried first when the caller is allowed
// and able to use it; every failure degrades silently to the deterministic
// local generators.
package bullets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zip2job/zip2job/internal/analysis"
	"github.com/zip2job/zip2job/internal/common"
	"github.com/zip2job/zip2job/internal/llm"
)

// Sources reported alongside generated bullets.
const (
	SourceAI    = "ai"
	SourceLocal = "local"
)

const (
	maxBulletLength = 220
	llmDeadline     = 30 * time.Second
)

// Generator produces bullets from a ProjectAnalysis.
type Generator struct {
	provider llm.Provider
}

// NewGenerator wires a Generator. provider may be nil; generation then
// always takes the local path.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Generate returns at most maxBullets résumé bullets and the source that
// produced them. Errors never propagate to the caller: any AI failure
// returns local bullets with source "local".
func (g *Generator) Generate(ctx context.Context, a *analysis.ProjectAnalysis, maxBullets int, useAI bool) ([]string, string) {
	if maxBullets <= 0 {
		maxBullets = 6
	}
	aiAvailable := g.provider != nil && g.provider.Available()
	if useAI && aiAvailable {
		if generated, err := g.tryAI(ctx, a, maxBullets); err == nil && len(generated) > 0 {
			return generated, SourceAI
		} else if err != nil {
			common.Logger().Warn("bullets: ai generation failed, using local generator", "error", err)
		}
	}
	return LocalBullets(a, maxBullets), SourceLocal
}

func (g *Generator) tryAI(ctx context.Context, a *analysis.ProjectAnalysis, maxBullets int) ([]string, error) {
	prompt := buildPrompt(a, maxBullets)
	raw, err := g.provider.Complete(ctx, prompt, llmDeadline)
	if err != nil {
		return nil, err
	}
	parsed, err := ExtractJSONArray(raw)
	if err != nil {
		return nil, err
	}
	cleaned := sanitizeBullets(parsed, maxBullets)
	if len(cleaned) == 0 {
		return nil, ErrMalformedResponse
	}
	return cleaned, nil
}

// buildPrompt embeds a pruned form of the analysis and instructs the model
// to answer with a bare JSON array.
func buildPrompt(a *analysis.ProjectAnalysis, maxBullets int) string {
	var b strings.Builder
	b.WriteString("You are an expert resume writer. Generate concise, ATS-friendly resume bullet points for a software project.\n")
	fmt.Fprintf(&b, "Return ONLY a JSON array of at most %d strings. Each bullet is one sentence of at most %d characters, starts with a strong action verb, uses active voice, no first-person pronouns, and mentions only the technologies listed below.\n\n", maxBullets, maxBulletLength)
	fmt.Fprintf(&b, "Language: %s\n", valueOr(a.Language, "Unknown"))
	if a.Framework != "" {
		fmt.Fprintf(&b, "Framework: %s\n", a.Framework)
	}
	if len(a.Tools) > 0 {
		fmt.Fprintf(&b, "Tools: %s\n", strings.Join(a.Tools, ", "))
	}
	if len(a.Practices) > 0 {
		fmt.Fprintf(&b, "Practices: %s\n", strings.Join(a.Practices, ", "))
	}
	m := a.CodeMetrics
	fmt.Fprintf(&b, "Metrics: %d files, %d lines, %d functions, %d classes, %d tests\n",
		m.FileCount, m.LOC, m.FunctionCount, m.ClassCount, m.TestCount)
	if a.Role != "" && a.Role != "Unknown" {
		fmt.Fprintf(&b, "Role: %s (%.0f%% of commits)\n", a.Role, a.ContributionPct)
	}
	if a.IsCollaborative {
		fmt.Fprintf(&b, "Team project with %d contributors\n", a.Git.AuthorCount)
	}
	return b.String()
}

// sanitizeBullets enforces the bullet invariants: cap, length, no
// TODO/FIXME markers, and a leading verb-like word.
func sanitizeBullets(in []string, maxBullets int) []string {
	var out []string
	for _, raw := range in {
		bullet := strings.TrimSpace(raw)
		bullet = strings.TrimLeft(bullet, "-•* ")
		if bullet == "" || len(bullet) > maxBulletLength {
			continue
		}
		if strings.Contains(bullet, "TODO") || strings.Contains(bullet, "FIXME") {
			continue
		}
		first, _, _ := strings.Cut(bullet, " ")
		if first == "" || first[0] < 'A' || first[0] > 'Z' {
			continue
		}
		out = append(out, bullet)
		if len(out) == maxBullets {
			break
		}
	}
	return out
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
