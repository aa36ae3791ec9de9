package analysis

import (
	"sort"
	"time"

	"github.com/zip2job/zip2job/internal/catalog"
)

// scoreInput is the per-project signal vector the scorer consumes.
type scoreInput struct {
	contribution float64 // 0..100
	diversity    float64 // |tools| + |practices|
	durationDays float64
	fileCount    float64
}

func scoreInputFor(a *ProjectAnalysis) scoreInput {
	in := scoreInput{
		contribution: a.ContributionPct,
		diversity:    float64(len(a.Tools) + len(a.Practices)),
		fileCount:    float64(a.CodeMetrics.FileCount),
	}
	if !a.IsCollaborative && a.Git.CommitCount > 0 {
		in.contribution = 100
	}
	if a.Git.FirstCommit != nil && a.Git.LastCommit != nil {
		first, err1 := time.Parse(time.RFC3339, *a.Git.FirstCommit)
		last, err2 := time.Parse(time.RFC3339, *a.Git.LastCommit)
		if err1 == nil && err2 == nil && last.After(first) {
			in.durationDays = last.Sub(first).Hours() / 24
		}
	}
	return in
}

// Score computes the composite importance score for every project in the
// batch and assigns ranks. Normalisation is min-max over the batch, so a
// score is only meaningful relative to the projects ranked together.
// Deterministic given inputs.
func Score(batch []*ProjectAnalysis, cfg catalog.ScoreConfig) {
	if len(batch) == 0 {
		return
	}
	weightSum := cfg.Contribution + cfg.Diversity + cfg.Duration + cfg.FileCount
	if weightSum <= 0 {
		cfg = catalog.DefaultScoreConfig()
		weightSum = cfg.Contribution + cfg.Diversity + cfg.Duration + cfg.FileCount
	}

	inputs := make([]scoreInput, len(batch))
	for i, a := range batch {
		inputs[i] = scoreInputFor(a)
	}
	normContribution := minMax(inputs, func(in scoreInput) float64 { return in.contribution })
	normDiversity := minMax(inputs, func(in scoreInput) float64 { return in.diversity })
	normDuration := minMax(inputs, func(in scoreInput) float64 { return in.durationDays })
	normFiles := minMax(inputs, func(in scoreInput) float64 { return in.fileCount })

	for i, a := range batch {
		breakdown := ScoreBreakdown{
			Contribution: cfg.Contribution / weightSum * normContribution[i] * 100,
			Diversity:    cfg.Diversity / weightSum * normDiversity[i] * 100,
			Duration:     cfg.Duration / weightSum * normDuration[i] * 100,
			FileCount:    cfg.FileCount / weightSum * normFiles[i] * 100,
		}
		breakdown.Diagnostic = a.ScoreBreakdown.Diagnostic
		a.ScoreBreakdown = breakdown
		a.Score = breakdown.Contribution + breakdown.Diversity + breakdown.Duration + breakdown.FileCount
	}

	Rank(batch)
}

// Rank assigns importance ranks starting at 1, ties broken by higher file
// count, then more recent last commit, then lexicographic project path.
func Rank(batch []*ProjectAnalysis) {
	order := make([]*ProjectAnalysis, len(batch))
	copy(order, batch)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Score != order[j].Score {
			return order[i].Score > order[j].Score
		}
		if order[i].CodeMetrics.FileCount != order[j].CodeMetrics.FileCount {
			return order[i].CodeMetrics.FileCount > order[j].CodeMetrics.FileCount
		}
		li, lj := lastCommitTime(order[i]), lastCommitTime(order[j])
		if !li.Equal(lj) {
			return li.After(lj)
		}
		return order[i].ProjectPath < order[j].ProjectPath
	})
	for rank, a := range order {
		a.ImportanceRank = rank + 1
	}
}

func lastCommitTime(a *ProjectAnalysis) time.Time {
	if a.Git.LastCommit == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, *a.Git.LastCommit)
	if err != nil {
		return time.Time{}
	}
	return t
}

// minMax normalises a component over the batch into [0, 1]. A constant
// component normalises to 1 so it neither rewards nor punishes anyone.
func minMax(inputs []scoreInput, get func(scoreInput) float64) []float64 {
	lo, hi := get(inputs[0]), get(inputs[0])
	for _, in := range inputs[1:] {
		v := get(in)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, len(inputs))
	for i, in := range inputs {
		if hi == lo {
			out[i] = 1
			continue
		}
		out[i] = (get(in) - lo) / (hi - lo)
	}
	return out
}
