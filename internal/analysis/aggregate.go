package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zip2job/zip2job/internal/catalog"
	"github.com/zip2job/zip2job/internal/common"
	"github.com/zip2job/zip2job/internal/consent"
	"github.com/zip2job/zip2job/internal/gitlog"
	"github.com/zip2job/zip2job/internal/ingest"
	"github.com/zip2job/zip2job/internal/store"
)

// ErrConflict is returned when a project is already being analysed. Maps
// to HTTP 409.
var ErrConflict = errors.New("analysis: project analysis already in progress")

// analysisItemKind is the generated_items kind under which the cached
// ProjectAnalysis payload is stored.
const analysisItemKind = "analysis"

// Pipeline orchestrates a single project end-to-end and batches across
// projects. Stages run in a fixed order; each stage reads the outputs of
// the previous ones and never re-walks files it was already given.
type Pipeline struct {
	catalog  catalog.Store
	objects  *store.ContentStore
	git      gitlog.Capability
	registry *Registry
	gate     *consent.Gate
	aug      Augmenter
	user     gitlog.Identity
	workers  int

	mu    sync.Mutex
	locks map[string]struct{}
}

// Option mutates pipeline construction.
type Option func(*Pipeline)

// WithAugmenter installs the LLM-backed skill augmenter. It is consulted
// only when the consent gate allows outbound calls.
func WithAugmenter(aug Augmenter) Option {
	return func(p *Pipeline) { p.aug = aug }
}

// WithWorkers bounds batch parallelism. The default of 1 keeps batches
// sequential.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithGitCapability substitutes the Git implementation, used by tests to
// spy on subprocess activity.
func WithGitCapability(git gitlog.Capability) Option {
	return func(p *Pipeline) { p.git = git }
}

// NewPipeline wires the analysis orchestrator.
func NewPipeline(cat catalog.Store, objects *store.ContentStore, gate *consent.Gate, user gitlog.Identity, opts ...Option) *Pipeline {
	p := &Pipeline{
		catalog:  cat,
		objects:  objects,
		git:      gitlog.NewCLI(),
		registry: NewRegistry(),
		gate:     gate,
		user:     user,
		workers:  1,
		locks:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// tryLock takes the per-project advisory lock without blocking.
func (p *Pipeline) tryLock(projectID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, held := p.locks[projectID]; held {
		return false
	}
	p.locks[projectID] = struct{}{}
	return true
}

func (p *Pipeline) unlock(projectID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.locks, projectID)
}

// AnalyzeProject runs the full pipeline for one project and persists the
// outcome. With force=false an unchanged fingerprint short-circuits to the
// cached analysis without any Git or LLM I/O.
func (p *Pipeline) AnalyzeProject(ctx context.Context, projectID string, force bool) (*ProjectAnalysis, error) {
	results, err := p.AnalyzeBatch(ctx, []string{projectID}, force)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// AnalyzeBatch analyses a set of projects, scores them against each other,
// and persists every outcome. An analyser failure degrades that project to
// the generic path rather than aborting the batch. Lock contention, or an
// error while loading a project from the catalog or materialising its
// files, aborts the whole batch.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, projectIDs []string, force bool) ([]*ProjectAnalysis, error) {
	logger := common.Logger()

	for _, id := range projectIDs {
		if !p.tryLock(id) {
			for _, held := range projectIDs {
				if held == id {
					break
				}
				p.unlock(held)
			}
			return nil, fmt.Errorf("%w: %s", ErrConflict, id)
		}
	}
	defer func() {
		for _, id := range projectIDs {
			p.unlock(id)
		}
	}()

	ignore := ingest.NewMatcher(p.gate.IgnorePatterns(ctx))

	results := make([]*ProjectAnalysis, len(projectIDs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.workers)
	for i, id := range projectIDs {
		i, id := i, id
		group.Go(func() error {
			analysis, err := p.analyzeOne(groupCtx, id, force, ignore)
			if err != nil {
				return err
			}
			results[i] = analysis
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Scoring spans the whole batch; cached entries keep their stored
	// score so a fingerprint skip does not reshuffle the ranking.
	var fresh []*ProjectAnalysis
	for _, a := range results {
		if !a.Cached {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) > 0 {
		cfg, err := p.catalog.GetScoreConfig(ctx)
		if err != nil {
			cfg = catalog.DefaultScoreConfig()
		}
		Score(fresh, cfg)
	}

	for _, a := range fresh {
		if err := p.persist(ctx, a); err != nil {
			logger.Error("analysis: persist failed", "project", a.ProjectID, "error", err)
			a.Diagnostics = append(a.Diagnostics, "persist failed: "+err.Error())
		}
	}
	return results, nil
}

// analyzeOne runs C4–C7 for a single project.
func (p *Pipeline) analyzeOne(ctx context.Context, projectID string, force bool, ignore *ingest.Matcher) (*ProjectAnalysis, error) {
	logger := common.Logger()

	project, err := p.catalog.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	entries, err := p.catalog.ListFileEntries(ctx, projectID)
	if err != nil {
		return nil, err
	}
	refs := make([]store.FileRef, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, store.FileRef{Path: e.RelPath, Hash: e.ContentHash})
	}
	fingerprint := store.Fingerprint(refs)

	if !force && fingerprint == project.Fingerprint && project.Fingerprint != "" {
		if cached := p.loadCached(ctx, projectID); cached != nil {
			logger.Debug("analysis: fingerprint unchanged, returning cached analysis", "project", projectID)
			cached.Cached = true
			return cached, nil
		}
	}

	scratch, err := os.MkdirTemp("", "zip2job-analysis-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)
	if err := p.objects.Materialize(scratch, refs); err != nil {
		return nil, err
	}

	analysis := &ProjectAnalysis{
		ProjectID:   projectID,
		ProjectPath: project.RelPath,
		Role:        gitlog.RoleUnknown,
		Fingerprint: fingerprint,
	}

	// C4: language and framework.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	analysis.Language, analysis.Framework = Detect(scratch, ignore)

	// Shared source walk feeding C5 and C6.
	sources := CollectSources(scratch, ignore)

	// C7 runs before C5 so practice detection can read commit subjects.
	var commits []gitlog.Commit
	if gitlog.IsRepo(scratch) {
		commits, err = p.git.Log(ctx, scratch)
		if err != nil {
			if errors.Is(err, gitlog.ErrNoRepository) {
				analysis.Diagnostics = append(analysis.Diagnostics, "git metadata present but unusable; analysed as non-git")
			} else {
				analysis.Diagnostics = append(analysis.Diagnostics, "git log failed: "+err.Error())
			}
			commits = nil
		}
	}

	// C5: skills, with consent-gated augmentation.
	var aug Augmenter
	if p.aug != nil && p.gate.CanUseLLM(ctx) {
		aug = p.aug
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	skills := ExtractSkills(ctx, sources, commits, aug)
	analysis.Tools = skills.Tools
	analysis.Practices = skills.Practices

	// C6: language-specific analysis with generic fallback.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := p.runAnalyzer(ctx, analysis, sources)
	analysis.CodeMetrics = CodeMetrics{
		FileCount:     report.FileCount,
		LOC:           report.TotalLOC,
		CommentLOC:    report.CommentLOC,
		FunctionCount: report.FunctionCount,
		ClassCount:    report.ClassCount,
		TestCount:     report.TestCountUnit + report.TestCountIntegration,
	}
	if analysis.Language != "" && len(report.Features) > 0 {
		analysis.LanguageSpecific = map[string]interface{}{analysis.Language: report.Features}
	}
	analysis.Summary = report.SummaryText
	analysis.report = report

	// C7: metrics and role.
	if len(commits) > 0 {
		metrics, authorStats := gitlog.ComputeMetrics(commits, p.user)
		analysis.Git = GitInfo{
			CommitCount: metrics.CommitCount,
			AuthorCount: metrics.AuthorCount,
			UserCommits: metrics.UserCommits,
		}
		if metrics.FirstCommit != nil {
			first := metrics.FirstCommit.Format(time.RFC3339)
			analysis.Git.FirstCommit = &first
		}
		if metrics.LastCommit != nil {
			last := metrics.LastCommit.Format(time.RFC3339)
			analysis.Git.LastCommit = &last
		}
		analysis.applyRole(gitlog.DetectRole(p.user, authorStats))
	}

	return analysis, nil
}

// runAnalyzer dispatches to the language variant and falls back to the
// generic path on failure, recording a diagnostic instead of aborting.
func (p *Pipeline) runAnalyzer(ctx context.Context, analysis *ProjectAnalysis, sources []SourceFile) *Report {
	variant := p.registry.ForLanguage(analysis.Language)
	if variant == nil {
		return GenericReport(ctx, sources)
	}
	report, err := variant.Analyze(ctx, sources)
	if err != nil {
		common.Logger().Warn("analysis: variant failed, using generic path",
			"project", analysis.ProjectID, "variant", variant.Name(), "error", err)
		analysis.Diagnostics = append(analysis.Diagnostics,
			fmt.Sprintf("analyzer %s failed: %v", variant.Name(), err))
		analysis.ScoreBreakdown.Diagnostic = "language analyzer degraded to generic metrics"
		return GenericReport(ctx, sources)
	}
	return report
}

// persist writes the analysis outcome back through the repository: project
// columns, per-language code analysis, skill edges by set-difference, the
// new fingerprint, and the cached payload for the skip gate.
func (p *Pipeline) persist(ctx context.Context, analysis *ProjectAnalysis) error {
	project, err := p.catalog.GetProject(ctx, analysis.ProjectID)
	if err != nil {
		return err
	}
	project.Language = analysis.Language
	project.Framework = analysis.Framework
	project.IsCollaborative = analysis.IsCollaborative
	project.Role = analysis.Role
	project.ContributionPct = analysis.ContributionPct
	project.RoleJustification = analysis.RoleJustification
	project.ImportanceScore = analysis.Score
	project.ImportanceRank = analysis.ImportanceRank
	project.Fingerprint = analysis.Fingerprint
	if analysis.Git.FirstCommit != nil {
		if t, err := time.Parse(time.RFC3339, *analysis.Git.FirstCommit); err == nil {
			project.StartDate = &t
		}
	}
	if analysis.Git.LastCommit != nil {
		if t, err := time.Parse(time.RFC3339, *analysis.Git.LastCommit); err == nil {
			project.EndDate = &t
		}
	}
	if err := p.catalog.UpdateProject(ctx, project); err != nil {
		return err
	}

	if analysis.Language != "" && analysis.report != nil {
		metrics, err := json.Marshal(analysis.report)
		if err != nil {
			metrics = []byte("{}")
		}
		record := catalog.CodeAnalysis{
			ProjectID: analysis.ProjectID,
			Language:  analysis.Language,
			Metrics:   string(metrics),
			Summary:   analysis.Summary,
		}
		if err := p.catalog.UpsertCodeAnalysis(ctx, &record); err != nil {
			return err
		}
	}

	var skillIDs []int64
	for _, tool := range analysis.Tools {
		skill, err := p.catalog.UpsertSkill(ctx, tool, "tool")
		if err != nil {
			return err
		}
		skillIDs = append(skillIDs, skill.ID)
	}
	for _, practice := range analysis.Practices {
		skill, err := p.catalog.UpsertSkill(ctx, practice, "practice")
		if err != nil {
			return err
		}
		skillIDs = append(skillIDs, skill.ID)
	}
	if err := p.catalog.SetProjectSkills(ctx, analysis.ProjectID, skillIDs); err != nil {
		return err
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		return err
	}
	item := catalog.GeneratedItem{Kind: analysisItemKind, ProjectID: analysis.ProjectID, Payload: string(payload)}
	return p.catalog.UpsertGeneratedItem(ctx, &item)
}

// loadCached restores the persisted ProjectAnalysis payload, if any.
func (p *Pipeline) loadCached(ctx context.Context, projectID string) *ProjectAnalysis {
	item, err := p.catalog.GetGeneratedItem(ctx, analysisItemKind, projectID)
	if err != nil {
		return nil
	}
	var analysis ProjectAnalysis
	if err := json.Unmarshal([]byte(item.Payload), &analysis); err != nil {
		return nil
	}
	return &analysis
}
