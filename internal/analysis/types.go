// Package analysis runs the per-project pipeline: language detection, skill
// extraction, language-specific code analysis, Git metrics and role
// detection, scoring, and aggregation into the canonical ProjectAnalysis
// record consumed by bullet generation and persistence.
package analysis

import (
	"github.com/zip2job/zip2job/internal/gitlog"
)

// CodeMetrics are the aggregate counters shared by every analyser variant.
type CodeMetrics struct {
	FileCount     int `json:"file_count"`
	LOC           int `json:"loc"`
	CommentLOC    int `json:"comment_loc"`
	FunctionCount int `json:"function_count"`
	ClassCount    int `json:"class_count"`
	TestCount     int `json:"test_count"`
}

// GitInfo is the git slice of a ProjectAnalysis.
type GitInfo struct {
	CommitCount int     `json:"commit_count"`
	AuthorCount int     `json:"author_count"`
	FirstCommit *string `json:"first_commit,omitempty"`
	LastCommit  *string `json:"last_commit,omitempty"`
	UserCommits int     `json:"user_commits"`
}

// ScoreBreakdown lists the weighted components of the importance score.
type ScoreBreakdown struct {
	Contribution float64 `json:"contribution"`
	Diversity    float64 `json:"diversity"`
	Duration     float64 `json:"duration"`
	FileCount    float64 `json:"file_count"`
	Diagnostic   string  `json:"diagnostic,omitempty"`
}

// ProjectAnalysis is the canonical aggregated view of one project. Field
// names are relied on by downstream consumers and must not change.
type ProjectAnalysis struct {
	ProjectID          string                 `json:"project_id"`
	ProjectPath        string                 `json:"project_path"`
	Language           string                 `json:"language,omitempty"`
	Framework          string                 `json:"framework,omitempty"`
	Tools              []string               `json:"tools"`
	Practices          []string               `json:"practices"`
	CodeMetrics        CodeMetrics            `json:"code_metrics"`
	LanguageSpecific   map[string]interface{} `json:"language_specific,omitempty"`
	Git                GitInfo                `json:"git"`
	ContributionPct    float64                `json:"contribution_pct"`
	Role               string                 `json:"role"`
	RoleJustification  string                 `json:"role_justification,omitempty"`
	IsCollaborative    bool                   `json:"is_collaborative"`
	Score              float64                `json:"score"`
	ImportanceRank     int                    `json:"importance_rank"`
	ScoreBreakdown     ScoreBreakdown         `json:"score_breakdown"`
	ResumeBullets      []string               `json:"resume_bullets"`
	ResumeBulletSource string                 `json:"resume_bullet_source,omitempty"`
	Diagnostics        []string               `json:"diagnostics,omitempty"`
	Summary            string                 `json:"summary,omitempty"`
	Cached             bool                   `json:"cached"`
	Fingerprint        string                 `json:"fingerprint"`

	// report keeps the raw analyser output for persistence; it is not part
	// of the wire payload.
	report *Report
}

// Report is one analyser variant's output for a project.
type Report struct {
	FileCount            int                    `json:"file_count"`
	TotalLOC             int                    `json:"total_loc"`
	CommentLOC           int                    `json:"comment_loc"`
	FunctionCount        int                    `json:"function_count"`
	ClassCount           int                    `json:"class_count"`
	TestCountUnit        int                    `json:"test_count_unit"`
	TestCountIntegration int                    `json:"test_count_integration"`
	Features             map[string]interface{} `json:"features"`
	SummaryText          string                 `json:"summary_text"`
	ParseErrors          int                    `json:"parse_errors,omitempty"`
}

// applyRole copies a role classification onto the aggregate.
func (a *ProjectAnalysis) applyRole(result gitlog.RoleResult) {
	a.Role = result.Role
	a.ContributionPct = result.ContributionPct
	a.RoleJustification = result.Justification
	a.IsCollaborative = result.IsCollaborative
}
