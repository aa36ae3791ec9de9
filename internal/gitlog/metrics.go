package gitlog

import (
	"sort"
	"strings"
	"time"
)

// Metrics summarises a project's commit history.
type Metrics struct {
	CommitCount int        `json:"commit_count"`
	AuthorCount int        `json:"author_count"`
	FirstCommit *time.Time `json:"first_commit,omitempty"`
	LastCommit  *time.Time `json:"last_commit,omitempty"`
	UserCommits int        `json:"user_commits"`
}

// Identity names the current user for authorship matching. Either field may
// be empty; matching is case-insensitive on both name and email.
type Identity struct {
	Name  string
	Email string
}

// Matches reports whether a commit author is the configured user.
func (id Identity) Matches(authorName, authorEmail string) bool {
	name := strings.ToLower(strings.TrimSpace(id.Name))
	email := strings.ToLower(strings.TrimSpace(id.Email))
	if name == "" && email == "" {
		return false
	}
	if email != "" && strings.EqualFold(strings.TrimSpace(authorEmail), email) {
		return true
	}
	if name != "" && strings.EqualFold(strings.TrimSpace(authorName), name) {
		return true
	}
	return false
}

// AuthorStat is one author's share of a history.
type AuthorStat struct {
	Name    string
	Email   string
	Commits int
}

// ComputeMetrics folds a commit list into Metrics plus a per-author
// breakdown. Authors are keyed by lowercase email when present, falling
// back to lowercase name.
func ComputeMetrics(commits []Commit, user Identity) (Metrics, []AuthorStat) {
	metrics := Metrics{CommitCount: len(commits)}
	if len(commits) == 0 {
		return metrics, nil
	}
	byAuthor := make(map[string]*AuthorStat)
	var first, last time.Time
	for _, c := range commits {
		key := strings.ToLower(strings.TrimSpace(c.AuthorEmail))
		if key == "" {
			key = strings.ToLower(strings.TrimSpace(c.AuthorName))
		}
		stat, ok := byAuthor[key]
		if !ok {
			stat = &AuthorStat{Name: c.AuthorName, Email: c.AuthorEmail}
			byAuthor[key] = stat
		}
		stat.Commits++
		if user.Matches(c.AuthorName, c.AuthorEmail) {
			metrics.UserCommits++
		}
		if first.IsZero() || c.Timestamp.Before(first) {
			first = c.Timestamp
		}
		if last.IsZero() || c.Timestamp.After(last) {
			last = c.Timestamp
		}
	}
	metrics.AuthorCount = len(byAuthor)
	metrics.FirstCommit = &first
	metrics.LastCommit = &last

	stats := make([]AuthorStat, 0, len(byAuthor))
	for _, stat := range byAuthor {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Commits != stats[j].Commits {
			return stats[i].Commits > stats[j].Commits
		}
		return stats[i].Name < stats[j].Name
	})
	return metrics, stats
}
