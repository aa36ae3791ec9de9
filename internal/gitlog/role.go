package gitlog

import "fmt"

// Role strings are the wire contract; storage uses these exact values.
const (
	RoleSolo             = "Solo Developer"
	RoleLead             = "Lead Developer"
	RoleCoLead           = "Co-Lead"
	RoleContributor      = "Contributor"
	RoleMinorContributor = "Minor Contributor"
	RoleUnknown          = "Unknown"
)

// RoleResult is the outcome of role classification for the current user.
type RoleResult struct {
	Role            string  `json:"role"`
	ContributionPct float64 `json:"contribution_pct"`
	IsCollaborative bool    `json:"is_collaborative"`
	Justification   string  `json:"justification"`
}

// DetectRole classifies the user against a fixed taxonomy. The
// classification is deterministic given the author stats; boundary values
// resolve to the more senior role.
func DetectRole(user Identity, stats []AuthorStat) RoleResult {
	collaborative := len(stats) >= 2

	var userStat *AuthorStat
	for i := range stats {
		if user.Matches(stats[i].Name, stats[i].Email) {
			userStat = &stats[i]
			break
		}
	}
	if userStat == nil || userStat.Commits == 0 {
		return RoleResult{
			Role:            RoleUnknown,
			IsCollaborative: collaborative,
			Justification:   fmt.Sprintf("No commits matched the configured identity among %d contributors.", len(stats)),
		}
	}

	total := 0
	for _, s := range stats {
		total += s.Commits
	}
	pct := float64(userStat.Commits) / float64(total) * 100

	if !collaborative {
		return RoleResult{
			Role:            RoleSolo,
			ContributionPct: 100,
			IsCollaborative: false,
			Justification:   fmt.Sprintf("Sole author of all %d commits.", total),
		}
	}

	role := RoleMinorContributor
	switch {
	case pct >= 60:
		role = RoleLead
	case pct >= 40 && hasCoLeadPeer(stats, userStat, total):
		role = RoleCoLead
	case pct >= 40:
		// Between 40% and 60% without a comparable peer the user still
		// carries the majority of remaining work.
		role = RoleLead
	case pct >= 10:
		role = RoleContributor
	}
	justification := fmt.Sprintf("Authored %d/%d commits (%.1f%%) across %d contributors.",
		userStat.Commits, total, pct, len(stats))
	return RoleResult{
		Role:            role,
		ContributionPct: pct,
		IsCollaborative: true,
		Justification:   justification,
	}
}

// hasCoLeadPeer reports whether exactly one other author holds at least 25%
// of the commits, the condition distinguishing Co-Lead from Lead in the
// 40–60% band.
func hasCoLeadPeer(stats []AuthorStat, userStat *AuthorStat, total int) bool {
	peers := 0
	for i := range stats {
		if &stats[i] == userStat {
			continue
		}
		if float64(stats[i].Commits)/float64(total)*100 >= 25 {
			peers++
		}
	}
	return peers == 1
}
