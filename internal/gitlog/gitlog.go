// Package gitlog reads commit history from a project's version-control
// metadata and derives authorship metrics and the user's role. The pipeline
// consumes the Capability interface; the default implementation shells out
// to git, and tests substitute spies.
package gitlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zip2job/zip2job/internal/common"
)

// ErrNoRepository is returned when the project root has no usable Git
// metadata. Damaged metadata is reported the same way so the analyser can
// degrade to the non-Git path.
var ErrNoRepository = errors.New("gitlog: no usable repository")

// Commit is one entry of a project's history. Subject and the merge flag
// feed practice detection; authorship and timestamps feed metrics.
type Commit struct {
	SHA         string    `json:"sha"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	Timestamp   time.Time `json:"timestamp"`
	Subject     string    `json:"subject,omitempty"`
	IsMerge     bool      `json:"is_merge,omitempty"`
}

// Capability lists a repository's commits, newest first. Implementations
// may shell out to git or use a library; the pipeline is indifferent.
type Capability interface {
	Log(ctx context.Context, projectRoot string) ([]Commit, error)
}

// CLI is the exec-based Capability. Timeout bounds each subprocess call.
type CLI struct {
	Timeout time.Duration
}

// NewCLI returns a Capability shelling out to the git binary.
func NewCLI() *CLI {
	return &CLI{Timeout: 30 * time.Second}
}

// IsRepo reports whether root contains Git metadata.
func IsRepo(root string) bool {
	info, err := os.Stat(filepath.Join(root, ".git"))
	return err == nil && info.IsDir()
}

// Log runs `git log` in the project root and parses the output. A missing
// or damaged repository yields ErrNoRepository rather than a hard failure.
func (c *CLI) Log(ctx context.Context, projectRoot string) ([]Commit, error) {
	if !IsRepo(projectRoot) {
		return nil, fmt.Errorf("%w: %s", ErrNoRepository, projectRoot)
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "log", "--all", "--format=%H%x1f%an%x1f%ae%x1f%at%x1f%P%x1f%s")
	cmd.Dir = projectRoot
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("git log timed out: %w", ctx.Err())
		}
		// A corrupt object store or truncated .git directory surfaces here;
		// the project is analysed as non-Git with a diagnostic.
		common.Logger().Warn("gitlog: log failed, treating as no repository",
			"root", projectRoot, "stderr", strings.TrimSpace(stderr.String()))
		return nil, fmt.Errorf("%w: %s", ErrNoRepository, projectRoot)
	}
	return parseLog(stdout.String())
}

func parseLog(out string) ([]Commit, error) {
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\x1f")
		if len(parts) < 4 {
			continue
		}
		epoch, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			continue
		}
		commit := Commit{
			SHA:         parts[0],
			AuthorName:  parts[1],
			AuthorEmail: parts[2],
			Timestamp:   time.Unix(epoch, 0).UTC(),
		}
		if len(parts) > 4 {
			commit.IsMerge = strings.Contains(strings.TrimSpace(parts[4]), " ")
		}
		if len(parts) > 5 {
			commit.Subject = parts[5]
		}
		commits = append(commits, commit)
	}
	return commits, nil
}
