package ingest

import (
	"path/filepath"
	"strings"
)

// Matcher checks archive-relative paths against ignore globs. A pattern
// containing '/' matches against the full slash-separated path; any other
// pattern matches against each individual path segment, so "node_modules"
// excludes the directory at any depth.
type Matcher struct {
	segment []string
	path    []string
}

// NewMatcher builds a Matcher from raw pattern strings. Blank patterns are
// skipped.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{}
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if strings.Contains(raw, "/") {
			m.path = append(m.path, strings.Trim(raw, "/"))
		} else {
			m.segment = append(m.segment, raw)
		}
	}
	return m
}

// Match reports whether the slash-separated relative path is ignored.
func (m *Matcher) Match(relPath string) bool {
	if m == nil {
		return false
	}
	normalized := strings.Trim(filepath.ToSlash(relPath), "/")
	if normalized == "" {
		return false
	}
	for _, pattern := range m.path {
		if ok, err := filepath.Match(pattern, normalized); err == nil && ok {
			return true
		}
	}
	if len(m.segment) == 0 {
		return false
	}
	for _, part := range strings.Split(normalized, "/") {
		for _, pattern := range m.segment {
			if ok, err := filepath.Match(pattern, part); err == nil && ok {
				return true
			}
		}
	}
	return false
}
