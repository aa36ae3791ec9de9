package analysis

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zip2job/zip2job/internal/ingest"
)

// fileSizeCap bounds how much of a single file the analysers look at.
// Larger files are sampled by truncation; the heuristics do not need the
// tail of a generated bundle.
const fileSizeCap = 512 << 10

// SourceFile is one text file handed to the analyser variants. Path is
// slash-separated and relative to the project root.
type SourceFile struct {
	Path    string
	Data    []byte
	Sampled bool
}

// CollectSources walks the project tree once and returns every readable
// text file, excluding ignored paths, .git internals and binary payloads.
// The result feeds every analyser stage so none of them re-walks the tree.
func CollectSources(root string, ignore *ingest.Matcher) []SourceFile {
	var files []SourceFile
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if d.Name() == ".git" || (ignore != nil && ignore.Match(rel)) {
				return fs.SkipDir
			}
			return nil
		}
		if ignore != nil && ignore.Match(rel) {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		sampled := false
		if len(data) > fileSizeCap {
			data = data[:fileSizeCap]
			sampled = true
		}
		if isBinary(data) {
			return nil
		}
		files = append(files, SourceFile{Path: rel, Data: data, Sampled: sampled})
		return nil
	})
	return files
}

// isBinary uses the classic null-byte probe over the first KiB.
func isBinary(data []byte) bool {
	probe := data
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return bytes.IndexByte(probe, 0) >= 0
}

// filterByExt keeps files whose lowercase extension is in exts.
func filterByExt(files []SourceFile, exts map[string]struct{}) []SourceFile {
	var out []SourceFile
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Path))
		if _, ok := exts[ext]; ok {
			out = append(out, f)
		}
	}
	return out
}

// countLines returns (total non-blank lines, comment lines) using the
// given line-comment prefix. Block comments are approximated by prefix
// matching; the analysers are heuristics, not verifiers.
func countLines(data []byte, commentPrefixes ...string) (loc, comments int) {
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		loc++
		for _, prefix := range commentPrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				comments++
				break
			}
		}
	}
	return loc, comments
}

// isTestPath reports whether the relative path looks like test code, and
// whether it looks like integration-level test code.
func isTestPath(rel string) (isTest, isIntegration bool) {
	lower := strings.ToLower(rel)
	base := filepath.Base(lower)
	switch {
	case strings.Contains(lower, "/tests/"), strings.HasPrefix(lower, "tests/"),
		strings.Contains(lower, "/test/"), strings.HasPrefix(lower, "test/"),
		strings.Contains(lower, "__tests__"),
		strings.HasPrefix(base, "test_"), strings.HasSuffix(base, "_test.py"),
		strings.Contains(base, ".test."), strings.Contains(base, ".spec."),
		strings.HasSuffix(base, "test.java"), strings.HasSuffix(base, "tests.java"),
		strings.HasSuffix(base, "_test.go"),
		strings.HasSuffix(base, "_test.c"), strings.HasSuffix(base, "_test.cpp"), strings.HasSuffix(base, "_test.cc"):
		isTest = true
	}
	if isTest && (strings.Contains(lower, "integration") || strings.Contains(lower, "e2e") || strings.Contains(lower, "end_to_end")) {
		isIntegration = true
	}
	return isTest, isIntegration
}
