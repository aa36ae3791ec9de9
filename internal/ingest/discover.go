package ingest

import (
	"path"
	"sort"
	"strings"
)

// manifestNames are the recognised per-language project manifests that mark
// a directory as a project root during discovery.
var manifestNames = map[string]struct{}{
	"package.json":     {},
	"pyproject.toml":   {},
	"requirements.txt": {},
	"setup.py":         {},
	"go.mod":           {},
	"cargo.toml":       {},
	"pom.xml":          {},
	"build.gradle":     {},
	"build.gradle.kts": {},
	"composer.json":    {},
	"gemfile":          {},
	"cmakelists.txt":   {},
}

// Candidate is a discovered project root inside an archive.
type Candidate struct {
	Name      string
	RelPath   string // slash path under the archive root; "" for the root itself
	HasGit    bool
	FileCount int     // excludes .git internals
	Files     []Entry // paths relative to the candidate root
}

// ContentRoot returns the deepest directory common to every entry. An
// archive wrapping a single top-level folder has that folder as its content
// root.
func ContentRoot(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	common := entryDir(entries[0].Path)
	for _, e := range entries[1:] {
		dir := entryDir(e.Path)
		for !withinDir(dir, common) {
			if common == "" {
				return ""
			}
			common = parentDir(common)
		}
	}
	return common
}

// entryDir returns the slash directory of an entry path, "" for top level.
func entryDir(p string) string {
	dir := path.Dir(p)
	if dir == "." {
		return ""
	}
	return dir
}

func withinDir(dir, root string) bool {
	if root == "" || root == "." {
		return true
	}
	return dir == root || strings.HasPrefix(dir+"/", root+"/")
}

// Discover locates project roots in an archive's entry list, top-down. A
// directory is a root when it contains version-control metadata or a
// recognised manifest; a root shadows its descendants. When nothing
// qualifies, the content root itself becomes a single project. Loose
// documentation and media files sitting directly in the content root beside
// real projects are collected into "docs" and "media" pseudo-projects.
func Discover(entries []Entry, archiveName string) []Candidate {
	contentRoot := ContentRoot(entries)

	dirSet := map[string]struct{}{contentRoot: {}}
	gitDirs := map[string]struct{}{}
	manifestDirs := map[string]struct{}{}
	for _, e := range entries {
		dir := entryDir(e.Path)
		for d := dir; ; d = parentDir(d) {
			if withinDir(d, contentRoot) && d != contentRoot {
				dirSet[d] = struct{}{}
			}
			if d == "" || d == contentRoot {
				break
			}
		}
		parts := strings.Split(e.Path, "/")
		for i, part := range parts {
			if part == ".git" {
				owner := strings.Join(parts[:i], "/")
				gitDirs[owner] = struct{}{}
				break
			}
		}
		if _, ok := manifestNames[strings.ToLower(path.Base(e.Path))]; ok && !underGitDir(e.Path) {
			manifestDirs[dir] = struct{}{}
		}
	}

	dirs := make([]string, 0, len(dirSet))
	for d := range dirSet {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool {
		di, dj := depth(dirs[i]), depth(dirs[j])
		if di != dj {
			return di < dj
		}
		return dirs[i] < dirs[j]
	})

	var roots []string
	isRoot := func(dir string) bool {
		_, git := gitDirs[dir]
		_, manifest := manifestDirs[dir]
		return git || manifest
	}
	for _, dir := range dirs {
		if dir != contentRoot && !withinDir(dir, contentRoot) {
			continue
		}
		shadowed := false
		for _, root := range roots {
			if withinDir(dir, root) {
				shadowed = true
				break
			}
		}
		if shadowed {
			continue
		}
		if isRoot(dir) {
			roots = append(roots, dir)
		}
	}
	if len(roots) == 0 {
		roots = []string{contentRoot}
	}

	var candidates []Candidate
	for _, root := range roots {
		c := Candidate{
			Name:    candidateName(root, archiveName),
			RelPath: root,
		}
		if _, ok := gitDirs[root]; ok {
			c.HasGit = true
		}
		for _, e := range entries {
			if !withinDir(entryDir(e.Path), root) {
				continue
			}
			rel := e.Path
			if root != "" {
				rel = strings.TrimPrefix(e.Path, root+"/")
				if rel == e.Path {
					continue
				}
			}
			c.Files = append(c.Files, Entry{Path: rel, Data: e.Data})
			if !underGitDir(rel) {
				c.FileCount++
			}
		}
		if c.FileCount == 0 && !c.HasGit {
			continue
		}
		candidates = append(candidates, c)
	}

	candidates = append(candidates, loosePseudoProjects(entries, contentRoot, roots)...)
	return candidates
}

// loosePseudoProjects groups documentation and media files sitting directly
// in the content root, next to real project directories, into synthetic
// "docs" and "media" candidates.
func loosePseudoProjects(entries []Entry, contentRoot string, roots []string) []Candidate {
	if len(roots) == 1 && roots[0] == contentRoot {
		return nil
	}
	var docs, media []Entry
	for _, e := range entries {
		if entryDir(e.Path) != contentRoot {
			continue
		}
		rel := path.Base(e.Path)
		switch {
		case IsDoc(e.Path):
			docs = append(docs, Entry{Path: rel, Data: e.Data})
		case IsMedia(e.Path):
			media = append(media, Entry{Path: rel, Data: e.Data})
		}
	}
	var out []Candidate
	if len(docs) > 0 {
		out = append(out, Candidate{Name: "docs", RelPath: contentRoot, FileCount: len(docs), Files: docs})
	}
	if len(media) > 0 {
		out = append(out, Candidate{Name: "media", RelPath: contentRoot, FileCount: len(media), Files: media})
	}
	return out
}

func candidateName(root, archiveName string) string {
	if root != "" {
		return path.Base(root)
	}
	base := path.Base(archiveName)
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." {
		return "workspace"
	}
	return base
}

func parentDir(dir string) string {
	if dir == "" {
		return ""
	}
	parent := path.Dir(dir)
	if parent == "." {
		return ""
	}
	return parent
}

func depth(dir string) int {
	if dir == "" {
		return 0
	}
	return strings.Count(dir, "/") + 1
}
