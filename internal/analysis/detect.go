package analysis

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zip2job/zip2job/internal/ingest"
)

// Language names used across the pipeline. The detector reports one of
// these or "" when no language clears the confidence floor.
const (
	LangPython     = "Python"
	LangJavaScript = "JavaScript"
	LangTypeScript = "TypeScript"
	LangJava       = "Java"
	LangC          = "C/C++"
	LangGo         = "Go"
	LangRust       = "Rust"
	LangRuby       = "Ruby"
	LangPHP        = "PHP"
	LangCSharp     = "C#"
)

// extension weight per language; manifests add a fixed bonus on top so a
// project with a pyproject.toml and three stray .js helpers still reads as
// Python.
var extLanguage = map[string]string{
	".py": LangPython, ".pyi": LangPython,
	".js": LangJavaScript, ".jsx": LangJavaScript, ".mjs": LangJavaScript, ".cjs": LangJavaScript,
	".ts": LangTypeScript, ".tsx": LangTypeScript,
	".java": LangJava,
	".c":    LangC, ".h": LangC, ".cpp": LangC, ".cc": LangC, ".cxx": LangC, ".hpp": LangC, ".hh": LangC,
	".go": LangGo, ".rs": LangRust, ".rb": LangRuby, ".php": LangPHP, ".cs": LangCSharp,
}

var manifestLanguage = map[string]string{
	"pyproject.toml": LangPython, "requirements.txt": LangPython, "setup.py": LangPython,
	"package.json": LangJavaScript,
	"pom.xml":      LangJava, "build.gradle": LangJava, "build.gradle.kts": LangJava,
	"cmakelists.txt": LangC,
	"go.mod":         LangGo, "cargo.toml": LangRust, "gemfile": LangRuby,
	"composer.json": LangPHP,
}

const (
	manifestWeight  = 25.0
	perFileWeight   = 1.0
	detectFloor     = 1.0
	maxManifestRead = 256 << 10
)

// Detect identifies the primary language and framework of the project tree
// rooted at root. Detection is deterministic and makes no external calls;
// it weighs file extensions and manifest names, tie-breaking on total byte
// share, and reports ("", "") when the strongest signal stays below the
// floor. Framework detection keys on manifest contents and runs only for the
// detected language, so a framework is never reported without a language;
// a language can still come back with an empty framework.
func Detect(root string, ignore *ingest.Matcher) (string, string) {
	weights := make(map[string]float64)
	bytes := make(map[string]int64)
	manifests := make(map[string]string) // lowercase manifest name -> path

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
		name := strings.ToLower(d.Name())
		if lang, ok := manifestLanguage[name]; ok {
			weights[lang] += manifestWeight
			if _, seen := manifests[name]; !seen {
				manifests[name] = path
			}
		}
		ext := strings.ToLower(filepath.Ext(name))
		if lang, ok := extLanguage[ext]; ok {
			weights[lang] += perFileWeight
			if info, err := d.Info(); err == nil {
				bytes[lang] += info.Size()
			}
		}
		return nil
	})

	// A package.json tree with TypeScript sources is a TypeScript project.
	if weights[LangTypeScript] > 0 && weights[LangJavaScript] >= manifestWeight {
		weights[LangTypeScript] += manifestWeight
		weights[LangJavaScript] -= manifestWeight
	}

	best, bestWeight := "", 0.0
	for lang, weight := range weights {
		if weight > bestWeight {
			best, bestWeight = lang, weight
			continue
		}
		if weight == bestWeight && best != "" &&
			(bytes[lang] > bytes[best] || (bytes[lang] == bytes[best] && lang < best)) {
			best = lang
		}
	}
	if bestWeight < detectFloor {
		return "", ""
	}
	return best, detectFramework(best, root, manifests)
}

func readManifest(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if len(data) > maxManifestRead {
		data = data[:maxManifestRead]
	}
	return strings.ToLower(string(data))
}

func containsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

// detectFramework inspects the recognised manifests for framework names.
// The checks run in priority order; the first hit wins.
func detectFramework(language, root string, manifests map[string]string) string {
	switch language {
	case LangPython:
		content := readManifest(manifests["pyproject.toml"]) + readManifest(manifests["requirements.txt"])
		switch {
		case containsAny(content, "fastapi"):
			return "FastAPI"
		case containsAny(content, "django"):
			return "Django"
		case containsAny(content, "flask"):
			return "Flask"
		case containsAny(content, "streamlit"):
			return "Streamlit"
		}
	case LangJavaScript, LangTypeScript:
		path, ok := manifests["package.json"]
		if !ok {
			return ""
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return ""
		}
		var pkg struct {
			Dependencies    map[string]string `json:"dependencies"`
			DevDependencies map[string]string `json:"devDependencies"`
		}
		if err := json.Unmarshal(data, &pkg); err != nil {
			return ""
		}
		deps := make(map[string]struct{}, len(pkg.Dependencies)+len(pkg.DevDependencies))
		for name := range pkg.Dependencies {
			deps[strings.ToLower(name)] = struct{}{}
		}
		for name := range pkg.DevDependencies {
			deps[strings.ToLower(name)] = struct{}{}
		}
		has := func(names ...string) bool {
			for _, n := range names {
				if _, ok := deps[n]; ok {
					return true
				}
			}
			return false
		}
		switch {
		case has("next"):
			return "Next.js"
		case has("react", "react-dom"):
			return "React"
		case has("vue"):
			return "Vue"
		case has("@angular/core"):
			return "Angular"
		case has("svelte"):
			return "Svelte"
		case has("express"):
			return "Express"
		}
	case LangJava:
		content := readManifest(manifests["pom.xml"]) + readManifest(manifests["build.gradle"]) + readManifest(manifests["build.gradle.kts"])
		if containsAny(content, "spring-boot-starter", "springframework") {
			return "Spring Boot"
		}
	case LangC:
		if _, ok := manifests["cmakelists.txt"]; ok {
			return "CMake"
		}
	case LangRust:
		if containsAny(readManifest(manifests["cargo.toml"]), "actix-web") {
			return "Actix"
		}
	case LangRuby:
		if containsAny(readManifest(manifests["gemfile"]), "rails") {
			return "Rails"
		}
	case LangPHP:
		if containsAny(readManifest(manifests["composer.json"]), "laravel") {
			return "Laravel"
		}
	}
	return ""
}
