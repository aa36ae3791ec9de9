package analysis

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// pythonAnalyzer scans Python sources for structure, typing discipline,
// async usage and framework hints. Scanning is purely syntactic; no
// interpreter is involved.
type pythonAnalyzer struct{}

var (
	pyDefRe       = regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(([^)]*)\)\s*(->\s*[^:]+)?:`)
	pyAsyncDefRe  = regexp.MustCompile(`(?m)^\s*async\s+def\s+\w+`)
	pyClassRe     = regexp.MustCompile(`(?m)^\s*class\s+([A-Za-z_]\w*)`)
	pyImportRe    = regexp.MustCompile(`(?m)^\s*(?:from\s+([\w.]+)\s+import|import\s+([\w.]+))`)
	pyDecoratorRe = regexp.MustCompile(`(?m)^\s*@([\w.]+)`)
	pyTestDefRe   = regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+test_\w+`)
)

// pyFrameworkHints maps import roots to reportable framework names,
// covering web frameworks, ORMs and the usual ML stacks.
var pyFrameworkHints = map[string]string{
	"fastapi": "FastAPI", "django": "Django", "flask": "Flask", "streamlit": "Streamlit",
	"sqlalchemy": "SQLAlchemy", "peewee": "Peewee", "tortoise": "Tortoise ORM",
	"numpy": "NumPy", "pandas": "pandas", "sklearn": "scikit-learn",
	"torch": "PyTorch", "tensorflow": "TensorFlow", "keras": "Keras",
	"celery": "Celery", "pydantic": "Pydantic", "requests": "Requests", "httpx": "HTTPX",
}

func (p *pythonAnalyzer) Name() string { return "python" }

func (p *pythonAnalyzer) Match(language string) bool { return language == LangPython }

func (p *pythonAnalyzer) Analyze(ctx context.Context, files []SourceFile) (*Report, error) {
	sources := filterByExt(files, map[string]struct{}{".py": {}, ".pyi": {}})
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no python sources", ErrAnalyzerFailed)
	}
	report := &Report{Features: map[string]interface{}{}}

	signatures := 0
	annotated := 0
	asyncCount := 0
	frameworks := map[string]struct{}{}
	decorators := map[string]int{}

	for _, file := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.FileCount++
		loc, comments := countLines(file.Data, "#")
		report.TotalLOC += loc
		report.CommentLOC += comments
		text := string(file.Data)

		defs := pyDefRe.FindAllStringSubmatch(text, -1)
		report.FunctionCount += len(defs)
		for _, def := range defs {
			signatures++
			if def[3] != "" || strings.Contains(def[2], ":") {
				annotated++
			}
		}
		report.ClassCount += len(pyClassRe.FindAllString(text, -1))
		asyncCount += len(pyAsyncDefRe.FindAllString(text, -1))

		for _, imp := range pyImportRe.FindAllStringSubmatch(text, -1) {
			module := imp[1]
			if module == "" {
				module = imp[2]
			}
			rootModule := strings.SplitN(module, ".", 2)[0]
			if hint, ok := pyFrameworkHints[strings.ToLower(rootModule)]; ok {
				frameworks[hint] = struct{}{}
			}
		}
		for _, dec := range pyDecoratorRe.FindAllStringSubmatch(text, -1) {
			decorators[dec[1]]++
		}

		if isTest, isIntegration := isTestPath(file.Path); isTest {
			n := len(pyTestDefRe.FindAllString(text, -1))
			if n == 0 {
				n = 1
			}
			if isIntegration {
				report.TestCountIntegration += n
			} else {
				report.TestCountUnit += n
			}
		}
	}

	density := 0.0
	if signatures > 0 {
		density = float64(annotated) / float64(signatures)
	}
	report.Features["type_hint_density"] = density
	report.Features["async_function_count"] = asyncCount
	report.Features["framework_hints"] = sortedKeys(frameworks)
	report.Features["decorators"] = topCounts(decorators, 8)

	report.SummaryText = fmt.Sprintf(
		"Python project: %d files, %d lines (%d comments), %d functions, %d classes; %.0f%% of signatures annotated, %d async functions.",
		report.FileCount, report.TotalLOC, report.CommentLOC, report.FunctionCount, report.ClassCount,
		density*100, asyncCount)
	if hints := sortedKeys(frameworks); len(hints) > 0 {
		report.SummaryText += " Stack hints: " + strings.Join(hints, ", ") + "."
	}
	return report, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// topCounts flattens a counter into "name (n)" strings, highest first,
// capped at limit.
func topCounts(counts map[string]int, limit int) []string {
	type pair struct {
		name  string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for name, count := range counts {
		pairs = append(pairs, pair{name, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, fmt.Sprintf("%s (%d)", p.name, p.count))
	}
	return out
}
