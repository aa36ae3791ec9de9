package bullets

import (
	"fmt"
	"strings"

	"github.com/zip2job/zip2job/internal/analysis"
)

// LocalBullets dispatches to the language-specific generator for the
// analysed language, falling back to the generic grammar. Output is
// deterministic: identical analyses produce byte-identical bullets.
func LocalBullets(a *analysis.ProjectAnalysis, maxBullets int) []string {
	var generated []string
	switch a.Language {
	case analysis.LangPython:
		generated = pythonBullets(a)
	case analysis.LangJavaScript, analysis.LangTypeScript:
		generated = jsBullets(a)
	case analysis.LangJava:
		generated = javaBullets(a)
	case analysis.LangC:
		generated = cppBullets(a)
	default:
		generated = genericBullets(a)
	}
	if bullet := testingBullet(a); bullet != "" {
		generated = append(generated, bullet)
	}
	if bullet := roleBullet(a); bullet != "" {
		generated = append(generated, bullet)
	}
	// Language generators can come up short on sparse projects; top up from
	// the generic grammar until three bullets are reached. A project with no
	// lines of code, tools, practices, tests or role still yields fewer.
	if len(generated) < 3 {
		seen := make(map[string]struct{}, len(generated))
		for _, b := range generated {
			seen[b] = struct{}{}
		}
		for _, b := range genericBullets(a) {
			if _, dup := seen[b]; dup {
				continue
			}
			generated = append(generated, b)
			if len(generated) >= 3 {
				break
			}
		}
	}
	if len(generated) > maxBullets {
		generated = generated[:maxBullets]
	}
	return generated
}

func techStack(a *analysis.ProjectAnalysis) string {
	if a.Framework != "" {
		return a.Language + "/" + a.Framework
	}
	if a.Language != "" {
		return a.Language
	}
	return "software"
}

func features(a *analysis.ProjectAnalysis) map[string]interface{} {
	if a.LanguageSpecific == nil {
		return nil
	}
	bag, _ := a.LanguageSpecific[a.Language].(map[string]interface{})
	return bag
}

// featureNumber reads a numeric feature; analyser output carries ints while
// a cache round-trip through JSON yields float64s.
func featureNumber(bag map[string]interface{}, key string) (float64, bool) {
	switch v := bag[key].(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func featureStrings(bag map[string]interface{}, key string) []string {
	raw, ok := bag[key]
	if !ok {
		return nil
	}
	switch values := raw.(type) {
	case []string:
		return values
	case []interface{}:
		var out []string
		for _, v := range values {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func joinNaturally(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

func topTools(a *analysis.ProjectAnalysis, n int) []string {
	tools := a.Tools
	if len(tools) > n {
		tools = tools[:n]
	}
	return tools
}

func pythonBullets(a *analysis.ProjectAnalysis) []string {
	m := a.CodeMetrics
	bag := features(a)
	out := []string{fmt.Sprintf(
		"Developed a %s application spanning %d source files and %d functions across %d modules.",
		techStack(a), m.FileCount, m.FunctionCount, m.FileCount)}

	if density, ok := featureNumber(bag, "type_hint_density"); ok && density >= 0.5 {
		out = append(out, fmt.Sprintf(
			"Enforced static typing discipline with annotations on %.0f%% of function signatures.", density*100))
	}
	if count, ok := featureNumber(bag, "async_function_count"); ok && count > 0 {
		out = append(out, fmt.Sprintf(
			"Engineered asynchronous workflows with %d async functions for concurrent I/O handling.", int(count)))
	}
	if hints := featureStrings(bag, "framework_hints"); len(hints) > 0 {
		out = append(out, fmt.Sprintf("Integrated %s to deliver core product functionality.", joinNaturally(hints)))
	}
	if tools := topTools(a, 3); len(tools) > 0 {
		out = append(out, fmt.Sprintf("Streamlined development workflows using %s.", joinNaturally(tools)))
	}
	return out
}

func jsBullets(a *analysis.ProjectAnalysis) []string {
	m := a.CodeMetrics
	bag := features(a)
	lang := a.Language
	out := []string{fmt.Sprintf(
		"Built a %s application with %d source files and %d components and functions.",
		techStack(a), m.FileCount, m.FunctionCount)}

	if frontend, ok := bag["frontend_framework"].(string); ok && frontend != "" && frontend != "none" {
		out = append(out, fmt.Sprintf("Designed interactive user interfaces with %s, organised into reusable components.", frontend))
	}
	if ts, ok := bag["typescript"].(bool); ok && ts {
		out = append(out, "Adopted TypeScript across the codebase to catch defects at compile time.")
	} else if lang == analysis.LangTypeScript {
		out = append(out, "Adopted TypeScript across the codebase to catch defects at compile time.")
	}
	if usesAsync, ok := bag["uses_async_await"].(bool); ok && usesAsync {
		out = append(out, "Implemented async/await data flows for responsive, non-blocking user interactions.")
	}
	if runtime, ok := bag["runtime_hint"].(string); ok && runtime == "node" {
		out = append(out, "Delivered server-side functionality on Node.js, exposing APIs consumed by the front end.")
	}
	if tools := topTools(a, 3); len(tools) > 0 {
		out = append(out, fmt.Sprintf("Automated builds and tooling with %s.", joinNaturally(tools)))
	}
	return out
}

func javaBullets(a *analysis.ProjectAnalysis) []string {
	m := a.CodeMetrics
	bag := features(a)
	out := []string{fmt.Sprintf(
		"Engineered a %s system comprising %d classes and %d methods across %d source files.",
		techStack(a), m.ClassCount, m.FunctionCount, m.FileCount)}

	if score, ok := featureNumber(bag, "oop_score"); ok && score >= 5 {
		out = append(out, fmt.Sprintf(
			"Applied object-oriented design with layered inheritance and interface-driven abstractions (OOP depth %.0f/10).", score))
	}
	if patterns := featureStrings(bag, "design_patterns"); len(patterns) > 0 {
		out = append(out, fmt.Sprintf("Implemented the %s pattern%s to keep subsystems decoupled and testable.",
			joinNaturally(patterns), plural(len(patterns))))
	}
	if annotations := featureStrings(bag, "annotations"); len(annotations) > 0 {
		out = append(out, "Leveraged annotation-driven configuration to reduce boilerplate wiring.")
	}
	if tools := topTools(a, 3); len(tools) > 0 {
		out = append(out, fmt.Sprintf("Managed builds and dependencies with %s.", joinNaturally(tools)))
	}
	return out
}

func cppBullets(a *analysis.ProjectAnalysis) []string {
	m := a.CodeMetrics
	bag := features(a)
	out := []string{fmt.Sprintf(
		"Developed a %s codebase of %d files and %d functions with performance-sensitive logic.",
		techStack(a), m.FileCount, m.FunctionCount)}

	if modern := featureStrings(bag, "modern_features"); len(modern) > 0 {
		out = append(out, fmt.Sprintf("Modernised the implementation with %s for safer resource management.",
			joinNaturally(modern)))
	}
	if structures := featureStrings(bag, "data_structures"); len(structures) > 0 {
		out = append(out, fmt.Sprintf("Selected and implemented %s to match access patterns and memory constraints.",
			joinNaturally(lowerAll(structures))))
	}
	if algorithms := featureStrings(bag, "algorithms"); len(algorithms) > 0 {
		out = append(out, fmt.Sprintf("Applied %s techniques to keep hot paths efficient.",
			joinNaturally(lowerAll(algorithms))))
	}
	if tools := topTools(a, 3); len(tools) > 0 {
		out = append(out, fmt.Sprintf("Automated builds with %s.", joinNaturally(tools)))
	}
	return out
}

// genericBullets covers languages without a dedicated generator, drawing on
// language, framework, tools, practices, file count and role.
func genericBullets(a *analysis.ProjectAnalysis) []string {
	m := a.CodeMetrics
	var out []string
	switch {
	case m.FileCount > 50:
		out = append(out, fmt.Sprintf(
			"Built a comprehensive %s application featuring %d files across multiple components.",
			techStack(a), m.FileCount))
	case m.FileCount > 20:
		out = append(out, fmt.Sprintf(
			"Developed a %s project with %d files spanning various aspects of the application.",
			techStack(a), m.FileCount))
	default:
		out = append(out, fmt.Sprintf(
			"Created a %s application consisting of %d well-structured files.",
			techStack(a), m.FileCount))
	}
	if m.LOC > 0 {
		out = append(out, fmt.Sprintf(
			"Implemented %d lines of code organised into maintainable modules.", m.LOC))
	}
	if tools := topTools(a, 3); len(tools) > 0 {
		out = append(out, fmt.Sprintf("Worked with %s throughout the development lifecycle.", joinNaturally(tools)))
	}
	if len(a.Practices) > 0 {
		practices := a.Practices
		if len(practices) > 3 {
			practices = practices[:3]
		}
		out = append(out, fmt.Sprintf("Followed engineering practices including %s.", joinNaturally(practices)))
	}
	return out
}

// testingBullet reports test investment when any tests exist.
func testingBullet(a *analysis.ProjectAnalysis) string {
	if a.CodeMetrics.TestCount == 0 {
		return ""
	}
	return fmt.Sprintf("Implemented %d automated tests to guard critical workflows and prevent regressions.",
		a.CodeMetrics.TestCount)
}

// roleBullet describes collaboration posture for team projects.
func roleBullet(a *analysis.ProjectAnalysis) string {
	if !a.IsCollaborative || a.Role == "" || a.Role == "Unknown" {
		return ""
	}
	return fmt.Sprintf("Contributed as %s on a team of %d, authoring %.0f%% of the commit history.",
		a.Role, a.Git.AuthorCount, a.ContributionPct)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func lowerAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.ToLower(item)
	}
	return out
}
