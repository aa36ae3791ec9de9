package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// jsAnalyzer covers JavaScript and TypeScript projects with one variant.
type jsAnalyzer struct{}

var (
	jsFunctionRe = regexp.MustCompile(`(?m)(?:^|\s)function\s+\w+\s*\(|=>\s*[{(]|\w+\s*\([^)]*\)\s*{`)
	jsClassRe    = regexp.MustCompile(`(?m)\bclass\s+[A-Z]\w*`)
	jsImportRe   = regexp.MustCompile(`(?m)^\s*import\s+[^;]+from\s+['"]([^'"]+)['"]|^\s*import\s+['"]([^'"]+)['"]`)
	jsRequireRe  = regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	jsExportRe   = regexp.MustCompile(`(?m)^\s*export\s`)
	jsModuleRe   = regexp.MustCompile(`(?m)module\.exports|exports\.\w+\s*=`)
	jsAsyncRe    = regexp.MustCompile(`\basync\b[\s\S]{0,200}?\bawait\b`)
	jsTestCaseRe = regexp.MustCompile(`(?m)\b(?:it|test)\s*\(\s*['"` + "`" + `]`)
)

var jsFrontendHints = []struct {
	needle string
	name   string
}{
	{"react", "React"},
	{"vue", "Vue"},
	{"svelte", "Svelte"},
	{"@angular/", "Angular"},
}

var jsTestFrameworkHints = []struct {
	needle string
	name   string
}{
	{"vitest", "Vitest"},
	{"jest", "Jest"},
	{"mocha", "Mocha"},
	{"cypress", "Cypress"},
	{"@playwright/test", "Playwright"},
}

func (j *jsAnalyzer) Name() string { return "javascript" }

func (j *jsAnalyzer) Match(language string) bool {
	return language == LangJavaScript || language == LangTypeScript
}

func (j *jsAnalyzer) Analyze(ctx context.Context, files []SourceFile) (*Report, error) {
	sources := filterByExt(files, map[string]struct{}{
		".js": {}, ".jsx": {}, ".ts": {}, ".tsx": {}, ".mjs": {}, ".cjs": {},
	})
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no javascript sources", ErrAnalyzerFailed)
	}
	report := &Report{Features: map[string]interface{}{}}

	esmSignals, cjsSignals := 0, 0
	tsFiles := 0
	usesAsync := false
	nodeSignals, browserSignals := 0, 0
	imports := map[string]struct{}{}

	for _, file := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.FileCount++
		loc, comments := countLines(file.Data, "//", "/*", "*")
		report.TotalLOC += loc
		report.CommentLOC += comments
		text := string(file.Data)

		ext := strings.ToLower(file.Path[strings.LastIndex(file.Path, "."):])
		if ext == ".ts" || ext == ".tsx" {
			tsFiles++
		}
		report.FunctionCount += len(jsFunctionRe.FindAllString(text, -1))
		report.ClassCount += len(jsClassRe.FindAllString(text, -1))

		esmSignals += len(jsImportRe.FindAllString(text, -1)) + len(jsExportRe.FindAllString(text, -1))
		cjsSignals += len(jsRequireRe.FindAllString(text, -1)) + len(jsModuleRe.FindAllString(text, -1))
		if jsAsyncRe.MatchString(text) {
			usesAsync = true
		}
		if containsAny(text, "process.env", "require('fs')", `require("fs")`, "node:fs", "express(") {
			nodeSignals++
		}
		if containsAny(text, "document.", "window.", "navigator.") {
			browserSignals++
		}
		for _, match := range jsImportRe.FindAllStringSubmatch(text, -1) {
			module := match[1]
			if module == "" {
				module = match[2]
			}
			imports[strings.ToLower(module)] = struct{}{}
		}
		for _, match := range jsRequireRe.FindAllStringSubmatch(text, -1) {
			imports[strings.ToLower(match[1])] = struct{}{}
		}

		if isTest, isIntegration := isTestPath(file.Path); isTest {
			n := len(jsTestCaseRe.FindAllString(text, -1))
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

	moduleSystem := "commonjs"
	if esmSignals >= cjsSignals {
		moduleSystem = "esm"
	}
	frontend := "none"
	for _, hint := range jsFrontendHints {
		if importSetContains(imports, hint.needle) {
			frontend = hint.name
			break
		}
	}
	testFramework := ""
	for _, hint := range jsTestFrameworkHints {
		if importSetContains(imports, hint.needle) {
			testFramework = hint.name
			break
		}
	}
	runtime := "browser"
	if nodeSignals > browserSignals {
		runtime = "node"
	}

	report.Features["module_system"] = moduleSystem
	report.Features["typescript"] = tsFiles > 0
	report.Features["frontend_framework"] = frontend
	report.Features["runtime_hint"] = runtime
	report.Features["uses_async_await"] = usesAsync
	if testFramework != "" {
		report.Features["test_framework"] = testFramework
	}

	lang := "JavaScript"
	if tsFiles > 0 {
		lang = "TypeScript"
	}
	report.SummaryText = fmt.Sprintf(
		"%s project: %d files, %d lines (%d comments), %d functions, %d classes; %s modules, %s runtime, frontend: %s.",
		lang, report.FileCount, report.TotalLOC, report.CommentLOC,
		report.FunctionCount, report.ClassCount, moduleSystem, runtime, frontend)
	return report, nil
}

func importSetContains(imports map[string]struct{}, needle string) bool {
	for module := range imports {
		if module == needle || strings.HasPrefix(module, needle+"/") || strings.HasPrefix(module, needle) && strings.HasPrefix(needle, "@") {
			return true
		}
	}
	return false
}
