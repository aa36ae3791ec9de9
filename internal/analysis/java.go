package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// javaAnalyzer inspects Java sources for OOP structure, a fixed catalogue
// of design patterns, and annotation usage.
type javaAnalyzer struct{}

var (
	javaClassRe      = regexp.MustCompile(`(?m)\b(?:public\s+|final\s+|abstract\s+)*class\s+([A-Z]\w*)`)
	javaInterfaceRe  = regexp.MustCompile(`(?m)\binterface\s+[A-Z]\w*`)
	javaExtendsRe    = regexp.MustCompile(`\bclass\s+\w+(?:<[^>]*>)?\s+extends\s+(\w+)`)
	javaImplementsRe = regexp.MustCompile(`\bimplements\s+[A-Z]\w*`)
	javaMethodRe     = regexp.MustCompile(`(?m)^\s*(?:public|protected|private|static|final|synchronized|abstract|\s)+[\w<>\[\],\s]+\s+(\w+)\s*\([^)]*\)\s*(?:throws[\w,\s]+)?[{;]`)
	javaAnnotationRe = regexp.MustCompile(`(?m)^\s*@(\w+)`)
	javaTestRe       = regexp.MustCompile(`@Test\b`)
)

// javaPatternCatalogue is the fixed design-pattern catalogue. Each entry is
// a set of syntactic signals; every signal must appear somewhere in the
// project for the pattern to be reported.
var javaPatternCatalogue = []struct {
	name    string
	signals []string
}{
	{"Singleton", []string{"private static", "getInstance"}},
	{"Factory", []string{"Factory"}},
	{"Observer", []string{"Listener"}},
	{"Strategy", []string{"Strategy"}},
	{"Builder", []string{"Builder", ".build()"}},
	{"Decorator", []string{"Decorator"}},
	{"Adapter", []string{"Adapter"}},
}

func (j *javaAnalyzer) Name() string { return "java" }

func (j *javaAnalyzer) Match(language string) bool { return language == LangJava }

func (j *javaAnalyzer) Analyze(ctx context.Context, files []SourceFile) (*Report, error) {
	sources := filterByExt(files, map[string]struct{}{".java": {}})
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no java sources", ErrAnalyzerFailed)
	}
	report := &Report{Features: map[string]interface{}{}}

	interfaces := 0
	extendsEdges := map[string]string{} // child -> parent
	implementsCount := 0
	annotations := map[string]int{}
	var allText strings.Builder

	for _, file := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.FileCount++
		loc, comments := countLines(file.Data, "//", "/*", "*")
		report.TotalLOC += loc
		report.CommentLOC += comments
		text := string(file.Data)
		allText.WriteString(text)

		classes := javaClassRe.FindAllStringSubmatch(text, -1)
		report.ClassCount += len(classes)
		interfaces += len(javaInterfaceRe.FindAllString(text, -1))
		implementsCount += len(javaImplementsRe.FindAllString(text, -1))
		report.FunctionCount += len(javaMethodRe.FindAllString(text, -1))

		for _, edge := range javaExtendsRe.FindAllStringSubmatch(text, -1) {
			childMatch := javaClassRe.FindStringSubmatch(edge[0])
			if len(childMatch) > 1 {
				extendsEdges[childMatch[1]] = edge[1]
			}
		}
		for _, ann := range javaAnnotationRe.FindAllStringSubmatch(text, -1) {
			annotations[ann[1]]++
		}

		if isTest, isIntegration := isTestPath(file.Path); isTest {
			n := len(javaTestRe.FindAllString(text, -1))
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

	oopScore := javaOOPScore(report.ClassCount, interfaces, implementsCount, extendsEdges)

	var patterns []string
	projectText := allText.String()
	for _, entry := range javaPatternCatalogue {
		hit := true
		for _, signal := range entry.signals {
			if !strings.Contains(projectText, signal) {
				hit = false
				break
			}
		}
		if hit {
			patterns = append(patterns, entry.name)
		}
	}

	report.Features["oop_score"] = oopScore
	report.Features["design_patterns"] = patterns
	report.Features["interface_count"] = interfaces
	report.Features["annotations"] = topCounts(annotations, 8)

	report.SummaryText = fmt.Sprintf(
		"Java project: %d files, %d lines (%d comments), %d methods, %d classes, %d interfaces; OOP score %.1f/10.",
		report.FileCount, report.TotalLOC, report.CommentLOC,
		report.FunctionCount, report.ClassCount, interfaces, oopScore)
	if len(patterns) > 0 {
		report.SummaryText += " Patterns: " + strings.Join(patterns, ", ") + "."
	}
	return report, nil
}

// javaOOPScore is a 0–10 heuristic combining inheritance depth and
// interface density.
func javaOOPScore(classes, interfaces, implementsCount int, extendsEdges map[string]string) float64 {
	if classes == 0 {
		return 0
	}
	depth := maxInheritanceDepth(extendsEdges)
	depthScore := float64(depth)
	if depthScore > 4 {
		depthScore = 4
	}
	density := float64(interfaces+implementsCount) / float64(classes)
	densityScore := density * 6
	if densityScore > 6 {
		densityScore = 6
	}
	score := depthScore + densityScore
	if score > 10 {
		score = 10
	}
	return score
}

// maxInheritanceDepth follows extends chains within the project. Cycles,
// which only occur in malformed input, are cut at the class count.
func maxInheritanceDepth(edges map[string]string) int {
	max := 0
	for child := range edges {
		depth := 0
		for current := child; ; {
			parent, ok := edges[current]
			if !ok || depth > len(edges) {
				break
			}
			depth++
			current = parent
		}
		if depth > max {
			max = depth
		}
	}
	return max
}
