package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// cppAnalyzer handles C and C++ together: modern-feature adoption, design
// patterns, data-structure families and algorithmic idioms from a fixed
// catalogue.
type cppAnalyzer struct{}

var (
	cppFunctionRe = regexp.MustCompile(`(?m)^[\w:<>,*&\s]+\s+[\w:~]+\s*\([^;{]*\)\s*(?:const)?\s*{`)
	cppClassRe    = regexp.MustCompile(`(?m)\b(?:class|struct)\s+(\w+)`)
	cppTemplateRe = regexp.MustCompile(`\btemplate\s*<`)
	cppSmartPtrRe = regexp.MustCompile(`\b(?:std::)?(?:unique_ptr|shared_ptr|weak_ptr|make_unique|make_shared)\b`)
	cppRangeForRe = regexp.MustCompile(`\bfor\s*\(\s*(?:const\s+)?auto\s*[&*]?\s*\w+\s*:\s*`)
	cppTestRe     = regexp.MustCompile(`\b(?:TEST|TEST_F|TEST_P|TEST_CASE|BOOST_AUTO_TEST_CASE)\s*\(`)
)

var cppDataStructureFamilies = []struct {
	name    string
	signals []string
}{
	{"Dynamic arrays", []string{"std::vector", "vector<"}},
	{"Hash maps", []string{"std::unordered_map", "unordered_map<"}},
	{"Ordered maps", []string{"std::map", "map<"}},
	{"Sets", []string{"std::set", "std::unordered_set"}},
	{"Queues and stacks", []string{"std::queue", "std::stack", "std::deque", "std::priority_queue"}},
	{"Linked lists", []string{"std::list", "->next", "next;"}},
	{"Trees", []string{"->left", "->right", "TreeNode"}},
	{"Graphs", []string{"adjacency", "adj[", "adj_list"}},
}

var cppAlgorithmIdioms = []struct {
	tag     string
	signals []string
}{
	{"Sorting", []string{"std::sort", "qsort(", "bubble_sort", "merge_sort", "quick_sort"}},
	{"Binary search", []string{"std::binary_search", "lower_bound", "upper_bound", "binary_search"}},
	{"Graph traversal (BFS/DFS)", []string{"bfs", "dfs", "breadth_first", "depth_first"}},
	{"Dynamic programming", []string{"memo[", "dp[", "memoization"}},
	{"Recursion", []string{"recursive", "recursion"}},
	{"Hashing", []string{"std::hash", "hash_function", "hashtable"}},
}

var cppPatternCatalogue = []struct {
	name    string
	signals []string
}{
	{"Singleton", []string{"getInstance", "static"}},
	{"Factory", []string{"Factory"}},
	{"Observer", []string{"Observer"}},
	{"Strategy", []string{"Strategy"}},
	{"RAII", []string{"unique_ptr"}},
}

func (c *cppAnalyzer) Name() string { return "cpp" }

func (c *cppAnalyzer) Match(language string) bool { return language == LangC }

func (c *cppAnalyzer) Analyze(ctx context.Context, files []SourceFile) (*Report, error) {
	sources := filterByExt(files, map[string]struct{}{
		".c": {}, ".h": {}, ".cpp": {}, ".cc": {}, ".cxx": {}, ".hpp": {}, ".hh": {},
	})
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no c/c++ sources", ErrAnalyzerFailed)
	}
	report := &Report{Features: map[string]interface{}{}}

	var allText strings.Builder
	smartPtrUses := 0
	rangeForUses := 0
	templateUses := 0

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

		report.FunctionCount += len(cppFunctionRe.FindAllString(text, -1))
		report.ClassCount += len(cppClassRe.FindAllString(text, -1))
		smartPtrUses += len(cppSmartPtrRe.FindAllString(text, -1))
		rangeForUses += len(cppRangeForRe.FindAllString(text, -1))
		templateUses += len(cppTemplateRe.FindAllString(text, -1))

		if isTest, isIntegration := isTestPath(file.Path); isTest {
			n := len(cppTestRe.FindAllString(text, -1))
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

	projectText := allText.String()
	lowerText := strings.ToLower(projectText)

	modern := []string{}
	if smartPtrUses > 0 {
		modern = append(modern, "Smart pointers")
	}
	if rangeForUses > 0 {
		modern = append(modern, "Range-based iteration")
	}
	if templateUses > 0 {
		modern = append(modern, "Templates")
	}
	if strings.Contains(projectText, "constexpr") {
		modern = append(modern, "constexpr")
	}
	if strings.Contains(projectText, "std::move") {
		modern = append(modern, "Move semantics")
	}

	var structures []string
	for _, family := range cppDataStructureFamilies {
		if containsAny(projectText, family.signals...) {
			structures = append(structures, family.name)
		}
	}
	var algorithms []string
	for _, idiom := range cppAlgorithmIdioms {
		if containsAny(lowerText, idiom.signals...) {
			algorithms = append(algorithms, idiom.tag)
		}
	}
	var patterns []string
	for _, entry := range cppPatternCatalogue {
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

	report.Features["modern_features"] = modern
	report.Features["design_patterns"] = patterns
	report.Features["data_structures"] = structures
	report.Features["algorithms"] = algorithms

	report.SummaryText = fmt.Sprintf(
		"C/C++ project: %d files, %d lines (%d comments), %d functions, %d types.",
		report.FileCount, report.TotalLOC, report.CommentLOC, report.FunctionCount, report.ClassCount)
	if len(modern) > 0 {
		report.SummaryText += " Modern features: " + strings.Join(modern, ", ") + "."
	}
	if len(structures) > 0 {
		report.SummaryText += " Data structures: " + strings.Join(structures, ", ") + "."
	}
	return report, nil
}
