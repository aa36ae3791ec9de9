package analysis

import (
	"context"
	"fmt"
)

// GenericReport is the degraded path used when no language variant applies
// or a variant fails: file count and line count only, plus test counts
// derived from path conventions.
func GenericReport(ctx context.Context, files []SourceFile) *Report {
	report := &Report{Features: map[string]interface{}{}}
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		report.FileCount++
		loc, _ := countLines(file.Data, "#", "//")
		report.TotalLOC += loc
		if isTest, isIntegration := isTestPath(file.Path); isTest {
			if isIntegration {
				report.TestCountIntegration++
			} else {
				report.TestCountUnit++
			}
		}
	}
	report.SummaryText = fmt.Sprintf("Project: %d files, %d lines.", report.FileCount, report.TotalLOC)
	return report
}
