package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repodoctor/internal/doctor"
	"repodoctor/internal/scan"
	"repodoctor/internal/schemas"
	"repodoctor/internal/store"
)

func newTestTerminal() (*Terminal, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, false), &buf
}

func TestPlainOutputForBuffers(t *testing.T) {
	term, buf := newTestTerminal()
	assert.False(t, IsTerminal(buf))

	term.PrintSuccess("done")
	term.PrintWarning("careful")
	term.PrintError("broken")
	term.PrintInfo("fyi")

	assert.Equal(t, "✓ done\n⚠ careful\n✗ broken\nℹ fyi\n", buf.String())
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestHealthScoreBands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{92, "✓ Health: 92/100 (Grade: A)"},
		{65, "⚠ Health: 65/100 (Grade: D)"},
		{12, "✗ Health: 12/100 (Grade: F)"},
	}
	for _, tt := range tests {
		term, buf := newTestTerminal()
		term.HealthScore(schemas.RepoHealthScore{OverallScore: tt.score}, "Health")
		assert.Contains(t, buf.String(), tt.want)
		assert.Contains(t, buf.String(), "╭")
	}
}

func TestIssuesTable(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		term, buf := newTestTerminal()
		term.IssuesTable(nil, "Diet Issues")
		assert.Equal(t, "✓ No diet issues found\n", buf.String())
	})

	t.Run("rows", func(t *testing.T) {
		term, buf := newTestTerminal()
		term.IssuesTable(IssueRows([]schemas.Issue{
			{Title: "big", Description: "Large binary committed", Severity: schemas.SeverityHigh, Category: "bloat", FilePath: schemas.Str("bin/app")},
			{Title: "ign", Description: "No .gitignore", Severity: schemas.SeverityLow, Category: "hygiene"},
		}), "Diet Issues")

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "Diet Issues\n"))
		for _, want := range []string{"Severity", "Location", "HIGH", "LOW", "bin/app", "N/A", "Large binary committed"} {
			assert.Contains(t, out, want)
		}
	})
}

func TestRecommendations(t *testing.T) {
	term, buf := newTestTerminal()
	term.Recommendations([]schemas.Recommendation{
		{Action: "Add .gitignore", Priority: schemas.SeverityHigh, Reason: "Keeps artifacts out"},
		{Action: "Prune vendor", Priority: schemas.SeverityLow, Reason: "Smaller clones"},
	})

	out := buf.String()
	assert.Contains(t, out, "Recommendations:")
	assert.Contains(t, out, "  1. ● Add .gitignore\n     Keeps artifacts out\n")
	assert.Contains(t, out, "  2. ● Prune vendor\n")
}

func TestSummaryTableTitleCasesKeys(t *testing.T) {
	term, buf := newTestTerminal()
	term.SummaryTable([]KV{{"total_size", "1 MB"}, {"Files", "3"}}, "Summary")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Summary", lines[0])
	assert.Equal(t, "Total Size  1 MB", lines[1])
	assert.Equal(t, "Files       3", lines[2])
}

func TestDirectoryTree(t *testing.T) {
	term, buf := newTestTerminal()
	term.DirectoryTree([]TreeNode{
		{Path: "cmd", Purpose: "Entry points", Children: []string{"main.go"}},
		{Path: "internal", Purpose: "Library code"},
	}, "Key Directories")

	out := buf.String()
	assert.Contains(t, out, "Key Directories")
	assert.Contains(t, out, "cmd - Entry points")
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "internal - Library code")
}

func TestDietRenderer(t *testing.T) {
	term, buf := newTestTerminal()
	out := &schemas.DietOutput{
		Analysis: schemas.BloatAnalysis{
			TotalSizeBytes: 1234567,
			TotalSizeHuman: "1.2 MB",
			LargestFiles:   []schemas.FileInfo{{Path: "data.bin", SizeBytes: 900000, SizeHuman: "900 KB"}},
			MissingHygieneFiles: []schemas.MissingFile{
				{Filename: ".gitignore", Importance: "high"},
			},
			SuspectedArtifacts: []string{"dist/"},
		},
	}
	term.Diet(out)

	s := buf.String()
	for _, want := range []string{
		"Diet Analysis Results",
		"1,234,567",
		"• data.bin - 900 KB",
		"• .gitignore: high",
		"• dist/",
		"✓ No diet issues found",
		"✓ Diet analysis complete",
	} {
		assert.Contains(t, s, want)
	}
}

func TestTourRendererLimitsEntryPoints(t *testing.T) {
	term, buf := newTestTerminal()
	var eps []schemas.EntryPoint
	for _, f := range []string{"a.go", "b.go", "c.go", "d.go", "e.go", "f.go"} {
		eps = append(eps, schemas.EntryPoint{FilePath: f, Description: "entry", Type: "main"})
	}
	term.Tour(&schemas.TourOutput{Tour: schemas.TourSummary{
		Stack:       schemas.StackInfo{Languages: []string{"Go"}},
		EntryPoints: eps,
	}}, "TOUR.md")

	s := buf.String()
	assert.Contains(t, s, "Generated onboarding tour: TOUR.md")
	assert.Contains(t, s, "Go")
	assert.Contains(t, s, "• e.go - entry")
	assert.NotContains(t, s, "f.go")
	assert.NotContains(t, s, "Frameworks:")
}

func TestDockerRenderer(t *testing.T) {
	term, buf := newTestTerminal()
	out := &schemas.DockerOutput{
		Dockerfiles: []schemas.DockerfileAnalysis{{
			DockerfilePath: "Dockerfile",
			Issues: []schemas.DockerIssue{{
				IssueType: "base_image", LineNumber: schemas.Int(1), Current: "FROM ubuntu",
				Explanation: "Large base", Severity: schemas.SeverityMedium,
			}},
			MissingDockerignore: true,
		}},
		PatchedDockerfile: &schemas.PatchedDockerfile{OriginalPath: "Dockerfile", PatchedContent: "FROM alpine", ChangesSummary: []string{"Smaller base"}},
	}
	term.Docker(out, "Dockerfile.repodoc")

	s := buf.String()
	for _, want := range []string{
		"Not detected",
		"Missing .dockerignore",
		"Yes",
		"Line 1",
		"Large base → See recommendations",
		"Patched Dockerfile written to: Dockerfile.repodoc",
		"• Smaller base",
		"Dockerfile analysis complete",
	} {
		assert.Contains(t, s, want)
	}
}

func TestDeadCodeRendererFiltersByConfidence(t *testing.T) {
	out := &schemas.DeadCodeOutput{
		Findings: []schemas.DeadCodeFinding{
			{FilePath: "a.go", CodeType: "function", Confidence: schemas.ConfidenceHigh, Reason: "unused", LineRange: &[2]int{3, 9}},
			{FilePath: "b.go", CodeType: "import", Confidence: schemas.ConfidenceLow, Reason: "maybe"},
		},
		Summary: schemas.DeadCodeSummary{TotalFindings: 2, HighConfidenceCount: 1, LowConfidenceCount: 1},
	}

	term, buf := newTestTerminal()
	term.DeadCode(out, schemas.ConfidenceMedium)
	s := buf.String()
	assert.Contains(t, s, "High Confidence Dead Code")
	assert.Contains(t, s, "3-9")
	assert.NotContains(t, s, "Low Confidence Dead Code")
	assert.NotContains(t, s, "b.go")

	term, buf = newTestTerminal()
	term.DeadCode(out, schemas.ConfidenceLow)
	assert.Contains(t, buf.String(), "Low Confidence Dead Code")
	assert.Contains(t, buf.String(), "N/A")
}

func TestScanRenderer(t *testing.T) {
	term, buf := newTestTerminal()
	term.Scan(&schemas.ScanResult{
		HealthScore:  schemas.RepoHealthScore{OverallScore: 85, Grade: "B"},
		DietAnalysis: &schemas.BloatAnalysis{TotalSizeHuman: "3 MB"},
		ModuleResults: []schemas.ModuleResult{
			{ModuleName: "diet", Success: true},
			{ModuleName: "tour", Error: schemas.Str("boom")},
			{ModuleName: "docker", Success: true, IssuesCount: 4},
		},
	})

	s := buf.String()
	assert.Contains(t, s, "Overall Repository Health: 85/100 (Grade: B)")
	assert.Contains(t, s, "3 MB, 0 large files")
	assert.Contains(t, s, "4 issues found")
	assert.Contains(t, s, "1 of 3 modules failed")
	assert.Contains(t, s, "Full scan complete")
}

func TestHistoryRenderer(t *testing.T) {
	term, buf := newTestTerminal()
	term.History(nil, time.Now())
	assert.Contains(t, buf.String(), "No scans recorded yet")

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	term, buf = newTestTerminal()
	term.History([]store.Entry{{
		ScanID: "0123456789abcdef", CreatedAt: now.Add(-2 * time.Hour),
		Score: 77, Grade: "C", ModulesOK: 3, ModulesFailed: 1,
	}}, now)
	s := buf.String()
	assert.Contains(t, s, "01234567")
	assert.NotContains(t, s, "89abcdef")
	assert.Contains(t, s, "2 hours ago")
	assert.Contains(t, s, "3/1")
}

func TestScanProgress(t *testing.T) {
	term, buf := newTestTerminal()
	p := NewScanProgress(term)
	n := len(scan.Modules)

	p.Start(0, n, scan.Modules[0])
	p.Done(0, n, scan.Modules[0])
	p.Start(1, n, scan.Modules[1])
	p.Failed(1, n, scan.Modules[1], errors.New("no output\nmore"))
	p.Skipped(2, n, scan.Modules[2], "No Dockerfile found, skipping")
	p.Skipped(3, n, scan.Modules[3], "Skipping dead code analysis")

	assert.Equal(t, strings.Join([]string{
		"1/4 Running diet analysis...",
		"     ✓ Diet analysis complete",
		"",
		"2/4 Generating repository tour...",
		"     ⚠ Tour generation failed: no output",
		"",
		"3/4 Analyzing Dockerfile...",
		"     ⊘ No Dockerfile found, skipping",
		"",
		"4/4 Skipping dead code analysis",
		"",
		"",
	}, "\n"), buf.String())
}

func TestErrorOutput(t *testing.T) {
	term, buf := newTestTerminal()
	term.Error(doctor.Usage("--in-place requires --fix"))
	assert.Equal(t, "✗ Error\n--in-place requires --fix\n", buf.String())

	term, buf = newTestTerminal()
	term.Error(errors.New("kaboom"))
	assert.Contains(t, buf.String(), "Unexpected error")
	assert.Contains(t, buf.String(), "--verbose")
}

func TestSuccessMessage(t *testing.T) {
	term, buf := newTestTerminal()
	term.SuccessMessage("Full repository scan", []string{"Run repodoc report"})
	assert.Equal(t, "\n✓ Full repository scan completed successfully!\n\n💡 Next steps:\n  • Run repodoc report\n", buf.String())
}

func TestWithSpinnerWithoutTerminal(t *testing.T) {
	term, buf := newTestTerminal()
	called := false
	err := term.WithSpinner(context.Background(), "Analyzing", func(ctx context.Context) error {
		called = true
		return errors.New("failed")
	})
	assert.EqualError(t, err, "failed")
	assert.True(t, called)
	assert.Equal(t, "⏳ Analyzing...\n", buf.String())
}

func TestMarkdownPassthroughWithoutTerminal(t *testing.T) {
	term, buf := newTestTerminal()
	term.Markdown("# Title")
	assert.Equal(t, "# Title\n", buf.String())

	rendered, err := RenderMarkdown("# Title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, rendered, "Title")
}

func TestDiffPrintsEveryLine(t *testing.T) {
	term, buf := newTestTerminal()
	unified := "--- Dockerfile\n+++ Dockerfile.repodoc\n@@ -1,2 +1,2 @@\n-FROM ubuntu\n+FROM alpine\n CMD [\"app\"]\n"

	term.Diff(unified)

	assert.Equal(t, unified, buf.String())
}
