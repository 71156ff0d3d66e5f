package ui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"repodoctor/internal/scan"
	"repodoctor/internal/schemas"
	"repodoctor/internal/store"
)

const (
	topListLimit     = 10
	entryPointLimit  = 5
	directoryLimit   = 10
	historyTimeStamp = "2006-01-02 15:04"
)

// Diet renders a diet analysis.
func (t *Terminal) Diet(out *schemas.DietOutput) {
	a := out.Analysis
	t.Header("Diet Analysis Results", "🍽️")

	t.SummaryTable([]KV{
		{"Total Size", a.TotalSizeHuman},
		{"Total Bytes", humanize.Comma(a.TotalSizeBytes)},
		{"Largest Files", strconv.Itoa(len(a.LargestFiles))},
		{"Suspected Artifacts", strconv.Itoa(len(a.SuspectedArtifacts))},
		{"Missing Hygiene Files", strconv.Itoa(len(a.MissingHygieneFiles))},
	}, "Repository Size Summary")

	if len(a.LargestFiles) > 0 {
		t.Section(t.styles.Accent, "Largest Files:")
		for _, f := range limit(a.LargestFiles, topListLimit) {
			size := f.SizeHuman
			if size == "" {
				size = humanize.Bytes(uint64(f.SizeBytes))
			}
			t.Bullet(f.Path + " - " + size)
		}
	}

	if len(a.MissingHygieneFiles) > 0 {
		t.Section(t.styles.Warning, "Missing Hygiene Files:")
		for _, m := range a.MissingHygieneFiles {
			t.Bullet(m.Filename + ": " + m.Importance)
		}
	}

	if len(a.SuspectedArtifacts) > 0 {
		t.Section(t.styles.Error, "Suspected Artifacts:")
		for _, s := range limit(a.SuspectedArtifacts, topListLimit) {
			t.Bullet(s)
		}
	}

	t.Println()
	t.IssuesTable(IssueRows(out.Issues), "Diet Issues")
	t.Recommendations(out.Recommendations)
	t.PrintSuccess("Diet analysis complete")
}

// Tour renders the onboarding tour summary after it was written to path.
func (t *Terminal) Tour(out *schemas.TourOutput, path string) {
	tour := out.Tour
	t.PrintSuccess("Generated onboarding tour: " + path)

	t.Section(t.styles.Accent, "Languages:")
	t.Printf("  %s\n", joinOr(tour.Stack.Languages, "Unknown"))
	if len(tour.Stack.Frameworks) > 0 {
		t.Section(t.styles.Accent, "Frameworks:")
		t.Printf("  %s\n", strings.Join(tour.Stack.Frameworks, ", "))
	}
	if len(tour.Stack.Tools) > 0 {
		t.Section(t.styles.Accent, "Tools:")
		t.Printf("  %s\n", strings.Join(tour.Stack.Tools, ", "))
	}

	if len(tour.EntryPoints) > 0 {
		t.Section(t.styles.Accent, "Entry Points:")
		for _, ep := range limit(tour.EntryPoints, entryPointLimit) {
			t.Bullet(ep.FilePath + " - " + ep.Description)
		}
	}

	if len(tour.DirectoryStructure) > 0 {
		nodes := make([]TreeNode, 0, directoryLimit)
		for _, d := range limit(tour.DirectoryStructure, directoryLimit) {
			nodes = append(nodes, TreeNode{Path: d.Path, Purpose: d.Purpose, Children: d.KeyFiles})
		}
		t.Println()
		t.DirectoryTree(nodes, "Key Directories")
	}
}

// Docker renders Dockerfile findings. patchedPath is where a fixed
// Dockerfile was written, if any.
func (t *Terminal) Docker(out *schemas.DockerOutput, patchedPath string) {
	t.Header("Dockerfile Analysis Results", "🐳")

	for _, df := range out.Dockerfiles {
		t.SummaryTable([]KV{
			{"Dockerfile", df.DockerfilePath},
			{"Base Image", schemas.Deref(df.BaseImage, "Not detected")},
			{"Issues Found", strconv.Itoa(len(df.Issues))},
			{"Missing .dockerignore", yesNo(df.MissingDockerignore)},
			{"Estimated Size", schemas.Deref(df.SizeEstimate, "Unknown")},
		}, "Docker Analysis")
		t.Println()

		t.IssuesTable(dockerRows(df.Issues), "Dockerfile Issues")

		if len(df.Optimizations) > 0 {
			t.Section(t.styles.Accent, "Optimization Suggestions:")
			for _, o := range df.Optimizations {
				t.Bullet(o)
			}
		}
	}

	if len(out.Issues) > 0 {
		t.Println()
		t.IssuesTable(IssueRows(out.Issues), "General Issues")
	}

	if len(out.DockerignoreSuggestions) > 0 {
		t.Section(t.styles.Accent, ".dockerignore Suggestions:")
		for _, s := range out.DockerignoreSuggestions {
			t.Bullet(s)
		}
	}

	if patchedPath != "" && out.PatchedDockerfile != nil {
		t.Println()
		t.PrintSuccess("Patched Dockerfile written to: " + patchedPath)
		if changes := out.PatchedDockerfile.ChangesSummary; len(changes) > 0 {
			t.Section(t.styles.Accent, "Changes Applied:")
			for _, c := range changes {
				t.Bullet(c)
			}
		}
	}

	t.Recommendations(out.Recommendations)
	t.PrintSuccess("Dockerfile analysis complete")
}

func dockerRows(issues []schemas.DockerIssue) []IssueRow {
	rows := make([]IssueRow, len(issues))
	for i, is := range issues {
		loc := ""
		if is.LineNumber != nil {
			loc = "Line " + strconv.Itoa(*is.LineNumber)
		}
		rows[i] = IssueRow{
			Severity:    string(is.Severity),
			Category:    is.IssueType,
			Description: is.Explanation + " → " + schemas.Deref(is.Suggested, "See recommendations"),
			Location:    loc,
		}
	}
	return rows
}

// DeadCode renders findings grouped by confidence, hiding levels below
// minLevel.
func (t *Terminal) DeadCode(out *schemas.DeadCodeOutput, minLevel schemas.ConfidenceLevel) {
	s := out.Summary
	t.Header("Dead Code Analysis Results", "🔍")

	t.SummaryTable([]KV{
		{"Total Findings", strconv.Itoa(s.TotalFindings)},
		{"High Confidence", strconv.Itoa(s.HighConfidenceCount)},
		{"Medium Confidence", strconv.Itoa(s.MediumConfidenceCount)},
		{"Low Confidence", strconv.Itoa(s.LowConfidenceCount)},
		{"Estimated Dead Lines", strconv.Itoa(s.EstimatedTotalLines)},
	}, "Dead Code Summary")

	groups := out.FindingsAtLeast(minLevel)
	for _, level := range []schemas.ConfidenceLevel{schemas.ConfidenceHigh, schemas.ConfidenceMedium, schemas.ConfidenceLow} {
		findings := groups[level]
		if len(findings) == 0 {
			continue
		}
		t.Println()
		t.findingsTable(level, findings)
	}

	if out.AnalysisNotes != nil && *out.AnalysisNotes != "" {
		t.Section(t.styles.Accent, "Notes:")
		t.Printf("  %s\n", *out.AnalysisNotes)
	}

	t.Recommendations(out.Recommendations)
	t.PrintSuccess("Dead code analysis complete")
}

func (t *Terminal) findingsTable(level schemas.ConfidenceLevel, findings []schemas.DeadCodeFinding) {
	title := strings.ToUpper(string(level[:1])) + string(level[1:]) + " Confidence Dead Code"
	rows := make([][]string, len(findings))
	for i, f := range findings {
		lines := "N/A"
		if f.LineRange != nil {
			lines = fmt.Sprintf("%d-%d", f.LineRange[0], f.LineRange[1])
		}
		rows[i] = []string{f.CodeType, f.FilePath, lines, f.Reason}
	}
	t.Println(t.styles.Bold.Render(title))
	t.Println(t.simpleTable([]string{"Type", "File", "Lines", "Reason"}, rows).String())
}

// Scan renders the overall health panel and a one-line summary per module.
func (t *Terminal) Scan(result *schemas.ScanResult) {
	t.Header("Scan Summary", "📊")
	t.HealthScore(result.HealthScore, "Overall Repository Health")
	t.Println()

	var pairs []KV
	if a := result.DietAnalysis; a != nil {
		pairs = append(pairs, KV{"Diet", fmt.Sprintf("%s, %d large files", a.TotalSizeHuman, len(a.LargestFiles))})
	}
	if tour := result.TourSummary; tour != nil {
		pairs = append(pairs, KV{"Tour", fmt.Sprintf("%d entry points, %d directories", len(tour.EntryPoints), len(tour.DirectoryStructure))})
	}
	if m, ok := result.Module("docker"); ok && m.Success {
		pairs = append(pairs, KV{"Docker", fmt.Sprintf("%d issues found", m.IssuesCount)})
	}
	if s := result.DeadcodeSummary; s != nil {
		pairs = append(pairs, KV{"Dead Code", fmt.Sprintf("%d findings", s.TotalFindings)})
	}
	if len(pairs) > 0 {
		t.SummaryTable(pairs, "Module Results")
	}

	if ok, failed := result.Counts(); failed > 0 {
		t.Println()
		t.PrintWarning(fmt.Sprintf("%d of %d modules failed", failed, ok+failed))
	}
	t.Println()
	t.PrintSuccess("Full scan complete")
}

// Report prints where a report was written and, when published, its URL.
func (t *Terminal) Report(out *schemas.ReportOutput, path, publishedURL string) {
	t.PrintSuccess("Report generated: " + path)
	t.SummaryTable([]KV{
		{"Report Title", out.ReportTitle},
		{"Generated", out.GenerationTimestamp},
	}, "")
	if publishedURL != "" {
		t.PrintSuccess("Report published to: " + publishedURL)
	}
}

// History lists recorded scans, newest first.
func (t *Terminal) History(entries []store.Entry, now time.Time) {
	if len(entries) == 0 {
		t.PrintInfo("No scans recorded yet. Run repodoc scan first.")
		return
	}
	t.Header("Scan History", "📜")

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			shortID(e.ScanID),
			e.CreatedAt.Local().Format(historyTimeStamp) + " (" + humanize.RelTime(e.CreatedAt, now, "ago", "from now") + ")",
			strconv.Itoa(e.Score),
			e.Grade,
			fmt.Sprintf("%d/%d", e.ModulesOK, e.ModulesFailed),
		}
	}
	t.Println(t.simpleTable([]string{"Scan", "When", "Score", "Grade", "OK/Failed"}, rows).String())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ScanProgress prints one line per scan module event. It is safe for
// concurrent use.
type ScanProgress struct {
	t  *Terminal
	mu sync.Mutex
}

// NewScanProgress returns a progress printer writing to t.
func NewScanProgress(t *Terminal) *ScanProgress {
	return &ScanProgress{t: t}
}

var _ scan.Progress = (*ScanProgress)(nil)

func (p *ScanProgress) Start(i, n int, m scan.Module) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.t.Printf("%s %s\n", p.step(i, n), m.Running)
}

func (p *ScanProgress) Done(i, n int, m scan.Module) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.t.Printf("     %s %s\n\n", p.t.styles.Success.Render("✓"), m.Complete)
}

func (p *ScanProgress) Failed(i, n int, m scan.Module, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg := err.Error()
	if first, _, ok := strings.Cut(msg, "\n"); ok {
		msg = first
	}
	p.t.Printf("     %s %s failed: %s\n\n", p.t.styles.Warning.Render("⚠"), m.Short, msg)
}

// Skipped prints flag-driven skips on the step line and other reasons below
// the module's running line.
func (p *ScanProgress) Skipped(i, n int, m scan.Module, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if strings.HasPrefix(reason, "Skipping") {
		p.t.Printf("%s %s\n\n", p.step(i, n), reason)
		return
	}
	p.t.Printf("%s %s\n", p.step(i, n), m.Running)
	p.t.Printf("     %s %s\n\n", p.t.styles.Muted.Render("⊘"), reason)
}

func (p *ScanProgress) step(i, n int) string {
	return p.t.styles.Accent.Bold(true).Render(fmt.Sprintf("%d/%d", i+1, n))
}

func limit[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func joinOr(s []string, fallback string) string {
	if len(s) == 0 {
		return fallback
	}
	return strings.Join(s, ", ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
