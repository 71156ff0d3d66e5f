package schemas

import "time"

// ModuleResult is the outcome of one scan module.
type ModuleResult struct {
	ModuleName  string  `json:"module_name" schema:"required"`
	Success     bool    `json:"success" schema:"required"`
	Skipped     bool    `json:"skipped,omitempty"`
	IssuesCount int     `json:"issues_count"`
	Score       *int    `json:"score"`
	Error       *string `json:"error"`
}

// ScanResult aggregates every module of a full scan. It is what
// .repodoc/last_scan.json holds and what `report` reads back.
type ScanResult struct {
	ScanID          string               `json:"scan_id,omitempty"`
	StartedAt       *time.Time           `json:"started_at,omitempty"`
	FinishedAt      *time.Time           `json:"finished_at,omitempty"`
	HealthScore     RepoHealthScore      `json:"health_score" schema:"required"`
	ModuleResults   []ModuleResult       `json:"module_results"`
	DietAnalysis    *BloatAnalysis       `json:"diet_analysis"`
	TourSummary     *TourSummary         `json:"tour_summary"`
	DockerAnalysis  []DockerfileAnalysis `json:"docker_analysis"`
	DeadcodeSummary *DeadCodeSummary     `json:"deadcode_summary"`
}

// Module returns the result for a named module.
func (r *ScanResult) Module(name string) (ModuleResult, bool) {
	for _, m := range r.ModuleResults {
		if m.ModuleName == name {
			return m, true
		}
	}
	return ModuleResult{}, false
}

// Counts returns how many modules succeeded and failed. Skipped modules count as neither.
func (r *ScanResult) Counts() (ok, failed int) {
	for _, m := range r.ModuleResults {
		switch {
		case m.Skipped:
		case m.Success:
			ok++
		default:
			failed++
		}
	}
	return ok, failed
}

// ScanOutput is the complete scan with cross-module highlights.
type ScanOutput struct {
	BaseCommandOutput
	ScanResult         ScanResult       `json:"scan_result" schema:"required"`
	TopIssues          []Issue          `json:"top_issues"`
	TopRecommendations []Recommendation `json:"top_recommendations"`
	NextActions        []string         `json:"next_actions"`
}

func (*ScanOutput) CommandName() string { return "scan" }
