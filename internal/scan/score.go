package scan

import (
	"sort"

	"repodoctor/internal/schemas"
)

const (
	maxTopIssues          = 10
	maxTopRecommendations = 5
)

// NextActions follow every successful scan.
var NextActions = []string{
	"Review the health score and identified issues",
	"Run 'repodoc report' to generate a detailed markdown report",
	"Address critical/high severity issues first",
}

func penalty(n, per int) int {
	return max(0, 100-n*per)
}

func dietScore(o *schemas.DietOutput) int { return penalty(len(o.Issues), 5) }

func dockerScore(o *schemas.DockerOutput) int { return penalty(o.IssueCount(), 5) }

func deadcodeScore(o *schemas.DeadCodeOutput) int { return penalty(o.Summary.TotalFindings, 2) }

// HealthScore averages the scores of the modules that produced output. The
// tour module carries no score. With no scores at all the result is 0/F.
func HealthScore(out *Outputs) schemas.RepoHealthScore {
	categories := make(map[string]int)
	if out.Diet != nil {
		categories["diet"] = dietScore(out.Diet)
	}
	if out.Docker != nil {
		categories["docker"] = dockerScore(out.Docker)
	}
	if out.Deadcode != nil {
		categories["deadcode"] = deadcodeScore(out.Deadcode)
	}

	overall := 0
	if len(categories) > 0 {
		sum := 0
		for _, v := range categories {
			sum += v
		}
		overall = sum / len(categories)
	}
	return schemas.RepoHealthScore{
		OverallScore:   overall,
		CategoryScores: categories,
		Grade:          schemas.Grade(overall),
	}
}

// BuildOutput wraps a scan result with the highest-severity issues and
// recommendations from all modules.
func BuildOutput(result *schemas.ScanResult, out *Outputs) *schemas.ScanOutput {
	var issues []schemas.Issue
	var recs []schemas.Recommendation
	collect := func(b schemas.BaseCommandOutput) {
		issues = append(issues, b.Issues...)
		recs = append(recs, b.Recommendations...)
	}
	if out != nil {
		if out.Diet != nil {
			collect(out.Diet.BaseCommandOutput)
		}
		if out.Tour != nil {
			collect(out.Tour.BaseCommandOutput)
		}
		if out.Docker != nil {
			collect(out.Docker.BaseCommandOutput)
		}
		if out.Deadcode != nil {
			collect(out.Deadcode.BaseCommandOutput)
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity.Rank() < issues[j].Severity.Rank()
	})
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() < recs[j].Priority.Rank()
	})

	top := issues
	if len(top) > maxTopIssues {
		top = top[:maxTopIssues]
	}
	topRecs := recs
	if len(topRecs) > maxTopRecommendations {
		topRecs = topRecs[:maxTopRecommendations]
	}

	metadata := map[string]string{}
	if result.ScanID != "" {
		metadata["scan_id"] = result.ScanID
	}

	return &schemas.ScanOutput{
		BaseCommandOutput: schemas.BaseCommandOutput{
			Command:         "scan",
			Success:         true,
			Issues:          nonNil(issues),
			Recommendations: nonNilRecs(recs),
			Metadata:        metadata,
		},
		ScanResult:         *result,
		TopIssues:          nonNil(top),
		TopRecommendations: nonNilRecs(topRecs),
		NextActions:        NextActions,
	}
}

func nonNil(s []schemas.Issue) []schemas.Issue {
	if s == nil {
		return []schemas.Issue{}
	}
	return s
}

func nonNilRecs(s []schemas.Recommendation) []schemas.Recommendation {
	if s == nil {
		return []schemas.Recommendation{}
	}
	return s
}
