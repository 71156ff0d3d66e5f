// Package schemas defines the JSON records the backend CLI is asked to
// produce, and the rules used to validate them.
//
// Field rules are declared with a `schema` struct tag next to the json tag:
//
//	Title    string   `json:"title" schema:"required"`
//	Severity Severity `json:"severity" schema:"required,enum=critical|high|medium|low|info"`
//	Score    int      `json:"overall_score" schema:"required,min=0,max=100"`
//	Success  bool     `json:"success" schema:"default=true"`
//
// Pointer fields are optional and accept null.
package schemas

// Severity of an issue or priority of a recommendation.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Rank orders severities, critical first. Unknown values sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	case SeverityInfo:
		return 4
	default:
		return 5
	}
}

// ConfidenceLevel of a dead-code finding.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// Weight orders confidence levels, high being the largest. Unknown values are 0.
func (c ConfidenceLevel) Weight() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// ParseConfidence validates a --min-confidence value.
func ParseConfidence(s string) (ConfidenceLevel, bool) {
	c := ConfidenceLevel(s)
	return c, c.Weight() > 0
}

// Issue is a single problem found during analysis.
type Issue struct {
	Title       string   `json:"title" schema:"required"`
	Description string   `json:"description" schema:"required"`
	Severity    Severity `json:"severity" schema:"required,enum=critical|high|medium|low|info"`
	Category    string   `json:"category" schema:"required"`
	FilePath    *string  `json:"file_path"`
	LineNumber  *int     `json:"line_number"`
	Suggestion  *string  `json:"suggestion"`
}

// Recommendation is an actionable suggestion.
type Recommendation struct {
	Action          string   `json:"action" schema:"required"`
	Priority        Severity `json:"priority" schema:"required,enum=critical|high|medium|low|info"`
	Reason          string   `json:"reason" schema:"required"`
	EstimatedImpact *string  `json:"estimated_impact"`
}

// RepoHealthScore is the overall health of a repository.
type RepoHealthScore struct {
	OverallScore   int            `json:"overall_score" schema:"required,min=0,max=100"`
	CategoryScores map[string]int `json:"category_scores" schema:"min=0,max=100"`
	Grade          string         `json:"grade" schema:"required"`
}

// IsHealthy reports a score of 70 or more.
func (h RepoHealthScore) IsHealthy() bool {
	return h.OverallScore >= 70
}

// BaseCommandOutput holds the fields every command output shares.
type BaseCommandOutput struct {
	Command         string            `json:"command"`
	Success         bool              `json:"success" schema:"default=true"`
	Issues          []Issue           `json:"issues"`
	Recommendations []Recommendation  `json:"recommendations"`
	Metadata        map[string]string `json:"metadata"`
}

// Output is implemented by every top-level command output.
type Output interface {
	// CommandName is the default for the "command" field.
	CommandName() string
}

// Grade maps a 0-100 score to a letter.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// Str returns a pointer to s, for optional fields.
func Str(s string) *string { return &s }

// Int returns a pointer to n, for optional fields.
func Int(n int) *int { return &n }

// Deref returns *p or fallback when p is nil.
func Deref(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
