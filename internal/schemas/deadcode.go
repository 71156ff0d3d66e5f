package schemas

// DeadCodeFinding is one suspected piece of unused code.
type DeadCodeFinding struct {
	FilePath       string          `json:"file_path" schema:"required"`
	LineRange      *[2]int         `json:"line_range"`
	CodeType       string          `json:"code_type" schema:"required"`
	Confidence     ConfidenceLevel `json:"confidence" schema:"required,enum=high|medium|low"`
	Reason         string          `json:"reason" schema:"required"`
	Suggestion     *string         `json:"suggestion"`
	EstimatedLines *int            `json:"estimated_lines"`
}

// DeadCodeSummary aggregates findings.
type DeadCodeSummary struct {
	TotalFindings         int `json:"total_findings" schema:"required"`
	HighConfidenceCount   int `json:"high_confidence_count"`
	MediumConfidenceCount int `json:"medium_confidence_count"`
	LowConfidenceCount    int `json:"low_confidence_count"`
	EstimatedTotalLines   int `json:"estimated_total_lines"`
}

// DeadCodeOutput is the result of `repodoc deadcode`.
type DeadCodeOutput struct {
	BaseCommandOutput
	Findings      []DeadCodeFinding `json:"findings"`
	Summary       DeadCodeSummary   `json:"summary" schema:"required"`
	AnalysisNotes *string           `json:"analysis_notes"`
}

func (*DeadCodeOutput) CommandName() string { return "deadcode" }

// FindingsAtLeast groups findings by confidence, keeping levels at or above min.
// The map keys are high, medium and low.
func (d *DeadCodeOutput) FindingsAtLeast(min ConfidenceLevel) map[ConfidenceLevel][]DeadCodeFinding {
	groups := make(map[ConfidenceLevel][]DeadCodeFinding)
	for _, f := range d.Findings {
		if f.Confidence.Weight() < min.Weight() {
			continue
		}
		groups[f.Confidence] = append(groups[f.Confidence], f)
	}
	return groups
}
