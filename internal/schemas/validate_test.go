package schemas

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repodoctor/internal/doctor"
)

func decodeJSON(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

const dietJSON = `{
  "analysis": {
    "total_size_bytes": 1500000,
    "total_size_human": "1.5 MB",
    "largest_files": [{"path": "dist/bundle.js", "size_bytes": 500000, "size_human": "500 KB"}],
    "largest_directories": [{"path": "node_modules", "size_bytes": 1000000, "size_human": "1 MB", "file_count": 100}],
    "suspected_artifacts": ["dist/", "build/"],
    "missing_hygiene_files": [
      {"filename": "LICENSE", "importance": "Specifies project license", "template_url": "https://choosealicense.com/"}
    ]
  },
  "issues": [{
    "title": "Large build artifacts committed",
    "description": "dist/ directory contains build artifacts",
    "severity": "high",
    "category": "bloat",
    "file_path": "dist/bundle.js",
    "suggestion": "Add dist/ to .gitignore"
  }],
  "recommendations": [{"action": "Add .gitignore", "reason": "Prevent committing build artifacts", "priority": "high"}],
  "metadata": {"timestamp": "2024-01-01T12:00:00Z"},
  "diet_markdown": "# Repository Diet Analysis"
}`

func TestDecodeDietOutput(t *testing.T) {
	var out DietOutput
	require.NoError(t, Decode(decodeJSON(t, dietJSON), &out))

	assert.Equal(t, "diet", out.Command, "command defaults to the schema's command")
	assert.True(t, out.Success, "success defaults to true")
	assert.Equal(t, int64(1500000), out.Analysis.TotalSizeBytes)
	assert.Equal(t, "# Repository Diet Analysis", out.DietMarkdown)
	require.Len(t, out.Issues, 1)
	assert.Equal(t, SeverityHigh, out.Issues[0].Severity)
	assert.Equal(t, "dist/bundle.js", Deref(out.Issues[0].FilePath, ""))
	assert.Nil(t, out.Issues[0].LineNumber)
	assert.Equal(t, map[string]string{"timestamp": "2024-01-01T12:00:00Z"}, out.Metadata)

	want := MissingFile{Filename: "LICENSE", Importance: "Specifies project license", TemplateURL: Str("https://choosealicense.com/")}
	if diff := cmp.Diff(want, out.Analysis.MissingHygieneFiles[0]); diff != "" {
		t.Errorf("missing file mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFillsEmptyLists(t *testing.T) {
	var out TourOutput
	require.NoError(t, Decode(decodeJSON(t, `{"tour": {"stack": {}}, "tour_markdown": "# Tour"}`), &out))

	assert.NotNil(t, out.Issues)
	assert.Empty(t, out.Issues)
	assert.NotNil(t, out.Tour.Stack.Languages)
	assert.NotNil(t, out.Tour.EntryPoints)
	assert.Nil(t, out.Tour.ArchitectureNotes)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"issues":[]`)
}

func TestDecodeMissingRequired(t *testing.T) {
	var out DietOutput
	err := Decode(decodeJSON(t, `{"command": "diet"}`), &out)
	require.Error(t, err)

	var de *doctor.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, doctor.KindSchemaValidation, de.Kind)
	assert.Equal(t, "Output doesn't match expected schema DietOutput", de.Message)
	assert.Equal(t, []doctor.FieldError{
		{Loc: "analysis", Msg: "field required"},
		{Loc: "diet_markdown", Msg: "field required"},
	}, de.Fields)
}

func TestCheckRules(t *testing.T) {
	tests := []struct {
		name   string
		target any
		input  string
		want   []doctor.FieldError
	}{
		{
			name:   "bad enum",
			target: &Issue{},
			input:  `{"title": "t", "description": "d", "severity": "urgent", "category": "c"}`,
			want:   []doctor.FieldError{{Loc: "severity", Msg: "must be one of critical, high, medium, low, info"}},
		},
		{
			name:   "wrong type",
			target: &FileInfo{},
			input:  `{"path": 12, "size_bytes": "big", "size_human": "1 KB"}`,
			want: []doctor.FieldError{
				{Loc: "path", Msg: "expected string"},
				{Loc: "size_bytes", Msg: "expected integer"},
			},
		},
		{
			name:   "score out of range",
			target: &RepoHealthScore{},
			input:  `{"overall_score": 120, "grade": "A", "category_scores": {"diet": -1}}`,
			want: []doctor.FieldError{
				{Loc: "overall_score", Msg: "must be between 0 and 100"},
				{Loc: "category_scores.diet", Msg: "must be between 0 and 100"},
			},
		},
		{
			name:   "line range length",
			target: &DeadCodeFinding{},
			input:  `{"file_path": "a.py", "line_range": [1, 2, 3], "code_type": "function", "confidence": "high", "reason": "unused"}`,
			want:   []doctor.FieldError{{Loc: "line_range", Msg: "expected 2 items"}},
		},
		{
			name:   "nested list location",
			target: &DockerOutput{},
			input:  `{"dockerfiles": [{"dockerfile_path": "Dockerfile", "issues": [{"issue_type": "security", "current": "USER root", "explanation": "root"}]}]}`,
			want:   []doctor.FieldError{{Loc: "dockerfiles.0.issues.0.severity", Msg: "field required"}},
		},
		{
			name:   "root not an object",
			target: &DietOutput{},
			input:  `[1, 2]`,
			want:   []doctor.FieldError{{Loc: "", Msg: "expected object"}},
		},
		{
			name:   "null for optional pointer",
			target: &MissingFile{},
			input:  `{"filename": ".gitignore", "importance": "x", "template_url": null}`,
			want:   nil,
		},
		{
			name:   "integral float accepted",
			target: &DeadCodeSummary{},
			input:  `{"total_findings": 3.0}`,
			want:   nil,
		},
		{
			name:   "fractional float rejected",
			target: &DeadCodeSummary{},
			input:  `{"total_findings": 3.5}`,
			want:   []doctor.FieldError{{Loc: "total_findings", Msg: "expected integer"}},
		},
		{
			name:   "integer beyond int64 rejected",
			target: &DeadCodeSummary{},
			input:  `{"total_findings": 1e20}`,
			want:   []doctor.FieldError{{Loc: "total_findings", Msg: "expected integer"}},
		},
		{
			name:   "negative integer beyond int64 rejected",
			target: &Issue{},
			input:  `{"title": "t", "description": "d", "severity": "low", "category": "c", "line_number": -1e20}`,
			want:   []doctor.FieldError{{Loc: "line_number", Msg: "expected integer"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, _, err := Check(decodeJSON(t, tt.input), tt.target)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, errs); diff != "" {
				t.Errorf("Check() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeIgnoresExtraFields(t *testing.T) {
	var out DeadCodeOutput
	input := `{"summary": {"total_findings": 0}, "unexpected": {"nested": true}}`
	require.NoError(t, Decode(decodeJSON(t, input), &out))
	assert.Equal(t, "deadcode", out.Command)
}

func TestReportOutputKeepsExtraFields(t *testing.T) {
	input := `{
		"markdown_content": "# Report",
		"report_title": "Health",
		"generation_timestamp": "2025-01-01T00:00:00Z",
		"issues": [{"title": "x"}]
	}`
	var out ReportOutput
	require.NoError(t, Decode(decodeJSON(t, input), &out))

	assert.Equal(t, "report", out.Command)
	assert.True(t, out.Success)
	require.Contains(t, out.Extra, "issues")

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"issues":[{"title":"x"}]`)
	assert.Contains(t, string(data), `"report_title":"Health"`)
}

func TestDecodeLineRange(t *testing.T) {
	var out DeadCodeOutput
	input := `{
		"findings": [{"file_path": "a.py", "line_range": [10, 20], "code_type": "function", "confidence": "high", "reason": "never called"}],
		"summary": {"total_findings": 1, "high_confidence_count": 1}
	}`
	require.NoError(t, Decode(decodeJSON(t, input), &out))
	require.NotNil(t, out.Findings[0].LineRange)
	assert.Equal(t, [2]int{10, 20}, *out.Findings[0].LineRange)
}

func TestDecodeRejectsNonPointer(t *testing.T) {
	err := Decode(map[string]any{}, DietOutput{})
	assert.Error(t, err)
}
