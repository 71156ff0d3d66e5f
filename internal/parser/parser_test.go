package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repodoctor/internal/doctor"
	"repodoctor/internal/logging"
	"repodoctor/internal/schemas"
)

const fence = "```"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain object",
			raw:  `{"key": "value"}`,
			want: `{"key": "value"}`,
		},
		{
			name: "json fence",
			raw:  "Here is the analysis:\n" + fence + "json\n{\"key\": \"value\"}\n" + fence + "\nDone.",
			want: `{"key": "value"}`,
		},
		{
			name: "bare fence",
			raw:  fence + "\n{\"key\": \"value\"}\n" + fence,
			want: `{"key": "value"}`,
		},
		{
			name: "first of several fences",
			raw:  fence + "json\n{\"first\": 1}\n" + fence + "\n\n" + fence + "json\n{\"second\": 2}\n" + fence,
			want: `{"first": 1}`,
		},
		{
			name: "other language fence is skipped",
			raw:  fence + "python\nprint({'a': 1})\n" + fence + "\nResult: {\"ok\": true}",
			want: `{"ok": true}`,
		},
		{
			name: "surrounding prose",
			raw:  "Sure! Here you go: {\"a\": {\"b\": [1, 2]}} Let me know [if] you need more.",
			want: `{"a": {"b": [1, 2]}}`,
		},
		{
			name: "braces inside strings",
			raw:  `note {"text": "use } and { freely", "n": 1} end`,
			want: `{"text": "use } and { freely", "n": 1}`,
		},
		{
			name: "array payload",
			raw:  "list: [{\"a\": 1}, {\"a\": 2}]",
			want: `[{"a": 1}, {"a": 2}]`,
		},
		{
			name: "unbalanced falls back to greedy span",
			raw:  `prefix {"a": [1, 2} suffix`,
			want: `{"a": [1, 2}`,
		},
		{
			name: "no markers",
			raw:  "  not json at all  ",
			want: "not json at all",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.raw))
		})
	}
}

func TestParseJSON(t *testing.T) {
	p := New(nil)

	data, err := p.ParseJSON("```json\n{\"key\": \"value\", \"n\": 3}\n```")
	require.NoError(t, err)
	m, ok := data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "value", m["key"])
}

func TestParseJSONInvalidDumpsRawOutput(t *testing.T) {
	dir := t.TempDir()
	l, err := logging.New(logging.Options{Dir: dir})
	require.NoError(t, err)
	defer l.Close()

	p := New(l)
	_, err = p.ParseJSON("This is not JSON at all")
	require.Error(t, err)

	var de *doctor.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, doctor.KindOutputParse, de.Kind)
	assert.Equal(t, "This is not JSON at all", de.RawOutput)
	assert.True(t, strings.HasPrefix(de.Message, "Failed to parse output as JSON"))

	matches, err := filepath.Glob(filepath.Join(dir, "error_parse_error_*.txt"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "This is not JSON at all", string(content))
}

func TestParseJSONEmpty(t *testing.T) {
	_, err := New(nil).ParseJSON("   ")
	assert.True(t, doctor.IsKind(err, doctor.KindOutputParse))
}

func TestParseAndValidate(t *testing.T) {
	raw := "Analysis complete.\n```json\n" + `{
  "analysis": {"total_size_bytes": 2048, "total_size_human": "2 KB"},
  "diet_markdown": "# Diet"
}` + "\n```"

	var out schemas.DietOutput
	require.NoError(t, New(nil).ParseAndValidate(raw, &out))
	assert.Equal(t, "diet", out.Command)
	assert.Equal(t, int64(2048), out.Analysis.TotalSizeBytes)
	assert.Equal(t, "# Diet", out.DietMarkdown)
}

func TestParseAndValidateErrors(t *testing.T) {
	p := New(nil)

	t.Run("invalid json", func(t *testing.T) {
		var out schemas.DietOutput
		err := p.ParseAndValidate("{not valid}", &out)
		assert.True(t, doctor.IsKind(err, doctor.KindOutputParse))
	})

	t.Run("wrong schema", func(t *testing.T) {
		var out schemas.DietOutput
		err := p.ParseAndValidate(`{"totally": "different"}`, &out)
		assert.True(t, doctor.IsKind(err, doctor.KindSchemaValidation))
	})

	t.Run("try variant", func(t *testing.T) {
		var out schemas.TourOutput
		assert.False(t, p.TryParseAndValidate("nope", &out))
		assert.True(t, p.TryParseAndValidate(`{"tour": {"stack": {"languages": ["Go"]}}, "tour_markdown": "# Tour"}`, &out))
		assert.Equal(t, []string{"Go"}, out.Tour.Stack.Languages)
	})
}
