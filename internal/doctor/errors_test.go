package doctor

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIncludesHint(t *testing.T) {
	err := EmptyRepository()
	assert.Equal(t,
		"Repository appears to be empty or has no analyzable content\n\n💡 Hint: Make sure you're in a directory with source code files",
		err.Error())

	plain := Usage("--in-place requires --fix")
	assert.Equal(t, "--in-place requires --fix", plain.Error())
}

func TestCopilotNotFound(t *testing.T) {
	err := CopilotNotFound("copilot", nil)
	assert.Contains(t, err.Error(), "GitHub Copilot CLI not found in your PATH")
	assert.Contains(t, err.Hint, "npm install -g @github/copilot")
	assert.Contains(t, err.Hint, "/login")
	assert.Contains(t, err.Hint, copilotDocsURL)

	claude := CopilotNotFound("claude", nil)
	assert.Contains(t, claude.Message, "Claude Code CLI")
}

func TestCopilotExecutionHints(t *testing.T) {
	tests := []struct {
		name     string
		stderr   string
		exitCode int
		wantHint string
	}{
		{"auth failure", "Authentication required", 1, "Run 'copilot' and then '/login' to authenticate with GitHub Copilot"},
		{"auth with other exit", "authentication required", 2, "Copilot CLI error output:\nauthentication required"},
		{"generic stderr", "boom", 3, "Copilot CLI error output:\nboom"},
		{"no stderr", "", 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CopilotExecution("failed", tt.stderr, tt.exitCode)
			assert.Equal(t, tt.wantHint, err.Hint)
			assert.Equal(t, tt.exitCode, err.ExitCode)
			assert.Equal(t, tt.stderr, err.Stderr)
		})
	}
}

func TestCopilotExecutionTruncatesStderr(t *testing.T) {
	long := strings.Repeat("x", 500)
	err := CopilotExecution("failed", long, 2)
	assert.Equal(t, "Copilot CLI error output:\n"+strings.Repeat("x", 200), err.Hint)
}

func TestCopilotTimeout(t *testing.T) {
	tests := []struct {
		timeout time.Duration
		want    string
	}{
		{30 * time.Second, "Copilot CLI execution timed out after 30 seconds"},
		{time.Second, "Copilot CLI execution timed out after 1 second"},
		{0, "Copilot CLI execution timed out after default seconds"},
		{300 * time.Millisecond, "Copilot CLI execution timed out after 300ms"},
		{1500 * time.Millisecond, "Copilot CLI execution timed out after 1.5s"},
	}
	for _, tt := range tests {
		t.Run(tt.timeout.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CopilotTimeout(tt.timeout, nil).Message)
		})
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))

	// "é" is two bytes; cutting at 2 would split it.
	got := Truncate("aé", 2)
	assert.Equal(t, "a", got)
	assert.True(t, utf8.ValidString(got))

	got = Truncate(strings.Repeat("日本", 100), 200)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 200)
	assert.Equal(t, 198, len(got))
}

func TestFormatFieldErrors(t *testing.T) {
	fields := []FieldError{
		{Loc: "analysis", Msg: "field required"},
		{Loc: "diet_markdown", Msg: "field required"},
		{Loc: "issues.0.severity", Msg: "must be one of critical, high, medium, low, info"},
		{Loc: "a", Msg: "b"},
		{Loc: "c", Msg: "d"},
	}
	got := FormatFieldErrors(fields)
	want := "  • analysis: field required\n" +
		"  • diet_markdown: field required\n" +
		"  • issues.0.severity: must be one of critical, high, medium, low, info\n" +
		"  ... and 2 more errors"
	assert.Equal(t, want, got)

	assert.Equal(t, "  • root: bad", FormatFieldErrors([]FieldError{{Loc: "root", Msg: "bad"}}))
}

func TestSchemaValidationKeepsFields(t *testing.T) {
	err := SchemaValidation("Output doesn't match expected schema DietOutput", []FieldError{{Loc: "analysis", Msg: "field required"}})
	assert.Len(t, err.Fields, 1)
	assert.Contains(t, err.Error(), "analysis: field required")
}

func TestKindMatchingThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("diet module: %w", CopilotTimeout(time.Second, nil))

	assert.True(t, errors.Is(wrapped, ErrCopilotTimeout))
	assert.False(t, errors.Is(wrapped, ErrCopilotExecution))
	assert.True(t, IsKind(wrapped, KindCopilotTimeout))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))

	var de *Error
	require.True(t, errors.As(wrapped, &de))
	assert.Equal(t, time.Second, de.Timeout)
}

func TestExitCodeAndTitle(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("x")))
	assert.Equal(t, 1, ExitCode(EmptyRepository()))

	tests := map[string]error{
		"Copilot CLI Not Found":    CopilotNotFound("copilot", nil),
		"Operation Timed Out":      CopilotTimeout(0, nil),
		"Copilot Execution Failed": CopilotExecution("x", "", 1),
		"Output Parsing Failed":    OutputParse("x", "raw", nil),
		"Repository Error":         InvalidRepository("/nope", nil),
		"Error":                    Usage("bad flag"),
		"Unexpected error":         errors.New("boom"),
	}
	for want, err := range tests {
		assert.Equal(t, want, Title(err))
	}
}
