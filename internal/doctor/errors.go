// Package doctor defines the error family surfaced by repodoc commands.
// Every error carries a user-facing message and an optional hint, and maps
// to a process exit code.
package doctor

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind classifies an Error for rendering and exit-code mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindCopilotNotFound
	KindCopilotExecution
	KindCopilotTimeout
	KindOutputParse
	KindSchemaValidation
	KindEmptyRepository
	KindInvalidRepository
	KindUsage
	KindIO
	KindConfig
)

// String returns a short identifier used in logs.
func (k Kind) String() string {
	switch k {
	case KindCopilotNotFound:
		return "copilot_not_found"
	case KindCopilotExecution:
		return "copilot_execution"
	case KindCopilotTimeout:
		return "copilot_timeout"
	case KindOutputParse:
		return "output_parse"
	case KindSchemaValidation:
		return "schema_validation"
	case KindEmptyRepository:
		return "empty_repository"
	case KindInvalidRepository:
		return "invalid_repository"
	case KindUsage:
		return "usage"
	case KindIO:
		return "io"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// FieldError is a single schema violation at a dotted location.
type FieldError struct {
	Loc string
	Msg string
}

func (f FieldError) String() string {
	if f.Loc == "" {
		return f.Msg
	}
	return f.Loc + ": " + f.Msg
}

// Error is the common error type. Optional fields are populated depending on Kind.
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	Err     error

	Stderr    string
	ExitCode  int
	Timeout   time.Duration
	RawOutput string
	Fields    []FieldError
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Hint == "" {
		return e.Message
	}
	return fmt.Sprintf("%s\n\n💡 Hint: %s", e.Message, e.Hint)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same Kind so sentinel comparisons work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is checks.
var (
	ErrCopilotNotFound   = &Error{Kind: KindCopilotNotFound}
	ErrCopilotExecution  = &Error{Kind: KindCopilotExecution}
	ErrCopilotTimeout    = &Error{Kind: KindCopilotTimeout}
	ErrOutputParse       = &Error{Kind: KindOutputParse}
	ErrSchemaValidation  = &Error{Kind: KindSchemaValidation}
	ErrEmptyRepository   = &Error{Kind: KindEmptyRepository}
	ErrInvalidRepository = &Error{Kind: KindInvalidRepository}
	ErrUsage             = &Error{Kind: KindUsage}
)

const copilotDocsURL = "https://docs.github.com/en/copilot/how-tos/copilot-cli/use-copilot-cli"

// CopilotNotFound reports a missing CLI binary. The binary name selects the install hint.
func CopilotNotFound(binary string, cause error) *Error {
	if binary == "claude" {
		return &Error{
			Kind:    KindCopilotNotFound,
			Message: "Claude Code CLI not found in your PATH.\n\nRepoDoctor needs the configured backend CLI to function.",
			Hint:    "Install Claude Code with:\n  npm install -g @anthropic-ai/claude-code\n\nThen authenticate by running:\n  claude",
			Err:     cause,
		}
	}
	return &Error{
		Kind: KindCopilotNotFound,
		Message: "GitHub Copilot CLI not found in your PATH.\n\n" +
			"RepoDoctor requires the GitHub Copilot CLI to function.",
		Hint: "Install GitHub Copilot CLI with:\n" +
			"  npm install -g @github/copilot\n\n" +
			"Launch Copilot CLI:\n" +
			"  copilot\n\n" +
			"Then authenticate:\n" +
			"  /login\n\n" +
			"More info: " + copilotDocsURL,
		Err: cause,
	}
}

// CopilotExecution reports a failed or empty CLI run.
func CopilotExecution(message, stderr string, exitCode int) *Error {
	var hint string
	switch {
	case exitCode == 1 && strings.Contains(strings.ToLower(stderr), "authentication"):
		hint = "Run 'copilot' and then '/login' to authenticate with GitHub Copilot"
	case stderr != "":
		hint = "Copilot CLI error output:\n" + Truncate(stderr, 200)
	}
	return &Error{
		Kind:     KindCopilotExecution,
		Message:  message,
		Hint:     hint,
		Stderr:   stderr,
		ExitCode: exitCode,
	}
}

// CopilotTimeout reports a run killed by its deadline. A zero timeout reads as "default".
func CopilotTimeout(timeout time.Duration, cause error) *Error {
	return &Error{
		Kind:    KindCopilotTimeout,
		Message: "Copilot CLI execution timed out after " + formatTimeout(timeout),
		Hint: "Try increasing the timeout with a larger value, or check if your " +
			"repository is very large. Large repositories may take longer to analyze.",
		Timeout: timeout,
		Err:     cause,
	}
}

// OutputParse reports output that could not be decoded as JSON.
func OutputParse(message, raw string, cause error) *Error {
	return &Error{
		Kind:    KindOutputParse,
		Message: message,
		Hint: "The Copilot CLI response was not valid JSON. " +
			"This might be a temporary issue. Try running the command again. " +
			"Raw output has been logged for debugging.",
		RawOutput: raw,
		Err:       cause,
	}
}

// SchemaValidation reports decoded output that does not match a schema.
func SchemaValidation(message string, fields []FieldError) *Error {
	return &Error{
		Kind:    KindSchemaValidation,
		Message: message,
		Hint: "The Copilot CLI returned data that doesn't match the expected format:\n" +
			FormatFieldErrors(fields) + "\n\n" +
			"This might indicate a change in Copilot's output format. " +
			"Please report this issue with the full error details.",
		Fields: fields,
	}
}

// FormatFieldErrors lists the first three violations and counts the rest.
func FormatFieldErrors(fields []FieldError) string {
	lines := make([]string, 0, 4)
	for i, f := range fields {
		if i == 3 {
			lines = append(lines, fmt.Sprintf("  ... and %d more errors", len(fields)-3))
			break
		}
		lines = append(lines, "  • "+f.String())
	}
	return strings.Join(lines, "\n")
}

// EmptyRepository reports a directory without analyzable source files.
func EmptyRepository() *Error {
	return &Error{
		Kind:    KindEmptyRepository,
		Message: "Repository appears to be empty or has no analyzable content",
		Hint:    "Make sure you're in a directory with source code files",
	}
}

// InvalidRepository reports a path that is not a usable directory.
func InvalidRepository(path string, cause error) *Error {
	return &Error{
		Kind:    KindInvalidRepository,
		Message: "Not a valid repository directory: " + path,
		Hint:    "Run this command from within a code repository directory",
		Err:     cause,
	}
}

// Usage reports invalid flags or missing prerequisites.
func Usage(format string, args ...any) *Error {
	return &Error{Kind: KindUsage, Message: fmt.Sprintf(format, args...)}
}

// IO wraps a filesystem failure with context.
func IO(message string, cause error) *Error {
	return &Error{Kind: KindIO, Message: fmt.Sprintf("%s: %v", message, cause), Err: cause}
}

// Config wraps a configuration failure.
func Config(cause error) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: fmt.Sprintf("Invalid configuration: %v", cause),
		Hint:    "Check .repodoc/config.yaml and REPODOC_* environment variables",
		Err:     cause,
	}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// IsKind reports whether err's chain contains an *Error of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// Title is the heading printed above an error message.
func Title(err error) string {
	switch KindOf(err) {
	case KindCopilotNotFound:
		return "Copilot CLI Not Found"
	case KindCopilotTimeout:
		return "Operation Timed Out"
	case KindCopilotExecution:
		return "Copilot Execution Failed"
	case KindOutputParse, KindSchemaValidation:
		return "Output Parsing Failed"
	case KindEmptyRepository, KindInvalidRepository:
		return "Repository Error"
	case KindUnknown:
		return "Unexpected error"
	default:
		return "Error"
	}
}

// formatTimeout renders whole-second timeouts as "N seconds" and anything
// finer with time.Duration's notation.
func formatTimeout(timeout time.Duration) string {
	switch {
	case timeout <= 0:
		return "default seconds"
	case timeout == time.Second:
		return "1 second"
	case timeout%time.Second == 0:
		return fmt.Sprintf("%d seconds", int64(timeout/time.Second))
	default:
		return timeout.String()
	}
}

// Truncate shortens s to at most n bytes, backing off so that a multi-byte
// character is never split.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
