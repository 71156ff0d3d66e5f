// Package copilot runs the backend AI CLI (GitHub Copilot CLI or Claude Code)
// as a subprocess and turns its answers into validated schema records.
package copilot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"repodoctor/internal/config"
	"repodoctor/internal/doctor"
	"repodoctor/internal/logging"
	"repodoctor/internal/parser"
)

const (
	BackendCopilot = "copilot"
	BackendClaude  = "claude"
)

// Options configures an Invoker.
type Options struct {
	Backend string
	// Binary overrides the executable name; defaults to the backend name.
	Binary string
	Model  string
	// Timeout bounds each subprocess run. Zero means no limit.
	Timeout     time.Duration
	RetrySuffix string

	Runner   Runner
	LookPath func(file string) (string, error)
	Logger   *logging.Logger
}

// OptionsFromConfig maps the loaded configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Backend:     cfg.Backend,
		Binary:      cfg.BinaryName(),
		Model:       cfg.Model,
		Timeout:     cfg.GetTimeout(),
		RetrySuffix: cfg.GetRetrySuffix(),
	}
}

// Invoker sends prompts to the backend CLI.
type Invoker struct {
	backend     string
	binary      string
	path        string
	model       string
	timeout     time.Duration
	retrySuffix string

	runner Runner
	log    *zap.Logger
	dumps  *logging.Logger
	parser *parser.Parser
}

// New checks that the backend binary is on PATH and returns an Invoker for it.
func New(opts Options) (*Invoker, error) {
	backend := opts.Backend
	if backend == "" {
		backend = BackendCopilot
	}
	if backend != BackendCopilot && backend != BackendClaude {
		return nil, doctor.Config(fmt.Errorf("unknown backend %q", backend))
	}
	binary := opts.Binary
	if binary == "" {
		binary = backend
	}
	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	suffix := opts.RetrySuffix
	if suffix == "" {
		suffix = config.DefaultRetrySuffix
	}

	path, err := lookPath(binary)
	if err != nil {
		return nil, doctor.CopilotNotFound(backend, err)
	}

	iv := &Invoker{
		backend:     backend,
		binary:      binary,
		path:        path,
		model:       opts.Model,
		timeout:     opts.Timeout,
		retrySuffix: suffix,
		runner:      runner,
		log:         logger.Category(logging.CategoryCopilot),
		dumps:       logger,
		parser:      parser.New(logger),
	}
	iv.log.Debug("Backend CLI resolved",
		zap.String("backend", backend),
		zap.String("path", path),
		zap.Duration("timeout", opts.Timeout))
	return iv, nil
}

// Backend returns the backend name.
func (iv *Invoker) Backend() string { return iv.backend }

// Timeout returns the per-run timeout, zero when unlimited.
func (iv *Invoker) Timeout() time.Duration { return iv.timeout }

func (iv *Invoker) args(prompt string) []string {
	args := []string{"-p", prompt}
	if iv.model != "" {
		args = append(args, "--model", iv.model)
	}
	return args
}

// Invoke runs the backend once with prompt, in dir, and returns its trimmed stdout.
func (iv *Invoker) Invoke(ctx context.Context, prompt, dir string) (string, error) {
	if iv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.timeout)
		defer cancel()
	}

	iv.log.Info("Executing backend CLI",
		zap.String("binary", iv.binary),
		zap.String("dir", dir),
		zap.Int("prompt_chars", len(prompt)))
	iv.log.Debug("Prompt", zap.String("prompt", doctor.Truncate(prompt, 500)))

	start := time.Now()
	stdout, stderr, exitCode, err := iv.runner.Run(ctx, dir, iv.path, iv.args(prompt)...)
	elapsed := time.Since(start)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		iv.log.Error("Backend CLI timed out", zap.Duration("timeout", iv.timeout), zap.Duration("elapsed", elapsed))
		return "", doctor.CopilotTimeout(iv.timeout, ctx.Err())
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		iv.log.Warn("Backend CLI canceled", zap.Duration("elapsed", elapsed))
		return "", fmt.Errorf("backend CLI execution canceled: %w", ctx.Err())
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			iv.log.Error("Backend CLI not found", zap.Error(err))
			return "", doctor.CopilotNotFound(iv.backend, err)
		}
		iv.log.Error("Backend CLI could not run", zap.Error(err))
		e := doctor.CopilotExecution("Copilot CLI execution failed", string(stderr), exitCode)
		e.Err = err
		return "", e
	}

	if exitCode != 0 {
		errText := strings.TrimSpace(string(stderr))
		iv.log.Error("Backend CLI failed",
			zap.Int("exit_code", exitCode),
			zap.String("stderr", doctor.Truncate(errText, 500)))
		iv.dump(logging.DumpError, "copilot_error", string(stderr))
		return "", doctor.CopilotExecution(classifyStderr(errText), errText, exitCode)
	}

	output := strings.TrimSpace(strings.ToValidUTF8(string(stdout), "\uFFFD"))
	if output == "" {
		iv.log.Warn("Backend CLI returned empty output")
		return "", doctor.CopilotExecution(
			"Copilot CLI returned no output. Repository might be too small or empty.",
			strings.TrimSpace(string(stderr)), 0)
	}

	iv.dump(logging.DumpOutput, "copilot_output", output)
	iv.log.Info("Backend CLI succeeded",
		zap.Int("output_chars", len(output)),
		zap.Duration("elapsed", elapsed))
	return output, nil
}

func (iv *Invoker) dump(kind logging.DumpKind, name, content string) {
	path, err := iv.dumps.DumpRaw(kind, name, content)
	if err != nil {
		iv.log.Warn("Failed to save raw output", zap.Error(err))
		return
	}
	if path != "" {
		iv.log.Debug("Raw output saved", zap.String("path", path))
	}
}

// classifyStderr picks the user-facing message for a failed run.
func classifyStderr(stderr string) string {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "auth"):
		return "Copilot CLI authentication failed. Run 'copilot' to launch Copilot CLI. Then /login to authenticate."
	case strings.Contains(lower, "not found"):
		return "Copilot CLI command not recognized"
	case stderr != "":
		return "Copilot CLI error: " + doctor.Truncate(stderr, 200)
	default:
		return "Copilot CLI execution failed"
	}
}

// InvokeWithRetry runs prompt and, if the run fails, runs it once more with
// the strict-JSON suffix appended. Timeouts and a missing binary are not retried.
func (iv *Invoker) InvokeWithRetry(ctx context.Context, prompt, dir string) (string, bool, error) {
	output, err := iv.Invoke(ctx, prompt, dir)
	if err == nil {
		return output, false, nil
	}
	if !doctor.IsKind(err, doctor.KindCopilotExecution) {
		return "", false, err
	}

	iv.log.Warn("Backend CLI failed, retrying with strict JSON instructions", zap.Error(err))
	output, err = iv.Invoke(ctx, prompt+iv.retrySuffix, dir)
	if err != nil {
		return "", true, err
	}
	return output, true, nil
}

// Query runs prompt and decodes the answer into target, a pointer to a schema
// struct. Output that fails to parse or validate is retried once with the
// strict-JSON suffix unless a retry already happened, so the backend runs at
// most twice. It reports whether a retry was needed.
func (iv *Invoker) Query(ctx context.Context, prompt, dir string, target any) (bool, error) {
	output, retried, err := iv.InvokeWithRetry(ctx, prompt, dir)
	if err != nil {
		return retried, err
	}

	err = iv.parser.ParseAndValidate(output, target)
	if err == nil || retried {
		return retried, err
	}
	if !doctor.IsKind(err, doctor.KindOutputParse) && !doctor.IsKind(err, doctor.KindSchemaValidation) {
		return false, err
	}

	iv.log.Warn("Backend output rejected, retrying with strict JSON instructions", zap.Error(err))
	output, err = iv.Invoke(ctx, prompt+iv.retrySuffix, dir)
	if err != nil {
		return true, err
	}
	return true, iv.parser.ParseAndValidate(output, target)
}
