// Package scan runs every analysis module against a repository and folds the
// results into a single health score.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"repodoctor/internal/schemas"
)

// Querier sends a prompt to the backend and decodes the answer into target.
type Querier interface {
	Query(ctx context.Context, prompt, dir string, target any) (bool, error)
}

// Prompter renders the prompt for a command.
type Prompter interface {
	Render(command string, vars map[string]string) (string, error)
}

// Module describes one analysis step of a scan.
type Module struct {
	Name     string
	Running  string
	Complete string
	Short    string
}

// Modules lists the scan steps in result order.
var Modules = []Module{
	{Name: "diet", Running: "Running diet analysis...", Complete: "Diet analysis complete", Short: "Diet analysis"},
	{Name: "tour", Running: "Generating repository tour...", Complete: "Tour generation complete", Short: "Tour generation"},
	{Name: "docker", Running: "Analyzing Dockerfile...", Complete: "Docker analysis complete", Short: "Docker analysis"},
	{Name: "deadcode", Running: "Detecting dead code...", Complete: "Dead code analysis complete", Short: "Dead code analysis"},
}

// Progress receives module lifecycle events. With Concurrency above 1 the
// methods are called from several goroutines.
type Progress interface {
	Start(i, n int, m Module)
	Done(i, n int, m Module)
	Failed(i, n int, m Module, err error)
	Skipped(i, n int, m Module, reason string)
}

// NopProgress ignores all events.
type NopProgress struct{}

func (NopProgress) Start(int, int, Module)           {}
func (NopProgress) Done(int, int, Module)            {}
func (NopProgress) Failed(int, int, Module, error)   {}
func (NopProgress) Skipped(int, int, Module, string) {}

// Options tunes a scan.
type Options struct {
	SkipDocker   bool
	SkipDeadcode bool
	// Concurrency is how many modules run at once; values below 1 mean 1.
	Concurrency int
	Progress    Progress
}

// Outputs holds the typed output of each module that succeeded.
type Outputs struct {
	Diet     *schemas.DietOutput
	Tour     *schemas.TourOutput
	Docker   *schemas.DockerOutput
	Deadcode *schemas.DeadCodeOutput
}

// Scanner runs full scans.
type Scanner struct {
	querier Querier
	prompts Prompter
	log     *zap.Logger
	now     func() time.Time
	newID   func() string
}

// New returns a Scanner.
func New(q Querier, p Prompter, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{querier: q, prompts: p, log: log, now: time.Now, newID: uuid.NewString}
}

// Run executes the modules against root. A failing module is recorded in its
// ModuleResult and does not stop the others. Run only fails when ctx is done.
func (s *Scanner) Run(ctx context.Context, root string, opts Options) (*schemas.ScanResult, *Outputs, error) {
	progress := opts.Progress
	if progress == nil {
		progress = NopProgress{}
	}
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	started := s.now()
	scanID := s.newID()
	s.log.Info("Starting scan",
		zap.String("scan_id", scanID),
		zap.String("root", root),
		zap.Int("concurrency", limit))

	n := len(Modules)
	results := make([]schemas.ModuleResult, n)
	outputs := &Outputs{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, m := range Modules {
		if reason, skip := s.skipReason(root, m.Name, opts); skip {
			results[i] = schemas.ModuleResult{ModuleName: m.Name, Skipped: true}
			progress.Skipped(i, n, m, reason)
			s.log.Info("Module skipped", zap.String("module", m.Name), zap.String("reason", reason))
			continue
		}

		g.Go(func() error {
			progress.Start(i, n, m)
			res, err := s.runModule(gctx, root, m.Name, outputs)
			if err != nil {
				s.log.Error("Module failed", zap.String("module", m.Name), zap.Error(err))
				msg := err.Error()
				res = schemas.ModuleResult{ModuleName: m.Name, Error: &msg}
				results[i] = res
				progress.Failed(i, n, m, err)
				return nil
			}
			results[i] = res
			progress.Done(i, n, m)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	finished := s.now()
	result := &schemas.ScanResult{
		ScanID:         scanID,
		StartedAt:      &started,
		FinishedAt:     &finished,
		HealthScore:    HealthScore(outputs),
		ModuleResults:  results,
		DockerAnalysis: []schemas.DockerfileAnalysis{},
	}
	if outputs.Diet != nil {
		result.DietAnalysis = &outputs.Diet.Analysis
	}
	if outputs.Tour != nil {
		result.TourSummary = &outputs.Tour.Tour
	}
	if outputs.Docker != nil && outputs.Docker.Dockerfiles != nil {
		result.DockerAnalysis = outputs.Docker.Dockerfiles
	}
	if outputs.Deadcode != nil {
		result.DeadcodeSummary = &outputs.Deadcode.Summary
	}

	ok, failed := result.Counts()
	s.log.Info("Scan finished",
		zap.String("scan_id", scanID),
		zap.Int("score", result.HealthScore.OverallScore),
		zap.String("grade", result.HealthScore.Grade),
		zap.Int("modules_ok", ok),
		zap.Int("modules_failed", failed),
		zap.Duration("elapsed", finished.Sub(started)))
	return result, outputs, nil
}

func (s *Scanner) skipReason(root, name string, opts Options) (string, bool) {
	switch name {
	case "docker":
		if opts.SkipDocker {
			return "Skipping Docker analysis", true
		}
		if _, err := os.Stat(filepath.Join(root, "Dockerfile")); err != nil {
			return "No Dockerfile found, skipping", true
		}
	case "deadcode":
		if opts.SkipDeadcode {
			return "Skipping dead code analysis", true
		}
	}
	return "", false
}

// runModule queries one module and stores its output. Each module writes a
// distinct field of out.
func (s *Scanner) runModule(ctx context.Context, root, name string, out *Outputs) (schemas.ModuleResult, error) {
	vars := map[string]string{"repo_path": root}
	if name == "docker" {
		vars["dockerfile_path"] = filepath.Join(root, "Dockerfile")
	}
	prompt, err := s.prompts.Render(name, vars)
	if err != nil {
		return schemas.ModuleResult{}, err
	}

	res := schemas.ModuleResult{ModuleName: name, Success: true}
	switch name {
	case "diet":
		var o schemas.DietOutput
		if _, err := s.querier.Query(ctx, prompt, root, &o); err != nil {
			return res, err
		}
		out.Diet = &o
		res.IssuesCount = len(o.Issues)
		res.Score = schemas.Int(dietScore(&o))
	case "tour":
		var o schemas.TourOutput
		if _, err := s.querier.Query(ctx, prompt, root, &o); err != nil {
			return res, err
		}
		out.Tour = &o
		res.IssuesCount = len(o.Issues)
	case "docker":
		var o schemas.DockerOutput
		if _, err := s.querier.Query(ctx, prompt, root, &o); err != nil {
			return res, err
		}
		out.Docker = &o
		res.IssuesCount = o.IssueCount()
		res.Score = schemas.Int(dockerScore(&o))
	case "deadcode":
		var o schemas.DeadCodeOutput
		if _, err := s.querier.Query(ctx, prompt, root, &o); err != nil {
			return res, err
		}
		out.Deadcode = &o
		res.IssuesCount = o.Summary.TotalFindings
		res.Score = schemas.Int(deadcodeScore(&o))
	default:
		return res, fmt.Errorf("unknown scan module %q", name)
	}
	return res, nil
}
