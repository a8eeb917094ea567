// Package convert runs the whole conversion of a task file: parse, check
// compatibility, synthesize the induction task and render it.
package convert

import (
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ilnlp/asp"
	"ilnlp/config"
	"ilnlp/ilasp"
	"ilnlp/marco"
	"ilnlp/parser"
	"ilnlp/sat"
	"ilnlp/stat"
	"ilnlp/task"
)

type Pipeline struct {
	Solver     task.Solver
	LeastModel task.LeastModeler
	// Template renders the induction task; nil selects the ILASP default.
	Template *template.Template
	// MapSolver builds the MARCO map for Diagnose; nil selects maxsat.
	MapSolver func(rules []int) (marco.Solver, error)
	Logger    *zap.Logger
}

// NewSolver builds the answer-set backend named in cfg.
func NewSolver(cfg config.SolverConfig, logger *zap.Logger) (task.Solver, error) {
	logger = orNop(logger)
	switch cfg.Backend {
	case "", "native":
		return asp.NewEngine(cfg.SAT, logger.Named("asp")), nil
	case "clingo":
		return asp.NewClingo(cfg.Clingo, logger.Named("clingo")), nil
	}
	return nil, fmt.Errorf("unknown solver backend %q", cfg.Backend)
}

// NewLeastModeler builds the least-model backend named in cfg. "native"
// reuses solver when it is the built-in engine.
func NewLeastModeler(cfg config.SolverConfig, solver task.Solver, logger *zap.Logger) (task.LeastModeler, error) {
	logger = orNop(logger)
	switch cfg.LeastModel {
	case "", "native":
		if engine, ok := solver.(*asp.Engine); ok {
			return engine, nil
		}
		return asp.NewEngine(cfg.SAT, logger.Named("asp")), nil
	case "solver":
		return task.FirstModel{Solver: solver}, nil
	case "mangle":
		return asp.NewMangle(logger.Named("mangle")), nil
	case "prolog":
		return asp.NewProlog(logger.Named("prolog")), nil
	}
	return nil, fmt.Errorf("unknown least model backend %q", cfg.LeastModel)
}

// NewMapSolver returns the MARCO map constructor named in cfg.
func NewMapSolver(cfg config.SolverConfig) (func(rules []int) (marco.Solver, error), error) {
	switch cfg.Map {
	case "", "maxsat":
		return func(rules []int) (marco.Solver, error) {
			return marco.NewMaxsatSolver(marco.NewIntSet(rules...)), nil
		}, nil
	case "sat":
		return func(rules []int) (marco.Solver, error) {
			s, err := sat.New(cfg.SAT)
			if err != nil {
				return nil, err
			}
			return marco.NewSATSolver(s, marco.NewIntSet(rules...)), nil
		}, nil
	}
	return nil, fmt.Errorf("unknown map solver %q", cfg.Map)
}

func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	logger = orNop(logger)
	solver, err := NewSolver(cfg.Solver, logger)
	if err != nil {
		return nil, err
	}
	lm, err := NewLeastModeler(cfg.Solver, solver, logger)
	if err != nil {
		return nil, err
	}
	mapSolver, err := NewMapSolver(cfg.Solver)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{Solver: solver, LeastModel: lm, MapSolver: mapSolver, Logger: logger}
	if cfg.Template != "" {
		tmpl, err := ilasp.LoadTemplate(cfg.Template)
		if err != nil {
			return nil, err
		}
		p.Template = tmpl
	}
	return p, nil
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (p *Pipeline) logger() *zap.Logger {
	return orNop(p.Logger)
}

type Result struct {
	RunID   string
	Task    *task.InductionTask
	Program string
}

// Synthesize parses text, checks its examples for compatibility and builds
// the induction task. stats may be nil.
func (p *Pipeline) Synthesize(ctx context.Context, text string, stats *stat.Stats) (*Result, error) {
	if stats == nil {
		stats = stat.New()
	}
	runID := uuid.NewString()
	logger := p.logger().With(zap.String("run_id", runID))

	logger.Info("parsing task", zap.Int("bytes", len(text)))
	parsed, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	stats.Parse()
	logger.Debug("parsed task",
		zap.Int("rules", len(parsed.Background())),
		zap.Int("examples", len(parsed.Examples())),
		zap.Int("literals", parsed.Registry().Len()))

	if err := parsed.CheckCompatibility(ctx, p.Solver, p.LeastModel); err != nil {
		return nil, err
	}

	logger.Info("converting task")
	start := time.Now()
	induction, err := parsed.Synthesize(ctx, p.Solver, stats)
	if err != nil {
		return nil, err
	}
	stats.Convert()
	size, _ := stats.UniverseSize()
	logger.Info("converted task",
		zap.Int("universe", size),
		zap.Int("positive", len(induction.Positive())),
		zap.Int("negative", len(induction.Negative())),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{RunID: runID, Task: induction}, nil
}

// Convert synthesizes the induction task and renders it as a program.
func (p *Pipeline) Convert(ctx context.Context, text string, stats *stat.Stats) (*Result, error) {
	if stats == nil {
		stats = stat.New()
	}
	result, err := p.Synthesize(ctx, text, stats)
	if err != nil {
		return nil, err
	}
	program, err := result.Task.Render(p.Template)
	if err != nil {
		return nil, err
	}
	stats.Output()
	result.Program = program
	return result, nil
}
