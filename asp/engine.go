// Package asp evaluates normal logic programs under the answer-set
// semantics. Engine grounds programs itself and searches stable models on
// a SAT solver; Clingo delegates to an external clingo binary.
package asp

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ilnlp/sat"
	"ilnlp/task"
)

// Engine is the built-in answer-set solver.
type Engine struct {
	// SAT names the backend from package sat; empty selects the default.
	SAT    string
	Logger *zap.Logger
}

func NewEngine(satName string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{SAT: satName, Logger: logger}
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Engine) ground(ctx context.Context, rules []task.Rule, facts []task.Literal) (*program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	prog, err := ground(rules, facts)
	if err != nil {
		return nil, err
	}
	e.logger().Debug("grounded program",
		zap.Int("atoms", len(prog.atoms)),
		zap.Int("rules", len(prog.rules)),
		zap.Duration("elapsed", time.Since(start)))
	return prog, nil
}

// GroundFacts returns the atoms true in the well-founded model of rules
// extended with every fact set.
func (e *Engine) GroundFacts(ctx context.Context, rules []task.Rule, facts ...[]task.Literal) ([]task.Literal, error) {
	var all []task.Literal
	for _, fs := range facts {
		all = append(all, fs...)
	}
	prog, err := e.ground(ctx, rules, all)
	if err != nil {
		return nil, err
	}
	return prog.literals(prog.wellFounded()), nil
}

// Models enumerates up to limit stable models; limit <= 0 means all.
func (e *Engine) Models(ctx context.Context, rules []task.Rule, facts []task.Literal, limit int) ([][]task.Literal, error) {
	prog, err := e.ground(ctx, rules, facts)
	if err != nil {
		return nil, err
	}
	solver, err := sat.New(e.SAT)
	if err != nil {
		return nil, err
	}
	models, candidates, err := prog.stableModels(ctx, solver, limit)
	if err != nil {
		return nil, err
	}
	e.logger().Debug("enumerated stable models",
		zap.Int("models", len(models)),
		zap.Int("candidates", candidates),
		zap.Int("limit", limit))

	out := make([][]task.Literal, len(models))
	for i, m := range models {
		out[i] = prog.literals(m)
	}
	return out, nil
}

// LeastModel computes the least model of a definite program. Constraints
// are checked against it; a violated constraint leaves no model.
func (e *Engine) LeastModel(ctx context.Context, rules []task.Rule, facts []task.Literal) ([]task.Literal, error) {
	for _, r := range rules {
		if !r.IsDefinite() {
			return nil, fmt.Errorf("rule %q is not definite", r)
		}
	}
	prog, err := e.ground(ctx, rules, facts)
	if err != nil {
		return nil, err
	}
	model := prog.leastModel(nil)
	if prog.violates(model) {
		return nil, task.ErrNoModel
	}
	return prog.literals(model), nil
}

func (p *program) literals(model []bool) []task.Literal {
	var out []task.Literal
	for i, in := range model {
		if in {
			out = append(out, p.atoms[i])
		}
	}
	return out
}
