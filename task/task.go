// Package task holds the learning task model and the passes that turn it
// into an induction task: universe computation, compatibility checking and
// example synthesis.
package task

import "context"

// Example pairs observed input facts with the answer sets the extended
// background theory must reproduce for them.
type Example struct {
	Input   LitSet
	Outputs []LitSet
}

// Task owns the literal registry, the background rules and the examples.
type Task struct {
	registry   *Registry
	background []Rule
	examples   []Example
}

func New() *Task {
	return &Task{registry: NewRegistry()}
}

func (t *Task) Registry() *Registry {
	return t.registry
}

func (t *Task) Intern(l Literal) Lit {
	return t.registry.Intern(l)
}

func (t *Task) Literal(id Lit) (Literal, error) {
	return t.registry.Literal(id)
}

func (t *Task) PushBackground(r Rule) {
	t.background = append(t.background, r)
}

func (t *Task) PushExample(e Example) {
	t.examples = append(t.examples, e)
}

func (t *Task) Background() []Rule {
	return t.background
}

func (t *Task) Examples() []Example {
	return t.examples
}

// DefiniteRules returns the background rules without negated body literals.
func (t *Task) DefiniteRules() []Rule {
	var rules []Rule
	for _, r := range t.background {
		if r.IsDefinite() {
			rules = append(rules, r)
		}
	}
	return rules
}

// Solver is the answer-set engine the passes delegate to.
type Solver interface {
	// GroundFacts grounds rules together with every fact set and returns the
	// atoms proven true.
	GroundFacts(ctx context.Context, rules []Rule, facts ...[]Literal) ([]Literal, error)
	// Models enumerates up to limit stable models; limit <= 0 means all.
	Models(ctx context.Context, rules []Rule, facts []Literal, limit int) ([][]Literal, error)
}

// LeastModeler computes the least model of a definite program.
type LeastModeler interface {
	LeastModel(ctx context.Context, rules []Rule, facts []Literal) ([]Literal, error)
}

// FirstModel answers least-model queries with the first model a Solver
// reports, which is the least model for definite programs.
type FirstModel struct {
	Solver Solver
}

func (f FirstModel) LeastModel(ctx context.Context, rules []Rule, facts []Literal) ([]Literal, error) {
	models, err := f.Solver.Models(ctx, rules, facts, 1)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, ErrNoModel
	}
	return models[0], nil
}

// StatsRecorder receives the universe statistics after they are computed.
type StatsRecorder interface {
	RecordUniverse(size, uniquePredicates int)
}
