package task

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

func (t *Task) groundLiterals(ctx context.Context, solver Solver, rules []Rule, a, b LitSet) (LitSet, error) {
	facts, err := solver.GroundFacts(ctx, rules, t.registry.Literals(a), t.registry.Literals(b))
	if err != nil {
		return LitSet{}, fmt.Errorf("ground: %w", err)
	}
	return t.registry.InternAll(facts), nil
}

// computeModels returns up to limit models as interned sets; limit <= 0
// enumerates every model.
func (t *Task) computeModels(ctx context.Context, solver Solver, rules []Rule, facts LitSet, limit int) ([]LitSet, error) {
	models, err := solver.Models(ctx, rules, t.registry.Literals(facts), limit)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	if len(models) == 0 {
		return nil, ErrNoModel
	}
	result := make([]LitSet, len(models))
	for i, m := range models {
		result[i] = t.registry.InternAll(m)
	}
	return result, nil
}

// Universe grounds the background with every (input, output) pair and
// unions the derived facts.
func (t *Task) Universe(ctx context.Context, solver Solver) (LitSet, error) {
	universe := NewLitSet()
	for _, e := range t.examples {
		for _, out := range e.Outputs {
			facts, err := t.groundLiterals(ctx, solver, t.background, e.Input, out)
			if err != nil {
				return LitSet{}, err
			}
			universe = universe.Union(facts)
		}
	}
	return universe, nil
}

// UniverseStats reports the universe size and its number of distinct
// predicate names.
func (t *Task) UniverseStats(universe LitSet) (size, uniquePredicates int) {
	literals := t.registry.Literals(universe)
	predicates := mapset.NewThreadUnsafeSet[string]()
	for _, l := range literals {
		predicates.Add(l.Predicate)
	}
	return len(literals), predicates.Cardinality()
}
