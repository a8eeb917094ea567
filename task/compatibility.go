package task

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
)

// CheckCompatibility verifies that no pair of examples puts contradictory
// requirements on the background theory. It stops at the first violation.
//
// Condition (iii) enumerates every answer set of the definite rules rather
// than only the first one.
func (t *Task) CheckCompatibility(ctx context.Context, solver Solver, lm LeastModeler) error {
	if len(t.examples) < 2 {
		return nil
	}
	definite := t.DefiniteRules()
	for i := 0; i < len(t.examples); i++ {
		for j := i + 1; j < len(t.examples); j++ {
			condition, err := t.checkPair(ctx, solver, lm, definite, t.examples[i], t.examples[j])
			if err != nil {
				return err
			}
			if condition != 0 {
				return &IncompatibleError{Condition: condition, First: i, Second: j}
			}
		}
	}
	return nil
}

func (t *Task) checkPair(ctx context.Context, solver Solver, lm LeastModeler, definite []Rule, e1, e2 Example) (int, error) {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, s2 := range e2.Outputs {
		seen.Add(s2.Key())
	}
	done := mapset.NewThreadUnsafeSet[string]()
	for _, s1 := range e1.Outputs {
		if seen.Contains(s1.Key()) || !done.Add(s1.Key()) {
			continue
		}
		if !e2.Input.IsSubset(s1) {
			continue
		}
		for _, s2 := range e2.Outputs {
			if !e1.Input.IsSubset(s2) {
				continue
			}
			if s1.IsSubset(s2) || (s2.IsSubset(s1) && s1.Len() != s2.Len()) {
				return 1, nil
			}
		}

		least, err := lm.LeastModel(ctx, definite, t.registry.Literals(e2.Input))
		if err != nil {
			return 0, err
		}
		if e1.Input.IsSubset(t.registry.InternAll(least)) {
			return 2, nil
		}

		answerSets, err := t.computeModels(ctx, solver, definite, e2.Input, 0)
		if err != nil {
			return 0, err
		}
		for _, m := range answerSets {
			if e1.Input.IsSubset(m) {
				return 3, nil
			}
		}
	}
	return 0, nil
}
