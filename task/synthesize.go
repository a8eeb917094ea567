package task

import (
	"cmp"
	"context"
	"slices"

	"ilnlp/ilasp"
)

// InductionTask is the synthesized ILASP task over this package's literals
// and rules.
type InductionTask = ilasp.Task[Literal, Rule]

type taskBuilder = ilasp.Builder[Literal, Rule]

// Synthesize computes the universe and turns every example into positive
// and negative ILASP examples plus search-space vocabulary. stats may be nil.
func (t *Task) Synthesize(ctx context.Context, solver Solver, stats StatsRecorder) (*InductionTask, error) {
	b := ilasp.NewBuilder[Literal, Rule]()
	for _, r := range t.background {
		b.PushBackground(r)
	}
	universe, err := t.Universe(ctx, solver)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		stats.RecordUniverse(t.UniverseStats(universe))
	}
	for _, e := range t.examples {
		if err := t.synthesizeExample(e, universe, b); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

func (t *Task) synthesizeExample(e Example, universe LitSet, b *taskBuilder) error {
	reg := t.registry
	literals := NewLitSet()
	for _, out := range e.Outputs {
		literals = literals.Union(out)
	}
	input := reg.Literals(e.Input)

	if len(e.Outputs) == 0 {
		b.PushNegative(nil, nil, input)
	} else {
		for _, s := range e.Outputs {
			b.PushPositive(reg.Literals(s), reg.Literals(universe.Difference(s)), input)
		}
		if err := t.synthesizeNegatives(e, universe, literals, b); err != nil {
			return err
		}
	}

	for _, l := range reg.Literals(literals.Difference(e.Input)) {
		b.PushHead(l)
		b.PushGeneralBody(l)
	}
	for _, l := range input {
		b.PushPositiveBody(l)
	}
	return nil
}

func (t *Task) synthesizeNegatives(e Example, universe, literals LitSet, b *taskBuilder) error {
	reg := t.registry
	input := reg.Literals(e.Input)

	for _, id := range universe.Difference(literals).Items() {
		l, err := reg.Literal(id)
		if err != nil {
			return err
		}
		b.PushNegative([]Literal{l}, nil, input)
	}

	for _, a := range spuriousGroups(e, literals) {
		for _, sup := range a.covered {
			b.PushNegative(
				reg.Literals(a.base.Union(e.Input)),
				reg.Literals(universe.Difference(e.Input.Union(sup))),
				input,
			)
		}
	}
	return nil
}

// spuriousGroup is a minimal spurious candidate together with the largest
// supersets it stands for.
type spuriousGroup struct {
	base    LitSet
	covered []LitSet
}

// spuriousCandidates lists every proper non-empty subset of the extra
// literals that is neither a subset nor a superset of an accepted output
// (minus input), ordered by ascending size.
func spuriousCandidates(e Example, literals LitSet) []LitSet {
	lessOut := make([]LitSet, len(e.Outputs))
	for i, o := range e.Outputs {
		lessOut[i] = o.Difference(e.Input)
	}
	elements := literals.Difference(e.Input).Items()

	var candidates []LitSet
	for k := 1; k < len(elements); k++ {
		combinations(elements, k, func(c []Lit) bool {
			a := NewLitSet(c...)
			for _, o := range lessOut {
				if o.IsSubset(a) || o.IsSuperset(a) {
					return true
				}
			}
			candidates = append(candidates, a)
			return true
		})
	}
	slices.SortStableFunc(candidates, func(x, y LitSet) int { return cmp.Compare(x.Len(), y.Len()) })
	return candidates
}

// spuriousGroups repeatedly takes the smallest remaining candidate, removes
// its supersets from the pool and keeps the largest of them. A candidate with
// no superset covers itself.
func spuriousGroups(e Example, literals LitSet) []spuriousGroup {
	pool := spuriousCandidates(e, literals)
	var groups []spuriousGroup
	for len(pool) > 0 {
		a := pool[0]
		var supersets, rest []LitSet
		for _, x := range pool[1:] {
			if a.IsSubset(x) {
				supersets = append(supersets, x)
			} else {
				rest = append(rest, x)
			}
		}
		pool = rest
		if len(supersets) == 0 {
			supersets = []LitSet{a}
		}

		g := spuriousGroup{base: a}
		lastLen := 0
		for i := len(supersets) - 1; i >= 0; i-- {
			s := supersets[i]
			if s.Len() < lastLen {
				break
			}
			lastLen = s.Len()
			g.covered = append(g.covered, s)
		}
		groups = append(groups, g)
	}
	return groups
}
