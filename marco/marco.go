// Package marco enumerates minimal unsatisfiable subsets (MUSes) and
// maximal satisfiable subsets (MSSes) of a rule set with the MARCO
// algorithm, then groups overlapping MUSes into independent conflicts.
package marco

import (
	"context"
	"errors"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"ilnlp/graph"
)

type IntSet mapset.Set[int]

var ErrTooManyLoops = errors.New("marco: loop limit reached")

// Conflict is one connected group of MUSes: CriticalNodes are the rules
// involved, MCSs the ways of repairing it by removing rules.
type Conflict struct {
	MCSs          []IntSet
	MSSs          []IntSet
	MUSs          []IntSet
	CriticalNodes []int
}

func NewIntSet(vals ...int) IntSet {
	return IntSet(mapset.NewSet[int](vals...))
}

// SatFunc reports whether the rules with the given ids are satisfiable.
type SatFunc func(ctx context.Context, rules []int) (bool, error)

type Marco struct {
	Rules       IntSet
	MUSs        []IntSet
	MCSs        []IntSet
	MSSs        []IntSet
	MaxLoop     int
	LoopCounter int
	SatFunc     SatFunc
	Solver      Solver
}

func NewMarco(rules []int, satFunc SatFunc) *Marco {
	return &Marco{
		Rules:   NewIntSet(rules...),
		MaxLoop: 1000,
		SatFunc: satFunc,
		Solver:  NewMaxsatSolver(NewIntSet(rules...)),
	}
}

func (m *Marco) Sat(ctx context.Context, rules IntSet) (bool, error) {
	return m.SatFunc(ctx, sortedSlice(rules))
}

func (m *Marco) Grow(ctx context.Context, seed IntSet) (IntSet, error) {
	for _, elem := range sortedSlice(m.Rules.Difference(seed)) {
		newSet := seed.Clone()
		newSet.Add(elem)
		ok, err := m.Sat(ctx, newSet)
		if err != nil {
			return nil, err
		}
		if ok {
			seed.Add(elem)
		}
	}
	return seed, nil
}

func (m *Marco) Shrink(ctx context.Context, seed IntSet) (IntSet, error) {
	for _, elem := range sortedSlice(seed) {
		newSet := seed.Difference(NewIntSet(elem))
		ok, err := m.Sat(ctx, newSet)
		if err != nil {
			return nil, err
		}
		if !ok {
			seed.Remove(elem)
		}
	}
	return seed, nil
}

// Run explores the power set of Rules until the map has no unexplored
// seed left.
func (m *Marco) Run(ctx context.Context) error {
	for m.Solver.Solve() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.LoopCounter >= m.MaxLoop {
			return ErrTooManyLoops
		}
		m.LoopCounter++

		seed := m.Solver.Model()
		ok, err := m.Sat(ctx, seed)
		if err != nil {
			return err
		}
		if ok {
			mss, err := m.Grow(ctx, seed)
			if err != nil {
				return err
			}
			m.MSSs = append(m.MSSs, mss)
			mcs := m.Rules.Difference(mss)
			if mcs.IsEmpty() {
				return nil
			}
			m.Solver.AddClause(mcs)
		} else {
			mus, err := m.Shrink(ctx, seed)
			if err != nil {
				return err
			}
			m.MUSs = append(m.MUSs, mus)
			negs := NewIntSet()
			for v := range mus.Iter() {
				negs.Add(-v)
			}
			m.Solver.AddClause(negs)
		}
	}
	return nil
}

func pairs(input []int) [][]int {
	var results [][]int
	for i := 0; i < len(input); i++ {
		for j := i + 1; j < len(input); j++ {
			results = append(results, []int{input[i], input[j]})
		}
	}
	return results
}

// Analysis groups MUSes that share a rule into conflicts and restricts the
// correction sets to each conflict's rules.
func (m *Marco) Analysis() []Conflict {
	m.MCSs = m.MCSs[:0]
	for _, mss := range m.MSSs {
		m.MCSs = append(m.MCSs, m.Rules.Difference(mss))
	}

	musIndexList := make([]int, len(m.MUSs))
	for i := range musIndexList {
		musIndexList[i] = i
	}
	musGraph := graph.NewGraph(len(musIndexList))
	for _, pair := range pairs(musIndexList) {
		if !m.MUSs[pair[0]].Intersect(m.MUSs[pair[1]]).IsEmpty() {
			musGraph.AddEdge(pair[0], pair[1])
		}
	}

	count, components := musGraph.CountAndGetConnectedComponents()
	conflicts := make([]Conflict, 0, count)
	for i := 1; i <= count; i++ {
		var musList, mssList, mcsList []IntSet
		for _, musId := range components[i] {
			musList = append(musList, m.MUSs[musId])
		}

		criticalNodes := NewIntSet()
		for _, mus := range musList {
			criticalNodes = criticalNodes.Union(mus)
		}
		for _, mcs := range m.MCSs {
			reduced := mcs.Intersect(criticalNodes)
			if reduced.IsEmpty() {
				continue
			}
			exist := slices.ContainsFunc(mcsList, func(included IntSet) bool { return reduced.Equal(included) })
			if !exist {
				mcsList = append(mcsList, reduced)
			}
		}
		for _, mcs := range mcsList {
			mssList = append(mssList, criticalNodes.Difference(mcs))
		}

		conflicts = append(conflicts, Conflict{
			MCSs:          mcsList,
			MSSs:          mssList,
			MUSs:          musList,
			CriticalNodes: sortedSlice(criticalNodes),
		})
	}
	return conflicts
}
