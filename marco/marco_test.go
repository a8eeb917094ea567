package marco

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ilnlp/sat"
)

// clauseSat treats rule i as clause clauses[i-1] over variables 1 and 2.
func clauseSat(clauses [][]int) SatFunc {
	return func(_ context.Context, rules []int) (bool, error) {
		s := sat.NewGiniSolver()
		for _, rule := range rules {
			s.AddClause(clauses[rule-1]...)
		}
		return s.Solve(), nil
	}
}

func musKeys(sets []IntSet) [][]int {
	var out [][]int
	for _, s := range sets {
		out = append(out, sortedSlice(s))
	}
	slices.SortFunc(out, slices.Compare)
	return out
}

func TestMarco(t *testing.T) {
	clauses := [][]int{{1}, {-1}, {2}, {-2}, {1, 2}}
	mc := NewMarco([]int{1, 2, 3, 4, 5}, clauseSat(clauses))
	require.NoError(t, mc.Run(context.Background()))

	assert.Equal(t, [][]int{{1, 2}, {2, 4, 5}, {3, 4}}, musKeys(mc.MUSs))

	conflicts := mc.Analysis()
	require.Len(t, conflicts, 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, conflicts[0].CriticalNodes)
	assert.Len(t, conflicts[0].MUSs, 3)
	for _, mcs := range conflicts[0].MCSs {
		// Removing a correction set hits every MUS.
		for _, mus := range mc.MUSs {
			assert.False(t, mus.Intersect(mcs).IsEmpty())
		}
	}
}

func TestMarcoIndependentConflicts(t *testing.T) {
	clauses := [][]int{{1}, {-1}, {2}, {-2}}
	for name, solver := range map[string]Solver{
		"maxsat": NewMaxsatSolver(NewIntSet(1, 2, 3, 4)),
		"sat":    NewSATSolver(sat.NewGiniSolver(), NewIntSet(1, 2, 3, 4)),
	} {
		mc := NewMarco([]int{1, 2, 3, 4}, clauseSat(clauses))
		mc.Solver = solver
		require.NoError(t, mc.Run(context.Background()), name)

		conflicts := mc.Analysis()
		require.Len(t, conflicts, 2, name)
		slices.SortFunc(conflicts, func(a, b Conflict) int { return a.CriticalNodes[0] - b.CriticalNodes[0] })
		assert.Equal(t, []int{1, 2}, conflicts[0].CriticalNodes, name)
		assert.Equal(t, []int{3, 4}, conflicts[1].CriticalNodes, name)
		assert.Len(t, conflicts[0].MCSs, 2, name)
	}
}

func TestMarcoSatisfiable(t *testing.T) {
	mc := NewMarco([]int{1, 2}, clauseSat([][]int{{1}, {2}}))
	require.NoError(t, mc.Run(context.Background()))
	assert.Empty(t, mc.MUSs)
	assert.Empty(t, mc.Analysis())
}

func TestMarcoErrors(t *testing.T) {
	boom := errors.New("boom")
	mc := NewMarco([]int{1}, func(context.Context, []int) (bool, error) { return false, boom })
	assert.ErrorIs(t, mc.Run(context.Background()), boom)

	mc = NewMarco([]int{1, 2, 3, 4}, clauseSat([][]int{{1}, {-1}, {2}, {-2}}))
	mc.MaxLoop = 1
	assert.ErrorIs(t, mc.Run(context.Background()), ErrTooManyLoops)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mc = NewMarco([]int{1}, clauseSat([][]int{{1}}))
	assert.ErrorIs(t, mc.Run(ctx), context.Canceled)
}
