package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]func() Solver {
	t.Helper()
	return map[string]func() Solver{
		Gini:      func() Solver { return NewGiniSolver() },
		Gophersat: func() Solver { return NewGopherSolver() },
	}
}

func TestSolve(t *testing.T) {
	for name, newSolver := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newSolver()
			s.AddClause(1, 2)
			s.AddClause(-1)
			s.AddClause(-2, 3)
			require.True(t, s.Solve())
			assert.False(t, s.Value(1))
			assert.True(t, s.Value(2))
			assert.True(t, s.Value(3))

			// Clauses persist across calls.
			s.AddClause(-3)
			assert.False(t, s.Solve())
		})
	}
}

func TestBlockingModels(t *testing.T) {
	for name, newSolver := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newSolver()
			s.AddClause(1, 2)
			s.AddClause(-1, -2)
			models := 0
			for s.Solve() {
				models++
				block := make([]int, 0, 2)
				for v := 1; v <= 2; v++ {
					if s.Value(v) {
						block = append(block, -v)
					} else {
						block = append(block, v)
					}
				}
				s.AddClause(block...)
			}
			assert.Equal(t, 2, models)
		})
	}
}

func TestNew(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)
	assert.IsType(t, &GiniSolver{}, s)

	s, err = New(Gophersat)
	require.NoError(t, err)
	assert.IsType(t, &GopherSolver{}, s)

	_, err = New("minisat")
	assert.Error(t, err)
}

func TestEmptyProblem(t *testing.T) {
	assert.True(t, NewGopherSolver().Solve())
}
