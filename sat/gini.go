package sat

import (
	"github.com/irifrance/gini"
	"github.com/irifrance/gini/z"
)

// GiniSolver keeps one incremental gini instance; clauses added after a
// Solve are kept for the next one.
type GiniSolver struct {
	solver *gini.Gini
}

func NewGiniSolver() *GiniSolver {
	return &GiniSolver{solver: gini.New()}
}

func toGini(v int) z.Lit {
	if v < 0 {
		return z.Var(-v).Neg()
	}
	return z.Var(v).Pos()
}

func (s *GiniSolver) AddClause(lits ...int) {
	for _, v := range lits {
		if v == 0 {
			panic("propositional variable cannot be zero")
		}
		s.solver.Add(toGini(v))
	}
	s.solver.Add(0)
}

func (s *GiniSolver) Solve() bool {
	return s.solver.Solve() == 1
}

func (s *GiniSolver) Value(v int) bool {
	return s.solver.Value(z.Var(v).Pos())
}
