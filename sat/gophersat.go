package sat

import (
	"github.com/crillab/gophersat/solver"
)

// GopherSolver accumulates clauses and solves them with a fresh gophersat
// instance on every Solve.
type GopherSolver struct {
	clauses [][]int
	model   []bool
}

func NewGopherSolver() *GopherSolver {
	return &GopherSolver{}
}

func (s *GopherSolver) AddClause(lits ...int) {
	for _, v := range lits {
		if v == 0 {
			panic("propositional variable cannot be zero")
		}
	}
	s.clauses = append(s.clauses, append([]int(nil), lits...))
}

func (s *GopherSolver) Solve() bool {
	s.model = nil
	if len(s.clauses) == 0 {
		return true
	}
	pb := solver.ParseSlice(s.clauses)
	sv := solver.New(pb)
	if sv.Solve() != solver.Sat {
		return false
	}
	s.model = sv.Model()
	return true
}

func (s *GopherSolver) Value(v int) bool {
	if v <= 0 || v > len(s.model) {
		return false
	}
	return s.model[v-1]
}
