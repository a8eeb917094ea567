package marco

import (
	"slices"
	"strconv"

	"github.com/crillab/gophersat/maxsat"

	"ilnlp/sat"
)

// Solver is the MARCO map: it proposes unexplored seeds. Clause elements
// are rule ids; a negative id is the negated rule.
type Solver interface {
	Solve() bool
	Model() IntSet
	AddClause(IntSet)
}

// MaxSatSolver proposes maximal seeds: every rule is a soft clause, so a
// model keeps as many rules as the blocking clauses allow.
type MaxSatSolver struct {
	clauses []maxsat.Constr
	vars    IntSet
	model   map[string]bool
}

func NewMaxsatSolver(vars IntSet) *MaxSatSolver {
	softClauses := make([]maxsat.Constr, 0, vars.Cardinality())
	for _, v := range sortedSlice(vars) {
		softClauses = append(softClauses, maxsat.SoftClause(maxsat.Var(strconv.Itoa(v))))
	}

	return &MaxSatSolver{
		clauses: softClauses,
		vars:    vars,
		model:   make(map[string]bool),
	}
}

func (s *MaxSatSolver) Solve() bool {
	pb := maxsat.New(s.clauses...)
	model, _ := pb.Solve()
	s.model = model
	return model != nil
}

func (s *MaxSatSolver) Model() IntSet {
	model := NewIntSet()
	for v := range s.vars.Iter() {
		if s.model[strconv.Itoa(v)] {
			model.Add(v)
		}
	}
	return model
}

func (s *MaxSatSolver) AddClause(vars IntSet) {
	lits := make([]maxsat.Lit, 0, vars.Cardinality())
	for _, v := range sortedSlice(vars) {
		if v > 0 {
			lits = append(lits, maxsat.Var(strconv.Itoa(v)))
		} else {
			lits = append(lits, maxsat.Var(strconv.Itoa(-v)).Negation())
		}
	}
	s.clauses = append(s.clauses, maxsat.HardClause(lits...))
}

// SATSolver drives the map with a plain SAT backend. Seeds are arbitrary
// rather than maximal, so Grow does more work.
type SATSolver struct {
	solver      sat.Solver
	ruleIdToLit map[int]int
	litToRuleId map[int]int
}

func NewSATSolver(s sat.Solver, vars IntSet) *SATSolver {
	ruleIdToLit := make(map[int]int)
	litToRuleId := make(map[int]int)
	for i, v := range sortedSlice(vars) {
		ruleIdToLit[v] = i + 1
		litToRuleId[i+1] = v
		s.AddClause(i+1, -(i + 1))
	}
	return &SATSolver{solver: s, ruleIdToLit: ruleIdToLit, litToRuleId: litToRuleId}
}

func (s *SATSolver) Solve() bool {
	return s.solver.Solve()
}

func (s *SATSolver) Model() IntSet {
	result := NewIntSet()
	for lit, ruleId := range s.litToRuleId {
		if s.solver.Value(lit) {
			result.Add(ruleId)
		}
	}
	return result
}

func (s *SATSolver) AddClause(vs IntSet) {
	lits := make([]int, 0, vs.Cardinality())
	for _, v := range sortedSlice(vs) {
		if v < 0 {
			lits = append(lits, -s.ruleIdToLit[-v])
		} else {
			lits = append(lits, s.ruleIdToLit[v])
		}
	}
	s.solver.AddClause(lits...)
}

func sortedSlice(s IntSet) []int {
	out := s.ToSlice()
	slices.Sort(out)
	return out
}
