// Package sat wraps incremental SAT solvers behind one clause interface.
//
// Variables are positive integers; a negative integer is the negated
// variable, as in DIMACS.
package sat

import "fmt"

type Solver interface {
	AddClause(lits ...int)
	Solve() bool
	// Value reports the assignment of variable v in the last model.
	Value(v int) bool
}

const (
	Gini      = "gini"
	Gophersat = "gophersat"
)

// New returns the named backend.
func New(name string) (Solver, error) {
	switch name {
	case "", Gini:
		return NewGiniSolver(), nil
	case Gophersat:
		return NewGopherSolver(), nil
	}
	return nil, fmt.Errorf("unknown SAT backend %q", name)
}
