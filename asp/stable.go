package asp

import (
	"context"

	"ilnlp/sat"
)

// stableModels enumerates up to limit stable models of p (all when
// limit <= 0). Candidates come from the SAT solver as models of the
// program's completion; a candidate that is not stable yields a loop
// formula for its unfounded atoms and is never proposed again.
func (p *program) stableModels(ctx context.Context, solver sat.Solver, limit int) ([][]bool, int, error) {
	n := len(p.atoms)
	atomVar := func(a int) int { return a + 1 }
	bodyVar := make([]int, len(p.rules))
	next := n + 1

	support := make([][]int, n)
	isFact := make([]bool, n)
	for ri, r := range p.rules {
		if r.isFact() {
			isFact[r.head] = true
			solver.AddClause(atomVar(r.head))
			continue
		}
		b := next
		next++
		bodyVar[ri] = b

		// b <-> pos /\ not neg
		all := []int{b}
		for _, a := range r.pos {
			solver.AddClause(-b, atomVar(a))
			all = append(all, -atomVar(a))
		}
		for _, a := range r.neg {
			solver.AddClause(-b, -atomVar(a))
			all = append(all, atomVar(a))
		}
		solver.AddClause(all...)

		if r.head < 0 {
			solver.AddClause(-b)
		} else {
			solver.AddClause(-b, atomVar(r.head))
			support[r.head] = append(support[r.head], b)
		}
	}
	for a := 0; a < n; a++ {
		if isFact[a] {
			continue
		}
		clause := append([]int{-atomVar(a)}, support[a]...)
		solver.AddClause(clause...)
	}

	var models [][]bool
	candidates := 0
	for limit <= 0 || len(models) < limit {
		if err := ctx.Err(); err != nil {
			return nil, candidates, err
		}
		if !solver.Solve() {
			break
		}
		candidates++
		m := make([]bool, n)
		for a := range m {
			m[a] = solver.Value(atomVar(a))
		}

		reduct := p.leastModel(m)
		var unfounded []int
		for a := range m {
			if m[a] && !reduct[a] {
				unfounded = append(unfounded, a)
			}
		}
		if len(unfounded) == 0 {
			models = append(models, m)
			if n == 0 {
				break
			}
			block := make([]int, n)
			for a := range m {
				if m[a] {
					block[a] = -atomVar(a)
				} else {
					block[a] = atomVar(a)
				}
			}
			solver.AddClause(block...)
			continue
		}

		inLoop := make(map[int]bool, len(unfounded))
		for _, a := range unfounded {
			inLoop[a] = true
		}
		var external []int
		for ri, r := range p.rules {
			if r.head < 0 || !inLoop[r.head] || r.isFact() {
				continue
			}
			outside := true
			for _, a := range r.pos {
				if inLoop[a] {
					outside = false
					break
				}
			}
			if outside {
				external = append(external, bodyVar[ri])
			}
		}
		for _, a := range unfounded {
			solver.AddClause(append([]int{-atomVar(a)}, external...)...)
		}
	}
	return models, candidates, nil
}
