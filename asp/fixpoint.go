package asp

import "slices"

// leastModel computes the least model of the reduct of p with respect to
// assumed: a rule survives when none of its negative atoms is assumed true.
// Constraints are ignored.
func (p *program) leastModel(assumed []bool) []bool {
	n := len(p.atoms)
	model := make([]bool, n)
	missing := make([]int, len(p.rules))
	watch := make([][]int, n)
	var queue []int

	derive := func(a int) {
		if !model[a] {
			model[a] = true
			queue = append(queue, a)
		}
	}

	for ri, r := range p.rules {
		if r.head < 0 {
			continue
		}
		blocked := false
		for _, a := range r.neg {
			if assumed != nil && assumed[a] {
				blocked = true
				break
			}
		}
		if blocked {
			missing[ri] = -1
			continue
		}
		missing[ri] = len(r.pos)
		for _, a := range r.pos {
			watch[a] = append(watch[a], ri)
		}
		if len(r.pos) == 0 {
			derive(r.head)
		}
	}

	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		for _, ri := range watch[a] {
			missing[ri]--
			if missing[ri] == 0 {
				derive(p.rules[ri].head)
			}
		}
	}
	return model
}

// wellFounded returns the atoms true in the well-founded model, computed by
// the alternating fixpoint: the true set only grows and the possible set
// only shrinks until both settle.
func (p *program) wellFounded() []bool {
	possible := p.leastModel(nil)
	var truth []bool
	for {
		next := p.leastModel(possible)
		possible = p.leastModel(next)
		if truth != nil && slices.Equal(truth, next) {
			return next
		}
		truth = next
	}
}

// violates reports whether some constraint body holds in model.
func (p *program) violates(model []bool) bool {
	for _, r := range p.rules {
		if r.head >= 0 {
			continue
		}
		ok := true
		for _, a := range r.pos {
			if !model[a] {
				ok = false
				break
			}
		}
		for _, a := range r.neg {
			if !ok {
				break
			}
			if model[a] {
				ok = false
			}
		}
		if ok {
			return true
		}
	}
	return false
}
