package asp

import (
	"fmt"
	"strconv"
	"strings"

	"ilnlp/task"
)

// groundRule is a variable-free rule over atom indices; head < 0 marks an
// integrity constraint.
type groundRule struct {
	head int
	pos  []int
	neg  []int
}

func (r groundRule) isFact() bool {
	return r.head >= 0 && len(r.pos) == 0 && len(r.neg) == 0
}

type program struct {
	atoms  []task.Literal
	index  map[string]int
	byPred map[string][]int
	rules  []groundRule
}

func predKey(l task.Literal) string {
	return l.Predicate + "/" + strconv.Itoa(len(l.Args))
}

func (p *program) lookup(l task.Literal) (int, bool) {
	i, ok := p.index[l.Key()]
	return i, ok
}

func (p *program) add(l task.Literal) (int, bool) {
	if i, ok := p.lookup(l); ok {
		return i, false
	}
	i := len(p.atoms)
	p.atoms = append(p.atoms, l)
	p.index[l.Key()] = i
	p.byPred[predKey(l)] = append(p.byPred[predKey(l)], i)
	return i, true
}

// checkSafety requires every variable outside positive body literals to be
// bound by one.
func checkSafety(r task.Rule) error {
	bound := map[string]bool{}
	for _, b := range r.Body {
		if !b.IsComparison() && !b.Negated {
			for _, a := range b.Literal.Args {
				if task.IsVariable(a) {
					bound[a] = true
				}
			}
		}
	}
	check := func(where string, terms []string) error {
		for _, a := range terms {
			if task.IsAnonymous(a) {
				return fmt.Errorf("rule %q: anonymous variable in %s", r, where)
			}
			if task.IsVariable(a) && !bound[a] {
				return fmt.Errorf("rule %q: unsafe variable %s in %s", r, a, where)
			}
		}
		return nil
	}
	if r.Head != nil {
		if err := check("head", r.Head.Args); err != nil {
			return err
		}
	}
	for _, b := range r.Body {
		switch {
		case b.IsComparison():
			if err := check("comparison", []string{b.Comparison.Left, b.Comparison.Right}); err != nil {
				return err
			}
		case b.Negated:
			if err := check("negative literal", b.Literal.Args); err != nil {
				return err
			}
		}
	}
	return nil
}

type binding map[string]string

func (b binding) apply(l task.Literal) task.Literal {
	args := make([]string, len(l.Args))
	for i, a := range l.Args {
		if v, ok := b[a]; ok {
			args[i] = v
		} else {
			args[i] = a
		}
	}
	return task.Literal{Predicate: l.Predicate, Args: args}
}

func (b binding) value(term string) string {
	if v, ok := b[term]; ok {
		return v
	}
	return term
}

func holds(c *task.Comparison, b binding) bool {
	l, r := b.value(c.Left), b.value(c.Right)
	switch c.Op {
	case task.NotEqual:
		return l != r
	case task.Greater:
		return compareTerms(l, r) > 0
	case task.Less:
		return compareTerms(l, r) < 0
	}
	return false
}

// instance is a rule instantiation whose negative atoms are resolved only
// after grounding finishes, since they may become derivable later.
type instance struct {
	head int
	pos  []int
	neg  []task.Literal
}

type grounder struct {
	prog      *program
	instances []instance
	seen      map[string]bool
}

// ground instantiates rules bottom-up over the atoms that are possibly
// derivable from facts, ignoring negation while doing so.
func ground(rules []task.Rule, facts []task.Literal) (*program, error) {
	g := &grounder{
		prog: &program{index: map[string]int{}, byPred: map[string][]int{}},
		seen: map[string]bool{},
	}
	var nonFacts []task.Rule
	for _, r := range rules {
		if err := checkSafety(r); err != nil {
			return nil, err
		}
		if r.IsFact() {
			facts = append(facts, *r.Head)
			continue
		}
		nonFacts = append(nonFacts, r)
	}
	for _, f := range facts {
		for _, a := range f.Args {
			if task.IsVariable(a) || task.IsAnonymous(a) {
				return nil, fmt.Errorf("fact %s is not ground", f)
			}
		}
		i, _ := g.prog.add(f)
		g.record(instance{head: i})
	}

	for {
		added := false
		for _, r := range nonFacts {
			g.match(r, 0, binding{}, nil, &added)
		}
		if !added {
			break
		}
	}

	for _, inst := range g.instances {
		gr := groundRule{head: inst.head, pos: inst.pos}
		for _, n := range inst.neg {
			if i, ok := g.prog.lookup(n); ok {
				gr.neg = append(gr.neg, i)
			}
		}
		g.prog.rules = append(g.prog.rules, gr)
	}
	return g.prog, nil
}

func (g *grounder) record(inst instance) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d|", inst.head)
	for _, p := range inst.pos {
		fmt.Fprintf(&sb, "%d,", p)
	}
	sb.WriteByte('|')
	for _, n := range inst.neg {
		sb.WriteString(n.Key())
		sb.WriteByte(',')
	}
	k := sb.String()
	if g.seen[k] {
		return
	}
	g.seen[k] = true
	g.instances = append(g.instances, inst)
}

// match binds positive body literals from position i onwards.
func (g *grounder) match(r task.Rule, i int, b binding, pos []int, added *bool) {
	for i < len(r.Body) && (r.Body[i].IsComparison() || r.Body[i].Negated) {
		i++
	}
	if i == len(r.Body) {
		g.emit(r, b, pos, added)
		return
	}
	pattern := r.Body[i].Literal
	candidates := g.prog.byPred[predKey(pattern)]
	for _, idx := range candidates[:len(candidates):len(candidates)] {
		atom := g.prog.atoms[idx]
		var bound []string
		ok := true
		for k, term := range pattern.Args {
			switch {
			case task.IsAnonymous(term):
			case task.IsVariable(term):
				if v, has := b[term]; has {
					ok = v == atom.Args[k]
				} else {
					b[term] = atom.Args[k]
					bound = append(bound, term)
				}
			default:
				ok = term == atom.Args[k]
			}
			if !ok {
				break
			}
		}
		if ok {
			g.match(r, i+1, b, append(pos[:len(pos):len(pos)], idx), added)
		}
		for _, v := range bound {
			delete(b, v)
		}
	}
}

func (g *grounder) emit(r task.Rule, b binding, pos []int, added *bool) {
	inst := instance{head: -1, pos: pos}
	for _, lit := range r.Body {
		switch {
		case lit.IsComparison():
			if !holds(lit.Comparison, b) {
				return
			}
		case lit.Negated:
			inst.neg = append(inst.neg, b.apply(lit.Literal))
		}
	}
	if r.Head != nil {
		i, isNew := g.prog.add(b.apply(*r.Head))
		inst.head = i
		if isNew {
			*added = true
		}
	}
	g.record(inst)
}
