package asp

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ichiban/prolog"
	"go.uber.org/zap"

	"ilnlp/graph"
	"ilnlp/task"
)

// Prolog computes least models of non-recursive definite programs by
// querying every predicate against a Prolog interpreter. Recursive
// programs are rejected since SLD resolution need not terminate on them.
type Prolog struct {
	Logger *zap.Logger
}

func NewProlog(logger *zap.Logger) *Prolog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prolog{Logger: logger}
}

type signature struct {
	name  string
	arity int
}

// prologEncoder maps ground terms to atoms t_NNNNNN numbered in term
// order, so the standard order of terms agrees with comparisons here.
// Integers are kept as Prolog integers.
type prologEncoder struct {
	terms  map[string]string
	decode map[string]string
	preds  []signature
	index  map[signature]int
}

func newPrologEncoder(rules []task.Rule, facts []task.Literal) *prologEncoder {
	e := &prologEncoder{
		terms:  map[string]string{},
		decode: map[string]string{},
		index:  map[signature]int{},
	}
	var ground []string
	addTerms := func(l task.Literal) {
		e.signature(l)
		for _, a := range l.Args {
			if !task.IsVariable(a) && !task.IsAnonymous(a) {
				ground = append(ground, a)
			}
		}
	}
	for _, f := range facts {
		addTerms(f)
	}
	for _, r := range rules {
		if r.Head != nil {
			addTerms(*r.Head)
		}
		for _, b := range r.Body {
			if b.IsComparison() {
				for _, t := range []string{b.Comparison.Left, b.Comparison.Right} {
					if !task.IsVariable(t) && !task.IsAnonymous(t) {
						ground = append(ground, t)
					}
				}
				continue
			}
			addTerms(b.Literal)
		}
	}
	slices.SortFunc(ground, compareTerms)
	ground = slices.Compact(ground)
	for i, t := range ground {
		if k, _ := kindOf(t); k == kindNumber {
			e.terms[t] = t
			continue
		}
		atom := fmt.Sprintf("t_%06d", i)
		e.terms[t] = atom
		e.decode[atom] = t
	}
	return e
}

func (e *prologEncoder) signature(l task.Literal) int {
	sig := signature{l.Predicate, len(l.Args)}
	if i, ok := e.index[sig]; ok {
		return i
	}
	e.index[sig] = len(e.preds)
	e.preds = append(e.preds, sig)
	return len(e.preds) - 1
}

func quoteAtom(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (e *prologEncoder) term(t string) string {
	if task.IsVariable(t) || task.IsAnonymous(t) {
		return t
	}
	return e.terms[t]
}

func (e *prologEncoder) atom(l task.Literal) string {
	if len(l.Args) == 0 {
		return quoteAtom(l.Predicate)
	}
	args := make([]string, len(l.Args))
	for i, a := range l.Args {
		args[i] = e.term(a)
	}
	return quoteAtom(l.Predicate) + "(" + strings.Join(args, ", ") + ")"
}

func (e *prologEncoder) comparison(c *task.Comparison) string {
	l, r := e.term(c.Left), e.term(c.Right)
	switch c.Op {
	case task.Less:
		return l + " @< " + r
	case task.Greater:
		return l + " @> " + r
	default:
		return l + ` \== ` + r
	}
}

// goal orders literals before comparisons so every variable is bound
// when compared.
func (e *prologEncoder) goal(body []task.BodyLiteral) string {
	var lits, cmps []string
	for _, b := range body {
		if b.IsComparison() {
			cmps = append(cmps, e.comparison(b.Comparison))
		} else {
			lits = append(lits, e.atom(b.Literal))
		}
	}
	return strings.Join(append(lits, cmps...), ", ")
}

func (e *prologEncoder) program(rules []task.Rule, facts []task.Literal) string {
	var sb strings.Builder
	for _, sig := range e.preds {
		fmt.Fprintf(&sb, ":- dynamic(%s/%d).\n", quoteAtom(sig.name), sig.arity)
	}
	for _, f := range facts {
		sb.WriteString(e.atom(f))
		sb.WriteString(".\n")
	}
	for _, r := range rules {
		if r.Head == nil {
			continue
		}
		sb.WriteString(e.atom(*r.Head))
		if len(r.Body) > 0 {
			sb.WriteString(" :- ")
			sb.WriteString(e.goal(r.Body))
		}
		sb.WriteString(".\n")
	}
	return sb.String()
}

// recursive reports the predicates that depend on themselves.
func (e *prologEncoder) recursive(rules []task.Rule) []string {
	g := graph.NewDigraph(len(e.preds))
	for _, r := range rules {
		if r.Head == nil {
			continue
		}
		h := e.index[signature{r.Head.Predicate, len(r.Head.Args)}]
		for _, b := range r.Body {
			if !b.IsComparison() {
				g.AddEdge(e.index[signature{b.Literal.Predicate, len(b.Literal.Args)}], h)
			}
		}
	}
	var names []string
	for _, v := range g.Cyclic() {
		names = append(names, e.preds[v].name+"/"+strconv.Itoa(e.preds[v].arity))
	}
	slices.Sort(names)
	return names
}

func (e *prologEncoder) decodeTerm(s string) string {
	if t, ok := e.decode[s]; ok {
		return t
	}
	return s
}

func queryAll(ctx context.Context, interp *prolog.Interpreter, query string, vars int, yield func([]string)) (err error) {
	solutions, err := interp.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := solutions.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for solutions.Next() {
		row := make([]string, vars)
		if vars > 0 {
			s := make(map[string]prolog.TermString)
			if err := solutions.Scan(&s); err != nil {
				return err
			}
			for i := range row {
				row[i] = string(s["X"+strconv.Itoa(i)])
			}
		}
		yield(row)
	}
	return solutions.Err()
}

// LeastModel answers every predicate query and collects the solutions.
func (p *Prolog) LeastModel(ctx context.Context, rules []task.Rule, facts []task.Literal) ([]task.Literal, error) {
	for _, r := range rules {
		if !r.IsDefinite() {
			return nil, fmt.Errorf("rule %q is not definite", r)
		}
		if err := checkSafety(r); err != nil {
			return nil, err
		}
	}
	enc := newPrologEncoder(rules, facts)
	if rec := enc.recursive(rules); len(rec) > 0 {
		return nil, fmt.Errorf("recursive predicates %s are not supported by the prolog backend", strings.Join(rec, ", "))
	}

	interp := prolog.New(nil, nil)
	program := enc.program(rules, facts)
	if err := interp.Exec(program); err != nil {
		return nil, fmt.Errorf("consult: %w", err)
	}
	p.Logger.Debug("consulted prolog program", zap.Int("predicates", len(enc.preds)))

	for _, r := range rules {
		if r.Head != nil {
			continue
		}
		violated := false
		err := queryAll(ctx, interp, enc.goal(r.Body)+".", 0, func([]string) { violated = true })
		if err != nil {
			return nil, fmt.Errorf("constraint %q: %w", r, err)
		}
		if violated {
			return nil, task.ErrNoModel
		}
	}

	seen := map[string]bool{}
	var model []task.Literal
	for _, sig := range enc.preds {
		vars := make([]string, sig.arity)
		for i := range vars {
			vars[i] = "X" + strconv.Itoa(i)
		}
		query := quoteAtom(sig.name)
		if sig.arity > 0 {
			query += "(" + strings.Join(vars, ", ") + ")"
		}
		err := queryAll(ctx, interp, query+".", sig.arity, func(row []string) {
			lit := task.Literal{Predicate: sig.name}
			if len(row) > 0 {
				lit.Args = make([]string, len(row))
				for i, v := range row {
					lit.Args[i] = enc.decodeTerm(v)
				}
			}
			if k := lit.Key(); !seen[k] {
				seen[k] = true
				model = append(model, lit)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", query, err)
		}
	}
	return model, nil
}
