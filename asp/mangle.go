package asp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"go.uber.org/zap"

	"ilnlp/task"
)

const violatedPredicate = "ilnlp_violated"

// ErrUnsupportedName is returned for predicates and constants that have no
// Mangle spelling, such as primed names.
var ErrUnsupportedName = errors.New("name not supported by mangle")

// Mangle computes least models of definite programs with the Mangle
// Datalog engine. Ordering comparisons are evaluated by Mangle and only
// hold between numbers.
type Mangle struct {
	Logger *zap.Logger
}

func NewMangle(logger *zap.Logger) *Mangle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mangle{Logger: logger}
}

// mangleEncoder renames predicates and terms into Mangle syntax and
// remembers how to map them back. The first name it cannot encode is kept
// in err.
type mangleEncoder struct {
	preds map[string]task.Literal
	vars  map[string]string
	err   error
}

func newMangleEncoder() *mangleEncoder {
	return &mangleEncoder{preds: map[string]task.Literal{}, vars: map[string]string{}}
}

func (m *mangleEncoder) reject(kind, name string) {
	if m.err == nil {
		m.err = fmt.Errorf("%s %q: %w", kind, name, ErrUnsupportedName)
	}
}

func (m *mangleEncoder) predicate(l task.Literal) string {
	if strings.Contains(l.Predicate, "'") {
		m.reject("predicate", l.Predicate)
	}
	name := fmt.Sprintf("p_%s__%d", strings.TrimLeft(l.Predicate, "_"), len(l.Args))
	if strings.HasPrefix(l.Predicate, "_") {
		name = fmt.Sprintf("u%d_%s", len(l.Predicate)-len(strings.TrimLeft(l.Predicate, "_")), name)
	}
	m.preds[name] = task.Literal{Predicate: l.Predicate, Args: make([]string, len(l.Args))}
	return name
}

// term spells t in Mangle. Primed variables are renumbered since Mangle
// variables cannot contain quotes.
func (m *mangleEncoder) term(t string) string {
	switch {
	case task.IsAnonymous(t):
		return "_"
	case task.IsVariable(t):
		if !strings.Contains(t, "'") {
			return "V" + t
		}
		v, ok := m.vars[t]
		if !ok {
			v = fmt.Sprintf("V%d", len(m.vars))
			m.vars[t] = v
		}
		return v
	case strings.HasPrefix(t, `"`):
		return t
	}
	if _, err := strconv.ParseInt(t, 10, 64); err == nil {
		return t
	}
	if strings.Contains(t, "'") {
		m.reject("constant", t)
	}
	return "/" + t
}

func (m *mangleEncoder) atom(l task.Literal) string {
	args := make([]string, len(l.Args))
	for i, a := range l.Args {
		args[i] = m.term(a)
	}
	if len(args) == 0 {
		args = []string{"/unit"}
	}
	return m.predicate(l) + "(" + strings.Join(args, ", ") + ")"
}

func (m *mangleEncoder) body(b task.BodyLiteral) string {
	if !b.IsComparison() {
		return m.atom(b.Literal)
	}
	l, r := m.term(b.Comparison.Left), m.term(b.Comparison.Right)
	switch b.Comparison.Op {
	case task.Less:
		return ":lt(" + l + ", " + r + ")"
	case task.Greater:
		return ":gt(" + l + ", " + r + ")"
	default:
		return l + " != " + r
	}
}

// reachable drops rules whose positive body mentions a predicate that
// nothing defines; Mangle rejects such programs and the rules never fire.
func reachable(rules []task.Rule, facts []task.Literal) []task.Rule {
	defined := map[string]bool{}
	for _, f := range facts {
		defined[predKey(f)] = true
	}
	live := rules
	for {
		for _, r := range live {
			if r.Head != nil {
				defined[predKey(*r.Head)] = true
			}
		}
		var next []task.Rule
		for _, r := range live {
			ok := true
			for _, b := range r.Body {
				if !b.IsComparison() && !defined[predKey(b.Literal)] {
					ok = false
					break
				}
			}
			if ok {
				next = append(next, r)
			}
		}
		if len(next) == len(live) {
			return next
		}
		live = next
		defined = map[string]bool{}
		for _, f := range facts {
			defined[predKey(f)] = true
		}
	}
}

func (m *mangleEncoder) program(rules []task.Rule, facts []task.Literal) (string, error) {
	for _, r := range rules {
		if !r.IsDefinite() {
			return "", fmt.Errorf("rule %q is not definite", r)
		}
		if err := checkSafety(r); err != nil {
			return "", err
		}
	}
	var sb strings.Builder
	for _, f := range facts {
		sb.WriteString(m.atom(f))
		sb.WriteString(".\n")
	}
	for _, r := range reachable(rules, facts) {
		if r.Head != nil {
			sb.WriteString(m.atom(*r.Head))
		} else {
			sb.WriteString(violatedPredicate + "(/unit)")
		}
		if len(r.Body) > 0 {
			parts := make([]string, len(r.Body))
			for i, b := range r.Body {
				parts[i] = m.body(b)
			}
			sb.WriteString(" :- ")
			sb.WriteString(strings.Join(parts, ", "))
		}
		sb.WriteString(".\n")
	}
	if m.err != nil {
		return "", m.err
	}
	return sb.String(), nil
}

func constantText(t ast.BaseTerm) string {
	s := t.String()
	return strings.TrimPrefix(s, "/")
}

// LeastModel evaluates rules over facts to their least fixpoint.
func (e *Mangle) LeastModel(ctx context.Context, rules []task.Rule, facts []task.Literal) ([]task.Literal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enc := newMangleEncoder()
	source, err := enc.program(rules, facts)
	if err != nil {
		return nil, err
	}
	e.Logger.Debug("evaluating with mangle", zap.Int("bytes", len(source)))

	unit, err := parse.Unit(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("mangle parse: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("mangle analysis: %w", err)
	}
	store := factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore())
	for _, f := range programInfo.InitialFacts {
		store.Add(f)
	}
	stats, err := mengine.EvalProgramWithStats(programInfo, store)
	if err != nil {
		return nil, fmt.Errorf("mangle evaluation: %w", err)
	}
	e.Logger.Debug("mangle evaluation finished", zap.Int("strata", len(stats.Strata)))

	var model []task.Literal
	violated := false
	errStop := errors.New("stop")
	for _, sym := range store.ListPredicates() {
		if sym.Symbol == violatedPredicate {
			err := store.GetFacts(ast.NewQuery(sym), func(ast.Atom) error {
				violated = true
				return errStop
			})
			if err != nil && !errors.Is(err, errStop) {
				return nil, err
			}
			continue
		}
		proto, ok := enc.preds[sym.Symbol]
		if !ok {
			continue
		}
		err := store.GetFacts(ast.NewQuery(sym), func(a ast.Atom) error {
			lit := task.Literal{Predicate: proto.Predicate}
			if len(proto.Args) > 0 {
				lit.Args = make([]string, len(a.Args))
				for i, arg := range a.Args {
					lit.Args[i] = constantText(arg)
				}
			}
			model = append(model, lit)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if violated {
		return nil, task.ErrNoModel
	}
	return model, nil
}
