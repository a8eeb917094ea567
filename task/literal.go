package task

import (
	"slices"
	"strings"

	"ilnlp/set"
)

// Literal is a predicate applied to an ordered list of argument terms.
type Literal struct {
	Predicate string
	Args      []string
}

func NewLiteral(predicate string, args ...string) Literal {
	return Literal{Predicate: predicate, Args: args}
}

func (l Literal) Arity() int {
	return len(l.Args)
}

func (l Literal) String() string {
	if len(l.Args) == 0 {
		return l.Predicate
	}
	return l.Predicate + "(" + strings.Join(l.Args, ", ") + ")"
}

// Compare orders literals by predicate, then argument list.
func (l Literal) Compare(other Literal) int {
	if c := strings.Compare(l.Predicate, other.Predicate); c != 0 {
		return c
	}
	return slices.Compare(l.Args, other.Args)
}

func (l Literal) Equal(other Literal) bool {
	return l.Predicate == other.Predicate && slices.Equal(l.Args, other.Args)
}

// IsAnonymous reports whether term is the anonymous variable "_".
func IsAnonymous(term string) bool {
	return term == "_"
}

// IsVariable reports whether term is a named variable: an upper-case
// initial after any leading underscores.
func IsVariable(term string) bool {
	term = strings.TrimLeft(term, "_")
	return term != "" && term[0] >= 'A' && term[0] <= 'Z'
}

// Key identifies l by predicate and arguments. It is unambiguous even when
// argument text contains separators.
func (l Literal) Key() string {
	var sb strings.Builder
	sb.WriteString(l.Predicate)
	for _, a := range l.Args {
		sb.WriteByte(0)
		sb.WriteString(a)
	}
	return sb.String()
}

// Lit identifies an interned Literal. Zero is never assigned.
type Lit uint32

type LitSet = set.Set[Lit]

func NewLitSet(lits ...Lit) LitSet {
	return set.New(lits...)
}

type CompareOp int

const (
	NotEqual CompareOp = iota
	Greater
	Less
)

func (op CompareOp) String() string {
	switch op {
	case NotEqual:
		return "!="
	case Greater:
		return ">"
	case Less:
		return "<"
	}
	return "?"
}

type Comparison struct {
	Op    CompareOp
	Left  string
	Right string
}

func (c Comparison) String() string {
	return c.Left + " " + c.Op.String() + " " + c.Right
}

// BodyLiteral is either a (possibly negated) literal or a comparison.
type BodyLiteral struct {
	Literal    Literal
	Negated    bool
	Comparison *Comparison
}

func Pos(l Literal) BodyLiteral {
	return BodyLiteral{Literal: l}
}

func Neg(l Literal) BodyLiteral {
	return BodyLiteral{Literal: l, Negated: true}
}

func Cmp(op CompareOp, left, right string) BodyLiteral {
	return BodyLiteral{Comparison: &Comparison{Op: op, Left: left, Right: right}}
}

func (b BodyLiteral) IsComparison() bool {
	return b.Comparison != nil
}

func (b BodyLiteral) String() string {
	if b.Comparison != nil {
		return b.Comparison.String()
	}
	if b.Negated {
		return "not " + b.Literal.String()
	}
	return b.Literal.String()
}

// Rule is `head :- body.`; a nil head makes it an integrity constraint and
// an empty body makes it a fact.
type Rule struct {
	Head *Literal
	Body []BodyLiteral
}

func Fact(head Literal) Rule {
	return Rule{Head: &head}
}

func NewRule(head Literal, body ...BodyLiteral) Rule {
	return Rule{Head: &head, Body: body}
}

func Constraint(body ...BodyLiteral) Rule {
	return Rule{Body: body}
}

func (r Rule) IsFact() bool {
	return r.Head != nil && len(r.Body) == 0
}

func (r Rule) IsConstraint() bool {
	return r.Head == nil
}

// IsDefinite reports whether no body literal is negated.
func (r Rule) IsDefinite() bool {
	for _, b := range r.Body {
		if b.Negated {
			return false
		}
	}
	return true
}

func (r Rule) String() string {
	head := ""
	if r.Head != nil {
		head = r.Head.String()
	}
	if len(r.Body) == 0 {
		return head + "."
	}
	body := make([]string, len(r.Body))
	for i, b := range r.Body {
		body[i] = b.String()
	}
	return head + " :- " + strings.Join(body, ", ") + "."
}
