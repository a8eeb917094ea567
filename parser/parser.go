package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"ilnlp/task"
)

// Error locates a syntax or validation problem in the task text.
type Error struct {
	Line     int
	Column   int
	Message  string
	Fragment string
}

func (e *Error) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error at line %d, column %d: %s near '%s'", e.Line, e.Column, e.Message, e.Fragment)
}

func fragment(text string, offset int) string {
	if offset < 0 || offset >= len(text) {
		return ""
	}
	rest := text[offset:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	if len(rest) > 20 {
		return rest[:20] + "..."
	}
	return rest
}

func errorAt(text string, pos lexer.Position, format string, args ...any) *Error {
	return &Error{
		Line:     pos.Line,
		Column:   pos.Column,
		Message:  fmt.Sprintf(format, args...),
		Fragment: fragment(text, pos.Offset),
	}
}

// Parse reads a learning task. Literals are interned into the task registry
// in order of appearance.
func Parse(text string) (*task.Task, error) {
	file, err := taskParser.ParseString("", text)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, errorAt(text, perr.Position(), "%s", perr.Message())
		}
		return nil, err
	}

	t := task.New()
	for _, r := range file.Rules {
		rule, err := convertRule(text, r)
		if err != nil {
			return nil, err
		}
		t.PushBackground(rule)
	}
	for _, e := range file.Examples {
		example, err := convertExample(text, t, e)
		if err != nil {
			return nil, err
		}
		t.PushExample(example)
	}
	return t, nil
}

func convertAtom(a *AtomNode) task.Literal {
	return task.NewLiteral(a.Predicate, a.Args...)
}

func isGround(a *AtomNode) bool {
	for _, arg := range a.Args {
		if task.IsAnonymous(arg) || task.IsVariable(arg) {
			return false
		}
	}
	return true
}

func convertRule(text string, r *RuleNode) (task.Rule, error) {
	var rule task.Rule
	if r.Head != nil {
		head := convertAtom(r.Head)
		rule.Head = &head
	}
	if rule.Head == nil && len(r.Body) == 0 {
		return rule, errorAt(text, r.Pos, "rule needs a head or a body")
	}
	for _, b := range r.Body {
		switch b := b.(type) {
		case LiteralNode:
			l := convertAtom(b.Atom)
			if b.Negated {
				rule.Body = append(rule.Body, task.Neg(l))
			} else {
				rule.Body = append(rule.Body, task.Pos(l))
			}
		case ComparisonNode:
			op, err := compareOp(b.Op)
			if err != nil {
				return rule, errorAt(text, r.Pos, "%v", err)
			}
			rule.Body = append(rule.Body, task.Cmp(op, b.Left, b.Right))
		}
	}
	return rule, nil
}

func compareOp(op string) (task.CompareOp, error) {
	switch op {
	case "!=":
		return task.NotEqual, nil
	case ">":
		return task.Greater, nil
	case "<":
		return task.Less, nil
	}
	return 0, fmt.Errorf("unknown comparison %q", op)
}

func convertExample(text string, t *task.Task, e *ExampleNode) (task.Example, error) {
	intern := func(atoms []*AtomNode) (task.LitSet, error) {
		s := task.NewLitSet()
		for _, a := range atoms {
			if !isGround(a) {
				return s, errorAt(text, e.Pos, "example atom %s is not ground", convertAtom(a))
			}
			s.Insert(t.Intern(convertAtom(a)))
		}
		s.Normalize()
		return s, nil
	}

	input, err := intern(e.Input)
	if err != nil {
		return task.Example{}, err
	}
	example := task.Example{Input: input}
	for _, out := range e.Outputs {
		s, err := intern(out.Atoms)
		if err != nil {
			return task.Example{}, err
		}
		example.Outputs = append(example.Outputs, s)
	}
	return example, nil
}

// ParseAtom reads one ground atom as printed by an answer-set solver, for
// example `edge(1,f(a),"x")`.
func ParseAtom(s string) (task.Literal, error) {
	term, err := termParser.ParseString("", s)
	if err != nil {
		return task.Literal{}, fmt.Errorf("parse atom %q: %w", s, err)
	}
	args := make([]string, len(term.Args))
	for i, a := range term.Args {
		args[i] = a.String()
	}
	return task.NewLiteral(term.Name, args...), nil
}
