// Package parser reads learning tasks written as background rules followed
// by examples:
//
//	p(X) :- q(X), not r(X).
//	:- p(X), p(Y), X != Y.
//	I: q(1) q(2)
//	O: {p(1)} {p(2)}
package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var taskLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `%[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Marker", Pattern: `[IO]:`},
	{Name: "Imply", Pattern: `:-`},
	{Name: "Op", Pattern: `!=|<|>`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Var", Pattern: `_*[A-Z][a-zA-Z0-9_']*`},
	{Name: "Const", Pattern: `_*[a-z][a-zA-Z0-9_']*`},
	{Name: "Anon", Pattern: `_`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Punct", Pattern: `[(),.{}]`},
})

type File struct {
	Rules    []*RuleNode    `@@*`
	Examples []*ExampleNode `@@*`
}

type RuleNode struct {
	Pos  lexer.Position
	Head *AtomNode  `@@?`
	Body []BodyNode `( Imply @@ ( "," @@ )* )? "."`
}

type ExampleNode struct {
	Pos     lexer.Position
	Input   []*AtomNode   `"I:" @@*`
	Outputs []*AnswerNode `"O:" @@*`
}

type AnswerNode struct {
	Atoms []*AtomNode `"{" @@* "}"`
}

type AtomNode struct {
	Predicate string   `@Const`
	Args      []string `( "(" ( @(Const | Var | Int | String | Anon) ( "," @(Const | Var | Int | String | Anon) )* )? ")" )?`
}

type BodyNode interface {
	body()
}

type LiteralNode struct {
	Negated bool      `@"not"?`
	Atom    *AtomNode `@@`
}

type ComparisonNode struct {
	Left  string `@(Var | Int)`
	Op    string `@Op`
	Right string `@(Var | Int)`
}

func (LiteralNode) body()    {}
func (ComparisonNode) body() {}

var taskParser = participle.MustBuild[File](
	participle.Lexer(taskLexer),
	participle.Union[BodyNode](ComparisonNode{}, LiteralNode{}),
	participle.Elide("Comment", "Whitespace"),
	participle.UseLookahead(2),
)

// Term is a solver output term: a constant, number or string, optionally
// applied to arguments.
type Term struct {
	Name string  `( @Const | @Int | @String | @Var )`
	Args []*Term `( "(" ( @@ ( "," @@ )* )? ")" )?`
}

func (t *Term) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return t.Name + "(" + strings.Join(args, ",") + ")"
}

var termParser = participle.MustBuild[Term](
	participle.Lexer(taskLexer),
	participle.Elide("Comment", "Whitespace"),
)
