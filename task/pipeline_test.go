package task_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ilnlp/asp"
	"ilnlp/ilasp"
	"ilnlp/parser"
	"ilnlp/task"
)

func synthesize(t *testing.T, text string) ilasp.Document {
	t.Helper()
	parsed, err := parser.Parse(text)
	require.NoError(t, err)
	engine := asp.NewEngine("", nil)
	require.NoError(t, parsed.CheckCompatibility(context.Background(), engine, engine))
	induction, err := parsed.Synthesize(context.Background(), engine, nil)
	require.NoError(t, err)
	return induction.Document()
}

func TestSynthesizeFact(t *testing.T) {
	doc := synthesize(t, "p.\nI:\nO: {p}\n")

	require.Len(t, doc.PosExamples, 1)
	assert.Equal(t, []string{"p"}, doc.PosExamples[0].Incl)
	assert.Empty(t, doc.PosExamples[0].Excl)
	assert.Empty(t, doc.NegExamples)
	assert.Equal(t, []string{"p."}, doc.Background)
	assert.Equal(t, []string{"p"}, doc.SearchSpace.Head)
}

func TestSynthesizeFactInInput(t *testing.T) {
	doc := synthesize(t, "p.\nI: p\nO: {p}\n")

	require.Len(t, doc.PosExamples, 1)
	assert.Equal(t, []string{"p"}, doc.PosExamples[0].Incl)
	assert.Equal(t, []string{"p"}, doc.PosExamples[0].Ctx)
	assert.Empty(t, doc.SearchSpace.Head)
	assert.Empty(t, doc.SearchSpace.GeneralBody)
	assert.Equal(t, []string{"p"}, doc.SearchSpace.PositiveBody)
}

func TestSynthesizeDerivedUniverse(t *testing.T) {
	text := `
q(X) :- p(X).
I: p(1)
O: {p(1) r(1)}
I: p(2)
O:
`
	doc := synthesize(t, text)

	want := ilasp.Document{
		PosExamples: []ilasp.ExampleDoc{
			{Incl: []string{"p(1)", "r(1)"}, Excl: []string{"q(1)"}, Ctx: []string{"p(1)"}},
		},
		NegExamples: []ilasp.ExampleDoc{
			{Incl: []string{}, Excl: []string{}, Ctx: []string{"p(2)"}},
			{Incl: []string{"q(1)"}, Excl: []string{}, Ctx: []string{"p(1)"}},
		},
		SearchSpace: ilasp.SearchSpaceDoc{
			PositiveBody: []string{"p(1)", "p(2)"},
			GeneralBody:  []string{"r(1)"},
			Head:         []string{"r(1)"},
		},
		Background: []string{"q(X) :- p(X)."},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("synthesized task (-want +got):\n%s", diff)
	}
}

func TestSynthesizeSpuriousNegatives(t *testing.T) {
	doc := synthesize(t, "I: x\nO: {x a b} {x c d}\n")

	want := ilasp.Document{
		PosExamples: []ilasp.ExampleDoc{
			{Incl: []string{"x", "a", "b"}, Excl: []string{"c", "d"}, Ctx: []string{"x"}},
			{Incl: []string{"x", "c", "d"}, Excl: []string{"a", "b"}, Ctx: []string{"x"}},
		},
		NegExamples: []ilasp.ExampleDoc{
			{Incl: []string{"x", "a", "c"}, Excl: []string{"b", "d"}, Ctx: []string{"x"}},
			{Incl: []string{"x", "a", "d"}, Excl: []string{"b", "c"}, Ctx: []string{"x"}},
			{Incl: []string{"x", "b", "c"}, Excl: []string{"a", "d"}, Ctx: []string{"x"}},
			{Incl: []string{"x", "b", "d"}, Excl: []string{"a", "c"}, Ctx: []string{"x"}},
		},
		SearchSpace: ilasp.SearchSpaceDoc{
			PositiveBody: []string{"x"},
			GeneralBody:  []string{"a", "b", "c", "d"},
			Head:         []string{"a", "b", "c", "d"},
		},
		Background: []string{},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("synthesized task (-want +got):\n%s", diff)
	}
}

func TestCompatibilityConditionTwoWithEngine(t *testing.T) {
	text := `
q :- p.
I: q
O: {p q}
I: p
O: {p r}
`
	parsed, err := parser.Parse(text)
	require.NoError(t, err)
	engine := asp.NewEngine("", nil)
	err = parsed.CheckCompatibility(context.Background(), engine, engine)
	assert.ErrorIs(t, err, task.ErrIncompatibleTwo)
}
