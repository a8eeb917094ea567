package convert

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ilnlp/asp"
	"ilnlp/config"
	"ilnlp/marco"
	"ilnlp/parser"
	"ilnlp/stat"
	"ilnlp/task"
)

func newPipeline(t *testing.T, mutate func(*config.Config)) *Pipeline {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestConvert(t *testing.T) {
	stats := stat.New()
	result, err := newPipeline(t, nil).Convert(context.Background(), "p.\nI:\nO: {p}\n", stats)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Contains(t, result.Program, "p.\n")
	assert.Contains(t, result.Program, "#pos(p1, {p}, {}, {}).")
	assert.Contains(t, result.Program, "#modeh(p).")
	assert.NotContains(t, result.Program, "#neg(")

	size, ok := stats.UniverseSize()
	assert.True(t, ok)
	assert.Equal(t, 1, size)
	assert.Contains(t, stats.String(), "Output time:")
}

func TestConvertLeastModelBackends(t *testing.T) {
	text := `
q(X) :- p(X).
I: p(1)
O: {p(1) p(2) q(1) q(2)}
I: p(2)
O: {p(2) q(2) s}
`
	var programs []string
	for _, backend := range config.ValidLeastModels {
		p := newPipeline(t, func(c *config.Config) { c.Solver.LeastModel = backend })
		result, err := p.Convert(context.Background(), text, nil)
		require.NoError(t, err, backend)
		programs = append(programs, result.Program)
	}
	for _, program := range programs[1:] {
		assert.Equal(t, programs[0], program)
	}
}

func TestConvertIncompatible(t *testing.T) {
	text := "I: q\nO: {q r}\nI:\nO: {q}\n"
	_, err := newPipeline(t, nil).Convert(context.Background(), text, nil)
	assert.ErrorIs(t, err, task.ErrIncompatibleOne)
}

func TestConvertParseError(t *testing.T) {
	_, err := newPipeline(t, nil).Convert(context.Background(), "p :- .", nil)
	var perr *parser.Error
	assert.ErrorAs(t, err, &perr)
}

func TestCustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.tmpl")
	tmpl := `{{ len .PosExamples }} positive, {{ len .NegExamples }} negative`
	require.NoError(t, os.WriteFile(path, []byte(tmpl), 0o644))

	p := newPipeline(t, func(c *config.Config) { c.Template = path })
	result, err := p.Convert(context.Background(), "I:\nO: {a} {b}\n", nil)
	require.NoError(t, err)
	assert.Equal(t, "2 positive, 0 negative", result.Program)
}

func TestBackendSelection(t *testing.T) {
	solver, err := NewSolver(config.SolverConfig{Backend: "native"}, nil)
	require.NoError(t, err)
	engine, ok := solver.(*asp.Engine)
	require.True(t, ok)

	lm, err := NewLeastModeler(config.SolverConfig{LeastModel: "native"}, solver, nil)
	require.NoError(t, err)
	assert.Same(t, engine, lm)

	solver, err = NewSolver(config.SolverConfig{Backend: "clingo", Clingo: "/opt/clingo"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/opt/clingo", solver.(*asp.Clingo).Path)

	lm, err = NewLeastModeler(config.SolverConfig{LeastModel: "native"}, solver, nil)
	require.NoError(t, err)
	assert.IsType(t, &asp.Engine{}, lm)

	_, err = NewSolver(config.SolverConfig{Backend: "dlv"}, nil)
	assert.Error(t, err)
	_, err = NewLeastModeler(config.SolverConfig{LeastModel: "souffle"}, solver, nil)
	assert.Error(t, err)

	newMap, err := NewMapSolver(config.SolverConfig{Map: "sat", SAT: "gophersat"})
	require.NoError(t, err)
	m, err := newMap([]int{1, 2})
	require.NoError(t, err)
	assert.IsType(t, &marco.SATSolver{}, m)

	newMap, err = NewMapSolver(config.SolverConfig{})
	require.NoError(t, err)
	m, err = newMap([]int{1, 2})
	require.NoError(t, err)
	assert.IsType(t, &marco.MaxSatSolver{}, m)

	newMap, err = NewMapSolver(config.SolverConfig{Map: "sat", SAT: "minisat"})
	require.NoError(t, err)
	_, err = newMap([]int{1})
	assert.Error(t, err)
	_, err = NewMapSolver(config.SolverConfig{Map: "cdcl"})
	assert.Error(t, err)
}

func TestDiagnose(t *testing.T) {
	text := `
a :- not b.
b :- not a.
:- a.
:- b.
c.
I:
O:
I: c
O: {c}
`
	for _, mapSolver := range config.ValidMapSolvers {
		t.Run(mapSolver, func(t *testing.T) {
			p := newPipeline(t, func(c *config.Config) { c.Solver.Map = mapSolver })
			diagnoses, err := p.Diagnose(context.Background(), text)
			require.NoError(t, err)
			require.Len(t, diagnoses, 2)
			assert.Equal(t, 1, diagnoses[0].Example)
			assert.Equal(t, []string{"c"}, diagnoses[1].Input)

			conflicts := diagnoses[0].Conflicts
			require.Len(t, conflicts, 2)
			slices.SortFunc(conflicts, func(x, y Conflict) int { return strings.Compare(x.Rules[0], y.Rules[0]) })
			assert.Equal(t, []string{"a :- not b.", " :- a."}, conflicts[0].Rules)
			assert.Equal(t, []string{"b :- not a.", " :- b."}, conflicts[1].Rules)
			assert.Equal(t, [][]string{{"a :- not b.", " :- a."}}, conflicts[0].MUSs)
		})
	}
}

func TestDiagnoseSatisfiable(t *testing.T) {
	diagnoses, err := newPipeline(t, nil).Diagnose(context.Background(), "p :- not q.\nI:\nO: {p}\n")
	require.NoError(t, err)
	assert.Empty(t, diagnoses)
}
