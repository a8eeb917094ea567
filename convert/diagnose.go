package convert

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"ilnlp/marco"
	"ilnlp/parser"
	"ilnlp/task"
)

// Conflict is a group of background rules that cannot hold together under
// an example's input.
type Conflict struct {
	Rules       []string   `json:"rules"`
	MUSs        [][]string `json:"muses"`
	Corrections [][]string `json:"corrections"`
}

// Diagnosis reports why an example's input admits no answer set.
type Diagnosis struct {
	Example   int        `json:"example"`
	Input     []string   `json:"input"`
	Conflicts []Conflict `json:"conflicts"`
}

func ruleText(rules []task.Rule, ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = rules[id-1].String()
	}
	return out
}

func setText(rules []task.Rule, sets []marco.IntSet) [][]string {
	out := make([][]string, len(sets))
	for i, s := range sets {
		ids := s.ToSlice()
		slices.Sort(ids)
		out[i] = ruleText(rules, ids)
	}
	return out
}

// Diagnose finds, for every example whose input has no answer set together
// with the background, the minimal sets of background rules responsible.
// Examples with answer sets are omitted from the result.
func (p *Pipeline) Diagnose(ctx context.Context, text string) ([]Diagnosis, error) {
	parsed, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	rules := parsed.Background()
	ids := make([]int, len(rules))
	for i := range ids {
		ids[i] = i + 1
	}

	var diagnoses []Diagnosis
	for i, e := range parsed.Examples() {
		input := parsed.Registry().Literals(e.Input)
		satisfiable := func(ctx context.Context, subset []int) (bool, error) {
			selected := make([]task.Rule, len(subset))
			for k, id := range subset {
				selected[k] = rules[id-1]
			}
			models, err := p.Solver.Models(ctx, selected, input, 1)
			if err != nil {
				return false, err
			}
			return len(models) > 0, nil
		}

		ok, err := satisfiable(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i+1, err)
		}
		if ok {
			continue
		}

		mc := marco.NewMarco(ids, satisfiable)
		if p.MapSolver != nil {
			if mc.Solver, err = p.MapSolver(ids); err != nil {
				return nil, err
			}
		}
		if err := mc.Run(ctx); err != nil {
			return nil, fmt.Errorf("example %d: %w", i+1, err)
		}
		p.logger().Info("diagnosed example",
			zap.Int("example", i+1),
			zap.Int("muses", len(mc.MUSs)),
			zap.Int("loops", mc.LoopCounter))

		d := Diagnosis{Example: i + 1, Input: make([]string, len(input))}
		for k, l := range input {
			d.Input[k] = l.String()
		}
		for _, c := range mc.Analysis() {
			d.Conflicts = append(d.Conflicts, Conflict{
				Rules:       ruleText(rules, c.CriticalNodes),
				MUSs:        setText(rules, c.MUSs),
				Corrections: setText(rules, c.MCSs),
			})
		}
		diagnoses = append(diagnoses, d)
	}
	return diagnoses, nil
}
