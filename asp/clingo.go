package asp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ilnlp/parser"
	"ilnlp/task"
)

// Clingo runs programs through an external clingo binary.
type Clingo struct {
	Path   string
	Logger *zap.Logger
}

func NewClingo(path string, logger *zap.Logger) *Clingo {
	if path == "" {
		path = "clingo"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Clingo{Path: path, Logger: logger}
}

type clingoOutput struct {
	Result string `json:"Result"`
	Call   []struct {
		Witnesses []struct {
			Value []string `json:"Value"`
		} `json:"Witnesses"`
	} `json:"Call"`
}

func programText(rules []task.Rule, facts []task.Literal) string {
	var sb strings.Builder
	for _, r := range rules {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	for _, f := range facts {
		sb.WriteString(f.String())
		sb.WriteString(".\n")
	}
	return sb.String()
}

// run feeds program to clingo on stdin. Exit codes 10, 20 and 30 report
// satisfiability and are not failures.
func (c *Clingo) run(ctx context.Context, program string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Stdin = strings.NewReader(program)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.Logger.Debug("running clingo", zap.String("path", c.Path), zap.Strings("args", args))
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		switch exitErr.ExitCode() {
		case 10, 20, 30:
			err = nil
		default:
			return nil, fmt.Errorf("clingo failed with status %d: %s",
				exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("clingo: %w", err)
	}
	return stdout.Bytes(), nil
}

// GroundFacts returns the atoms clingo's grounder simplifies to facts.
func (c *Clingo) GroundFacts(ctx context.Context, rules []task.Rule, facts ...[]task.Literal) ([]task.Literal, error) {
	var all []task.Literal
	for _, fs := range facts {
		all = append(all, fs...)
	}
	out, err := c.run(ctx, programText(rules, all), "--text")
	if err != nil {
		return nil, err
	}

	var result []task.Literal
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.Contains(line, ":-") || !strings.HasSuffix(line, ".") {
			continue
		}
		lit, err := parser.ParseAtom(strings.TrimSuffix(line, "."))
		if err != nil {
			return nil, fmt.Errorf("clingo output %q: %w", line, err)
		}
		result = append(result, lit)
	}
	return result, scanner.Err()
}

// Models enumerates up to limit answer sets; limit <= 0 means all.
func (c *Clingo) Models(ctx context.Context, rules []task.Rule, facts []task.Literal, limit int) ([][]task.Literal, error) {
	if limit < 0 {
		limit = 0
	}
	out, err := c.run(ctx, programText(rules, facts), "--outf=2", strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	var decoded clingoOutput
	if err := json.Unmarshal(out, &decoded); err != nil {
		return nil, fmt.Errorf("decode clingo output: %w", err)
	}

	var models [][]task.Literal
	for _, call := range decoded.Call {
		for _, w := range call.Witnesses {
			model := make([]task.Literal, 0, len(w.Value))
			for _, v := range w.Value {
				lit, err := parser.ParseAtom(v)
				if err != nil {
					return nil, fmt.Errorf("clingo atom %q: %w", v, err)
				}
				model = append(model, lit)
			}
			models = append(models, model)
		}
	}
	c.Logger.Debug("clingo finished", zap.String("result", decoded.Result), zap.Int("models", len(models)))
	return models, nil
}
