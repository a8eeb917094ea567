package ilasp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var knownArgs = []string{
	"-na", "-ml=2", "--ml=2", "-v", "--quiet",
	"--version=1", "--version=2", "--version=2i", "--version=3", "--version=4",
}

// CheckArgs returns a warning for every argument ILASP is unlikely to accept
// and for a missing --version flag.
func CheckArgs(args []string) []string {
	var warnings []string
	hasVersion := false
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if strings.HasPrefix(arg, "--version=") || arg == "-v" {
			hasVersion = true
		}
		if !slices.Contains(knownArgs, arg) && !strings.HasPrefix(arg, "-ml=") && !strings.HasPrefix(arg, "--ml=") {
			warnings = append(warnings, fmt.Sprintf("ILASP argument %q may be invalid, check ILASP --help", arg))
		}
	}
	if !hasVersion {
		warnings = append(warnings, "no ILASP version specified, ILASP requires --version=[1|2|2i|3|4]")
	}
	return warnings
}

type Runner struct {
	Path   string
	Args   []string
	Logger *zap.Logger
}

type Result struct {
	Output     string
	CPUTime    time.Duration
	Elapsed    time.Duration
	PeakMemory uint64
}

func (r *Result) String() string {
	return fmt.Sprintf("cpu=%s elapsed=%s memory=%s", r.CPUTime, r.Elapsed, humanize.Bytes(r.PeakMemory))
}

// Run executes ILASP on the program at programPath and returns its standard
// output. A non-zero exit status is an error carrying ILASP's stderr.
func (r *Runner) Run(ctx context.Context, programPath string) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, w := range CheckArgs(r.Args) {
		logger.Warn(w)
	}

	args := make([]string, 0, len(r.Args)+1)
	for _, a := range r.Args {
		args = append(args, strings.TrimSpace(a))
	}
	args = append(args, programPath)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Info("running ILASP", zap.String("path", r.Path), zap.Strings("args", args))
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := &Result{Output: stdout.String(), Elapsed: elapsed}
	if cmd.ProcessState != nil {
		result.PeakMemory = peakMemory(cmd.ProcessState)
	}
	result.CPUTime = parseTotalTime(stderr.String(), elapsed)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, fmt.Errorf("ILASP failed with status %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return result, fmt.Errorf("run ILASP: %w", err)
	}
	logger.Info("ILASP finished", zap.Duration("cpu", result.CPUTime), zap.String("memory", humanize.Bytes(result.PeakMemory)))
	return result, nil
}

// parseTotalTime reads ILASP's "Total ... : 1.23s" timing line.
func parseTotalTime(stderr string, fallback time.Duration) time.Duration {
	for _, line := range strings.Split(stderr, "\n") {
		if !strings.Contains(line, "Total") {
			continue
		}
		parts := strings.Split(line, ":")
		value := strings.TrimSpace(parts[len(parts)-1])
		value, ok := strings.CutSuffix(value, "s")
		if !ok {
			return fallback
		}
		secs, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fallback
		}
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
