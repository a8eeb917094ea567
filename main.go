package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ilnlp/config"
	"ilnlp/convert"
	"ilnlp/ilasp"
	"ilnlp/stat"
)

type options struct {
	configPath string
	verbose    bool
	output     string
	template   string
	run        bool
	ilaspPath  string
	ilaspArgs  []string
	ilaspOut   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "ilnlp [task-file]",
		Short: "Convert input/output examples into an ILASP learning task",
		Long: `ilnlp reads background rules followed by examples

  I: <input atoms>
  O: {<answer set>} {<answer set>} ...

checks that the examples can be explained together and writes the
corresponding ILASP task. Without a file the task is read from stdin.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: opts.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: opts.convert,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&opts.template, "template", "", "custom ILASP task template")

	f := root.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "write the ILASP task to this file")
	f.BoolVarP(&opts.run, "run", "r", false, "run ILASP on the generated task")
	f.StringVar(&opts.ilaspPath, "ilasp", "", "ILASP executable")
	f.StringArrayVar(&opts.ilaspArgs, "ilasp-arg", nil, "argument passed to ILASP (repeatable)")
	f.StringVar(&opts.ilaspOut, "ilasp-out", "", "write ILASP output to this file")

	root.AddCommand(newServeCmd(opts), newDiagnoseCmd(opts))
	return root
}

func (o *options) setup(*cobra.Command, []string) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.template != "" {
		cfg.Template = o.template
	}
	if o.ilaspPath != "" {
		cfg.ILASP.Path = o.ilaspPath
	}
	if len(o.ilaspArgs) > 0 {
		cfg.ILASP.Args = o.ilaspArgs
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if o.verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	o.logger, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// runContext returns a context cancelled by SIGINT/SIGTERM and by the
// configured timeout.
func (o *options) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if d := o.cfg.GetTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		return ctx, func() { cancel(); stop() }
	}
	return ctx, stop
}

func readTask(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read task: %w", err)
	}
	return string(data), nil
}

func (o *options) convert(cmd *cobra.Command, args []string) error {
	text, err := readTask(cmd, args)
	if err != nil {
		return err
	}
	pipeline, err := convert.New(o.cfg, o.logger)
	if err != nil {
		return err
	}
	ctx, cancel := o.runContext(cmd.Context())
	defer cancel()

	stats := stat.New()
	defer func() {
		stats.Finish()
		fmt.Fprint(cmd.ErrOrStderr(), stats.String())
	}()

	result, err := pipeline.Convert(ctx, text, stats)
	if err != nil {
		return err
	}

	if !o.run {
		if o.output == "" {
			_, err = io.WriteString(cmd.OutOrStdout(), result.Program)
			return err
		}
		return os.WriteFile(o.output, []byte(result.Program), 0o644)
	}
	return o.runILASP(ctx, cmd, result.Program, stats)
}

func (o *options) runILASP(ctx context.Context, cmd *cobra.Command, program string, stats *stat.Stats) error {
	path := o.output
	if path == "" {
		f, err := os.CreateTemp("", "ilnlp-*.las")
		if err != nil {
			return err
		}
		path = f.Name()
		defer os.Remove(path)
		if _, err := f.WriteString(program); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	} else if err := os.WriteFile(path, []byte(program), 0o644); err != nil {
		return err
	}

	runner := &ilasp.Runner{
		Path:   o.cfg.ILASP.Path,
		Args:   o.cfg.ILASP.Args,
		Logger: o.logger.Named("ilasp"),
	}
	result, err := runner.Run(ctx, path)
	if result != nil {
		stats.Solve(result.Elapsed)
		stats.RecordILASP(result.CPUTime, result.PeakMemory)
	}
	if err != nil {
		return err
	}

	if o.ilaspOut != "" {
		return os.WriteFile(o.ilaspOut, []byte(result.Output), 0o644)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), result.Output)
	return err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
