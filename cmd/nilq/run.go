package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/nilq"
	"github.com/hupe1980/nilq/metrics/prom"
	"github.com/hupe1980/nilq/output"
	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "run [flags] FILE",
		Short: "Compute the nilpotent quotient of one presentation",
		Long: `Compute the nilpotent quotient of the presentation in FILE ("-" reads
standard input) class by class and print the resulting pc presentation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd.Flags())
			if err != nil {
				return err
			}
			return runOne(cmd.Context(), cmd, cfg, args[0])
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().StringVar(&f.cfg.Checkpoint.Resume, "resume", "", "continue the run with this ID from its latest checkpoint")
	return cmd
}

// env holds what the runs of one invocation share.
type env struct {
	cfg    Config
	format output.Format
	logger *nilq.Logger
	rc     *resource.Controller
	reg    *prometheus.Registry
	opts   []nilq.Option
}

func newEnv(ctx context.Context, cmd *cobra.Command, cfg Config) (*env, error) {
	e := &env{
		cfg:    cfg,
		logger: newLogger(cfg, cmd),
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:  cfg.MemoryLimit,
			MaxConcurrentRuns: int64(cfg.Concurrency),
			ProgressPerSec:    1,
		}),
	}
	sig, err := pc.ParseSignature(cfg.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nilq.ErrInput, err)
	}
	if e.format, err = output.ParseFormat(cfg.Format); err != nil {
		return nil, fmt.Errorf("%w: %w", nilq.ErrInput, err)
	}
	e.opts = []nilq.Option{
		nilq.WithSignature(sig),
		nilq.WithRing(cfg.Ring),
		nilq.WithMaxClass(cfg.MaxClass),
		nilq.WithGraded(cfg.Graded),
		nilq.WithDefaultExponent(cfg.DefaultExponent),
		nilq.WithQueueFactor(cfg.QueueFactor),
		nilq.WithLogger(e.logger),
		nilq.WithResourceController(e.rc),
	}
	if cfg.MetricsFile != "" {
		e.reg = prometheus.NewRegistry()
		c, err := prom.New(e.reg)
		if err != nil {
			return nil, err
		}
		e.opts = append(e.opts, nilq.WithMetricsCollector(c))
	}
	cp, err := openCheckpoints(ctx, cfg.Checkpoint, e.rc)
	if err != nil {
		return nil, err
	}
	if cp != nil {
		e.opts = append(e.opts, nilq.WithCheckpointer(cp))
	}
	return e, nil
}

// writeMetrics exports the collected metrics for the node exporter's
// textfile collector.
func (e *env) writeMetrics() error {
	if e.reg == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(e.cfg.MetricsFile, e.reg); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// run computes the quotient of the presentation in file and renders it to w.
func (e *env) run(ctx context.Context, file string, w io.Writer, extra ...nilq.Option) error {
	src, err := readInput(file)
	if err != nil {
		return err
	}
	opts := append(append([]nilq.Option(nil), e.opts...), extra...)
	rep, err := nilq.Run(ctx, file, src, opts...)
	if err != nil {
		return err
	}
	return rep.Render(w, e.format)
}

func runOne(ctx context.Context, cmd *cobra.Command, cfg Config, file string) error {
	e, err := newEnv(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	var extra []nilq.Option
	if id := cfg.Checkpoint.Resume; id != "" {
		extra = append(extra, nilq.WithResume(id))
	}

	w := cmd.OutOrStdout()
	if cfg.Output != "" {
		err = writeFile(cfg.Output, func(w io.Writer) error { return e.run(ctx, file, w, extra...) })
	} else {
		err = e.run(ctx, file, w, extra...)
	}
	if merr := e.writeMetrics(); err == nil {
		err = merr
	}
	return err
}

func readInput(file string) ([]byte, error) {
	var (
		src []byte
		err error
	)
	if file == "-" {
		src, err = io.ReadAll(os.Stdin)
	} else {
		src, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nilq.ErrInput, err)
	}
	return src, nil
}

// writeFile renders into a temporary file next to path and renames it into
// place once fn succeeded.
func writeFile(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
