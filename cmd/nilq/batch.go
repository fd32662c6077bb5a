package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hupe1980/nilq"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newBatchCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "batch [flags] FILE...",
		Short: "Compute the nilpotent quotients of several presentations",
		Long: `Compute the nilpotent quotient of every FILE concurrently. Each result
is written to the output directory as <name>.<format>. A failing
presentation does not stop the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd.Flags())
			if err != nil {
				return err
			}
			return runBatch(cmd.Context(), cmd, cfg, args)
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().IntVarP(&f.cfg.Concurrency, "concurrency", "j", 0, "runs computed at once (0 means 1)")
	return cmd
}

func runBatch(ctx context.Context, cmd *cobra.Command, cfg Config, files []string) error {
	if cfg.Output == "" {
		return fmt.Errorf("%w: batch needs an output directory", nilq.ErrInput)
	}
	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return err
	}
	e, err := newEnv(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	g.SetLimit(max(cfg.Concurrency, 1))
	for _, file := range files {
		g.Go(func() error {
			out := outputPath(cfg.Output, file, e.format.Extension())
			err := writeFile(out, func(w io.Writer) error { return e.run(ctx, file, w) })
			if err != nil {
				e.logger.ErrorContext(ctx, "presentation failed", "file", file, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", file, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			fmt.Fprintln(cmd.OutOrStdout(), out)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := e.writeMetrics(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// outputPath names the result of file in dir.
func outputPath(dir, file, ext string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+ext)
}
