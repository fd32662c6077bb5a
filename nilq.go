package nilq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/nilq/checkpoint"
	"github.com/hupe1980/nilq/fpres"
	"github.com/hupe1980/nilq/internal/arena"
	"github.com/hupe1980/nilq/internal/engine"
	"github.com/hupe1980/nilq/internal/rusage"
	"github.com/hupe1980/nilq/output"
	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/ring"
)

// ClassStats summarizes one completed class.
type ClassStats struct {
	Class      int           `json:"class"`
	Tails      int           `json:"tails"`
	Derived    int           `json:"derived"`
	NewGens    int           `json:"new_generators"`
	Torsion    int           `json:"torsion"`
	Eliminated int           `json:"eliminated"`
	Rows       int           `json:"rows"`
	TotalGens  int           `json:"total_generators"`
	Elapsed    time.Duration `json:"elapsed"`
	CPU        time.Duration `json:"cpu"`
	Checkpoint string        `json:"checkpoint,omitempty"`
}

// Summary describes a finished run independently of the coefficient type.
type Summary struct {
	RunID       string        `json:"run_id"`
	File        string        `json:"file,omitempty"`
	Signature   string        `json:"signature"`
	Ring        string        `json:"ring"`
	Class       int           `json:"class"`
	Generators  int           `json:"generators"`
	Ranks       []int         `json:"ranks"`
	Stable      bool          `json:"stable"`
	ResumedFrom int           `json:"resumed_from,omitempty"`
	Classes     []ClassStats  `json:"classes"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Report is a finished run whose coefficient type was chosen at runtime.
type Report interface {
	Summary() Summary
	Render(w io.Writer, f output.Format) error
}

// Result is a finished run over coefficients of type T.
type Result[T any] struct {
	RunID        string
	File         string
	Presentation *pc.Presentation[T]
	Classes      []ClassStats
	// Stable is set when the last class introduced no generators, so the
	// presentation describes the largest nilpotent quotient.
	Stable      bool
	ResumedFrom int
	Elapsed     time.Duration
}

// Summary implements Report.
func (r *Result[T]) Summary() Summary {
	p := r.Presentation
	return Summary{
		RunID:       r.RunID,
		File:        r.File,
		Signature:   p.Signature.String(),
		Ring:        p.Ring.Name(),
		Class:       p.Class,
		Generators:  p.NrPcGens,
		Ranks:       p.Ranks(),
		Stable:      r.Stable,
		ResumedFrom: r.ResumedFrom,
		Classes:     slices.Clone(r.Classes),
		Elapsed:     r.Elapsed,
	}
}

// Render implements Report.
func (r *Result[T]) Render(w io.Writer, f output.Format) error {
	return output.Write(w, r.Presentation, f)
}

// Run parses src and computes its nilpotent quotient over the ring selected
// with WithRing. file is only used in diagnostics.
func Run(ctx context.Context, file string, src []byte, optFns ...Option) (Report, error) {
	o := applyOptions(optFns)
	fp, err := fpres.Parse(file, src, o.signature)
	if err != nil {
		return nil, translateError(err)
	}
	spec, err := ring.ParseSpec(o.ring)
	if err != nil {
		return nil, translateError(err)
	}
	switch spec.Kind {
	case ring.KindInt64:
		return report(Quotient[int64](ctx, ring.Int64{}, fp, optFns...))
	case ring.KindInteger:
		return report(Quotient(ctx, ring.Ring[*big.Int](ring.Integer{}), fp, optFns...))
	case ring.KindMod2k:
		return report(Quotient[uint64](ctx, ring.NewMod2k(spec.K), fp, optFns...))
	case ring.KindModPk:
		r, err := ring.NewModPk(spec.P, spec.K)
		if err != nil {
			return nil, translateError(err)
		}
		return report(Quotient[uint64](ctx, r, fp, optFns...))
	}
	return nil, fmt.Errorf("%w: ring %s", ErrUnsupported, spec)
}

// report keeps a failed run from turning into a non-nil Report.
func report[T any](res *Result[T], err error) (Report, error) {
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Quotient computes the nilpotent quotient of fp over r class by class until
// it stabilizes or the class bound is reached.
func Quotient[T any](ctx context.Context, r ring.Ring[T], fp *fpres.Presentation, optFns ...Option) (*Result[T], error) {
	o := applyOptions(optFns)
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	if o.resume && o.checkpoints == nil {
		return nil, fmt.Errorf("%w: resume needs a checkpoint store", ErrInput)
	}
	if o.maxClass < 0 {
		return nil, fmt.Errorf("%w: negative class bound %d", ErrInput, o.maxClass)
	}
	exp, err := r.FromString(o.defaultExponent)
	if err != nil {
		return nil, fmt.Errorf("%w: default exponent %q: %w", ErrInput, o.defaultExponent, err)
	}

	log := o.logger.WithRun(o.runID).WithPresentation(fp.File, fp.Signature.String(), r.Name())
	start := time.Now()
	res := &Result[T]{RunID: o.runID, File: fp.File}

	if err := o.controller.AcquireRun(ctx); err != nil {
		return nil, translateError(err)
	}
	defer o.controller.ReleaseRun()

	err = quotient(ctx, r, fp, exp, o, log, res)
	res.Elapsed = time.Since(start)
	o.metricsCollector.RecordRun(len(res.Classes), res.Elapsed, err)
	if err != nil {
		log.LogRunDone(ctx, len(res.Classes), 0, false, res.Elapsed, err)
		return nil, err
	}
	log.LogRunDone(ctx, res.Presentation.Class, res.Presentation.NrPcGens, res.Stable, res.Elapsed, nil)
	return res, nil
}

func quotient[T any](ctx context.Context, r ring.Ring[T], fp *fpres.Presentation, exp T, o options, log *Logger, res *Result[T]) error {
	p, err := initial(ctx, r, fp, exp, o)
	if err != nil {
		return err
	}
	res.ResumedFrom = p.Class
	if p.Class > 0 {
		log.InfoContext(ctx, "resumed from checkpoint", "class", p.Class, "generators", p.NrPcGens)
		res.Stable = p.Ranks()[p.Class-1] == 0
	}

	cfg := engine.Config[T]{
		Graded:      o.graded,
		TorsionExp:  exp,
		QueueFactor: o.queueFactor,
	}
	if o.controller != nil {
		cfg.ArenaOptions = append(cfg.ArenaOptions, arena.WithMemoryAcquirer(o.controller))
	}
	e, err := engine.New(p, fp.Relators, cfg)
	if err != nil {
		return translateError(err)
	}
	defer e.Close()

	for !res.Stable && (o.maxClass == 0 || p.Class < o.maxClass) {
		c := p.Class + 1
		log.LogClassStart(ctx, c, p.NrPcGens)
		cpu := rusage.Self()
		step, err := e.Step(ctx)
		if err != nil {
			// Step has already advanced p.Class when it fails.
			return classError(o.runID, c, err)
		}
		s := classStats(step, rusage.Self().Sub(cpu).CPU())
		res.Stable = step.NewGens == 0

		if o.checkpoints != nil {
			name, err := checkpoint.Save(ctx, o.checkpoints, o.runID, p)
			log.LogCheckpoint(ctx, name, err)
			s.Checkpoint = name
		}
		if o.controller.AllowProgress() {
			log.LogProgress(ctx, s.Class, "relation matrix",
				"queued", step.Matrix.Queued,
				"duplicates", step.Matrix.Duplicates,
				"inserts", step.Matrix.Inserts,
				"redundant", step.Matrix.Redundant,
				"arena_depth", e.Arena().Stats().MaxDepth,
				"memory_bytes", o.controller.MemoryUsage(),
			)
		}
		log.LogClassDone(ctx, s)
		o.metricsCollector.RecordClass(s)
		res.Classes = append(res.Classes, s)
	}
	res.Presentation = p
	return nil
}

// initial returns the presentation to start from: the latest checkpoint
// when resuming, a class-0 presentation otherwise.
func initial[T any](ctx context.Context, r ring.Ring[T], fp *fpres.Presentation, exp T, o options) (*pc.Presentation[T], error) {
	if !o.resume {
		return pc.New(r, fp.Signature, fp.Generators), nil
	}
	p, err := checkpoint.Load(ctx, o.checkpoints, o.runID, r)
	switch {
	case errors.Is(err, checkpoint.ErrNoCheckpoint):
		return pc.New(r, fp.Signature, fp.Generators), nil
	case err != nil:
		return nil, translateError(err)
	}
	if p.Signature != fp.Signature || !slices.Equal(p.GenNames, fp.Generators) {
		return nil, fmt.Errorf("%w: checkpoint of run %s was computed for a different presentation", ErrInput, o.runID)
	}
	if p.Graded != o.graded {
		return nil, fmt.Errorf("%w: checkpoint of run %s has graded=%t, run has graded=%t", ErrInput, o.runID, p.Graded, o.graded)
	}
	if r.Compare(p.DefaultExponent, exp) != 0 {
		return nil, fmt.Errorf("%w: checkpoint of run %s has default exponent %s, run has %s",
			ErrInput, o.runID, r.String(p.DefaultExponent), r.String(exp))
	}
	return p, nil
}

func classStats(s engine.StepResult, cpu time.Duration) ClassStats {
	return ClassStats{
		Class:      s.Class,
		Tails:      s.Tails,
		Derived:    s.Derived,
		NewGens:    s.NewGens,
		Torsion:    s.Torsion,
		Eliminated: s.Eliminated,
		Rows:       s.Rows,
		TotalGens:  s.TotalGens,
		Elapsed:    s.Elapsed,
		CPU:        cpu,
	}
}
