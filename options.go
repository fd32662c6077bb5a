package nilq

import (
	"log/slog"

	"github.com/hupe1980/nilq/checkpoint"
	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/resource"
)

type options struct {
	ring             string
	signature        pc.Signature
	maxClass         int
	graded           bool
	defaultExponent  string
	queueFactor      int
	runID            string
	resume           bool
	checkpoints      *checkpoint.Store
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a run.
type Option func(*options)

// WithRing selects the coefficient ring of Run: "int64", "integer",
// "mod2k:<k>" or "modpk:<p>:<k>". Quotient takes the ring as an argument
// and ignores this option.
func WithRing(spec string) Option {
	return func(o *options) {
		o.ring = spec
	}
}

// WithSignature selects Lie ring or group input for Run.
func WithSignature(sig pc.Signature) Option {
	return func(o *options) {
		o.signature = sig
	}
}

// WithMaxClass stops the run after the given class. Zero runs until the
// quotient stabilizes, which may never happen for infinite nilpotent
// quotients such as free Lie rings.
func WithMaxClass(c int) Option {
	return func(o *options) {
		o.maxClass = c
	}
}

// WithGraded restricts every class to its own weight layer. Only Lie rings
// with homogeneous relators support it.
func WithGraded(graded bool) Option {
	return func(o *options) {
		o.graded = graded
	}
}

// WithDefaultExponent gives every new generator the exponent e, a decimal
// integer in the coefficient ring. "0" (the default) means torsion-free.
func WithDefaultExponent(e string) Option {
	return func(o *options) {
		o.defaultExponent = e
	}
}

// WithQueueFactor tunes how many relation rows are queued before the
// relation matrix is reduced.
func WithQueueFactor(f int) Option {
	return func(o *options) {
		o.queueFactor = f
	}
}

// WithRunID sets the run ID used for logging and checkpoint names.
// By default a random UUID is generated.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

// WithCheckpointer writes a snapshot after every class.
//
// Example with a local directory:
//
//	cp := checkpoint.New(blobstore.NewLocalStore("./checkpoints"))
//	res, _ := nilq.Quotient(ctx, ring.Int64{}, fp, nilq.WithCheckpointer(cp))
func WithCheckpointer(s *checkpoint.Store) Option {
	return func(o *options) {
		o.checkpoints = s
	}
}

// WithResume continues run id from its latest checkpoint. A run without
// checkpoints starts from class 0 under that id. Requires WithCheckpointer.
func WithResume(id string) Option {
	return func(o *options) {
		o.runID = id
		o.resume = true
	}
}

// WithResourceController shares run slots, the arena memory budget and the
// progress log rate between concurrent runs.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &nilq.BasicMetricsCollector{}
//	res, _ := nilq.Run(ctx, "free.nq", src, nilq.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("classes: %d, avg: %dns\n", stats.Classes, stats.ClassAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		ring:             "integer",
		signature:        pc.LieRing,
		defaultExponent:  "0",
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
