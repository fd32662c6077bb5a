package main

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/hupe1980/nilq"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nilq",
		Short:         "Nilpotent quotients of finitely presented Lie rings and groups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newBatchCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			v := version
			if info, ok := debug.ReadBuildInfo(); ok && v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
				v = info.Main.Version
			}
			fmt.Fprintf(cmd.OutOrStdout(), "nilq %s\n", v)
		},
	}
}

// flags holds the values of the flags shared by run and batch.
type flags struct {
	config string
	cfg    Config
}

func (f *flags) register(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.StringVarP(&f.config, "config", "c", "", "YAML configuration file")
	fs.StringVar(&f.cfg.Signature, "signature", d.Signature, "input signature: lie or group")
	fs.StringVarP(&f.cfg.Ring, "ring", "r", d.Ring, "coefficient ring: int64, integer, mod2k:<k> or modpk:<p>:<k>")
	fs.IntVarP(&f.cfg.MaxClass, "class", "n", 0, "stop after this class (0 runs until the quotient stabilizes)")
	fs.BoolVar(&f.cfg.Graded, "graded", false, "compute the graded Lie ring")
	fs.StringVar(&f.cfg.DefaultExponent, "exponent", d.DefaultExponent, "exponent of new generators (0 is torsion-free)")
	fs.IntVar(&f.cfg.QueueFactor, "queue-factor", 0, "relation rows queued per reduction")
	fs.StringVarP(&f.cfg.Format, "format", "f", d.Format, "output format: plain, gap or json")
	fs.StringVarP(&f.cfg.Output, "output", "o", "", "output file (run) or directory (batch)")
	fs.StringVar(&f.cfg.LogLevel, "log-level", d.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&f.cfg.LogFormat, "log-format", d.LogFormat, "log format: text or json")
	fs.StringVar(&f.cfg.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	fs.Int64Var(&f.cfg.MemoryLimit, "memory-limit", 0, "scratch memory budget in bytes")
	fs.StringVar(&f.cfg.Checkpoint.Store, "checkpoint-store", "", "checkpoint store: local, s3 or minio")
	fs.StringVar(&f.cfg.Checkpoint.Dir, "checkpoint-dir", "", "directory of the local checkpoint store")
	fs.StringVar(&f.cfg.Checkpoint.Bucket, "checkpoint-bucket", "", "bucket of the s3 or minio checkpoint store")
	fs.StringVar(&f.cfg.Checkpoint.Prefix, "checkpoint-prefix", "", "key prefix in the checkpoint bucket")
	fs.StringVar(&f.cfg.Checkpoint.Table, "checkpoint-table", "", "DynamoDB table recording the latest s3 checkpoint")
	fs.StringVar(&f.cfg.Checkpoint.Endpoint, "checkpoint-endpoint", "", "minio endpoint")
	fs.StringVar(&f.cfg.Checkpoint.Compression, "checkpoint-compression", d.Checkpoint.Compression, "checkpoint compression: none, lz4 or zstd")
	fs.IntVar(&f.cfg.Checkpoint.Keep, "checkpoint-keep", 0, "snapshots kept per run (0 keeps all)")
}

// load returns the file configuration overridden by every flag set on the
// command line.
func (f *flags) load(fs *pflag.FlagSet) (Config, error) {
	cfg := DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = LoadConfig(f.config); err != nil {
			return cfg, err
		}
	}
	overrides := map[string]func(){
		"signature":              func() { cfg.Signature = f.cfg.Signature },
		"ring":                   func() { cfg.Ring = f.cfg.Ring },
		"class":                  func() { cfg.MaxClass = f.cfg.MaxClass },
		"graded":                 func() { cfg.Graded = f.cfg.Graded },
		"exponent":               func() { cfg.DefaultExponent = f.cfg.DefaultExponent },
		"queue-factor":           func() { cfg.QueueFactor = f.cfg.QueueFactor },
		"format":                 func() { cfg.Format = f.cfg.Format },
		"output":                 func() { cfg.Output = f.cfg.Output },
		"log-level":              func() { cfg.LogLevel = f.cfg.LogLevel },
		"log-format":             func() { cfg.LogFormat = f.cfg.LogFormat },
		"metrics-file":           func() { cfg.MetricsFile = f.cfg.MetricsFile },
		"memory-limit":           func() { cfg.MemoryLimit = f.cfg.MemoryLimit },
		"checkpoint-store":       func() { cfg.Checkpoint.Store = f.cfg.Checkpoint.Store },
		"checkpoint-dir":         func() { cfg.Checkpoint.Dir = f.cfg.Checkpoint.Dir },
		"checkpoint-bucket":      func() { cfg.Checkpoint.Bucket = f.cfg.Checkpoint.Bucket },
		"checkpoint-prefix":      func() { cfg.Checkpoint.Prefix = f.cfg.Checkpoint.Prefix },
		"checkpoint-table":       func() { cfg.Checkpoint.Table = f.cfg.Checkpoint.Table },
		"checkpoint-endpoint":    func() { cfg.Checkpoint.Endpoint = f.cfg.Checkpoint.Endpoint },
		"checkpoint-compression": func() { cfg.Checkpoint.Compression = f.cfg.Checkpoint.Compression },
		"checkpoint-keep":        func() { cfg.Checkpoint.Keep = f.cfg.Checkpoint.Keep },
		"concurrency":            func() { cfg.Concurrency = f.cfg.Concurrency },
		"resume":                 func() { cfg.Checkpoint.Resume = f.cfg.Checkpoint.Resume },
	}
	fs.Visit(func(fl *pflag.Flag) {
		if set, ok := overrides[fl.Name]; ok {
			set()
		}
	})
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %w", nilq.ErrInput, err)
	}
	return cfg, nil
}

func newLogger(cfg Config, cmd *cobra.Command) *nilq.Logger {
	opts := &slog.HandlerOptions{Level: cfg.level()}
	if cfg.LogFormat == "json" {
		return nilq.NewLogger(slog.NewJSONHandler(cmd.ErrOrStderr(), opts))
	}
	return nilq.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
}
