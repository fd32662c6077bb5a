// Package prom exports run and class metrics to Prometheus.
package prom

import (
	"sync"
	"time"

	"github.com/hupe1980/nilq"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements nilq.MetricsCollector with Prometheus metrics.
type Collector struct {
	classes     prometheus.Counter
	generators  prometheus.Counter
	eliminated  prometheus.Counter
	torsion     prometheus.Counter
	rows        prometheus.Counter
	maxClass    prometheus.Gauge
	totalGens   prometheus.Gauge
	classTime   prometheus.Histogram
	classCPU    prometheus.Histogram
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec

	mu  sync.Mutex
	max int
}

var _ nilq.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		classes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nilq_classes_total",
			Help: "Classes completed",
		}),
		generators: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nilq_generators_total",
			Help: "Polycyclic generators introduced",
		}),
		eliminated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nilq_tails_eliminated_total",
			Help: "Tails eliminated by the relation matrix",
		}),
		torsion: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nilq_torsion_generators_total",
			Help: "New generators with a finite exponent",
		}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nilq_matrix_rows_total",
			Help: "Rows of the reduced relation matrices",
		}),
		maxClass: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nilq_max_class",
			Help: "Highest class completed",
		}),
		totalGens: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nilq_presentation_generators",
			Help: "Generators of the last completed class",
		}),
		classTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nilq_class_duration_seconds",
			Help:    "Wall time per class",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		classCPU: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nilq_class_cpu_seconds",
			Help:    "CPU time per class",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nilq_runs_total",
			Help: "Finished runs",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nilq_run_duration_seconds",
			Help:    "Wall time per run",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
	}

	for _, m := range []prometheus.Collector{
		c.classes, c.generators, c.eliminated, c.torsion, c.rows,
		c.maxClass, c.totalGens, c.classTime, c.classCPU, c.runs, c.runDuration,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordClass implements nilq.MetricsCollector.
func (c *Collector) RecordClass(s nilq.ClassStats) {
	c.classes.Inc()
	c.generators.Add(float64(s.NewGens))
	c.eliminated.Add(float64(s.Eliminated))
	c.torsion.Add(float64(s.Torsion))
	c.rows.Add(float64(s.Rows))
	c.totalGens.Set(float64(s.TotalGens))
	c.classTime.Observe(s.Elapsed.Seconds())
	c.classCPU.Observe(s.CPU.Seconds())

	// Concurrent runs only ever raise the gauge.
	c.mu.Lock()
	if s.Class > c.max {
		c.max = s.Class
		c.maxClass.Set(float64(s.Class))
	}
	c.mu.Unlock()
}

// RecordRun implements nilq.MetricsCollector.
func (c *Collector) RecordRun(_ int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.runs.WithLabelValues(status).Inc()
	c.runDuration.WithLabelValues(status).Observe(d.Seconds())
}
