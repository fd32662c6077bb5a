package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/nilq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.RecordClass(nilq.ClassStats{Class: 2, NewGens: 3, Eliminated: 1, Torsion: 2, Rows: 4, TotalGens: 5, Elapsed: time.Millisecond})
	c.RecordClass(nilq.ClassStats{Class: 1, NewGens: 2, TotalGens: 2})
	c.RecordRun(2, time.Second, nil)
	c.RecordRun(1, time.Second, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.classes))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.generators))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.eliminated))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.torsion))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.maxClass))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.totalGens))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("error")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.runs))
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	var are prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &are)
}

func TestCollector_Run(t *testing.T) {
	c, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	_, err = nilq.Run(context.Background(), "", []byte("< a, b | >"),
		nilq.WithRing("int64"), nilq.WithMaxClass(3), nilq.WithMetricsCollector(c))
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.classes))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.generators))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.maxClass))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("success")))
}
