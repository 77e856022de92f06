package metrics

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheus(WithRegistry(reg), WithNamespace("test"))

	rec.BindingCreated("text")
	rec.BindingCreated("text")
	rec.BindingCreated("model")
	rec.BindingUpdated("model")
	rec.EventHandled("click", 5*time.Millisecond, nil)
	rec.EventHandled("click", time.Millisecond, fmt.Errorf("boom"))
	rec.SessionOpened()
	rec.SessionOpened()
	rec.SessionClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.bindings.WithLabelValues("text")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.bindings.WithLabelValues("model")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.bindingUpdates.WithLabelValues("model")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.events.WithLabelValues("click", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.events.WithLabelValues("click", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.sessions))

	count, err := testutil.GatherAndCount(reg, "test_event_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expected := `
# HELP test_sessions_active Number of connected live host sessions
# TYPE test_sessions_active gauge
test_sessions_active 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_sessions_active"))
}

func TestPrometheusConstLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheus(
		WithRegistry(reg),
		WithSubsystem("ui"),
		WithConstLabels(prometheus.Labels{"app": "demo"}),
		WithBuckets([]float64{0.1, 1}),
	)
	rec.BindingCreated("html")

	expected := `
# HELP vbind_ui_bindings_total Total number of bindings created by the template compiler
# TYPE vbind_ui_bindings_total counter
vbind_ui_bindings_total{app="demo",directive="html"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "vbind_ui_bindings_total"))
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NotPanics(t, func() {
		r.BindingCreated("text")
		r.BindingUpdated("text")
		r.EventHandled("click", 0, nil)
		r.SessionOpened()
		r.SessionClosed()
	})

	assert.Equal(t, Nop{}, OrNop(nil))
	p := NewPrometheus(WithRegistry(prometheus.NewRegistry()))
	assert.Same(t, p, OrNop(p))
}
