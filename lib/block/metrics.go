package block

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jelilat/hellonear/lib/block/types"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Instrumented wraps a Contract recording the number and latency of calls per method and outcome.
type Instrumented struct {
	Contract

	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// Instrument returns c wrapped with Prometheus metrics registered in reg. Registering twice in the same registry
// reuses the collectors already registered.
func Instrument(c Contract, reg prometheus.Registerer) *Instrumented {
	i := &Instrumented{
		Contract: c,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hellonear",
			Subsystem: "contract",
			Name:      "calls_total",
			Help:      "Number of contract calls by method and outcome.",
		}, []string{"method", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hellonear",
			Subsystem: "contract",
			Name:      "call_duration_seconds",
			Help:      "Latency of contract calls by method.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),
	}

	if reg != nil {
		var are prometheus.AlreadyRegisteredError

		if err := reg.Register(i.calls); errors.As(err, &are) {
			i.calls = are.ExistingCollector.(*prometheus.CounterVec)
		}

		if err := reg.Register(i.latency); errors.As(err, &are) {
			i.latency = are.ExistingCollector.(*prometheus.HistogramVec)
		}
	}

	return i
}

// Calls returns the counter of calls for method and outcome.
func (i *Instrumented) Calls(method, outcome string) prometheus.Counter {
	return i.calls.WithLabelValues(method, outcome)
}

func (i *Instrumented) observe(method string, start time.Time, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}

	i.calls.WithLabelValues(method, outcome).Inc()
	i.latency.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// GetName calls the wrapped contract recording the call.
func (i *Instrumented) GetName(ctx context.Context, q types.NameQuery) (name string, err error) {
	start := time.Now()
	defer func() { i.observe(types.MethodGetName, start, err) }()

	name, err = i.Contract.GetName(ctx, q)

	return
}

// SetName calls the wrapped contract recording the call.
func (i *Instrumented) SetName(ctx context.Context, s types.Signer, p types.SetNamePayload) (o types.Outcome,
	err error) {
	start := time.Now()
	defer func() { i.observe(types.MethodSetName, start, err) }()

	o, err = i.Contract.SetName(ctx, s, p)

	return
}
