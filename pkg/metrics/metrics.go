package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics for a kill invocation. Registered on the default registry and
// pushed to a Pushgateway at exit, since a one-shot process is never scraped.
var (
	// DispatchTotal counts kill attempts by terminal state.
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leaderkill",
			Subsystem: "dispatch",
			Name:      "total",
			Help:      "Total number of kill dispatches by terminal state",
		},
		[]string{"state"},
	)

	// DispatchErrors counts failed dispatches by error kind.
	DispatchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leaderkill",
			Subsystem: "dispatch",
			Name:      "errors_total",
			Help:      "Total number of failed kill dispatches by error kind",
		},
		[]string{"kind"},
	)

	// ProbeTotal counts local liveness probes by outcome.
	ProbeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leaderkill",
			Subsystem: "dispatch",
			Name:      "probes_total",
			Help:      "Total number of local liveness probes by outcome",
		},
		[]string{"result"},
	)

	// StoreOpDuration tracks shared store round trips.
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leaderkill",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of shared store operations in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"backend", "op", "result"},
	)
)

// RecordDispatch records the terminal state of one dispatch.
func RecordDispatch(state, errKind string) {
	DispatchTotal.WithLabelValues(state).Inc()
	if errKind != "" {
		DispatchErrors.WithLabelValues(errKind).Inc()
	}
}

// RecordProbe records a liveness probe result.
func RecordProbe(alive bool) {
	result := "absent"
	if alive {
		result = "alive"
	}
	ProbeTotal.WithLabelValues(result).Inc()
}

// RecordStoreOp records one store operation.
func RecordStoreOp(backend, op, result string, durationSeconds float64) {
	StoreOpDuration.WithLabelValues(backend, op, result).Observe(durationSeconds)
}

// Push sends the default registry to a Pushgateway under the given job name.
func Push(ctx context.Context, gatewayURL, job string) error {
	err := push.New(gatewayURL, job).
		Gatherer(prometheus.DefaultGatherer).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
