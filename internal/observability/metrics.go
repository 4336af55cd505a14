package observability

import (
	"bytes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Call outcomes.
const (
	OutcomeOk    = "ok"
	OutcomeError = "error"
)

// Map labels.
const (
	MapSpot   = "spot"
	MapPerp   = "perp"
	MapOracle = "oracle"
)

// Metrics holds the bridge's Prometheus collectors.
type Metrics struct {
	Calls           *prometheus.CounterVec
	CallErrors      *prometheus.CounterVec
	CallDuration    *prometheus.HistogramVec
	MapEntries      *prometheus.HistogramVec
	MapLoadFailures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	callBuckets := []float64{
		0.000001, 0.000005, 0.00001, 0.000025, 0.00005,
		0.0001, 0.00025, 0.0005, 0.001, 0.005, 0.01,
	}

	return &Metrics{
		Calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "perpffi_calls_total",
			Help: "Exported operations invoked, by outcome",
		}, []string{"op", "outcome"}),

		CallErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "perpffi_call_errors_total",
			Help: "Exported operations that returned an error code",
		}, []string{"op", "code"}),

		CallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "perpffi_call_duration_seconds",
			Help:    "Time spent inside an exported operation",
			Buckets: callBuckets,
		}, []string{"op"}),

		MapEntries: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "perpffi_map_entries",
			Help:    "Accounts per market/oracle map built for a call",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
		}, []string{"map"}),

		MapLoadFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "perpffi_map_load_failures_total",
			Help: "Market/oracle maps that failed to load",
		}, []string{"map"}),
	}
}

// MetricsText renders every metric family in g in the text exposition format.
func MetricsText(g prometheus.Gatherer) ([]byte, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
