package observability

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.WarnLevel},
		{"debug", zerolog.DebugLevel},
		{" INFO ", zerolog.InfoLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"verbose", zerolog.WarnLevel},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerWritesComponent(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithLevel(&buf, "bridge", zerolog.InfoLevel)
	log.Debug().Msg("hidden")
	log.Info().Str("op", "oracle_get_oracle_price").Msg("call")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "bridge", entry["component"])
	assert.Equal(t, "oracle_get_oracle_price", entry["op"])
	assert.Contains(t, entry, "time")
}

func TestMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Calls.WithLabelValues("op", OutcomeOk).Inc()
	m.Calls.WithLabelValues("op", OutcomeError).Inc()
	m.CallErrors.WithLabelValues("op", "MathError").Inc()
	m.MapLoadFailures.WithLabelValues(MapOracle).Inc()
	m.MapEntries.WithLabelValues(MapSpot).Observe(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("op", OutcomeOk)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallErrors.WithLabelValues("op", "MathError")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MapLoadFailures.WithLabelValues(MapOracle)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Calls))

	text, err := MetricsText(reg)
	require.NoError(t, err)
	assert.Contains(t, string(text), `perpffi_calls_total{op="op",outcome="ok"} 1`)
	assert.Contains(t, string(text), "perpffi_map_entries_bucket")
}

func TestMetricsWithoutRegistry(t *testing.T) {
	m := NewMetrics(nil)
	m.Calls.WithLabelValues("op", OutcomeOk).Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("op", OutcomeOk)))
}

func TestFixedPoint(t *testing.T) {
	assert.Equal(t, "1.5", FixedPoint(1_500_000, 6))
	assert.Equal(t, "-0.000001", FixedPoint(-1, 6))
	assert.Equal(t, "0", FixedPoint(0, 9))

	v, _ := new(big.Int).SetString("170141183460469231731687303715884105727", 10)
	assert.Equal(t, "170141183460469231731687303715.884105727", FixedPointBig(v, 9))
}
