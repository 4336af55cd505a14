package main

import (
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"PerpFFI/internal/core"
	"PerpFFI/internal/observability"
)

// Config is read once from the environment when the library loads.
type Config struct {
	LogLevel       string
	MetricsEnabled bool
}

func DefaultConfig() Config {
	return Config{
		LogLevel:       envOrDefault(observability.LogLevelEnv, "warn"),
		MetricsEnabled: envBoolOrDefault("PERPFFI_METRICS", true),
	}
}

// library is the process-wide bridge and the registry behind its metrics.
type library struct {
	bridge   *core.Bridge
	registry *prometheus.Registry
	logger   zerolog.Logger
}

func newLibrary(cfg Config) *library {
	log := observability.NewLoggerWithLevel(os.Stderr, "perpffi", observability.ParseLogLevel(cfg.LogLevel))

	lib := &library{logger: log}
	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		lib.registry = prometheus.NewRegistry()
		lib.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = observability.NewMetrics(lib.registry)
	}
	lib.bridge = core.NewBridge(log, metrics)

	log.Info().
		Str("log_level", cfg.LogLevel).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("perpffi loaded")
	return lib
}

// metricsText renders the registry, or nil when metrics are off.
func (lib *library) metricsText() ([]byte, error) {
	if lib.registry == nil {
		return nil, nil
	}
	return observability.MetricsText(lib.registry)
}

// copyText writes text into dst only when dst is non-nil and large enough.
// A nil dst is a length query.
func copyText(dst, text []byte) bool {
	if dst == nil || len(text) > len(dst) {
		return false
	}
	copy(dst, text)
	return true
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envBoolOrDefault(key string, defaultVal bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "on", "true", "1", "yes":
		return true
	case "off", "false", "0", "no":
		return false
	default:
		return defaultVal
	}
}
