package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("PERPFFI_LOG_LEVEL", "")
	t.Setenv("PERPFFI_METRICS", "")

	cfg := DefaultConfig()
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.MetricsEnabled)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PERPFFI_LOG_LEVEL", "debug")
	t.Setenv("PERPFFI_METRICS", "off")

	cfg := DefaultConfig()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.MetricsEnabled)
}

func TestEnvBoolOrDefault(t *testing.T) {
	tests := []struct {
		val  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"ON", false, true},
		{"0", true, false},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		t.Setenv("PERPFFI_TEST_BOOL", tt.val)
		if got := envBoolOrDefault("PERPFFI_TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("envBoolOrDefault(%q, %v) = %v, want %v", tt.val, tt.def, got, tt.want)
		}
	}
}

func TestLibraryMetricsText(t *testing.T) {
	lib := newLibrary(Config{LogLevel: "off", MetricsEnabled: true})
	lib.bridge.OrderIsLimitOrder(nil)

	text, err := lib.metricsText()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(text), `perpffi_calls_total{op="order_is_limit_order",outcome="error"} 1`))

	off := newLibrary(Config{LogLevel: "off", MetricsEnabled: false})
	text, err = off.metricsText()
	require.NoError(t, err)
	assert.Nil(t, text)
}

func TestCopyText(t *testing.T) {
	text := []byte("perpffi")

	assert.False(t, copyText(nil, text), "nil dst is a length query")
	assert.False(t, copyText(make([]byte, 3), text))

	dst := make([]byte, 16)
	require.True(t, copyText(dst, text))
	assert.Equal(t, text, dst[:len(text)])
}
