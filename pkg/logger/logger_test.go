package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvasgrab/pkg/config"
)

func TestNew(t *testing.T) {
	l, err := New(&config.LoggingConfig{Level: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "shouting"})
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "error", "disabled", "INFO"} {
		_, err := parseLogLevel(level)
		assert.NoError(t, err, "level %q should parse", level)
	}

	_, err := parseLogLevel("verbose")
	assert.Error(t, err)
}

func TestTestLoggerCapture(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("starting")
	tl.WithField("course", "CS101").Error("listing failed")
	tl.WarnWithFields("skipping item", map[string]interface{}{"reason": "no url"})

	assert.True(t, tl.HasMessage("starting"))
	assert.True(t, tl.HasError())

	errs := tl.MessagesByLevel("ERROR")
	require.Len(t, errs, 1)
	assert.Equal(t, "CS101", errs[0].Fields["course"])

	warns := tl.MessagesByLevel("WARN")
	require.Len(t, warns, 1)
	assert.Equal(t, "no url", warns[0].Fields["reason"])
}

func TestTestLoggerDerivedFieldsMerge(t *testing.T) {
	tl := NewTestLogger()

	derived := tl.WithField("course", "CS101").WithField("module", "Week 1")
	derived.InfoWithFields("item done", map[string]interface{}{"item": 3})

	msgs := tl.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "CS101", msgs[0].Fields["course"])
	assert.Equal(t, "Week 1", msgs[0].Fields["module"])
	assert.Equal(t, 3, msgs[0].Fields["item"])
}
