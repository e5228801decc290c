package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, level LogLevel) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	info, errs := &bytes.Buffer{}, &bytes.Buffer{}
	SetOutput(info, errs, false)
	SetLevel(level)
	t.Cleanup(func() {
		defaultLogger = NewLogger(INFO)
	})
	return info, errs
}

func TestLevelsRouteToWriters(t *testing.T) {
	info, errs := capture(t, INFO)

	Debug("hidden")
	Info("loaded rows", 42)
	Warn("odd row", "Arsenal")
	Error("failed", errors.New("boom"))

	assert.NotContains(t, info.String(), "hidden")
	assert.Contains(t, info.String(), "[INFO] logger_test.go:")
	assert.Contains(t, info.String(), "loaded rows 42")
	assert.Contains(t, info.String(), "[WARN]")
	assert.Contains(t, errs.String(), "[ERROR]")
	assert.Contains(t, errs.String(), "failed boom")
}

func TestNonPrimitiveArgsRenderAsJSON(t *testing.T) {
	info, _ := capture(t, DEBUG)

	Debug("table", map[string]int{"WWD": 3})

	out := info.String()
	assert.Contains(t, out, "[Object of type map[string]int]")
	assert.Contains(t, out, `"WWD": 3`)
	assert.Equal(t, 2, strings.Count(out, "[DEBUG]"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" Warning "))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
	assert.Equal(t, "HIGHLIGHT", HIGHLIGHT.String())
}
