package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerWithOutput_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.WithComponent("ledger").Warn().Str("k", "v").Msg("shown")
	out := buf.String()
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"component":"ledger"`)
	assert.Contains(t, out, `"k":"v"`)
}
