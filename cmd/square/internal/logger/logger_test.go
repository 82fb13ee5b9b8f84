package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutputLevels(t *testing.T) {
	defer SetOutput(os.Stderr, false)

	var buf bytes.Buffer
	SetOutput(&buf, false)
	Debug("request", "line", "7")
	Info("Client connected")
	assert.NotContains(t, buf.String(), "request")
	assert.Contains(t, buf.String(), "Client connected")

	buf.Reset()
	SetOutput(&buf, true)
	Debug("request", "line", "7")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "line=7")
}

func TestWithAddsAttributes(t *testing.T) {
	defer SetOutput(os.Stderr, false)

	var buf bytes.Buffer
	SetOutput(&buf, false)
	With("conn_id", "abc").Warn("Connection failed")
	assert.Contains(t, buf.String(), "conn_id=abc")
	assert.Contains(t, buf.String(), "level=WARN")
}
