package logger

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestWithContextIncludesRequestID(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	ctx := WithRequestID(context.Background(), "abc-123")
	ErrorWithContext(ctx, "vote failed for %s", "post-1")

	line := buf.String()
	assert.Contains(t, line, "[ERROR]")
	assert.Contains(t, line, "[req_id=abc-123] vote failed for post-1")
}

func TestRequestIDMissing(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
	assert.Equal(t, "", RequestID(nil))
}

func TestInfoWithoutRequestID(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Info("listening on %d", 8080)
	assert.Contains(t, buf.String(), "[INFO]")
	assert.Contains(t, buf.String(), "listening on 8080")
	assert.NotContains(t, buf.String(), "req_id")
}
