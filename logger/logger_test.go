package logger

import (
	"bytes"
	"context"
	"os"
	c "rovify-backend/context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeString(t *testing.T) {
	assert.Equal(t, "line one\\n line two", escapeString("line %s\nline %s", "one", "two"))
	assert.Equal(t, "crlf\\n done", escapeString("crlf\r\ndone"))
}

func TestErrorfCarriesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)

	Configure("debug", "json")
	ctx := c.SetContextWithValue(context.Background(), c.ContextKeyCorrelationID, "123.456")
	ctx = c.WithUserID(ctx, "user-1")
	Errorf(ctx, "boom: %s", "db down")

	out := buf.String()
	assert.Contains(t, out, `"correlation_id":"123.456"`)
	assert.Contains(t, out, `"user_id":"user-1"`)
	assert.Contains(t, out, "boom: db down")
}
