package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var rec map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	return rec
}

func TestContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "info", "json")
	t.Cleanup(func() { Initialize("info", "text") })

	ctx := WithRequestID(context.Background(), "req-123")
	InfoContext(ctx, "request handled", "status", 200)

	rec := decodeLine(t, &buf)
	assert.Equal(t, "request handled", rec["msg"])
	assert.Equal(t, "req-123", rec["request_id"])
	assert.Equal(t, float64(200), rec["status"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "warn", "json")
	t.Cleanup(func() { Initialize("info", "text") })

	DatabaseCall("SELECT", "cars.GetByID")
	assert.Empty(t, buf.String())

	DatabaseResult("SELECT", 0, errors.New("boom"), "car_id", 5)
	rec := decodeLine(t, &buf)
	assert.Equal(t, "db call failed", rec["msg"])
	assert.Equal(t, "boom", rec["error"])
	assert.Equal(t, float64(5), rec["car_id"])
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	assert.Equal(t, "abc", RequestIDFromContext(WithRequestID(context.Background(), "abc")))
}
