package httprequest

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestNewAction_Defaults(t *testing.T) {
	action, err := NewAction(map[string]any{"url": "https://api.example.com/data"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, action.Method)
	assert.Equal(t, 30*time.Second, action.Timeout)
	assert.Equal(t, 1, action.Retry.Attempts)
}

func TestNewAction_RequiresURL(t *testing.T) {
	_, err := NewAction(map[string]any{"method": "POST"})
	assert.Error(t, err)
}

func TestAction_Execute_JSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"rec-1"}`))
	}))
	defer server.Close()

	action, err := NewAction(map[string]any{
		"url":     server.URL,
		"method":  "POST",
		"headers": map[string]any{"Content-Type": "application/json"},
		"body":    `{"name":"test"}`,
	})
	require.NoError(t, err)

	output, err := action.Execute(context.Background(), nil, testLogger())
	require.NoError(t, err)

	result, ok := output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, http.StatusCreated, result["status_code"])
	assert.Equal(t, map[string]any{"id": "rec-1"}, result["body"])
}

func TestAction_Execute_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}))
	defer server.Close()

	action, err := NewAction(map[string]any{"url": server.URL})
	require.NoError(t, err)

	output, err := action.Execute(context.Background(), nil, testLogger())
	require.NoError(t, err)

	result := output.(map[string]any)
	assert.Equal(t, "pong", result["body"])
}

func TestAction_Execute_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	action, err := NewAction(map[string]any{
		"url":   server.URL,
		"retry": map[string]any{"attempts": float64(3), "delay": float64(1)},
	})
	require.NoError(t, err)

	output, err := action.Execute(context.Background(), nil, testLogger())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())

	result := output.(map[string]any)
	assert.Equal(t, http.StatusOK, result["status_code"])
}

func TestAction_Execute_FailsAfterExhaustedRetries(t *testing.T) {
	action, err := NewAction(map[string]any{
		"url":   "http://127.0.0.1:1", // nothing listens here
		"retry": map[string]any{"attempts": float64(2), "delay": float64(1)},
	})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), nil, testLogger())
	assert.Error(t, err)
}
