package obs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerWritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "debug")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	handler := RequestLogger{Logger: logger}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("{}"))
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
	req = req.WithContext(WithRoutePattern(req.Context(), "/api/v1/quotes"))
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "http_request", entry["message"])
	require.Equal(t, "/api/v1/quotes", entry["route"])
	require.Equal(t, float64(http.StatusCreated), entry["status"])
	require.Equal(t, "10.0.0.7", entry["client_ip"])
	require.Equal(t, float64(2), entry["bytes"])
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "verbose")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	logger.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
	logger.Info().Msg("shown")
	require.Contains(t, buf.String(), "shown")
}
