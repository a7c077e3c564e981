package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteAppErrorUsesCodeAndStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	err := NewAppError("RATE_LIMITED", "slow down", http.StatusTooManyRequests, errors.New("limit"))
	WriteAppError(rr, err)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "RATE_LIMITED", body.Error.Code)
	require.Equal(t, "slow down", body.Error.Message)
	require.True(t, IsAppError(err))
	require.Equal(t, "limit", err.Error())
}

func TestWriteAppErrorFallsBackToInternal(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteAppError(rr, errors.New("plain"))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "INTERNAL")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	require.Equal(t, "192.0.2.10", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	require.Equal(t, "198.51.100.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	require.Equal(t, "203.0.113.5", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "unknown, [2001:db8::1]:443")
	require.Equal(t, "2001:db8::1", ClientIP(req))
	require.Empty(t, ClientIP(nil))
}

func TestSha256Hex(t *testing.T) {
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sha256Hex(nil))
}

func TestJSONData(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONData(rr, http.StatusOK, []string{"coto"})
	require.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	require.JSONEq(t, `{"data":["coto"]}`, rr.Body.String())
}
