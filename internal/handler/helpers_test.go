package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/handler"
	"github.com/pkordes/wayfarer/internal/middleware"
)

var (
	testSecret        = []byte("handler-test-secret")
	testWebhookSecret = "whsec_handler_test"
)

// newHTTPHandler wires a Server with the given mocks behind the real auth
// middleware, the same way main.go wires it in production.
func newHTTPHandler(svc handler.Services) http.Handler {
	return handler.NewServer(svc, nil).Routes(
		middleware.NewAuthHandler(testSecret),
		middleware.NewWebhookSecretHandler([]byte(testWebhookSecret)),
	)
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do sends a request as userID (anonymous when uuid.Nil) and returns the recorder.
func do(t *testing.T, h http.Handler, userID uuid.UUID, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != uuid.Nil {
		token, err := middleware.NewToken(testSecret, userID, time.Now(), time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rec).Error.Code
}
