package ratelimit

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "trustmatrix/pkg/domain"
	"trustmatrix/pkg/requestcontext"
)

func TestLimiter(t *testing.T) {
	l, stop := New(1, 2)
	defer stop()

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "burst exhausted")
	assert.True(t, l.Allow("b"), "keys have independent buckets")
}

func TestUserOrIPKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:54321"
	assert.Equal(t, "ip:10.0.0.7", UserOrIPKey(req))

	userID := id.UserID(uuid.New())
	req = req.WithContext(requestcontext.WithUserID(req.Context(), userID))
	assert.Equal(t, "user:"+userID.String(), UserOrIPKey(req))
}

func TestMiddleware(t *testing.T) {
	l, stop := New(1, 1)
	defer stop()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := Middleware(l, UserOrIPKey, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}
