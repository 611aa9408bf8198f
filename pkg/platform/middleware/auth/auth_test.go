package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
	"trustmatrix/pkg/requestcontext"
)

func TestJWTService(t *testing.T) {
	svc := NewJWTService("test-signing-key", "trustmatrix", "trustmatrix-api")
	userID := id.UserID(uuid.New())
	now := time.Now()

	t.Run("round trips the subject", func(t *testing.T) {
		token, err := svc.IssueToken(userID, now, time.Hour)
		require.NoError(t, err)

		got, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token, err := svc.IssueToken(userID, now.Add(-2*time.Hour), time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		other := NewJWTService("other-key", "trustmatrix", "trustmatrix-api")
		token, err := other.IssueToken(userID, now, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects a token for another audience", func(t *testing.T) {
		other := NewJWTService("test-signing-key", "trustmatrix", "someone-else")
		token, err := other.IssueToken(userID, now, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-jwt")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestRequireAuth(t *testing.T) {
	svc := NewJWTService("test-signing-key", "trustmatrix", "trustmatrix-api")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userID := id.UserID(uuid.New())

	var seen id.UserID
	handler := RequireAuth(svc, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "unauthorized")
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token sets user", func(t *testing.T) {
		token, err := svc.IssueToken(userID, time.Now(), time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, userID, seen)
	})
}
