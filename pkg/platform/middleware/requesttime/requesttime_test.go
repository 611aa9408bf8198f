package requesttime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trustmatrix/pkg/requestcontext"
)

func TestMiddleware(t *testing.T) {
	var seen time.Time
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Now(r.Context())
	}))

	before := time.Now().UTC()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	after := time.Now().UTC()

	assert.False(t, seen.Before(before))
	assert.False(t, seen.After(after))
	assert.Equal(t, time.UTC, seen.Location())
}
