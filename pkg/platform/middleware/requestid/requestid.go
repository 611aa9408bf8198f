package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"trustmatrix/pkg/requestcontext"
)

// Header carries the request ID in both directions.
const Header = "X-Request-ID"

// maxLen bounds a client supplied ID before it reaches the logs.
const maxLen = 128

// Middleware reuses a client supplied X-Request-ID or generates one, stores
// it in the context and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" || len(requestID) > maxLen {
			requestID = uuid.NewString()
		}
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), requestID)))
	})
}
