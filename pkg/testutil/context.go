package testutil

import (
	"net/http"

	id "trustmatrix/pkg/domain"
	"trustmatrix/pkg/requestcontext"
)

// WithUserID authenticates req as userID, the way RequireAuth does.
func WithUserID(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}
