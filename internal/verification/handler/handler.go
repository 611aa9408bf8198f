package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trustmatrix/internal/geo"
	"trustmatrix/internal/verification/models"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
	"trustmatrix/pkg/platform/httputil"
	"trustmatrix/pkg/requestcontext"
)

// Service is the verification surface exposed over HTTP.
type Service interface {
	Enroll(ctx context.Context, userID id.UserID) (*models.User, error)
	Status(ctx context.Context, userID id.UserID) (*models.Status, error)
	CheckEligibility(ctx context.Context, userID id.UserID, target int) (*models.Eligibility, error)
	AutoCheckAndUpgrade(ctx context.Context, userID id.UserID) (*models.UpgradeResult, error)
	AttestNeighborhood(ctx context.Context, userID, attesterID id.UserID, location models.HomeLocationInput) (*models.User, error)
	GrantOfficialID(ctx context.Context, userID, attesterID id.UserID, details models.IDDetails) (*models.User, error)
	Heatmap(coords []geo.Coordinate) ([]geo.Cluster, error)
	CommunityHeatmap(ctx context.Context) ([]geo.Cluster, error)
	SetLocationSharing(ctx context.Context, userID id.UserID, enabled bool) (*models.User, error)
}

// Handler serves the /verification routes. Every route acts on behalf of
// the authenticated caller; attestations name the subject in the body and
// the caller is the attester.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the routes on r. Authentication middleware is applied by
// the caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/verification", func(r chi.Router) {
		r.Get("/", h.HandleStatus)
		r.Post("/enroll", h.HandleEnroll)
		r.Get("/eligibility/{tier}", h.HandleEligibility)
		r.Post("/upgrade", h.HandleUpgrade)
		r.Post("/attestations/neighborhood", h.HandleAttestNeighborhood)
		r.Post("/attestations/official-id", h.HandleGrantOfficialID)
		r.Post("/heatmap", h.HandleHeatmap)
		r.Get("/heatmap/community", h.HandleCommunityHeatmap)
		r.Put("/privacy", h.HandleSetPrivacy)
	})
}

// caller returns the authenticated user, writing a 401 when absent.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		h.logger.ErrorContext(ctx, "user id missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeInvariantViolation, dErrors.CodeTransient, dErrors.CodeTimeout:
		h.logger.ErrorContext(ctx, op+" failed", attrs...)
	default:
		h.logger.WarnContext(ctx, op+" rejected", attrs...)
	}
	httputil.WriteError(w, err)
}

func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	user, err := h.service.Enroll(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "enroll", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	status, err := h.service.Status(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "status", err)
		return
	}
	resp := statusResponse{User: toUserResponse(status.User)}
	if status.Next != nil {
		resp.Next = toEligibilityResponse(status.Next)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	target, err := strconv.Atoi(chi.URLParam(r, "tier"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "tier must be an integer"))
		return
	}
	result, err := h.service.CheckEligibility(ctx, userID, target)
	if err != nil {
		h.fail(ctx, w, "eligibility check", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEligibilityResponse(result))
}

func (h *Handler) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	result, err := h.service.AutoCheckAndUpgrade(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "upgrade", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUpgradeResponse(result))
}

func (h *Handler) HandleAttestNeighborhood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attesterID, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[neighborhoodAttestationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	userID, location, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.service.AttestNeighborhood(ctx, userID, attesterID, location)
	if err != nil {
		h.fail(ctx, w, "neighborhood attestation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) HandleGrantOfficialID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attesterID, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[officialIDRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	userID, details, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.service.GrantOfficialID(ctx, userID, attesterID, details)
	if err != nil {
		h.fail(ctx, w, "official id grant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	req, ok := httputil.DecodeJSON[heatmapRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	clusters, err := h.service.Heatmap(req.Coordinates)
	if err != nil {
		h.fail(ctx, w, "heatmap", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, heatmapResponse{Clusters: nonNil(clusters)})
}

func (h *Handler) HandleCommunityHeatmap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	clusters, err := h.service.CommunityHeatmap(ctx)
	if err != nil {
		h.fail(ctx, w, "community heatmap", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, heatmapResponse{Clusters: nonNil(clusters)})
}

func (h *Handler) HandleSetPrivacy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[privacyRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if req.LocationSharing == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "location_sharing is required"))
		return
	}
	user, err := h.service.SetLocationSharing(ctx, userID, *req.LocationSharing)
	if err != nil {
		h.fail(ctx, w, "privacy update", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func nonNil(clusters []geo.Cluster) []geo.Cluster {
	if clusters == nil {
		return []geo.Cluster{}
	}
	return clusters
}
