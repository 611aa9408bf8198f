package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trustmatrix/internal/activity/models"
	"trustmatrix/internal/geo"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
	"trustmatrix/pkg/platform/httputil"
	"trustmatrix/pkg/requestcontext"
)

// Service records facilities and member activity.
type Service interface {
	RegisterFacility(ctx context.Context, name string, location geo.Coordinate, radiusMeters float64) (*models.Facility, error)
	CheckIn(ctx context.Context, userID id.UserID, facilityID id.FacilityID, location geo.Coordinate) (*models.CheckInResult, error)
	RecordDonation(ctx context.Context, userID id.UserID, amountCents int64, status models.DonationStatus) (*models.Donation, error)
	RecordContribution(ctx context.Context, userID id.UserID, facilityID id.FacilityID, quantity int) (*models.NeedContribution, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the activity routes. Records are always written for the
// authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/facilities", h.HandleRegisterFacility)
	r.Post("/check-ins", h.HandleCheckIn)
	r.Post("/donations", h.HandleDonation)
	r.Post("/contributions", h.HandleContribution)
}

type facilityRequest struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
}

type facilityResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
}

type checkInRequest struct {
	FacilityID string  `json:"facility_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

type upgradeResponse struct {
	Upgraded     bool   `json:"upgraded"`
	PreviousTier int    `json:"previous_tier"`
	NewTier      int    `json:"new_tier"`
	Message      string `json:"message"`
}

type checkInResponse struct {
	ID             string           `json:"id"`
	FacilityID     string           `json:"facility_id"`
	Verified       bool             `json:"verified"`
	DistanceMeters float64          `json:"distance_meters"`
	CheckedInAt    time.Time        `json:"checked_in_at"`
	Upgrade        *upgradeResponse `json:"upgrade,omitempty"`
}

type donationRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

type donationResponse struct {
	ID          string    `json:"id"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type contributionRequest struct {
	FacilityID string `json:"facility_id"`
	Quantity   int    `json:"quantity"`
}

type contributionResponse struct {
	ID         string    `json:"id"`
	FacilityID string    `json:"facility_id"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	h.logger.WarnContext(ctx, op+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) HandleRegisterFacility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	req, ok := httputil.DecodeJSON[facilityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	location := geo.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
	f, err := h.service.RegisterFacility(ctx, req.Name, location, req.RadiusMeters)
	if err != nil {
		h.fail(ctx, w, "register facility", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, facilityResponse{
		ID:           f.ID.String(),
		Name:         f.Name,
		Latitude:     f.Location.Latitude,
		Longitude:    f.Location.Longitude,
		RadiusMeters: f.RadiusMeters,
	})
}

func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[checkInRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	facilityID, err := id.ParseFacilityID(req.FacilityID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "facility_id must be a valid uuid"))
		return
	}
	result, err := h.service.CheckIn(ctx, userID, facilityID, geo.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude})
	if err != nil {
		h.fail(ctx, w, "check-in", err)
		return
	}
	resp := checkInResponse{
		ID:             result.CheckIn.ID.String(),
		FacilityID:     result.CheckIn.FacilityID.String(),
		Verified:       result.CheckIn.Verified,
		DistanceMeters: result.CheckIn.DistanceMeters,
		CheckedInAt:    result.CheckIn.CheckedInAt,
	}
	if u := result.Upgrade; u != nil {
		resp.Upgrade = &upgradeResponse{
			Upgraded:     u.Upgraded,
			PreviousTier: u.PreviousTier,
			NewTier:      u.NewTier,
			Message:      u.Message,
		}
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) HandleDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[donationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	d, err := h.service.RecordDonation(ctx, userID, req.AmountCents, models.DonationStatus(req.Status))
	if err != nil {
		h.fail(ctx, w, "donation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, donationResponse{
		ID:          d.ID.String(),
		AmountCents: d.AmountCents,
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt,
	})
}

func (h *Handler) HandleContribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[contributionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	facilityID, err := id.ParseFacilityID(req.FacilityID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "facility_id must be a valid uuid"))
		return
	}
	c, err := h.service.RecordContribution(ctx, userID, facilityID, req.Quantity)
	if err != nil {
		h.fail(ctx, w, "contribution", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, contributionResponse{
		ID:         c.ID.String(),
		FacilityID: c.FacilityID.String(),
		Quantity:   c.Quantity,
		CreatedAt:  c.CreatedAt,
	})
}
