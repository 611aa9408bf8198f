package handler

import (
	"trustmatrix/internal/geo"
	"trustmatrix/internal/verification/models"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
)

type neighborhoodAttestationRequest struct {
	UserID    string  `json:"user_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

func (r *neighborhoodAttestationRequest) parse() (id.UserID, models.HomeLocationInput, error) {
	userID, err := id.ParseUserID(r.UserID)
	if err != nil {
		return id.UserID{}, models.HomeLocationInput{}, dErrors.New(dErrors.CodeValidation, "user_id must be a valid uuid")
	}
	return userID, models.HomeLocationInput{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Address:   r.Address,
	}, nil
}

type officialIDRequest struct {
	UserID   string `json:"user_id"`
	IDType   string `json:"id_type"`
	IDNumber string `json:"id_number"`
}

func (r *officialIDRequest) parse() (id.UserID, models.IDDetails, error) {
	userID, err := id.ParseUserID(r.UserID)
	if err != nil {
		return id.UserID{}, models.IDDetails{}, dErrors.New(dErrors.CodeValidation, "user_id must be a valid uuid")
	}
	return userID, models.IDDetails{IDType: models.IDType(r.IDType), IDNumber: r.IDNumber}, nil
}

type heatmapRequest struct {
	Coordinates []geo.Coordinate `json:"coordinates"`
}

type privacyRequest struct {
	LocationSharing *bool `json:"location_sharing"`
}
