package models

import (
	"regexp"
	"strings"

	"trustmatrix/internal/geo"
	dErrors "trustmatrix/pkg/domain-errors"
)

// HomeLocationInput is the residence submitted with a neighbourhood attestation.
type HomeLocationInput struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Coordinate validates and returns the location as a geo.Coordinate.
func (h HomeLocationInput) Coordinate() (geo.Coordinate, error) {
	return geo.NewCoordinate(h.Latitude, h.Longitude)
}

// IDType names an accepted official document.
type IDType string

const (
	IDTypePassport        IDType = "passport"
	IDTypeNationalID      IDType = "national_id"
	IDTypeDriversLicense  IDType = "drivers_license"
	IDTypeResidencePermit IDType = "residence_permit"
)

var validIDTypes = map[IDType]bool{
	IDTypePassport:        true,
	IDTypeNationalID:      true,
	IDTypeDriversLicense:  true,
	IDTypeResidencePermit: true,
}

var idNumberPattern = regexp.MustCompile(`^[A-Za-z0-9-]{4,64}$`)

// IDDetails describes the document an administrator inspected.
type IDDetails struct {
	IDType   IDType
	IDNumber string
}

// Normalize trims and canonicalises the fields.
func (d *IDDetails) Normalize() {
	d.IDType = IDType(strings.ToLower(strings.TrimSpace(string(d.IDType))))
	d.IDNumber = strings.ToUpper(strings.TrimSpace(d.IDNumber))
}

// Validate rejects unknown document types and malformed numbers.
func (d IDDetails) Validate() error {
	if !validIDTypes[d.IDType] {
		return dErrors.New(dErrors.CodeValidation, "unsupported id_type")
	}
	if !idNumberPattern.MatchString(d.IDNumber) {
		return dErrors.New(dErrors.CodeValidation, "id_number must be 4-64 letters, digits or dashes")
	}
	return nil
}
