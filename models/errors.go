package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("feature not found")
	ErrNoGeometry      = errors.New("no geometry to export")
	ErrCaptureFailure  = errors.New("map capture unavailable")
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrModeConflict    = errors.New("interaction mode conflict")
	ErrReportOverflow  = errors.New("measurement table does not fit on one page")
	ErrUnsupportedCRS  = errors.New("target CRS differs from source CRS")
)

// UpstreamError carries the status of a failed collaborator call.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream returned %d", e.Service, e.Status)
}
