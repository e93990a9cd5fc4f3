package ga

import "errors"

var (
	// ErrInvalidConfig is returned when engine parameters are out of range.
	ErrInvalidConfig = errors.New("invalid ga config")
	// ErrTooFewPoints is returned when the matrix has fewer than two points.
	ErrTooFewPoints = errors.New("at least two points are required")
	// ErrInvalidMatrix is returned for non-square, asymmetric or negative matrices.
	ErrInvalidMatrix = errors.New("invalid distance matrix")
	// ErrZeroLength is returned when fitness is requested for a tour of zero total distance.
	ErrZeroLength = errors.New("tour has zero total distance")
	// ErrInvalidTour is returned by NewTour and Validate for malformed point sequences.
	ErrInvalidTour = errors.New("invalid tour")
)
