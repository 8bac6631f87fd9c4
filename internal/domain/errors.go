package domain

import "errors"

// Error kinds surfaced by the terrain core. Callers match them with errors.Is;
// every site wraps them with fmt.Errorf to add context.
var (
	// ErrCoordinateTransform is returned when the reprojection library rejects input.
	ErrCoordinateTransform = errors.New("coordinate transform failed")

	// ErrDomain is returned when a point cannot be located in a quad
	// (negative discriminant or degenerate geometry).
	ErrDomain = errors.New("point not resolvable in quad")

	// ErrDatasetShape is returned when raw elevation data does not match its configured dimensions.
	ErrDatasetShape = errors.New("elevation dataset shape mismatch")

	// ErrInvalidCell is returned for malformed picked-cell input.
	ErrInvalidCell = errors.New("invalid cell")
)
