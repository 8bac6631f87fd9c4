package domain

import "fmt"

// Extent is the geographic rectangle covered by a raw elevation dataset.
type Extent struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Validate checks that the extent is a non-empty rectangle.
func (e Extent) Validate() error {
	if e.North <= e.South {
		return fmt.Errorf("extent north %.6f must be > south %.6f", e.North, e.South)
	}
	if e.East <= e.West {
		return fmt.Errorf("extent east %.6f must be > west %.6f", e.East, e.West)
	}
	return nil
}

// RawElevations is a row-major matrix of signed 16-bit elevations in meters.
// Row 0 is the northern edge and column 0 the western edge; samples are
// spaced linearly across Extent, both edges included.
type RawElevations struct {
	Rows   int
	Cols   int
	Extent Extent
	Values []int16
}

// Validate checks the matrix dimensions against the value count.
func (r *RawElevations) Validate() error {
	if r.Rows < 2 || r.Cols < 2 {
		return fmt.Errorf("%w: need at least 2x2 samples, got %dx%d", ErrDatasetShape, r.Rows, r.Cols)
	}
	if len(r.Values) != r.Rows*r.Cols {
		return fmt.Errorf("%w: got %d values, expected %d (%d rows x %d cols)",
			ErrDatasetShape, len(r.Values), r.Rows*r.Cols, r.Rows, r.Cols)
	}
	if err := r.Extent.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatasetShape, err)
	}
	return nil
}

// Latitude returns the latitude of a row.
func (r *RawElevations) Latitude(row int) float64 {
	return linspace(r.Extent.North, r.Extent.South, r.Rows, row)
}

// Longitude returns the longitude of a column.
func (r *RawElevations) Longitude(col int) float64 {
	return linspace(r.Extent.West, r.Extent.East, r.Cols, col)
}

// At returns the elevation at (row, col).
func (r *RawElevations) At(row, col int) int16 {
	return r.Values[row*r.Cols+col]
}

// linspace returns the i-th of n evenly spaced samples from start to stop inclusive.
func linspace(start, stop float64, n, i int) float64 {
	if n == 1 {
		return start
	}
	return start + (stop-start)*float64(i)/float64(n-1)
}
