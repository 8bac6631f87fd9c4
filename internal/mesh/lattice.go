// Package mesh builds the textured terrain surface handed to the renderer.
package mesh

import (
	"github.com/paulmach/orb"

	"go.ngs.io/glider-terrain/internal/domain"
)

// Window is a rectangular sub-lattice of a raw dataset, as half-open row and
// column index ranges.
type Window struct {
	RowStart int `json:"row_start" msgpack:"row_start"`
	RowEnd   int `json:"row_end" msgpack:"row_end"`
	ColStart int `json:"col_start" msgpack:"col_start"`
	ColEnd   int `json:"col_end" msgpack:"col_end"`
}

// Rows returns the number of retained rows.
func (w Window) Rows() int {
	return max(0, w.RowEnd-w.RowStart)
}

// Cols returns the number of retained columns.
func (w Window) Cols() int {
	return max(0, w.ColEnd-w.ColStart)
}

// Len returns the number of retained lattice points.
func (w Window) Len() int {
	return w.Rows() * w.Cols()
}

// FilterLattice keeps the lattice points of raw whose latitude and longitude
// both fall inside bound (X = longitude, Y = latitude), edges included. Only
// the dataset's dimensions and extent are used.
//
// Latitude depends on the row only and longitude on the column only, so the
// retained points always form a rectangle.
func FilterLattice(raw *domain.RawElevations, bound orb.Bound) Window {
	w := Window{RowStart: -1, ColStart: -1}

	for row := 0; row < raw.Rows; row++ {
		lat := raw.Latitude(row)
		if lat < bound.Min.Lat() || lat > bound.Max.Lat() {
			continue
		}
		if w.RowStart < 0 {
			w.RowStart = row
		}
		w.RowEnd = row + 1
	}

	for col := 0; col < raw.Cols; col++ {
		lon := raw.Longitude(col)
		if lon < bound.Min.Lon() || lon > bound.Max.Lon() {
			continue
		}
		if w.ColStart < 0 {
			w.ColStart = col
		}
		w.ColEnd = col + 1
	}

	if w.RowStart < 0 || w.ColStart < 0 {
		return Window{}
	}
	return w
}
