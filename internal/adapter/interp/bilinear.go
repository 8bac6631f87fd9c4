// Package interp provides the interpolation schemes used by the terrain map:
// bilinear lookups on regular grids, inverse bilinear mapping of curved quads
// and elevation resolution inside picked mesh cells.
package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrOutOfGrid is returned when a lookup falls outside a grid or cell.
var ErrOutOfGrid = errors.New("point outside grid")

// GridCell represents an axis-aligned cell of a regular grid with four corner values.
type GridCell struct {
	X0, X1 float64 // X boundaries (longitude).
	Y0, Y1 float64 // Y boundaries (latitude).

	// V00 is the value at (X0, Y0), V10 at (X1, Y0), V01 at (X0, Y1) and V11 at (X1, Y1).
	V00, V10, V01, V11 float64
}

// BilinearInterpolate performs bilinear interpolation within a grid cell:
//
//	f(x,y) ≈ (1-t)(1-u)f(x0,y0) + t(1-u)f(x1,y0) + (1-t)u*f(x0,y1) + tu*f(x1,y1)
//
// where t = (x - x0) / (x1 - x0) and u = (y - y0) / (y1 - y0).
func BilinearInterpolate(cell GridCell, x, y float64) (float64, error) {
	if cell.X1 <= cell.X0 {
		return 0, fmt.Errorf("invalid grid cell: X1 must be > X0")
	}
	if cell.Y1 <= cell.Y0 {
		return 0, fmt.Errorf("invalid grid cell: Y1 must be > Y0")
	}

	const epsilon = 1e-9
	if !(x >= cell.X0-epsilon && x <= cell.X1+epsilon) {
		return 0, fmt.Errorf("%w: x %.6f not in [%.6f, %.6f]", ErrOutOfGrid, x, cell.X0, cell.X1)
	}
	if !(y >= cell.Y0-epsilon && y <= cell.Y1+epsilon) {
		return 0, fmt.Errorf("%w: y %.6f not in [%.6f, %.6f]", ErrOutOfGrid, y, cell.Y0, cell.Y1)
	}

	t := clampUnit((x - cell.X0) / (cell.X1 - cell.X0))
	u := clampUnit((y - cell.Y0) / (cell.Y1 - cell.Y0))

	return (1-t)*(1-u)*cell.V00 +
		t*(1-u)*cell.V10 +
		(1-t)*u*cell.V01 +
		t*u*cell.V11, nil
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Grid2D is a regular 2D grid. Values[i][j] is the sample at (X[j], Y[i]).
type Grid2D struct {
	X      []float64 // Longitudes, strictly increasing.
	Y      []float64 // Latitudes, strictly increasing.
	Values [][]float64
}

// Validate checks the grid shape and axis ordering.
func (g *Grid2D) Validate() error {
	if len(g.X) < 2 {
		return fmt.Errorf("grid must have at least 2 X coordinates")
	}
	if len(g.Y) < 2 {
		return fmt.Errorf("grid must have at least 2 Y coordinates")
	}
	if len(g.Values) != len(g.Y) {
		return fmt.Errorf("number of value rows (%d) must match Y coordinates (%d)", len(g.Values), len(g.Y))
	}
	for i, row := range g.Values {
		if len(row) != len(g.X) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(g.X))
		}
	}
	for i := 1; i < len(g.X); i++ {
		if g.X[i] <= g.X[i-1] {
			return fmt.Errorf("X coordinates must be strictly increasing")
		}
	}
	for i := 1; i < len(g.Y); i++ {
		if g.Y[i] <= g.Y[i-1] {
			return fmt.Errorf("Y coordinates must be strictly increasing")
		}
	}
	return nil
}

// InterpolateAt performs bilinear interpolation at (x, y). The grid is
// expected to have been validated by its builder.
func (g *Grid2D) InterpolateAt(x, y float64) (float64, error) {
	xIdx, ok := cellIndex(g.X, x)
	if !ok {
		return 0, fmt.Errorf("%w: x %.6f outside [%.6f, %.6f]", ErrOutOfGrid, x, g.X[0], g.X[len(g.X)-1])
	}
	yIdx, ok := cellIndex(g.Y, y)
	if !ok {
		return 0, fmt.Errorf("%w: y %.6f outside [%.6f, %.6f]", ErrOutOfGrid, y, g.Y[0], g.Y[len(g.Y)-1])
	}

	cell := GridCell{
		X0:  g.X[xIdx],
		X1:  g.X[xIdx+1],
		Y0:  g.Y[yIdx],
		Y1:  g.Y[yIdx+1],
		V00: g.Values[yIdx][xIdx],
		V10: g.Values[yIdx][xIdx+1],
		V01: g.Values[yIdx+1][xIdx],
		V11: g.Values[yIdx+1][xIdx+1],
	}

	return BilinearInterpolate(cell, x, y)
}

// cellIndex returns i such that axis[i] <= v <= axis[i+1]. NaN is never on the axis.
func cellIndex(axis []float64, v float64) (int, bool) {
	n := len(axis)
	if n < 2 || !(v >= axis[0] && v <= axis[n-1]) {
		return 0, false
	}
	// First index with axis[i] >= v.
	i := sort.SearchFloat64s(axis, v)
	if i > 0 {
		i--
	}
	if i > n-2 {
		i = n - 2
	}
	return i, true
}
