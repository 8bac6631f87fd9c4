package interp

import (
	"fmt"

	"go.ngs.io/glider-terrain/internal/domain"
)

// QuadCorners is the number of vertices in a mesh cell.
const QuadCorners = 4

// ResolveElevation interpolates an elevation inside a picked mesh cell.
//
// corners are the cell's vertex elevations in quad order: (0,0), (1,0),
// (1,1), (0,1) in local coordinates. (px, py) is the local position in the
// cell. The weights are
//
//	w0 = (1-px)(1-py)  w1 = px(1-py)  w2 = px*py  w3 = (1-px)py
//
// so corners 0 and 3 take the (1-px) factor.
func ResolveElevation(corners []float64, px, py float64) (float64, error) {
	if len(corners) != QuadCorners {
		return 0, fmt.Errorf("%w: got %d corner elevations, expected %d", domain.ErrInvalidCell, len(corners), QuadCorners)
	}

	return (1-px)*(1-py)*corners[0] +
		px*(1-py)*corners[1] +
		px*py*corners[2] +
		(1-px)*py*corners[3], nil
}
