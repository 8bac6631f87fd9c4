package interp

import (
	"fmt"
	"math"

	"go.ngs.io/glider-terrain/internal/domain"
)

// QuadMatrix maps the four corner values of a quad (counterclockwise from the
// logical origin) to the coefficients of
//
//	f(l, m) = c0 + c1*l + c2*m + c3*l*m
var QuadMatrix = [4][4]float64{
	{1, 0, 0, 0},
	{-1, 1, 0, 0},
	{-1, 0, 0, 1},
	{1, -1, 1, -1},
}

// degenerateEpsilon is the magnitude below which a coefficient is treated as zero.
const degenerateEpsilon = 1e-12

// unitTolerance is the slack allowed when checking that a parametric
// coordinate lies in [0, 1].
const unitTolerance = 1e-9

// QuadCoefficients holds the alpha (x) and beta (y) bilinear coefficients of a quad.
type QuadCoefficients struct {
	Alpha [4]float64 `json:"alpha"`
	Beta  [4]float64 `json:"beta"`
}

// CoefficientsFromCorners applies QuadMatrix to corner x and y values.
func CoefficientsFromCorners(xs, ys [4]float64) QuadCoefficients {
	var c QuadCoefficients
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			c.Alpha[i] += QuadMatrix[i][j] * xs[j]
			c.Beta[i] += QuadMatrix[i][j] * ys[j]
		}
	}
	return c
}

// NewQuadCoefficients computes the coefficients of a bounding quad with
// x = latitude and y = longitude, then checks that the solver's root branch
// resolves the quad's own center and corners to the unit square. A quad whose
// orientation puts the valid solution on the other root is rejected with
// domain.ErrDomain.
func NewQuadCoefficients(quad domain.BoundingQuad) (QuadCoefficients, error) {
	c := CoefficientsFromCorners(quad.Latitudes(), quad.Longitudes())

	center := quad.Center()
	l, m, err := c.Solve(center.Lat, center.Lon)
	if err != nil {
		return QuadCoefficients{}, fmt.Errorf("quad center: %w", err)
	}
	if !InUnitSquare(l, m) {
		return QuadCoefficients{}, fmt.Errorf("%w: quad center resolves to (%.6f, %.6f), corner order or orientation is wrong",
			domain.ErrDomain, l, m)
	}

	expected := [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for i, corner := range quad.Corners() {
		l, m, err := c.Solve(corner.Lat, corner.Lon)
		if err != nil {
			return QuadCoefficients{}, fmt.Errorf("quad corner %d: %w", i, err)
		}
		const cornerTolerance = 1e-6
		if math.Abs(l-expected[i][0]) > cornerTolerance || math.Abs(m-expected[i][1]) > cornerTolerance {
			return QuadCoefficients{}, fmt.Errorf("%w: quad corner %d resolves to (%.6f, %.6f), expected (%.0f, %.0f)",
				domain.ErrDomain, i, l, m, expected[i][0], expected[i][1])
		}
	}

	return c, nil
}

// Solve returns the logical coordinates (l, m) of the physical point (x, y).
func (c QuadCoefficients) Solve(x, y float64) (float64, float64, error) {
	return SolveQuadParametric(c.Alpha, c.Beta, x, y)
}

// Interpolate maps logical coordinates back to the physical point.
func (c QuadCoefficients) Interpolate(l, m float64) (x, y float64) {
	a, b := c.Alpha, c.Beta
	x = a[0] + a[1]*l + a[2]*m + a[3]*l*m
	y = b[0] + b[1]*l + b[2]*m + b[3]*l*m
	return x, y
}

// SolveQuadParametric inverts the bilinear quad mapping for the point (x, y).
//
// m solves aa*m^2 + bb*m + cc = 0, taking the (-bb - sqrt(det)) / (2*aa) root.
// When aa vanishes (parallelogram-like quads) the equation is linear and
// m = -cc/bb. l then follows from the alpha row
//
//	l = (x - a0 - a2*m) / (a1 + a3*m)
//
// or from the beta row when the alpha denominator vanishes.
//
// The returned coordinates are not constrained to [0, 1]; callers decide
// whether the point lies inside the quad.
func SolveQuadParametric(a, b [4]float64, x, y float64) (float64, float64, error) {
	aa := a[3]*b[2] - a[2]*b[3]
	bb := a[3]*b[0] - a[0]*b[3] + a[1]*b[2] - a[2]*b[1] + x*b[3] - y*a[3]
	cc := a[1]*b[0] - a[0]*b[1] + x*b[1] - y*a[1]

	var m float64
	if math.Abs(aa) < degenerateEpsilon {
		if math.Abs(bb) < degenerateEpsilon {
			return 0, 0, fmt.Errorf("%w: degenerate quad (aa=%g, bb=%g)", domain.ErrDomain, aa, bb)
		}
		m = -cc / bb
	} else {
		disc := bb*bb - 4*aa*cc
		if disc < 0 {
			return 0, 0, fmt.Errorf("%w: negative discriminant %g at (%.6f, %.6f)", domain.ErrDomain, disc, x, y)
		}
		det := math.Sqrt(disc)
		m = (-bb - det) / (2 * aa)
	}

	denA := a[1] + a[3]*m
	denB := b[1] + b[3]*m
	var l float64
	switch {
	case math.Abs(denA) >= degenerateEpsilon:
		l = (x - a[0] - a[2]*m) / denA
	case math.Abs(denB) >= degenerateEpsilon:
		l = (y - b[0] - b[2]*m) / denB
	default:
		return 0, 0, fmt.Errorf("%w: cannot solve l at m=%g", domain.ErrDomain, m)
	}

	return l, m, nil
}

// InUnitSquare reports whether (l, m) lies in [0, 1] x [0, 1] within tolerance.
func InUnitSquare(l, m float64) bool {
	return l >= -unitTolerance && l <= 1+unitTolerance &&
		m >= -unitTolerance && m <= 1+unitTolerance
}
