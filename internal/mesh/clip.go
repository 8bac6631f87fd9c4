package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"

	"go.ngs.io/glider-terrain/internal/domain"
)

// Plane is an oriented half-space. Its normal points into the retained side.
type Plane struct {
	Origin domain.CartesianPoint `json:"origin" msgpack:"origin"`
	Normal domain.CartesianPoint `json:"normal" msgpack:"normal"`
}

// Distance returns the signed distance of p from the plane, positive on the retained side.
func (pl Plane) Distance(p domain.CartesianPoint) float64 {
	return r3.Dot(pl.Normal, r3.Sub(p, pl.Origin))
}

// ClipPlanes turns the quad's boundary into one plane per edge. Every plane
// contains the sphere center and the edge's two corners, so it follows the
// great circle through them; its normal is the cross product of the corner
// vectors, flipped if needed so that the quad's center is on the positive
// side. The polygon interior is the intersection of the positive half-spaces.
func ClipPlanes(quad domain.BoundingQuad, radius float64) []Plane {
	corners := quad.Corners()
	var pts [4]domain.CartesianPoint
	for i, c := range corners {
		pts[i] = domain.ToCartesian(c.Lat, c.Lon, radius)
	}
	center := quad.Center()
	inside := domain.ToCartesian(center.Lat, center.Lon, radius)

	planes := make([]Plane, 0, len(pts))
	for i := range pts {
		n := r3.Unit(r3.Cross(pts[i], pts[(i+1)%len(pts)]))
		if r3.Dot(n, inside) < 0 {
			n = r3.Scale(-1, n)
		}
		planes = append(planes, Plane{Normal: n})
	}
	return planes
}

// InsideAll reports whether p is on the retained side of every plane.
func InsideAll(planes []Plane, p domain.CartesianPoint) bool {
	for _, pl := range planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}
