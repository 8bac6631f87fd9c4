// Package reproject converts projected coordinates to geographic WGS84 coordinates using PROJ.
package reproject

import (
	"fmt"
	"sync"

	"github.com/twpayne/go-proj/v11"

	"go.ngs.io/glider-terrain/internal/domain"
)

// Geographic is the target CRS. Its authority axis order is latitude, longitude.
const Geographic = "EPSG:4326"

// Transformer performs a fixed projected -> geographic transform. The PROJ
// object is created on first use and reused; calls are serialised because a
// PJ must not be shared between threads.
type Transformer struct {
	sourceCRS string
	once      sync.Once
	pj        *proj.PJ
	initErr   error
	mu        sync.Mutex
}

// NewTransformer creates a transformer from sourceCRS (e.g. "EPSG:3021") to WGS84.
// Input points are in the source CRS's authority axis order.
func NewTransformer(sourceCRS string) *Transformer {
	return &Transformer{sourceCRS: sourceCRS}
}

// SourceCRS returns the configured source CRS.
func (t *Transformer) SourceCRS() string {
	return t.sourceCRS
}

func (t *Transformer) init() error {
	t.once.Do(func() {
		pj, err := proj.NewCRSToCRS(t.sourceCRS, Geographic, nil)
		if err != nil {
			t.initErr = fmt.Errorf("%w: cannot create %s -> %s transform: %v", domain.ErrCoordinateTransform, t.sourceCRS, Geographic, err)
			return
		}
		t.pj = pj
	})
	return t.initErr
}

// ToGeographic converts a single point.
func (t *Transformer) ToGeographic(p domain.ProjectedPoint) (domain.GeoPoint, error) {
	out, err := t.ToGeographicAll([]domain.ProjectedPoint{p})
	if err != nil {
		return domain.GeoPoint{}, err
	}
	return out[0], nil
}

// ToGeographicAll converts points with a single PROJ call.
func (t *Transformer) ToGeographicAll(points []domain.ProjectedPoint) ([]domain.GeoPoint, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if err := t.init(); err != nil {
		return nil, err
	}

	flat := make([]float64, 2*len(points))
	coords := make([][]float64, len(points))
	for i, p := range points {
		flat[2*i] = p.Northing
		flat[2*i+1] = p.Easting
		coords[i] = flat[2*i : 2*i+2]
	}

	t.mu.Lock()
	if t.pj == nil {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: transformer is closed", domain.ErrCoordinateTransform)
	}
	err := t.pj.ForwardFloat64Slices(coords)
	t.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCoordinateTransform, err)
	}

	out := make([]domain.GeoPoint, len(points))
	for i, c := range coords {
		out[i] = domain.GeoPoint{Lat: c[0], Lon: c[1]}
		if !validGeographic(out[i]) {
			return nil, fmt.Errorf("%w: point %d (%.3f, %.3f) maps to (%.6f, %.6f)",
				domain.ErrCoordinateTransform, i, points[i].Northing, points[i].Easting, out[i].Lat, out[i].Lon)
		}
	}
	return out, nil
}

// validGeographic rejects the infinities PROJ reports for out-of-domain input.
func validGeographic(p domain.GeoPoint) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Close releases the PROJ object.
func (t *Transformer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pj != nil {
		t.pj.Destroy()
		t.pj = nil
	}
	return nil
}
