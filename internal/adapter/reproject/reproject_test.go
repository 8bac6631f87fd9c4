package reproject

import (
	"errors"
	"math"
	"testing"

	"go.ngs.io/glider-terrain/internal/domain"
)

// RT90 2.5 gon V corners of the Åre map area (northing, easting).
var areCorners = []domain.ProjectedPoint{
	{Northing: 7005969, Easting: 1349602},
	{Northing: 7006362, Easting: 1371835},
	{Northing: 7022967, Easting: 1371573},
	{Northing: 7022573, Easting: 1349340},
}

func TestToGeographicAllRT90(t *testing.T) {
	tr := NewTransformer("EPSG:3021")
	defer func() { _ = tr.Close() }()

	points, err := tr.ToGeographicAll(areCorners)
	if err != nil {
		t.Fatalf("ToGeographicAll: %v", err)
	}
	if len(points) != len(areCorners) {
		t.Fatalf("expected %d points, got %d", len(areCorners), len(points))
	}
	for i, p := range points {
		if p.Lat < 63.0 || p.Lat > 63.4 || p.Lon < 12.6 || p.Lon > 13.4 {
			t.Errorf("corner %d: (%.6f, %.6f) is not near Åre", i, p.Lat, p.Lon)
		}
	}

	// Northing grows to the north, easting to the east.
	if points[3].Lat <= points[0].Lat {
		t.Errorf("expected NW corner north of SW corner: %.6f <= %.6f", points[3].Lat, points[0].Lat)
	}
	if points[1].Lon <= points[0].Lon {
		t.Errorf("expected SE corner east of SW corner: %.6f <= %.6f", points[1].Lon, points[0].Lon)
	}
}

func TestToGeographicMatchesVectorized(t *testing.T) {
	tr := NewTransformer("EPSG:3021")
	defer func() { _ = tr.Close() }()

	all, err := tr.ToGeographicAll(areCorners)
	if err != nil {
		t.Fatalf("ToGeographicAll: %v", err)
	}
	for i, c := range areCorners {
		p, err := tr.ToGeographic(c)
		if err != nil {
			t.Fatalf("ToGeographic %d: %v", i, err)
		}
		if math.Abs(p.Lat-all[i].Lat) > 1e-12 || math.Abs(p.Lon-all[i].Lon) > 1e-12 {
			t.Errorf("point %d: single (%.9f, %.9f) != vectorized (%.9f, %.9f)", i, p.Lat, p.Lon, all[i].Lat, all[i].Lon)
		}
	}
}

func TestToGeographicAllEmpty(t *testing.T) {
	tr := NewTransformer("EPSG:3021")
	points, err := tr.ToGeographicAll(nil)
	if err != nil || points != nil {
		t.Fatalf("expected nil, nil for empty input, got %v, %v", points, err)
	}
}

func TestUnknownCRS(t *testing.T) {
	tr := NewTransformer("EPSG:999999")
	_, err := tr.ToGeographic(domain.ProjectedPoint{Northing: 1, Easting: 1})
	if !errors.Is(err, domain.ErrCoordinateTransform) {
		t.Fatalf("expected ErrCoordinateTransform, got %v", err)
	}
}
