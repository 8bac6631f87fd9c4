package domain

import (
	"errors"
	"math"
	"testing"
)

var areCorners = [4]GeoPoint{
	{Lat: 63.13304365211308, Lon: 12.825512884793955},
	{Lat: 63.145143746674435, Lon: 13.265575207847208},
	{Lat: 63.2938907308566, Lon: 13.247244782969224},
	{Lat: 63.28171029538654, Lon: 12.80492828636552},
}

func TestBoundingQuad(t *testing.T) {
	q, err := NewBoundingQuad(areCorners)
	if err != nil {
		t.Fatalf("NewBoundingQuad: %v", err)
	}

	b := q.Bound()
	if b.Min.Lat() != areCorners[CornerSW].Lat || b.Max.Lat() != areCorners[CornerNE].Lat {
		t.Errorf("latitude bound [%v, %v]", b.Min.Lat(), b.Max.Lat())
	}
	if b.Min.Lon() != areCorners[CornerNW].Lon || b.Max.Lon() != areCorners[CornerSE].Lon {
		t.Errorf("longitude bound [%v, %v]", b.Min.Lon(), b.Max.Lon())
	}

	c := q.Center()
	if !q.Contains(c.Lat, c.Lon) {
		t.Errorf("center %+v not contained", c)
	}
	// Inside the bounding rectangle but outside the rotated quad.
	if q.Contains(b.Max.Lat()-0.001, b.Min.Lon()+0.001) {
		t.Errorf("north-west rectangle corner should be outside the quad")
	}
	if q.Contains(60, 10) {
		t.Errorf("far point should be outside the quad")
	}

	if lats := q.Latitudes(); lats[CornerNW] != areCorners[CornerNW].Lat {
		t.Errorf("Latitudes() = %v", lats)
	}
	if lons := q.Longitudes(); lons[CornerSE] != areCorners[CornerSE].Lon {
		t.Errorf("Longitudes() = %v", lons)
	}
}

func TestNewBoundingQuadErrors(t *testing.T) {
	tests := map[string][4]GeoPoint{
		"latitude out of range": {{Lat: 91}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1}},
		"longitude out of range": {{Lon: -181}, {Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1}},
		"NaN":                    {{Lat: math.NaN()}, {Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1}},
		"collinear":              {{}, {Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}, {Lat: 3, Lon: 3}},
	}
	for name, corners := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewBoundingQuad(corners); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRawElevationsLattice(t *testing.T) {
	raw := &RawElevations{
		Rows:   6000,
		Cols:   6000,
		Extent: Extent{South: 60, West: 10, North: 65, East: 15},
		Values: make([]int16, 6000*6000),
	}
	if err := raw.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if raw.Latitude(0) != 65 || raw.Latitude(5999) != 60 {
		t.Errorf("latitude edges %v, %v", raw.Latitude(0), raw.Latitude(5999))
	}
	if raw.Longitude(0) != 10 || raw.Longitude(5999) != 15 {
		t.Errorf("longitude edges %v, %v", raw.Longitude(0), raw.Longitude(5999))
	}
	step := raw.Latitude(0) - raw.Latitude(1)
	if math.Abs(step-5.0/5999) > 1e-12 {
		t.Errorf("latitude step %v", step)
	}

	raw.Values = raw.Values[:100]
	if err := raw.Validate(); !errors.Is(err, ErrDatasetShape) {
		t.Errorf("expected ErrDatasetShape, got %v", err)
	}
}

func TestExtentValidate(t *testing.T) {
	if err := (Extent{South: 60, West: 10, North: 65, East: 15}).Validate(); err != nil {
		t.Errorf("valid extent rejected: %v", err)
	}
	if err := (Extent{South: 65, West: 10, North: 60, East: 15}).Validate(); err == nil {
		t.Errorf("inverted extent accepted")
	}
}
