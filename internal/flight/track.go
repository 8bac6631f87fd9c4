// Package flight turns recorded glider fixes into a track drawable over the terrain.
package flight

import (
	"fmt"
	"math"
	"time"

	"go.ngs.io/glider-terrain/internal/domain"
)

// Fix is one GPS sample in the projected CRS of the map.
type Fix struct {
	Northing  float64   `json:"northing"`
	Easting   float64   `json:"easting"`
	AltitudeM float64   `json:"altitude_m"`
	Time      time.Time `json:"time"`
}

// Point is a processed fix.
type Point struct {
	Geo      domain.GeoPoint       `json:"geo"`
	Position domain.CartesianPoint `json:"position"`
	// Scalar is the altitude lost since the previous fix; climbs are negative.
	Scalar        float64 `json:"scalar"`
	VerticalSpeed float64 `json:"vertical_speed_mps"`
	OverMap       bool    `json:"over_map"`
}

// Track is a processed flight with the scalar range for color mapping.
type Track struct {
	Points    []Point `json:"points"`
	ScalarMin float64 `json:"scalar_min"`
	ScalarMax float64 `json:"scalar_max"`
}

// Projector converts projected coordinates to geographic ones.
type Projector interface {
	ToGeographicAll(points []domain.ProjectedPoint) ([]domain.GeoPoint, error)
}

// GeoidModel converts ellipsoidal heights to heights above mean sea level.
type GeoidModel interface {
	Orthometric(lat, lon, ellipsoidal float64) (float64, error)
}

// Options controls track processing.
type Options struct {
	Radius float64              // Sphere radius in meters.
	Area   *domain.BoundingQuad // Map area; nil leaves OverMap false.
	Geoid  GeoidModel           // Optional; nil keeps GPS altitudes as they are.
}

// BuildTrack reprojects all fixes in one call and derives the per-fix values.
func BuildTrack(fixes []Fix, proj Projector, opts Options) (*Track, error) {
	if len(fixes) == 0 {
		return &Track{Points: []Point{}}, nil
	}

	projected := make([]domain.ProjectedPoint, len(fixes))
	for i, f := range fixes {
		projected[i] = domain.ProjectedPoint{Northing: f.Northing, Easting: f.Easting}
	}
	geo, err := proj.ToGeographicAll(projected)
	if err != nil {
		return nil, fmt.Errorf("failed to reproject flight fixes: %w", err)
	}
	if len(geo) != len(fixes) {
		return nil, fmt.Errorf("reprojection returned %d points for %d fixes", len(geo), len(fixes))
	}

	track := &Track{
		Points:    make([]Point, len(fixes)),
		ScalarMin: math.Inf(1),
		ScalarMax: math.Inf(-1),
	}
	for i, f := range fixes {
		alt := f.AltitudeM
		if opts.Geoid != nil {
			alt, err = opts.Geoid.Orthometric(geo[i].Lat, geo[i].Lon, f.AltitudeM)
			if err != nil {
				return nil, fmt.Errorf("failed to correct fix %d altitude: %w", i, err)
			}
		}

		p := Point{
			Geo:      domain.GeoPoint{Lat: geo[i].Lat, Lon: geo[i].Lon, Elevation: alt},
			Position: domain.ToCartesian(geo[i].Lat, geo[i].Lon, opts.Radius+alt),
		}
		if opts.Area != nil {
			p.OverMap = opts.Area.Contains(p.Geo.Lat, p.Geo.Lon)
		}
		if i > 0 {
			diff := alt - track.Points[i-1].Geo.Elevation
			p.Scalar = -diff
			if dt := f.Time.Sub(fixes[i-1].Time).Seconds(); dt > 0 {
				p.VerticalSpeed = diff / dt
			}
		}

		track.Points[i] = p
		track.ScalarMin = math.Min(track.ScalarMin, p.Scalar)
		track.ScalarMax = math.Max(track.ScalarMax, p.Scalar)
	}
	return track, nil
}
