// Package domain holds the geographic value types and spherical geometry of the terrain map.
package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// GeoPoint is a geographic coordinate in degrees with an optional elevation in meters.
type GeoPoint struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Elevation float64 `json:"elevation,omitempty"`
}

// ProjectedPoint is a coordinate in a planar projected CRS, in the CRS's
// authority axis order (northing first for EPSG:3021).
type ProjectedPoint struct {
	Northing float64 `json:"northing"`
	Easting  float64 `json:"easting"`
}

// Corner indices of a BoundingQuad. The order is counterclockwise in the
// logical (l, m) space: SW=(0,0), SE=(1,0), NE=(1,1), NW=(0,1).
const (
	CornerSW = iota
	CornerSE
	CornerNE
	CornerNW
)

// BoundingQuad is the non axis-aligned quadrilateral area of interest.
type BoundingQuad struct {
	corners [4]GeoPoint
	ring    orb.Ring
}

// NewBoundingQuad builds a quad from its SW, SE, NE and NW corners.
func NewBoundingQuad(corners [4]GeoPoint) (BoundingQuad, error) {
	for i, c := range corners {
		if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
			return BoundingQuad{}, fmt.Errorf("corner %d is not a number", i)
		}
		if c.Lat < -90 || c.Lat > 90 {
			return BoundingQuad{}, fmt.Errorf("corner %d latitude %.6f out of range", i, c.Lat)
		}
		if c.Lon < -180 || c.Lon > 180 {
			return BoundingQuad{}, fmt.Errorf("corner %d longitude %.6f out of range", i, c.Lon)
		}
	}

	ring := make(orb.Ring, 0, 5)
	for _, c := range corners {
		ring = append(ring, orb.Point{c.Lon, c.Lat})
	}
	ring = append(ring, ring[0])

	if planar.Area(ring) == 0 {
		return BoundingQuad{}, fmt.Errorf("bounding quad has zero area")
	}

	return BoundingQuad{corners: corners, ring: ring}, nil
}

// Corners returns the SW, SE, NE and NW corners.
func (q BoundingQuad) Corners() [4]GeoPoint {
	return q.corners
}

// Latitudes returns the corner latitudes in corner order.
func (q BoundingQuad) Latitudes() [4]float64 {
	var out [4]float64
	for i, c := range q.corners {
		out[i] = c.Lat
	}
	return out
}

// Longitudes returns the corner longitudes in corner order.
func (q BoundingQuad) Longitudes() [4]float64 {
	var out [4]float64
	for i, c := range q.corners {
		out[i] = c.Lon
	}
	return out
}

// Bound returns the axis-aligned bounding rectangle (X = longitude, Y = latitude).
func (q BoundingQuad) Bound() orb.Bound {
	return q.ring.Bound()
}

// Contains reports whether a geographic point lies inside the quad polygon.
func (q BoundingQuad) Contains(lat, lon float64) bool {
	return planar.RingContains(q.ring, orb.Point{lon, lat})
}

// Center returns the average of the four corners.
func (q BoundingQuad) Center() GeoPoint {
	var c GeoPoint
	for _, p := range q.corners {
		c.Lat += p.Lat / 4
		c.Lon += p.Lon / 4
	}
	return c
}
