package domain

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CartesianPoint is a point in the scene frame. The sphere center is the origin,
// Y points to the north pole and Z crosses the equator at longitude 0.
type CartesianPoint = r3.Vec

const degToRad = math.Pi / 180.0

// ToCartesian converts spherical coordinates to a Cartesian point.
//
// The unit point at the origin is translated along Z by elevation, rotated by
// -inclination around X and then by azimuth around Y:
//
//	p = Ry(azimuth) · Rx(-inclination) · (0, 0, elevation)
//
// Inclination is the latitude and azimuth the longitude, both in degrees;
// elevation is the distance from the sphere center (radius + altitude).
func ToCartesian(inclination, azimuth, elevation float64) CartesianPoint {
	inc := inclination * degToRad
	az := azimuth * degToRad

	// Rx(-inc) applied to (0, 0, e).
	y := elevation * math.Sin(inc)
	z := elevation * math.Cos(inc)

	// Ry(az) applied to (0, y, z).
	return CartesianPoint{
		X: z * math.Sin(az),
		Y: y,
		Z: z * math.Cos(az),
	}
}

// FromCartesian is the inverse of ToCartesian. It returns inclination and
// azimuth in degrees and the distance from the sphere center.
func FromCartesian(p CartesianPoint) (inclination, azimuth, elevation float64) {
	elevation = r3.Norm(p)
	if elevation == 0 {
		return 0, 0, 0
	}
	inclination = math.Asin(p.Y/elevation) / degToRad
	azimuth = math.Atan2(p.X, p.Z) / degToRad
	return inclination, azimuth, elevation
}

// Camera describes where the renderer should place its camera.
type Camera struct {
	FocalPoint   CartesianPoint `json:"focal_point"`
	Position     CartesianPoint `json:"position"`
	Roll         float64        `json:"roll_deg"`
	ClippingNear float64        `json:"clipping_near"`
	ClippingFar  float64        `json:"clipping_far"`
}

// CameraPose looks straight down at center from altitude meters above a sphere of the given radius.
func CameraPose(center GeoPoint, radius, altitude, roll float64) Camera {
	return Camera{
		FocalPoint:   ToCartesian(center.Lat, center.Lon, radius),
		Position:     ToCartesian(center.Lat, center.Lon, radius+altitude),
		Roll:         roll,
		ClippingNear: 1,
		ClippingFar:  2 * altitude,
	}
}
