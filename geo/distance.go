package geo

import "math"

// WGS-84 ellipsoid.
const (
	semiMajorAxis = 6378137.0
	eccentricity  = 0.0818191908426
)

// Distance approximates the ground distance in meters between two points by
// scaling the coordinate deltas with the local ellipsoid radius of curvature
// at the first point's latitude. Valid for short ranges; not usable near the
// poles or across large separations.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	latRad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lonRad := lon1 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	sinLat := math.Sin(latRad)
	n := semiMajorAxis / math.Sqrt(1.0-eccentricity*eccentricity*sinLat*sinLat)

	dLat := lat2Rad - latRad
	dLon := lon2Rad - lonRad
	x := n * dLat
	y := n * dLon * sinLat
	return math.Sqrt(x*x + y*y)
}
