package transform

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// WGS-84 ellipsoid parameters.
const (
	wgs84A  = 6378137.0             // semi-major axis (meters)
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

const (
	deg2rad = math.Pi / 180.0
	rad2deg = 180.0 / math.Pi
)

// GeodeticPoint is a position on (or above) the WGS-84 ellipsoid.
// Longitude is in (-180, 180].
type GeodeticPoint struct {
	LatDeg, LonDeg, AltM float64
}

// ECEFToGeodetic converts an ECEF position (meters) to geodetic coordinates
// with Bowring's iteration; five rounds converge well below a millimeter for
// orbital altitudes.
func ECEFToGeodetic(pos r3.Vec) GeodeticPoint {
	lon := math.Atan2(pos.Y, pos.X)
	p := math.Hypot(pos.X, pos.Y)
	lat := math.Atan2(pos.Z, p*(1-wgs84E2))

	for range 5 {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(pos.Z+wgs84E2*n*sinLat, p)
	}

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = p/cosLat - n
	} else {
		alt = math.Abs(pos.Z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}

	return GeodeticPoint{
		LatDeg: lat * rad2deg,
		LonDeg: NormalizeLongitude(lon * rad2deg),
		AltM:   alt,
	}
}

// NormalizeLongitude maps any longitude in degrees into (-180, 180].
func NormalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon <= -180 {
		lon += 360
	} else if lon > 180 {
		lon -= 360
	}
	return lon
}

// geodeticToECEF returns the ECEF position (meters) of a geodetic point.
func geodeticToECEF(latRad, lonRad, altM float64) r3.Vec {
	sinLat, cosLat := math.Sincos(latRad)
	sinLon, cosLon := math.Sincos(lonRad)

	// Radius of curvature in the prime vertical.
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return r3.Vec{
		X: (n + altM) * cosLat * cosLon,
		Y: (n + altM) * cosLat * sinLon,
		Z: (n*(1-wgs84E2) + altM) * sinLat,
	}
}
