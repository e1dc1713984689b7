// Package transform converts SGP4 output into the frames the tracker samples:
// TEME → ECEF (GMST-only rotation, no polar motion or equation of equinoxes),
// ECEF → geodetic sub-point, and ECEF → topocentric azimuth/elevation.
//
// The simplified rotation is off by tens of meters, which is far below what
// a ground-track or sky-view plot can show.
package transform

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// TEMEToECEF rotates a TEME position (km) about the Z axis by gmst (radians)
// and returns the ECEF position in meters.
func TEMEToECEF(teme r3.Vec, gmst float64) r3.Vec {
	cosG := math.Cos(gmst)
	sinG := math.Sin(gmst)

	return r3.Scale(1000.0, r3.Vec{
		X: teme.X*cosG + teme.Y*sinG,
		Y: -teme.X*sinG + teme.Y*cosG,
		Z: teme.Z,
	})
}

// ValidateECEF reports whether an ECEF position (meters) is finite and lies
// between 6200 km and 50000 km from the geocenter, which covers LEO through
// GEO including the GNSS MEO shells.
func ValidateECEF(pos r3.Vec) bool {
	for _, c := range []float64{pos.X, pos.Y, pos.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}

	const (
		minRadius = 6200.0 * 1000.0
		maxRadius = 50000.0 * 1000.0
	)
	mag := r3.Norm(pos)
	return mag >= minRadius && mag <= maxRadius
}
