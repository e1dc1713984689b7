package transform

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ObserverPosition is a fixed ground observer. The ECEF position is computed
// once so every look-angle evaluation in a run reuses it.
type ObserverPosition struct {
	LatDeg, LonDeg, AltM float64
	ECEF                 r3.Vec // meters

	sinLat, cosLat float64
	sinLon, cosLon float64
}

// LookAngles is the direction from an observer to a satellite.
type LookAngles struct {
	AzimuthDeg   float64 // [0, 360), 0 = North, clockwise
	ElevationDeg float64 // negative below the horizon
	RangeKm      float64
}

// NewObserverPosition builds an observer from geodetic degrees and meters
// above the WGS-84 ellipsoid.
func NewObserverPosition(latDeg, lonDeg, altM float64) ObserverPosition {
	lat := latDeg * deg2rad
	lon := lonDeg * deg2rad
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	return ObserverPosition{
		LatDeg: latDeg,
		LonDeg: lonDeg,
		AltM:   altM,
		ECEF:   geodeticToECEF(lat, lon, altM),
		sinLat: sinLat,
		cosLat: cosLat,
		sinLon: sinLon,
		cosLon: cosLon,
	}
}

// ECEFToLookAngles computes azimuth, elevation and range from obs to a
// satellite at sat (ECEF meters), rotating the range vector into the
// South-East-Zenith frame (Vallado §4.4).
func ECEFToLookAngles(obs ObserverPosition, sat r3.Vec) LookAngles {
	rho := r3.Sub(sat, obs.ECEF)

	south := obs.sinLat*obs.cosLon*rho.X + obs.sinLat*obs.sinLon*rho.Y - obs.cosLat*rho.Z
	east := -obs.sinLon*rho.X + obs.cosLon*rho.Y
	zenith := obs.cosLat*obs.cosLon*rho.X + obs.cosLat*obs.sinLon*rho.Y + obs.sinLat*rho.Z

	rangeM := r3.Norm(rho)
	if rangeM == 0 {
		return LookAngles{ElevationDeg: 90}
	}

	az := math.Atan2(east, -south)
	if az < 0 {
		az += 2 * math.Pi
	}
	azDeg := az * rad2deg
	if azDeg >= 360 {
		azDeg -= 360
	}

	return LookAngles{
		AzimuthDeg:   azDeg,
		ElevationDeg: math.Asin(zenith/rangeM) * rad2deg,
		RangeKm:      rangeM / 1000.0,
	}
}
