package transform

import (
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// JulianDate returns the Julian Date of t (converted to UTC), including the
// sub-second part that go-satellite's integer-second JDay drops.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	jd := satellite.JDay(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	return jd + float64(t.Nanosecond())/1e9/86400.0
}

// GMST returns Greenwich Mean Sidereal Time in radians, normalized to [0, 2π),
// using the IAU-82 model implemented by go-satellite.
func GMST(t time.Time) float64 {
	return satellite.ThetaG_JD(JulianDate(t))
}
