package track

import (
	"math/big"
	"time"
)

// QuantizeEpoch rounds dt up to the next multiple of interval on the Unix
// timeline and renders the result in dt's location. An instant already on a
// boundary still advances one full interval. A non-positive interval returns
// dt unchanged.
//
// The arithmetic stays in seconds so any year time.Time can represent
// quantizes correctly; UnixNano only covers 1678 to 2262.
func QuantizeEpoch(dt time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		return dt
	}
	if interval%time.Second == 0 {
		step := int64(interval / time.Second)
		s := dt.Unix() + step
		s -= mod(s, step)
		return time.Unix(s, 0).In(dt.Location())
	}

	// Sub-second steps need nanoseconds, which overflow int64 far from 1970.
	step := big.NewInt(interval.Nanoseconds())
	ns := new(big.Int).Mul(big.NewInt(dt.Unix()), big.NewInt(int64(time.Second)))
	ns.Add(ns, big.NewInt(int64(dt.Nanosecond())))
	ns.Add(ns, step)
	ns.Sub(ns, new(big.Int).Mod(ns, step))
	sec, nsec := new(big.Int).DivMod(ns, big.NewInt(int64(time.Second)), new(big.Int))
	return time.Unix(sec.Int64(), nsec.Int64()).In(dt.Location())
}

// mod is a floor modulo; Go's % truncates toward zero.
func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
