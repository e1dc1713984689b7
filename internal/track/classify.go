package track

import (
	"strings"

	"github.com/katonobu/satellite-orbit/internal/tle"
)

// ConstellationOf returns the first key in keys that prefixes name.
// Empty keys are skipped.
func ConstellationOf(name string, keys []string) (string, bool) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if strings.HasPrefix(name, k) {
			return k, true
		}
	}
	return "", false
}

// Classify keeps the records whose name matches a constellation key, in
// input order. Records matching no key are dropped.
func Classify(records []tle.TLEEntry, keys []string) []TrackedSatellite {
	out := make([]TrackedSatellite, 0, len(records))
	for _, rec := range records {
		c, ok := ConstellationOf(rec.Name, keys)
		if !ok {
			continue
		}
		out = append(out, TrackedSatellite{
			Name:          rec.Name,
			Constellation: c,
			Entry:         rec,
		})
	}
	return out
}
