// Package track holds the pure core of the trace pipeline: epoch
// quantization, time-grid generation, constellation classification and
// segmentation of sampled positions into drawable polylines. Nothing here
// performs I/O.
package track

import (
	"encoding/json"

	"github.com/katonobu/satellite-orbit/internal/tle"
)

// TrackedSatellite is an element set that matched a constellation key.
type TrackedSatellite struct {
	Name          string
	Constellation string
	Entry         tle.TLEEntry
}

// GroundPoint is a sub-satellite point in degrees.
type GroundPoint struct {
	Lat float64
	Lon float64
}

// SkyPoint is a topocentric direction in degrees. Az is in [0, 360).
type SkyPoint struct {
	Az  float64
	Alt float64
}

// GroundSegment is a run of ground points drawn as one polyline.
type GroundSegment []GroundPoint

// MarshalJSON encodes the segment as parallel lon/lat arrays.
func (s GroundSegment) MarshalJSON() ([]byte, error) {
	out := struct {
		Lons []float64 `json:"lons"`
		Lats []float64 `json:"lats"`
	}{
		Lons: make([]float64, len(s)),
		Lats: make([]float64, len(s)),
	}
	for i, p := range s {
		out.Lons[i] = p.Lon
		out.Lats[i] = p.Lat
	}
	return json.Marshal(out)
}

// SkySegment is a run of visible sky points drawn as one polyline.
type SkySegment []SkyPoint

// MarshalJSON encodes the segment as parallel az/alt arrays.
func (s SkySegment) MarshalJSON() ([]byte, error) {
	out := struct {
		Azs  []float64 `json:"azs"`
		Alts []float64 `json:"alts"`
	}{
		Azs:  make([]float64, len(s)),
		Alts: make([]float64, len(s)),
	}
	for i, p := range s {
		out.Azs[i] = p.Az
		out.Alts[i] = p.Alt
	}
	return json.Marshal(out)
}

// MarshalJSON encodes the point as {"lon":..,"lat":..}.
func (p GroundPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	}{p.Lon, p.Lat})
}

// MarshalJSON encodes the point as {"az":..,"alt":..}.
func (p SkyPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Az  float64 `json:"az"`
		Alt float64 `json:"alt"`
	}{p.Az, p.Alt})
}

// GroundTrack is the map-mode result for one satellite.
type GroundTrack struct {
	Name          string          `json:"name"`
	Constellation string          `json:"constellation"`
	Segments      []GroundSegment `json:"segments"`
	Current       *GroundPoint    `json:"current,omitempty"`
}

// SkyTrack is the sky-view result for one satellite.
type SkyTrack struct {
	Name          string       `json:"name"`
	Constellation string       `json:"constellation"`
	Segments      []SkySegment `json:"segments"`
	Current       *SkyPoint    `json:"current,omitempty"`
}
