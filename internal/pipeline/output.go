package pipeline

import (
	"time"

	"github.com/katonobu/satellite-orbit/internal/track"
)

// Output is the artifact handed to a renderer. Results follow classifier
// order; on failure Results is empty but every other field is populated.
type Output[T any] struct {
	Results        []T       `json:"results"`
	Input          InputEcho `json:"input"`
	Params         Params    `json:"params"`
	QuantizedEpoch time.Time `json:"quantized_epoch"`
}

// InputEcho records what the caller asked for.
type InputEcho struct {
	RequestedAt time.Time `json:"requested_at"`
	Timezone    string    `json:"timezone"`
	Observer    *Observer `json:"observer,omitempty"`
}

// Params records the configuration the run used.
type Params struct {
	IntervalSeconds   int      `json:"interval_seconds"`
	PastCount         int      `json:"past_count"`
	FutureCount       int      `json:"future_count"`
	MinAltitudeDeg    float64  `json:"min_altitude_deg"`
	ConstellationKeys []string `json:"constellation_keys"`
	SourceURL         string   `json:"source_url"`
	ForceReload       bool     `json:"force_reload"`
}

// assemble packs retained results with the run's echo.
func assemble[T any](results []T, input InputEcho, params Params, epoch time.Time) *Output[T] {
	if results == nil {
		results = []T{}
	}
	return &Output[T]{
		Results:        results,
		Input:          input,
		Params:         params,
		QuantizedEpoch: epoch,
	}
}

func groundResults(sats []track.TrackedSatellite, samples []Samples[track.GroundPoint]) []track.GroundTrack {
	out := make([]track.GroundTrack, 0, len(sats))
	for i, sat := range sats {
		out = append(out, track.BuildGroundTrack(sat, samples[i].Points, samples[i].Current))
	}
	return out
}

func skyResults(sats []track.TrackedSatellite, samples []Samples[track.SkyPoint], minAlt float64) []track.SkyTrack {
	out := make([]track.SkyTrack, 0, len(sats))
	for i, sat := range sats {
		if st, ok := track.BuildSkyTrack(sat, samples[i].Points, samples[i].Current, minAlt); ok {
			out = append(out, st)
		}
	}
	return out
}
