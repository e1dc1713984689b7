package pipeline

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/katonobu/satellite-orbit/internal/tle"
)

// Config controls a pipeline run.
type Config struct {
	Interval          time.Duration
	PastCount         int
	FutureCount       int
	MinAltitudeDeg    float64
	ConstellationKeys []string
	SourceURL         string
	ForceReload       bool
	// Workers bounds the per-satellite sampling fan-out. Zero means NumCPU.
	Workers int
}

// DefaultConfig returns the GNSS defaults: 5 minute steps, 30 minutes each
// side of the epoch, GPS and QZSS from CelesTrak.
func DefaultConfig() Config {
	return Config{
		Interval:          300 * time.Second,
		PastCount:         6,
		FutureCount:       6,
		MinAltitudeDeg:    5,
		ConstellationKeys: []string{"NAVSTAR", "QZS"},
		SourceURL:         tle.DefaultSourceURL,
		Workers:           runtime.NumCPU(),
	}
}

// Validate rejects configurations the grid cannot be built from. Keys that
// match nothing are not an error; they yield zero tracked satellites.
func (c Config) Validate() error {
	var errs []error
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval))
	}
	if c.PastCount < 0 {
		errs = append(errs, fmt.Errorf("past count must not be negative, got %d", c.PastCount))
	}
	if c.FutureCount < 0 {
		errs = append(errs, fmt.Errorf("future count must not be negative, got %d", c.FutureCount))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.SourceURL == "" {
		errs = append(errs, errors.New("source URL is required"))
	}
	return errors.Join(errs...)
}

// Params returns the echo of c that is embedded in every output.
func (c Config) Params() Params {
	keys := make([]string, len(c.ConstellationKeys))
	copy(keys, c.ConstellationKeys)
	return Params{
		IntervalSeconds:   int(c.Interval / time.Second),
		PastCount:         c.PastCount,
		FutureCount:       c.FutureCount,
		MinAltitudeDeg:    c.MinAltitudeDeg,
		ConstellationKeys: keys,
		SourceURL:         c.SourceURL,
		ForceReload:       c.ForceReload,
	}
}

// Observer is a ground station for sky-view runs.
type Observer struct {
	LatDeg float64 `json:"lat"`
	LonDeg float64 `json:"lon"`
	AltM   float64 `json:"alt_m"`
}

// Validate checks the observer coordinates are finite and on the globe.
func (o Observer) Validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{{"latitude", o.LatDeg}, {"longitude", o.LonDeg}, {"altitude", o.AltM}} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return fmt.Errorf("observer %s must be a finite number", v.name)
		}
	}
	if o.LatDeg < -90 || o.LatDeg > 90 {
		return fmt.Errorf("observer latitude %.6f out of range [-90, 90]", o.LatDeg)
	}
	if o.LonDeg < -180 || o.LonDeg > 180 {
		return fmt.Errorf("observer longitude %.6f out of range [-180, 180]", o.LonDeg)
	}
	return nil
}
