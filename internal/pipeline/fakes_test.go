package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/katonobu/satellite-orbit/internal/tle"
	"github.com/katonobu/satellite-orbit/internal/transform"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errFetch = errors.New("connection refused")

type fakeSource struct {
	entries []tle.TLEEntry
	err     error
	calls   atomic.Int32
}

func (s *fakeSource) LoadSatellites(ctx context.Context, url string, forceReload bool) ([]tle.TLEEntry, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

// fakePropagator derives positions from the NORAD id and the instant so
// results are deterministic. ground/sky override the defaults when set.
type fakePropagator struct {
	ground func(e tle.TLEEntry, t time.Time) (transform.GeodeticPoint, error)
	sky    func(e tle.TLEEntry, t time.Time) (transform.LookAngles, error)
	delay  func(e tle.TLEEntry) time.Duration
	calls  atomic.Int64
}

func (p *fakePropagator) SubPoint(e tle.TLEEntry, t time.Time) (transform.GeodeticPoint, error) {
	p.calls.Add(1)
	if p.delay != nil {
		time.Sleep(p.delay(e))
	}
	if p.ground != nil {
		return p.ground(e, t)
	}
	minutes := float64(t.Unix()/60) + float64(e.NORADID)
	return transform.GeodeticPoint{
		LatDeg: 50 * math.Sin(minutes/100),
		LonDeg: transform.NormalizeLongitude(minutes * 0.25),
		AltM:   20_200e3,
	}, nil
}

func (p *fakePropagator) LookAngles(e tle.TLEEntry, obs transform.ObserverPosition, t time.Time) (transform.LookAngles, error) {
	p.calls.Add(1)
	if p.delay != nil {
		time.Sleep(p.delay(e))
	}
	if p.sky != nil {
		return p.sky(e, t)
	}
	minutes := float64(t.Unix()/60) + float64(e.NORADID)
	return transform.LookAngles{
		AzimuthDeg:   math.Mod(minutes, 360),
		ElevationDeg: 40,
		RangeKm:      21_000,
	}, nil
}

func entries(names ...string) []tle.TLEEntry {
	out := make([]tle.TLEEntry, len(names))
	for i, n := range names {
		out[i] = tle.TLEEntry{NORADID: 40000 + i, Name: n}
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SourceURL = "https://example.test/gnss.txt"
	cfg.Workers = 4
	return cfg
}
