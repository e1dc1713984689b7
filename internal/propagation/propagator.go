package propagation

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/katonobu/satellite-orbit/internal/tle"
	"github.com/katonobu/satellite-orbit/internal/transform"
	"gonum.org/v1/gonum/spatial/r3"
)

// SGP4 resolves sub-satellite points and topocentric look angles from TLE
// entries. Initialized models are cached per element set, so sampling the
// same satellite at many instants parses its lines once. Safe for
// concurrent use.
type SGP4 struct {
	mu     sync.RWMutex
	models map[modelKey]*Model
	logger *slog.Logger
}

type modelKey struct {
	line1, line2 string
}

// NewSGP4 creates an SGP4 propagator with an empty model cache.
func NewSGP4(logger *slog.Logger) *SGP4 {
	return &SGP4{
		models: make(map[modelKey]*Model),
		logger: logger,
	}
}

// model returns the cached model for entry, initializing it on first use
// (double-checked under the write lock).
func (p *SGP4) model(entry tle.TLEEntry) (*Model, error) {
	key := modelKey{line1: entry.Line1, line2: entry.Line2}

	p.mu.RLock()
	m, ok := p.models[key]
	p.mu.RUnlock()
	if ok {
		return m, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.models[key]; ok {
		return m, nil
	}

	m, err := NewModel(entry.Line1, entry.Line2, entry.NORADID)
	if err != nil {
		return nil, err
	}
	p.models[key] = m
	p.logger.Debug("sgp4 model initialized", "norad_id", entry.NORADID, "name", entry.Name, "cached", len(p.models))
	return m, nil
}

// ecef returns the satellite's ECEF position (meters) at t.
func (p *SGP4) ecef(entry tle.TLEEntry, t time.Time) (r3.Vec, error) {
	m, err := p.model(entry)
	if err != nil {
		return r3.Vec{}, err
	}
	pos := transform.TEMEToECEF(m.PositionTEME(t), transform.GMST(t))
	if err := checkECEF(m.noradID, t, pos); err != nil {
		return r3.Vec{}, err
	}
	return pos, nil
}

// checkECEF rejects propagation output that is NaN/Inf or outside the
// orbital shells the tracker handles.
func checkECEF(noradID int, t time.Time, pos r3.Vec) error {
	if transform.ValidateECEF(pos) {
		return nil
	}
	return fmt.Errorf("sgp4 propagation failed for NORAD %d at %s: implausible position (%.1f km from geocenter)",
		noradID, t.UTC().Format(time.RFC3339), r3.Norm(pos)/1000)
}

// SubPoint returns the geodetic sub-satellite point at t.
func (p *SGP4) SubPoint(entry tle.TLEEntry, t time.Time) (transform.GeodeticPoint, error) {
	pos, err := p.ecef(entry, t)
	if err != nil {
		return transform.GeodeticPoint{}, err
	}
	return transform.ECEFToGeodetic(pos), nil
}

// LookAngles returns azimuth/elevation of the satellite from obs at t.
func (p *SGP4) LookAngles(entry tle.TLEEntry, obs transform.ObserverPosition, t time.Time) (transform.LookAngles, error) {
	pos, err := p.ecef(entry, t)
	if err != nil {
		return transform.LookAngles{}, err
	}
	return transform.ECEFToLookAngles(obs, pos), nil
}

// Retain drops cached models whose element set is not in entries, so a
// long-running process does not accumulate models across dataset reloads.
func (p *SGP4) Retain(entries []tle.TLEEntry) {
	keep := make(map[modelKey]struct{}, len(entries))
	for _, e := range entries {
		keep[modelKey{line1: e.Line1, line2: e.Line2}] = struct{}{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range p.models {
		if _, ok := keep[k]; !ok {
			delete(p.models, k)
		}
	}
}

// Len returns the number of cached models.
func (p *SGP4) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.models)
}
