package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/katonobu/satellite-orbit/internal/metrics"
	"github.com/katonobu/satellite-orbit/internal/tle"
	"github.com/katonobu/satellite-orbit/internal/track"
	"github.com/katonobu/satellite-orbit/internal/transform"
	"golang.org/x/sync/errgroup"
)

// Samples holds one satellite's positions over the grid, in grid order,
// plus the position at the quantized epoch.
type Samples[P any] struct {
	Points  []P
	Current P
}

// Sampler resolves positions for every tracked satellite at every grid
// instant. Satellites are sampled concurrently; the first failure cancels
// the rest.
type Sampler struct {
	prop    Propagator
	workers int
}

// NewSampler creates a Sampler bounded to workers goroutines (NumCPU when
// workers <= 0).
func NewSampler(prop Propagator, workers int) *Sampler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Sampler{prop: prop, workers: workers}
}

// Ground samples sub-satellite points.
func (s *Sampler) Ground(ctx context.Context, sats []track.TrackedSatellite, grid track.TimeGrid) ([]Samples[track.GroundPoint], error) {
	return sampleAll(ctx, s.workers, sats, grid, func(e tle.TLEEntry, t time.Time) (track.GroundPoint, error) {
		gp, err := s.prop.SubPoint(e, t)
		if err != nil {
			return track.GroundPoint{}, err
		}
		return track.GroundPoint{Lat: gp.LatDeg, Lon: gp.LonDeg}, nil
	})
}

// Sky samples look angles from obs.
func (s *Sampler) Sky(ctx context.Context, sats []track.TrackedSatellite, grid track.TimeGrid, obs transform.ObserverPosition) ([]Samples[track.SkyPoint], error) {
	return sampleAll(ctx, s.workers, sats, grid, func(e tle.TLEEntry, t time.Time) (track.SkyPoint, error) {
		la, err := s.prop.LookAngles(e, obs, t)
		if err != nil {
			return track.SkyPoint{}, err
		}
		return track.SkyPoint{Az: la.AzimuthDeg, Alt: la.ElevationDeg}, nil
	})
}

// sampleAll fans out over satellites and writes each result at its
// satellite's index, so output order is input order regardless of which
// goroutine finishes first.
func sampleAll[P any](ctx context.Context, workers int, sats []track.TrackedSatellite, grid track.TimeGrid,
	at func(tle.TLEEntry, time.Time) (P, error)) ([]Samples[P], error) {

	results := make([]Samples[P], len(sats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, sat := range sats {
		g.Go(func() error {
			points := make([]P, 0, grid.Len())
			for _, t := range grid.Instants {
				if err := gctx.Err(); err != nil {
					return err
				}
				p, err := at(sat.Entry, t)
				if err != nil {
					metrics.IncPropagationErrors()
					return fmt.Errorf("%s at %s: %w", sat.Name, t.Format(time.RFC3339), err)
				}
				points = append(points, p)
			}

			cur, err := at(sat.Entry, grid.Epoch)
			if err != nil {
				metrics.IncPropagationErrors()
				return fmt.Errorf("%s at epoch %s: %w", sat.Name, grid.Epoch.Format(time.RFC3339), err)
			}
			results[i] = Samples[P]{Points: points, Current: cur}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
