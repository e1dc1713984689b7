// Package pipeline turns element sets into time-windowed satellite traces.
//
// A run quantizes the requested instant, builds the sampling grid, loads and
// classifies element sets, samples every tracked satellite and assembles the
// retained tracks. Runs fail closed: any source or propagation error yields
// a well-formed output with no results and an *Error describing the kind.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/katonobu/satellite-orbit/internal/metrics"
	"github.com/katonobu/satellite-orbit/internal/tle"
	"github.com/katonobu/satellite-orbit/internal/track"
	"github.com/katonobu/satellite-orbit/internal/transform"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	ModeMap  = "map"
	ModeView = "view"
)

// Propagator resolves positions for one element set at one instant.
// Implementations must be deterministic and safe for concurrent use.
type Propagator interface {
	SubPoint(entry tle.TLEEntry, t time.Time) (transform.GeodeticPoint, error)
	LookAngles(entry tle.TLEEntry, obs transform.ObserverPosition, t time.Time) (transform.LookAngles, error)
}

// ElementSource provides the element sets for a run.
type ElementSource interface {
	LoadSatellites(ctx context.Context, url string, forceReload bool) ([]tle.TLEEntry, error)
}

// retainer is implemented by propagators that cache per-element-set state
// and can drop entries no longer in the current dataset.
type retainer interface {
	Retain(entries []tle.TLEEntry)
}

// Pipeline runs map and sky-view computations against one configuration.
type Pipeline struct {
	cfg     Config
	src     ElementSource
	prop    Propagator
	sampler *Sampler
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a Pipeline. cfg should already have passed Validate.
func New(cfg Config, src ElementSource, prop Propagator, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		src:     src,
		prop:    prop,
		sampler: NewSampler(prop, cfg.Workers),
		logger:  logger.With("component", "pipeline"),
		tracer:  otel.Tracer("github.com/katonobu/satellite-orbit/internal/pipeline"),
	}
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() Config { return p.cfg }

// WithForceReload returns a pipeline sharing p's collaborators whose runs
// bypass (force) or honor the element-set cache.
func (p *Pipeline) WithForceReload(force bool) *Pipeline {
	cp := *p
	cp.cfg.ForceReload = force
	return &cp
}

// GroundTracks computes sub-satellite tracks around at. The returned output
// is never nil.
func (p *Pipeline) GroundTracks(ctx context.Context, at time.Time) (*Output[track.GroundTrack], error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline.ground_tracks")
	defer span.End()

	epoch := track.QuantizeEpoch(at, p.cfg.Interval)
	input := InputEcho{RequestedAt: at, Timezone: at.Location().String()}
	params := p.cfg.Params()

	sats, grid, err := p.prepare(ctx, epoch)
	if err != nil {
		return assemble[track.GroundTrack](nil, input, params, epoch), p.fail(ctx, span, ModeMap, start, err)
	}
	samples, err := p.sampler.Ground(ctx, sats, grid)
	if err != nil {
		return assemble[track.GroundTrack](nil, input, params, epoch), p.fail(ctx, span, ModeMap, start, err)
	}

	results := groundResults(sats, samples)
	p.succeed(span, ModeMap, start, len(sats), len(results))
	return assemble(results, input, params, epoch), nil
}

// SkyView computes visible arcs for obs around at. The returned output is
// never nil.
func (p *Pipeline) SkyView(ctx context.Context, at time.Time, obs Observer) (*Output[track.SkyTrack], error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline.sky_view")
	defer span.End()

	epoch := track.QuantizeEpoch(at, p.cfg.Interval)
	input := InputEcho{RequestedAt: at, Timezone: at.Location().String(), Observer: &obs}
	params := p.cfg.Params()

	if err := obs.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return assemble[track.SkyTrack](nil, input, params, epoch), err
	}

	sats, grid, err := p.prepare(ctx, epoch)
	if err != nil {
		return assemble[track.SkyTrack](nil, input, params, epoch), p.fail(ctx, span, ModeView, start, err)
	}
	pos := transform.NewObserverPosition(obs.LatDeg, obs.LonDeg, obs.AltM)
	samples, err := p.sampler.Sky(ctx, sats, grid, pos)
	if err != nil {
		return assemble[track.SkyTrack](nil, input, params, epoch), p.fail(ctx, span, ModeView, start, err)
	}

	results := skyResults(sats, samples, p.cfg.MinAltitudeDeg)
	p.succeed(span, ModeView, start, len(sats), len(results))
	return assemble(results, input, params, epoch), nil
}

// prepare loads and classifies element sets and builds the grid.
func (p *Pipeline) prepare(ctx context.Context, epoch time.Time) ([]track.TrackedSatellite, track.TimeGrid, error) {
	records, err := p.src.LoadSatellites(ctx, p.cfg.SourceURL, p.cfg.ForceReload)
	if err != nil {
		return nil, track.TimeGrid{}, &Error{Kind: KindSourceFetch, Err: err}
	}
	if r, ok := p.prop.(retainer); ok {
		r.Retain(records)
	}

	sats := track.Classify(records, p.cfg.ConstellationKeys)
	grid := track.NewTimeGrid(epoch, p.cfg.Interval, p.cfg.PastCount, p.cfg.FutureCount)
	return sats, grid, nil
}

// fail converts err into a kinded *Error and reports it once.
func (p *Pipeline) fail(ctx context.Context, span trace.Span, mode string, start time.Time, err error) error {
	var pe *Error
	switch {
	case ctx.Err() != nil:
		pe = &Error{Kind: KindCanceled, Err: err}
	case errors.As(err, &pe):
	default:
		pe = &Error{Kind: KindPropagation, Err: err}
	}

	elapsed := time.Since(start)
	metrics.RecordPipelineRun(mode, pe.Kind.String(), elapsed, 0)
	span.SetAttributes(attribute.String("mode", mode), attribute.String("failure.kind", pe.Kind.String()))
	span.RecordError(pe)
	span.SetStatus(codes.Error, pe.Kind.String())

	p.logger.Error("pipeline run failed",
		"mode", mode,
		"kind", pe.Kind.String(),
		"error", pe.Err,
		"duration_ms", elapsed.Milliseconds(),
	)
	return pe
}

func (p *Pipeline) succeed(span trace.Span, mode string, start time.Time, tracked, results int) {
	elapsed := time.Since(start)
	metrics.RecordPipelineRun(mode, "ok", elapsed, results)
	span.SetAttributes(
		attribute.String("mode", mode),
		attribute.Int("satellites", tracked),
		attribute.Int("results", results),
	)
	p.logger.Info("pipeline run completed",
		"mode", mode,
		"tracked", tracked,
		"results", results,
		"duration_ms", elapsed.Milliseconds(),
	)
}
