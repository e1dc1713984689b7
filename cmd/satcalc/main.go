// Command satcalc runs one map or sky-view computation and prints the
// resulting artifact as JSON on stdout. Settings come from the same
// SATORBIT_* environment as the service; flags override them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/katonobu/satellite-orbit/internal/config"
	"github.com/katonobu/satellite-orbit/internal/pipeline"
	"github.com/katonobu/satellite-orbit/internal/propagation"
	"github.com/katonobu/satellite-orbit/internal/tle"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: config.LogLevel()}))

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return exitError
	}

	fs := flag.NewFlagSet("satcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", pipeline.ModeMap, "computation to run: map or view")
	atFlag := fs.String("at", "", "requested instant, RFC 3339 (default now)")
	tzFlag := fs.String("tz", cfg.Location.String(), "output time zone: IANA name or UTC±HH:MM")
	lat := fs.Float64("lat", cfg.Observer.LatDeg, "observer latitude in degrees (view mode)")
	lon := fs.Float64("lon", cfg.Observer.LonDeg, "observer longitude in degrees (view mode)")
	alt := fs.Float64("alt", cfg.Observer.AltM, "observer altitude in meters (view mode)")
	reload := fs.Bool("reload", cfg.Pipeline.ForceReload, "bypass the TLE cache")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	loc, err := config.ParseLocation(*tzFlag)
	if err != nil {
		fmt.Fprintf(stderr, "satcalc: invalid -tz %q: %v\n", *tzFlag, err)
		return exitUsage
	}
	at := time.Now()
	if *atFlag != "" {
		if at, err = time.Parse(time.RFC3339, *atFlag); err != nil {
			fmt.Fprintf(stderr, "satcalc: invalid -at %q: want RFC 3339\n", *atFlag)
			return exitUsage
		}
	}
	at = at.In(loc)

	obs := pipeline.Observer{LatDeg: *lat, LonDeg: *lon, AltM: *alt}
	if *mode == pipeline.ModeView {
		if err := obs.Validate(); err != nil {
			fmt.Fprintf(stderr, "satcalc: %v\n", err)
			return exitUsage
		}
	}

	cfg.Pipeline.ForceReload = *reload
	src := tle.NewSource(cfg.TLE, nil, logger)
	pipe := pipeline.New(cfg.Pipeline, src, propagation.NewSGP4(logger), logger)

	var out any
	switch *mode {
	case pipeline.ModeMap:
		out, err = pipe.GroundTracks(ctx, at)
	case pipeline.ModeView:
		out, err = pipe.SkyView(ctx, at, obs)
	default:
		fmt.Fprintf(stderr, "satcalc: unknown -mode %q (want map or view)\n", *mode)
		return exitUsage
	}
	if err != nil {
		// The artifact is still well formed; the failure was logged by the
		// pipeline. Only non-run errors abort.
		if _, ok := pipeline.KindOf(err); !ok {
			fmt.Fprintf(stderr, "satcalc: %v\n", err)
			return exitError
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("writing output failed", "error", err)
		return exitError
	}
	return exitOK
}
