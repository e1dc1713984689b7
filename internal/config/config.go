// Package config reads service settings from SATORBIT_* environment
// variables. Malformed optional values are logged and replaced by their
// defaults; only settings that would make the service unsafe to start
// (auth without a token, an unusable pipeline configuration) are errors.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/katonobu/satellite-orbit/internal/auth"
	"github.com/katonobu/satellite-orbit/internal/pipeline"
	"github.com/katonobu/satellite-orbit/internal/tle"
	"github.com/katonobu/satellite-orbit/internal/tracing"
)

// Config is the full service configuration.
type Config struct {
	HTTPAddr   string
	Pipeline   pipeline.Config
	TLE        tle.SourceConfig
	Location   *time.Location
	Observer   pipeline.Observer
	Auth       auth.Config
	TrustProxy bool
	Tracing    tracing.Config
}

// DefaultLocation is the zone requests are rendered in when none is given.
var DefaultLocation = time.FixedZone("UTC+09:00", 9*3600)

// DefaultObserver is the sky-view ground station used when none is given.
var DefaultObserver = pipeline.Observer{LatDeg: 35.400334, LonDeg: 139.543152}

// Load reads every SATORBIT_* setting.
func Load(logger *slog.Logger) (Config, error) {
	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPAddr:   envString("SATORBIT_HTTP_ADDR", ":8080"),
		Pipeline:   loadPipelineConfig(logger),
		TLE:        loadTLEConfig(logger),
		Location:   loadLocation(logger),
		Observer:   loadObserver(logger),
		Auth:       authCfg,
		TrustProxy: envBool(logger, "SATORBIT_TRUST_PROXY", false),
		Tracing:    loadTracingConfig(logger),
	}
	if err := cfg.Pipeline.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid pipeline configuration: %w", err)
	}
	return cfg, nil
}

// LogLevel reads SATORBIT_LOG_LEVEL (debug|info|warn|error). It runs before
// a logger exists, so bad values silently fall back to info.
func LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(os.Getenv("SATORBIT_LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func loadPipelineConfig(logger *slog.Logger) pipeline.Config {
	cfg := pipeline.DefaultConfig()

	cfg.Interval = time.Duration(envInt(logger, "SATORBIT_INTERVAL", 300, 1)) * time.Second
	cfg.PastCount = envInt(logger, "SATORBIT_PAST_COUNT", cfg.PastCount, 0)
	cfg.FutureCount = envInt(logger, "SATORBIT_FUTURE_COUNT", cfg.FutureCount, 0)
	cfg.MinAltitudeDeg = envFloat(logger, "SATORBIT_MIN_ALT", cfg.MinAltitudeDeg)
	cfg.Workers = envInt(logger, "SATORBIT_WORKERS", runtime.NumCPU(), 1)
	cfg.ForceReload = envBool(logger, "SATORBIT_FORCE_RELOAD", false)
	cfg.SourceURL = envString("SATORBIT_TLE_SOURCE_URL", cfg.SourceURL)

	if v := os.Getenv("SATORBIT_CONSTELLATIONS"); v != "" {
		var keys []string
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		cfg.ConstellationKeys = keys
	}

	logger.Info("pipeline config",
		"interval_seconds", cfg.Interval.Seconds(),
		"past_count", cfg.PastCount,
		"future_count", cfg.FutureCount,
		"min_alt", cfg.MinAltitudeDeg,
		"constellations", cfg.ConstellationKeys,
		"source_url", cfg.SourceURL,
		"workers", cfg.Workers,
	)
	return cfg
}

func loadTLEConfig(logger *slog.Logger) tle.SourceConfig {
	cfg := tle.SourceConfig{
		CacheDir: envString("SATORBIT_TLE_CACHE_DIR", "/tmp/satorbit/tle"),
		MaxFiles: envInt(logger, "SATORBIT_TLE_MAX_FILES", 5, 1),
		MaxAge:   time.Duration(envInt(logger, "SATORBIT_TLE_MAX_AGE", 86400, 0)) * time.Second,
	}
	logger.Info("TLE config",
		"cache_dir", cfg.CacheDir,
		"max_files", cfg.MaxFiles,
		"max_age_seconds", cfg.MaxAge.Seconds(),
	)
	return cfg
}

var offsetZone = regexp.MustCompile(`^(?:UTC)?([+-])(\d{2}):(\d{2})$`)

// ParseLocation accepts an IANA zone name ("Asia/Tokyo", "UTC") or a fixed
// offset ("UTC+09:00", "-05:30").
func ParseLocation(s string) (*time.Location, error) {
	if m := offsetZone.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[2])
		mins, _ := strconv.Atoi(m[3])
		if h > 14 || mins > 59 {
			return nil, fmt.Errorf("offset %q out of range", s)
		}
		off := h*3600 + mins*60
		if m[1] == "-" {
			off = -off
		}
		return time.FixedZone(fmt.Sprintf("UTC%s%s:%s", m[1], m[2], m[3]), off), nil
	}
	return time.LoadLocation(s)
}

func loadLocation(logger *slog.Logger) *time.Location {
	v := os.Getenv("SATORBIT_TZ")
	if v == "" {
		return DefaultLocation
	}
	loc, err := ParseLocation(v)
	if err != nil {
		logger.Warn("invalid SATORBIT_TZ value, using default", "value", v, "default", DefaultLocation.String(), "error", err)
		return DefaultLocation
	}
	return loc
}

func loadObserver(logger *slog.Logger) pipeline.Observer {
	obs := pipeline.Observer{
		LatDeg: envFloat(logger, "SATORBIT_OBSERVER_LAT", DefaultObserver.LatDeg),
		LonDeg: envFloat(logger, "SATORBIT_OBSERVER_LON", DefaultObserver.LonDeg),
		AltM:   envFloat(logger, "SATORBIT_OBSERVER_ALT", DefaultObserver.AltM),
	}
	if err := obs.Validate(); err != nil {
		logger.Warn("invalid observer location, using default", "error", err)
		return DefaultObserver
	}
	return obs
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	if v := os.Getenv("SATORBIT_AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, errors.New("SATORBIT_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("SATORBIT_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("SATORBIT_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}
	return cfg, nil
}

func loadTracingConfig(logger *slog.Logger) tracing.Config {
	cfg := tracing.Config{
		Enabled:     envBool(logger, "SATORBIT_TRACING_ENABLED", false),
		ServiceName: "satorbit",
		Exporter:    strings.ToLower(envString("SATORBIT_TRACING_EXPORTER", "stdout")),
		Endpoint:    os.Getenv("SATORBIT_TRACING_ENDPOINT"),
		SampleRatio: envFloat(logger, "SATORBIT_TRACING_SAMPLE_RATIO", 1),
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		logger.Warn("invalid SATORBIT_TRACING_SAMPLE_RATIO value, using default", "value", cfg.SampleRatio, "default", 1)
		cfg.SampleRatio = 1
	}
	return cfg
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(logger *slog.Logger, name string, def, minVal int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < minVal {
		logger.Warn("invalid "+name+" value, using default", "value", v, "default", def)
		return def
	}
	return n
}

func envFloat(logger *slog.Logger, name string, def float64) float64 {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn("invalid "+name+" value, using default", "value", v, "default", def)
		return def
	}
	return f
}

func envBool(logger *slog.Logger, name string, def bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("invalid "+name+" value, using default", "value", v, "default", def)
		return def
	}
	return b
}
