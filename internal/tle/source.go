package tle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/katonobu/satellite-orbit/internal/metrics"
)

// ErrNoElementSets is returned when a download contains no usable element
// sets.
var ErrNoElementSets = errors.New("no element sets in response")

// SourceConfig controls how element sets are loaded.
type SourceConfig struct {
	CacheDir string
	MaxFiles int
	// MaxAge is how long a cached download is served without refetching.
	// Zero or negative means a cached file never expires.
	MaxAge time.Duration
}

// Source loads named element sets, preferring the on-disk cache and
// falling back to the network.
type Source struct {
	fetcher *Fetcher
	cache   *Cache
	store   *Store
	maxAge  time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewSource creates a Source. store may be nil.
func NewSource(cfg SourceConfig, store *Store, logger *slog.Logger) *Source {
	return &Source{
		fetcher: NewFetcher(logger),
		cache:   NewCache(cfg.CacheDir, cfg.MaxFiles),
		store:   store,
		maxAge:  cfg.MaxAge,
		logger:  logger,
		now:     time.Now,
	}
}

// LoadSatellites returns the element sets published at url in file order.
//
// Unless forceReload is set, a cached download younger than MaxAge is used
// without touching the network. When the network fetch fails and a stale
// cached copy exists (and forceReload is not set), the stale copy is used.
func (s *Source) LoadSatellites(ctx context.Context, url string, forceReload bool) ([]TLEEntry, error) {
	key := KeyForURL(url)

	var (
		cached   []byte
		cachedAt time.Time
	)
	if !forceReload {
		data, ts, err := s.cache.LoadLatest(key)
		switch {
		case err == nil:
			cached, cachedAt = data, ts
			if s.maxAge <= 0 || s.now().Sub(ts) <= s.maxAge {
				return s.parse(url, "cache", data, ts)
			}
			s.logger.Info("cached TLE data expired, refetching", "url", url, "cached_at", ts.Format(time.RFC3339))
		case errors.Is(err, ErrNoCache):
		default:
			s.logger.Warn("reading TLE cache failed", "url", url, "error", err)
		}
	}

	body, err := s.fetcher.Fetch(ctx, url)
	var entries []TLEEntry
	if err == nil {
		entries, err = s.decode(body)
	}
	metrics.RecordTLELoad("network", err)
	if err != nil {
		if cached != nil {
			s.logger.Warn("TLE fetch failed, serving stale cache",
				"url", url,
				"cached_at", cachedAt.Format(time.RFC3339),
				"error", err,
			)
			return s.parse(url, "cache", cached, cachedAt)
		}
		return nil, fmt.Errorf("loading element sets from %s: %w", url, err)
	}

	fetchedAt := s.now()
	if err := s.cache.Write(key, body, fetchedAt); err != nil {
		s.logger.Warn("writing TLE cache failed", "url", url, "error", err)
	}
	s.publish(url, "network", fetchedAt, entries)
	return entries, nil
}

// decode parses a download. A body without a single usable element set
// (an error page, "No GP data found") is rejected so it never replaces a
// good cached copy.
func (s *Source) decode(data []byte) ([]TLEEntry, error) {
	entries, err := Parse(bytes.NewReader(data), s.logger)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w (%d bytes)", ErrNoElementSets, len(data))
	}
	return entries, nil
}

func (s *Source) parse(url, origin string, data []byte, ts time.Time) ([]TLEEntry, error) {
	entries, err := Parse(bytes.NewReader(data), s.logger)
	metrics.RecordTLELoad(origin, err)
	if err != nil {
		return nil, fmt.Errorf("parsing element sets from %s: %w", url, err)
	}
	s.publish(url, origin, ts, entries)
	return entries, nil
}

func (s *Source) publish(url, origin string, ts time.Time, entries []TLEEntry) {
	ds := NewDataset(url, origin, ts, entries)
	if s.store != nil {
		s.store.Set(ds)
	}
	metrics.SetTLEDatasetCount(len(entries))
	s.logger.Debug("element sets loaded",
		"url", url,
		"origin", origin,
		"count", len(entries),
		"epoch_min", ds.EpochRange.Min.Format(time.RFC3339),
		"epoch_max", ds.EpochRange.Max.Format(time.RFC3339),
	)
}

// Warm loads the newest cached download for url into the store without
// touching the network, regardless of age. It returns ErrNoCache when
// nothing is cached.
func (s *Source) Warm(url string) (int, error) {
	data, ts, err := s.cache.LoadLatest(KeyForURL(url))
	if err != nil {
		return 0, err
	}
	entries, err := s.parse(url, "cache", data, ts)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
