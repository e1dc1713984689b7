package tle

import (
	"sync/atomic"
	"time"
)

// Store holds the most recently loaded dataset for readers outside a
// pipeline run (readiness probe, dataset-age reporting).
type Store struct {
	dataset atomic.Pointer[TLEDataset]
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the current dataset, or nil if none has been loaded.
func (s *Store) Get() *TLEDataset {
	return s.dataset.Load()
}

// Set atomically replaces the current dataset.
func (s *Store) Set(ds *TLEDataset) {
	s.dataset.Store(ds)
}

// AgeSeconds returns the age of the current dataset in seconds,
// or -1 if no dataset is loaded.
func (s *Store) AgeSeconds() float64 {
	ds := s.dataset.Load()
	if ds == nil {
		return -1
	}
	return time.Since(ds.FetchedAt).Seconds()
}
