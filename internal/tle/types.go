package tle

import "time"

// TLEEntry is one named two-line element set. Name is the free-text title
// line (e.g. "GPS BIIR-2  (PRN 13)" or "QZS-1 (QZSS/PRN 183)").
type TLEEntry struct {
	NORADID int
	Name    string
	Epoch   time.Time
	Line1   string
	Line2   string
}

// EpochRange represents the minimum and maximum epoch times in a dataset.
type EpochRange struct {
	Min time.Time
	Max time.Time
}

// TLEDataset is the result of one successful element-set load.
type TLEDataset struct {
	Source     string // URL the data came from
	Origin     string // "cache" or "network"
	FetchedAt  time.Time
	EpochRange EpochRange
	Satellites []TLEEntry
}

// NewDataset builds a dataset and computes its epoch range.
func NewDataset(source, origin string, fetchedAt time.Time, entries []TLEEntry) *TLEDataset {
	ds := &TLEDataset{
		Source:     source,
		Origin:     origin,
		FetchedAt:  fetchedAt,
		Satellites: entries,
	}
	for i, e := range entries {
		if i == 0 || e.Epoch.Before(ds.EpochRange.Min) {
			ds.EpochRange.Min = e.Epoch
		}
		if i == 0 || e.Epoch.After(ds.EpochRange.Max) {
			ds.EpochRange.Max = e.Epoch
		}
	}
	return ds
}
