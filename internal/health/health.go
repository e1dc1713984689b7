// Package health serves liveness and readiness probes.
package health

import (
	"fmt"
	"net/http"
	"time"

	"github.com/katonobu/satellite-orbit/internal/tle"
)

// Healthz returns 200 "ok\n" unconditionally.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Readyz reports ready once an element-set dataset has been loaded, from
// the network or the disk cache.
func Readyz(store *tle.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		ds := store.Get()
		if ds == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("not ready: no element sets loaded\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ready\nsatellites: %d\norigin: %s\nage_seconds: %.0f\nepoch_min: %s\nepoch_max: %s\n",
			len(ds.Satellites), ds.Origin, store.AgeSeconds(),
			ds.EpochRange.Min.UTC().Format(time.RFC3339), ds.EpochRange.Max.UTC().Format(time.RFC3339))
	}
}
