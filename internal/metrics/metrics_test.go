package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/metrics", "/metrics"},
		{"/", "/"},
		{"/api/v1/map", "/api/v1/map"},
		{"/api/v1/view", "/api/v1/view"},
		{"/api/v1/config", "/api/v1/config"},

		{"/wp-admin", "other"},
		{"/robots.txt", "other"},
		{"/.env", "other"},
		{"/api/v2/map", "other"},
		{"/api/v1/map/extra", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizeRoute(tt.path); got != tt.want {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestMiddlewareCollapsesUnknownPaths(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", http.MethodGet, "404"))
	for _, p := range []string{"/a", "/b", "/c"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", http.MethodGet, "404"))

	if after-before != 3 {
		t.Errorf("other/GET/404 grew by %v, want 3", after-before)
	}
}

func TestRecordPipelineRun(t *testing.T) {
	before := testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("map", "ok"))
	RecordPipelineRun("map", "ok", 120*time.Millisecond, 31)

	if got := testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("map", "ok")) - before; got != 1 {
		t.Errorf("runs counter grew by %v, want 1", got)
	}
	if got := testutil.ToFloat64(trackedSatellites.WithLabelValues("map")); got != 31 {
		t.Errorf("tracked satellites = %v, want 31", got)
	}
}

func TestRecordTLELoad(t *testing.T) {
	okBefore := testutil.ToFloat64(tleLoadsTotal.WithLabelValues("network", "ok"))
	errBefore := testutil.ToFloat64(tleLoadsTotal.WithLabelValues("network", "error"))

	RecordTLELoad("network", nil)
	RecordTLELoad("network", errors.New("boom"))
	RecordTLELoad("network", errors.New("boom"))

	if got := testutil.ToFloat64(tleLoadsTotal.WithLabelValues("network", "ok")) - okBefore; got != 1 {
		t.Errorf("ok loads grew by %v, want 1", got)
	}
	if got := testutil.ToFloat64(tleLoadsTotal.WithLabelValues("network", "error")) - errBefore; got != 2 {
		t.Errorf("error loads grew by %v, want 2", got)
	}
}
