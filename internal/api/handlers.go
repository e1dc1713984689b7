package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/katonobu/satellite-orbit/internal/config"
	"github.com/katonobu/satellite-orbit/internal/httputil"
	"github.com/katonobu/satellite-orbit/internal/pipeline"
)

// FailureHeader names the failure kind of a fail-closed run. The body is
// still a well-formed artifact with no results.
const FailureHeader = "X-Pipeline-Failure"

type handlers struct {
	cfg    Config
	pipe   *pipeline.Pipeline
	logger *slog.Logger
	now    func() time.Time
}

// runParams are the query parameters shared by map and view.
type runParams struct {
	at     time.Time
	reload bool
}

func (h *handlers) parseRunParams(q url.Values) (runParams, error) {
	loc := h.cfg.Location
	if tz := q.Get("tz"); tz != "" {
		// An unescaped '+' in "UTC+09:00" arrives as a space.
		tz = strings.ReplaceAll(tz, " ", "+")
		l, err := config.ParseLocation(tz)
		if err != nil {
			return runParams{}, fmt.Errorf("invalid tz %q", tz)
		}
		loc = l
	}

	at := h.now()
	if s := q.Get("at"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return runParams{}, fmt.Errorf("invalid at %q: want RFC 3339", s)
		}
		at = t
	}

	reload := false
	if s := q.Get("reload"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return runParams{}, fmt.Errorf("invalid reload %q", s)
		}
		reload = b
	}
	return runParams{at: at.In(loc), reload: reload}, nil
}

func parseFloatParam(q url.Values, name string, def float64) (float64, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

func (h *handlers) parseObserver(q url.Values) (pipeline.Observer, error) {
	obs := h.cfg.Observer
	var err error
	if obs.LatDeg, err = parseFloatParam(q, "lat", obs.LatDeg); err != nil {
		return obs, err
	}
	if obs.LonDeg, err = parseFloatParam(q, "lon", obs.LonDeg); err != nil {
		return obs, err
	}
	if obs.AltM, err = parseFloatParam(q, "alt", obs.AltM); err != nil {
		return obs, err
	}
	return obs, obs.Validate()
}

func (h *handlers) pipelineFor(p runParams) *pipeline.Pipeline {
	if p.reload {
		return h.pipe.WithForceReload(true)
	}
	return h.pipe
}

// respond writes a run's output. Fail-closed runs still answer 200 so
// renderers always receive a drawable (possibly empty) artifact.
func (h *handlers) respond(w http.ResponseWriter, out any, err error) {
	if err != nil {
		kind, ok := pipeline.KindOf(err)
		if !ok {
			httputil.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set(FailureHeader, kind.String())
	}
	h.writeJSON(w, out)
}

// writeJSON answers 200 with v, or 500 when v cannot be encoded.
func (h *handlers) writeJSON(w http.ResponseWriter, v any) {
	if err := httputil.WriteJSON(w, http.StatusOK, v); err != nil {
		h.logger.Error("write response failed", "error", err)
		w.Header().Del(FailureHeader)
		httputil.WriteError(w, http.StatusInternalServerError, "response encoding failed")
	}
}

func (h *handlers) groundTracks(w http.ResponseWriter, r *http.Request) {
	p, err := h.parseRunParams(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := h.pipelineFor(p).GroundTracks(r.Context(), p.at)
	h.respond(w, out, err)
}

func (h *handlers) skyView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := h.parseRunParams(q)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	obs, err := h.parseObserver(q)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := h.pipelineFor(p).SkyView(r.Context(), p.at, obs)
	h.respond(w, out, err)
}

type configResponse struct {
	Params   pipeline.Params   `json:"params"`
	Workers  int               `json:"workers"`
	Timezone string            `json:"timezone"`
	Observer pipeline.Observer `json:"observer"`
}

func (h *handlers) config(w http.ResponseWriter, r *http.Request) {
	cfg := h.pipe.Config()
	h.writeJSON(w, configResponse{
		Params:   cfg.Params(),
		Workers:  cfg.Workers,
		Timezone: h.cfg.Location.String(),
		Observer: h.cfg.Observer,
	})
}
