package httputil

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestClientIPRemoteAddr(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.168.1.1:12345", "192.168.1.1"},
		{"[::1]:12345", "::1"},
		{"192.168.1.1", "192.168.1.1"},
	}
	for _, tt := range tests {
		r := &http.Request{RemoteAddr: tt.remoteAddr}
		if got := ClientIP(r, false); got != tt.want {
			t.Errorf("ClientIP(%q, false) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}

func TestClientIPProxyHeaders(t *testing.T) {
	tests := []struct {
		name  string
		xff   string
		xri   string
		trust bool
		want  string
	}{
		{"xff first entry", "1.2.3.4, 10.0.0.1", "", true, "1.2.3.4"},
		{"x-real-ip fallback", "", "5.6.7.8", true, "5.6.7.8"},
		{"xff wins over x-real-ip", "1.2.3.4", "5.6.7.8", true, "1.2.3.4"},
		{"blank xff falls through", " ,10.0.0.9", "5.6.7.8", true, "5.6.7.8"},
		{"untrusted ignores headers", "1.2.3.4", "5.6.7.8", false, "10.0.0.1"},
		{"no headers", "", "", true, "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &http.Request{RemoteAddr: "10.0.0.1:1234", Header: http.Header{}}
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r, tt.trust); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	got := RequestID(r)
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("generated id %q is not a UUID: %v", got, err)
	}

	const caller = "0b4e7f52-4c1e-4d7a-9a57-2f1a0a0d6c11"
	r.Header.Set(RequestIDHeader, caller)
	if got := RequestID(r); got != caller {
		t.Errorf("RequestID = %q, want caller id %q", got, caller)
	}

	r.Header.Set(RequestIDHeader, "not-a-uuid\nInjected: 1")
	if got := RequestID(r); got == "not-a-uuid\nInjected: 1" {
		t.Error("malformed caller id was passed through")
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusBadRequest, "bad tz")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "bad tz" {
		t.Errorf("error = %q, want %q", body["error"], "bad tz")
	}
}

func TestWriteJSONEncodeFailureLeavesResponseUntouched(t *testing.T) {
	w := httptest.NewRecorder()
	err := WriteJSON(w, http.StatusOK, map[string]float64{"lat": math.NaN()})
	if err == nil {
		t.Fatal("expected an encode error for NaN")
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "" {
		t.Errorf("content-type = %q, want unset", ct)
	}

	// The caller can still answer with an error status.
	WriteError(w, http.StatusInternalServerError, "encode failed")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
