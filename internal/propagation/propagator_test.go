package propagation

import (
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/katonobu/satellite-orbit/internal/tle"
	"github.com/katonobu/satellite-orbit/internal/transform"
	"gonum.org/v1/gonum/spatial/r3"
)

var gpsEntry = tle.TLEEntry{
	NORADID: 24876,
	Name:    "GPS BIIR-2  (PRN 13)",
	Line1:   "1 24876U 97035A   24290.51226660  .00000064  00000+0  00000+0 0  9994",
	Line2:   "2 24876  55.4960 118.4578 0093307  58.4585 302.4632  2.00563223192778",
}

var qzsEntry = tle.TLEEntry{
	NORADID: 42738,
	Name:    "QZS-2 (QZSS/PRN 184)",
	Line1:   "1 42738U 17028A   24290.50000000 -.00000138  00000+0  00000+0 0  9995",
	Line2:   "2 42738  41.0312 159.0925 0745003 270.2185 283.2412  1.00267102126305",
}

var testTime = time.Date(2024, 10, 16, 12, 5, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidateTLELines(t *testing.T) {
	tests := []struct {
		name    string
		line1   string
		line2   string
		wantErr bool
	}{
		{"valid", gpsEntry.Line1, gpsEntry.Line2, false},
		{"short line1", gpsEntry.Line1[:60], gpsEntry.Line2, true},
		{"short line2", gpsEntry.Line1, gpsEntry.Line2[:60], true},
		{"swapped", gpsEntry.Line2, gpsEntry.Line1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTLELines(tt.line1, tt.line2)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateTLELines() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubPointGPS(t *testing.T) {
	p := NewSGP4(testLogger())

	gp, err := p.SubPoint(gpsEntry, testTime)
	if err != nil {
		t.Fatalf("SubPoint: %v", err)
	}
	// Sub-point latitude cannot exceed the orbital inclination.
	if math.Abs(gp.LatDeg) > 55.6 {
		t.Errorf("lat = %.3f, exceeds inclination", gp.LatDeg)
	}
	if gp.LonDeg <= -180 || gp.LonDeg > 180 {
		t.Errorf("lon = %.3f, out of (-180, 180]", gp.LonDeg)
	}
	if gp.AltM < 19_000e3 || gp.AltM > 21_500e3 {
		t.Errorf("alt = %.0f m, expected MEO altitude", gp.AltM)
	}
}

func TestSubPointDeterministic(t *testing.T) {
	p := NewSGP4(testLogger())

	a, err := p.SubPoint(qzsEntry, testTime)
	if err != nil {
		t.Fatalf("SubPoint: %v", err)
	}
	b, err := p.SubPoint(qzsEntry, testTime)
	if err != nil {
		t.Fatalf("SubPoint: %v", err)
	}
	if a != b {
		t.Errorf("repeated SubPoint differs: %+v vs %+v", a, b)
	}

	// A fresh propagator must agree with the cached one.
	c, err := NewSGP4(testLogger()).SubPoint(qzsEntry, testTime)
	if err != nil {
		t.Fatalf("SubPoint: %v", err)
	}
	if a != c {
		t.Errorf("fresh propagator differs: %+v vs %+v", a, c)
	}
}

func TestSubPointMovesOverTime(t *testing.T) {
	p := NewSGP4(testLogger())

	a, err := p.SubPoint(gpsEntry, testTime)
	if err != nil {
		t.Fatalf("SubPoint: %v", err)
	}
	b, err := p.SubPoint(gpsEntry, testTime.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("SubPoint: %v", err)
	}
	if a.LatDeg == b.LatDeg && a.LonDeg == b.LonDeg {
		t.Errorf("sub-point did not move in 30 minutes: %+v", a)
	}
}

func TestLookAngles(t *testing.T) {
	p := NewSGP4(testLogger())
	obs := transform.NewObserverPosition(35.400334, 139.543152, 0)

	for _, e := range []tle.TLEEntry{gpsEntry, qzsEntry} {
		la, err := p.LookAngles(e, obs, testTime)
		if err != nil {
			t.Fatalf("%s: LookAngles: %v", e.Name, err)
		}
		if la.AzimuthDeg < 0 || la.AzimuthDeg >= 360 {
			t.Errorf("%s: az = %.3f, out of [0, 360)", e.Name, la.AzimuthDeg)
		}
		if la.ElevationDeg < -90 || la.ElevationDeg > 90 {
			t.Errorf("%s: el = %.3f, out of [-90, 90]", e.Name, la.ElevationDeg)
		}
		if la.RangeKm < 19_000 || la.RangeKm > 50_000 {
			t.Errorf("%s: range = %.0f km, implausible", e.Name, la.RangeKm)
		}
	}
}

func TestInvalidEntryReturnsError(t *testing.T) {
	p := NewSGP4(testLogger())
	bad := tle.TLEEntry{NORADID: 1, Name: "BROKEN", Line1: "1 00001U", Line2: "2 00001"}

	if _, err := p.SubPoint(bad, testTime); err == nil {
		t.Error("SubPoint: expected error for malformed element set")
	}
	if _, err := p.LookAngles(bad, transform.NewObserverPosition(0, 0, 0), testTime); err == nil {
		t.Error("LookAngles: expected error for malformed element set")
	}
	if p.Len() != 0 {
		t.Errorf("cached %d models, want 0", p.Len())
	}
}

func TestCheckECEF(t *testing.T) {
	tests := []struct {
		name    string
		pos     r3.Vec
		wantErr bool
	}{
		{"gps shell", r3.Vec{X: 26_560e3}, false},
		{"low orbit", r3.Vec{Y: 6_771e3}, false},
		{"geocenter", r3.Vec{}, true},
		{"below surface", r3.Vec{Z: 6_000e3}, true},
		{"beyond geo", r3.Vec{X: 60_000e3}, true},
		{"nan", r3.Vec{X: math.NaN(), Y: 1, Z: 1}, true},
		{"inf", r3.Vec{X: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkECEF(24876, testTime, tt.pos)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkECEF(%v) error = %v, wantErr %v", tt.pos, err, tt.wantErr)
			}
		})
	}
}

func TestModelCacheRetain(t *testing.T) {
	p := NewSGP4(testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, e := range []tle.TLEEntry{gpsEntry, qzsEntry} {
				if _, err := p.SubPoint(e, testTime); err != nil {
					t.Errorf("SubPoint: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if p.Len() != 2 {
		t.Fatalf("cached %d models, want 2", p.Len())
	}

	p.Retain([]tle.TLEEntry{qzsEntry})
	if p.Len() != 1 {
		t.Errorf("after Retain: cached %d models, want 1", p.Len())
	}
	p.Retain(nil)
	if p.Len() != 0 {
		t.Errorf("after Retain(nil): cached %d models, want 0", p.Len())
	}
}
