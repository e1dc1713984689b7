package propagation

import (
	"fmt"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"gonum.org/v1/gonum/spatial/r3"
)

// Model is an initialized SGP4 model for one element set.
//
// go-satellite's Propagate takes the Satellite by value, so SGP4 error codes
// are not visible after propagation. Failures are detected from the output
// instead; see checkECEF.
type Model struct {
	sat     satellite.Satellite
	noradID int
}

// NewModel parses the two element lines and initializes SGP4 (WGS-84).
//
// The lines are pre-validated because go-satellite calls log.Fatal on
// malformed input, which would take the whole process down.
func NewModel(line1, line2 string, noradID int) (*Model, error) {
	if err := validateTLELines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", noradID, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", noradID, sat.Error, sat.ErrorStr)
	}
	return &Model{sat: sat, noradID: noradID}, nil
}

func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// PositionTEME returns the raw TEME position (km) at t. Sub-second
// precision is dropped; go-satellite only accepts whole seconds. The result
// is not checked for plausibility.
func (m *Model) PositionTEME(t time.Time) r3.Vec {
	t = t.UTC()
	pos, _ := satellite.Propagate(m.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	return r3.Vec{X: pos.X, Y: pos.Y, Z: pos.Z}
}
