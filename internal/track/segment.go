package track

// crossesAntimeridian reports whether moving from prevLon to lon wraps
// around ±180°. A sign flip near 0° is not a crossing.
func crossesAntimeridian(prevLon, lon float64) bool {
	return prevLon*lon < 0 && (lon < -90 || lon > 90)
}

// SplitAtAntimeridian cuts a ground track wherever it wraps around ±180°.
// The sample that triggers a cut starts the next segment. The trailing
// segment is always emitted, even with a single point.
func SplitAtAntimeridian(points []GroundPoint) []GroundSegment {
	if len(points) == 0 {
		return nil
	}

	var segments []GroundSegment
	var buf GroundSegment
	for i, p := range points {
		if i > 0 && crossesAntimeridian(points[i-1].Lon, p.Lon) {
			segments = append(segments, buf)
			buf = nil
		}
		buf = append(buf, p)
	}
	return append(segments, buf)
}

// SplitVisibleRuns groups consecutive samples with Alt > minAlt into
// segments. Samples at or below minAlt are never emitted.
func SplitVisibleRuns(points []SkyPoint, minAlt float64) []SkySegment {
	var segments []SkySegment
	var buf SkySegment
	for _, p := range points {
		if p.Alt > minAlt {
			buf = append(buf, p)
			continue
		}
		if len(buf) > 0 {
			segments = append(segments, buf)
			buf = nil
		}
	}
	if len(buf) > 0 {
		segments = append(segments, buf)
	}
	return segments
}

// BuildGroundTrack assembles the map-mode result. The current point is
// always attached.
func BuildGroundTrack(sat TrackedSatellite, samples []GroundPoint, current GroundPoint) GroundTrack {
	segments := SplitAtAntimeridian(samples)
	if segments == nil {
		segments = []GroundSegment{}
	}
	return GroundTrack{
		Name:          sat.Name,
		Constellation: sat.Constellation,
		Segments:      segments,
		Current:       &current,
	}
}

// BuildSkyTrack assembles the sky-view result. The current point is kept
// only when visible. ok is false when the satellite has neither a visible
// current point nor any visible segment and must be dropped.
func BuildSkyTrack(sat TrackedSatellite, samples []SkyPoint, current SkyPoint, minAlt float64) (st SkyTrack, ok bool) {
	segments := SplitVisibleRuns(samples, minAlt)

	var cur *SkyPoint
	if current.Alt > minAlt {
		cur = &current
	}
	if cur == nil && len(segments) == 0 {
		return SkyTrack{}, false
	}
	if segments == nil {
		segments = []SkySegment{}
	}
	return SkyTrack{
		Name:          sat.Name,
		Constellation: sat.Constellation,
		Segments:      segments,
		Current:       cur,
	}, true
}
