package types

// Surface values as reported by course metadata.
const (
	GroundTurf = 1
	GroundDirt = 2
)

// Course is an opaque course descriptor forwarded to the oracle, of which
// only distance and surface are interpreted locally.
type Course struct {
	ID             string         `json:"id"`
	DistanceMeters int            `json:"distance_m"`
	Ground         int            `json:"ground"`
	TrackName      string         `json:"track_name,omitempty"`
	Raw            map[string]any `json:"raw,omitempty"`
}

// DistanceType buckets the course distance into the game's aptitude
// categories.
func (c *Course) DistanceType() string {
	switch {
	case c.DistanceMeters <= 0:
		return ""
	case c.DistanceMeters <= 1400:
		return "Sprint"
	case c.DistanceMeters <= 1800:
		return "Mile"
	case c.DistanceMeters <= 2400:
		return "Medium"
	default:
		return "Long"
	}
}

// SurfaceLabel returns the aptitude key for the course surface.
func (c *Course) SurfaceLabel() string {
	if c.Ground == GroundDirt {
		return "Dirt"
	}
	return "Turf"
}
