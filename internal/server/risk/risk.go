// Package risk turns pollutant readings into a 0–100 exposure score, a risk
// level and ordered advice. It is pure and safe for concurrent use.
package risk

import "math"

// Risk levels.
const (
	Low      = "low"
	Moderate = "moderate"
	High     = "high"
)

// Readings substituted for absent measurements.
const (
	DefaultPM25 = 30.0
	DefaultNO2  = 20.0
	DefaultCO   = 0.5
)

const (
	TipDelayWorkouts = "Delay outdoor workouts until pollution levels drop."
	TipWearMask      = "Wear a well-fitted mask outdoors."
	TipPreferTransit = "Prefer public transit over walking along busy roads."
	TipQuietRoutes   = "Choose routes through parks or low-traffic streets."
	TipCloseWindows  = "Keep windows closed during peak traffic hours."
)

// Assessment is the outcome of scoring one set of readings.
type Assessment struct {
	Score     int
	RiskLevel string
	Tips      []string
}

// Score assesses pm25 (µg/m³), no2 (µg/m³) and co (mg/m³). Nil readings
// fall back to DefaultPM25, DefaultNO2 and DefaultCO.
func Score(pm25, no2, co *float64) Assessment {
	pm := valueOr(pm25, DefaultPM25)
	no := valueOr(no2, DefaultNO2)
	c := valueOr(co, DefaultCO)

	pmPenalty := math.Min(pm/2, 60)
	noPenalty := math.Min(no/2.5, 30)
	coPenalty := math.Min(c*8, 10)

	score := int(math.Max(0, math.Round(100-pmPenalty-noPenalty-coPenalty)))
	if score > 100 {
		score = 100
	}

	return Assessment{
		Score:     score,
		RiskLevel: Level(score),
		Tips:      tips(pm, no),
	}
}

// Level maps a score to its risk level.
func Level(score int) string {
	switch {
	case score >= 75:
		return Low
	case score >= 45:
		return Moderate
	default:
		return High
	}
}

// PointsFor is the passport reward for logging an exposure with this score.
func PointsFor(score int) int {
	switch {
	case score >= 80:
		return 20
	case score >= 60:
		return 12
	default:
		return 6
	}
}

func tips(pm, no float64) []string {
	out := make([]string, 0, 5)
	if pm > 55 || no > 80 {
		out = append(out, TipDelayWorkouts)
	}
	if pm > 35 {
		out = append(out, TipWearMask)
	}
	if no > 40 {
		out = append(out, TipPreferTransit)
	}
	return append(out, TipQuietRoutes, TipCloseWindows)
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
