package pose

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SettleEvent is a detected foot placement: the moment a limb's motion
// stabilises onto a hold.
type SettleEvent struct {
	Frame    int     // Index into the limb's trajectory
	Limb     string  // Landmark name (left_ankle, right_ankle)
	Jitter   float64 // Positional spread in the post-settle window
	Position Point   // Limb position at settling
}

// DetectSettleEvents scans each limb trajectory independently for foot
// placements. A settle is declared when velocity drops below the settle
// threshold and stays below threshold*sustain for the next MinSettleFrames
// samples. Jitter is the sum of the population standard deviations of the x
// and y coordinates over up to JitterWindow post-settle samples (zero when
// fewer than two are available). After an event the scan skips ahead by
// MinSettleFrames+10 samples so one placement is not reported twice.
//
// Limbs with fewer than MinSettleFrames+10 samples, or whose timestamp slice
// has drifted out of parity, are skipped entirely. Velocities use each limb's
// own paired timestamps, so sparse visibility does not distort speeds.
func DetectSettleEvents(limbs map[string]Trajectory, cfg Config) []SettleEvent {
	names := make([]string, 0, len(limbs))
	for name := range limbs {
		names = append(names, name)
	}
	sort.Strings(names)

	sustain := cfg.SettleVelocityThreshold * cfg.SettleSustainFactor

	var events []SettleEvent
	for _, limb := range names {
		tr := limbs[limb]
		if tr.Len() < cfg.MinSettleFrames+10 || tr.Len() != len(tr.Times) {
			continue
		}

		velocities := Velocities(tr.Points, tr.Times)

		i := 0
		for i < len(velocities)-cfg.MinSettleFrames {
			if velocities[i] >= cfg.SettleVelocityThreshold {
				i++
				continue
			}

			settled := true
			for _, v := range velocities[i : i+cfg.MinSettleFrames] {
				if v >= sustain {
					settled = false
					break
				}
			}
			if !settled {
				i++
				continue
			}

			postStart := i + cfg.MinSettleFrames
			postLen := min(cfg.JitterWindow, tr.Len()-postStart)
			if postLen > 0 {
				events = append(events, SettleEvent{
					Frame:    i,
					Limb:     limb,
					Jitter:   positionJitter(tr.Points[postStart : postStart+postLen]),
					Position: tr.Points[i],
				})
			}

			i += cfg.MinSettleFrames + 10
		}
	}

	return events
}

// positionJitter sums the population standard deviations of the x and y
// coordinates. Fewer than two samples have no measurable spread.
func positionJitter(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return stat.PopStdDev(xs, nil) + stat.PopStdDev(ys, nil)
}

// StabilityScore summarises settle events. The score is the clean-placement
// fraction; with zero detected placements it defaults to 1.0 because absence
// of evidence is not penalised.
func StabilityScore(events []SettleEvent, jitterThreshold float64) (avgJitter float64, clean, total int, score float64) {
	if len(events) == 0 {
		return 0, 0, 0, 1.0
	}

	jitters := make([]float64, len(events))
	for i, e := range events {
		jitters[i] = e.Jitter
		if e.Jitter < jitterThreshold {
			clean++
		}
	}
	return stat.Mean(jitters, nil), clean, len(events), float64(clean) / float64(len(events))
}
