package pose

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// minEntropyPoints and minEntropyDisplacements guard the entropy estimate:
// with too few samples the bin occupancy is noise, not signal.
const (
	minEntropyPoints        = 4
	minEntropyDisplacements = 3
)

// DirectionalEntropy buckets the direction angle of every non-degenerate hip
// displacement into equal-width angular bins spanning a full turn, then
// returns the Shannon entropy of the bin occupancy normalised to [0, 1] by
// the maximum possible entropy. Straight-line motion scores 0; motion spread
// evenly over every direction scores 1.
func DirectionalEntropy(points []Point, bins int) float64 {
	if bins < 2 || len(points) < minEntropyPoints {
		return 0
	}

	counts := make([]float64, bins)
	total := 0
	binWidth := 2 * math.Pi / float64(bins)
	for i := 0; i < len(points)-1; i++ {
		dx := points[i+1].X - points[i].X
		dy := points[i+1].Y - points[i].Y
		if math.Hypot(dx, dy) < 1e-9 {
			continue // zero displacement has no direction
		}
		angle := math.Atan2(dy, dx)
		if angle < 0 {
			angle += 2 * math.Pi
		}
		bin := int(angle / binWidth)
		if bin >= bins {
			bin = bins - 1 // angle == 2π lands on the last bin edge
		}
		counts[bin]++
		total++
	}
	if total < minEntropyDisplacements {
		return 0
	}

	probs := make([]float64, bins)
	for i, c := range counts {
		probs[i] = c / float64(total)
	}

	// stat.Entropy is in nats; the ratio to the maximum is base-invariant.
	return stat.Entropy(probs) / math.Log(float64(bins))
}

// angleAt returns the angle in degrees at vertex b formed by points a and c,
// or false when either limb segment has zero length.
func angleAt(a, b, c Point) (float64, bool) {
	ux, uy := a.X-b.X, a.Y-b.Y
	vx, vy := c.X-b.X, c.Y-b.Y
	nu := math.Hypot(ux, uy)
	nv := math.Hypot(vx, vy)
	if nu < 1e-9 || nv < 1e-9 {
		return 0, false
	}
	cos := (ux*vx + uy*vy) / (nu * nv)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, true
}

// JointAngleRatios measures how often the climber keeps their arms open.
// For each side and each frame where all three defining landmarks are
// confidently visible, the elbow angle (shoulder–elbow–wrist) and shoulder
// angle (elbow–shoulder–hip) are computed; angles at or above
// OpenAngleDegrees count as open. Each ratio is open count over measured
// count, zero when never measurable.
func JointAngleRatios(frames []PoseFrame, cfg Config) (elbowOpenRatio, shoulderOpenRatio float64) {
	sides := []struct {
		shoulder, elbow, wrist, hip string
	}{
		{LeftShoulder, LeftElbow, LeftWrist, LeftHip},
		{RightShoulder, RightElbow, RightWrist, RightHip},
	}

	var elbowOpen, elbowTotal, shoulderOpen, shoulderTotal int
	for _, frame := range frames {
		for _, s := range sides {
			if sh, el, wr, ok := visible3(frame.Keypoints, s.shoulder, s.elbow, s.wrist, cfg.VisibilityThreshold); ok {
				if deg, ok := angleAt(sh, el, wr); ok {
					elbowTotal++
					if deg >= cfg.OpenAngleDegrees {
						elbowOpen++
					}
				}
			}
			if el, sh, hp, ok := visible3(frame.Keypoints, s.elbow, s.shoulder, s.hip, cfg.VisibilityThreshold); ok {
				if deg, ok := angleAt(el, sh, hp); ok {
					shoulderTotal++
					if deg >= cfg.OpenAngleDegrees {
						shoulderOpen++
					}
				}
			}
		}
	}

	if elbowTotal > 0 {
		elbowOpenRatio = float64(elbowOpen) / float64(elbowTotal)
	}
	if shoulderTotal > 0 {
		shoulderOpenRatio = float64(shoulderOpen) / float64(shoulderTotal)
	}
	return elbowOpenRatio, shoulderOpenRatio
}

// visible3 fetches three landmarks when all are above the visibility
// threshold.
func visible3(kps map[string]Keypoint, a, b, c string, threshold float64) (Point, Point, Point, bool) {
	ka, aok := kps[a]
	kb, bok := kps[b]
	kc, cok := kps[c]
	if !aok || !bok || !cok ||
		ka.Visibility <= threshold || kb.Visibility <= threshold || kc.Visibility <= threshold {
		return Point{}, Point{}, Point{}, false
	}
	return Point{ka.X, ka.Y}, Point{kb.X, kb.Y}, Point{kc.X, kc.Y}, true
}

// ReachSegments classifies per-step wrist speed against the reach threshold
// into contiguous reaching runs. A run is kept only when its duration is at
// least MinReachDuration; kept runs longer than LongReachDuration count as
// long reaches. The average duration is the mean over all kept runs across
// both wrists, zero when there are none. Wrists whose timestamp slice is out
// of parity are skipped.
func ReachSegments(wrists map[string]Trajectory, cfg Config) (longCount int, avgDuration float64) {
	names := make([]string, 0, len(wrists))
	for name := range wrists {
		names = append(names, name)
	}
	sort.Strings(names)

	var durations []float64
	for _, name := range names {
		tr := wrists[name]
		if tr.Len() < 2 || tr.Len() != len(tr.Times) {
			continue
		}
		velocities := Velocities(tr.Points, tr.Times)

		runStart := -1
		flush := func(end int) {
			if runStart < 0 {
				return
			}
			d := tr.Times[end+1] - tr.Times[runStart]
			if d >= cfg.MinReachDuration {
				durations = append(durations, d)
				if d > cfg.LongReachDuration {
					longCount++
				}
			}
			runStart = -1
		}

		for i, v := range velocities {
			if v > cfg.ReachVelocityThreshold {
				if runStart < 0 {
					runStart = i
				}
			} else {
				flush(i - 1)
			}
		}
		flush(len(velocities) - 1)
	}

	if len(durations) == 0 {
		return longCount, 0
	}
	return longCount, stat.Mean(durations, nil)
}

// minSmoothnessSamples is the shortest hip trajectory with a meaningful
// third derivative.
const minSmoothnessSamples = 6

// ComSmoothness maps the mean discrete jerk of the hip trajectory to a
// bounded score: 1/(1 + jerk/scale), so smoother motion approaches 1.
// Derivatives are taken as successive finite differences of position over
// time; steps with zero or negative time deltas are dropped at each level so
// only finite results contribute. Requires at least minSmoothnessSamples
// parity-checked samples, otherwise 0.
func ComSmoothness(points []Point, times []float64, cfg Config) float64 {
	if len(points) < minSmoothnessSamples || len(points) != len(times) {
		return 0
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	ts := times
	for deriv := 0; deriv < 3; deriv++ {
		xs, ys, ts = finiteDifference(xs, ys, ts)
	}
	if len(xs) == 0 {
		return 0
	}

	var meanJerk float64
	for i := range xs {
		meanJerk += math.Hypot(xs[i], ys[i])
	}
	meanJerk /= float64(len(xs))
	if math.IsNaN(meanJerk) || math.IsInf(meanJerk, 0) {
		return 0
	}

	scale := cfg.SmoothnessScale
	if scale <= 0 {
		return 0
	}
	return 1 / (1 + meanJerk/scale)
}

// finiteDifference differentiates paired x/y series against their timestamps,
// dropping steps whose elapsed time is not positive.
func finiteDifference(xs, ys, ts []float64) (dxs, dys, dts []float64) {
	for i := 0; i+1 < len(xs); i++ {
		dt := ts[i+1] - ts[i]
		if dt <= 0 {
			continue
		}
		dx := (xs[i+1] - xs[i]) / dt
		dy := (ys[i+1] - ys[i]) / dt
		if math.IsNaN(dx) || math.IsInf(dx, 0) || math.IsNaN(dy) || math.IsInf(dy, 0) {
			continue
		}
		dxs = append(dxs, dx)
		dys = append(dys, dy)
		dts = append(dts, ts[i+1])
	}
	return dxs, dys, dts
}
