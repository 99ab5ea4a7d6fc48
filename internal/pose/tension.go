package pose

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// AnalyzeTension measures torso alignment: how far the shoulders drift
// horizontally from the hips, a proxy for core engagement.
//
// The shoulder and hip sequences must be the same non-trivial length
// (TensionMinSamples); otherwise the neutral score (1.0, zero sags) is
// returned. A sag event is counted on every upward crossing of the sag
// threshold, which is mean+1σ of the per-frame |Δx| offsets. The score is
// max(0, 1 − avgOffset/expectedMax), where expectedMax scales with the
// widest observed x-coordinate so the result is resolution-independent.
func AnalyzeTension(shoulders, hips []Point, cfg Config) (score float64, sagCount int) {
	if len(shoulders) != len(hips) || len(shoulders) < cfg.TensionMinSamples {
		return 1.0, 0
	}

	offsets := make([]float64, len(shoulders))
	maxX := 0.0
	for i := range shoulders {
		offsets[i] = math.Abs(shoulders[i].X - hips[i].X)
		maxX = math.Max(maxX, math.Max(math.Abs(shoulders[i].X), math.Abs(hips[i].X)))
	}

	sagThreshold := stat.Mean(offsets, nil) + stat.PopStdDev(offsets, nil)
	for i := 1; i < len(offsets); i++ {
		if offsets[i] > sagThreshold && offsets[i-1] <= sagThreshold {
			sagCount++
		}
	}

	avgOffset := stat.Mean(offsets, nil)
	expectedMax := cfg.TensionOffsetFraction * maxX
	if expectedMax <= 0 {
		// Degenerate geometry: every observed x is at the origin. A zero
		// average offset is perfect alignment; anything else scores zero.
		if avgOffset == 0 {
			return 1.0, sagCount
		}
		return 0, sagCount
	}

	return math.Max(0, 1-avgOffset/expectedMax), sagCount
}
