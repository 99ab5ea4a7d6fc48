package pose

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Phase is the kind of a movement phase.
type Phase string

const (
	PhaseStatic Phase = "static"
	PhaseMoving Phase = "moving"
)

// MovementPhase is a maximal contiguous run of velocity samples classified as
// the same phase kind. Frame indices refer to the velocity sequence.
type MovementPhase struct {
	Kind       Phase
	StartFrame int
	EndFrame   int
	Duration   float64 // seconds
}

// distance is the Euclidean distance between two points.
func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Velocities computes the per-step speed between consecutive trajectory
// samples. A step spanning zero elapsed time has velocity zero rather than
// infinity; variable sample spacing is handled by dividing each step by its
// own time delta. The result has one fewer element than the input.
func Velocities(points []Point, times []float64) []float64 {
	if len(points) < 2 || len(points) != len(times) {
		return nil
	}
	velocities := make([]float64, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		dt := times[i+1] - times[i]
		if dt > 0 {
			velocities = append(velocities, distance(points[i], points[i+1])/dt)
		} else {
			velocities = append(velocities, 0)
		}
	}
	return velocities
}

// ClassifyPhases segments a velocity profile into alternating static and
// moving phases. A sample below threshold is static, otherwise moving. The
// walk opens a phase at index 0 with the kind of the first velocity and
// closes it whenever the classification changes; the final phase is closed at
// the end of the sequence. Each phase's duration is the timestamp delta from
// its start to the sample following its end (or end of sequence).
//
// times must have one more element than velocities, matching the output of
// Velocities for a full trajectory. An empty velocity sequence yields no
// phases.
func ClassifyPhases(velocities, times []float64, threshold float64) []MovementPhase {
	if len(velocities) == 0 {
		return nil
	}

	classify := func(v float64) Phase {
		if v < threshold {
			return PhaseStatic
		}
		return PhaseMoving
	}

	var phases []MovementPhase
	current := classify(velocities[0])
	start := 0

	for i, v := range velocities {
		kind := classify(v)
		if kind == current {
			continue
		}
		duration := 0.0
		if i < len(times) {
			duration = times[i] - times[start]
		}
		phases = append(phases, MovementPhase{
			Kind:       current,
			StartFrame: start,
			EndFrame:   i - 1,
			Duration:   duration,
		})
		current = kind
		start = i
	}

	duration := 0.0
	if len(times) > 0 {
		duration = times[len(times)-1] - times[start]
	}
	phases = append(phases, MovementPhase{
		Kind:       current,
		StartFrame: start,
		EndFrame:   len(velocities) - 1,
		Duration:   duration,
	})

	return phases
}

// AnalyzeRhythm derives rhythm statistics from a phase list. Move count is
// the number of moving phases. Pause statistics are the population mean and
// standard deviation of static-phase durations, both zero when the climb has
// no static phases.
func AnalyzeRhythm(phases []MovementPhase) (moveCount int, avgPause, rhythmVariance float64) {
	var pauses []float64
	for _, p := range phases {
		switch p.Kind {
		case PhaseMoving:
			moveCount++
		case PhaseStatic:
			pauses = append(pauses, p.Duration)
		}
	}
	if len(pauses) == 0 {
		return moveCount, 0, 0
	}
	return moveCount, stat.Mean(pauses, nil), stat.PopStdDev(pauses, nil)
}
