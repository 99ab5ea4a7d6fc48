package pose

import (
	"errors"
	"math"
)

// ErrInsufficientPoseData is returned when no keypoint in the whole sequence
// met the visibility threshold, so nothing can be measured. Every lesser
// degradation (a missing limb, a too-short trajectory) resolves to that
// measure's neutral default instead of an error.
var ErrInsufficientPoseData = errors.New("insufficient pose data")

// ClimbMetrics is the fully-computed result of one analysis. It is computed
// atomically from one complete input and never partially populated; all
// bounded fields are clamped into their documented range.
type ClimbMetrics struct {
	PathEfficiency float64 `json:"path_efficiency"` // 0–1, direct/total hip distance
	TotalDistance  float64 `json:"total_distance"`  // summed hip path length (units)
	DirectDistance float64 `json:"direct_distance"` // start-to-end hip distance (units)

	MoveCount        int     `json:"move_count"`
	AvgPauseDuration float64 `json:"avg_pause_duration"` // seconds
	RhythmVariance   float64 `json:"rhythm_variance"`    // σ of pause durations

	AvgFootJitter   float64 `json:"avg_foot_jitter"`
	CleanPlacements int     `json:"clean_placements"`
	TotalPlacements int     `json:"total_placements"`
	StabilityScore  float64 `json:"stability_score"` // 0–1, 1.0 with no placements

	BodyTensionScore float64 `json:"body_tension_score"` // 0–1
	SagCount         int     `json:"sag_count"`

	ClimbDuration float64 `json:"climb_duration"` // seconds

	TrajectoryEntropy   float64 `json:"trajectory_entropy"`    // 0–1
	ElbowExtensionRatio float64 `json:"elbow_extension_ratio"` // 0–1
	ShoulderRelaxRatio  float64 `json:"shoulder_relax_ratio"`  // 0–1
	LongReachCount      int     `json:"long_reach_count"`
	AvgReachDuration    float64 `json:"avg_reach_duration"`   // seconds
	ComSmoothnessScore  float64 `json:"com_smoothness_score"` // 0–1
}

// PathEfficiency computes the ratio of direct to total travelled distance for
// a trajectory. Degenerate trajectories (fewer than two samples, or a total
// distance of effectively zero) are perfectly efficient: 1.0 with zero
// distances.
func PathEfficiency(points []Point) (efficiency, totalDistance, directDistance float64) {
	if len(points) < 2 {
		return 1.0, 0, 0
	}
	for i := 0; i < len(points)-1; i++ {
		totalDistance += distance(points[i], points[i+1])
	}
	directDistance = distance(points[0], points[len(points)-1])
	if totalDistance < 1e-6 {
		return 1.0, 0, 0
	}
	return math.Min(directDistance/totalDistance, 1.0), totalDistance, directDistance
}

// Analyzer runs the full metric computation with a fixed configuration.
// It holds no mutable state: Analyze is a pure function of its input, so one
// Analyzer may serve concurrent analyses.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer returns an Analyzer using the given configuration.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Config returns the analyzer's effective configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Analyze smooths the frame sequence, extracts trajectories and derives one
// complete ClimbMetrics record. Stages run strictly in dependency order on
// in-memory data; any single measure that cannot be computed from the
// available samples resolves to its neutral default. The only failure is the
// fundamental precondition: no keypoint anywhere in the sequence met the
// visibility threshold.
func (a *Analyzer) Analyze(frames []PoseFrame) (*ClimbMetrics, error) {
	cfg := a.cfg

	usable := false
	for _, frame := range frames {
		for _, kp := range frame.Keypoints {
			if kp.Visibility > cfg.VisibilityThreshold {
				usable = true
				break
			}
		}
		if usable {
			break
		}
	}
	if !usable {
		return nil, ErrInsufficientPoseData
	}

	smoothed := SmoothFrames(frames, cfg)
	ts := ExtractTrajectories(smoothed, cfg)

	m := &ClimbMetrics{}
	m.PathEfficiency, m.TotalDistance, m.DirectDistance = PathEfficiency(ts.Hip.Points)

	velocities := Velocities(ts.Hip.Points, ts.Hip.Times)
	phases := ClassifyPhases(velocities, ts.Hip.Times, cfg.StaticVelocityThreshold)
	m.MoveCount, m.AvgPauseDuration, m.RhythmVariance = AnalyzeRhythm(phases)

	events := DetectSettleEvents(ts.Ankles, cfg)
	m.AvgFootJitter, m.CleanPlacements, m.TotalPlacements, m.StabilityScore =
		StabilityScore(events, cfg.JitterThreshold)

	m.BodyTensionScore, m.SagCount = AnalyzeTension(ts.Shoulder.Points, ts.Hip.Points, cfg)

	if n := len(ts.Hip.Times); n > 0 {
		m.ClimbDuration = ts.Hip.Times[n-1] - ts.Hip.Times[0]
	}

	m.TrajectoryEntropy = DirectionalEntropy(ts.Hip.Points, cfg.EntropyBins)
	m.ElbowExtensionRatio, m.ShoulderRelaxRatio = JointAngleRatios(smoothed, cfg)
	m.LongReachCount, m.AvgReachDuration = ReachSegments(ts.Wrists, cfg)
	m.ComSmoothnessScore = ComSmoothness(ts.Hip.Points, ts.Hip.Times, cfg)

	m.sanitize()
	return m, nil
}

// sanitize clamps every bounded field into [0, 1] and scrubs any non-finite
// value down to its neutral default, so no output field is ever NaN, Inf or
// out of its documented range.
func (m *ClimbMetrics) sanitize() {
	m.PathEfficiency = clamp01(m.PathEfficiency)
	m.StabilityScore = clamp01(m.StabilityScore)
	m.BodyTensionScore = clamp01(m.BodyTensionScore)
	m.TrajectoryEntropy = clamp01(m.TrajectoryEntropy)
	m.ElbowExtensionRatio = clamp01(m.ElbowExtensionRatio)
	m.ShoulderRelaxRatio = clamp01(m.ShoulderRelaxRatio)
	m.ComSmoothnessScore = clamp01(m.ComSmoothnessScore)

	m.TotalDistance = nonNegativeFinite(m.TotalDistance)
	m.DirectDistance = nonNegativeFinite(m.DirectDistance)
	m.AvgPauseDuration = nonNegativeFinite(m.AvgPauseDuration)
	m.RhythmVariance = nonNegativeFinite(m.RhythmVariance)
	m.AvgFootJitter = nonNegativeFinite(m.AvgFootJitter)
	m.ClimbDuration = nonNegativeFinite(m.ClimbDuration)
	m.AvgReachDuration = nonNegativeFinite(m.AvgReachDuration)

	m.MoveCount = max(m.MoveCount, 0)
	m.CleanPlacements = max(m.CleanPlacements, 0)
	m.TotalPlacements = max(m.TotalPlacements, 0)
	m.SagCount = max(m.SagCount, 0)
	m.LongReachCount = max(m.LongReachCount, 0)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func nonNegativeFinite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
