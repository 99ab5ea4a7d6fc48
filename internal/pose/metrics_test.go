package pose

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// climbFrames synthesises a plausible climb at 30fps: the climber moves up
// the frame in bursts with pauses between them, feet stepping with the hips.
func climbFrames(n int) []PoseFrame {
	frames := make([]PoseFrame, 0, n)
	y := 1500.0
	for i := 0; i < n; i++ {
		// Alternate 1s of movement with 1s of rest.
		if (i/30)%2 == 0 {
			y -= 8
		}
		x := 500.0 + 20*math.Sin(float64(i)/15)

		kp := func(dx, dy float64) Keypoint {
			return Keypoint{X: x + dx, Y: y + dy, Visibility: 0.9}
		}
		frames = append(frames, PoseFrame{
			FrameID:   i,
			Timestamp: float64(i) / 30,
			Keypoints: map[string]Keypoint{
				Nose:          kp(0, -380),
				LeftShoulder:  kp(-60, -300),
				RightShoulder: kp(60, -300),
				LeftElbow:     kp(-90, -200),
				RightElbow:    kp(90, -200),
				LeftWrist:     kp(-100, -420),
				RightWrist:    kp(100, -420),
				LeftHip:       kp(-40, 0),
				RightHip:      kp(40, 0),
				LeftKnee:      kp(-45, 120),
				RightKnee:     kp(45, 120),
				LeftAnkle:     kp(-50, 240),
				RightAnkle:    kp(50, 240),
			},
		})
	}
	return frames
}

func TestAnalyzeBoundsAndCounts(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	m, err := a.Analyze(climbFrames(240))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	bounded := map[string]float64{
		"path_efficiency":       m.PathEfficiency,
		"stability_score":       m.StabilityScore,
		"body_tension_score":    m.BodyTensionScore,
		"trajectory_entropy":    m.TrajectoryEntropy,
		"elbow_extension_ratio": m.ElbowExtensionRatio,
		"shoulder_relax_ratio":  m.ShoulderRelaxRatio,
		"com_smoothness_score":  m.ComSmoothnessScore,
	}
	for name, v := range bounded {
		if math.IsNaN(v) || v < 0 || v > 1 {
			t.Errorf("%s = %v, must lie in [0, 1]", name, v)
		}
	}

	for name, v := range map[string]int{
		"move_count":        m.MoveCount,
		"clean_placements":  m.CleanPlacements,
		"total_placements":  m.TotalPlacements,
		"sag_count":         m.SagCount,
		"long_reach_count":  m.LongReachCount,
	} {
		if v < 0 {
			t.Errorf("%s = %d, must be non-negative", name, v)
		}
	}

	if m.MoveCount == 0 {
		t.Error("a climb with movement bursts must have a non-zero move count")
	}
	if m.ClimbDuration <= 0 {
		t.Errorf("climb duration = %v, want > 0", m.ClimbDuration)
	}
	if m.TotalDistance <= 0 {
		t.Errorf("total distance = %v, want > 0", m.TotalDistance)
	}
}

func TestAnalyzeIsPure(t *testing.T) {
	frames := climbFrames(150)
	a := NewAnalyzer(DefaultConfig())

	first, err := a.Analyze(frames)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := a.Analyze(frames)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-running on identical input must be bit-identical (-first +second):\n%s", diff)
	}
}

func TestAnalyzeInsufficientPoseData(t *testing.T) {
	frames := []PoseFrame{
		{Timestamp: 0, Keypoints: map[string]Keypoint{
			LeftHip: {X: 1, Y: 1, Visibility: 0.1},
		}},
		{Timestamp: 0.033, Keypoints: map[string]Keypoint{
			LeftHip: {X: 1, Y: 1, Visibility: 0.4},
		}},
	}

	a := NewAnalyzer(DefaultConfig())
	if _, err := a.Analyze(frames); !errors.Is(err, ErrInsufficientPoseData) {
		t.Errorf("expected ErrInsufficientPoseData, got %v", err)
	}

	if _, err := a.Analyze(nil); !errors.Is(err, ErrInsufficientPoseData) {
		t.Errorf("empty sequence: expected ErrInsufficientPoseData, got %v", err)
	}
}

func TestAnalyzeDegenerateSingleFrame(t *testing.T) {
	frames := []PoseFrame{
		{Timestamp: 0, Keypoints: map[string]Keypoint{
			LeftHip:  {X: 100, Y: 200, Visibility: 0.9},
			RightHip: {X: 140, Y: 200, Visibility: 0.9},
		}},
	}

	a := NewAnalyzer(DefaultConfig())
	m, err := a.Analyze(frames)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if m.PathEfficiency != 1.0 {
		t.Errorf("single-sample trajectory must have efficiency 1.0, got %v", m.PathEfficiency)
	}
	if m.TotalDistance != 0 || m.DirectDistance != 0 {
		t.Errorf("single-sample trajectory must have zero distances, got %v / %v", m.TotalDistance, m.DirectDistance)
	}
	if m.StabilityScore != 1.0 {
		t.Errorf("no placements must score 1.0, got %v", m.StabilityScore)
	}
	if m.BodyTensionScore != 1.0 {
		t.Errorf("unmeasurable tension must be neutral 1.0, got %v", m.BodyTensionScore)
	}
	if m.ComSmoothnessScore != 0 {
		t.Errorf("unmeasurable smoothness must be 0, got %v", m.ComSmoothnessScore)
	}
}

func TestPathEfficiencyStraightVsWandering(t *testing.T) {
	straight := []Point{{0, 0}, {0, 100}, {0, 200}}
	eff, total, direct := PathEfficiency(straight)
	if eff != 1.0 {
		t.Errorf("straight path efficiency = %v, want 1.0", eff)
	}
	if total != 200 || direct != 200 {
		t.Errorf("distances = %v / %v, want 200 / 200", total, direct)
	}

	wandering := []Point{{0, 0}, {100, 0}, {0, 0}, {0, 100}}
	eff, total, direct = PathEfficiency(wandering)
	if total != 300 {
		t.Errorf("total distance = %v, want 300", total)
	}
	if direct != 100 {
		t.Errorf("direct distance = %v, want 100", direct)
	}
	if math.Abs(eff-1.0/3.0) > 1e-12 {
		t.Errorf("efficiency = %v, want 1/3", eff)
	}
}
