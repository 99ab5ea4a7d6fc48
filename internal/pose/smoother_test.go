package pose

import (
	"math"
	"testing"
)

func TestSmootherFirstObservationPassthrough(t *testing.T) {
	s := NewChannelSmoother(DefaultConfig())

	x, y := s.Smooth(LeftWrist, 123.4, 567.8)
	if x != 123.4 || y != 567.8 {
		t.Errorf("first observation must pass through unmodified, got (%v, %v)", x, y)
	}
	if s.ChannelCount() != 1 {
		t.Errorf("expected 1 channel, got %d", s.ChannelCount())
	}
}

func TestSmootherConvergesOnConstantInput(t *testing.T) {
	s := NewChannelSmoother(DefaultConfig())

	const tx, ty = 200.0, 300.0
	var x, y float64
	for i := 0; i < 50; i++ {
		x, y = s.Smooth(MidHip, tx, ty)
	}

	if math.Abs(x-tx) > 0.5 || math.Abs(y-ty) > 0.5 {
		t.Errorf("filter should converge to the repeated observation, got (%v, %v) want (~%v, ~%v)", x, y, tx, ty)
	}
}

func TestSmootherTracksRamp(t *testing.T) {
	s := NewChannelSmoother(DefaultConfig())

	// Constant-velocity input: the filter's model, so the lag should shrink.
	var lag float64
	for i := 0; i < 60; i++ {
		in := float64(i) * 5
		x, _ := s.Smooth(Nose, in, 0)
		lag = math.Abs(in - x)
	}
	if lag > 2.0 {
		t.Errorf("expected small steady-state lag on constant velocity, got %v", lag)
	}
}

func TestSmootherChannelsAreIndependent(t *testing.T) {
	s := NewChannelSmoother(DefaultConfig())

	for i := 0; i < 20; i++ {
		s.Smooth(LeftAnkle, 10, 10)
		s.Smooth(RightAnkle, 500, 500)
	}
	lx, _ := s.Smooth(LeftAnkle, 10, 10)
	rx, _ := s.Smooth(RightAnkle, 500, 500)

	if math.Abs(lx-10) > 1 {
		t.Errorf("left channel drifted to %v, expected ~10", lx)
	}
	if math.Abs(rx-500) > 1 {
		t.Errorf("right channel drifted to %v, expected ~500", rx)
	}
}

func TestSmoothFramesSkipsLowVisibility(t *testing.T) {
	cfg := DefaultConfig()
	frames := []PoseFrame{
		{FrameID: 0, Timestamp: 0, Keypoints: map[string]Keypoint{
			LeftWrist: {X: 100, Y: 100, Visibility: 0.9},
		}},
		// Low-confidence observation: must not update filter state and must
		// be carried through raw.
		{FrameID: 1, Timestamp: 0.033, Keypoints: map[string]Keypoint{
			LeftWrist: {X: 9999, Y: 9999, Visibility: 0.2},
		}},
		{FrameID: 2, Timestamp: 0.066, Keypoints: map[string]Keypoint{
			LeftWrist: {X: 102, Y: 102, Visibility: 0.9},
		}},
	}

	out := SmoothFrames(frames, cfg)
	if len(out) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(out))
	}

	raw := out[1].Keypoints[LeftWrist]
	if raw.X != 9999 || raw.Visibility != 0.2 {
		t.Errorf("low-visibility keypoint must pass through raw, got %+v", raw)
	}

	// Frame 2 smooths against frame 0 state only; had the outlier been fed
	// into the filter the estimate would be thousands of pixels away.
	sm := out[2].Keypoints[LeftWrist]
	if math.Abs(sm.X-102) > 50 {
		t.Errorf("outlier leaked into filter state: frame 2 x = %v", sm.X)
	}
}

func TestSmoothFramesDerivesMidpoints(t *testing.T) {
	cfg := DefaultConfig()
	frames := []PoseFrame{
		{Keypoints: map[string]Keypoint{
			LeftHip:       {X: 100, Y: 200, Visibility: 0.9},
			RightHip:      {X: 120, Y: 210, Visibility: 0.7},
			LeftShoulder:  {X: 90, Y: 100, Visibility: 0.8},
			RightShoulder: {X: 130, Y: 100, Visibility: 0.3},
		}},
	}

	out := SmoothFrames(frames, cfg)
	mid, ok := out[0].Keypoints[MidHip]
	if !ok {
		t.Fatal("expected mid_hip to be derived")
	}
	if mid.X != 110 || mid.Y != 205 {
		t.Errorf("mid_hip = (%v, %v), want (110, 205)", mid.X, mid.Y)
	}
	if mid.Visibility != 0.7 {
		t.Errorf("mid_hip visibility = %v, want min of constituents 0.7", mid.Visibility)
	}

	// One low-confidence shoulder drags the midpoint visibility below the
	// threshold so downstream stages treat it as absent.
	ms := out[0].Keypoints[MidShoulder]
	if ms.Visibility > cfg.VisibilityThreshold {
		t.Errorf("mid_shoulder visibility = %v, should be capped by the weaker side", ms.Visibility)
	}
}
