package pose

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractTrajectoriesPrefersDerivedMidpoint(t *testing.T) {
	cfg := DefaultConfig()
	frames := []PoseFrame{
		{Timestamp: 0.0, Keypoints: map[string]Keypoint{
			MidHip:   {X: 50, Y: 60, Visibility: 0.9},
			LeftHip:  {X: 0, Y: 0, Visibility: 0.9},
			RightHip: {X: 200, Y: 200, Visibility: 0.9},
		}},
	}

	ts := ExtractTrajectories(frames, cfg)
	want := []Point{{X: 50, Y: 60}}
	if diff := cmp.Diff(want, ts.Hip.Points); diff != "" {
		t.Errorf("hip trajectory mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTrajectoriesFallsBackToSideAverage(t *testing.T) {
	cfg := DefaultConfig()
	frames := []PoseFrame{
		{Timestamp: 0.0, Keypoints: map[string]Keypoint{
			LeftHip:  {X: 100, Y: 300, Visibility: 0.9},
			RightHip: {X: 140, Y: 320, Visibility: 0.8},
		}},
		// Only one side visible: no hip sample for this frame.
		{Timestamp: 0.1, Keypoints: map[string]Keypoint{
			LeftHip:  {X: 100, Y: 300, Visibility: 0.9},
			RightHip: {X: 140, Y: 320, Visibility: 0.4},
		}},
	}

	ts := ExtractTrajectories(frames, cfg)
	if ts.Hip.Len() != 1 {
		t.Fatalf("expected 1 hip sample, got %d", ts.Hip.Len())
	}
	if got := ts.Hip.Points[0]; got.X != 120 || got.Y != 310 {
		t.Errorf("hip sample = %+v, want averaged (120, 310)", got)
	}
}

func TestExtractTrajectoriesTimestampParity(t *testing.T) {
	cfg := DefaultConfig()
	var frames []PoseFrame
	for i := 0; i < 20; i++ {
		kps := map[string]Keypoint{}
		// Hip visible on even frames only, left ankle on every third frame.
		if i%2 == 0 {
			kps[MidHip] = Keypoint{X: float64(i), Y: float64(i), Visibility: 0.9}
		}
		if i%3 == 0 {
			kps[LeftAnkle] = Keypoint{X: float64(i), Y: 400, Visibility: 0.8}
		}
		frames = append(frames, PoseFrame{FrameID: i, Timestamp: float64(i) / 30, Keypoints: kps})
	}

	ts := ExtractTrajectories(frames, cfg)
	if ts.Hip.Len() != len(ts.Hip.Times) {
		t.Errorf("hip parity broken: %d points vs %d times", ts.Hip.Len(), len(ts.Hip.Times))
	}
	if ts.Hip.Len() != 10 {
		t.Errorf("expected 10 hip samples, got %d", ts.Hip.Len())
	}

	ankle := ts.Ankles[LeftAnkle]
	if ankle.Len() != len(ankle.Times) {
		t.Errorf("ankle parity broken: %d points vs %d times", ankle.Len(), len(ankle.Times))
	}
	if ankle.Len() != 7 {
		t.Errorf("expected 7 ankle samples, got %d", ankle.Len())
	}
	if ankle.Times[1] != 3.0/30 {
		t.Errorf("ankle timestamps must follow the limb's own sampling, got %v", ankle.Times[1])
	}
}

func TestExtractTrajectoriesCollectsWrists(t *testing.T) {
	cfg := DefaultConfig()
	frames := []PoseFrame{
		{Timestamp: 0, Keypoints: map[string]Keypoint{
			LeftWrist:  {X: 10, Y: 20, Visibility: 0.9},
			RightWrist: {X: 30, Y: 40, Visibility: 0.5}, // exactly at threshold: dropped
		}},
	}

	ts := ExtractTrajectories(frames, cfg)
	if ts.Wrists[LeftWrist].Len() != 1 {
		t.Errorf("expected 1 left wrist sample, got %d", ts.Wrists[LeftWrist].Len())
	}
	if ts.Wrists[RightWrist].Len() != 0 {
		t.Errorf("visibility at the threshold must be dropped, got %d samples", ts.Wrists[RightWrist].Len())
	}
}
