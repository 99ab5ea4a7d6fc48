package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/betaview-data/betaview/internal/pose"
)

func sampleMetrics() *pose.ClimbMetrics {
	return &pose.ClimbMetrics{
		PathEfficiency:      0.82,
		TotalDistance:       540,
		DirectDistance:      443,
		MoveCount:           6,
		AvgPauseDuration:    1.4,
		RhythmVariance:      0.3,
		AvgFootJitter:       5.2,
		CleanPlacements:     4,
		TotalPlacements:     5,
		StabilityScore:      0.8,
		BodyTensionScore:    0.71,
		SagCount:            1,
		ClimbDuration:       24.5,
		TrajectoryEntropy:   0.45,
		ElbowExtensionRatio: 0.6,
		ShoulderRelaxRatio:  0.5,
		LongReachCount:      2,
		AvgReachDuration:    0.7,
		ComSmoothnessScore:  0.66,
	}
}

func lineTrajectory(n int) pose.Trajectory {
	var t pose.Trajectory
	for i := 0; i < n; i++ {
		t.Points = append(t.Points, pose.Point{X: float64(i) * 3, Y: 400 - float64(i)*5})
		t.Times = append(t.Times, float64(i)/30.0)
	}
	return t
}

func TestWriteMetricsReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMetricsReport(&buf, "abc-123", sampleMetrics()); err != nil {
		t.Fatalf("WriteMetricsReport returned error: %v", err)
	}

	html := buf.String()
	for _, want := range []string{"Technique Scores", "Movement Summary", "abc-123"} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestWriteTrajectoryChart(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTrajectoryChart(&buf, "abc-123", lineTrajectory(40)); err != nil {
		t.Fatalf("WriteTrajectoryChart returned error: %v", err)
	}
	for _, want := range []string{"Hip Trajectory", "Hip Speed"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("chart missing %q", want)
		}
	}
}

func TestWriteTrajectoryChartEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTrajectoryChart(&buf, "abc-123", pose.Trajectory{}); err == nil {
		t.Error("expected error for empty trajectory")
	}
}

func TestSaveTrajectoryPlot(t *testing.T) {
	set := pose.TrajectorySet{
		Hip:      lineTrajectory(40),
		Shoulder: lineTrajectory(40),
		Ankles:   map[string]pose.Trajectory{"left_ankle": lineTrajectory(20)},
		Wrists:   map[string]pose.Trajectory{"right_wrist": lineTrajectory(20)},
	}

	path := filepath.Join(t.TempDir(), "trajectories.png")
	if err := SaveTrajectoryPlot(path, set); err != nil {
		t.Fatalf("SaveTrajectoryPlot returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("plot file not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}

func TestSaveTrajectoryPlotEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	if err := SaveTrajectoryPlot(path, pose.TrajectorySet{}); err == nil {
		t.Error("expected error for empty trajectory set")
	}
}
