// Package report renders analysis results as HTML charts and PNG plots.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/betaview-data/betaview/internal/pose"
)

// viridis palette for time-colored trajectory scatter
var trajectoryColors = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// WriteMetricsReport renders a standalone HTML page summarising one completed
// analysis: the bounded scores on one chart, the raw counts and durations on
// another.
func WriteMetricsReport(w io.Writer, id string, m *pose.ClimbMetrics) error {
	scores := charts.NewBar()
	scores.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Technique Scores", Subtitle: fmt.Sprintf("analysis=%s", id)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1}),
	)
	scores.SetXAxis([]string{
		"Path efficiency", "Stability", "Body tension",
		"Trajectory entropy", "Elbow extension", "Shoulder relax", "COM smoothness",
	}).AddSeries("scores", []opts.BarData{
		{Value: m.PathEfficiency},
		{Value: m.StabilityScore},
		{Value: m.BodyTensionScore},
		{Value: m.TrajectoryEntropy},
		{Value: m.ElbowExtensionRatio},
		{Value: m.ShoulderRelaxRatio},
		{Value: m.ComSmoothnessScore},
	}, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	counts := charts.NewBar()
	counts.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Movement Summary",
			Subtitle: fmt.Sprintf("duration=%.1fs distance=%.0f", m.ClimbDuration, m.TotalDistance),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	counts.SetXAxis([]string{
		"Moves", "Sags", "Clean placements", "Total placements", "Long reaches",
		"Avg pause (s)", "Avg reach (s)", "Rhythm σ (s)", "Avg foot jitter",
	}).AddSeries("summary", []opts.BarData{
		{Value: m.MoveCount},
		{Value: m.SagCount},
		{Value: m.CleanPlacements},
		{Value: m.TotalPlacements},
		{Value: m.LongReachCount},
		{Value: m.AvgPauseDuration},
		{Value: m.AvgReachDuration},
		{Value: m.RhythmVariance},
		{Value: m.AvgFootJitter},
	}, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	page := components.NewPage()
	page.AddCharts(scores, counts)
	return page.Render(w)
}

// WriteTrajectoryChart renders the smoothed hip trajectory as a scatter
// colored by time, with the hip speed timeline underneath. Y is flipped so
// the scatter reads the way the video does (image coordinates grow downward).
func WriteTrajectoryChart(w io.Writer, id string, traj pose.Trajectory) error {
	if traj.Len() == 0 {
		return fmt.Errorf("empty trajectory")
	}

	data := make([]opts.ScatterData, 0, traj.Len())
	maxAbs := 0.0
	maxT := traj.Times[traj.Len()-1]
	for i, p := range traj.Points {
		x := p.X
		y := -p.Y
		if abs(x) > maxAbs {
			maxAbs = abs(x)
		}
		if abs(y) > maxAbs {
			maxAbs = abs(y)
		}
		data = append(data, opts.ScatterData{Value: []interface{}{x, y, traj.Times[i]}})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}
	if maxT == 0 {
		maxT = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Hip Trajectory", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Hip Trajectory", Subtitle: fmt.Sprintf("analysis=%s points=%d", id, len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (px)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxT),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: trajectoryColors},
		}),
	)
	scatter.AddSeries("hip", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))

	page := components.NewPage()
	page.AddCharts(scatter)
	if speed := velocityTimeline(traj); speed != nil {
		page.AddCharts(speed)
	}
	return page.Render(w)
}

// velocityTimeline builds a line chart of hip speed per step, or nil when the
// trajectory is too short to differentiate.
func velocityTimeline(traj pose.Trajectory) *charts.Line {
	velocities := pose.Velocities(traj.Points, traj.Times)
	if velocities == nil {
		return nil
	}

	labels := make([]string, len(velocities))
	series := make([]opts.LineData, len(velocities))
	for i, v := range velocities {
		labels[i] = fmt.Sprintf("%.2f", traj.Times[i])
		series[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Hip Speed", Subtitle: fmt.Sprintf("steps=%d", len(velocities))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "speed (px/s)"}),
	)
	line.SetXAxis(labels).AddSeries("hip speed", series)
	return line
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
