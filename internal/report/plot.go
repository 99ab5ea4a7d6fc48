package report

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/betaview-data/betaview/internal/pose"
)

// SaveTrajectoryPlot writes a PNG of the smoothed trajectories: hip and
// shoulder midpoints plus each tracked limb. The Y axis is inverted to match
// image coordinates.
func SaveTrajectoryPlot(path string, set pose.TrajectorySet) error {
	p := plot.New()
	p.Title.Text = "Smoothed Trajectories"
	p.X.Label.Text = "X (px)"
	p.Y.Label.Text = "Y (px)"

	type series struct {
		name string
		traj pose.Trajectory
	}
	all := []series{
		{"hip", set.Hip},
		{"shoulder", set.Shoulder},
	}
	for _, name := range sortedKeys(set.Ankles) {
		all = append(all, series{name, set.Ankles[name]})
	}
	for _, name := range sortedKeys(set.Wrists) {
		all = append(all, series{name, set.Wrists[name]})
	}

	colors := seriesColors(len(all))
	plotted := 0
	for i, s := range all {
		if s.traj.Len() < 2 {
			continue
		}
		pts := make(plotter.XYs, 0, s.traj.Len())
		for _, pt := range s.traj.Points {
			pts = append(pts, plotter.XY{X: pt.X, Y: -pt.Y})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.name, line)
		plotted++
	}
	if plotted == 0 {
		return fmt.Errorf("no trajectory long enough to plot")
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 10*vg.Inch, path); err != nil {
		return fmt.Errorf("save trajectory plot: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]pose.Trajectory) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// seriesColors spreads hues evenly so adjacent limbs stay distinguishable.
func seriesColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
