// Command analyze runs the motion analysis engine over a pose-keypoint JSON
// file and prints the resulting metrics, without a server or database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/betaview-data/betaview/internal/config"
	"github.com/betaview-data/betaview/internal/pose"
	"github.com/betaview-data/betaview/internal/report"
)

var (
	inFile     = flag.String("in", "", "Pose frames JSON file (defaults to stdin)")
	outFile    = flag.String("out", "", "Metrics JSON output file (defaults to stdout)")
	tuningFile = flag.String("config", "", "Optional JSON tuning overrides for the engine")
	plotFile   = flag.String("plot", "", "Optional PNG trajectory plot output path")
	reportFile = flag.String("report", "", "Optional HTML report output path")
	chartFile  = flag.String("chart", "", "Optional HTML hip-trajectory chart output path")
)

// readFrames accepts either a bare frame array or the API's {"frames": [...]}
// wrapper, so estimator output can be piped straight in.
func readFrames(path string) ([]pose.PoseFrame, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var frames []pose.PoseFrame
	if err := json.Unmarshal(data, &frames); err == nil {
		return frames, nil
	}

	var wrapper struct {
		Frames []pose.PoseFrame `json:"frames"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("input is neither a frame array nor a frames object: %w", err)
	}
	return wrapper.Frames, nil
}

func main() {
	flag.Parse()

	cfg := pose.DefaultConfig()
	if *tuningFile != "" {
		tuning, err := config.LoadTuningConfig(*tuningFile)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
		cfg = tuning.Apply(cfg)
	}

	frames, err := readFrames(*inFile)
	if err != nil {
		log.Fatalf("failed to read frames: %v", err)
	}
	if len(frames) == 0 {
		log.Fatal("no frames in input")
	}

	analyzer := pose.NewAnalyzer(cfg)
	metrics, err := analyzer.Analyze(frames)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	out, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode metrics: %v", err)
	}
	out = append(out, '\n')

	if *outFile == "" {
		os.Stdout.Write(out)
	} else if err := os.WriteFile(*outFile, out, 0644); err != nil {
		log.Fatalf("failed to write metrics: %v", err)
	}

	if *plotFile != "" || *reportFile != "" || *chartFile != "" {
		smoothed := pose.SmoothFrames(frames, cfg)
		set := pose.ExtractTrajectories(smoothed, cfg)

		if *plotFile != "" {
			if err := report.SaveTrajectoryPlot(*plotFile, *set); err != nil {
				log.Fatalf("failed to write trajectory plot: %v", err)
			}
			log.Printf("wrote trajectory plot to %s", *plotFile)
		}

		if *reportFile != "" {
			f, err := os.Create(*reportFile)
			if err != nil {
				log.Fatalf("failed to create report: %v", err)
			}
			if err := report.WriteMetricsReport(f, "local", metrics); err != nil {
				f.Close()
				log.Fatalf("failed to render report: %v", err)
			}
			if err := f.Close(); err != nil {
				log.Fatalf("failed to write report: %v", err)
			}
			log.Printf("wrote report to %s", *reportFile)
		}

		if *chartFile != "" {
			f, err := os.Create(*chartFile)
			if err != nil {
				log.Fatalf("failed to create chart: %v", err)
			}
			if err := report.WriteTrajectoryChart(f, "local", set.Hip); err != nil {
				f.Close()
				log.Fatalf("failed to render chart: %v", err)
			}
			if err := f.Close(); err != nil {
				log.Fatalf("failed to write chart: %v", err)
			}
			log.Printf("wrote trajectory chart to %s", *chartFile)
		}
	}
}
