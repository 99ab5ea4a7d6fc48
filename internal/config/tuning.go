// Package config loads engine tuning overrides from JSON files. All engine
// thresholds have code defaults (pose.DefaultConfig); a tuning file overrides
// only the fields it names, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/betaview-data/betaview/internal/pose"
)

// TuningConfig mirrors pose.Config with pointer fields so that fields omitted
// from the JSON keep their defaults. The schema matches the /api/config
// endpoint, so the same JSON works for startup configuration and runtime
// inspection.
type TuningConfig struct {
	VisibilityThreshold *float64 `json:"visibility_threshold,omitempty"`

	MeasurementNoise   *float64 `json:"measurement_noise,omitempty"`
	ProcessNoise       *float64 `json:"process_noise,omitempty"`
	InitialUncertainty *float64 `json:"initial_uncertainty,omitempty"`

	StaticVelocityThreshold *float64 `json:"static_velocity_threshold,omitempty"`

	SettleVelocityThreshold *float64 `json:"settle_velocity_threshold,omitempty"`
	SettleSustainFactor     *float64 `json:"settle_sustain_factor,omitempty"`
	MinSettleFrames         *int     `json:"min_settle_frames,omitempty"`
	JitterWindow            *int     `json:"jitter_window,omitempty"`
	JitterThreshold         *float64 `json:"jitter_threshold,omitempty"`

	TensionMinSamples     *int     `json:"tension_min_samples,omitempty"`
	TensionOffsetFraction *float64 `json:"tension_offset_fraction,omitempty"`

	EntropyBins            *int     `json:"entropy_bins,omitempty"`
	OpenAngleDegrees       *float64 `json:"open_angle_degrees,omitempty"`
	ReachVelocityThreshold *float64 `json:"reach_velocity_threshold,omitempty"`
	MinReachDuration       *float64 `json:"min_reach_duration,omitempty"`
	LongReachDuration      *float64 `json:"long_reach_duration,omitempty"`
	SmoothnessScale        *float64 `json:"smoothness_scale,omitempty"`
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The path must have
// a .json extension and the file must be under 1MB. Fields omitted from the
// JSON retain their defaults when the config is applied.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &TuningConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that any set fields hold usable values.
func (c *TuningConfig) Validate() error {
	if c.VisibilityThreshold != nil {
		if *c.VisibilityThreshold < 0 || *c.VisibilityThreshold >= 1 {
			return fmt.Errorf("visibility_threshold must be in [0, 1), got %f", *c.VisibilityThreshold)
		}
	}
	for name, v := range map[string]*float64{
		"measurement_noise":         c.MeasurementNoise,
		"process_noise":             c.ProcessNoise,
		"initial_uncertainty":       c.InitialUncertainty,
		"static_velocity_threshold": c.StaticVelocityThreshold,
		"settle_velocity_threshold": c.SettleVelocityThreshold,
		"settle_sustain_factor":     c.SettleSustainFactor,
		"jitter_threshold":          c.JitterThreshold,
		"tension_offset_fraction":   c.TensionOffsetFraction,
		"open_angle_degrees":        c.OpenAngleDegrees,
		"reach_velocity_threshold":  c.ReachVelocityThreshold,
		"min_reach_duration":        c.MinReachDuration,
		"long_reach_duration":       c.LongReachDuration,
		"smoothness_scale":          c.SmoothnessScale,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}
	for name, v := range map[string]*int{
		"min_settle_frames":   c.MinSettleFrames,
		"jitter_window":       c.JitterWindow,
		"tension_min_samples": c.TensionMinSamples,
	} {
		if v != nil && *v < 1 {
			return fmt.Errorf("%s must be >= 1, got %d", name, *v)
		}
	}
	if c.EntropyBins != nil && *c.EntropyBins < 2 {
		return fmt.Errorf("entropy_bins must be >= 2, got %d", *c.EntropyBins)
	}
	return nil
}

// Apply overlays the set fields onto a base engine configuration.
func (c *TuningConfig) Apply(base pose.Config) pose.Config {
	if c.VisibilityThreshold != nil {
		base.VisibilityThreshold = *c.VisibilityThreshold
	}
	if c.MeasurementNoise != nil {
		base.MeasurementNoise = *c.MeasurementNoise
	}
	if c.ProcessNoise != nil {
		base.ProcessNoise = *c.ProcessNoise
	}
	if c.InitialUncertainty != nil {
		base.InitialUncertainty = *c.InitialUncertainty
	}
	if c.StaticVelocityThreshold != nil {
		base.StaticVelocityThreshold = *c.StaticVelocityThreshold
	}
	if c.SettleVelocityThreshold != nil {
		base.SettleVelocityThreshold = *c.SettleVelocityThreshold
	}
	if c.SettleSustainFactor != nil {
		base.SettleSustainFactor = *c.SettleSustainFactor
	}
	if c.MinSettleFrames != nil {
		base.MinSettleFrames = *c.MinSettleFrames
	}
	if c.JitterWindow != nil {
		base.JitterWindow = *c.JitterWindow
	}
	if c.JitterThreshold != nil {
		base.JitterThreshold = *c.JitterThreshold
	}
	if c.TensionMinSamples != nil {
		base.TensionMinSamples = *c.TensionMinSamples
	}
	if c.TensionOffsetFraction != nil {
		base.TensionOffsetFraction = *c.TensionOffsetFraction
	}
	if c.EntropyBins != nil {
		base.EntropyBins = *c.EntropyBins
	}
	if c.OpenAngleDegrees != nil {
		base.OpenAngleDegrees = *c.OpenAngleDegrees
	}
	if c.ReachVelocityThreshold != nil {
		base.ReachVelocityThreshold = *c.ReachVelocityThreshold
	}
	if c.MinReachDuration != nil {
		base.MinReachDuration = *c.MinReachDuration
	}
	if c.LongReachDuration != nil {
		base.LongReachDuration = *c.LongReachDuration
	}
	if c.SmoothnessScale != nil {
		base.SmoothnessScale = *c.SmoothnessScale
	}
	return base
}
