package pose

// Config holds the engine's tunable thresholds. Velocity and distance values
// are in frame pixel units; tune them for the camera resolution and frame
// rate of the footage being analysed.
type Config struct {
	// VisibilityThreshold is the minimum landmark visibility for a sample to
	// be used. Observations at or below it never update smoother state and
	// contribute no trajectory samples.
	VisibilityThreshold float64

	// Channel smoother noise model.
	MeasurementNoise   float64 // Measurement noise (σ²)
	ProcessNoise       float64 // Process noise (σ²)
	InitialUncertainty float64 // Initial covariance diagonal

	// StaticVelocityThreshold separates static from moving phases (units/s).
	StaticVelocityThreshold float64

	// Settle detection.
	SettleVelocityThreshold float64 // Velocity below this starts a candidate settle (units/s)
	SettleSustainFactor     float64 // Velocity must stay below threshold*factor to confirm
	MinSettleFrames         int     // Samples the velocity must stay low for
	JitterWindow            int     // Max post-settle samples measured for jitter
	JitterThreshold         float64 // Jitter below this counts as a clean placement

	// Body tension.
	TensionMinSamples     int     // Minimum paired shoulder/hip samples
	TensionOffsetFraction float64 // Expected max offset as a fraction of the widest observed x

	// Secondary heuristics.
	EntropyBins            int     // Angular bins for directional entropy
	OpenAngleDegrees       float64 // Joint angle at or above this counts as open
	ReachVelocityThreshold float64 // Wrist speed above this is reaching (units/s)
	MinReachDuration       float64 // Shortest run kept as a reach (seconds)
	LongReachDuration      float64 // Runs longer than this count as long reaches (seconds)
	SmoothnessScale        float64 // Jerk magnitude mapped to score 0.5 (units/s³)
}

// DefaultConfig returns the engine defaults. These are tuned for roughly
// 1080p footage at 30fps; callers analysing other resolutions should scale
// the velocity and distance thresholds accordingly.
func DefaultConfig() Config {
	return Config{
		VisibilityThreshold: 0.5,

		MeasurementNoise:   10.0,
		ProcessNoise:       0.1,
		InitialUncertainty: 100.0,

		StaticVelocityThreshold: 15.0,

		SettleVelocityThreshold: 10.0,
		SettleSustainFactor:     1.5,
		MinSettleFrames:         5,
		JitterWindow:            15,
		JitterThreshold:         8.0,

		TensionMinSamples:     10,
		TensionOffsetFraction: 0.15,

		EntropyBins:            8,
		OpenAngleDegrees:       150.0,
		ReachVelocityThreshold: 120.0,
		MinReachDuration:       0.15,
		LongReachDuration:      1.0,
		SmoothnessScale:        250.0,
	}
}
