package pose

// ChannelSmoother maintains one independent constant-velocity Kalman filter
// per keypoint name. State is accumulated across the frames of a single
// analysis and discarded with the smoother; channels are fully independent
// (left/right symmetry is not enforced).
//
// The smoother is not safe for concurrent use. Each analysis owns its own
// instance.
type ChannelSmoother struct {
	filters map[string]*channelFilter
	cfg     Config
}

// channelFilter is a 4-state [x, y, vx, vy] filter for one keypoint name.
// The time step is one frame, matching the estimator's per-frame cadence.
type channelFilter struct {
	// State
	X, Y, VX, VY float64

	// Covariance (4x4, row-major)
	P [16]float64
}

// NewChannelSmoother creates a smoother with the given noise configuration.
func NewChannelSmoother(cfg Config) *ChannelSmoother {
	return &ChannelSmoother{
		filters: make(map[string]*channelFilter),
		cfg:     cfg,
	}
}

// Smooth feeds one confident observation for a named keypoint and returns the
// filtered position. The first observation for a name initialises the filter
// and is returned unmodified. Callers must not feed observations whose
// visibility is at or below the configured threshold; those leave filter
// state untouched and are handled (passed through raw or dropped) upstream.
func (s *ChannelSmoother) Smooth(name string, x, y float64) (float64, float64) {
	f, ok := s.filters[name]
	if !ok {
		u := s.cfg.InitialUncertainty
		f = &channelFilter{
			X: x,
			Y: y,
			P: [16]float64{
				u, 0, 0, 0,
				0, u, 0, 0,
				0, 0, u, 0,
				0, 0, 0, u,
			},
		}
		s.filters[name] = f
		return x, y
	}

	f.predict(s.cfg.ProcessNoise)
	f.update(x, y, s.cfg.MeasurementNoise)
	return f.X, f.Y
}

// ChannelCount returns the number of keypoint names seen so far.
func (s *ChannelSmoother) ChannelCount() int { return len(s.filters) }

// predict applies the constant-velocity prediction step with dt = 1 frame.
//
//	F = [1 0 1 0]
//	    [0 1 0 1]
//	    [0 0 1 0]
//	    [0 0 0 1]
func (f *channelFilter) predict(processNoise float64) {
	// State: x' = F * x
	f.X += f.VX
	f.Y += f.VY

	// Covariance: P' = F * P * F^T + Q
	P := f.P

	// F * P: rows 0,1 gain the velocity rows, rows 2,3 unchanged.
	var FP [16]float64
	for j := 0; j < 4; j++ {
		FP[0*4+j] = P[0*4+j] + P[2*4+j]
		FP[1*4+j] = P[1*4+j] + P[3*4+j]
		FP[2*4+j] = P[2*4+j]
		FP[3*4+j] = P[3*4+j]
	}

	// (F * P) * F^T: columns 0,1 gain the velocity columns.
	for i := 0; i < 4; i++ {
		f.P[i*4+0] = FP[i*4+0] + FP[i*4+2]
		f.P[i*4+1] = FP[i*4+1] + FP[i*4+3]
		f.P[i*4+2] = FP[i*4+2]
		f.P[i*4+3] = FP[i*4+3]
	}

	// Q = diag(σ²)
	f.P[0*4+0] += processNoise
	f.P[1*4+1] += processNoise
	f.P[2*4+2] += processNoise
	f.P[3*4+3] += processNoise
}

// minDeterminant guards the 2x2 innovation covariance inversion.
const minDeterminant = 1e-9

// update applies the measurement correction for an observed (x, y).
// H extracts position only:
//
//	H = [1 0 0 0]
//	    [0 1 0 0]
func (f *channelFilter) update(zx, zy, measurementNoise float64) {
	// Innovation
	yX := zx - f.X
	yY := zy - f.Y

	// Innovation covariance S = H * P * H^T + R
	S00 := f.P[0*4+0] + measurementNoise
	S01 := f.P[0*4+1]
	S10 := f.P[1*4+0]
	S11 := f.P[1*4+1] + measurementNoise

	det := S00*S11 - S01*S10
	if det < minDeterminant {
		return // Singular covariance, skip the correction
	}

	invS00 := S11 / det
	invS01 := -S01 / det
	invS10 := -S10 / det
	invS11 := S00 / det

	// Kalman gain K = P * H^T * S^-1 (4x2)
	var K [8]float64
	for i := 0; i < 4; i++ {
		K[i*2+0] = f.P[i*4+0]*invS00 + f.P[i*4+1]*invS10
		K[i*2+1] = f.P[i*4+0]*invS01 + f.P[i*4+1]*invS11
	}

	// State: x' = x + K * y
	f.X += K[0*2+0]*yX + K[0*2+1]*yY
	f.Y += K[1*2+0]*yX + K[1*2+1]*yY
	f.VX += K[2*2+0]*yX + K[2*2+1]*yY
	f.VY += K[3*2+0]*yX + K[3*2+1]*yY

	// Covariance: P' = (I - K*H) * P.
	// (K*H)[i,j] is K[i,0] for j==0, K[i,1] for j==1, zero otherwise.
	var IminusKH [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			identity := 0.0
			if i == j {
				identity = 1
			}
			var kh float64
			switch j {
			case 0:
				kh = K[i*2+0]
			case 1:
				kh = K[i*2+1]
			}
			IminusKH[i*4+j] = identity - kh
		}
	}

	var newP [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += IminusKH[i*4+k] * f.P[k*4+j]
			}
			newP[i*4+j] = sum
		}
	}
	f.P = newP
}

// SmoothFrames runs every frame through the smoother and returns new frames
// with filtered positions. Observations at or below the visibility threshold
// are carried through unsmoothed; derived midpoints (mid_hip, mid_shoulder)
// are recomputed from the smoothed constituents so they never mix raw and
// filtered coordinates. The input frames are not modified.
func SmoothFrames(frames []PoseFrame, cfg Config) []PoseFrame {
	smoother := NewChannelSmoother(cfg)
	out := make([]PoseFrame, 0, len(frames))

	for _, frame := range frames {
		kps := make(map[string]Keypoint, len(frame.Keypoints)+2)
		for name, kp := range frame.Keypoints {
			if name == MidHip || name == MidShoulder {
				continue // recomputed below
			}
			if kp.Visibility > cfg.VisibilityThreshold {
				x, y := smoother.Smooth(name, kp.X, kp.Y)
				kps[name] = Keypoint{X: x, Y: y, Visibility: kp.Visibility}
			} else {
				kps[name] = kp
			}
		}

		if mid, ok := midpoint(kps, LeftHip, RightHip); ok {
			kps[MidHip] = mid
		}
		if mid, ok := midpoint(kps, LeftShoulder, RightShoulder); ok {
			kps[MidShoulder] = mid
		}

		out = append(out, PoseFrame{
			FrameID:   frame.FrameID,
			Timestamp: frame.Timestamp,
			Keypoints: kps,
		})
	}
	return out
}

// midpoint derives the midpoint keypoint of two constituents. Visibility is
// the minimum of the two, so a low-confidence side makes the midpoint
// low-confidence as well.
func midpoint(kps map[string]Keypoint, left, right string) (Keypoint, bool) {
	l, lok := kps[left]
	r, rok := kps[right]
	if !lok || !rok {
		return Keypoint{}, false
	}
	return Keypoint{
		X:          (l.X + r.X) / 2,
		Y:          (l.Y + r.Y) / 2,
		Visibility: min(l.Visibility, r.Visibility),
	}, true
}
