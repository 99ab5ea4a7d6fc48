package pose

// ExtractTrajectories assembles named trajectories from smoothed frames.
//
// Mid-hip and mid-shoulder prefer the already-derived midpoint keypoint and
// fall back to averaging the left/right sides when the midpoint is absent but
// both sides are confidently visible; a frame with neither contributes no
// sample. Ankle and wrist trajectories are collected directly, keeping only
// frames where visibility exceeds the threshold.
//
// Every trajectory is extended together with its timestamp slice, so length
// parity holds for all of them. Analyzers still verify parity before use.
func ExtractTrajectories(frames []PoseFrame, cfg Config) *TrajectorySet {
	ts := &TrajectorySet{
		Ankles: map[string]Trajectory{LeftAnkle: {}, RightAnkle: {}},
		Wrists: map[string]Trajectory{LeftWrist: {}, RightWrist: {}},
	}

	for _, frame := range frames {
		if p, ok := resolveMidpoint(frame.Keypoints, MidHip, LeftHip, RightHip, cfg.VisibilityThreshold); ok {
			ts.Hip.Points = append(ts.Hip.Points, p)
			ts.Hip.Times = append(ts.Hip.Times, frame.Timestamp)
		}
		if p, ok := resolveMidpoint(frame.Keypoints, MidShoulder, LeftShoulder, RightShoulder, cfg.VisibilityThreshold); ok {
			ts.Shoulder.Points = append(ts.Shoulder.Points, p)
			ts.Shoulder.Times = append(ts.Shoulder.Times, frame.Timestamp)
		}

		for _, name := range []string{LeftAnkle, RightAnkle} {
			if kp, ok := frame.Keypoints[name]; ok && kp.Visibility > cfg.VisibilityThreshold {
				tr := ts.Ankles[name]
				tr.Points = append(tr.Points, Point{X: kp.X, Y: kp.Y})
				tr.Times = append(tr.Times, frame.Timestamp)
				ts.Ankles[name] = tr
			}
		}
		for _, name := range []string{LeftWrist, RightWrist} {
			if kp, ok := frame.Keypoints[name]; ok && kp.Visibility > cfg.VisibilityThreshold {
				tr := ts.Wrists[name]
				tr.Points = append(tr.Points, Point{X: kp.X, Y: kp.Y})
				tr.Times = append(tr.Times, frame.Timestamp)
				ts.Wrists[name] = tr
			}
		}
	}

	return ts
}

// resolveMidpoint returns the position for a derived midpoint, preferring the
// precomputed keypoint over averaging the two sides.
func resolveMidpoint(kps map[string]Keypoint, mid, left, right string, threshold float64) (Point, bool) {
	if kp, ok := kps[mid]; ok && kp.Visibility > threshold {
		return Point{X: kp.X, Y: kp.Y}, true
	}
	l, lok := kps[left]
	r, rok := kps[right]
	if lok && rok && l.Visibility > threshold && r.Visibility > threshold {
		return Point{X: (l.X + r.X) / 2, Y: (l.Y + r.Y) / 2}, true
	}
	return Point{}, false
}
