// Package pose implements the BetaView motion analysis engine. It consumes a
// complete, time-ordered sequence of 2D body keypoints produced by an external
// pose estimator and derives a fixed set of climbing technique metrics:
// path efficiency, movement rhythm, foot-placement stability, body tension,
// directional entropy, joint-angle openness, reach timing and centre-of-mass
// smoothness.
//
// The engine is a synchronous in-process computation with no I/O. Each
// analysis owns its own smoother state and trajectory buffers, so concurrent
// analyses need no locking.
package pose

// Keypoint landmark names as delivered by the pose estimator.
const (
	Nose           = "nose"
	LeftShoulder   = "left_shoulder"
	RightShoulder  = "right_shoulder"
	LeftElbow      = "left_elbow"
	RightElbow     = "right_elbow"
	LeftWrist      = "left_wrist"
	RightWrist     = "right_wrist"
	LeftHip        = "left_hip"
	RightHip       = "right_hip"
	LeftKnee       = "left_knee"
	RightKnee      = "right_knee"
	LeftAnkle      = "left_ankle"
	RightAnkle     = "right_ankle"
	LeftHeel       = "left_heel"
	RightHeel      = "right_heel"
	LeftFootIndex  = "left_foot_index"
	RightFootIndex = "right_foot_index"

	// Derived midpoints, computed from their left/right constituents with
	// visibility = min of the two.
	MidHip      = "mid_hip"
	MidShoulder = "mid_shoulder"
)

// Keypoint is one landmark observation in frame pixel coordinates.
// Visibility below the configured threshold means the position must be
// treated as absent; the engine never interpolates missing landmarks.
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility"`
}

// PoseFrame holds all landmark observations for a single video frame.
// Timestamps are seconds and monotonically non-decreasing across a sequence.
type PoseFrame struct {
	FrameID   int                 `json:"frame_id"`
	Timestamp float64             `json:"timestamp"`
	Keypoints map[string]Keypoint `json:"keypoints"`
}

// Point is a 2D position in frame pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Trajectory is the time-ordered positions of one landmark across the frames
// where it was confidently observed. Times carries the frame timestamp for
// each sample; the extractor appends both together so len(Points) always
// equals len(Times). A trajectory may be shorter than the frame count and is
// not required to be evenly sampled.
type Trajectory struct {
	Points []Point   `json:"points"`
	Times  []float64 `json:"times"`
}

// Len returns the number of samples in the trajectory.
func (t Trajectory) Len() int { return len(t.Points) }

// TrajectorySet is the extractor output consumed by the analyzers.
type TrajectorySet struct {
	Hip      Trajectory
	Shoulder Trajectory

	// Ankles and Wrists are keyed by landmark name (left_ankle, right_wrist, ...).
	Ankles map[string]Trajectory
	Wrists map[string]Trajectory
}
