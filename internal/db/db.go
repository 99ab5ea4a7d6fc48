// Package db persists analyses and their computed metrics in sqlite.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/betaview-data/betaview/internal/pose"
)

// Analysis lifecycle states.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the sqlite database at path. Run MigrateUp before
// first use to bring the schema current.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The modernc driver serialises access through a single connection; more
	// would contend on sqlite's write lock.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	return &DB{sqlDB}, nil
}

// Analysis is one stored analysis job and, once completed, its metrics.
type Analysis struct {
	ID          string             `json:"id"`
	Status      string             `json:"status"`
	FrameCount  int                `json:"frame_count"`
	Error       string             `json:"error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	Metrics     *pose.ClimbMetrics `json:"metrics,omitempty"`
}

// CreateAnalysis records a new pending analysis.
func (db *DB) CreateAnalysis(id string, frameCount int) error {
	_, err := db.Exec(
		`INSERT INTO analyses (id, status, frame_count) VALUES (?, ?, ?)`,
		id, StatusPending, frameCount,
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis %s: %w", id, err)
	}
	return nil
}

// MarkProcessing transitions an analysis to the processing state.
func (db *DB) MarkProcessing(id string) error {
	_, err := db.Exec(`UPDATE analyses SET status = ? WHERE id = ?`, StatusProcessing, id)
	if err != nil {
		return fmt.Errorf("failed to mark analysis %s processing: %w", id, err)
	}
	return nil
}

// MarkFailed records a failed analysis with its error message.
func (db *DB) MarkFailed(id string, cause error) error {
	_, err := db.Exec(
		`UPDATE analyses SET status = ?, error = ?, completed_at = CURRENT_TIMESTAMP WHERE id = ?`,
		StatusFailed, cause.Error(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark analysis %s failed: %w", id, err)
	}
	return nil
}

// CompleteAnalysis stores the metrics record and marks the analysis
// completed, atomically: readers never observe a completed analysis without
// its metrics.
func (db *DB) CompleteAnalysis(id string, m *pose.ClimbMetrics) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO climb_metrics (
			analysis_id, path_efficiency, total_distance, direct_distance,
			move_count, avg_pause_duration, rhythm_variance,
			avg_foot_jitter, clean_placements, total_placements, stability_score,
			body_tension_score, sag_count, climb_duration,
			trajectory_entropy, elbow_extension_ratio, shoulder_relax_ratio,
			long_reach_count, avg_reach_duration, com_smoothness_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, m.PathEfficiency, m.TotalDistance, m.DirectDistance,
		m.MoveCount, m.AvgPauseDuration, m.RhythmVariance,
		m.AvgFootJitter, m.CleanPlacements, m.TotalPlacements, m.StabilityScore,
		m.BodyTensionScore, m.SagCount, m.ClimbDuration,
		m.TrajectoryEntropy, m.ElbowExtensionRatio, m.ShoulderRelaxRatio,
		m.LongReachCount, m.AvgReachDuration, m.ComSmoothnessScore,
	); err != nil {
		return fmt.Errorf("failed to insert metrics for %s: %w", id, err)
	}

	if _, err := tx.Exec(
		`UPDATE analyses SET status = ?, completed_at = CURRENT_TIMESTAMP WHERE id = ?`,
		StatusCompleted, id,
	); err != nil {
		return fmt.Errorf("failed to complete analysis %s: %w", id, err)
	}

	return tx.Commit()
}

// GetAnalysis fetches one analysis by id, including metrics when completed.
// Returns sql.ErrNoRows when the id is unknown.
func (db *DB) GetAnalysis(id string) (*Analysis, error) {
	a := &Analysis{}
	var errMsg sql.NullString
	var completedAt sql.NullTime

	err := db.QueryRow(
		`SELECT id, status, frame_count, error, created_at, completed_at
		 FROM analyses WHERE id = ?`, id,
	).Scan(&a.ID, &a.Status, &a.FrameCount, &errMsg, &a.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if errMsg.Valid {
		a.Error = errMsg.String
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}

	if a.Status == StatusCompleted {
		m, err := db.getMetrics(id)
		if err != nil {
			return nil, err
		}
		a.Metrics = m
	}

	return a, nil
}

func (db *DB) getMetrics(id string) (*pose.ClimbMetrics, error) {
	m := &pose.ClimbMetrics{}
	err := db.QueryRow(`
		SELECT path_efficiency, total_distance, direct_distance,
			move_count, avg_pause_duration, rhythm_variance,
			avg_foot_jitter, clean_placements, total_placements, stability_score,
			body_tension_score, sag_count, climb_duration,
			trajectory_entropy, elbow_extension_ratio, shoulder_relax_ratio,
			long_reach_count, avg_reach_duration, com_smoothness_score
		FROM climb_metrics WHERE analysis_id = ?`, id,
	).Scan(
		&m.PathEfficiency, &m.TotalDistance, &m.DirectDistance,
		&m.MoveCount, &m.AvgPauseDuration, &m.RhythmVariance,
		&m.AvgFootJitter, &m.CleanPlacements, &m.TotalPlacements, &m.StabilityScore,
		&m.BodyTensionScore, &m.SagCount, &m.ClimbDuration,
		&m.TrajectoryEntropy, &m.ElbowExtensionRatio, &m.ShoulderRelaxRatio,
		&m.LongReachCount, &m.AvgReachDuration, &m.ComSmoothnessScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics for %s: %w", id, err)
	}
	return m, nil
}

// ListAnalyses returns the most recent analyses, newest first, without
// loading metric rows.
func (db *DB) ListAnalyses(limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT id, status, frame_count, error, created_at, completed_at
		 FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var a Analysis
		var errMsg sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.Status, &a.FrameCount, &errMsg, &a.CreatedAt, &completedAt); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			a.Error = errMsg.String
		}
		if completedAt.Valid {
			a.CompletedAt = &completedAt.Time
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
