// Package api exposes the analysis service over HTTP.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/betaview-data/betaview/internal/db"
	"github.com/betaview-data/betaview/internal/monitoring"
	"github.com/betaview-data/betaview/internal/pose"
	"github.com/betaview-data/betaview/internal/report"
	"github.com/betaview-data/betaview/internal/version"
)

// ANSI escape codes for request logging
const (
	colorCyan      = "\033[36m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
	colorReset     = "\033[0m"
)

// maxRequestBytes caps a submitted frame sequence. Two minutes of 30fps pose
// data is well under this.
const maxRequestBytes = 64 << 20

type Server struct {
	store    *db.DB
	analyzer *pose.Analyzer

	// jobs tracks in-flight background analyses so Close can drain them.
	jobs sync.WaitGroup
}

// NewServer wires the engine and store into an HTTP server.
func NewServer(store *db.DB, analyzer *pose.Analyzer) *Server {
	return &Server{store: store, analyzer: analyzer}
}

// Close waits for in-flight analyses to finish.
func (s *Server) Close() {
	s.jobs.Wait()
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/api/analyses", s.handleAnalyses)
	mux.HandleFunc("/api/analyses/", s.handleAnalysisByID)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status and duration for each request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to encode response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "betaview",
		"version": version.Version,
		"git_sha": version.GitSHA,
	})
}

// showConfig reports the effective engine configuration, so operators can
// verify which tuning overrides are live.
func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.analyzer.Config())
}

// analyzeRequest is the POST /api/analyses payload: the pose estimator's
// output for one video.
type analyzeRequest struct {
	Frames []pose.PoseFrame `json:"frames"`
}

func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.submitAnalysis(w, r)
	case http.MethodGet:
		s.listAnalyses(w, r)
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) submitAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Frames) == 0 {
		s.writeJSONError(w, http.StatusBadRequest, "no frames provided")
		return
	}

	id := uuid.NewString()
	if err := s.store.CreateAnalysis(id, len(req.Frames)); err != nil {
		monitoring.Logf("failed to create analysis: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to create analysis")
		return
	}

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		s.runAnalysis(id, req.Frames)
	}()

	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     id,
		"status": db.StatusPending,
	})
}

// runAnalysis executes one analysis job and persists the outcome. The engine
// itself is pure and synchronous; this wrapper owns the job lifecycle.
func (s *Server) runAnalysis(id string, frames []pose.PoseFrame) {
	if err := s.store.MarkProcessing(id); err != nil {
		monitoring.Logf("analysis %s: %v", id, err)
		return
	}

	metrics, err := s.analyzer.Analyze(frames)
	if err != nil {
		if dbErr := s.store.MarkFailed(id, err); dbErr != nil {
			monitoring.Logf("analysis %s: %v", id, dbErr)
		}
		monitoring.Logf("analysis %s failed: %v", id, err)
		return
	}

	if err := s.store.CompleteAnalysis(id, metrics); err != nil {
		monitoring.Logf("analysis %s: %v", id, err)
	}
}

func (s *Server) listAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	analyses, err := s.store.ListAnalyses(limit)
	if err != nil {
		monitoring.Logf("failed to list analyses: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	if analyses == nil {
		analyses = []db.Analysis{}
	}
	s.writeJSON(w, http.StatusOK, analyses)
}

func (s *Server) handleAnalysisByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeJSONError(w, http.StatusBadRequest, "missing analysis id")
		return
	}

	analysis, err := s.store.GetAnalysis(id)
	if errors.Is(err, sql.ErrNoRows) {
		s.writeJSONError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		monitoring.Logf("failed to load analysis %s: %v", id, err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}

	switch sub {
	case "":
		s.writeJSON(w, http.StatusOK, analysis)
	case "report":
		if analysis.Status != db.StatusCompleted || analysis.Metrics == nil {
			s.writeJSONError(w, http.StatusConflict, "analysis not completed")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.WriteMetricsReport(w, analysis.ID, analysis.Metrics); err != nil {
			monitoring.Logf("failed to render report for %s: %v", id, err)
		}
	default:
		s.writeJSONError(w, http.StatusNotFound, "unknown resource")
	}
}
