package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/sitecheck/internal/domain"
	apimw "github.com/hamed0406/sitecheck/internal/httpapi/middleware"
	"github.com/hamed0406/sitecheck/internal/repo"
	"github.com/hamed0406/sitecheck/internal/report"
)

// Server exposes the most recent pass read-only.
type Server struct {
	Logger *zap.Logger
	Runs   repo.RunStore
	Style  report.Style
}

func NewServer(l *zap.Logger, runs repo.RunStore, style report.Style) *Server {
	return &Server{Logger: l, Runs: runs, Style: style}
}

func (s *Server) Router(rpm, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(apimw.RateLimit(rpm, burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/api/report", s.handleReportJSON)
	r.Get("/api/report.txt", s.handleReportText)

	return r
}

type reportResponse struct {
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Summary    string               `json:"summary"`
	Healthy    bool                 `json:"healthy"`
	Buckets    report.Buckets       `json:"buckets"`
	Results    []domain.CheckResult `json:"results"`
}

func (s *Server) latest(w http.ResponseWriter, r *http.Request) *domain.Run {
	run, err := s.Runs.Latest(r.Context())
	if err != nil {
		s.Logger.Warn("report_read_error", zap.Error(err))
		http.Error(w, "read error", http.StatusInternalServerError)
		return nil
	}
	if run == nil {
		http.Error(w, "no completed run yet", http.StatusNotFound)
		return nil
	}
	return run
}

func (s *Server) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	run := s.latest(w, r)
	if run == nil {
		return
	}
	b := report.Classify(run.Results)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reportResponse{
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Summary:    b.Summary(),
		Healthy:    b.Healthy(),
		Buckets:    b,
		Results:    run.Results,
	})
}

func (s *Server) handleReportText(w http.ResponseWriter, r *http.Request) {
	run := s.latest(w, r)
	if run == nil {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := report.Write(w, s.Style, report.Classify(run.Results)); err != nil {
		s.Logger.Warn("report_write_error", zap.Error(err))
	}
}
