// Package server exposes the screening wizard over HTTP: company search,
// background report jobs, exports, and the stored preferences.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/joelkehle/kyc-screener/internal/export"
	"github.com/joelkehle/kyc-screener/internal/llm"
	"github.com/joelkehle/kyc-screener/internal/screening"
	"github.com/joelkehle/kyc-screener/internal/store"
)

const genericError = "An unexpected error occurred. Please try again."

type CompanySearcher interface {
	Search(ctx context.Context, query string, loc *llm.LatLng) ([]screening.Company, error)
}

type ReportGenerator interface {
	Sections() []screening.SectionDefinition
	Generate(ctx context.Context, company screening.Company, progress screening.ProgressFunc) (screening.ComprehensiveReport, error)
}

type Dependencies struct {
	Searcher  CompanySearcher
	Generator ReportGenerator
	Store     store.Store
	// PDF may be nil, in which case PDF downloads answer 503.
	PDF    export.PDFRenderer
	Logger *zap.Logger
}

type Server struct {
	searcher  CompanySearcher
	generator ReportGenerator
	prefs     store.Store
	pdf       export.PDFRenderer
	jobs      *JobStore
	logger    *zap.Logger
	router    *chi.Mux

	// baseCtx bounds background jobs. It outlives any single request and
	// ends with the process context.
	baseCtx context.Context
	wg      sync.WaitGroup
}

func New(ctx context.Context, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		searcher:  deps.Searcher,
		generator: deps.Generator,
		prefs:     deps.Store,
		pdf:       deps.PDF,
		jobs:      NewJobStore(),
		logger:    logger,
		baseCtx:   ctx,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/reports", s.handleCreateReport)
		r.Get("/reports/{token}", s.handleReportStatus)
		r.Get("/reports/{token}/markdown", s.handleReportMarkdown)
		r.Get("/reports/{token}/pdf", s.handleReportPDF)
		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Get("/preferences/theme", s.handleGetTheme)
		r.Put("/preferences/theme", s.handleSetTheme)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Wait blocks until every background report job has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

// Run serves on addr until ctx is cancelled, then drains requests and
// waits for running jobs. Jobs observe the context given to New, so
// cancelling that context ends them.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		s.Wait()
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type searchRequest struct {
	Query     string   `json:"query"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var loc *llm.LatLng
	if req.Latitude != nil && req.Longitude != nil {
		loc = &llm.LatLng{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	companies, err := s.searcher.Search(r.Context(), req.Query, loc)
	switch {
	case errors.Is(err, screening.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, "query is required")
		return
	case err != nil:
		s.logger.Error("search failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to search for companies. The API may be unavailable or the query may be invalid.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
}

type createReportRequest struct {
	Company screening.Company `json:"company"`
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Company.Name = strings.TrimSpace(req.Company.Name)
	if req.Company.Name == "" {
		writeError(w, http.StatusBadRequest, "company.name is required")
		return
	}
	job := s.jobs.Create(req.Company, s.generator.Sections())
	s.wg.Add(1)
	go s.runJob(job.Token, req.Company)
	writeJSON(w, http.StatusAccepted, map[string]any{"token": job.Token})
}

func (s *Server) runJob(token string, company screening.Company) {
	defer s.wg.Done()
	log := s.logger.With(zap.String("token", token), zap.String("company", company.Name))
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("report generation panicked", zap.Any("panic", rec), zap.Stack("stack"))
			s.jobs.Fail(token, genericError)
		}
	}()

	report, err := s.generator.Generate(s.baseCtx, company, s.jobs.progressFunc(token))
	if err != nil {
		log.Error("report generation failed", zap.Error(err))
		s.jobs.Fail(token, genericError)
		return
	}
	s.jobs.Complete(token, report)
	log.Info("report job complete")
}

func (s *Server) handleReportStatus(w http.ResponseWriter, r *http.Request) {
	view, ok := s.jobs.Get(chi.URLParam(r, "token"))
	if !ok {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) readyReport(w http.ResponseWriter, r *http.Request) (*screening.ComprehensiveReport, bool) {
	view, ok := s.jobs.Get(chi.URLParam(r, "token"))
	if !ok {
		writeError(w, http.StatusNotFound, "report not found")
		return nil, false
	}
	if view.Report == nil {
		writeError(w, http.StatusNotFound, "report not ready")
		return nil, false
	}
	return view.Report, true
}

func (s *Server) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	report, ok := s.readyReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, export.BuildMarkdown(*report))
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if s.pdf == nil {
		writeError(w, http.StatusServiceUnavailable, "pdf renderer unavailable")
		return
	}
	report, ok := s.readyReport(w, r)
	if !ok {
		return
	}
	pdf, err := s.pdf.Render(r.Context(), *report)
	if err != nil {
		s.logger.Error("render report pdf failed", zap.String("token", chi.URLParam(r, "token")), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render pdf")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(report.CompanySummary.Name)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	searches, err := s.prefs.RecentSearches()
	if err != nil {
		s.logger.Error("load history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, genericError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"searches": searches})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, _ *http.Request) {
	if err := s.prefs.ClearHistory(); err != nil {
		s.logger.Error("clear history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, genericError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, _ *http.Request) {
	theme, err := s.prefs.Theme()
	if err != nil {
		s.logger.Error("load theme", zap.Error(err))
		writeError(w, http.StatusInternalServerError, genericError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"theme": theme})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	theme, err := store.ParseTheme(req.Theme)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.prefs.SetTheme(theme); err != nil {
		s.logger.Error("save theme", zap.Error(err))
		writeError(w, http.StatusInternalServerError, genericError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"theme": theme})
}
