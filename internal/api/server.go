// Package api exposes the ingest-and-analysis pipeline over a small REST
// surface. Every decision lives in the core packages; the handlers only
// translate between HTTP and the pipeline contracts.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/zip2job/zip2job/internal/analysis"
	"github.com/zip2job/zip2job/internal/bullets"
	"github.com/zip2job/zip2job/internal/catalog"
	"github.com/zip2job/zip2job/internal/common"
	"github.com/zip2job/zip2job/internal/consent"
	"github.com/zip2job/zip2job/internal/ingest"
)

// Server wires the HTTP routes to the pipeline.
type Server struct {
	router     chi.Router
	catalog    catalog.Store
	ingestor   *ingest.Ingestor
	pipeline   *analysis.Pipeline
	generator  *bullets.Generator
	gate       *consent.Gate
	uploadRoot string
}

// NewServer builds the router. uploadRoot receives transient multipart
// spools and is created on demand.
func NewServer(cat catalog.Store, ingestor *ingest.Ingestor, pipeline *analysis.Pipeline, generator *bullets.Generator, gate *consent.Gate, uploadRoot string) (*Server, error) {
	if strings.TrimSpace(uploadRoot) == "" {
		uploadRoot = filepath.Join(os.TempDir(), "zip2job_uploads")
	}
	if err := os.MkdirAll(uploadRoot, 0o755); err != nil {
		return nil, err
	}
	s := &Server{
		router:     chi.NewRouter(),
		catalog:    cat,
		ingestor:   ingestor,
		pipeline:   pipeline,
		generator:  generator,
		gate:       gate,
		uploadRoot: uploadRoot,
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/v1/uploads", s.handleUpload)
	s.router.Get("/v1/projects", s.handleListProjects)
	s.router.Get("/v1/projects/{id}", s.handleGetProject)
	s.router.Delete("/v1/projects/{id}", s.handleDeleteProject)
	s.router.Post("/v1/projects/{id}/analyze", s.handleAnalyzeProject)
	s.router.Post("/v1/projects/analyze", s.handleAnalyzeBatch)
	s.router.Post("/v1/projects/rerank", s.handleRerank)
	s.router.Post("/v1/projects/{id}/bullets", s.handleBullets)
	s.router.Get("/v1/score-config", s.handleGetScoreConfig)
	s.router.Put("/v1/score-config", s.handleSetScoreConfig)
	s.router.Get("/v1/consent", s.handleGetConsent)
	s.router.Put("/v1/consent", s.handleSetConsent)
	s.router.Get("/v1/logs", s.handleLogs)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps pipeline error kinds onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ingest.ErrInvalidArchive), errors.Is(err, catalog.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, ingest.ErrArchiveTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, ingest.ErrUnknownProject):
		status = http.StatusNotFound
	case errors.Is(err, ingest.ErrAmbiguousMapping), errors.Is(err, analysis.ErrConflict):
		status = http.StatusConflict
	}
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": common.LogEntries()})
}
