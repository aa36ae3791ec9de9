package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/zip2job/zip2job/internal/catalog"
	"github.com/zip2job/zip2job/internal/common"
	"github.com/zip2job/zip2job/internal/ingest"
)

const maxUploadMemory = 64 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, fmt.Errorf("%w: parse upload form: %v", ingest.ErrInvalidArchive, err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("archive")
	if err != nil {
		writeError(w, fmt.Errorf("%w: archive part required", ingest.ErrInvalidArchive))
		return
	}
	defer file.Close()

	var mapping map[string]string
	if raw := strings.TrimSpace(r.FormValue("project_mapping")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			writeError(w, fmt.Errorf("%w: decode project_mapping: %v", catalog.ErrInvalidArgument, err))
			return
		}
	}

	spool, err := os.CreateTemp(s.uploadRoot, "archive-*.zip")
	if err != nil {
		writeError(w, err)
		return
	}
	spoolPath := spool.Name()
	defer os.Remove(spoolPath)
	if _, err := io.Copy(spool, file); err != nil {
		spool.Close()
		writeError(w, err)
		return
	}
	spool.Close()

	// Keep the uploaded filename for project naming; the spool name is
	// just a scratch location.
	named := filepath.Join(filepath.Dir(spoolPath), filepath.Base(header.Filename))
	if named != spoolPath && filepath.Base(header.Filename) != "" {
		if err := os.Rename(spoolPath, named); err == nil {
			spoolPath = named
			defer os.Remove(named)
		}
	}

	matcher := ingest.NewMatcher(s.gate.IgnorePatterns(r.Context()))
	result, err := s.ingestor.IngestArchive(r.Context(), spoolPath, mapping, matcher)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.Info("api: upload ingested", "filename", header.Filename, "projects", len(result.Projects))
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.catalog.ListProjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.catalog.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	skills, err := s.catalog.ListProjectSkills(r.Context(), project.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"project": project, "skills": skills})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnalyzeProject(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	result, err := s.pipeline.AnalyzeProject(r.Context(), chi.URLParam(r, "id"), force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectIDs []string `json:"project_ids"`
		Force      bool     `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", catalog.ErrInvalidArgument, err))
		return
	}
	ids := req.ProjectIDs
	if len(ids) == 0 {
		projects, err := s.catalog.ListProjects(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		for _, p := range projects {
			ids = append(ids, p.ID)
		}
	}
	results, err := s.pipeline.AnalyzeBatch(r.Context(), ids, req.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"analyses": results})
}

func (s *Server) handleRerank(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ranks []catalog.RankAssignment `json:"ranks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", catalog.ErrInvalidArgument, err))
		return
	}
	if err := s.catalog.Rerank(r.Context(), req.Ranks); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBullets(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	var req struct {
		MaxBullets int  `json:"max_bullets"`
		UseAI      bool `json:"use_ai"`
		Force      bool `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, fmt.Errorf("%w: %v", catalog.ErrInvalidArgument, err))
		return
	}
	result, err := s.pipeline.AnalyzeProject(r.Context(), projectID, req.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	useAI := req.UseAI && s.gate.CanUseLLM(r.Context())
	generated, source := s.generator.Generate(r.Context(), result, req.MaxBullets, useAI)
	result.ResumeBullets = generated
	result.ResumeBulletSource = source

	payload, err := json.Marshal(map[string]interface{}{"bullets": generated, "source": source})
	if err == nil {
		item := catalog.GeneratedItem{Kind: "resume_bullets", ProjectID: projectID, Payload: string(payload)}
		if err := s.catalog.UpsertGeneratedItem(r.Context(), &item); err != nil {
			common.Logger().Warn("api: storing bullets failed", "project", projectID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bullets": generated, "source": source})
}

func (s *Server) handleGetScoreConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.catalog.GetScoreConfig(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSetScoreConfig(w http.ResponseWriter, r *http.Request) {
	var cfg catalog.ScoreConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, fmt.Errorf("%w: %v", catalog.ErrInvalidArgument, err))
		return
	}
	if err := s.catalog.SetScoreConfig(r.Context(), cfg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleGetConsent(w http.ResponseWriter, r *http.Request) {
	record, err := s.catalog.LatestConsent(r.Context())
	if err != nil {
		// Absence of a record is the deny-all default, not an error.
		writeJSON(w, http.StatusOK, catalog.ConsentRecord{})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleSetConsent(w http.ResponseWriter, r *http.Request) {
	var record catalog.ConsentRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, fmt.Errorf("%w: %v", catalog.ErrInvalidArgument, err))
		return
	}
	if err := s.catalog.UpsertConsent(r.Context(), &record); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
