package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hakim/domainvet/internal/logger"
	"github.com/hakim/domainvet/internal/models"
	"github.com/hakim/domainvet/internal/pipeline"
	"github.com/hakim/domainvet/internal/report"
	"github.com/hakim/domainvet/internal/storage"
)

// APIInputName keys runs submitted over HTTP in the run index.
const APIInputName = "api"

type handlers struct {
	deps Deps
}

type validateRequest struct {
	Domains []string `json:"domains"`
}

type validateResponse struct {
	RunID   string                    `json:"run_id"`
	Status  models.RunStatus          `json:"status"`
	Summary models.BatchSummary       `json:"summary"`
	Elapsed float64                   `json:"elapsed_seconds"`
	Results []models.ValidationResult `json:"results"`
}

type runResponse struct {
	Run     *models.RunMeta           `json:"run"`
	Results []models.ValidationResult `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	domains := make([]string, 0, len(req.Domains))
	for _, d := range req.Domains {
		if strings.TrimSpace(d) != "" {
			domains = append(domains, d)
		}
	}
	if len(domains) == 0 {
		writeError(w, http.StatusBadRequest, "domains must contain at least one entry")
		return
	}
	if len(domains) > h.deps.MaxDomains {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("at most %d domains per request", h.deps.MaxDomains))
		return
	}

	batch := h.deps.Batch
	batch.OnResult = nil
	batch.Logger = h.deps.Logger

	var store pipeline.StoreInterface
	if h.deps.Store != nil {
		store = h.deps.Store
	}

	res, err := pipeline.RunPipeline(r.Context(), pipeline.RunConfig{
		InputFile: APIInputName,
		Profile:   h.deps.Profile,
		Domains:   domains,
		Batch:     batch,
		Notify:    h.deps.Notify,
		Out:       io.Discard,
	}, h.deps.Validator, store)
	if err != nil {
		h.deps.Logger.Error("validation run failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{
		RunID:   res.RunID,
		Status:  res.Status,
		Summary: res.Batch.Summary,
		Elapsed: res.Batch.Elapsed.Seconds(),
		Results: res.Batch.Results,
	})
}

func (h *handlers) listRuns(w http.ResponseWriter, r *http.Request) {
	if h.deps.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is disabled")
		return
	}

	runs, err := h.deps.Store.ListRuns(r.URL.Query().Get("input"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*models.RunMeta{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *handlers) getRun(w http.ResponseWriter, r *http.Request) {
	if h.deps.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is disabled")
		return
	}

	id := chi.URLParam(r, "id")
	meta, err := h.deps.Store.GetRun(id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	results, err := h.deps.Store.GetResults(id)
	if err != nil {
		h.storeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, report.RenderRunReport(meta, results))
		return
	}

	if results == nil {
		results = []models.ValidationResult{}
	}
	writeJSON(w, http.StatusOK, runResponse{Run: meta, Results: results})
}

func (h *handlers) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
