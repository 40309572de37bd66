// Package api exposes persisted enrichment runs as a read-only JSON API.
package api

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
	"github.com/TenSixteenBio/GSEApy/ports"
)

// Server serves run summaries and records over HTTP
type Server struct {
	repo ports.RunRepository
}

// NewServer creates the API server around a run repository
func NewServer(repo ports.RunRepository) *Server {
	return &Server{repo: repo}
}

// Router builds the chi route tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
		r.Get("/runs/{runID}/records", s.handleGetRecords)
	})
	return r
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.repo.ListRuns(r.Context(), 100)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.repo.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.repo.GetRecords(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]recordResponse, len(records))
	for i, rec := range records {
		out[i] = toRecordResponse(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

// recordResponse mirrors EnrichmentRecord with nullable statistics, since
// NaN is not representable in JSON
type recordResponse struct {
	Term        string   `json:"term"`
	ES          float64  `json:"es"`
	NES         *float64 `json:"nes"`
	Pval        *float64 `json:"pval"`
	FDR         *float64 `json:"fdr"`
	MatchedSize int      `json:"matched_size"`
	GeneSetSize int      `json:"gene_set_size"`
	HitIndices  []int    `json:"hit_indices"`
	LeadGenes   []string `json:"lead_genes,omitempty"`
}

func toRecordResponse(r gsea.EnrichmentRecord) recordResponse {
	return recordResponse{
		Term:        r.Term,
		ES:          r.ES,
		NES:         nullable(r.NES),
		Pval:        nullable(r.Pval),
		FDR:         nullable(r.FDR),
		MatchedSize: r.MatchedSize,
		GeneSetSize: r.GeneSetSize,
		HitIndices:  r.HitIndices,
		LeadGenes:   r.LeadGenes,
	}
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.HasCode(err, errors.CodeNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{
		"code":  errors.GetCode(err),
		"error": err.Error(),
	})
}
