package endpoints

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/narrative/internal/api"
	"github.com/jackzampolin/narrative/internal/config"
	"github.com/jackzampolin/narrative/internal/decoder"
	"github.com/jackzampolin/narrative/internal/docstore"
	"github.com/jackzampolin/narrative/internal/jobs"
	"github.com/jackzampolin/narrative/internal/layout"
	"github.com/jackzampolin/narrative/internal/metrics"
	"github.com/jackzampolin/narrative/internal/tokenizer"
)

// AnalyzeRequest is the request body for POST /api/narrative/analyze.
type AnalyzeRequest struct {
	// FixturePath points to a JSON fixture document (see internal/decoder);
	// a real PDF path is accepted under the same field for convenience.
	FixturePath string `json:"fixture_path"`
	MaxPages    int    `json:"max_pages,omitempty"`
}

// AnalyzeResponse is the response for a successful analyze submission.
type AnalyzeResponse struct {
	DocID      string `json:"doc_id"`
	JobID      string `json:"job_id"`
	PageCount  int    `json:"page_count"`
	TokenCount int    `json:"token_count"`
}

// AnalyzeEndpoint handles POST /api/narrative/analyze.
type AnalyzeEndpoint struct {
	jobManager *jobs.Manager
	docStore   *docstore.DocStore
	recorder   *metrics.Recorder
	configMgr  *config.Manager
}

func (e *AnalyzeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/narrative/analyze", e.handler
}

func (e *AnalyzeEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Analyze a document
//	@Description	Runs the layout pipeline over a fixture or PDF document and caches the result for anchor/selection lookups
//	@Tags			narrative
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AnalyzeRequest	true	"Analyze request"
//	@Success		200		{object}	AnalyzeResponse
//	@Failure		400		{object}	api.ErrorResponse
//	@Failure		500		{object}	api.ErrorResponse
//	@Router			/api/narrative/analyze [post]
func (e *AnalyzeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FixturePath == "" {
		api.WriteError(w, http.StatusBadRequest, "fixture_path is required")
		return
	}

	var ps decoder.Decoder
	if strings.EqualFold(filepath.Ext(req.FixturePath), ".pdf") {
		pdf, err := decoder.OpenPDF(req.FixturePath)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		ps = pdf
	} else {
		fixture, err := decoder.LoadFixture(req.FixturePath)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		ps = decoder.NewFixtureDecoder(fixture)
	}

	cfg := layout.DefaultConfig()
	if e.configMgr != nil {
		cfg = e.configMgr.Get().LayoutConfig()
	}
	if req.MaxPages > 0 {
		cfg.MaxPages = req.MaxPages
	}

	docID := uuid.NewString()
	jobID := uuid.NewString()
	start := time.Now()

	// SubmitAndWait runs the analysis on the worker pool at PriorityHigh
	// rather than computing it inline, so a slow document doesn't starve
	// the pool's own accounting (queue depth, job records) of a unit to
	// track.
	res, err := e.jobManager.SubmitAndWait(r.Context(), "analyze", map[string]any{"doc_id": docID}, &jobs.WorkUnit{
		ID:       uuid.NewString(),
		Type:     jobs.WorkUnitTypeAnalyze,
		JobID:    jobID,
		Priority: jobs.PriorityHigh,
		AnalyzeRequest: &jobs.AnalyzeRequest{
			DocID:     docID,
			Decoder:   ps,
			Tokenizer: tokenizer.NewWordTokenizer(),
			Config:    cfg,
		},
	})
	if err != nil {
		e.recorder.RecordError(r.Context(), metrics.RecordOpts{DocID: docID, Stage: "analyze"}, "analyze_error", time.Since(start))
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !res.Success || res.AnalyzeResult == nil {
		msg := "analyze failed"
		if res.Error != nil {
			msg = res.Error.Error()
		}
		e.recorder.RecordError(r.Context(), metrics.RecordOpts{DocID: docID, Stage: "analyze"}, "analyze_error", time.Since(start))
		api.WriteError(w, http.StatusInternalServerError, msg)
		return
	}

	idx := res.AnalyzeResult
	e.docStore.Put(docID, idx)
	e.recorder.RecordStage(r.Context(), metrics.RecordOpts{DocID: docID, Stage: "analyze"}, time.Since(start), len(idx.Pages), countBlocks(idx), len(idx.Tokens))

	api.WriteJSON(w, http.StatusOK, AnalyzeResponse{
		DocID:      docID,
		JobID:      jobID,
		PageCount:  len(idx.Pages),
		TokenCount: len(idx.Tokens),
	})
}

func countBlocks(idx *layout.NarrativeIndex) int {
	n := 0
	for _, p := range idx.Pages {
		n += len(p.Blocks)
	}
	return n
}
