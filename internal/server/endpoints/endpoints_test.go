package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackzampolin/narrative/internal/docstore"
	"github.com/jackzampolin/narrative/internal/jobs"
	"github.com/jackzampolin/narrative/internal/layout"
	"github.com/jackzampolin/narrative/internal/metrics"
)

func newTestDocStore(t *testing.T) (*docstore.DocStore, string) {
	t.Helper()
	ds := docstore.New()
	docID := "doc-1"
	idx := &layout.NarrativeIndex{
		FullText: "brown fox",
		Tokens:   []string{"brown", "fox"},
		TokenMeta: []layout.TokenMeta{
			{PageIndex: 0, ColumnIndex: 0, BlockIndex: 0},
			{PageIndex: 0, ColumnIndex: 0, BlockIndex: 0},
		},
		Pages: []layout.Page{
			{
				PageIndex: 0,
				Blocks: []layout.Block{
					{
						PageIndex:  0,
						BlockIndex: 0,
						Type:       layout.BlockParagraph,
						Text:       "brown fox",
						Included:   true,
						Box:        layout.Rect{X0: 0, Y0: 0, X1: 1, Y1: 0.1},
						Tokens:     []string{"brown", "fox"},
						TokenKeys:  []string{"brown", "fox"},
						TokenRange: layout.TokenRange{Start: 0, End: 2},
					},
				},
			},
		},
		ReferencesHardStopTokenIndex: -1,
	}
	ds.Put(docID, idx)
	return ds, docID
}

func TestJobsGetEndpointReturnsNotFoundForUnknownID(t *testing.T) {
	mgr := jobs.NewManager(1, slog.Default())
	ep := &JobsGetEndpoint{jobManager: mgr}

	req := httptest.NewRequest("GET", "/api/narrative/jobs/does-not-exist", nil)
	req.SetPathValue("id", "does-not-exist")
	rec := httptest.NewRecorder()

	ep.handler(rec, req)
	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestJobsGetEndpointReturnsRecordForKnownJob(t *testing.T) {
	mgr := jobs.NewManager(1, slog.Default())
	jobID := "job-123"
	mgr.Submit("analyze", nil, &jobs.WorkUnit{
		ID:    "unit-1",
		Type:  jobs.WorkUnitTypeAnalyze,
		JobID: jobID,
		AnalyzeRequest: &jobs.AnalyzeRequest{
			DocID:     "doc-1",
			Tokenizer: nil,
			Config:    layout.DefaultConfig(),
		},
	})

	ep := &JobsGetEndpoint{jobManager: mgr}
	req := httptest.NewRequest("GET", "/api/narrative/jobs/"+jobID, nil)
	req.SetPathValue("id", jobID)
	rec := httptest.NewRecorder()

	ep.handler(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var got jobs.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Status != jobs.StatusQueued {
		t.Errorf("Status = %v, want %v", got.Status, jobs.StatusQueued)
	}
}

func TestAnchorResolveEndpointUnknownDocReturns404(t *testing.T) {
	ds := docstore.New()
	ep := &AnchorResolveEndpoint{docStore: ds}

	req := httptest.NewRequest("GET", "/api/narrative/missing/anchors/0", nil)
	req.SetPathValue("doc", "missing")
	req.SetPathValue("token", "0")
	rec := httptest.NewRecorder()

	ep.handler(rec, req)
	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAnchorResolveEndpointBuildsAnchorForValidToken(t *testing.T) {
	ds, docID := newTestDocStore(t)
	ep := &AnchorResolveEndpoint{docStore: ds}

	req := httptest.NewRequest("GET", "/api/narrative/"+docID+"/anchors/0", nil)
	req.SetPathValue("doc", docID)
	req.SetPathValue("token", "0")
	rec := httptest.NewRecorder()

	ep.handler(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var anchor layout.Anchor
	if err := json.Unmarshal(rec.Body.Bytes(), &anchor); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if anchor.TokenKey != "brown" {
		t.Errorf("TokenKey = %q, want %q", anchor.TokenKey, "brown")
	}
}

func TestAnchorResolveEndpointRejectsNonIntegerToken(t *testing.T) {
	ds, docID := newTestDocStore(t)
	ep := &AnchorResolveEndpoint{docStore: ds}

	req := httptest.NewRequest("GET", "/api/narrative/"+docID+"/anchors/notanumber", nil)
	req.SetPathValue("doc", docID)
	req.SetPathValue("token", "notanumber")
	rec := httptest.NewRecorder()

	ep.handler(rec, req)
	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSelectionResolveEndpointUnknownDocReturns404(t *testing.T) {
	ds := docstore.New()
	ep := &SelectionResolveEndpoint{docStore: ds}

	body, _ := json.Marshal(SelectionRequest{PageIndex: 0})
	req := httptest.NewRequest("POST", "/api/narrative/missing/selection", bytes.NewReader(body))
	req.SetPathValue("doc", "missing")
	rec := httptest.NewRecorder()

	ep.handler(rec, req)
	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSelectionResolveEndpointResolvesAnchor(t *testing.T) {
	ds, docID := newTestDocStore(t)
	idx := ds.Get(docID)
	anchor, err := layout.BuildAnchor(idx, 0)
	if err != nil {
		t.Fatalf("BuildAnchor: %v", err)
	}
	ep := &SelectionResolveEndpoint{docStore: ds}

	body, _ := json.Marshal(SelectionRequest{Anchor: &anchor})
	req := httptest.NewRequest("POST", "/api/narrative/"+docID+"/selection", bytes.NewReader(body))
	req.SetPathValue("doc", docID)
	rec := httptest.NewRecorder()

	ep.handler(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var got SelectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Resolved {
		t.Error("expected the anchor to resolve")
	}
}

func TestSelectionResolveEndpointHitTestsPoint(t *testing.T) {
	ds, docID := newTestDocStore(t)
	ep := &SelectionResolveEndpoint{docStore: ds}

	body, _ := json.Marshal(SelectionRequest{PageIndex: 0, XMidN: 0.5, YMidN: 0.05})
	req := httptest.NewRequest("POST", "/api/narrative/"+docID+"/selection", bytes.NewReader(body))
	req.SetPathValue("doc", docID)
	rec := httptest.NewRecorder()

	ep.handler(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var got SelectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Resolved || got.TokenRange == nil {
		t.Errorf("got = %+v, want a resolved hit against the single included block", got)
	}
}

func TestSelectionResolveEndpointRejectsMalformedBody(t *testing.T) {
	ds, docID := newTestDocStore(t)
	ep := &SelectionResolveEndpoint{docStore: ds}

	req := httptest.NewRequest("POST", "/api/narrative/"+docID+"/selection", bytes.NewReader([]byte("{not json")))
	req.SetPathValue("doc", docID)
	rec := httptest.NewRecorder()

	ep.handler(rec, req)
	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeEndpointRequiresFixturePath(t *testing.T) {
	mgr := jobs.NewManager(1, slog.Default())
	ep := &AnalyzeEndpoint{
		jobManager: mgr,
		docStore:   docstore.New(),
		recorder:   metrics.NewRecorder(metrics.NewStore()),
	}

	body, _ := json.Marshal(AnalyzeRequest{})
	req := httptest.NewRequest("POST", "/api/narrative/analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	ep.handler(rec, req)
	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeEndpointRejectsUnreadableFixturePath(t *testing.T) {
	mgr := jobs.NewManager(1, slog.Default())
	ep := &AnalyzeEndpoint{
		jobManager: mgr,
		docStore:   docstore.New(),
		recorder:   metrics.NewRecorder(metrics.NewStore()),
	}

	body, _ := json.Marshal(AnalyzeRequest{FixturePath: filepath.Join(t.TempDir(), "missing.json")})
	req := httptest.NewRequest("POST", "/api/narrative/analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	ep.handler(rec, req)
	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeEndpointRunsPipelineEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	fixture := `{"pages":[{"width":600,"height":800,"items":[
		{"str":"Hello","transform":[12,0,0,12,50,700],"width":40,"height":12}
	]}]}`
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	mgr := jobs.NewManager(2, slog.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mgr.Start(ctx)

	ep := &AnalyzeEndpoint{
		jobManager: mgr,
		docStore:   docstore.New(),
		recorder:   metrics.NewRecorder(metrics.NewStore()),
	}

	body, _ := json.Marshal(AnalyzeRequest{FixturePath: path})
	req := httptest.NewRequest("POST", "/api/narrative/analyze", bytes.NewReader(body)).WithContext(ctx)
	rec := httptest.NewRecorder()

	ep.handler(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var got AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", got.PageCount)
	}
	if ep.docStore.Get(got.DocID) == nil {
		t.Error("expected the analyze result to be cached in the doc store")
	}
}

func TestAllRegistersEveryEndpoint(t *testing.T) {
	eps := All(Deps{
		JobManager: jobs.NewManager(1, slog.Default()),
		DocStore:   docstore.New(),
		Recorder:   metrics.NewRecorder(metrics.NewStore()),
	})
	if len(eps) != 4 {
		t.Fatalf("got %d endpoints, want 4", len(eps))
	}
}
