package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/jackzampolin/narrative/internal/api"
	"github.com/jackzampolin/narrative/internal/docstore"
	"github.com/jackzampolin/narrative/internal/layout"
)

// SelectionRequest resolves either a previously built Anchor back to a
// token index, or a point/rectangle hit-test to the TokenRange it covers.
// Exactly one of Anchor or the point/rect fields is expected to be set;
// Anchor takes precedence if both are present.
type SelectionRequest struct {
	Anchor *layout.Anchor `json:"anchor,omitempty"`

	PageIndex int     `json:"page_index"`
	XMidN     float64 `json:"x_mid_n"`
	YMidN     float64 `json:"y_mid_n"`

	HasRect bool       `json:"has_rect"`
	Rect    layout.Rect `json:"rect"`
}

// SelectionResponse reports the outcome of either resolution path.
type SelectionResponse struct {
	Resolved bool `json:"resolved"`

	// Populated when resolving an Anchor.
	TokenIndex int `json:"token_index,omitempty"`

	// Populated when hit-testing a point or rectangle.
	TokenRange  *layout.TokenRange `json:"token_range,omitempty"`
	ColumnIndex int                `json:"column_index,omitempty"`
	BlockIndex  int                `json:"block_index,omitempty"`
	SpanColumns bool               `json:"span_columns,omitempty"`
	SpanBlocks  bool               `json:"span_blocks,omitempty"`
}

// SelectionResolveEndpoint handles POST /api/narrative/{doc}/selection.
type SelectionResolveEndpoint struct {
	docStore *docstore.DocStore
}

func (e *SelectionResolveEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/narrative/{doc}/selection", e.handler
}

func (e *SelectionResolveEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Resolve a selection
//	@Description	Resolves an Anchor back to a token index, or hit-tests a point/rectangle against the document's blocks
//	@Tags			narrative
//	@Accept			json
//	@Produce		json
//	@Param			doc		path		string				true	"Document ID"
//	@Param			request	body		SelectionRequest	true	"Selection request"
//	@Success		200		{object}	SelectionResponse
//	@Failure		400		{object}	api.ErrorResponse
//	@Failure		404		{object}	api.ErrorResponse
//	@Router			/api/narrative/{doc}/selection [post]
func (e *SelectionResolveEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("doc")
	idx := e.docStore.Get(docID)
	if idx == nil {
		api.WriteError(w, http.StatusNotFound, "unknown doc id")
		return
	}

	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Anchor != nil {
		tokenIndex, ok := layout.ResolveAnchor(idx, *req.Anchor)
		api.WriteJSON(w, http.StatusOK, SelectionResponse{Resolved: ok, TokenIndex: tokenIndex})
		return
	}

	sc := &layout.SelectionContext{
		PageIndex: req.PageIndex,
		XMidN:     req.XMidN,
		YMidN:     req.YMidN,
		HasRect:   req.HasRect,
		Rect:      req.Rect,
	}
	tr, ok := layout.ResolveSelection(idx, sc)
	if !ok {
		api.WriteJSON(w, http.StatusOK, SelectionResponse{Resolved: false})
		return
	}

	api.WriteJSON(w, http.StatusOK, SelectionResponse{
		Resolved:    true,
		TokenRange:  &tr,
		ColumnIndex: sc.ColumnIndex,
		BlockIndex:  sc.BlockIndex,
		SpanColumns: sc.SpanColumns,
		SpanBlocks:  sc.SpanBlocks,
	})
}
