package endpoints

import (
	"net/http"
	"strconv"

	"github.com/jackzampolin/narrative/internal/api"
	"github.com/jackzampolin/narrative/internal/docstore"
	"github.com/jackzampolin/narrative/internal/layout"
)

// AnchorResolveEndpoint handles GET /api/narrative/{doc}/anchors/{token},
// building a persistence-stable Anchor for one token index.
type AnchorResolveEndpoint struct {
	docStore *docstore.DocStore
}

func (e *AnchorResolveEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/narrative/{doc}/anchors/{token}", e.handler
}

func (e *AnchorResolveEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Build an anchor
//	@Description	Builds a persistence-stable locator for one token, to be resolved again after a later re-analysis via the selection endpoint
//	@Tags			narrative
//	@Produce		json
//	@Param			doc		path		string	true	"Document ID"
//	@Param			token	path		int		true	"Token index"
//	@Success		200		{object}	layout.Anchor
//	@Failure		400		{object}	api.ErrorResponse
//	@Failure		404		{object}	api.ErrorResponse
//	@Router			/api/narrative/{doc}/anchors/{token} [get]
func (e *AnchorResolveEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("doc")
	idx := e.docStore.Get(docID)
	if idx == nil {
		api.WriteError(w, http.StatusNotFound, "unknown doc id")
		return
	}

	tokenIndex, err := strconv.Atoi(r.PathValue("token"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "token must be an integer token index")
		return
	}

	anchor, err := layout.BuildAnchor(idx, tokenIndex)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	api.WriteJSON(w, http.StatusOK, anchor)
}
