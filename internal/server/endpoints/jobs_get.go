package endpoints

import (
	"errors"
	"net/http"

	"github.com/jackzampolin/narrative/internal/api"
	"github.com/jackzampolin/narrative/internal/jobs"
)

// JobsGetEndpoint handles GET /api/narrative/jobs/{id}.
type JobsGetEndpoint struct {
	jobManager *jobs.Manager
}

func (e *JobsGetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/narrative/jobs/{id}", e.handler
}

func (e *JobsGetEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get job by ID
//	@Description	Returns the status of a previously submitted analyze job
//	@Tags			narrative
//	@Produce		json
//	@Param			id	path		string	true	"Job ID"
//	@Success		200	{object}	jobs.Record
//	@Failure		400	{object}	api.ErrorResponse
//	@Failure		404	{object}	api.ErrorResponse
//	@Router			/api/narrative/jobs/{id} [get]
func (e *JobsGetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "job id is required")
		return
	}

	rec, err := e.jobManager.Get(id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "job not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.WriteJSON(w, http.StatusOK, rec)
}
