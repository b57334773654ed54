// Package endpoints implements narrative's HTTP API surface: one file per
// resource, each registering itself against api.Registry (§5).
package endpoints

import (
	"github.com/jackzampolin/narrative/internal/api"
	"github.com/jackzampolin/narrative/internal/config"
	"github.com/jackzampolin/narrative/internal/docstore"
	"github.com/jackzampolin/narrative/internal/jobs"
	"github.com/jackzampolin/narrative/internal/metrics"
)

// Deps provides every endpoint the shared resources it needs to build its
// handler. Passing a single struct keeps endpoints.All's signature stable
// as the API surface grows.
type Deps struct {
	JobManager    *jobs.Manager
	DocStore      *docstore.DocStore
	Recorder      *metrics.Recorder
	Metrics       *metrics.Query
	ConfigManager *config.Manager
}

// All returns every registered endpoint.
func All(d Deps) []api.Endpoint {
	return []api.Endpoint{
		&AnalyzeEndpoint{jobManager: d.JobManager, docStore: d.DocStore, recorder: d.Recorder, configMgr: d.ConfigManager},
		&JobsGetEndpoint{jobManager: d.JobManager},
		&AnchorResolveEndpoint{docStore: d.DocStore},
		&SelectionResolveEndpoint{docStore: d.DocStore},
	}
}
