package metrics

import (
	"context"
	"sort"
	"time"
)

// Query provides read queries over a metrics Store.
type Query struct {
	store *Store
}

// NewQuery creates a new metrics query helper.
func NewQuery(store *Store) *Query {
	return &Query{store: store}
}

// Filter specifies query filters. Zero values mean "don't filter on this".
type Filter struct {
	JobID   string
	DocID   string
	Stage   string
	After   time.Time
	Before  time.Time
	Success *bool // nil = any, true = success only, false = errors only
}

func (f Filter) matches(m Metric) bool {
	if f.JobID != "" && m.JobID != f.JobID {
		return false
	}
	if f.DocID != "" && m.DocID != f.DocID {
		return false
	}
	if f.Stage != "" && m.Stage != f.Stage {
		return false
	}
	if !f.After.IsZero() && !m.CreatedAt.After(f.After) {
		return false
	}
	if !f.Before.IsZero() && !m.CreatedAt.Before(f.Before) {
		return false
	}
	if f.Success != nil && m.Success != *f.Success {
		return false
	}
	return true
}

// List returns metrics matching the filter, oldest first, capped at limit
// (0 means unlimited).
func (q *Query) List(ctx context.Context, f Filter, limit int) ([]Metric, error) {
	all := q.store.snapshot()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	var out []Metric
	for _, m := range all {
		if !f.matches(m) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// TotalTime returns the total stage duration for metrics matching the filter.
func (q *Query) TotalTime(ctx context.Context, f Filter) (time.Duration, error) {
	metrics, err := q.List(ctx, f, 0)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, m := range metrics {
		total += m.DurationSeconds
	}
	return time.Duration(total * float64(time.Second)), nil
}

// TotalPages returns the total page count for metrics matching the filter.
func (q *Query) TotalPages(ctx context.Context, f Filter) (int, error) {
	metrics, err := q.List(ctx, f, 0)
	if err != nil {
		return 0, err
	}
	var total int
	for _, m := range metrics {
		total += m.PageCount
	}
	return total, nil
}

// ErrorRate returns the fraction of metrics matching the filter that failed.
func (q *Query) ErrorRate(ctx context.Context, f Filter) (float64, error) {
	metrics, err := q.List(ctx, f, 0)
	if err != nil {
		return 0, err
	}
	if len(metrics) == 0 {
		return 0, nil
	}
	var failed int
	for _, m := range metrics {
		if !m.Success {
			failed++
		}
	}
	return float64(failed) / float64(len(metrics)), nil
}
