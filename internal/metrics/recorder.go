package metrics

import (
	"context"
	"sync"
	"time"
)

// Store is an append-only, thread-safe in-memory metric store.
// The teacher's equivalent persists to DefraDB over GraphQL; this module
// has no persistence layer (out of scope per spec §1's collaborator list),
// so Store keeps everything in memory for the lifetime of the process.
type Store struct {
	mu      sync.RWMutex
	metrics []Metric
	seq     int
}

// NewStore creates an empty metric store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) append(m Metric) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	m.ID = itoa(s.seq)
	s.metrics = append(s.metrics, m)
	return m.ID
}

func (s *Store) snapshot() []Metric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Metric, len(s.metrics))
	copy(out, s.metrics)
	return out
}

// itoa avoids importing strconv for a single call site used only here.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Recorder handles recording pipeline-stage metrics into a Store.
type Recorder struct {
	store *Store
}

// NewRecorder creates a new metrics recorder backed by store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// RecordOpts provides attribution context for a metric recording.
type RecordOpts struct {
	JobID string
	DocID string
	Stage string
}

// Record stores a single metric.
func (r *Recorder) Record(ctx context.Context, m Metric) (string, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return r.store.append(m), nil
}

// RecordStage records the outcome of one pipeline stage for one document.
func (r *Recorder) RecordStage(ctx context.Context, opts RecordOpts, dur time.Duration, pageCount, blockCount, tokenCount int) (string, error) {
	m := Metric{
		JobID:           opts.JobID,
		DocID:           opts.DocID,
		Stage:           opts.Stage,
		PageCount:       pageCount,
		BlockCount:      blockCount,
		TokenCount:      tokenCount,
		DurationSeconds: dur.Seconds(),
		Success:         true,
		CreatedAt:       time.Now(),
	}
	return r.Record(ctx, m)
}

// RecordError records a failed stage as a metric.
func (r *Recorder) RecordError(ctx context.Context, opts RecordOpts, errorType string, dur time.Duration) (string, error) {
	m := Metric{
		JobID:           opts.JobID,
		DocID:           opts.DocID,
		Stage:           opts.Stage,
		DurationSeconds: dur.Seconds(),
		Success:         false,
		ErrorType:       errorType,
		CreatedAt:       time.Now(),
	}
	return r.Record(ctx, m)
}
