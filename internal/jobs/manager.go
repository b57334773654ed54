package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Manager tracks job records in memory and owns the worker pool that
// drains the priority queue. Unlike the wider pipeline tooling's Manager,
// there is no external store behind it: per spec, persistence is an
// out-of-scope collaborator, so job records live only as long as the
// process does.
type Manager struct {
	mu      sync.RWMutex
	records map[string]*Record
	waiters map[string]chan WorkResult // keyed by WorkUnit.ID

	queue  *PriorityQueue
	pool   *Pool
	logger *slog.Logger
}

// NewManager creates a job manager backed by a bounded worker pool of the
// given size.
func NewManager(workerCount int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if workerCount <= 0 {
		workerCount = 1
	}

	queue := NewPriorityQueue()
	m := &Manager{
		records: make(map[string]*Record),
		waiters: make(map[string]chan WorkResult),
		queue:   queue,
		logger:  logger,
	}
	m.pool = NewPool(workerCount, queue, logger, m.onResult)
	return m
}

// Start launches the worker pool. It returns immediately; workers run
// until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	m.pool.Start(ctx)
}

// Submit creates a job record and enqueues its work unit.
func (m *Manager) Submit(jobType string, metadata map[string]any, unit *WorkUnit) (string, error) {
	record := NewRecord(jobType, metadata)
	record.ID = unit.JobID
	if record.ID == "" {
		return "", fmt.Errorf("work unit missing JobID")
	}

	m.mu.Lock()
	m.records[record.ID] = record
	m.mu.Unlock()

	if err := m.queue.Push(unit); err != nil {
		return "", fmt.Errorf("enqueue work unit: %w", err)
	}

	m.logger.Info("job submitted", "id", record.ID, "type", jobType)
	return record.ID, nil
}

// Get returns a job record by ID.
func (m *Manager) Get(jobID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// List returns every tracked job record, most recently created first.
func (m *Manager) List() []*Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sortRecordsByCreatedDesc(out)
	return out
}

// QueueDepth returns the number of work units waiting to run.
func (m *Manager) QueueDepth() int { return m.queue.Len() }

// SubmitAndWait submits unit and blocks until it completes or ctx is
// cancelled. Interactive callers (an HTTP request holding a client
// connection open) use this with PriorityHigh rather than polling Get.
func (m *Manager) SubmitAndWait(ctx context.Context, jobType string, metadata map[string]any, unit *WorkUnit) (WorkResult, error) {
	ch := make(chan WorkResult, 1)

	m.mu.Lock()
	m.waiters[unit.ID] = ch
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.waiters, unit.ID)
		m.mu.Unlock()
	}()

	if _, err := m.Submit(jobType, metadata, unit); err != nil {
		return WorkResult{}, err
	}

	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		return WorkResult{}, ctx.Err()
	}
}

func (m *Manager) onResult(res workerResult) {
	m.mu.Lock()

	rec, ok := m.records[res.JobID]
	if ok {
		now := time.Now().UTC()
		rec.CompletedAt = &now
		if res.Result.Success {
			rec.Status = StatusCompleted
		} else {
			rec.Status = StatusFailed
			if res.Result.Error != nil {
				rec.Error = res.Result.Error.Error()
			}
		}
	}

	waiter := m.waiters[res.Unit.ID]
	m.mu.Unlock()

	if waiter != nil {
		waiter <- res.Result
	}
}

func sortRecordsByCreatedDesc(recs []*Record) {
	for i := 1; i < len(recs); i++ {
		for j := i; j > 0 && recs[j-1].CreatedAt.Before(recs[j].CreatedAt); j-- {
			recs[j-1], recs[j] = recs[j], recs[j-1]
		}
	}
}
