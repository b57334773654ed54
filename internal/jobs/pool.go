package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackzampolin/narrative/internal/layout"
)

// workerResult pairs a work result with its job ID for routing back to
// the Manager's record store.
type workerResult struct {
	JobID  string
	Unit   *WorkUnit
	Result WorkResult
}

// Pool is a bounded pool of goroutines draining a PriorityQueue and
// running the layout pipeline. Analysis is CPU-bound and holds no
// external rate limit, so unlike the wider pipeline tooling's provider
// pools there is no per-worker token bucket here — just a fixed worker
// count.
type Pool struct {
	size    int
	queue   *PriorityQueue
	logger  *slog.Logger
	onResult func(workerResult)

	wg   sync.WaitGroup
	done chan struct{}
}

// NewPool creates a Pool of size workers draining queue. onResult is
// invoked from a worker goroutine for every completed work unit; callers
// that mutate shared state from it must synchronize themselves.
func NewPool(size int, queue *PriorityQueue, logger *slog.Logger, onResult func(workerResult)) *Pool {
	return &Pool{
		size:     size,
		queue:    queue,
		logger:   logger,
		onResult: onResult,
		done:     make(chan struct{}),
	}
}

// Start launches the pool's workers. It returns immediately; workers run
// until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		close(p.done)
	}()
}

// Wait blocks until every worker goroutine has exited.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		unit := p.queue.Pop(p.done)
		if unit == nil {
			return
		}
		p.execute(ctx, id, unit)
	}
}

func (p *Pool) execute(ctx context.Context, workerID int, unit *WorkUnit) {
	start := time.Now()
	logger := p.logger.With("worker", workerID, "job_id", unit.JobID, "unit_id", unit.ID)

	if unit.Type != WorkUnitTypeAnalyze || unit.AnalyzeRequest == nil {
		logger.Error("unsupported work unit", "type", unit.Type)
		p.onResult(workerResult{JobID: unit.JobID, Unit: unit, Result: WorkResult{WorkUnitID: unit.ID, Success: false, Error: ErrNotFound}})
		return
	}

	req := unit.AnalyzeRequest
	idx, err := layout.Analyze(ctx, req.Decoder, req.Tokenizer, req.Config)

	result := WorkResult{WorkUnitID: unit.ID, Success: err == nil, Error: err, AnalyzeResult: idx}
	if err != nil {
		logger.Warn("analyze failed", "doc_id", req.DocID, "err", err, "elapsed", time.Since(start))
	} else {
		logger.Info("analyze complete", "doc_id", req.DocID, "pages", len(idx.Pages), "tokens", len(idx.Tokens), "elapsed", time.Since(start))
	}

	p.onResult(workerResult{JobID: unit.JobID, Unit: unit, Result: result})
}
