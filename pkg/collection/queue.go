package collection

import (
	"context"
	stderrors "errors"
	"runtime"
	"sync"

	"github.com/go-drift/lazynode/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// ErrQueueClosed is returned by Add after Close.
var ErrQueueClosed = stderrors.New("collection: operation queue closed")

// QueueOptions configures an OperationQueue.
type QueueOptions struct {
	// MaxConcurrent bounds how many operations run at once.
	// Defaults to GOMAXPROCS.
	MaxConcurrent int
}

// OperationQueue runs ReallocOperations off the caller's goroutine.
type OperationQueue struct {
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[*ReallocOperation]struct{}
	closed  bool
}

// NewOperationQueue returns a queue ready to accept operations.
func NewOperationQueue(opts QueueOptions) *OperationQueue {
	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &OperationQueue{
		sem:     semaphore.NewWeighted(int64(limit)),
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[*ReallocOperation]struct{}),
	}
}

// Add schedules op. The operation runs once a slot is free; if the queue is
// closed first, op is cancelled without touching its elements.
func (q *OperationQueue) Add(op *ReallocOperation) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.pending[op] = struct{}{}
	q.wg.Add(1)
	q.mu.Unlock()

	go q.run(op)
	return nil
}

func (q *OperationQueue) run(op *ReallocOperation) {
	defer q.wg.Done()
	defer q.forget(op)
	defer errors.Recover("collection.OperationQueue")

	if err := q.sem.Acquire(q.ctx, 1); err != nil {
		op.Cancel()
		return
	}
	defer q.sem.Release(1)

	if err := op.Run(q.ctx); err != nil && !stderrors.Is(err, ErrOperationStarted) {
		errors.Report(&errors.Error{
			Op:   "collection.OperationQueue",
			Kind: errors.KindAlloc,
			Err:  err,
		})
	}
}

func (q *OperationQueue) forget(op *ReallocOperation) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, op)
}

// Len returns the number of operations queued or running.
func (q *OperationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// CancelAll cancels every queued or running operation. The queue stays open.
func (q *OperationQueue) CancelAll() {
	q.mu.Lock()
	ops := make([]*ReallocOperation, 0, len(q.pending))
	for op := range q.pending {
		ops = append(ops, op)
	}
	q.mu.Unlock()
	for _, op := range ops {
		op.Cancel()
	}
}

// Wait blocks until every added operation has terminated.
func (q *OperationQueue) Wait() {
	q.wg.Wait()
}

// Close stops accepting operations, cancels those still waiting or running,
// and waits for them to terminate.
func (q *OperationQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cancel()
	q.wg.Wait()
}
