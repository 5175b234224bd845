package collection

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/go-drift/lazynode/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Scheduler collects elements the owner wants reallocated or re-measured
// and flushes them as batches. It is the only writer of the elements'
// allocation marks.
type Scheduler struct {
	queue *OperationQueue

	mu          sync.Mutex
	realloc     []*Element
	reallocSet  map[*Element]bool
	relayout    []*Element
	relayoutSet map[*Element]bool

	// MaxConcurrentLayout bounds FlushLayout parallelism. Defaults to GOMAXPROCS.
	MaxConcurrentLayout int

	// OnNeedsFlush is called when the scheduler goes from clean to dirty,
	// so the owner can arrange a flush on its next pass.
	OnNeedsFlush func()
}

// NewScheduler returns a scheduler that submits batches to queue.
func NewScheduler(queue *OperationQueue) *Scheduler {
	return &Scheduler{queue: queue}
}

// ScheduleAllocate marks e for allocation in the next batch.
func (s *Scheduler) ScheduleAllocate(e *Element) {
	e.SetNeedsDeallocate(false)
	e.SetNeedsAllocate(true)
	s.addRealloc(e)
}

// ScheduleDeallocate marks e for deallocation in the next batch.
func (s *Scheduler) ScheduleDeallocate(e *Element) {
	e.SetNeedsAllocate(false)
	e.SetNeedsDeallocate(true)
	s.addRealloc(e)
}

func (s *Scheduler) addRealloc(e *Element) {
	if e == nil {
		return
	}
	wasClean := func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.reallocSet[e] {
			return false
		}
		clean := s.cleanLocked()
		if s.reallocSet == nil {
			s.reallocSet = make(map[*Element]bool)
		}
		s.reallocSet[e] = true
		s.realloc = append(s.realloc, e)
		return clean
	}()
	if wasClean && s.OnNeedsFlush != nil {
		s.OnNeedsFlush()
	}
}

// ScheduleLayout marks e for re-measurement against its constrained size.
func (s *Scheduler) ScheduleLayout(e *Element) {
	if e == nil {
		return
	}
	wasClean := func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.relayoutSet[e] {
			return false
		}
		clean := s.cleanLocked()
		if s.relayoutSet == nil {
			s.relayoutSet = make(map[*Element]bool)
		}
		s.relayoutSet[e] = true
		s.relayout = append(s.relayout, e)
		return clean
	}()
	if wasClean && s.OnNeedsFlush != nil {
		s.OnNeedsFlush()
	}
}

func (s *Scheduler) cleanLocked() bool {
	return len(s.realloc) == 0 && len(s.relayout) == 0
}

// NeedsFlush reports whether any element is waiting for a batch.
func (s *Scheduler) NeedsFlush() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cleanLocked()
}

// Flush moves every element marked for reallocation into a single
// ReallocOperation and adds it to the queue. It returns nil when nothing
// is pending.
//
// If the queue refuses the operation, the elements' allocation marks are
// cleared: a closed queue never runs them, and the owner reschedules on a
// new scheduler if it still needs them.
func (s *Scheduler) Flush() (*ReallocOperation, error) {
	s.mu.Lock()
	pending := s.realloc
	s.realloc = nil
	clear(s.reallocSet)
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil, nil
	}
	op := NewReallocOperation(pending...)
	if err := s.queue.Add(op); err != nil {
		for _, e := range pending {
			e.SetNeedsAllocate(false)
			e.SetNeedsDeallocate(false)
		}
		return nil, err
	}
	return op, nil
}

// FlushLayout re-measures every element scheduled with ScheduleLayout,
// in parallel, against each element's constrained size at the time it is
// measured. It stops early when ctx is cancelled.
func (s *Scheduler) FlushLayout(ctx context.Context) error {
	s.mu.Lock()
	pending := s.relayout
	s.relayout = nil
	clear(s.relayoutSet)
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	limit := s.MaxConcurrentLayout
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, e := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok := errors.Guard("collection.Scheduler.FlushLayout", func() {
				e.LayoutNode(e.ConstrainedSize())
			})
			if !ok {
				return &errors.Error{
					Op:   "collection.Scheduler.FlushLayout",
					Kind: errors.KindLayout,
					Key:  e.ID().String(),
					Err:  fmt.Errorf("measurement panicked"),
				}
			}
			return nil
		})
	}
	return g.Wait()
}
