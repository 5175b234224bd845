package collection

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"

	"github.com/go-drift/lazynode/pkg/errors"
)

// ErrOperationStarted is returned when a ReallocOperation is run twice.
var ErrOperationStarted = stderrors.New("collection: realloc operation already started")

// OperationState is the lifecycle state of a ReallocOperation.
type OperationState int32

const (
	OperationPending OperationState = iota
	OperationRunning
	OperationFinished
	OperationCancelled
)

func (s OperationState) String() string {
	switch s {
	case OperationPending:
		return "pending"
	case OperationRunning:
		return "running"
	case OperationFinished:
		return "finished"
	case OperationCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ReallocOperation applies pending allocation and deallocation to a fixed
// set of elements. It runs once and ends either finished or cancelled.
//
// Cancellation is checked between elements: elements already processed keep
// their new state, the rest are left untouched with their marks still set.
type ReallocOperation struct {
	elements []*Element

	state       atomic.Int32
	cancelled   atomic.Bool
	processed   atomic.Int64
	allocated   atomic.Int64
	deallocated atomic.Int64

	completion atomic.Pointer[func(*ReallocOperation)]
	done       chan struct{}
	doneOnce   sync.Once
}

// NewReallocOperation returns an operation over the given elements.
// Duplicates and nil entries are dropped.
func NewReallocOperation(elements ...*Element) *ReallocOperation {
	seen := make(map[*Element]struct{}, len(elements))
	set := make([]*Element, 0, len(elements))
	for _, e := range elements {
		if e == nil {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		set = append(set, e)
	}
	return &ReallocOperation{elements: set, done: make(chan struct{})}
}

// Elements returns a copy of the element set.
func (op *ReallocOperation) Elements() []*Element {
	out := make([]*Element, len(op.elements))
	copy(out, op.elements)
	return out
}

// Len returns the number of elements in the set.
func (op *ReallocOperation) Len() int {
	return len(op.elements)
}

// State returns the current lifecycle state.
func (op *ReallocOperation) State() OperationState {
	return OperationState(op.state.Load())
}

// Processed returns how many elements have been processed.
func (op *ReallocOperation) Processed() int {
	return int(op.processed.Load())
}

// Allocated returns how many nodes the operation allocated.
func (op *ReallocOperation) Allocated() int {
	return int(op.allocated.Load())
}

// Deallocated returns how many nodes the operation released.
func (op *ReallocOperation) Deallocated() int {
	return int(op.deallocated.Load())
}

// Done is closed when the operation becomes finished or cancelled.
func (op *ReallocOperation) Done() <-chan struct{} {
	return op.done
}

// IsCancelled reports whether Cancel has been called.
func (op *ReallocOperation) IsCancelled() bool {
	return op.cancelled.Load()
}

// SetCompletion sets a function called once when the operation terminates.
func (op *ReallocOperation) SetCompletion(fn func(*ReallocOperation)) {
	if fn == nil {
		op.completion.Store(nil)
		return
	}
	op.completion.Store(&fn)
}

// Cancel stops the operation. A pending operation terminates immediately
// without touching any element; a running one stops before its next element.
func (op *ReallocOperation) Cancel() {
	op.cancelled.Store(true)
	if op.state.CompareAndSwap(int32(OperationPending), int32(OperationCancelled)) {
		op.terminate()
	}
}

// Run processes every element in the set on the calling goroutine.
// It returns ErrOperationStarted if the operation already ran or was
// cancelled before running. Cancellation through ctx or Cancel is not an
// error.
func (op *ReallocOperation) Run(ctx context.Context) error {
	if !op.state.CompareAndSwap(int32(OperationPending), int32(OperationRunning)) {
		return ErrOperationStarted
	}

	final := OperationFinished
	for _, e := range op.elements {
		if op.cancelled.Load() || ctx.Err() != nil {
			final = OperationCancelled
			break
		}
		op.process(e)
		op.processed.Add(1)
	}
	op.state.Store(int32(final))
	op.terminate()
	return nil
}

func (op *ReallocOperation) terminate() {
	op.doneOnce.Do(func() {
		close(op.done)
		if fn := op.completion.Load(); fn != nil {
			(*fn)(op)
		}
	})
}

// process consumes the element's marks. When both are set, deallocation
// wins and the allocation request is dropped.
func (op *ReallocOperation) process(e *Element) {
	dealloc := e.needsDeallocate.Swap(false)
	alloc := e.needsAllocate.Swap(false)

	observer, _ := e.OwningNode().(AllocationObserver)

	if dealloc {
		if e.NodeIfAllocated() != nil {
			e.RemoveNode()
			op.deallocated.Add(1)
			if observer != nil {
				observer.ElementDidDeallocateNode(e)
			}
		}
		return
	}
	if !alloc {
		return
	}

	ok := errors.Guard("collection.ReallocOperation", func() {
		if e.Node() != nil {
			e.LayoutNode(e.ConstrainedSize())
		}
	})
	if !ok || e.NodeIfAllocated() == nil {
		return
	}
	op.allocated.Add(1)
	if cb := e.AllocCallback(); cb != nil {
		errors.Guard("collection.ReallocOperation.AllocCallback", func() { cb(e) })
	}
	if observer != nil {
		observer.ElementDidAllocateNode(e)
	}
}
