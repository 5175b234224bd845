package collection

import (
	"sync/atomic"
	"testing"

	"github.com/go-drift/lazynode/pkg/rendering"
)

func TestOperationQueue_RunsOperations(t *testing.T) {
	q := NewOperationQueue(QueueOptions{MaxConcurrent: 2})
	defer q.Close()

	var calls atomic.Int32
	ops := make([]*ReallocOperation, 4)
	for i := range ops {
		ops[i] = NewReallocOperation(newMarkedElements(5, &calls)...)
		if err := q.Add(ops[i]); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	q.Wait()

	if calls.Load() != 20 {
		t.Errorf("factory calls = %d, want 20", calls.Load())
	}
	for i, op := range ops {
		if op.State() != OperationFinished {
			t.Errorf("op %d state = %v", i, op.State())
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after Wait", q.Len())
	}
}

func TestOperationQueue_CancelAll(t *testing.T) {
	q := NewOperationQueue(QueueOptions{MaxConcurrent: 1})
	defer q.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	blocking := NewElement(ElementConfig{NodeFactory: func() Node {
		close(started)
		<-release
		return &testNode{}
	}})
	blocking.SetNeedsAllocate(true)

	first := NewReallocOperation(blocking)
	var calls atomic.Int32
	second := NewReallocOperation(newMarkedElements(3, &calls)...)

	if err := q.Add(first); err != nil {
		t.Fatal(err)
	}
	<-started
	if err := q.Add(second); err != nil {
		t.Fatal(err)
	}
	q.CancelAll()
	close(release)
	q.Wait()

	if second.State() != OperationCancelled || second.Processed() != 0 {
		t.Errorf("second state = %v, processed = %d", second.State(), second.Processed())
	}
	if calls.Load() != 0 {
		t.Errorf("factory calls = %d, want 0", calls.Load())
	}
	if !first.IsCancelled() || blocking.NodeIfAllocated() == nil {
		t.Error("running element should complete before cancellation takes effect")
	}
}

func TestOperationQueue_Close(t *testing.T) {
	q := NewOperationQueue(QueueOptions{})
	q.Close()

	op := NewReallocOperation(NewElement(ElementConfig{
		NodeFactory: func() Node { return &testNode{size: rendering.Size{Width: 1, Height: 1}} },
	}))
	if err := q.Add(op); err != ErrQueueClosed {
		t.Errorf("Add() after Close = %v, want ErrQueueClosed", err)
	}
	if op.State() != OperationPending {
		t.Errorf("state = %v, want pending", op.State())
	}
}
