package collection

import (
	"sync"

	"github.com/google/uuid"
)

// RangeManagingNode owns a set of elements and decides which of them are
// in range. Elements never keep their owner alive; they refer to it through
// an OwnerHandle resolved by a Registry.
type RangeManagingNode interface {
	// InterfaceState returns the owner's own interface state.
	InterfaceState() InterfaceState
}

// AllocationObserver is implemented by owners that track batch allocation.
// Methods are called on the goroutine running the ReallocOperation.
type AllocationObserver interface {
	ElementDidAllocateNode(e *Element)
	ElementDidDeallocateNode(e *Element)
}

// OwnerHandle identifies a registered RangeManagingNode.
// The zero handle refers to no owner.
type OwnerHandle struct {
	id uuid.UUID
}

// IsZero reports whether h refers to no owner.
func (h OwnerHandle) IsZero() bool {
	return h.id == uuid.Nil
}

func (h OwnerHandle) String() string {
	return h.id.String()
}

// Registry maps owner handles to live owners.
type Registry struct {
	mu     sync.RWMutex
	owners map[OwnerHandle]RangeManagingNode
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{owners: make(map[OwnerHandle]RangeManagingNode)}
}

// Register adds owner and returns its handle.
func (r *Registry) Register(owner RangeManagingNode) OwnerHandle {
	h := OwnerHandle{id: uuid.New()}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[h] = owner
	return h
}

// Unregister removes the owner for h. Elements referring to h see no owner
// afterwards.
func (r *Registry) Unregister(h OwnerHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.owners, h)
}

// Lookup returns the owner for h, if it is still registered.
func (r *Registry) Lookup(h OwnerHandle) (RangeManagingNode, bool) {
	if r == nil || h.IsZero() {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[h]
	return owner, ok
}

// Len returns the number of registered owners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}
