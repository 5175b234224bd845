package collection

import (
	"sync"
	"sync/atomic"

	"github.com/go-drift/lazynode/pkg/layout"
	"github.com/go-drift/lazynode/pkg/rendering"
	"github.com/google/uuid"
)

// Node is a realized cell node. It only needs to be measurable; the
// optional interfaces below let a node receive element context.
type Node interface {
	layout.Element
}

// NodeFactory constructs the node for an element. It runs at most once.
type NodeFactory func() Node

// AllocCallback is invoked after a batch allocates an element's node.
type AllocCallback func(e *Element)

// Optional node hooks. They are called while the node is being realized,
// before any caller can observe it, and must not call back into Element.Node.
type (
	TraitCollectionSetter interface {
		SetTraitCollection(traits TraitCollection)
	}
	NodeModelSetter interface {
		SetNodeModel(model any)
	}
	OwningNodeSetter interface {
		SetOwningNode(owner RangeManagingNode)
	}
	CollectionElementSetter interface {
		SetCollectionElement(e *Element)
	}
)

// InterfaceStateObserver is implemented by nodes that react to interface
// state changes of their element.
type InterfaceStateObserver interface {
	InterfaceStateDidChange(newState, oldState InterfaceState)
}

// ElementConfig holds the values an Element is created with.
type ElementConfig struct {
	NodeModel         any
	NodeFactory       NodeFactory
	SupplementaryKind string
	ConstrainedSize   layout.SizeRange
	Owner             OwnerHandle
	Registry          *Registry
	TraitCollection   TraitCollection
}

type nodeBox struct {
	node Node
}

// Element is the per-item record of a collection. It owns at most one
// realized node.
//
// Node realization and measurement may run on background goroutines while
// interface state and flags are read and written from the main goroutine.
type Element struct {
	id                uuid.UUID
	nodeModel         any
	supplementaryKind string
	owner             OwnerHandle
	registry          *Registry

	realizeMu sync.Mutex
	factory   NodeFactory // nil once consumed; guarded by realizeMu
	node      atomic.Pointer[nodeBox]

	mu              sync.RWMutex
	constrainedSize layout.SizeRange
	traitCollection TraitCollection
	calculatedSize  rendering.Size
	measuredRange   layout.SizeRange // range calculatedSize was computed against
	measured        bool

	// notifyMu serializes interface state delivery to the node.
	notifyMu  sync.Mutex
	nodeState InterfaceState // last state delivered to the node

	interfaceState      atomic.Uint32
	shouldUseNativeCell atomic.Bool
	needsAllocate       atomic.Bool
	needsDeallocate     atomic.Bool
	allocCallback       atomic.Pointer[AllocCallback]
}

// NewElement stores cfg in a new element. The factory is not invoked.
func NewElement(cfg ElementConfig) *Element {
	return &Element{
		id:                uuid.New(),
		nodeModel:         cfg.NodeModel,
		supplementaryKind: cfg.SupplementaryKind,
		owner:             cfg.Owner,
		registry:          cfg.Registry,
		factory:           cfg.NodeFactory,
		constrainedSize:   cfg.ConstrainedSize,
		traitCollection:   cfg.TraitCollection,
	}
}

// ID returns a unique identifier for the element.
func (e *Element) ID() uuid.UUID {
	return e.id
}

// NodeModel returns the backing data, if any.
func (e *Element) NodeModel() any {
	return e.nodeModel
}

// SupplementaryKind returns the supplementary category ("header", "footer"),
// or the empty string for regular items.
func (e *Element) SupplementaryKind() string {
	return e.supplementaryKind
}

// IsSupplementary reports whether the element has a supplementary kind.
func (e *Element) IsSupplementary() bool {
	return e.supplementaryKind != ""
}

// OwnerHandle returns the handle of the owning collection.
func (e *Element) OwnerHandle() OwnerHandle {
	return e.owner
}

// OwningNode returns the owning collection, or nil if it is gone.
func (e *Element) OwningNode() RangeManagingNode {
	owner, ok := e.registry.Lookup(e.owner)
	if !ok {
		return nil
	}
	return owner
}

// Node returns the realized node, running the factory if necessary.
// The factory runs at most once; concurrent callers block until it returns
// and all observe the same node. Returns nil if the factory is gone or
// produced no node.
func (e *Element) Node() Node {
	if b := e.node.Load(); b != nil {
		return b.node
	}
	node, realized := e.realize()
	if realized {
		e.syncNodeState()
	}
	return node
}

// realize runs the factory under realizeMu. It reports whether this call
// published the node.
func (e *Element) realize() (Node, bool) {
	e.realizeMu.Lock()
	defer e.realizeMu.Unlock()
	if b := e.node.Load(); b != nil {
		return b.node, false
	}
	factory := e.factory
	if factory == nil {
		return nil, false
	}
	e.factory = nil

	node := factory()
	if node == nil {
		return nil, false
	}
	e.prepareNode(node)
	e.node.Store(&nodeBox{node: node})
	return node, true
}

// prepareNode hands element context to a freshly built node.
func (e *Element) prepareNode(node Node) {
	if setter, ok := node.(CollectionElementSetter); ok {
		setter.SetCollectionElement(e)
	}
	if setter, ok := node.(NodeModelSetter); ok {
		setter.SetNodeModel(e.nodeModel)
	}
	if setter, ok := node.(OwningNodeSetter); ok {
		if owner := e.OwningNode(); owner != nil {
			setter.SetOwningNode(owner)
		}
	}
	if setter, ok := node.(TraitCollectionSetter); ok {
		setter.SetTraitCollection(e.TraitCollection())
	}
}

// syncNodeState delivers the current interface state to the published node
// if it differs from the last state the node saw. Any state change that
// races with realization is caught up here once the node is visible.
// Observers must not change the element's interface state.
func (e *Element) syncNodeState() {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	observer, ok := e.NodeIfAllocated().(InterfaceStateObserver)
	if !ok {
		return
	}
	state := e.InterfaceState()
	if state == e.nodeState {
		return
	}
	old := e.nodeState
	e.nodeState = state
	observer.InterfaceStateDidChange(state, old)
}

// NodeIfAllocated returns the realized node without constructing one.
func (e *Element) NodeIfAllocated() Node {
	if b := e.node.Load(); b != nil {
		return b.node
	}
	return nil
}

// HasNodeFactory reports whether the factory has not been consumed yet.
func (e *Element) HasNodeFactory() bool {
	e.realizeMu.Lock()
	defer e.realizeMu.Unlock()
	return e.factory != nil
}

// RemoveNode drops the realized node. A consumed factory is not restored,
// so Node returns nil afterwards. Removing before realization leaves the
// factory in place.
func (e *Element) RemoveNode() {
	e.realizeMu.Lock()
	defer e.realizeMu.Unlock()
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	e.node.Store(nil)
	e.nodeState = InterfaceStateNone
}

// LayoutNode realizes the node if needed, measures it against r and
// records r together with the result. Concurrent calls are allowed; the last
// one to finish wins. It returns false when there is no node to measure.
func (e *Element) LayoutNode(r layout.SizeRange) (rendering.Size, bool) {
	node := e.Node()
	if node == nil {
		return rendering.Size{}, false
	}
	size := layout.Measure(node, r).Size

	e.mu.Lock()
	defer e.mu.Unlock()
	e.constrainedSize = r
	e.calculatedSize = size
	e.measuredRange = r
	e.measured = true
	return size, true
}

// Measurement returns the range of the most recent layout and the size it
// produced as a consistent pair, and whether a layout has happened. The
// range may differ from ConstrainedSize after SetConstrainedSize.
func (e *Element) Measurement() (layout.SizeRange, rendering.Size, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.measuredRange, e.calculatedSize, e.measured
}

// IsMeasured reports whether CalculatedSize was computed against r.
func (e *Element) IsMeasured(r layout.SizeRange) bool {
	measuredRange, _, measured := e.Measurement()
	return measured && measuredRange == r
}

// ConstrainedSize returns the range used for the next or last measurement.
func (e *Element) ConstrainedSize() layout.SizeRange {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.constrainedSize
}

// SetConstrainedSize replaces the range used by the next measurement.
// Measurement and IsMeasured keep describing the range last measured.
func (e *Element) SetConstrainedSize(r layout.SizeRange) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.constrainedSize = r
}

// CalculatedSize returns the cached measured size.
func (e *Element) CalculatedSize() rendering.Size {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.calculatedSize
}

// SetCalculatedSize overrides the cached size, for owners that measure
// outside LayoutNode. The size is recorded against the current
// ConstrainedSize.
func (e *Element) SetCalculatedSize(size rendering.Size) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calculatedSize = size
	e.measuredRange = e.constrainedSize
	e.measured = true
}

// TraitCollection returns a copy of the environment snapshot.
func (e *Element) TraitCollection() TraitCollection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.traitCollection
}

// SetTraitCollection replaces the snapshot and passes it to the node if it
// has been realized.
func (e *Element) SetTraitCollection(traits TraitCollection) {
	e.mu.Lock()
	changed := e.traitCollection != traits
	e.traitCollection = traits
	e.mu.Unlock()
	if !changed {
		return
	}
	if setter, ok := e.NodeIfAllocated().(TraitCollectionSetter); ok {
		setter.SetTraitCollection(traits)
	}
}

// InterfaceState returns the current interface state.
func (e *Element) InterfaceState() InterfaceState {
	return InterfaceState(e.interfaceState.Load())
}

// SetInterfaceState replaces the interface state. Invalid masks are
// completed with the states they imply.
func (e *Element) SetInterfaceState(state InterfaceState) {
	e.updateInterfaceState(func(InterfaceState) InterfaceState {
		return InterfaceStateNone.Enter(state)
	})
}

// EnterInterfaceState adds states and the states they imply.
func (e *Element) EnterInterfaceState(states InterfaceState) {
	e.updateInterfaceState(func(old InterfaceState) InterfaceState {
		return old.Enter(states)
	})
}

// ExitInterfaceState removes states and the states that imply them. The
// node is not deallocated.
func (e *Element) ExitInterfaceState(states InterfaceState) {
	e.updateInterfaceState(func(old InterfaceState) InterfaceState {
		return old.Exit(states)
	})
}

func (e *Element) updateInterfaceState(transition func(InterfaceState) InterfaceState) {
	for {
		old := e.interfaceState.Load()
		next := uint32(transition(InterfaceState(old)))
		if old == next {
			return
		}
		if e.interfaceState.CompareAndSwap(old, next) {
			e.syncNodeState()
			return
		}
	}
}

// ShouldUseNativeCell reports whether the element renders through a
// platform-native cell instead of a node.
func (e *Element) ShouldUseNativeCell() bool {
	return e.shouldUseNativeCell.Load()
}

// SetShouldUseNativeCell sets the rendering path flag.
func (e *Element) SetShouldUseNativeCell(v bool) {
	e.shouldUseNativeCell.Store(v)
}

// NeedsAllocate reports whether a batch should allocate the node.
func (e *Element) NeedsAllocate() bool {
	return e.needsAllocate.Load()
}

// SetNeedsAllocate is called by the owner to request allocation.
func (e *Element) SetNeedsAllocate(v bool) {
	e.needsAllocate.Store(v)
}

// NeedsDeallocate reports whether a batch should release the node.
func (e *Element) NeedsDeallocate() bool {
	return e.needsDeallocate.Load()
}

// SetNeedsDeallocate is called by the owner to request deallocation.
func (e *Element) SetNeedsDeallocate(v bool) {
	e.needsDeallocate.Store(v)
}

// AllocCallback returns the callback last set, or nil.
func (e *Element) AllocCallback() AllocCallback {
	if p := e.allocCallback.Load(); p != nil {
		return *p
	}
	return nil
}

// SetAllocCallback sets the callback run after a batch allocates the node.
// Passing nil clears it. Safe to call from any goroutine.
func (e *Element) SetAllocCallback(cb AllocCallback) {
	if cb == nil {
		e.allocCallback.Store(nil)
		return
	}
	e.allocCallback.Store(&cb)
}
