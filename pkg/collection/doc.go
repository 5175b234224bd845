// Package collection manages the per-item records of a large, recycled
// collection: lazily realized nodes, their measurement state, interface
// state, and batched allocation work.
//
// # Elements
//
// An Element is created by the owning collection for each data item. It
// carries a one-shot NodeFactory that is not invoked until the node is
// actually needed:
//
//	e := collection.NewElement(collection.ElementConfig{
//	    NodeModel:       item,
//	    NodeFactory:     func() collection.Node { return newCellNode(item) },
//	    ConstrainedSize: layout.NewSizeRange(rendering.Size{}, rendering.Size{Width: 320, Height: 200}),
//	    Owner:           handle,
//	    Registry:        registry,
//	})
//	node := e.Node() // runs the factory once
//
// Node realization happens at most once per element no matter how many
// goroutines call Node concurrently. After a realized node is removed with
// RemoveNode, the element stays empty: the factory has already been
// discarded.
//
// # Batches
//
// The owner marks elements with SetNeedsAllocate / SetNeedsDeallocate and
// hands them to a ReallocOperation, usually through a Scheduler and an
// OperationQueue. Operations are single-shot and cancellable between
// elements; work already applied is never rolled back.
package collection
