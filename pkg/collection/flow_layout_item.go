package collection

import (
	"weak"

	"github.com/go-drift/lazynode/pkg/layout"
	"github.com/go-drift/lazynode/pkg/rendering"
)

// FlowLayoutItem stands in for an element during collection layout. It
// reports the element's cached size and never touches the node, so the
// layout pass cannot trigger realization.
//
// The item does not keep the element alive.
type FlowLayoutItem struct {
	element weak.Pointer[Element]
}

// NewFlowLayoutItem returns an item for e.
func NewFlowLayoutItem(e *Element) *FlowLayoutItem {
	return &FlowLayoutItem{element: weak.Make(e)}
}

// CollectionElement returns the element, or nil if it has been collected.
func (item *FlowLayoutItem) CollectionElement() *Element {
	return item.element.Value()
}

// LayoutThatFits returns a leaf with the element's calculated size clamped
// to r. A collected element yields r.Min, the zero size clamped to r.
func (item *FlowLayoutItem) LayoutThatFits(r layout.SizeRange) *layout.Layout {
	e := item.element.Value()
	if e == nil {
		return layout.NewLeafLayout(item, r.Clamp(rendering.Size{}))
	}
	return layout.NewLeafLayout(item, r.Clamp(e.CalculatedSize()))
}
