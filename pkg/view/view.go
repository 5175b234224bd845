// Package view provides View, a layout element that owns the display
// objects produced by the mapping elements in its layout.
package view

import (
	"sync"

	"github.com/go-drift/lazynode/pkg/layout"
	"github.com/go-drift/lazynode/pkg/mapping"
	"github.com/go-drift/lazynode/pkg/rendering"
)

// LayoutSpecBlock builds the layout of a view for a size range.
type LayoutSpecBlock func(v *View, r layout.SizeRange) layout.Element

// View measures a layout spec and applies the result to the display objects
// of the mapping elements it contains.
//
// Display objects are resolved once per mapping key and reused across
// layouts while the key stays in the layout.
type View struct {
	// LayoutSpecBlock describes the content. Without it the view is a leaf
	// sized by PreferredSize.
	LayoutSpecBlock LayoutSpecBlock

	// PreferredSize is the leaf size used when LayoutSpecBlock is nil.
	PreferredSize rendering.Size

	// AutomaticallyManageSubviews adds resolved display objects as subviews
	// and drops those whose key left the layout.
	AutomaticallyManageSubviews bool

	// OnLayoutDidChange is called after CalculateLayout produces a size
	// different from the previous one.
	OnLayoutDidChange func(v *View, oldSize, newSize rendering.Size)

	mu             sync.Mutex
	frame          rendering.Rect
	layout         *layout.Layout
	calculatedSize rendering.Size
	objects        map[mapping.MappingKey]mapping.DisplayElement
	subviews       []mapping.DisplayElement
}

// LayoutThatFits implements layout.Element.
func (v *View) LayoutThatFits(r layout.SizeRange) *layout.Layout {
	if v.LayoutSpecBlock == nil {
		return layout.NewLeafLayout(v, r.Clamp(v.PreferredSize))
	}
	child := layout.Measure(v.LayoutSpecBlock(v, r), r)
	return &layout.Layout{Element: v, Size: child.Size, Sublayouts: []*layout.Layout{child}}
}

// CalculateLayout measures the view against r and keeps the result for
// ApplyLayout.
func (v *View) CalculateLayout(r layout.SizeRange) *layout.Layout {
	result := layout.Measure(v, r)

	v.mu.Lock()
	old := v.calculatedSize
	hadLayout := v.layout != nil
	v.layout = result
	v.calculatedSize = result.Size
	v.mu.Unlock()

	if (!hadLayout || old != result.Size) && v.OnLayoutDidChange != nil {
		v.OnLayoutDidChange(v, old, result.Size)
	}
	return result
}

// CalculatedSize returns the size of the last layout.
func (v *View) CalculatedSize() rendering.Size {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calculatedSize
}

// Layout returns the last calculated layout, or nil.
func (v *View) Layout() *layout.Layout {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout
}

// ApplyLayout sets the frame of every display object in the last layout.
// Mapping elements that resolve to nothing are skipped.
func (v *View) ApplyLayout() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.layout == nil {
		return
	}
	if v.objects == nil {
		v.objects = make(map[mapping.MappingKey]mapping.DisplayElement)
	}

	seen := make(map[mapping.MappingKey]bool)
	var ordered []mapping.DisplayElement
	var walk func(node *layout.Layout, origin rendering.Offset)
	walk = func(node *layout.Layout, origin rendering.Offset) {
		pos := origin.Add(node.Position)
		if mapped, ok := node.Element.(mapping.Mapped); ok && !seen[mapped.Key()] {
			key := mapped.Key()
			obj, cached := v.objects[key]
			if !cached {
				obj = mapped.Resolve()
			}
			if obj != nil {
				seen[key] = true
				v.objects[key] = obj
				obj.SetFrame(rendering.RectFromOffsetSize(pos, node.Size))
				ordered = append(ordered, obj)
			}
		}
		for _, child := range node.Sublayouts {
			walk(child, pos)
		}
	}
	for _, child := range v.layout.Sublayouts {
		walk(child, rendering.Offset{})
	}

	if !v.AutomaticallyManageSubviews {
		return
	}
	for key := range v.objects {
		if !seen[key] {
			delete(v.objects, key)
		}
	}
	v.subviews = ordered
}

// DisplayObject returns the cached display object for key.
func (v *View) DisplayObject(key mapping.MappingKey) (mapping.DisplayElement, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	obj, ok := v.objects[key]
	return obj, ok
}

// Subviews returns the managed subviews in layout order.
func (v *View) Subviews() []mapping.DisplayElement {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]mapping.DisplayElement, len(v.subviews))
	copy(out, v.subviews)
	return out
}

// SetFrame implements mapping.DisplayElement.
func (v *View) SetFrame(frame rendering.Rect) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frame = frame
}

// Frame returns the frame last set by the parent.
func (v *View) Frame() rendering.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}
