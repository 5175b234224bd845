// Package layout defines the measurement contract shared by every layout
// element: size ranges, layout results and composable layout specs.
package layout

import "github.com/go-drift/lazynode/pkg/rendering"

// Element is anything that can be measured and arranged inside a layout tree.
type Element interface {
	// LayoutThatFits measures the element against r and returns its layout.
	LayoutThatFits(r SizeRange) *Layout
}

// Layout is the result of measuring an element: its size, its position
// relative to the parent layout, and the layouts of its children.
type Layout struct {
	Element    Element
	Size       rendering.Size
	Position   rendering.Offset
	Sublayouts []*Layout
}

// NewLeafLayout returns a childless layout for element.
func NewLeafLayout(element Element, size rendering.Size) *Layout {
	return &Layout{Element: element, Size: size}
}

// Frame returns the layout rectangle in its parent's coordinate space.
func (l *Layout) Frame() rendering.Rect {
	return rendering.RectFromOffsetSize(l.Position, l.Size)
}

// Flatten returns copies of the leaf layouts with positions made absolute
// relative to l. Children of l that are themselves leaves are included.
func (l *Layout) Flatten() []*Layout {
	var out []*Layout
	var walk func(node *Layout, origin rendering.Offset)
	walk = func(node *Layout, origin rendering.Offset) {
		pos := origin.Add(node.Position)
		if len(node.Sublayouts) == 0 {
			out = append(out, &Layout{Element: node.Element, Size: node.Size, Position: pos})
			return
		}
		for _, child := range node.Sublayouts {
			walk(child, pos)
		}
	}
	for _, child := range l.Sublayouts {
		walk(child, rendering.Offset{})
	}
	return out
}

// Find returns the absolute frame of the first layout whose element is e.
func (l *Layout) Find(e Element) (rendering.Rect, bool) {
	var walk func(node *Layout, origin rendering.Offset) (rendering.Rect, bool)
	walk = func(node *Layout, origin rendering.Offset) (rendering.Rect, bool) {
		pos := origin.Add(node.Position)
		if node.Element == e {
			return rendering.RectFromOffsetSize(pos, node.Size), true
		}
		for _, child := range node.Sublayouts {
			if r, ok := walk(child, pos); ok {
				return r, true
			}
		}
		return rendering.Rect{}, false
	}
	return walk(l, rendering.Offset{X: -l.Position.X, Y: -l.Position.Y})
}

// Measure evaluates e against r. A nil element or a nil result yields an
// empty layout sized to r.Min. The returned size is always clamped to r.
func Measure(e Element, r SizeRange) *Layout {
	if e == nil {
		return NewLeafLayout(nil, r.Min)
	}
	result := e.LayoutThatFits(r)
	if result == nil {
		return NewLeafLayout(e, r.Min)
	}
	result.Size = r.Clamp(result.Size)
	return result
}
