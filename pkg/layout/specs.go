package layout

import (
	"math"

	"github.com/go-drift/lazynode/pkg/rendering"
)

// InsetSpec lays out its child inset by Insets.
type InsetSpec struct {
	Insets rendering.EdgeInsets
	Child  Element
}

func (s *InsetSpec) LayoutThatFits(r SizeRange) *Layout {
	child := Measure(s.Child, r.Deflate(s.Insets))
	child.Position = rendering.Offset{X: s.Insets.Left, Y: s.Insets.Top}
	size := rendering.Size{
		Width:  child.Size.Width + s.Insets.Horizontal(),
		Height: child.Size.Height + s.Insets.Vertical(),
	}
	return &Layout{Element: s, Size: r.Clamp(size), Sublayouts: []*Layout{child}}
}

// StackDirection is the main axis of a StackSpec.
type StackDirection int

const (
	StackVertical StackDirection = iota
	StackHorizontal
)

// StackJustify positions children along the main axis.
type StackJustify int

const (
	JustifyStart StackJustify = iota
	JustifyCenter
	JustifyEnd
	JustifySpaceBetween
)

// StackAlign positions children along the cross axis.
type StackAlign int

const (
	AlignStart StackAlign = iota
	AlignCenter
	AlignEnd
	AlignStretch
)

// HorizontalAlignment and VerticalAlignment express stack alignment
// independently of direction.
type HorizontalAlignment int

const (
	HorizontalAlignmentLeft HorizontalAlignment = iota
	HorizontalAlignmentMiddle
	HorizontalAlignmentRight
)

type VerticalAlignment int

const (
	VerticalAlignmentTop VerticalAlignment = iota
	VerticalAlignmentCenter
	VerticalAlignmentBottom
)

// StackAlignments converts horizontal/vertical alignment into the justify
// and align values for a stack with the given direction.
func StackAlignments(direction StackDirection, h HorizontalAlignment, v VerticalAlignment) (StackJustify, StackAlign) {
	hj := StackJustify(h)
	vj := StackJustify(v)
	if direction == StackHorizontal {
		return hj, StackAlign(vj)
	}
	return vj, StackAlign(hj)
}

// StackSpec lays out children in a row or column.
type StackSpec struct {
	Direction StackDirection
	Spacing   float64
	Justify   StackJustify
	Align     StackAlign
	Children  []Element
}

func (s *StackSpec) LayoutThatFits(r SizeRange) *Layout {
	horizontal := s.Direction == StackHorizontal
	mainMin, mainMax := r.Min.Height, r.Max.Height
	crossMin, crossMax := r.Min.Width, r.Max.Width
	if horizontal {
		mainMin, mainMax = r.Min.Width, r.Max.Width
		crossMin, crossMax = r.Min.Height, r.Max.Height
	}

	childRange := func(crossLo float64) SizeRange {
		if horizontal {
			return NewSizeRange(rendering.Size{Height: crossLo}, rendering.Size{Width: mainMax, Height: crossMax})
		}
		return NewSizeRange(rendering.Size{Width: crossLo}, rendering.Size{Width: crossMax, Height: mainMax})
	}
	mainOf := func(sz rendering.Size) float64 {
		if horizontal {
			return sz.Width
		}
		return sz.Height
	}
	crossOf := func(sz rendering.Size) float64 {
		if horizontal {
			return sz.Height
		}
		return sz.Width
	}

	var children []*Layout
	for _, child := range s.Children {
		if child == nil {
			continue
		}
		children = append(children, Measure(child, childRange(0)))
	}

	total := 0.0
	crossExtent := 0.0
	for _, child := range children {
		total += mainOf(child.Size)
		crossExtent = math.Max(crossExtent, crossOf(child.Size))
	}
	if len(children) > 1 {
		total += s.Spacing * float64(len(children)-1)
	}
	mainSize := clamp(total, mainMin, mainMax)
	crossSize := clamp(crossExtent, crossMin, crossMax)

	if s.Align == AlignStretch {
		for i, child := range children {
			if crossOf(child.Size) != crossSize {
				stretched := childRange(crossSize)
				if horizontal {
					stretched.Max.Height = crossSize
				} else {
					stretched.Max.Width = crossSize
				}
				children[i] = Measure(child.Element, stretched)
			}
		}
	}

	free := math.Max(mainSize-total, 0)
	pos := 0.0
	gap := s.Spacing
	switch s.Justify {
	case JustifyCenter:
		pos = free / 2
	case JustifyEnd:
		pos = free
	case JustifySpaceBetween:
		if len(children) > 1 {
			gap += free / float64(len(children)-1)
		}
	}

	for _, child := range children {
		cross := 0.0
		switch s.Align {
		case AlignCenter:
			cross = (crossSize - crossOf(child.Size)) / 2
		case AlignEnd:
			cross = crossSize - crossOf(child.Size)
		}
		if horizontal {
			child.Position = rendering.Offset{X: pos, Y: cross}
		} else {
			child.Position = rendering.Offset{X: cross, Y: pos}
		}
		pos += mainOf(child.Size) + gap
	}

	size := rendering.Size{Width: crossSize, Height: mainSize}
	if horizontal {
		size = rendering.Size{Width: mainSize, Height: crossSize}
	}
	return &Layout{Element: s, Size: size, Sublayouts: children}
}

// RelativePosition places a child within the space of a RelativeSpec.
type RelativePosition int

const (
	RelativeStart RelativePosition = iota
	RelativeCenter
	RelativeEnd
)

// RelativeSpec positions its child at the start, center or end of the
// available space on each axis.
type RelativeSpec struct {
	Horizontal RelativePosition
	Vertical   RelativePosition
	Child      Element
}

func (s *RelativeSpec) LayoutThatFits(r SizeRange) *Layout {
	child := Measure(s.Child, r.Loosen())
	size := r.Clamp(child.Size)
	child.Position = rendering.Offset{
		X: relativeOffset(s.Horizontal, size.Width-child.Size.Width),
		Y: relativeOffset(s.Vertical, size.Height-child.Size.Height),
	}
	return &Layout{Element: s, Size: size, Sublayouts: []*Layout{child}}
}

func relativeOffset(p RelativePosition, free float64) float64 {
	switch p {
	case RelativeCenter:
		return free / 2
	case RelativeEnd:
		return free
	default:
		return 0
	}
}

// LeafSpec measures Element as a fixed-size leaf without children.
type LeafSpec struct {
	Element Element
	Size    rendering.Size
}

func (s *LeafSpec) LayoutThatFits(r SizeRange) *Layout {
	element := s.Element
	if element == nil {
		element = s
	}
	return NewLeafLayout(element, r.Clamp(s.Size))
}
