package layout

import (
	"math"

	"github.com/go-drift/lazynode/pkg/rendering"
)

// SizeRange is the min/max size an element must be measured against.
type SizeRange struct {
	Min rendering.Size
	Max rendering.Size
}

// NewSizeRange returns a range between min and max.
// A max dimension smaller than its min is raised to the min.
func NewSizeRange(min, max rendering.Size) SizeRange {
	min.Width = math.Max(min.Width, 0)
	min.Height = math.Max(min.Height, 0)
	max.Width = math.Max(max.Width, min.Width)
	max.Height = math.Max(max.Height, min.Height)
	return SizeRange{Min: min, Max: max}
}

// Tight returns a range that only admits size.
func Tight(size rendering.Size) SizeRange {
	return NewSizeRange(size, size)
}

// Unconstrained returns a range from zero to infinity in both dimensions.
func Unconstrained() SizeRange {
	return SizeRange{Max: rendering.Size{Width: math.Inf(1), Height: math.Inf(1)}}
}

// IsTight reports whether min and max are equal in both dimensions.
func (r SizeRange) IsTight() bool {
	return r.Min == r.Max
}

// HasBoundedWidth reports whether Max.Width is finite.
func (r SizeRange) HasBoundedWidth() bool {
	return !math.IsInf(r.Max.Width, 1)
}

// HasBoundedHeight reports whether Max.Height is finite.
func (r SizeRange) HasBoundedHeight() bool {
	return !math.IsInf(r.Max.Height, 1)
}

// Clamp returns size limited to the range.
func (r SizeRange) Clamp(size rendering.Size) rendering.Size {
	return rendering.Size{
		Width:  clamp(size.Width, r.Min.Width, r.Max.Width),
		Height: clamp(size.Height, r.Min.Height, r.Max.Height),
	}
}

// Loosen returns the range with a zero minimum.
func (r SizeRange) Loosen() SizeRange {
	return SizeRange{Max: r.Max}
}

// Deflate shrinks the range by insets, flooring each dimension at zero.
func (r SizeRange) Deflate(insets rendering.EdgeInsets) SizeRange {
	h, v := insets.Horizontal(), insets.Vertical()
	return NewSizeRange(
		rendering.Size{Width: r.Min.Width - h, Height: r.Min.Height - v},
		rendering.Size{Width: math.Max(r.Max.Width-h, 0), Height: math.Max(r.Max.Height-v, 0)},
	)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
