package layout

import (
	"math"
	"testing"

	"github.com/go-drift/lazynode/pkg/rendering"
)

// box is a fixed-size leaf used to drive spec layout.
type box struct {
	width, height float64
}

func (b *box) LayoutThatFits(r SizeRange) *Layout {
	return NewLeafLayout(b, r.Clamp(rendering.Size{Width: b.width, Height: b.height}))
}

func loose(w, h float64) SizeRange {
	return NewSizeRange(rendering.Size{}, rendering.Size{Width: w, Height: h})
}

func TestNewSizeRange_Normalizes(t *testing.T) {
	r := NewSizeRange(rendering.Size{Width: 50, Height: -5}, rendering.Size{Width: 10, Height: 20})
	if r.Min != (rendering.Size{Width: 50, Height: 0}) {
		t.Errorf("Min = %+v", r.Min)
	}
	if r.Max != (rendering.Size{Width: 50, Height: 20}) {
		t.Errorf("Max = %+v", r.Max)
	}
}

func TestSizeRange_Helpers(t *testing.T) {
	tight := Tight(rendering.Size{Width: 10, Height: 10})
	if !tight.IsTight() {
		t.Error("Tight range should be tight")
	}
	if tight.Loosen().Min != (rendering.Size{}) {
		t.Error("Loosen should zero the minimum")
	}
	u := Unconstrained()
	if u.HasBoundedWidth() || u.HasBoundedHeight() {
		t.Error("Unconstrained should be unbounded")
	}
	d := u.Deflate(rendering.EdgeInsetsAll(10))
	if !math.IsInf(d.Max.Width, 1) {
		t.Errorf("deflated unbounded width = %v, want +Inf", d.Max.Width)
	}
	small := loose(15, 15).Deflate(rendering.EdgeInsetsAll(10))
	if small.Max != (rendering.Size{}) {
		t.Errorf("over-deflated max = %+v, want zero", small.Max)
	}
}

func TestMeasure_NilElement(t *testing.T) {
	r := NewSizeRange(rendering.Size{Width: 5, Height: 6}, rendering.Size{Width: 10, Height: 10})
	result := Measure(nil, r)
	if result.Size != r.Min {
		t.Errorf("size = %+v, want %+v", result.Size, r.Min)
	}
}

func TestStackSpec_Horizontal(t *testing.T) {
	a, b := &box{width: 20, height: 10}, &box{width: 30, height: 40}
	spec := &StackSpec{Direction: StackHorizontal, Spacing: 5, Align: AlignCenter, Children: []Element{a, nil, b}}

	result := Measure(spec, loose(200, 200))
	if result.Size != (rendering.Size{Width: 55, Height: 40}) {
		t.Fatalf("size = %+v, want 55x40", result.Size)
	}
	fa, _ := result.Find(a)
	fb, _ := result.Find(b)
	if fa != rendering.RectFromLTWH(0, 15, 20, 10) {
		t.Errorf("a frame = %+v", fa)
	}
	if fb != rendering.RectFromLTWH(25, 0, 30, 40) {
		t.Errorf("b frame = %+v", fb)
	}
}

func TestStackSpec_Justify(t *testing.T) {
	tests := []struct {
		name    string
		justify StackJustify
		wantA   float64
		wantB   float64
	}{
		{"start", JustifyStart, 0, 10},
		{"center", JustifyCenter, 40, 50},
		{"end", JustifyEnd, 80, 90},
		{"space between", JustifySpaceBetween, 0, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := &box{width: 10, height: 10}, &box{width: 10, height: 10}
			spec := &StackSpec{Direction: StackVertical, Justify: tt.justify, Children: []Element{a, b}}
			r := NewSizeRange(rendering.Size{Height: 100}, rendering.Size{Width: 100, Height: 100})
			result := Measure(spec, r)
			fa, _ := result.Find(a)
			fb, _ := result.Find(b)
			if fa.Top != tt.wantA || fb.Top != tt.wantB {
				t.Errorf("tops = %v, %v; want %v, %v", fa.Top, fb.Top, tt.wantA, tt.wantB)
			}
		})
	}
}

type stretchy struct{}

func (s *stretchy) LayoutThatFits(r SizeRange) *Layout {
	return NewLeafLayout(s, rendering.Size{Width: r.Min.Width, Height: 10})
}

func TestStackSpec_Stretch(t *testing.T) {
	wide := &box{width: 80, height: 10}
	s := &stretchy{}
	spec := &StackSpec{Align: AlignStretch, Children: []Element{wide, s}}
	result := Measure(spec, loose(200, 200))
	fs, _ := result.Find(s)
	if fs.Width() != 80 {
		t.Errorf("stretched width = %v, want 80", fs.Width())
	}
}

func TestStackAlignments(t *testing.T) {
	j, a := StackAlignments(StackHorizontal, HorizontalAlignmentRight, VerticalAlignmentTop)
	if j != JustifyEnd || a != AlignStart {
		t.Errorf("horizontal = %v/%v", j, a)
	}
	j, a = StackAlignments(StackVertical, HorizontalAlignmentRight, VerticalAlignmentTop)
	if j != JustifyStart || a != AlignEnd {
		t.Errorf("vertical = %v/%v", j, a)
	}
}

func TestRelativeSpec(t *testing.T) {
	child := &box{width: 10, height: 10}
	spec := &RelativeSpec{Horizontal: RelativeEnd, Vertical: RelativeCenter, Child: child}
	r := Tight(rendering.Size{Width: 100, Height: 50})
	result := Measure(spec, r)
	frame, _ := result.Find(child)
	if frame != rendering.RectFromLTWH(90, 20, 10, 10) {
		t.Errorf("frame = %+v", frame)
	}
}

func TestInsetSpec(t *testing.T) {
	child := &box{width: 10, height: 10}
	spec := &InsetSpec{Insets: rendering.EdgeInsets{Top: 1, Left: 2, Bottom: 3, Right: 4}, Child: child}
	result := Measure(spec, loose(100, 100))
	if result.Size != (rendering.Size{Width: 16, Height: 14}) {
		t.Errorf("size = %+v", result.Size)
	}
}

func TestFlatten(t *testing.T) {
	a, b := &box{width: 10, height: 10}, &box{width: 10, height: 10}
	inner := &StackSpec{Direction: StackHorizontal, Children: []Element{a, b}}
	spec := &InsetSpec{Insets: rendering.EdgeInsetsAll(3), Child: inner}
	leaves := Measure(spec, loose(100, 100)).Flatten()
	if len(leaves) != 2 {
		t.Fatalf("leaves = %d, want 2", len(leaves))
	}
	if leaves[1].Element != Element(b) || leaves[1].Position != (rendering.Offset{X: 13, Y: 3}) {
		t.Errorf("second leaf = %+v", leaves[1])
	}
}
