package mapping

import (
	"image"
	"sync"
	"testing"

	"github.com/go-drift/lazynode/pkg/layout"
	"github.com/go-drift/lazynode/pkg/rendering"
)

type fakeDisplay struct {
	key   MappingKey
	frame rendering.Rect
}

func (d *fakeDisplay) SetFrame(frame rendering.Rect) { d.frame = frame }

func wideRange() layout.SizeRange {
	return layout.NewSizeRange(rendering.Size{}, rendering.Size{Width: 1000, Height: 200})
}

func TestResolve_NoFactory(t *testing.T) {
	for _, e := range []Mapped{
		New("plain"),
		NewImage("img", nil),
		NewText("txt", AttributedText{Text: "x"}),
		NewButton("btn", nil, nil),
	} {
		if got := e.Resolve(); got != nil {
			t.Errorf("%s: Resolve() = %v, want nil", e.Key(), got)
		}
	}
}

func TestResolve_UnknownKey(t *testing.T) {
	e := New("unknown", WithFactory(func(key MappingKey) DisplayElement {
		if key == "known" {
			return &fakeDisplay{key: key}
		}
		return nil
	}))
	if got := e.Resolve(); got != nil {
		t.Errorf("Resolve() = %v, want nil for unrecognized key", got)
	}
}

func TestResolve_InvokesFactoryPerCall(t *testing.T) {
	calls := 0
	e := New("avatar", WithFactory(func(key MappingKey) DisplayElement {
		calls++
		return &fakeDisplay{key: key}
	}))

	first := e.Resolve()
	second := e.Resolve()
	if calls != 2 {
		t.Errorf("factory calls = %d, want 2", calls)
	}
	if first == second {
		t.Error("Resolve should not cache the display object")
	}
	if first.(*fakeDisplay).key != "avatar" {
		t.Errorf("factory received key %q, want %q", first.(*fakeDisplay).key, "avatar")
	}
}

func TestNew_EmptyKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty key")
		}
	}()
	New("")
}

func TestFixedSize_Default(t *testing.T) {
	e := New("spacer")
	r := layout.NewSizeRange(rendering.Size{Width: 10, Height: 4}, rendering.Size{Width: 100, Height: 50})
	if got := e.FixedSize(r); got != r.Min {
		t.Errorf("FixedSize = %+v, want %+v", got, r.Min)
	}
	result := e.CalculateLayout(r)
	if result.Element != Mapped(e) {
		t.Errorf("layout element = %v, want the mapping element", result.Element)
	}
	if len(result.Sublayouts) != 0 {
		t.Errorf("leaf layout has %d sublayouts", len(result.Sublayouts))
	}
}

func TestLayoutSpecBlock(t *testing.T) {
	child := NewImage("thumb", image.NewRGBA(image.Rect(0, 0, 30, 10)))
	var received Mapped
	var receivedRange layout.SizeRange
	e := New("card", WithLayoutSpec(func(element Mapped, r layout.SizeRange) layout.Element {
		received = element
		receivedRange = r
		return &layout.InsetSpec{Insets: rendering.EdgeInsetsAll(5), Child: child}
	}))

	r := wideRange()
	result := e.CalculateLayout(r)
	if received != Mapped(e) {
		t.Error("layout spec block should receive the element itself")
	}
	if receivedRange != r {
		t.Errorf("block range = %+v, want %+v", receivedRange, r)
	}
	want := rendering.Size{Width: 40, Height: 20}
	if result.Size != want {
		t.Errorf("size = %+v, want %+v", result.Size, want)
	}
	frame, ok := result.Find(child)
	if !ok {
		t.Fatal("child layout not found")
	}
	if frame != rendering.RectFromLTWH(5, 5, 30, 10) {
		t.Errorf("child frame = %+v", frame)
	}
}

func TestImageIntrinsicSize(t *testing.T) {
	e := NewImage("photo", image.NewRGBA(image.Rect(0, 0, 120, 60)))
	e.SetScale(2)
	got := e.FixedSize(wideRange())
	if got != (rendering.Size{Width: 60, Height: 30}) {
		t.Errorf("FixedSize = %+v, want 60x30", got)
	}

	clamped := e.FixedSize(layout.NewSizeRange(rendering.Size{}, rendering.Size{Width: 40, Height: 40}))
	if clamped != (rendering.Size{Width: 40, Height: 30}) {
		t.Errorf("clamped FixedSize = %+v, want 40x30", clamped)
	}

	e.SetImage(nil)
	if got := e.FixedSize(wideRange()); !got.IsZero() {
		t.Errorf("FixedSize without image = %+v, want zero", got)
	}
}

func TestTextIntrinsicSize(t *testing.T) {
	e := NewText("title", AttributedText{Text: "cat"})
	size := e.FixedSize(wideRange())
	if size.Width <= 0 || size.Height <= 0 {
		t.Fatalf("FixedSize = %+v, want positive", size)
	}

	e.SetAttributedText(AttributedText{Text: "a much longer caption"})
	if longer := e.FixedSize(wideRange()); longer.Width <= size.Width {
		t.Errorf("longer text width %v should exceed %v", longer.Width, size.Width)
	}

	e.SetAttributedText(AttributedText{})
	if empty := e.FixedSize(wideRange()); !empty.IsZero() {
		t.Errorf("empty text size = %+v, want zero", empty)
	}
}

func TestButtonLayout_Horizontal(t *testing.T) {
	icon := NewImage("icon", image.NewRGBA(image.Rect(0, 0, 20, 20)))
	title := NewText("title", AttributedText{Text: "Play"})
	button := NewButton("play", title, icon)
	insets := rendering.EdgeInsets{Top: 4, Left: 6, Bottom: 4, Right: 6}
	button.UpdateStyle(func(s *ButtonStyle) {
		s.ContentSpacing = 8
		s.LaysOutHorizontally = true
		s.ContentEdgeInsets = insets
	})

	result := button.CalculateLayout(wideRange())

	iconFrame, ok := result.Find(icon)
	if !ok {
		t.Fatal("icon layout not found")
	}
	titleFrame, ok := result.Find(title)
	if !ok {
		t.Fatal("title layout not found")
	}
	if iconFrame.Left != insets.Left {
		t.Errorf("icon left = %v, want %v", iconFrame.Left, insets.Left)
	}
	if got, want := titleFrame.Left, iconFrame.Right+8; got != want {
		t.Errorf("title left = %v, want %v (icon right + spacing)", got, want)
	}
	if iconFrame.Top < insets.Top || titleFrame.Top < insets.Top {
		t.Errorf("content should respect the top inset: icon=%v title=%v", iconFrame.Top, titleFrame.Top)
	}
	wantWidth := insets.Horizontal() + 20 + 8 + titleFrame.Width()
	if result.Size.Width != wantWidth {
		t.Errorf("button width = %v, want %v", result.Size.Width, wantWidth)
	}
}

func TestButtonLayout_ImageAtEnd(t *testing.T) {
	icon := NewImage("icon", image.NewRGBA(image.Rect(0, 0, 16, 16)))
	title := NewText("title", AttributedText{Text: "Next"})
	button := NewButton("next", title, icon)
	button.UpdateStyle(func(s *ButtonStyle) { s.ImageAlignment = ImageAlignmentEnd })

	result := button.CalculateLayout(wideRange())
	iconFrame, _ := result.Find(icon)
	titleFrame, _ := result.Find(title)
	if iconFrame.Left != titleFrame.Right+8 {
		t.Errorf("icon left = %v, want title right + 8 = %v", iconFrame.Left, titleFrame.Right+8)
	}
}

func TestButtonLayout_Vertical(t *testing.T) {
	icon := NewImage("icon", image.NewRGBA(image.Rect(0, 0, 24, 24)))
	title := NewText("title", AttributedText{Text: "Share"})
	button := NewButton("share", title, icon)
	button.UpdateStyle(func(s *ButtonStyle) {
		s.LaysOutHorizontally = false
		s.ContentSpacing = 4
	})

	result := button.CalculateLayout(wideRange())
	iconFrame, _ := result.Find(icon)
	titleFrame, _ := result.Find(title)
	if titleFrame.Top != iconFrame.Bottom+4 {
		t.Errorf("title top = %v, want %v", titleFrame.Top, iconFrame.Bottom+4)
	}
}

func TestButtonLayout_SkipsEmptyParts(t *testing.T) {
	icon := NewImage("icon", nil)
	title := NewText("title", AttributedText{Text: "Only"})
	button := NewButton("only", title, icon)

	result := button.CalculateLayout(wideRange())
	if _, ok := result.Find(icon); ok {
		t.Error("image without payload should not be laid out")
	}
	if _, ok := result.Find(title); !ok {
		t.Error("title should be laid out")
	}
}

func TestButtonOf_Keys(t *testing.T) {
	button := ButtonOf("ok", nil, AttributedText{Text: "OK"})
	if button.TitleElement().Key() != "ok.title" || button.ImageElement().Key() != "ok.image" {
		t.Errorf("keys = %q, %q", button.TitleElement().Key(), button.ImageElement().Key())
	}
}

func TestCalculateLayout_ConcurrentReads(t *testing.T) {
	icon := NewImage("icon", image.NewRGBA(image.Rect(0, 0, 20, 20)))
	title := NewText("title", AttributedText{Text: "Concurrent"})
	button := NewButton("btn", title, icon)
	want := button.CalculateLayout(wideRange()).Size

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := button.CalculateLayout(wideRange()).Size; got != want {
				t.Errorf("size = %+v, want %+v", got, want)
			}
		}()
	}
	wg.Wait()
}
