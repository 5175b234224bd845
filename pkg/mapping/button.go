package mapping

import (
	"image"
	"sync"

	"github.com/go-drift/lazynode/pkg/layout"
	"github.com/go-drift/lazynode/pkg/rendering"
)

// ImageAlignment places the image before or after the title.
type ImageAlignment int

const (
	ImageAlignmentBeginning ImageAlignment = iota
	ImageAlignmentEnd
)

// ButtonStyle holds the layout parameters of a ButtonLayoutElement.
type ButtonStyle struct {
	ContentSpacing             float64
	LaysOutHorizontally        bool
	ContentHorizontalAlignment layout.HorizontalAlignment
	ContentVerticalAlignment   layout.VerticalAlignment
	ContentEdgeInsets          rendering.EdgeInsets
	ImageAlignment             ImageAlignment
}

// DefaultButtonStyle returns a horizontal, centered layout with 8pt spacing.
func DefaultButtonStyle() ButtonStyle {
	return ButtonStyle{
		ContentSpacing:             8,
		LaysOutHorizontally:        true,
		ContentHorizontalAlignment: layout.HorizontalAlignmentMiddle,
		ContentVerticalAlignment:   layout.VerticalAlignmentCenter,
	}
}

// ButtonLayoutElement composes a title element and an image element.
type ButtonLayoutElement struct {
	*MappingElement

	mu    sync.RWMutex
	title *TextLayoutElement
	image *ImageLayoutElement
	style ButtonStyle
}

// NewButton returns a button element for key composed of title and image.
// Either part may be nil.
func NewButton(key MappingKey, title *TextLayoutElement, image *ImageLayoutElement, opts ...Option) *ButtonLayoutElement {
	e := &ButtonLayoutElement{
		MappingElement: newBase(key, opts),
		title:          title,
		image:          image,
		style:          DefaultButtonStyle(),
	}
	e.self = e
	return e
}

// ButtonOf builds a button whose parts are keyed "<key>.title" and "<key>.image".
func ButtonOf(key MappingKey, img image.Image, title AttributedText, opts ...Option) *ButtonLayoutElement {
	return NewButton(key,
		NewText(key+".title", title),
		NewImage(key+".image", img),
		opts...,
	)
}

// TitleElement returns the title part.
func (e *ButtonLayoutElement) TitleElement() *TextLayoutElement {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.title
}

// SetTitleElement replaces the title part.
func (e *ButtonLayoutElement) SetTitleElement(title *TextLayoutElement) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.title = title
}

// ImageElement returns the image part.
func (e *ButtonLayoutElement) ImageElement() *ImageLayoutElement {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.image
}

// SetImageElement replaces the image part.
func (e *ButtonLayoutElement) SetImageElement(image *ImageLayoutElement) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.image = image
}

// Style returns a copy of the layout parameters.
func (e *ButtonLayoutElement) Style() ButtonStyle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.style
}

// SetStyle replaces the layout parameters.
func (e *ButtonLayoutElement) SetStyle(style ButtonStyle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.style = style
}

// UpdateStyle applies fn to the layout parameters atomically.
func (e *ButtonLayoutElement) UpdateStyle(fn func(*ButtonStyle)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.style)
}

// LayoutSpec stacks the image and title with the configured spacing and
// alignment, inset by ContentEdgeInsets. A layout spec block, when set,
// takes precedence.
func (e *ButtonLayoutElement) LayoutSpec(r layout.SizeRange) layout.Element {
	if e.HasLayoutSpec() {
		return e.MappingElement.LayoutSpec(r)
	}
	e.mu.RLock()
	title, img, style := e.title, e.image, e.style
	e.mu.RUnlock()

	var children []layout.Element
	if img != nil && img.Image() != nil {
		children = append(children, img)
	}
	if title != nil && title.AttributedText().Len() > 0 {
		children = append(children, title)
	}
	if style.ImageAlignment == ImageAlignmentEnd && len(children) == 2 {
		children[0], children[1] = children[1], children[0]
	}

	direction := layout.StackVertical
	if style.LaysOutHorizontally {
		direction = layout.StackHorizontal
	}
	justify, align := layout.StackAlignments(direction, style.ContentHorizontalAlignment, style.ContentVerticalAlignment)
	var spec layout.Element = &layout.StackSpec{
		Direction: direction,
		Spacing:   style.ContentSpacing,
		Justify:   justify,
		Align:     align,
		Children:  children,
	}
	if !style.ContentEdgeInsets.IsZero() {
		spec = &layout.InsetSpec{Insets: style.ContentEdgeInsets, Child: spec}
	}
	return spec
}
