package mapping

import (
	"sync"

	"github.com/go-drift/lazynode/pkg/errors"
	"github.com/go-drift/lazynode/pkg/layout"
	"github.com/go-drift/lazynode/pkg/rendering"
)

// AttributedText is styled text content.
type AttributedText struct {
	Text  string
	Style rendering.TextStyle
}

// Len returns the length of the text in bytes.
func (t AttributedText) Len() int {
	return len(t.Text)
}

// TextLayoutElement is a mapping element sized by its measured text.
type TextLayoutElement struct {
	*MappingElement

	mu   sync.RWMutex
	text AttributedText
	// fonts overrides the default font manager.
	fonts *rendering.FontManager
}

// NewText returns a text element for key.
func NewText(key MappingKey, text AttributedText, opts ...Option) *TextLayoutElement {
	e := &TextLayoutElement{MappingElement: newBase(key, opts), text: text}
	e.self = e
	return e
}

// AttributedText returns the current text payload.
func (e *TextLayoutElement) AttributedText() AttributedText {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text
}

// SetAttributedText replaces the text payload.
func (e *TextLayoutElement) SetAttributedText(text AttributedText) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

// SetFontManager sets the font manager used for measurement.
func (e *TextLayoutElement) SetFontManager(fonts *rendering.FontManager) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fonts = fonts
}

// IntrinsicSize measures the text, wrapping at r.Max.Width when bounded.
func (e *TextLayoutElement) IntrinsicSize(r layout.SizeRange) rendering.Size {
	e.mu.RLock()
	text, fonts := e.text, e.fonts
	e.mu.RUnlock()
	if text.Len() == 0 {
		return rendering.Size{}
	}
	if fonts == nil {
		fonts = rendering.DefaultFontManager()
	}
	maxWidth := 0.0
	if r.HasBoundedWidth() {
		maxWidth = r.Max.Width
	}
	measured, err := rendering.LayoutTextWithConstraints(text.Text, text.Style, fonts, maxWidth)
	if err != nil {
		errors.Report(&errors.Error{
			Op:   "mapping.TextLayoutElement.IntrinsicSize",
			Kind: errors.KindLayout,
			Key:  string(e.Key()),
			Err:  err,
		})
		return rendering.Size{}
	}
	return measured.Size
}
