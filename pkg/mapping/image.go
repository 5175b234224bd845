package mapping

import (
	"image"
	"sync"

	"github.com/go-drift/lazynode/pkg/layout"
	"github.com/go-drift/lazynode/pkg/rendering"
)

// ImageLayoutElement is a mapping element whose size comes from an image.
type ImageLayoutElement struct {
	*MappingElement

	mu    sync.RWMutex
	image image.Image
	scale float64
}

// NewImage returns an image element for key.
func NewImage(key MappingKey, img image.Image, opts ...Option) *ImageLayoutElement {
	e := &ImageLayoutElement{MappingElement: newBase(key, opts), image: img, scale: 1}
	e.self = e
	return e
}

// Image returns the current image payload.
func (e *ImageLayoutElement) Image() image.Image {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.image
}

// SetImage replaces the image payload.
func (e *ImageLayoutElement) SetImage(img image.Image) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.image = img
}

// Scale returns the number of image pixels per layout point.
func (e *ImageLayoutElement) Scale() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scale
}

// SetScale sets the number of image pixels per layout point.
// Non-positive values reset the scale to 1.
func (e *ImageLayoutElement) SetScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scale = scale
}

// IntrinsicSize returns the image size in points, or zero without an image.
func (e *ImageLayoutElement) IntrinsicSize(layout.SizeRange) rendering.Size {
	e.mu.RLock()
	img, scale := e.image, e.scale
	e.mu.RUnlock()
	if img == nil {
		return rendering.Size{}
	}
	b := img.Bounds()
	return rendering.Size{Width: float64(b.Dx()) / scale, Height: float64(b.Dy()) / scale}
}
