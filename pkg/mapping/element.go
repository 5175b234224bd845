package mapping

import (
	"github.com/go-drift/lazynode/pkg/layout"
	"github.com/go-drift/lazynode/pkg/rendering"
)

// MappingKey is the stable identity of a mapping element within its parent.
type MappingKey string

// DisplayElement is a concrete display object produced by a mapping factory.
type DisplayElement interface {
	// SetFrame positions the object in its container's coordinate space.
	SetFrame(frame rendering.Rect)
}

// Factory produces the display object for key, or nil when the key is not
// recognized.
type Factory func(key MappingKey) DisplayElement

// LayoutSpecBlock returns the layout spec for element under r.
// The block must not return element itself.
type LayoutSpecBlock func(element Mapped, r layout.SizeRange) layout.Element

// Mapped is implemented by every mapping element.
type Mapped interface {
	layout.Element
	Key() MappingKey
	Resolve() DisplayElement
	LayoutSpec(r layout.SizeRange) layout.Element
	FixedSize(r layout.SizeRange) rendering.Size
	CalculateLayout(r layout.SizeRange) *layout.Layout
}

// IntrinsicSizer is implemented by mapping elements with content of their own.
type IntrinsicSizer interface {
	IntrinsicSize(r layout.SizeRange) rendering.Size
}

// Option configures a mapping element at construction.
type Option func(*MappingElement)

// WithFactory sets the factory used by Resolve.
func WithFactory(factory Factory) Option {
	return func(e *MappingElement) {
		e.factory = factory
	}
}

// WithLayoutSpec sets the block used by LayoutSpec.
func WithLayoutSpec(block LayoutSpecBlock) Option {
	return func(e *MappingElement) {
		e.layoutSpecBlock = block
	}
}

// MappingElement is the base mapping element. Derived elements embed it.
type MappingElement struct {
	key             MappingKey
	factory         Factory
	layoutSpecBlock LayoutSpecBlock

	// self is the outermost element, used to dispatch LayoutSpec and
	// IntrinsicSize to derived types.
	self Mapped
}

// New returns a mapping element for key. It panics if key is empty.
func New(key MappingKey, opts ...Option) *MappingElement {
	e := newBase(key, opts)
	e.self = e
	return e
}

func newBase(key MappingKey, opts []Option) *MappingElement {
	if key == "" {
		panic("mapping: empty mapping key")
	}
	e := &MappingElement{key: key}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Key returns the element's mapping key.
func (e *MappingElement) Key() MappingKey {
	return e.key
}

// HasFactory reports whether a factory was supplied.
func (e *MappingElement) HasFactory() bool {
	return e.factory != nil
}

// HasLayoutSpec reports whether a layout spec block was supplied.
func (e *MappingElement) HasLayoutSpec() bool {
	return e.layoutSpecBlock != nil
}

// Resolve invokes the factory once and returns its result without caching.
// Without a factory, or when the factory does not know the key, it returns nil.
func (e *MappingElement) Resolve() DisplayElement {
	if e.factory == nil {
		return nil
	}
	return e.factory(e.key)
}

// LayoutSpec returns the spec from the layout spec block, or a fixed-size
// leaf measured by FixedSize.
func (e *MappingElement) LayoutSpec(r layout.SizeRange) layout.Element {
	if e.layoutSpecBlock != nil {
		if spec := e.layoutSpecBlock(e.self, r); spec != nil {
			return spec
		}
	}
	return &layout.LeafSpec{Element: e.self, Size: e.self.FixedSize(r)}
}

// FixedSize returns the intrinsic content size clamped to r. Elements without
// intrinsic content collapse to r.Min.
func (e *MappingElement) FixedSize(r layout.SizeRange) rendering.Size {
	if sizer, ok := e.self.(IntrinsicSizer); ok {
		return r.Clamp(sizer.IntrinsicSize(r))
	}
	return r.Min
}

// CalculateLayout computes the layout spec and measures it against r.
func (e *MappingElement) CalculateLayout(r layout.SizeRange) *layout.Layout {
	spec := e.self.LayoutSpec(r)
	if leaf, ok := spec.(*layout.LeafSpec); ok && leaf.Element == layout.Element(e.self) {
		return layout.Measure(leaf, r)
	}
	child := layout.Measure(spec, r)
	return &layout.Layout{
		Element:    e.self,
		Size:       child.Size,
		Sublayouts: []*layout.Layout{child},
	}
}

// LayoutThatFits implements layout.Element.
func (e *MappingElement) LayoutThatFits(r layout.SizeRange) *layout.Layout {
	return e.CalculateLayout(r)
}
