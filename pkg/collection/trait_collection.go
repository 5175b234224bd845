package collection

import "github.com/go-drift/lazynode/pkg/rendering"

// SizeClass is a coarse description of available space on one axis.
type SizeClass int

const (
	SizeClassUnspecified SizeClass = iota
	SizeClassCompact
	SizeClassRegular
)

// UserInterfaceStyle is the light or dark appearance.
type UserInterfaceStyle int

const (
	UserInterfaceStyleUnspecified UserInterfaceStyle = iota
	UserInterfaceStyleLight
	UserInterfaceStyleDark
)

// TraitCollection is an environment snapshot passed down for measurement.
// It is a plain value and is copied on every read and write.
type TraitCollection struct {
	DisplayScale                 float64
	HorizontalSizeClass          SizeClass
	VerticalSizeClass            SizeClass
	UserInterfaceStyle           UserInterfaceStyle
	PreferredContentSizeCategory string
	ContainerSize                rendering.Size
}
