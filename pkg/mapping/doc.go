// Package mapping provides layout mapping elements: lightweight, keyed
// placeholders that take part in layout before their display objects exist.
//
// A mapping element carries a stable MappingKey, an optional factory that
// produces the concrete display object on demand, and an optional layout spec
// block. Elements never cache what their factory returns; the holder of the
// key decides the caching policy (see view.View).
//
// Keys, factories and layout spec blocks are fixed at construction, so the
// element can be read from any goroutine without locking. Derived elements
// (image, text, button) guard their mutable payloads internally.
//
//	icon := mapping.NewImage("icon", img, mapping.WithFactory(func(key mapping.MappingKey) mapping.DisplayElement {
//	    return newImageView(img)
//	}))
//	title := mapping.NewText("title", mapping.AttributedText{Text: "Play"})
//	button := mapping.NewButton("play", title, icon)
//	result := button.CalculateLayout(layout.NewSizeRange(rendering.Size{}, rendering.Size{Width: 320, Height: 44}))
package mapping
