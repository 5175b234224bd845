package rendering

import (
	"math"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-drift/lazynode/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

import stderrors "errors"

const (
	// defaultFontSize is used when no font size is specified.
	defaultFontSize = 16
	// measureDPI makes one font point equal one layout point.
	measureDPI = 72
)

// FontWeight represents a numeric font weight.
type FontWeight int

const (
	FontWeightNormal   FontWeight = 400
	FontWeightSemibold FontWeight = 600
	FontWeightBold     FontWeight = 700
)

// TextStyle describes how text should be measured.
type TextStyle struct {
	FontSize           float64
	FontWeight         FontWeight
	PreserveWhitespace bool
}

// TextLine represents a single laid-out line of text.
type TextLine struct {
	Text  string
	Width float64
}

// TextLayout contains measured text metrics.
type TextLayout struct {
	Text       string
	Style      TextStyle
	Size       Size
	Ascent     float64
	Descent    float64
	LineHeight float64
	Lines      []TextLine
}

type faceKey struct {
	bold bool
	size float64
}

// FontManager resolves and caches font faces for text measurement.
//
// font.Face values are not safe for concurrent use, so every measurement
// holds the manager lock. Measurement runs on background goroutines.
type FontManager struct {
	mu      sync.Mutex
	regular *opentype.Font
	bold    *opentype.Font
	faces   map[faceKey]font.Face
}

var (
	defaultFontManager     *FontManager
	defaultFontManagerErr  error
	defaultFontManagerOnce sync.Once
)

// NewFontManager creates a font manager backed by the bundled Go fonts.
func NewFontManager() (*FontManager, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, err
	}
	return &FontManager{
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

// DefaultFontManagerErr returns a shared font manager with the bundled fonts.
// It returns both the manager and any error that occurred during initialization.
func DefaultFontManagerErr() (*FontManager, error) {
	defaultFontManagerOnce.Do(func() {
		manager, err := NewFontManager()
		if err != nil {
			defaultFontManagerErr = err
			errors.Report(&errors.Error{
				Op:   "rendering.DefaultFontManager",
				Kind: errors.KindLayout,
				Err:  err,
			})
			return
		}
		defaultFontManager = manager
	})
	return defaultFontManager, defaultFontManagerErr
}

// DefaultFontManager returns the shared font manager, or nil on error.
func DefaultFontManager() *FontManager {
	manager, _ := DefaultFontManagerErr()
	return manager
}

// faceLocked returns a cached face. Callers must hold m.mu.
func (m *FontManager) faceLocked(style TextStyle) (font.Face, error) {
	size := style.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	key := faceKey{bold: style.FontWeight >= FontWeightSemibold, size: size}
	if face, ok := m.faces[key]; ok {
		return face, nil
	}
	src := m.regular
	if key.bold {
		src = m.bold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     measureDPI,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[key] = face
	return face, nil
}

// LayoutText measures the given text on a single line per paragraph.
func LayoutText(text string, style TextStyle, manager *FontManager) (*TextLayout, error) {
	return LayoutTextWithConstraints(text, style, manager, 0)
}

// LayoutTextWithConstraints measures and wraps text within the given width.
// A maxWidth of zero or infinity disables wrapping.
func LayoutTextWithConstraints(text string, style TextStyle, manager *FontManager, maxWidth float64) (*TextLayout, error) {
	if manager == nil {
		return nil, stderrors.New("font manager required")
	}
	manager.mu.Lock()
	defer manager.mu.Unlock()

	face, err := manager.faceLocked(style)
	if err != nil {
		return nil, err
	}
	metrics := face.Metrics()
	ascent := fixedToFloat(metrics.Ascent)
	descent := fixedToFloat(metrics.Descent)
	lineHeight := fixedToFloat(metrics.Height)
	if lineHeight == 0 {
		lineHeight = ascent + descent
	}
	measure := func(s string) float64 {
		return fixedToFloat(font.MeasureString(face, s))
	}
	lines := layoutLines(text, maxWidth, measure, style.PreserveWhitespace)
	maxLineWidth := 0.0
	for _, line := range lines {
		maxLineWidth = math.Max(maxLineWidth, line.Width)
	}
	if len(lines) == 0 {
		lines = []TextLine{{Text: "", Width: 0}}
	}
	return &TextLayout{
		Text:       text,
		Style:      style,
		Size:       Size{Width: math.Ceil(maxLineWidth), Height: math.Ceil(lineHeight * float64(len(lines)))},
		Ascent:     ascent,
		Descent:    descent,
		LineHeight: lineHeight,
		Lines:      lines,
	}, nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func layoutLines(text string, maxWidth float64, measure func(string) float64, preserveWhitespace bool) []TextLine {
	if maxWidth < 0 || math.IsInf(maxWidth, 0) || maxWidth == math.MaxFloat64 {
		maxWidth = 0
	}
	paragraphs := strings.Split(text, "\n")
	lines := make([]TextLine, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		if paragraph == "" {
			lines = append(lines, TextLine{})
			continue
		}
		if maxWidth == 0 {
			lines = append(lines, TextLine{Text: paragraph, Width: measure(paragraph)})
			continue
		}
		for _, line := range wrapParagraph(paragraph, maxWidth, measure, preserveWhitespace) {
			lines = append(lines, TextLine{Text: line, Width: measure(line)})
		}
	}
	return lines
}

// wrapParagraph breaks text at the last whitespace that fits, falling back to
// a character break when a single word is wider than maxWidth.
func wrapParagraph(text string, maxWidth float64, measure func(string) float64, preserveWhitespace bool) []string {
	var lines []string
	start := 0
	for start < len(text) {
		lastBreak := -1
		lastFit := -1
		for i := start; i < len(text); {
			r, size := utf8.DecodeRuneInString(text[i:])
			next := i + size
			if measure(text[start:next]) > maxWidth {
				break
			}
			lastFit = next
			if unicode.IsSpace(r) {
				lastBreak = next
			}
			i = next
		}
		if lastFit == -1 {
			_, size := utf8.DecodeRuneInString(text[start:])
			lastFit = start + size
		}
		cut := lastFit
		if lastFit < len(text) && lastBreak > start && lastBreak < lastFit {
			cut = lastBreak
		}
		line := text[start:cut]
		if !preserveWhitespace {
			line = strings.TrimRightFunc(line, unicode.IsSpace)
		}
		lines = append(lines, line)
		start = cut
		if preserveWhitespace {
			continue
		}
		for start < len(text) {
			r, size := utf8.DecodeRuneInString(text[start:])
			if !unicode.IsSpace(r) {
				break
			}
			start += size
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
