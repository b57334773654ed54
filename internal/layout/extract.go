package layout

import (
	"context"
	"math"
	"sort"
	"strings"
)

// RawTextItem is one item as returned by the decoder's getTextContent()
// (§6): str plus the standard 2-D affine transform [a b c d e f] and the
// glyph run's width/height in PDF point space (bottom-left origin).
type RawTextItem struct {
	Str       string
	Transform [6]float64
	Width     float64
	Height    float64
}

// PageContent is the per-page surface the decoder exposes (§6).
type PageContent interface {
	// Viewport returns the page's width and height in PDF points at
	// scale 1, matching getViewport({scale:1}).
	Viewport(ctx context.Context) (width, height float64, err error)
	// TextContent returns the page's raw text items.
	TextContent(ctx context.Context) ([]RawTextItem, error)
}

// PageSource is the decoder contract the core consumes (§6).
type PageSource interface {
	NumPages() int
	GetPage(ctx context.Context, n int) (PageContent, error)
}

// Config recognizes the options named in §6. All other thresholds are
// fixed as specified in §4 for determinism.
type Config struct {
	MaxPages           int     // default 200
	RotationCutoffRad  float64 // default pi/18 (10 degrees)
}

// DefaultConfig returns the spec-mandated defaults.
func DefaultConfig() Config {
	return Config{
		MaxPages:          200,
		RotationCutoffRad: math.Pi / 18,
	}
}

func (c Config) normalized() Config {
	if c.MaxPages <= 0 {
		c.MaxPages = 200
	}
	if c.RotationCutoffRad <= 0 {
		c.RotationCutoffRad = math.Pi / 18
	}
	return c
}

// extractPage decodes one page into normalized TextItems (§4.1). Decode
// failures are caught by the caller (pipeline.go), which substitutes an
// empty page with the same PageIndex.
func extractPage(ctx context.Context, pc PageContent, pageIndex int) (items []TextItem, pageWidth, pageHeight, bodyFontSize float64, err error) {
	w, h, err := pc.Viewport(ctx)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	w = finiteOr(w, 1)
	h = finiteOr(h, 1)
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}

	raw, err := pc.TextContent(ctx)
	if err != nil {
		return nil, w, h, 0, err
	}

	items = make([]TextItem, 0, len(raw))
	var fontSizes []float64

	for _, ri := range raw {
		if strings.TrimSpace(ri.Str) == "" {
			continue
		}

		a := finiteOr(ri.Transform[0], 1)
		b := finiteOr(ri.Transform[1], 0)
		c := finiteOr(ri.Transform[2], 0)
		d := finiteOr(ri.Transform[3], 1)
		e := finiteOr(ri.Transform[4], 0)
		f := finiteOr(ri.Transform[5], 0)

		rotation := math.Atan2(b, a)

		fontSize := math.Max(math.Hypot(a, b), math.Hypot(c, d))
		fontSize = math.Max(fontSize, math.Abs(d))
		if fontSize <= 0 || math.IsNaN(fontSize) {
			fontSize = 1
		}

		width := finiteOr(ri.Width, 0)
		height := finiteOr(ri.Height, fontSize)

		x0 := e
		y0 := f // PDF bottom-left origin
		x1 := e + width
		y1 := f + height

		x0n := clamp(x0/w, 0, 1)
		x1n := clamp(x1/w, 0, 1)
		// invert y: PDF origin bottom-left -> normalized origin top-left
		y0n := clamp(1-(y1/h), 0, 1)
		y1n := clamp(1-(y0/h), 0, 1)

		if x1n < x0n {
			x0n, x1n = x1n, x0n
		}
		if y1n < y0n {
			y0n, y1n = y1n, y0n
		}

		item := TextItem{
			Text:        ri.Str,
			PageIndex:   pageIndex,
			FontSize:    fontSize,
			RotationRad: rotation,
			Box:         Rect{X0: x0n, Y0: y0n, X1: x1n, Y1: y1n},
		}
		items = append(items, item)
		if fontSize > 0 {
			fontSizes = append(fontSizes, fontSize)
		}
	}

	// Stably sort by (y0n*1e4 + x0n).
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Box.Y0*1e4+items[i].Box.X0 < items[j].Box.Y0*1e4+items[j].Box.X0
	})

	bodyFontSize = median(fontSizes)

	return items, w, h, bodyFontSize, nil
}
