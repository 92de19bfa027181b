// Package render draws a design-time preview of a canvas frame to PNG: the
// page, grid, component outlines with their placeholders, selection and
// alignment guides. It never resolves data keys to values.
package render

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"docdesigner/internal/align"
	"docdesigner/internal/canvas"
)

const (
	colorGrid      = "#eef1f5"
	colorFill      = "#f8fafc"
	colorUnbound   = "#94a3b8"
	colorBound     = "#2563eb"
	colorSelected  = "#f59e0b"
	colorGuide     = "#ec4899"
	colorText      = "#334155"
	defaultTextPx  = 12.0
	maxPreviewSide = 4096
)

// Options controls the preview output.
type Options struct {
	// Scale multiplies page pixels; 0 means 1.
	Scale float64
	// HideGrid suppresses grid lines even when the page shows them.
	HideGrid bool
}

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func loadFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// PNG writes a preview of f to w.
func PNG(w io.Writer, f canvas.Frame, opts Options) error {
	s := opts.Scale
	if s <= 0 {
		s = 1
	}
	width := int(math.Ceil(f.Page.Width * s))
	height := int(math.Ceil(f.Page.Height * s))
	if width <= 0 || height <= 0 || width > maxPreviewSide || height > maxPreviewSide {
		return fmt.Errorf("render preview: invalid size %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.ClearWithColor(gg.White)

	if !opts.HideGrid {
		dc.SetHexColor(colorGrid)
		dc.SetLineWidth(1)
		for _, l := range f.GridLines {
			p := l.Position * s
			if l.Orientation == align.Vertical {
				dc.DrawLine(p, 0, p, float64(height))
			} else {
				dc.DrawLine(0, p, float64(width), p)
			}
		}
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("render grid: %w", err)
		}
	}

	src, err := loadFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	for _, it := range f.Items {
		x, y, w, h := it.X*s, it.Y*s, it.Width*s, it.Height*s

		dc.SetHexColor(colorFill)
		dc.DrawRectangle(x, y, w, h)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("render component %s: %w", it.ID, err)
		}

		switch {
		case it.Selected:
			dc.SetHexColor(colorSelected)
			dc.SetLineWidth(2)
		case it.DataKey != "":
			dc.SetHexColor(colorBound)
			dc.SetLineWidth(1)
		default:
			dc.SetHexColor(colorUnbound)
			dc.SetLineWidth(1)
			dc.SetDash(4*s, 3*s)
		}
		dc.DrawRectangle(x, y, w, h)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("render component %s: %w", it.ID, err)
		}
		dc.ClearDash()

		size := it.Config.FontSize
		if size <= 0 {
			size = defaultTextPx
		}
		size = math.Min(size, it.Height*0.7) * s
		dc.SetFont(src.Face(size))
		dc.SetHexColor(colorText)
		dc.DrawStringAnchored(it.Placeholder, x+4*s, y+h/2, 0, 0.5)
	}

	if len(f.Guides) > 0 {
		dc.SetHexColor(colorGuide)
		dc.SetLineWidth(1)
		dc.SetDash(6*s, 4*s)
		for _, g := range f.Guides {
			p := g.Position * s
			if g.Orientation == align.Vertical {
				dc.DrawLine(p, 0, p, float64(height))
			} else {
				dc.DrawLine(0, p, float64(width), p)
			}
		}
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("render guides: %w", err)
		}
		dc.ClearDash()
	}

	return dc.EncodePNG(w)
}
