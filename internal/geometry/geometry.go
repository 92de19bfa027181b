// Package geometry holds the pure helpers used to place components on a page:
// grid snapping, bounds clamping and minimum-size enforcement.
//
// None of these functions fail. Out-of-range input is pulled back to the
// nearest valid value, so callers snap first and clamp second: a component
// dragged past the page edge then settles exactly on the edge.
package geometry

import (
	"math"

	"docdesigner/internal/domain"
)

const (
	MinWidth  = 20.0
	MinHeight = 10.0
)

// Snap rounds v to the nearest multiple of grid, halves rounding up.
// A non-positive grid disables snapping.
func Snap(v, grid float64) float64 {
	if grid <= 0 || math.IsNaN(v) {
		return v
	}
	return math.Floor(v/grid+0.5) * grid
}

// SnapDelta rounds a pointer delta to the nearest multiple of grid with ties
// going toward zero, so a drag of exactly half a cell leaves the size alone.
func SnapDelta(d, grid float64) float64 {
	if grid <= 0 || math.IsNaN(d) {
		return d
	}
	cells := math.Ceil(math.Abs(d)/grid - 0.5)
	if cells <= 0 {
		return 0
	}
	return math.Copysign(cells*grid, d)
}

// Clamp limits v to [lo, hi]. When hi < lo, lo wins.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		if hi < lo {
			return lo
		}
		return hi
	}
	return v
}

// ClampPosition keeps a w×h box with top-left (x, y) fully inside page.
func ClampPosition(x, y, w, h float64, page domain.Page) (float64, float64) {
	return Clamp(x, 0, page.Width-w), Clamp(y, 0, page.Height-h)
}

// ClampSize enforces the minimum size first, then caps the size so the box
// anchored at (x, y) does not cross the right or bottom page edge.
func ClampSize(w, h, x, y float64, page domain.Page, minW, minH float64) (float64, float64) {
	minW = math.Max(minW, MinWidth)
	minH = math.Max(minH, MinHeight)
	w = math.Min(math.Max(nanTo(w, minW), minW), page.Width-x)
	h = math.Min(math.Max(nanTo(h, minH), minH), page.Height-y)
	return w, h
}

// Fit clamps a whole geometry: size first against the page itself, then
// position. Used when a geometry arrives from outside an interaction
// session, e.g. a property panel edit or an imported template.
func Fit(g domain.Geometry, page domain.Page, minW, minH float64) domain.Geometry {
	w, h := ClampSize(g.Width, g.Height, 0, 0, page, minW, minH)
	x, y := ClampPosition(g.X, g.Y, w, h, page)
	return domain.Geometry{X: x, Y: y, Width: w, Height: h}
}

// InBounds reports whether g satisfies the page and minimum-size invariants.
func InBounds(g domain.Geometry, page domain.Page, minW, minH float64) bool {
	const eps = 1e-9
	return g.X >= -eps && g.Y >= -eps &&
		g.Right() <= page.Width+eps && g.Bottom() <= page.Height+eps &&
		g.Width >= math.Max(minW, MinWidth)-eps && g.Height >= math.Max(minH, MinHeight)-eps
}

func nanTo(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return v
}
