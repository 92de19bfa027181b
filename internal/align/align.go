// Package align computes the alignment guides shown while a component is
// dragged. Guides are rendering hints only and never move the component.
package align

import "docdesigner/internal/domain"

// DefaultThreshold is the edge distance, in page pixels, below which a guide is shown.
const DefaultThreshold = 5.0

type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// Guide is a line across the page at Position, on the x axis for vertical
// guides and the y axis for horizontal ones.
type Guide struct {
	Orientation Orientation `json:"orientation"`
	Position    float64     `json:"position"`
}

// Guides compares the left, right, top and bottom edges of moving against the
// same edges of every other component and returns one guide per near match,
// positioned on the other component's edge. The component with movingID is
// skipped. Duplicate guides are reported once, in discovery order.
func Guides(moving domain.Geometry, movingID string, others []domain.Component, threshold float64) []Guide {
	var guides []Guide
	seen := make(map[Guide]bool)
	add := func(g Guide) {
		if !seen[g] {
			seen[g] = true
			guides = append(guides, g)
		}
	}

	for _, c := range others {
		if c.ID == movingID {
			continue
		}
		if near(moving.X, c.X, threshold) {
			add(Guide{Vertical, c.X})
		}
		if near(moving.Right(), c.Right(), threshold) {
			add(Guide{Vertical, c.Right()})
		}
		if near(moving.Y, c.Y, threshold) {
			add(Guide{Horizontal, c.Y})
		}
		if near(moving.Bottom(), c.Bottom(), threshold) {
			add(Guide{Horizontal, c.Bottom()})
		}
	}
	return guides
}

func near(a, b, threshold float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < threshold
}
