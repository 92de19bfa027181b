package canvas

import (
	"fmt"

	"docdesigner/internal/align"
	"docdesigner/internal/domain"
)

// rulerStep is the spacing of labelled ruler ticks in page pixels.
const rulerStep = 50.0

// Item is one component as drawn: its data plus what the canvas shows in place
// of the bound value.
type Item struct {
	domain.Component
	Selected    bool   `json:"selected"`
	Placeholder string `json:"placeholder"`
}

// RulerTick is a labelled mark on the top (vertical) or left (horizontal) ruler.
type RulerTick struct {
	Orientation align.Orientation `json:"orientation"`
	Position    float64           `json:"position"`
	Label       string            `json:"label"`
}

// Frame is a point-in-time picture of the canvas: everything needed to draw
// the page without touching the live model.
type Frame struct {
	Page      domain.Page   `json:"page"`
	GridLines []align.Guide `json:"gridLines,omitempty"`
	Ruler     []RulerTick   `json:"ruler,omitempty"`
	Items     []Item        `json:"items"`
	Guides    []align.Guide `json:"guides,omitempty"`
	Selected  string        `json:"selected,omitempty"`
	Session   *Session      `json:"session,omitempty"`
}

// Render takes a Frame of the current state.
func (c *Canvas) Render() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := Frame{
		Page:     c.page,
		Items:    make([]Item, 0, len(c.components)),
		Guides:   append([]align.Guide(nil), c.guides...),
		Selected: c.selected,
	}
	if c.session != nil {
		s := *c.session
		f.Session = &s
	}
	if c.page.ShowGrid && c.page.GridSize > 0 {
		f.GridLines = gridLines(c.page)
	}
	if c.page.ShowRuler {
		f.Ruler = rulerTicks(c.page)
	}
	for _, comp := range c.snapshot() {
		f.Items = append(f.Items, Item{
			Component:   comp,
			Selected:    comp.ID == c.selected,
			Placeholder: Placeholder(comp),
		})
	}
	return f
}

// Placeholder is the text shown for a component in the designer: the bound
// key in braces, the static text of a label, or the kind in brackets.
func Placeholder(c domain.Component) string {
	switch {
	case c.DataKey != "":
		return "{" + c.DataKey + "}"
	case c.Type == domain.ComponentLabel && c.Config.Text != "":
		return c.Config.Text
	default:
		return "[" + string(c.Type) + "]"
	}
}

func gridLines(p domain.Page) []align.Guide {
	var lines []align.Guide
	for x := p.GridSize; x < p.Width; x += p.GridSize {
		lines = append(lines, align.Guide{Orientation: align.Vertical, Position: x})
	}
	for y := p.GridSize; y < p.Height; y += p.GridSize {
		lines = append(lines, align.Guide{Orientation: align.Horizontal, Position: y})
	}
	return lines
}

func rulerTicks(p domain.Page) []RulerTick {
	var ticks []RulerTick
	for x := 0.0; x <= p.Width; x += rulerStep {
		ticks = append(ticks, RulerTick{align.Vertical, x, fmt.Sprintf("%.0f", x)})
	}
	for y := 0.0; y <= p.Height; y += rulerStep {
		ticks = append(ticks, RulerTick{align.Horizontal, y, fmt.Sprintf("%.0f", y)})
	}
	return ticks
}
