package canvas

import (
	"errors"
	"strings"

	"docdesigner/internal/domain"
)

var (
	ErrSessionActive     = errors.New("an interaction session is already active")
	ErrNoSession         = errors.New("no interaction session is active")
	ErrComponentNotFound = errors.New("component not found")
	ErrInvalidHandle     = errors.New("invalid resize handle")
)

// Point is a pointer position in page pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Handle names one of the eight resize handles by compass direction.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

var Handles = []Handle{HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW}

func (h Handle) Valid() bool {
	for _, v := range Handles {
		if v == h {
			return true
		}
	}
	return false
}

// The four edges a handle drags.
func (h Handle) east() bool  { return strings.Contains(string(h), "e") }
func (h Handle) west() bool  { return strings.Contains(string(h), "w") }
func (h Handle) south() bool { return strings.Contains(string(h), "s") }
func (h Handle) north() bool { return strings.Contains(string(h), "n") }

// SessionKind is the state of the interaction state machine.
type SessionKind string

const (
	Idle     SessionKind = "idle"
	Moving   SessionKind = "move"
	Resizing SessionKind = "resize"
)

// Session is the transient state of one move or resize gesture, from
// pointer-down to pointer-up. It is created by BeginMove/BeginResize and
// discarded on PointerUp or Cancel.
type Session struct {
	Kind           SessionKind     `json:"kind"`
	ComponentID    string          `json:"componentId"`
	AnchorPointer  Point           `json:"anchorPointer"`
	AnchorGeometry domain.Geometry `json:"anchorGeometry"`
	Handle         Handle          `json:"handle,omitempty"`
}
