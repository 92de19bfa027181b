package domain

// A4 at 96 DPI.
const (
	A4Width         = 794.0
	A4Height        = 1123.0
	DefaultGridSize = 10.0
)

// Page describes the fixed printable area of a template. It does not change
// during an editing session.
type Page struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GridSize  float64 `json:"gridSize"`
	ShowGrid  bool    `json:"showGrid"`
	ShowRuler bool    `json:"showRuler"`
}

// DefaultPage returns an A4 page with a 10px grid and both grid and rulers visible.
func DefaultPage() Page {
	return Page{
		Width:     A4Width,
		Height:    A4Height,
		GridSize:  DefaultGridSize,
		ShowGrid:  true,
		ShowRuler: true,
	}
}

// DataKeyType is the data type of a document-schema field.
type DataKeyType string

const (
	DataText    DataKeyType = "text"
	DataNumber  DataKeyType = "number"
	DataDate    DataKeyType = "date"
	DataImage   DataKeyType = "image"
	DataTable   DataKeyType = "table"
	DataBoolean DataKeyType = "boolean"
)

// DataKey names a field of a document schema that a component can be bound to.
type DataKey struct {
	Key   string      `json:"key" toml:"key"`
	Label string      `json:"label" toml:"label"`
	Type  DataKeyType `json:"type" toml:"type"`
}
