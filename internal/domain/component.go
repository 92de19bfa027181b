package domain

// ComponentType identifies one of the fixed set of component kinds that can be
// placed on a template page.
type ComponentType string

const (
	ComponentLabel     ComponentType = "label"
	ComponentText      ComponentType = "text"
	ComponentMultiline ComponentType = "multiline"
	ComponentNumber    ComponentType = "number"
	ComponentDate      ComponentType = "date"
	ComponentImage     ComponentType = "image"
	ComponentTable     ComponentType = "table"
	ComponentQRCode    ComponentType = "qrcode"
	ComponentBarcode   ComponentType = "barcode"
	ComponentSignature ComponentType = "signature"
	ComponentCheckbox  ComponentType = "checkbox"
)

// ComponentTypes lists every kind in palette order.
var ComponentTypes = []ComponentType{
	ComponentLabel,
	ComponentText,
	ComponentMultiline,
	ComponentNumber,
	ComponentDate,
	ComponentImage,
	ComponentTable,
	ComponentQRCode,
	ComponentBarcode,
	ComponentSignature,
	ComponentCheckbox,
}

// Valid reports whether t is one of the known component kinds.
func (t ComponentType) Valid() bool {
	for _, k := range ComponentTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Geometry is a component's box in page pixels.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (g Geometry) Right() float64  { return g.X + g.Width }
func (g Geometry) Bottom() float64 { return g.Y + g.Height }

// Component is a single data-bound element placed on a template page.
// An empty DataKey means the component is unbound and shows a placeholder.
type Component struct {
	ID   string        `json:"id"`
	Type ComponentType `json:"type"`
	Geometry
	DataKey string          `json:"dataKey"`
	Config  ComponentConfig `json:"config"`
}

// TableColumn describes one column of a table component.
type TableColumn struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Width float64 `json:"width,omitempty"`
	Align string  `json:"align,omitempty"`
}

// ComponentConfig holds the rendering options of a component. Each kind only
// uses the fields that apply to it; the rest stay at their zero value.
type ComponentConfig struct {
	// text-like kinds
	FontSize   float64 `json:"fontSize,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty"`
	Align      string  `json:"align,omitempty"`
	Color      string  `json:"color,omitempty"`
	Text       string  `json:"text,omitempty"` // static text for labels

	DateFormat   string `json:"dateFormat,omitempty"`
	NumberFormat string `json:"numberFormat,omitempty"`
	Decimals     int    `json:"decimals,omitempty"`
	Prefix       string `json:"prefix,omitempty"`

	// table
	Columns          []TableColumn `json:"columns,omitempty"`
	Bordered         bool          `json:"bordered,omitempty"`
	HeaderBackground string        `json:"headerBackground,omitempty"`

	// image
	Fit     string `json:"fit,omitempty"`
	LogoURL string `json:"logoUrl,omitempty"` // data URL supplied by the image importer

	// signature
	LineColor string `json:"lineColor,omitempty"`
	Label     string `json:"label,omitempty"`

	BarcodeFormat string `json:"barcodeFormat,omitempty"`
	Checked       bool   `json:"checked,omitempty"`
}
