package domain

import "time"

// DocumentType is the kind of business document a template lays out.
type DocumentType string

const (
	DocumentQuotation     DocumentType = "quotation"
	DocumentInvoice       DocumentType = "invoice"
	DocumentDeliveryOrder DocumentType = "delivery_order"
	DocumentPurchaseOrder DocumentType = "purchase_order"
)

var DocumentTypes = []DocumentType{
	DocumentQuotation,
	DocumentInvoice,
	DocumentDeliveryOrder,
	DocumentPurchaseOrder,
}

func (d DocumentType) Valid() bool {
	for _, t := range DocumentTypes {
		if t == d {
			return true
		}
	}
	return false
}

// Template is a named, ordered list of components for one document type.
// Component order carries no rendering meaning but is preserved so that
// serialization stays deterministic.
type Template struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	DocumentType DocumentType `json:"documentType"`
	Components   []Component  `json:"-"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// TemplateConfig is the persisted body of a template.
type TemplateConfig struct {
	Components []Component `json:"components"`
}

// TemplateRecord is the wire shape exchanged with the persistence layer and
// with import/export files: {id, name, documentType, config: {components}}.
type TemplateRecord struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	DocumentType DocumentType   `json:"documentType"`
	Config       TemplateConfig `json:"config"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Record converts t to its wire shape.
func (t Template) Record() TemplateRecord {
	comps := t.Components
	if comps == nil {
		comps = []Component{}
	}
	return TemplateRecord{
		ID:           t.ID,
		Name:         t.Name,
		DocumentType: t.DocumentType,
		Config:       TemplateConfig{Components: comps},
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// Template converts a wire record back to a Template.
func (r TemplateRecord) Template() Template {
	return Template{
		ID:           r.ID,
		Name:         r.Name,
		DocumentType: r.DocumentType,
		Components:   r.Config.Components,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type TemplateStore interface {
	CreateTemplate(t *Template) error
	GetTemplate(id string) (*Template, error)
	ListTemplates() ([]Template, error)
	UpdateTemplate(t *Template) error
	DeleteTemplate(id string) error
}
