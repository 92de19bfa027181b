package registry

import "docdesigner/internal/domain"

const (
	colorBlack        = "#000000"
	headerBackground  = "#f0f0f0"
	defaultDateFormat = "DD/MM/YYYY"
)

func textConfig(size float64) func() domain.ComponentConfig {
	return func() domain.ComponentConfig {
		return domain.ComponentConfig{FontSize: size, FontWeight: "normal", Align: "left", Color: colorBlack}
	}
}

// Default returns a registry holding the built-in component kinds.
func Default() *Registry {
	r := New()
	text := []domain.DataKeyType{domain.DataText, domain.DataNumber, domain.DataDate}

	r.Register(Kind{
		Type: domain.ComponentLabel, Label: "Label",
		DefaultWidth: 150, DefaultHeight: 30,
		Accepts: text,
		DefaultConfig: func() domain.ComponentConfig {
			return domain.ComponentConfig{FontSize: 14, FontWeight: "bold", Align: "left", Color: colorBlack, Text: "Label"}
		},
	})
	r.Register(Kind{
		Type: domain.ComponentText, Label: "Text",
		DefaultWidth: 200, DefaultHeight: 30,
		Accepts:       text,
		DefaultConfig: textConfig(14),
	})
	r.Register(Kind{
		Type: domain.ComponentMultiline, Label: "Multiline Text",
		DefaultWidth: 300, DefaultHeight: 80,
		MinWidth: 40, MinHeight: 30,
		Accepts:       []domain.DataKeyType{domain.DataText},
		DefaultConfig: textConfig(12),
	})
	r.Register(Kind{
		Type: domain.ComponentNumber, Label: "Number",
		DefaultWidth: 120, DefaultHeight: 30,
		Accepts: []domain.DataKeyType{domain.DataNumber},
		DefaultConfig: func() domain.ComponentConfig {
			return domain.ComponentConfig{FontSize: 14, FontWeight: "normal", Align: "right", Color: colorBlack, NumberFormat: "#,##0.00", Decimals: 2}
		},
	})
	r.Register(Kind{
		Type: domain.ComponentDate, Label: "Date",
		DefaultWidth: 120, DefaultHeight: 30,
		Accepts: []domain.DataKeyType{domain.DataDate},
		DefaultConfig: func() domain.ComponentConfig {
			return domain.ComponentConfig{FontSize: 14, FontWeight: "normal", Align: "left", Color: colorBlack, DateFormat: defaultDateFormat}
		},
	})
	r.Register(Kind{
		Type: domain.ComponentImage, Label: "Image",
		DefaultWidth: 150, DefaultHeight: 100,
		MinWidth: 20, MinHeight: 20,
		Accepts: []domain.DataKeyType{domain.DataImage},
		DefaultConfig: func() domain.ComponentConfig {
			return domain.ComponentConfig{Fit: "contain"}
		},
	})
	r.Register(Kind{
		Type: domain.ComponentTable, Label: "Table",
		DefaultWidth: 500, DefaultHeight: 200,
		MinWidth: 100, MinHeight: 40,
		Accepts: []domain.DataKeyType{domain.DataTable},
		DefaultConfig: func() domain.ComponentConfig {
			return domain.ComponentConfig{FontSize: 12, Bordered: true, HeaderBackground: headerBackground}
		},
	})
	r.Register(Kind{
		Type: domain.ComponentQRCode, Label: "QR Code",
		DefaultWidth: 100, DefaultHeight: 100,
		MinWidth: 40, MinHeight: 40,
		Accepts: []domain.DataKeyType{domain.DataText, domain.DataNumber},
		DefaultConfig: func() domain.ComponentConfig {
			return domain.ComponentConfig{Color: colorBlack}
		},
	})
	r.Register(Kind{
		Type: domain.ComponentBarcode, Label: "Barcode",
		DefaultWidth: 200, DefaultHeight: 60,
		MinWidth: 60, MinHeight: 20,
		Accepts: []domain.DataKeyType{domain.DataText, domain.DataNumber},
		DefaultConfig: func() domain.ComponentConfig {
			return domain.ComponentConfig{Color: colorBlack, BarcodeFormat: "CODE128"}
		},
	})
	r.Register(Kind{
		Type: domain.ComponentSignature, Label: "Signature",
		DefaultWidth: 200, DefaultHeight: 80,
		MinWidth: 60, MinHeight: 30,
		Accepts: []domain.DataKeyType{domain.DataText, domain.DataImage},
		DefaultConfig: func() domain.ComponentConfig {
			return domain.ComponentConfig{LineColor: colorBlack, Label: "Signature", FontSize: 12}
		},
	})
	r.Register(Kind{
		Type: domain.ComponentCheckbox, Label: "Checkbox",
		DefaultWidth: 20, DefaultHeight: 20,
		Accepts: []domain.DataKeyType{domain.DataBoolean},
		DefaultConfig: func() domain.ComponentConfig {
			return domain.ComponentConfig{Color: colorBlack}
		},
	})
	return r
}
