package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"docdesigner/internal/domain"
	"docdesigner/internal/registry"
	"docdesigner/internal/service"
	"docdesigner/internal/storage"
)

func TestTemplateService_CreateValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.templates.Create(ctx, "  ", domain.DocumentInvoice); !errors.Is(err, service.ErrInvalidName) {
		t.Errorf("blank name: expected ErrInvalidName, got %v", err)
	}
	if _, err := f.templates.Create(ctx, "Memo", "memo"); !errors.Is(err, service.ErrInvalidDocumentType) {
		t.Errorf("bad type: expected ErrInvalidDocumentType, got %v", err)
	}

	tpl, err := f.templates.Create(ctx, " Standard Invoice ", domain.DocumentInvoice)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tpl.Name != "Standard Invoice" || tpl.ID == "" {
		t.Errorf("unexpected template %+v", tpl)
	}
	if f.emitter.Count(service.EventTemplateCreated) != 1 {
		t.Error("expected a template:created event")
	}
}

func TestTemplateService_RenameAndDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tpl, _ := f.templates.Create(ctx, "Quote", domain.DocumentQuotation)

	got, err := f.templates.Rename(ctx, tpl.ID, "Quote v2")
	if err != nil || got.Name != "Quote v2" {
		t.Fatalf("Rename = %+v, %v", got, err)
	}
	if err := f.templates.Delete(ctx, tpl.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.templates.Delete(ctx, tpl.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestTemplateService_ExportImportRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tpl, _ := f.templates.Create(ctx, "Delivery", domain.DocumentDeliveryOrder)
	tpl.Components = []domain.Component{
		{ID: "c1", Type: domain.ComponentText, DataKey: "customer_name",
			Geometry: domain.Geometry{X: 20, Y: 20, Width: 200, Height: 30},
			Config:   domain.ComponentConfig{FontSize: 14, FontWeight: "normal", Align: "left", Color: "#000000"}},
		{ID: "c2", Type: domain.ComponentTable, DataKey: "items",
			Geometry: domain.Geometry{X: 20, Y: 300, Width: 500, Height: 200},
			Config:   domain.ComponentConfig{Columns: []domain.TableColumn{{Key: "sku", Label: "SKU"}}, Bordered: true}},
	}
	if err := f.templates.Save(ctx, tpl); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var buf bytes.Buffer
	if err := f.templates.ExportJSON(tpl.ID, &buf); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("exported JSON is invalid: %v", err)
	}
	for _, k := range []string{"id", "name", "documentType", "config"} {
		if _, ok := rec[k]; !ok {
			t.Errorf("exported record missing %q", k)
		}
	}

	imported, err := f.templates.ImportJSON(ctx, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if imported.ID == tpl.ID {
		t.Error("import should assign a fresh template id")
	}
	stored, _ := f.templates.Get(imported.ID)
	if !reflect.DeepEqual(stored.Components, tpl.Components) {
		t.Errorf("components changed across export/import:\n got %+v\nwant %+v", stored.Components, tpl.Components)
	}
}

func TestTemplateService_ImportRejects(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"unknown kind", `{"name":"x","documentType":"invoice","config":{"components":[{"id":"a","type":"sticker","x":0,"y":0,"width":50,"height":20}]}}`, registry.ErrUnknownType},
		{"duplicate id", `{"name":"x","documentType":"invoice","config":{"components":[{"id":"a","type":"text","x":0,"y":0,"width":50,"height":20},{"id":"a","type":"text","x":0,"y":40,"width":50,"height":20}]}}`, service.ErrDuplicateComponent},
		{"bad document type", `{"name":"x","documentType":"memo","config":{"components":[]}}`, service.ErrInvalidDocumentType},
		{"no name", `{"documentType":"invoice","config":{"components":[]}}`, service.ErrInvalidName},
		{"unknown field", `{"name":"x","documentType":"invoice","pages":2}`, service.ErrMalformedTemplate},
		{"not json", `<template/>`, service.ErrMalformedTemplate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.templates.ImportJSON(context.Background(), strings.NewReader(tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTemplateService_ImportFitsGeometry(t *testing.T) {
	f := newFixture()
	body := `{"name":"Wide","documentType":"invoice","config":{"components":[{"id":"a","type":"text","x":700,"y":-5,"width":200,"height":4}]}}`
	tpl, err := f.templates.ImportJSON(context.Background(), strings.NewReader(body))
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	want := domain.Geometry{X: 594, Y: 0, Width: 200, Height: 10}
	if got := tpl.Components[0].Geometry; got != want {
		t.Errorf("geometry = %+v, want %+v", got, want)
	}
}
