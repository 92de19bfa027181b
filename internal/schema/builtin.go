package schema

import "docdesigner/internal/domain"

func key(k, label string, t domain.DataKeyType) domain.DataKey {
	return domain.DataKey{Key: k, Label: label, Type: t}
}

// Fields every business document carries.
var common = []domain.DataKey{
	key("company_name", "Company Name", domain.DataText),
	key("company_address", "Company Address", domain.DataText),
	key("company_logo", "Company Logo", domain.DataImage),
	key("document_number", "Document Number", domain.DataText),
	key("document_date", "Document Date", domain.DataDate),
	key("notes", "Notes", domain.DataText),
	key("signatory", "Signatory", domain.DataText),
	key("qr_payload", "QR Payload", domain.DataText),
}

var totals = []domain.DataKey{
	key("items", "Line Items", domain.DataTable),
	key("subtotal", "Subtotal", domain.DataNumber),
	key("discount", "Discount", domain.DataNumber),
	key("tax", "Tax", domain.DataNumber),
	key("total", "Total", domain.DataNumber),
}

func builtins() map[domain.DocumentType][]domain.DataKey {
	join := func(parts ...[]domain.DataKey) []domain.DataKey {
		var out []domain.DataKey
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}
	customer := []domain.DataKey{
		key("customer_name", "Customer Name", domain.DataText),
		key("customer_address", "Customer Address", domain.DataText),
	}

	return map[domain.DocumentType][]domain.DataKey{
		domain.DocumentQuotation: join(common, customer, totals, []domain.DataKey{
			key("valid_until", "Valid Until", domain.DataDate),
			key("terms", "Terms & Conditions", domain.DataText),
		}),
		domain.DocumentInvoice: join(common, customer, totals, []domain.DataKey{
			key("due_date", "Due Date", domain.DataDate),
			key("payment_terms", "Payment Terms", domain.DataText),
			key("bank_account", "Bank Account", domain.DataText),
			key("paid", "Paid", domain.DataBoolean),
		}),
		domain.DocumentDeliveryOrder: join(common, customer, []domain.DataKey{
			key("items", "Line Items", domain.DataTable),
			key("delivery_date", "Delivery Date", domain.DataDate),
			key("shipping_address", "Shipping Address", domain.DataText),
			key("driver_name", "Driver Name", domain.DataText),
			key("vehicle_number", "Vehicle Number", domain.DataText),
			key("received_by", "Received By", domain.DataText),
		}),
		domain.DocumentPurchaseOrder: join(common, []domain.DataKey{
			key("supplier_name", "Supplier Name", domain.DataText),
			key("supplier_address", "Supplier Address", domain.DataText),
		}, totals, []domain.DataKey{
			key("expected_date", "Expected Date", domain.DataDate),
			key("approved", "Approved", domain.DataBoolean),
		}),
	}
}
