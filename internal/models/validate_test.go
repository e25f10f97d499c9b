package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInvoiceData() map[string]interface{} {
	return InvoiceParams{
		CustomerName: "Asha Mehta",
		Items: []InvoiceItemParams{
			{Name: "gold chain", Quantity: 2, Weight: 10, PricePerUnit: 6450},
		},
	}.ToMap()
}

func TestValidateInvoice(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(data map[string]interface{})
		wantMissing []string
		wantErrors  []string
		canConfirm  bool
	}{
		{
			name:       "complete invoice",
			mutate:     func(map[string]interface{}) {},
			canConfirm: true,
		},
		{
			name: "missing customer name",
			mutate: func(data map[string]interface{}) {
				delete(data, "customer_name")
			},
			wantMissing: []string{"customer_name"},
		},
		{
			name: "empty customer name counts as missing",
			mutate: func(data map[string]interface{}) {
				data["customer_name"] = "   "
			},
			wantMissing: []string{"customer_name"},
		},
		{
			name: "no items",
			mutate: func(data map[string]interface{}) {
				data["items"] = []interface{}{}
			},
			wantMissing: []string{"items"},
		},
		{
			name: "item missing weight",
			mutate: func(data map[string]interface{}) {
				item := data["items"].([]interface{})[0].(map[string]interface{})
				delete(item, "weight")
			},
			wantMissing: []string{"items[0].weight"},
		},
		{
			name: "zero quantity is an error not missing",
			mutate: func(data map[string]interface{}) {
				item := data["items"].([]interface{})[0].(map[string]interface{})
				item["quantity"] = float64(0)
			},
			wantErrors: []string{"items[0].quantity"},
		},
		{
			name: "negative rate rejected",
			mutate: func(data map[string]interface{}) {
				item := data["items"].([]interface{})[0].(map[string]interface{})
				item["price_per_unit"] = float64(-10)
			},
			wantErrors: []string{"items[0].price_per_unit"},
		},
		{
			name: "string-typed numbers are accepted",
			mutate: func(data map[string]interface{}) {
				item := data["items"].([]interface{})[0].(map[string]interface{})
				item["quantity"] = "2"
				item["weight"] = "10"
				item["price_per_unit"] = "6450"
			},
			canConfirm: true,
		},
		{
			name: "consistent claimed totals pass",
			mutate: func(data map[string]interface{}) {
				// 2 x 10 g at 6450 per 10 g = 12900, 3% tax = 387
				data["subtotal"] = float64(12900)
				data["tax_amount"] = float64(387)
				data["grand_total"] = float64(13287)
			},
			canConfirm: true,
		},
		{
			name: "wrong grand total rejected",
			mutate: func(data map[string]interface{}) {
				data["grand_total"] = float64(13000)
			},
			wantErrors: []string{"grand_total"},
		},
		{
			name: "explicit tax rate changes the expected totals",
			mutate: func(data map[string]interface{}) {
				data["tax_rate"] = float64(5)
				data["tax_amount"] = float64(645)
				data["grand_total"] = float64(13545)
			},
			canConfirm: true,
		},
		{
			name: "negative tax rate rejected",
			mutate: func(data map[string]interface{}) {
				data["tax_rate"] = float64(-1)
			},
			wantErrors: []string{"tax_rate"},
		},
		{
			name: "unknown fields are ignored",
			mutate: func(data map[string]interface{}) {
				data["shipping_mode"] = "air"
			},
			canConfirm: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validInvoiceData()
			tt.mutate(data)

			res := Validate(ActionCreateInvoice, data)

			assert.Equal(t, tt.canConfirm, res.CanConfirm())
			for _, field := range tt.wantMissing {
				assert.Contains(t, res.MissingFields, field)
			}
			for _, field := range tt.wantErrors {
				assert.Contains(t, res.InvalidFields(), field)
			}
		})
	}
}

func TestValidateInvoiceSkipsTotalsWhenItemsIncomplete(t *testing.T) {
	data := validInvoiceData()
	item := data["items"].([]interface{})[0].(map[string]interface{})
	delete(item, "weight")
	// Claimed totals cannot be checked against an incomplete item list; they
	// must not produce spurious mismatch errors.
	data["grand_total"] = float64(99999)

	res := Validate(ActionCreateInvoice, data)

	assert.Contains(t, res.MissingFields, "items[0].weight")
	assert.NotContains(t, res.InvalidFields(), "grand_total")
}

func TestValidateInvoiceUnusualRateIsWarningOnly(t *testing.T) {
	data := validInvoiceData()
	item := data["items"].([]interface{})[0].(map[string]interface{})
	item["price_per_unit"] = float64(500000)

	res := Validate(ActionCreateInvoice, data)

	require.True(t, res.CanConfirm())
	var sawWarning bool
	for _, e := range res.Errors {
		if e.Severity == SeverityWarning && e.Field == "items[0].price_per_unit" {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning)
}

func TestValidateCustomer(t *testing.T) {
	tests := []struct {
		name        string
		data        map[string]interface{}
		wantMissing []string
		canConfirm  bool
	}{
		{
			name:       "name only is enough",
			data:       map[string]interface{}{"name": "Ravi Kumar"},
			canConfirm: true,
		},
		{
			name:        "missing name",
			data:        map[string]interface{}{"phone": "9876543210"},
			wantMissing: []string{"name"},
		},
		{
			name:       "aadhar without reference is fine",
			data:       map[string]interface{}{"name": "Ravi Kumar", "identity_type": "aadhar"},
			canConfirm: true,
		},
		{
			name:        "others identity requires a reference",
			data:        map[string]interface{}{"identity_type": "others", "identity_reference": ""},
			wantMissing: []string{"name", "identity_reference"},
		},
		{
			name: "others identity with reference",
			data: map[string]interface{}{
				"name":               "Ravi Kumar",
				"identity_type":      "others",
				"identity_reference": "passport X123",
			},
			canConfirm: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(ActionAddCustomer, tt.data)
			assert.Equal(t, tt.canConfirm, res.CanConfirm())
			for _, field := range tt.wantMissing {
				assert.Contains(t, res.MissingFields, field)
			}
		})
	}
}

func TestValidateStock(t *testing.T) {
	tests := []struct {
		name        string
		data        map[string]interface{}
		wantMissing []string
		wantErrors  []string
		canConfirm  bool
	}{
		{
			name: "complete stock item",
			data: StockParams{
				Category:      "bangle",
				Material:      "gold",
				Weight:        25,
				PurchasePrice: 150000,
			}.ToMap(),
			canConfirm: true,
		},
		{
			name:        "category and material required",
			data:        map[string]interface{}{"weight": float64(25), "purchase_price": float64(1)},
			wantMissing: []string{"category", "material"},
		},
		{
			name: "zero weight rejected",
			data: map[string]interface{}{
				"category":       "bangle",
				"material":       "gold",
				"weight":         float64(0),
				"purchase_price": float64(1),
			},
			wantErrors: []string{"weight"},
		},
		{
			name: "zero purchase price allowed",
			data: map[string]interface{}{
				"category":       "bangle",
				"material":       "gold",
				"weight":         float64(25),
				"purchase_price": float64(0),
			},
			canConfirm: true,
		},
		{
			name: "negative purchase price rejected",
			data: map[string]interface{}{
				"category":       "bangle",
				"material":       "gold",
				"weight":         float64(25),
				"purchase_price": float64(-5),
			},
			wantErrors: []string{"purchase_price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(ActionAddStock, tt.data)
			assert.Equal(t, tt.canConfirm, res.CanConfirm())
			for _, field := range tt.wantMissing {
				assert.Contains(t, res.MissingFields, field)
			}
			for _, field := range tt.wantErrors {
				assert.Contains(t, res.InvalidFields(), field)
			}
		})
	}
}

func TestValidateUnknownActionType(t *testing.T) {
	res := Validate("delete_everything", map[string]interface{}{})
	assert.False(t, res.CanConfirm())
	assert.Contains(t, res.InvalidFields(), "type")
}
