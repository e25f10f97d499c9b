package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation severities. Errors block confirmation, warnings do not.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError describes one problem with one field of an action payload.
type ValidationError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// ValidationResult is the full outcome of validating an action payload.
type ValidationResult struct {
	MissingFields []string          `json:"missing_fields"`
	Errors        []ValidationError `json:"validation_errors"`
}

// CanConfirm reports whether the payload may be executed: no missing fields
// and no error-severity entries.
func (r ValidationResult) CanConfirm() bool {
	if len(r.MissingFields) > 0 {
		return false
	}
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			return false
		}
	}
	return true
}

func (r *ValidationResult) addMissing(field string) {
	r.MissingFields = append(r.MissingFields, field)
}

func (r *ValidationResult) addError(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Severity: SeverityError})
}

func (r *ValidationResult) addWarning(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Severity: SeverityWarning})
}

// InvalidFields returns the fields carrying error-severity entries.
func (r ValidationResult) InvalidFields() []string {
	var fields []string
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			fields = append(fields, e.Field)
		}
	}
	return fields
}

// Numeric tolerance for comparing claimed invoice totals against computed
// ones. Anything further apart is a silent mismatch and rejected.
var totalTolerance = decimal.NewFromFloat(0.01)

// Rates above this (per 10 g) are suspicious but not impossible.
var unusualRatePer10g = decimal.NewFromInt(200000)

// Default GST rate (percent) applied to jewelry invoices when none is given.
var defaultTaxRate = decimal.NewFromInt(3)

// Validate computes missing fields and validation problems for an action
// payload. It is a pure function of its input: unknown keys are ignored,
// nil/empty values count as missing, and string-typed numbers are coerced.
func Validate(actionType string, data map[string]interface{}) ValidationResult {
	var res ValidationResult
	if data == nil {
		data = map[string]interface{}{}
	}
	switch actionType {
	case ActionCreateInvoice:
		validateInvoice(data, &res)
	case ActionAddCustomer:
		validateCustomer(data, &res)
	case ActionAddStock:
		validateStock(data, &res)
	default:
		res.addError("type", fmt.Sprintf("unknown action type %q", actionType))
	}
	return res
}

func validateInvoice(data map[string]interface{}, res *ValidationResult) {
	if StrField(data, "customer_name") == "" {
		res.addMissing("customer_name")
	}

	items, ok := data["items"].([]interface{})
	if !ok || len(items) == 0 {
		res.addMissing("items")
		return
	}

	subtotal := decimal.Zero
	itemsComplete := true
	for i, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			res.addError(fmt.Sprintf("items[%d]", i), "item must be an object")
			itemsComplete = false
			continue
		}
		if StrField(item, "name") == "" {
			res.addMissing(fmt.Sprintf("items[%d].name", i))
		}
		qty, qok := requirePositive(item, fmt.Sprintf("items[%d].quantity", i), "quantity", res)
		weight, wok := requirePositive(item, fmt.Sprintf("items[%d].weight", i), "weight", res)
		rate, rok := requirePositive(item, fmt.Sprintf("items[%d].price_per_unit", i), "price_per_unit", res)
		if !(qok && wok && rok) {
			itemsComplete = false
			continue
		}
		if rate.GreaterThan(unusualRatePer10g) {
			res.addWarning(fmt.Sprintf("items[%d].price_per_unit", i), "rate is unusually high")
		}
		// rate is quoted per 10 g of weight
		subtotal = subtotal.Add(qty.Mul(weight).Mul(rate).Div(decimal.NewFromInt(10)))
	}

	// Totals can only be cross-checked once every line is numerically sound.
	if !itemsComplete {
		return
	}

	taxRate := defaultTaxRate
	if v, present := data["tax_rate"]; present && v != nil {
		d, ok := NumValue(v)
		if !ok {
			res.addError("tax_rate", "must be a number")
			return
		}
		if d.IsNegative() {
			res.addError("tax_rate", "must not be negative")
			return
		}
		taxRate = d
	}

	taxAmount := subtotal.Mul(taxRate).Div(decimal.NewFromInt(100))
	grandTotal := subtotal.Add(taxAmount)

	checkClaimedTotal(data, "subtotal", subtotal, res)
	checkClaimedTotal(data, "tax_amount", taxAmount, res)
	checkClaimedTotal(data, "grand_total", grandTotal, res)
}

func validateCustomer(data map[string]interface{}, res *ValidationResult) {
	if StrField(data, "name") == "" {
		res.addMissing("name")
	}
	idType := StrField(data, "identity_type")
	if idType == IdentityOthers && StrField(data, "identity_reference") == "" {
		res.addMissing("identity_reference")
	}
}

func validateStock(data map[string]interface{}, res *ValidationResult) {
	if StrField(data, "category") == "" {
		res.addMissing("category")
	}
	if StrField(data, "material") == "" {
		res.addMissing("material")
	}
	requirePositive(data, "weight", "weight", res)
	if v, present := lookup(data, "purchase_price"); !present {
		res.addMissing("purchase_price")
	} else if d, ok := NumValue(v); !ok {
		res.addError("purchase_price", "must be a number")
	} else if d.IsNegative() {
		res.addError("purchase_price", "must not be negative")
	}
}

// requirePositive records field as missing when absent, an error when
// unparseable or not strictly positive, and returns the parsed value.
func requirePositive(data map[string]interface{}, field, key string, res *ValidationResult) (decimal.Decimal, bool) {
	v, present := lookup(data, key)
	if !present {
		res.addMissing(field)
		return decimal.Zero, false
	}
	d, ok := NumValue(v)
	if !ok {
		res.addError(field, "must be a number")
		return decimal.Zero, false
	}
	if !d.IsPositive() {
		res.addError(field, "must be greater than zero")
		return decimal.Zero, false
	}
	return d, true
}

func checkClaimedTotal(data map[string]interface{}, key string, computed decimal.Decimal, res *ValidationResult) {
	v, present := lookup(data, key)
	if !present {
		return
	}
	claimed, ok := NumValue(v)
	if !ok {
		res.addError(key, "must be a number")
		return
	}
	if claimed.Sub(computed).Abs().GreaterThan(totalTolerance) {
		res.addError(key, fmt.Sprintf("does not match computed value %s", computed.String()))
	}
}

// lookup treats nil values and empty strings as absent.
func lookup(data map[string]interface{}, key string) (interface{}, bool) {
	v, ok := data[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

// StrField returns the trimmed string value of a key, or "" when absent or
// not a string.
func StrField(data map[string]interface{}, key string) string {
	if v, ok := data[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// NumValue coerces the usual JSON shapes of a number, including numeric
// strings, into a decimal.
func NumValue(v interface{}) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d, true
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(t)); err == nil {
			return d, true
		}
	case decimal.Decimal:
		return t, true
	}
	return decimal.Zero, false
}

// NumField is NumValue applied to a key, treating absent/empty as not found.
func NumField(data map[string]interface{}, key string) (decimal.Decimal, bool) {
	v, present := lookup(data, key)
	if !present {
		return decimal.Zero, false
	}
	return NumValue(v)
}
