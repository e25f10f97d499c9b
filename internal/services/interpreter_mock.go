package services

import (
	"context"
	"regexp"
	"strings"
)

// MockInterpreter is a deterministic rule-based interpreter used when no
// language API is configured. It covers local development and tests: simple
// keyword intent detection plus light field extraction, never guessing
// numbers it cannot find in the text.
type MockInterpreter struct{}

// NewMockInterpreter creates the rule-based interpreter.
func NewMockInterpreter() Interpreter {
	return &MockInterpreter{}
}

var (
	namePattern   = regexp.MustCompile(`(?:[Ff]or|[Nn]amed?|[Cc]alled)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
	weightPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:g|gm|gms|gram|grams)`)
	ratePattern   = regexp.MustCompile(`(?i)(?:rate|price|@)\s*(?:of\s*)?(?:rs\.?\s*)?(\d+(?:\.\d+)?)`)
	qtyPattern    = regexp.MustCompile(`(?i)(\d+)\s+(?:pcs?|pieces?|nos?|units?)\b`)
	phonePattern  = regexp.MustCompile(`\b(\d{10})\b`)
)

func (p *MockInterpreter) Interpret(_ context.Context, req *InterpretRequest) (*InterpretResult, error) {
	text := strings.ToLower(req.Message)

	if req.Mode != "" && req.Mode != "assistant" {
		return &InterpretResult{Reply: "Happy to help. What would you like to know?", Confidence: 1}, nil
	}

	switch {
	case containsAny(text, "invoice", "bill", "billing"):
		return p.invoiceIntent(req.Message), nil
	case containsAny(text, "customer", "client"):
		return p.customerIntent(req.Message), nil
	case containsAny(text, "stock", "inventory"):
		return p.stockIntent(req.Message), nil
	}

	return &InterpretResult{
		Reply:      "I can create invoices, add customers, or record stock items. What would you like to do?",
		Confidence: 1,
	}, nil
}

func (p *MockInterpreter) invoiceIntent(message string) *InterpretResult {
	data := map[string]interface{}{}
	if m := namePattern.FindStringSubmatch(message); m != nil {
		data["customer_name"] = m[1]
	}

	item := map[string]interface{}{}
	if m := qtyPattern.FindStringSubmatch(message); m != nil {
		item["quantity"] = m[1]
	}
	if m := weightPattern.FindStringSubmatch(message); m != nil {
		item["weight"] = m[1]
	}
	if m := ratePattern.FindStringSubmatch(message); m != nil {
		item["price_per_unit"] = m[1]
	}
	if name := itemName(message); name != "" {
		item["name"] = name
	}
	if len(item) > 0 {
		data["items"] = []interface{}{item}
	}

	return &InterpretResult{
		Reply:      "Let's draft that invoice.",
		ActionType: "create_invoice",
		Data:       data,
		Confidence: 0.8,
	}
}

func (p *MockInterpreter) customerIntent(message string) *InterpretResult {
	data := map[string]interface{}{}
	if m := namePattern.FindStringSubmatch(message); m != nil {
		data["name"] = m[1]
	}
	if m := phonePattern.FindStringSubmatch(message); m != nil {
		data["phone"] = m[1]
	}
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "aadhar"), strings.Contains(lower, "aadhaar"):
		data["identity_type"] = "aadhar"
	case strings.Contains(lower, "pan"):
		data["identity_type"] = "pan"
	}
	return &InterpretResult{
		Reply:      "Adding a customer record.",
		ActionType: "add_customer",
		Data:       data,
		Confidence: 0.8,
	}
}

func (p *MockInterpreter) stockIntent(message string) *InterpretResult {
	data := map[string]interface{}{}
	lower := strings.ToLower(message)
	for _, material := range []string{"gold", "silver", "platinum", "diamond"} {
		if strings.Contains(lower, material) {
			data["material"] = material
			break
		}
	}
	if name := itemName(message); name != "" {
		data["category"] = name
	}
	if m := weightPattern.FindStringSubmatch(message); m != nil {
		data["weight"] = m[1]
	}
	if m := ratePattern.FindStringSubmatch(message); m != nil {
		data["purchase_price"] = m[1]
	}
	return &InterpretResult{
		Reply:      "Recording a stock item.",
		ActionType: "add_stock",
		Data:       data,
		Confidence: 0.8,
	}
}

var jewelryItems = []string{
	"necklace", "ring", "bangle", "bracelet", "chain", "earring",
	"pendant", "anklet", "mangalsutra", "nose pin",
}

func itemName(message string) string {
	lower := strings.ToLower(message)
	for _, item := range jewelryItems {
		if strings.Contains(lower, item) {
			return item
		}
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
