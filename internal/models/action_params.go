package models

import "encoding/json"

// Identity document types accepted on customers. When the type is "others"
// an identity reference value must accompany it.
const (
	IdentityAadhar = "aadhar"
	IdentityPAN    = "pan"
	IdentityOthers = "others"
)

// InvoiceItemParams is one line of a proposed sales invoice. PricePerUnit is
// the rate quoted per 10 g of weight, the convention gold rates are quoted in.
type InvoiceItemParams struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Weight       float64 `json:"weight"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// InvoiceParams is the payload of a create_invoice action. Totals are
// optional; when present they must agree with the computed values.
type InvoiceParams struct {
	CustomerName              string              `json:"customer_name"`
	CustomerPhone             string              `json:"customer_phone,omitempty"`
	CustomerAddress           string              `json:"customer_address,omitempty"`
	CustomerIdentityType      string              `json:"customer_identity_type,omitempty"`
	CustomerIdentityReference string              `json:"customer_identity_reference,omitempty"`
	Items                     []InvoiceItemParams `json:"items"`
	TaxRate                   float64             `json:"tax_rate,omitempty"`
	Subtotal                  float64             `json:"subtotal,omitempty"`
	TaxAmount                 float64             `json:"tax_amount,omitempty"`
	GrandTotal                float64             `json:"grand_total,omitempty"`
}

// CustomerParams is the payload of an add_customer action.
type CustomerParams struct {
	Name              string `json:"name"`
	Phone             string `json:"phone,omitempty"`
	Address           string `json:"address,omitempty"`
	IdentityType      string `json:"identity_type,omitempty"`
	IdentityReference string `json:"identity_reference,omitempty"`
}

// StockParams is the payload of an add_stock action.
type StockParams struct {
	Category      string  `json:"category"`
	Material      string  `json:"material"`
	Weight        float64 `json:"weight"`
	PurchasePrice float64 `json:"purchase_price"`
	Description   string  `json:"description,omitempty"`
}

func toMap[T any](s T) map[string]interface{} {
	data, _ := json.Marshal(s)
	var result map[string]interface{}
	json.Unmarshal(data, &result)
	return result
}

func fromMap[T any](m map[string]interface{}, s *T) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, s)
}

func (p InvoiceParams) ToMap() map[string]interface{} { return toMap(p) }

func (p *InvoiceParams) FromMap(m map[string]interface{}) error { return fromMap(m, p) }

func (p CustomerParams) ToMap() map[string]interface{} { return toMap(p) }

func (p *CustomerParams) FromMap(m map[string]interface{}) error { return fromMap(m, p) }

func (p StockParams) ToMap() map[string]interface{} { return toMap(p) }

func (p *StockParams) FromMap(m map[string]interface{}) error { return fromMap(m, p) }
