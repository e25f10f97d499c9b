package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a sales invoice. Customer and firm fields are snapshots taken at
// creation time so later edits to the source records never alter historical
// documents.
type Invoice struct {
	ID            string `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID        string `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;uniqueIndex:ux_invoices_user_number,priority:1"`
	InvoiceNumber int64  `json:"invoice_number" gorm:"column:invoice_number;not null;uniqueIndex:ux_invoices_user_number,priority:2"`

	// Customer snapshot
	CustomerID                *string `json:"customer_id" gorm:"column:customer_id;type:varchar(255);index"`
	CustomerName              string  `json:"customer_name" gorm:"column:customer_name;type:varchar(255);not null"`
	CustomerPhone             string  `json:"customer_phone" gorm:"column:customer_phone;type:varchar(50)"`
	CustomerAddress           string  `json:"customer_address" gorm:"column:customer_address;type:text"`
	CustomerIdentityType      string  `json:"customer_identity_type" gorm:"column:customer_identity_type;type:varchar(20)"`
	CustomerIdentityReference string  `json:"customer_identity_reference" gorm:"column:customer_identity_reference;type:varchar(100)"`

	// Firm snapshot
	FirmName    string `json:"firm_name" gorm:"column:firm_name;type:varchar(255)"`
	FirmAddress string `json:"firm_address" gorm:"column:firm_address;type:text"`
	FirmGSTIN   string `json:"firm_gstin" gorm:"column:firm_gstin;type:varchar(50)"`
	FirmPhone   string `json:"firm_phone" gorm:"column:firm_phone;type:varchar(50)"`

	Subtotal   decimal.Decimal `json:"subtotal" gorm:"column:subtotal;type:decimal(20,4);not null"`
	TaxRate    decimal.Decimal `json:"tax_rate" gorm:"column:tax_rate;type:decimal(10,4);not null"`
	TaxAmount  decimal.Decimal `json:"tax_amount" gorm:"column:tax_amount;type:decimal(20,4);not null"`
	GrandTotal decimal.Decimal `json:"grand_total" gorm:"column:grand_total;type:decimal(20,4);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;type:timestamptz;autoUpdateTime"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one line of an invoice. PricePerUnit is the rate per 10 g.
type InvoiceItem struct {
	ID           string          `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	InvoiceID    string          `json:"invoice_id" gorm:"column:invoice_id;type:varchar(255);not null;index"`
	Position     int             `json:"position" gorm:"column:position;not null"`
	Name         string          `json:"name" gorm:"column:name;type:varchar(255);not null"`
	Quantity     decimal.Decimal `json:"quantity" gorm:"column:quantity;type:decimal(20,4);not null"`
	Weight       decimal.Decimal `json:"weight" gorm:"column:weight;type:decimal(20,4);not null"`
	PricePerUnit decimal.Decimal `json:"price_per_unit" gorm:"column:price_per_unit;type:decimal(20,4);not null"`
	Amount       decimal.Decimal `json:"amount" gorm:"column:amount;type:decimal(20,4);not null"`
	CreatedAt    time.Time       `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// LineAmount computes quantity × weight × rate / 10 (rate quoted per 10 g).
func LineAmount(qty, weight, pricePerUnit decimal.Decimal) decimal.Decimal {
	return qty.Mul(weight).Mul(pricePerUnit).Div(decimal.NewFromInt(10))
}

// InvoiceCounter holds the last issued invoice number per user. It is bumped
// atomically inside the invoice-create transaction.
type InvoiceCounter struct {
	UserID     string `json:"user_id" gorm:"primaryKey;column:user_id;type:varchar(255)"`
	NextNumber int64  `json:"next_number" gorm:"column:next_number;not null"`
}

func (InvoiceCounter) TableName() string { return "invoice_counters" }
