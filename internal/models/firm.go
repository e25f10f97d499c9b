package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FirmProfile holds the shop's own identity, copied onto invoices as a
// snapshot at creation time. One row per user.
type FirmProfile struct {
	UserID    string          `json:"user_id" gorm:"primaryKey;column:user_id;type:varchar(255)"`
	Name      string          `json:"name" gorm:"column:name;type:varchar(255)"`
	Address   string          `json:"address" gorm:"column:address;type:text"`
	GSTIN     string          `json:"gstin" gorm:"column:gstin;type:varchar(50)"`
	Phone     string          `json:"phone" gorm:"column:phone;type:varchar(50)"`
	TaxRate   decimal.Decimal `json:"tax_rate" gorm:"column:tax_rate;type:decimal(10,4);default:3"`
	CreatedAt time.Time       `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"column:updated_at;type:timestamptz;autoUpdateTime"`
}

func (FirmProfile) TableName() string { return "firm_profiles" }
