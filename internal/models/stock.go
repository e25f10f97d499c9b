package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem is an inventory item, scoped to its owning user.
type StockItem struct {
	ID            string          `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID        string          `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`
	Category      string          `json:"category" gorm:"column:category;type:varchar(100);not null"`
	Material      string          `json:"material" gorm:"column:material;type:varchar(100);not null"`
	Weight        decimal.Decimal `json:"weight" gorm:"column:weight;type:decimal(20,4);not null"`
	PurchasePrice decimal.Decimal `json:"purchase_price" gorm:"column:purchase_price;type:decimal(20,4);not null"`
	Description   string          `json:"description" gorm:"column:description;type:text"`
	CreatedAt     time.Time       `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"column:updated_at;type:timestamptz;autoUpdateTime"`
}

func (StockItem) TableName() string { return "stock_items" }
