package models

import "time"

// Customer is a shop customer record, scoped to its owning user.
type Customer struct {
	ID                string    `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID            string    `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`
	Name              string    `json:"name" gorm:"column:name;type:varchar(255);not null"`
	Phone             string    `json:"phone" gorm:"column:phone;type:varchar(50)"`
	Address           string    `json:"address" gorm:"column:address;type:text"`
	IdentityType      string    `json:"identity_type" gorm:"column:identity_type;type:varchar(20)"`
	IdentityReference string    `json:"identity_reference" gorm:"column:identity_reference;type:varchar(100)"`
	CreatedAt         time.Time `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"column:updated_at;type:timestamptz;autoUpdateTime"`
}

func (Customer) TableName() string { return "customers" }
