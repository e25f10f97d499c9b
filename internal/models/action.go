package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Supported action types
const (
	ActionCreateInvoice = "create_invoice"
	ActionAddCustomer   = "add_customer"
	ActionAddStock      = "add_stock"
)

// Action statuses. Terminal states are executed, cancelled and failed.
const (
	StatusDraft                = "draft"
	StatusReady                = "ready"
	StatusAwaitingConfirmation = "awaiting_confirmation"
	StatusExecuting            = "executing"
	StatusExecuted             = "executed"
	StatusCancelled            = "cancelled"
	StatusFailed               = "failed"
)

// KnownActionType reports whether t is one of the supported action types.
func KnownActionType(t string) bool {
	switch t {
	case ActionCreateInvoice, ActionAddCustomer, ActionAddStock:
		return true
	}
	return false
}

// ChatAction is a structured, user-confirmable proposal to create a domain
// record, derived from chat input. It belongs to exactly one session and one
// user and is executed at most once.
type ChatAction struct {
	ID               string         `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	SessionID        string         `json:"session_id" gorm:"column:session_id;type:varchar(255);not null;index"`
	UserID           string         `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`
	Type             string         `json:"type" gorm:"column:type;type:varchar(50);not null"`
	Data             []byte         `json:"data" gorm:"column:data;type:jsonb"`
	Status           string         `json:"status" gorm:"column:status;type:varchar(30);not null;default:'draft'"`
	MissingFields    pq.StringArray `json:"missing_fields" gorm:"column:missing_fields;type:text[]"`
	ValidationErrors []byte         `json:"validation_errors" gorm:"column:validation_errors;type:jsonb"`
	RecordID         *string        `json:"record_id" gorm:"column:record_id;type:varchar(255)"`
	RedirectURL      *string        `json:"redirect_url" gorm:"column:redirect_url;type:varchar(255)"`
	Error            *string        `json:"error" gorm:"column:error;type:text"`
	CreatedAt        time.Time      `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"column:updated_at;type:timestamptz;autoUpdateTime"`
}

func (ChatAction) TableName() string { return "chat_actions" }

// IsTerminal reports whether the action can no longer change.
func (a *ChatAction) IsTerminal() bool {
	switch a.Status {
	case StatusExecuted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// Confirmable reports whether the action is in a state from which the user
// may confirm it. Completeness of the payload is checked separately.
func (a *ChatAction) Confirmable() bool {
	return a.Status == StatusReady || a.Status == StatusAwaitingConfirmation
}

// DataMap decodes the stored payload. A nil payload decodes to an empty map.
func (a *ChatAction) DataMap() (map[string]interface{}, error) {
	if len(a.Data) == 0 {
		return map[string]interface{}{}, nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(a.Data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// SetData encodes and stores the payload.
func (a *ChatAction) SetData(m map[string]interface{}) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	a.Data = b
	return nil
}

// ApplyValidation records a validator result on the action row.
func (a *ChatAction) ApplyValidation(res ValidationResult) {
	a.MissingFields = pq.StringArray(res.MissingFields)
	if len(res.Errors) == 0 {
		a.ValidationErrors = nil
		return
	}
	b, _ := json.Marshal(res.Errors)
	a.ValidationErrors = b
}

// StoredValidation decodes the validator result recorded on the row.
func (a *ChatAction) StoredValidation() ValidationResult {
	res := ValidationResult{MissingFields: []string(a.MissingFields)}
	if len(a.ValidationErrors) > 0 {
		_ = json.Unmarshal(a.ValidationErrors, &res.Errors)
	}
	return res
}

// ActionResult is what the executor returns for a confirmed action.
type ActionResult struct {
	RecordID    string `json:"record_id"`
	RedirectURL string `json:"redirect_url"`
}

// ConfirmResult is the confirmation endpoint's success body.
type ConfirmResult struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirect_url,omitempty"`
}
