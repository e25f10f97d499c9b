package errors

import (
	"fmt"
	"strings"
)

type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}

// ErrNotFound reports a record that does not exist or is not visible
// to the requesting user.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ErrAlreadyProcessed reports a confirmation attempt against an action
// that already left the confirmable states.
type ErrAlreadyProcessed struct {
	ID     string
	Status string
}

func (e *ErrAlreadyProcessed) Error() string {
	return fmt.Sprintf("action %s already processed (status %s)", e.ID, e.Status)
}

// ErrNotConfirmable reports an action whose payload is incomplete or
// invalid; confirmation is rejected before any write happens.
type ErrNotConfirmable struct {
	Missing []string
	Invalid []string
}

func (e *ErrNotConfirmable) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	if len(parts) == 0 {
		return "action is not confirmable"
	}
	return "action is not confirmable: " + strings.Join(parts, "; ")
}

// ErrPartialInvoice reports an invoice that was created but whose line
// items could not all be written. The invoice row is kept so the user
// can finish it from the edit screen.
type ErrPartialInvoice struct {
	InvoiceID string
	Err       error
}

func (e *ErrPartialInvoice) Error() string {
	return fmt.Sprintf("invoice %s created but items failed: %v", e.InvoiceID, e.Err)
}

func (e *ErrPartialInvoice) Unwrap() error { return e.Err }
