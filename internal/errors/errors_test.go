package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrValidationError(t *testing.T) {
	err := &ErrValidation{Field: "weight", Message: "must be positive"}
	if got, want := err.Error(), "weight: must be positive"; got != want {
		t.Fatalf("unexpected error string: got %q want %q", got, want)
	}
}

func TestErrNotConfirmableError(t *testing.T) {
	err := &ErrNotConfirmable{Missing: []string{"customer_name"}, Invalid: []string{"items[0].weight"}}
	want := "action is not confirmable: missing fields: customer_name; invalid fields: items[0].weight"
	if got := err.Error(); got != want {
		t.Fatalf("unexpected error string: got %q want %q", got, want)
	}
	empty := &ErrNotConfirmable{}
	if got, want := empty.Error(), "action is not confirmable"; got != want {
		t.Fatalf("unexpected error string: got %q want %q", got, want)
	}
}

func TestErrPartialInvoiceUnwrap(t *testing.T) {
	cause := errors.New("insert failed")
	err := &ErrPartialInvoice{InvoiceID: "inv-1", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("expected Unwrap to expose the cause")
	}
	wrapped := fmt.Errorf("executor: %w", err)
	var pe *ErrPartialInvoice
	if !errors.As(wrapped, &pe) || pe.InvoiceID != "inv-1" {
		t.Fatalf("expected ErrPartialInvoice via errors.As, got %v", wrapped)
	}
}
