package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/zevarhq/zevar/internal/errors"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses:
// not-found is 404, an already-decided action is 409, validation trouble is
// 422, everything else is 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var notFound *apperrors.ErrNotFound
	if errors.As(err, &notFound) {
		respondError(w, http.StatusNotFound, notFound.Error())
		return
	}

	var processed *apperrors.ErrAlreadyProcessed
	if errors.As(err, &processed) {
		respondJSON(w, http.StatusConflict, map[string]string{
			"error":  processed.Error(),
			"status": processed.Status,
		})
		return
	}

	var notConfirmable *apperrors.ErrNotConfirmable
	if errors.As(err, &notConfirmable) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":          notConfirmable.Error(),
			"missing_fields": notConfirmable.Missing,
			"invalid_fields": notConfirmable.Invalid,
		})
		return
	}

	var validation *apperrors.ErrValidation
	if errors.As(err, &validation) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": validation.Error(),
			"field": validation.Field,
		})
		return
	}

	var partial *apperrors.ErrPartialInvoice
	if errors.As(err, &partial) {
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":      partial.Error(),
			"invoice_id": partial.InvoiceID,
		})
		return
	}

	respondError(w, http.StatusInternalServerError, err.Error())
}
