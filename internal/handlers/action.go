package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zevarhq/zevar/internal/services"
)

type ActionHandler struct {
	service services.ChatService
}

func NewActionHandler(service services.ChatService) *ActionHandler {
	return &ActionHandler{service: service}
}

// HandleGetAction handles GET /api/actions/{id}
// @Summary Get an action
// @Tags actions
// @Produce json
// @Success 200 {object} models.ChatAction
// @Failure 404 {object} map[string]string
// @Router /actions/{id} [get]
func (h *ActionHandler) HandleGetAction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a, err := h.service.GetAction(r.Context(), UserID(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// HandleConfirm handles POST /api/actions/{id}/confirm
// @Summary Confirm an action
// @Description Execute a proposed action exactly once; racing confirms get 409
// @Tags actions
// @Produce json
// @Success 200 {object} models.ConfirmResult
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Router /actions/{id}/confirm [post]
func (h *ActionHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result, err := h.service.Confirm(r.Context(), UserID(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleCancel handles POST /api/actions/{id}/cancel
// @Summary Cancel an action
// @Tags actions
// @Produce json
// @Success 200 {object} models.ChatAction
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /actions/{id}/cancel [post]
func (h *ActionHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a, err := h.service.Cancel(r.Context(), UserID(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// HandleEdit handles PATCH /api/actions/{id}
// @Summary Edit an action's payload
// @Description Merge field corrections into a pending action and re-validate
// @Tags actions
// @Accept json
// @Produce json
// @Success 200 {object} models.ChatAction
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /actions/{id} [patch]
func (h *ActionHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	a, err := h.service.Edit(r.Context(), UserID(r.Context()), id, patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}
