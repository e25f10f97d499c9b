package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/zevarhq/zevar/internal/services"
)

type ChatHandler struct {
	service services.ChatService
}

func NewChatHandler(service services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// HandleSendMessage handles POST /api/chat/messages
// @Summary Send a chat message
// @Description Send a message to the assistant; the reply may carry a proposed action
// @Tags chat
// @Accept json
// @Produce json
// @Success 200 {object} models.ChatReply
// @Failure 422 {object} map[string]string
// @Router /chat/messages [post]
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Content   string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	reply, err := h.service.SendMessage(r.Context(), UserID(r.Context()), req.SessionID, req.Content)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reply)
}

// HandleListSessions handles GET /api/chat/sessions
// @Summary List chat sessions
// @Tags chat
// @Produce json
// @Success 200 {array} models.ChatSession
// @Router /chat/sessions [get]
func (h *ChatHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	sessions, err := h.service.ListSessions(r.Context(), UserID(r.Context()), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

// HandleDeleteSession handles DELETE /api/chat/sessions/{id}
// @Summary Delete a chat session
// @Description Delete a session, its messages, and its unexecuted actions
// @Tags chat
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /chat/sessions/{id} [delete]
func (h *ChatHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.service.DeleteSession(r.Context(), UserID(r.Context()), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMessages handles GET /api/chat/sessions/{id}/messages
// @Summary List messages of a session
// @Tags chat
// @Produce json
// @Success 200 {array} models.ChatMessage
// @Failure 404 {object} map[string]string
// @Router /chat/sessions/{id}/messages [get]
func (h *ChatHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.service.ListMessages(r.Context(), UserID(r.Context()), id, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}
