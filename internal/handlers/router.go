package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/zevarhq/zevar/internal/db"
)

// NewRouter assembles the HTTP surface: a public health check plus the
// authenticated /api subtree.
func NewRouter(
	chat *ChatHandler,
	action *ActionHandler,
	voice *VoiceHandler,
	database *db.DB,
	authSecret string,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		status := "healthy"
		code := http.StatusOK
		if err := database.Health(); err != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		respondJSON(w, code, map[string]string{"status": status, "service": "zevar-backend"})
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(AuthMiddleware(authSecret, logger))

	api.HandleFunc("/chat/messages", chat.HandleSendMessage).Methods("POST")
	api.HandleFunc("/chat/sessions", chat.HandleListSessions).Methods("GET")
	api.HandleFunc("/chat/sessions/{id}", chat.HandleDeleteSession).Methods("DELETE")
	api.HandleFunc("/chat/sessions/{id}/messages", chat.HandleListMessages).Methods("GET")

	api.HandleFunc("/actions/{id}", action.HandleGetAction).Methods("GET")
	api.HandleFunc("/actions/{id}", action.HandleEdit).Methods("PATCH")
	api.HandleFunc("/actions/{id}/confirm", action.HandleConfirm).Methods("POST")
	api.HandleFunc("/actions/{id}/cancel", action.HandleCancel).Methods("POST")

	api.HandleFunc("/voice/transcriptions", voice.HandleTranscribe).Methods("POST")

	return CORSMiddleware(r)
}
