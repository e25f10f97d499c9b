package services

import (
	"context"

	"github.com/zevarhq/zevar/internal/models"
)

// ChatService orchestrates chat round trips and the action confirmation
// protocol. Every operation is scoped to the authenticated user.
type ChatService interface {
	SendMessage(ctx context.Context, userID, sessionID, content string) (*models.ChatReply, error)
	ListSessions(ctx context.Context, userID string, limit, offset int) ([]*models.ChatSession, error)
	DeleteSession(ctx context.Context, userID, sessionID string) error
	ListMessages(ctx context.Context, userID, sessionID string, limit int) ([]*models.ChatMessage, error)
	GetAction(ctx context.Context, userID, actionID string) (*models.ChatAction, error)
	Confirm(ctx context.Context, userID, actionID string) (*models.ConfirmResult, error)
	Cancel(ctx context.Context, userID, actionID string) (*models.ChatAction, error)
	Edit(ctx context.Context, userID, actionID string, patch map[string]interface{}) (*models.ChatAction, error)
}

// ActionService performs the real write for a confirmed, valid action and
// returns a navigation target.
type ActionService interface {
	Perform(ctx context.Context, a *models.ChatAction) (*models.ActionResult, error)
}

// ExtractResult is what one extraction round produces: always a reply, and an
// action when the message proposed work.
type ExtractResult struct {
	Reply  string
	Action *models.ChatAction
}

// Extractor turns a user message plus conversation context into a reply and,
// in assistant mode, possibly a candidate action.
type Extractor interface {
	Extract(ctx context.Context, session *models.ChatSession, history []*models.ChatMessage, text string) (*ExtractResult, error)
}

// HistoryEntry is one prior turn handed to the interpreter.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// InterpretRequest carries one message and its trailing context to the
// language interpreter.
type InterpretRequest struct {
	SessionID string
	Mode      string
	Message   string
	History   []HistoryEntry
}

// InterpretResult is the interpreter's structured answer. ActionType is empty
// when the message is plain conversation. Data holds only fields actually
// present in the text; the interpreter must not invent values.
type InterpretResult struct {
	Reply      string                 `json:"reply"`
	ActionType string                 `json:"action_type"`
	Data       map[string]interface{} `json:"data"`
	Confidence float64                `json:"confidence"`
}

// Interpreter is the language-interpretation collaborator behind the
// extractor.
type Interpreter interface {
	Interpret(ctx context.Context, req *InterpretRequest) (*InterpretResult, error)
}

// Transcriber converts recorded audio to text with language detection.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format string) (*models.Transcription, error)
}
