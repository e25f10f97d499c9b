package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zevarhq/zevar/internal/models"
)

// historyWindow bounds how much trailing conversation the interpreter sees.
const historyWindow = 10

const extractionFailedReply = "Sorry, I couldn't process that right now. Please try again."

type extractor struct {
	interpreter Interpreter
	logger      *zap.Logger
}

// NewExtractor creates the extractor backing the chat assistant.
func NewExtractor(interpreter Interpreter, logger *zap.Logger) Extractor {
	return &extractor{interpreter: interpreter, logger: logger}
}

// Extract interprets a user message. Interpreter failures degrade to a plain
// error-flavored reply: a half-constructed action is never returned.
func (e *extractor) Extract(ctx context.Context, session *models.ChatSession, history []*models.ChatMessage, text string) (*ExtractResult, error) {
	req := &InterpretRequest{
		SessionID: session.ID,
		Mode:      session.Mode,
		Message:   text,
		History:   trailingHistory(history, historyWindow),
	}

	out, err := e.interpreter.Interpret(ctx, req)
	if err != nil {
		e.logger.Warn("interpretation failed",
			zap.String("session_id", session.ID),
			zap.Error(err))
		return &ExtractResult{Reply: extractionFailedReply}, nil
	}

	reply := strings.TrimSpace(out.Reply)

	// Only the assistant mode proposes writes.
	if session.Mode != models.ModeAssistant || out.ActionType == "" {
		if reply == "" {
			reply = extractionFailedReply
		}
		return &ExtractResult{Reply: reply}, nil
	}

	if !models.KnownActionType(out.ActionType) {
		e.logger.Warn("interpreter returned unknown action type",
			zap.String("session_id", session.ID),
			zap.String("action_type", out.ActionType))
		if reply == "" {
			reply = extractionFailedReply
		}
		return &ExtractResult{Reply: reply}, nil
	}

	action := &models.ChatAction{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		UserID:    session.UserID,
		Type:      out.ActionType,
		Status:    models.StatusDraft,
	}
	if err := action.SetData(out.Data); err != nil {
		e.logger.Warn("unencodable action data", zap.Error(err))
		return &ExtractResult{Reply: extractionFailedReply}, nil
	}

	res := models.Validate(action.Type, out.Data)
	action.ApplyValidation(res)
	if res.CanConfirm() {
		action.Status = models.StatusReady
	} else {
		action.Status = models.StatusAwaitingConfirmation
	}

	if reply == "" {
		reply = describeAction(action, res)
	}
	return &ExtractResult{Reply: reply, Action: action}, nil
}

func trailingHistory(history []*models.ChatMessage, window int) []HistoryEntry {
	start := 0
	if len(history) > window {
		start = len(history) - window
	}
	entries := make([]HistoryEntry, 0, len(history)-start)
	for _, m := range history[start:] {
		entries = append(entries, HistoryEntry{Role: m.Role, Content: m.Content})
	}
	return entries
}

func describeAction(a *models.ChatAction, res models.ValidationResult) string {
	var label string
	switch a.Type {
	case models.ActionCreateInvoice:
		label = "a sales invoice"
	case models.ActionAddCustomer:
		label = "a customer record"
	case models.ActionAddStock:
		label = "a stock item"
	}
	if res.CanConfirm() {
		return fmt.Sprintf("I've prepared %s. Review the details and confirm to save it.", label)
	}
	if len(res.MissingFields) > 0 {
		return fmt.Sprintf("I've started %s, but I still need: %s.", label, strings.Join(res.MissingFields, ", "))
	}
	return fmt.Sprintf("I've prepared %s, but some fields need fixing before it can be saved.", label)
}
