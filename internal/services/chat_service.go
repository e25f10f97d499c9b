package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/zevarhq/zevar/internal/errors"
	"github.com/zevarhq/zevar/internal/models"
	"github.com/zevarhq/zevar/internal/repositories"
)

type chatService struct {
	actions   repositories.ActionRepository
	chats     repositories.ChatRepository
	extractor Extractor
	executor  ActionService
	logger    *zap.Logger
}

// NewChatService wires the chat orchestration: message persistence, the
// extractor, and the confirmation protocol in front of the executor.
func NewChatService(
	actions repositories.ActionRepository,
	chats repositories.ChatRepository,
	extractor Extractor,
	executor ActionService,
	logger *zap.Logger,
) ChatService {
	return &chatService{
		actions:   actions,
		chats:     chats,
		extractor: extractor,
		executor:  executor,
		logger:    logger,
	}
}

func (s *chatService) SendMessage(ctx context.Context, userID, sessionID, content string) (*models.ChatReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &apperrors.ErrValidation{Field: "content", Message: "content is required"}
	}

	var session *models.ChatSession
	if sessionID == "" {
		session = &models.ChatSession{
			ID:             uuid.NewString(),
			UserID:         userID,
			Title:          sessionTitle(content),
			Mode:           models.ModeAssistant,
			LastActivityAt: time.Now(),
		}
		if err := s.chats.CreateSession(ctx, session); err != nil {
			return nil, err
		}
	} else {
		var err error
		session, err = s.chats.GetSession(ctx, sessionID, userID)
		if err != nil {
			return nil, err
		}
	}

	history, err := s.chats.ListMessages(ctx, session.ID, userID, 0)
	if err != nil {
		return nil, err
	}

	userMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		UserID:    userID,
		Role:      models.RoleUser,
		Content:   content,
		Status:    models.MessageSending,
	}
	if err := s.chats.CreateMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	out, err := s.extractor.Extract(ctx, session, history, content)
	if err != nil {
		// The extractor degrades interpreter failures itself; anything that
		// still errors here is internal, so downgrade to a plain reply too.
		s.logger.Error("extraction failed", zap.String("session_id", session.ID), zap.Error(err))
		out = &ExtractResult{Reply: extractionFailedReply}
	}

	assistantMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		UserID:    userID,
		Role:      models.RoleAssistant,
		Content:   out.Reply,
		Status:    models.MessageSent,
	}

	// The action row exists before the assistant message referencing it, and
	// before the user message is marked sent.
	if out.Action != nil {
		if err := s.actions.Create(ctx, out.Action); err != nil {
			return nil, err
		}
		assistantMsg.ActionID = &out.Action.ID
	}
	if err := s.chats.CreateMessage(ctx, assistantMsg); err != nil {
		return nil, err
	}
	if err := s.chats.UpdateMessageStatus(ctx, userMsg.ID, models.MessageSent); err != nil {
		return nil, err
	}
	userMsg.Status = models.MessageSent

	if err := s.chats.TouchSession(ctx, session.ID); err != nil {
		s.logger.Warn("failed to touch session", zap.String("session_id", session.ID), zap.Error(err))
	}

	return &models.ChatReply{SessionID: session.ID, Message: assistantMsg, Action: out.Action}, nil
}

func (s *chatService) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*models.ChatSession, error) {
	return s.chats.ListSessions(ctx, userID, limit, offset)
}

func (s *chatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	return s.chats.DeleteSession(ctx, sessionID, userID)
}

func (s *chatService) ListMessages(ctx context.Context, userID, sessionID string, limit int) ([]*models.ChatMessage, error) {
	if _, err := s.chats.GetSession(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.chats.ListMessages(ctx, sessionID, userID, limit)
}

func (s *chatService) GetAction(ctx context.Context, userID, actionID string) (*models.ChatAction, error) {
	return s.actions.GetForUser(ctx, actionID, userID)
}

// Confirm executes a confirmed action exactly once. The payload is
// re-validated here regardless of what the client believes: the enabled
// state of a confirm button is UX, not authority.
func (s *chatService) Confirm(ctx context.Context, userID, actionID string) (*models.ConfirmResult, error) {
	a, err := s.actions.GetForUser(ctx, actionID, userID)
	if err != nil {
		return nil, err
	}

	data, err := a.DataMap()
	if err != nil {
		return nil, &apperrors.ErrValidation{Field: "data", Message: "stored payload is unreadable"}
	}
	res := models.Validate(a.Type, data)
	if !res.CanConfirm() {
		a.ApplyValidation(res)
		if err := s.actions.Update(ctx, a); err != nil {
			s.logger.Warn("failed to persist validation state", zap.String("action_id", a.ID), zap.Error(err))
		}
		return nil, &apperrors.ErrNotConfirmable{
			Missing: res.MissingFields,
			Invalid: res.InvalidFields(),
		}
	}

	// Atomic check-and-set: racing confirmations are serialized at the
	// storage layer, the loser gets ErrAlreadyProcessed.
	if err := s.actions.BeginExecution(ctx, actionID, userID); err != nil {
		return nil, err
	}

	result, err := s.executor.Perform(ctx, a)
	if err != nil {
		if markErr := s.actions.MarkFailed(ctx, actionID, err.Error()); markErr != nil {
			s.logger.Error("failed to mark action failed",
				zap.String("action_id", actionID), zap.Error(markErr))
		}
		return nil, err
	}

	if err := s.actions.FinishExecution(ctx, actionID, result.RecordID, result.RedirectURL); err != nil {
		return nil, err
	}

	s.logger.Info("action executed",
		zap.String("action_id", actionID),
		zap.String("record_id", result.RecordID),
		zap.String("user_id", userID))

	return &models.ConfirmResult{Success: true, RedirectURL: result.RedirectURL}, nil
}

func (s *chatService) Cancel(ctx context.Context, userID, actionID string) (*models.ChatAction, error) {
	if err := s.actions.Cancel(ctx, actionID, userID); err != nil {
		return nil, err
	}
	return s.actions.GetForUser(ctx, actionID, userID)
}

// Edit merges user corrections into the payload and re-validates. Terminal
// and executing actions are immutable.
func (s *chatService) Edit(ctx context.Context, userID, actionID string, patch map[string]interface{}) (*models.ChatAction, error) {
	a, err := s.actions.GetForUser(ctx, actionID, userID)
	if err != nil {
		return nil, err
	}
	if a.IsTerminal() || a.Status == models.StatusExecuting {
		return nil, &apperrors.ErrAlreadyProcessed{ID: a.ID, Status: a.Status}
	}

	data, err := a.DataMap()
	if err != nil {
		return nil, &apperrors.ErrValidation{Field: "data", Message: "stored payload is unreadable"}
	}
	for k, v := range patch {
		if v == nil {
			delete(data, k)
			continue
		}
		data[k] = v
	}
	if err := a.SetData(data); err != nil {
		return nil, err
	}

	res := models.Validate(a.Type, data)
	a.ApplyValidation(res)
	if res.CanConfirm() {
		a.Status = models.StatusReady
	} else {
		a.Status = models.StatusAwaitingConfirmation
	}
	if err := s.actions.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func sessionTitle(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) > 60 {
		runes = runes[:60]
	}
	return string(runes)
}
