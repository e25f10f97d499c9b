package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/zevarhq/zevar/internal/db"
	apperrors "github.com/zevarhq/zevar/internal/errors"
	"github.com/zevarhq/zevar/internal/models"
)

type chatRepository struct {
	db *db.DB
}

func NewChatRepository(database *db.DB) ChatRepository {
	return &chatRepository{db: database}
}

func (r *chatRepository) CreateSession(ctx context.Context, s *models.ChatSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *chatRepository) GetSession(ctx context.Context, id, userID string) (*models.ChatSession, error) {
	var s models.ChatSession
	err := r.db.WithContext(ctx).First(&s, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.ErrNotFound{Resource: "session", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *chatRepository) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*models.ChatSession, error) {
	var list []*models.ChatSession
	q := r.db.WithContext(ctx).Model(&models.ChatSession{}).Where("user_id = ?", userID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Order("last_activity_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteSession removes the session together with its messages and any
// unexecuted actions. Executed actions stay for the audit trail.
func (r *chatRepository) DeleteSession(ctx context.Context, id, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.ChatSession{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &apperrors.ErrNotFound{Resource: "session", ID: id}
		}
		if err := tx.Where("session_id = ?", id).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Where("session_id = ? AND status <> ?", id, models.StatusExecuted).
			Delete(&models.ChatAction{}).Error
	})
}

func (r *chatRepository) TouchSession(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.ChatSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_activity_at": time.Now(),
			"updated_at":       time.Now(),
		}).Error
}

func (r *chatRepository) CreateMessage(ctx context.Context, m *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *chatRepository) ListMessages(ctx context.Context, sessionID, userID string, limit int) ([]*models.ChatMessage, error) {
	var list []*models.ChatMessage
	q := r.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *chatRepository) UpdateMessageStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("id = ?", id).
		Update("status", status).Error
}
