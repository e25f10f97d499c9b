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

type actionRepository struct {
	db *db.DB
}

func NewActionRepository(database *db.DB) ActionRepository {
	return &actionRepository{db: database}
}

func (r *actionRepository) Create(ctx context.Context, a *models.ChatAction) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *actionRepository) GetForUser(ctx context.Context, id, userID string) (*models.ChatAction, error) {
	var a models.ChatAction
	err := r.db.WithContext(ctx).First(&a, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.ErrNotFound{Resource: "action", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *actionRepository) Update(ctx context.Context, a *models.ChatAction) error {
	a.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(a).Error
}

var confirmableStatuses = []string{models.StatusReady, models.StatusAwaitingConfirmation}

// BeginExecution is the single check-and-set that makes execution
// at-most-once: the first caller to move the row wins, everyone else sees a
// non-confirmable status.
func (r *actionRepository) BeginExecution(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).Model(&models.ChatAction{}).
		Where("id = ? AND user_id = ? AND status IN ?", id, userID, confirmableStatuses).
		Updates(map[string]interface{}{
			"status":     models.StatusExecuting,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.explainMiss(ctx, id, userID)
	}
	return nil
}

func (r *actionRepository) FinishExecution(ctx context.Context, id, recordID, redirectURL string) error {
	return r.db.WithContext(ctx).Model(&models.ChatAction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.StatusExecuted,
			"record_id":    recordID,
			"redirect_url": redirectURL,
			"error":        nil,
			"updated_at":   time.Now(),
		}).Error
}

func (r *actionRepository) MarkFailed(ctx context.Context, id, reason string) error {
	return r.db.WithContext(ctx).Model(&models.ChatAction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.StatusFailed,
			"error":      reason,
			"updated_at": time.Now(),
		}).Error
}

func (r *actionRepository) Cancel(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).Model(&models.ChatAction{}).
		Where("id = ? AND user_id = ? AND status IN ?", id, userID,
			[]string{models.StatusDraft, models.StatusReady, models.StatusAwaitingConfirmation}).
		Updates(map[string]interface{}{
			"status":     models.StatusCancelled,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.explainMiss(ctx, id, userID)
	}
	return nil
}

// explainMiss distinguishes "no such action" from "already left the
// confirmable states" after a zero-row check-and-set.
func (r *actionRepository) explainMiss(ctx context.Context, id, userID string) error {
	var a models.ChatAction
	err := r.db.WithContext(ctx).Select("status").First(&a, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &apperrors.ErrNotFound{Resource: "action", ID: id}
	}
	if err != nil {
		return err
	}
	return &apperrors.ErrAlreadyProcessed{ID: id, Status: a.Status}
}
