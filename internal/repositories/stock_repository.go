package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/zevarhq/zevar/internal/db"
	apperrors "github.com/zevarhq/zevar/internal/errors"
	"github.com/zevarhq/zevar/internal/models"
)

type stockRepository struct {
	db *db.DB
}

func NewStockRepository(database *db.DB) StockRepository {
	return &stockRepository{db: database}
}

func (r *stockRepository) Create(ctx context.Context, s *models.StockItem) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *stockRepository) GetByID(ctx context.Context, id, userID string) (*models.StockItem, error) {
	var s models.StockItem
	err := r.db.WithContext(ctx).First(&s, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.ErrNotFound{Resource: "stock item", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
