package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zevarhq/zevar/internal/db"
	"github.com/zevarhq/zevar/internal/models"
)

type firmRepository struct {
	db *db.DB
}

func NewFirmRepository(database *db.DB) FirmRepository {
	return &firmRepository{db: database}
}

func (r *firmRepository) Get(ctx context.Context, userID string) (*models.FirmProfile, error) {
	var p models.FirmProfile
	err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *firmRepository) Save(ctx context.Context, p *models.FirmProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(p).Error
}
