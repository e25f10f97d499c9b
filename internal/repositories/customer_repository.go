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

type customerRepository struct {
	db *db.DB
}

func NewCustomerRepository(database *db.DB) CustomerRepository {
	return &customerRepository{db: database}
}

func (r *customerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id, userID string) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).First(&c, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.ErrNotFound{Resource: "customer", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) FindByName(ctx context.Context, userID, name string) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).
		Order("created_at ASC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *models.Customer) error {
	c.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(c).Error
}
