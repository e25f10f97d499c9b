package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zevarhq/zevar/internal/db"
	apperrors "github.com/zevarhq/zevar/internal/errors"
	"github.com/zevarhq/zevar/internal/models"
)

type invoiceRepository struct {
	db *db.DB
}

func NewInvoiceRepository(database *db.DB) InvoiceRepository {
	return &invoiceRepository{db: database}
}

// Create allocates the invoice number and inserts the invoice in one DB
// transaction, so concurrent invoice creation never issues duplicate numbers.
// Items are inserted afterwards on purpose: an item failure must leave the
// invoice row in place as a recoverable partial state.
func (r *invoiceRepository) Create(ctx context.Context, inv *models.Invoice, items []*models.InvoiceItem) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := nextInvoiceNumber(tx, inv.UserID)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = n
		return tx.Create(inv).Error
	})
	if err != nil {
		return err
	}

	for i, item := range items {
		item.InvoiceID = inv.ID
		item.Position = i + 1
		if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
			return &apperrors.ErrPartialInvoice{InvoiceID: inv.ID, Err: err}
		}
	}
	return nil
}

// nextInvoiceNumber bumps the per-user counter and reads the issued number,
// all inside the caller's transaction. next_number holds the last issued
// number, so a fresh counter row starts at 1.
func nextInvoiceNumber(tx *gorm.DB, userID string) (int64, error) {
	bump := tx.Exec("UPDATE invoice_counters SET next_number = next_number + 1 WHERE user_id = ?", userID)
	if bump.Error != nil {
		return 0, bump.Error
	}
	if bump.RowsAffected == 0 {
		created := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.InvoiceCounter{UserID: userID, NextNumber: 1})
		if created.Error != nil {
			return 0, created.Error
		}
		if created.RowsAffected == 0 {
			// Lost the insert race; the row exists now, bump it.
			if err := tx.Exec("UPDATE invoice_counters SET next_number = next_number + 1 WHERE user_id = ?", userID).Error; err != nil {
				return 0, err
			}
		}
	}

	var n int64
	if err := tx.Raw("SELECT next_number FROM invoice_counters WHERE user_id = ?", userID).Scan(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id, userID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.WithContext(ctx).First(&inv, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.ErrNotFound{Resource: "invoice", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepository) GetItems(ctx context.Context, invoiceID string) ([]*models.InvoiceItem, error) {
	var items []*models.InvoiceItem
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
