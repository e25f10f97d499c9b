package repositories

import (
	"context"

	"github.com/zevarhq/zevar/internal/models"
)

// ActionRepository persists chat actions. Status transitions that race with
// each other (confirm vs confirm, confirm vs cancel) are serialized here with
// atomic status check-and-set updates, not in application memory.
type ActionRepository interface {
	Create(ctx context.Context, a *models.ChatAction) error
	GetForUser(ctx context.Context, id, userID string) (*models.ChatAction, error)
	Update(ctx context.Context, a *models.ChatAction) error
	// BeginExecution moves a confirmable action to executing. It returns
	// ErrNotFound when no such action is visible to the user and
	// ErrAlreadyProcessed when the action already left the confirmable states.
	BeginExecution(ctx context.Context, id, userID string) error
	FinishExecution(ctx context.Context, id, recordID, redirectURL string) error
	MarkFailed(ctx context.Context, id, reason string) error
	// Cancel moves a non-terminal, non-executing action to cancelled with the
	// same not-found/already-processed semantics as BeginExecution.
	Cancel(ctx context.Context, id, userID string) error
}

// ChatRepository persists sessions and messages.
type ChatRepository interface {
	CreateSession(ctx context.Context, s *models.ChatSession) error
	GetSession(ctx context.Context, id, userID string) (*models.ChatSession, error)
	ListSessions(ctx context.Context, userID string, limit, offset int) ([]*models.ChatSession, error)
	DeleteSession(ctx context.Context, id, userID string) error
	TouchSession(ctx context.Context, id string) error
	CreateMessage(ctx context.Context, m *models.ChatMessage) error
	ListMessages(ctx context.Context, sessionID, userID string, limit int) ([]*models.ChatMessage, error)
	UpdateMessageStatus(ctx context.Context, id, status string) error
}

// CustomerRepository persists customers.
type CustomerRepository interface {
	Create(ctx context.Context, c *models.Customer) error
	GetByID(ctx context.Context, id, userID string) (*models.Customer, error)
	// FindByName returns (nil, nil) when no customer matches.
	FindByName(ctx context.Context, userID, name string) (*models.Customer, error)
	Update(ctx context.Context, c *models.Customer) error
}

// InvoiceRepository persists invoices, their items and the per-user invoice
// number counter.
type InvoiceRepository interface {
	// Create allocates the next invoice number and inserts the invoice
	// atomically, then inserts the items. An item failure after the invoice
	// insert is reported as ErrPartialInvoice; the invoice row is kept.
	Create(ctx context.Context, inv *models.Invoice, items []*models.InvoiceItem) error
	GetByID(ctx context.Context, id, userID string) (*models.Invoice, error)
	GetItems(ctx context.Context, invoiceID string) ([]*models.InvoiceItem, error)
}

// StockRepository persists stock items.
type StockRepository interface {
	Create(ctx context.Context, s *models.StockItem) error
	GetByID(ctx context.Context, id, userID string) (*models.StockItem, error)
}

// FirmRepository persists firm profiles. Get returns (nil, nil) when the user
// has not configured one.
type FirmRepository interface {
	Get(ctx context.Context, userID string) (*models.FirmProfile, error)
	Save(ctx context.Context, p *models.FirmProfile) error
}
