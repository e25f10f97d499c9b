package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zevarhq/zevar/internal/models"
	"github.com/zevarhq/zevar/internal/repositories"
)

// actionService is the executor: it performs the real write for a confirmed
// action. Every write is scoped to the action's owner; a caller-supplied
// owner id is never accepted.
type actionService struct {
	invoices  repositories.InvoiceRepository
	customers repositories.CustomerRepository
	stock     repositories.StockRepository
	firms     repositories.FirmRepository
	logger    *zap.Logger
}

// NewActionService creates the action executor.
func NewActionService(
	invoices repositories.InvoiceRepository,
	customers repositories.CustomerRepository,
	stock repositories.StockRepository,
	firms repositories.FirmRepository,
	logger *zap.Logger,
) ActionService {
	return &actionService{
		invoices:  invoices,
		customers: customers,
		stock:     stock,
		firms:     firms,
		logger:    logger,
	}
}

func (s *actionService) Perform(ctx context.Context, a *models.ChatAction) (*models.ActionResult, error) {
	if a == nil || a.Type == "" {
		return nil, fmt.Errorf("action type is required")
	}
	data, err := a.DataMap()
	if err != nil {
		return nil, fmt.Errorf("invalid action data: %w", err)
	}

	switch a.Type {
	case models.ActionCreateInvoice:
		return s.performCreateInvoice(ctx, a, data)
	case models.ActionAddCustomer:
		return s.performAddCustomer(ctx, a, data)
	case models.ActionAddStock:
		return s.performAddStock(ctx, a, data)
	default:
		return nil, fmt.Errorf("unknown action: %s", a.Type)
	}
}

func (s *actionService) performCreateInvoice(ctx context.Context, a *models.ChatAction, data map[string]interface{}) (*models.ActionResult, error) {
	rawItems, _ := data["items"].([]interface{})
	if len(rawItems) == 0 {
		return nil, fmt.Errorf("invoice requires at least one item")
	}

	firm, err := s.firms.Get(ctx, a.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load firm profile: %w", err)
	}

	taxRate := decimal.NewFromInt(3)
	if firm != nil && !firm.TaxRate.IsZero() {
		taxRate = firm.TaxRate
	}
	if d, ok := models.NumField(data, "tax_rate"); ok {
		taxRate = d
	}

	inv := &models.Invoice{
		ID:                        uuid.NewString(),
		UserID:                    a.UserID,
		CustomerName:              models.StrField(data, "customer_name"),
		CustomerPhone:             models.StrField(data, "customer_phone"),
		CustomerAddress:           models.StrField(data, "customer_address"),
		CustomerIdentityType:      models.StrField(data, "customer_identity_type"),
		CustomerIdentityReference: models.StrField(data, "customer_identity_reference"),
		TaxRate:                   taxRate,
	}

	if firm != nil {
		inv.FirmName = firm.Name
		inv.FirmAddress = firm.Address
		inv.FirmGSTIN = firm.GSTIN
		inv.FirmPhone = firm.Phone
	}

	// Link the snapshot to an existing customer record when the name matches;
	// the snapshot stays authoritative either way.
	if inv.CustomerName != "" {
		if existing, err := s.customers.FindByName(ctx, a.UserID, inv.CustomerName); err == nil && existing != nil {
			inv.CustomerID = &existing.ID
			if inv.CustomerPhone == "" {
				inv.CustomerPhone = existing.Phone
			}
			if inv.CustomerAddress == "" {
				inv.CustomerAddress = existing.Address
			}
		}
	}

	items := make([]*models.InvoiceItem, 0, len(rawItems))
	subtotal := decimal.Zero
	for i, raw := range rawItems {
		itemData, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("items[%d] is not an object", i)
		}
		qty, ok1 := models.NumField(itemData, "quantity")
		weight, ok2 := models.NumField(itemData, "weight")
		rate, ok3 := models.NumField(itemData, "price_per_unit")
		name := models.StrField(itemData, "name")
		if name == "" || !(ok1 && ok2 && ok3) {
			return nil, fmt.Errorf("items[%d] is incomplete", i)
		}
		amount := models.LineAmount(qty, weight, rate)
		subtotal = subtotal.Add(amount)
		items = append(items, &models.InvoiceItem{
			ID:           uuid.NewString(),
			Name:         name,
			Quantity:     qty,
			Weight:       weight,
			PricePerUnit: rate,
			Amount:       amount,
		})
	}

	inv.Subtotal = subtotal
	inv.TaxAmount = subtotal.Mul(taxRate).Div(decimal.NewFromInt(100))
	inv.GrandTotal = inv.Subtotal.Add(inv.TaxAmount)

	if err := s.invoices.Create(ctx, inv, items); err != nil {
		// A partial invoice is recoverable from the edit screen; the error
		// carries the invoice id so the caller can point the user at it.
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", inv.ID),
		zap.Int64("invoice_number", inv.InvoiceNumber),
		zap.String("user_id", a.UserID))

	return &models.ActionResult{RecordID: inv.ID, RedirectURL: "/invoices/" + inv.ID}, nil
}

func (s *actionService) performAddCustomer(ctx context.Context, a *models.ChatAction, data map[string]interface{}) (*models.ActionResult, error) {
	var params models.CustomerParams
	if err := params.FromMap(data); err != nil {
		return nil, fmt.Errorf("invalid customer payload: %w", err)
	}
	c := &models.Customer{
		ID:                uuid.NewString(),
		UserID:            a.UserID,
		Name:              strings.TrimSpace(params.Name),
		Phone:             params.Phone,
		Address:           params.Address,
		IdentityType:      params.IdentityType,
		IdentityReference: params.IdentityReference,
	}
	if c.Name == "" {
		return nil, fmt.Errorf("customer name is required")
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &models.ActionResult{RecordID: c.ID, RedirectURL: "/customers/" + c.ID}, nil
}

func (s *actionService) performAddStock(ctx context.Context, a *models.ChatAction, data map[string]interface{}) (*models.ActionResult, error) {
	weight, ok := models.NumField(data, "weight")
	if !ok || !weight.IsPositive() {
		return nil, fmt.Errorf("stock weight must be positive")
	}
	price, ok := models.NumField(data, "purchase_price")
	if !ok || price.IsNegative() {
		return nil, fmt.Errorf("purchase price must be non-negative")
	}
	item := &models.StockItem{
		ID:            uuid.NewString(),
		UserID:        a.UserID,
		Category:      models.StrField(data, "category"),
		Material:      models.StrField(data, "material"),
		Weight:        weight,
		PurchasePrice: price,
		Description:   models.StrField(data, "description"),
	}
	if item.Category == "" || item.Material == "" {
		return nil, fmt.Errorf("stock category and material are required")
	}
	if err := s.stock.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create stock item: %w", err)
	}
	return &models.ActionResult{RecordID: item.ID, RedirectURL: "/stock/" + item.ID}, nil
}
