package repositories

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zevarhq/zevar/internal/models"
)

func TestFirmRepositoryGetUnset(t *testing.T) {
	repo := NewFirmRepository(newTestDB(t))

	p, err := repo.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil profile, got %+v", p)
	}
}

func TestFirmRepositorySaveUpserts(t *testing.T) {
	repo := NewFirmRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, &models.FirmProfile{
		UserID:  "user-1",
		Name:    "Zevar Jewels",
		TaxRate: decimal.NewFromInt(3),
	}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, &models.FirmProfile{
		UserID:  "user-1",
		Name:    "Zevar Jewels Pvt Ltd",
		TaxRate: decimal.NewFromInt(5),
	}); err != nil {
		t.Fatal(err)
	}

	p, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || p.Name != "Zevar Jewels Pvt Ltd" {
		t.Fatalf("profile = %+v", p)
	}
	if !p.TaxRate.Equal(decimal.NewFromInt(5)) {
		t.Errorf("tax rate = %s", p.TaxRate)
	}
}
