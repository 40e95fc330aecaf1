package inventory

import (
	"context"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"shopstack/config"
	"shopstack/internal/database"
	"shopstack/internal/database/models"
)

func testService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := database.OpenTestDB(t)
	return NewService(db, &config.Config{}, nil), db
}

func seedActorAndProduct(t *testing.T, db *gorm.DB, quantity int) (*models.User, *models.Product) {
	t.Helper()
	actor := &models.User{
		FirstName: "Store",
		LastName:  "Keeper",
		Email:     "keeper@store.test",
		Phone:     "08000000000",
		Status:    models.UserStatusActive,
	}
	if err := db.Create(actor).Error; err != nil {
		t.Fatalf("seed actor: %v", err)
	}
	p := &models.Product{
		Name:              "Widget",
		Price:             100,
		Cost:              50,
		Code:              "P000001",
		AvailableQuantity: quantity,
		IsOutOfStock:      quantity <= 0,
		Status:            models.ProductStatusActive,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return actor, p
}

func reloadProduct(t *testing.T, db *gorm.DB, id string) *models.Product {
	t.Helper()
	var p models.Product
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return &p
}

func TestAddStockRaisesQuantity(t *testing.T) {
	svc, db := testService(t)
	actor, p := seedActorAndProduct(t, db, 20)

	entry, svcErr := svc.AddStock(context.Background(), actor, AddStockInput{
		ProductID:    p.ID,
		Quantity:     5,
		UnitCost:     50,
		SellingPrice: 100,
	})
	if svcErr != nil {
		t.Fatalf("add stock: %v", svcErr)
	}

	if entry.TotalCost != 250 {
		t.Fatalf("expected total cost 250, got %v", entry.TotalCost)
	}
	if entry.ExpectedProfit != 250 {
		t.Fatalf("expected profit 250, got %v", entry.ExpectedProfit)
	}

	reloaded := reloadProduct(t, db, p.ID)
	if reloaded.AvailableQuantity != 25 {
		t.Fatalf("expected quantity 25, got %d", reloaded.AvailableQuantity)
	}
	if reloaded.IsOutOfStock {
		t.Fatal("restocked product should not be out of stock")
	}
}

func TestAddStockRepricesProduct(t *testing.T) {
	svc, db := testService(t)
	actor, p := seedActorAndProduct(t, db, 10)

	_, svcErr := svc.AddStock(context.Background(), actor, AddStockInput{
		ProductID: p.ID, Quantity: 5, UnitCost: 55, SellingPrice: 120,
	})
	if svcErr != nil {
		t.Fatalf("add stock: %v", svcErr)
	}

	reloaded := reloadProduct(t, db, p.ID)
	if reloaded.Cost != 55 || reloaded.Price != 120 {
		t.Fatalf("restock should reprice the product, got cost %v price %v", reloaded.Cost, reloaded.Price)
	}
}

func TestAddStockClearsOutOfStockFlag(t *testing.T) {
	svc, db := testService(t)
	actor, p := seedActorAndProduct(t, db, 0)

	_, svcErr := svc.AddStock(context.Background(), actor, AddStockInput{
		ProductID: p.ID, Quantity: 3, UnitCost: 50, SellingPrice: 100,
	})
	if svcErr != nil {
		t.Fatalf("add stock: %v", svcErr)
	}

	reloaded := reloadProduct(t, db, p.ID)
	if reloaded.IsOutOfStock {
		t.Fatal("flag should clear after restock")
	}
}

func TestAddStockRejectsPriceBelowCost(t *testing.T) {
	svc, db := testService(t)
	actor, p := seedActorAndProduct(t, db, 10)

	_, svcErr := svc.AddStock(context.Background(), actor, AddStockInput{
		ProductID: p.ID, Quantity: 3, UnitCost: 120, SellingPrice: 100,
	})
	if svcErr == nil || svcErr.Status != http.StatusBadRequest {
		t.Fatalf("expected rejection, got %v", svcErr)
	}
}

func TestRemoveStockLowersQuantity(t *testing.T) {
	svc, db := testService(t)
	actor, p := seedActorAndProduct(t, db, 10)

	removal, svcErr := svc.RemoveStock(context.Background(), actor, RemoveStockInput{
		ProductID: p.ID, Quantity: 4, Reason: "damaged in transit",
	})
	if svcErr != nil {
		t.Fatalf("remove stock: %v", svcErr)
	}

	// cost basis from the product itself when no restock exists
	if removal.UnitCost != 50 || removal.SellingPrice != 100 {
		t.Fatalf("unexpected cost basis %+v", removal)
	}
	if removal.ExpectedLoss != 400 {
		t.Fatalf("expected loss 400, got %v", removal.ExpectedLoss)
	}

	reloaded := reloadProduct(t, db, p.ID)
	if reloaded.AvailableQuantity != 6 {
		t.Fatalf("expected quantity 6, got %d", reloaded.AvailableQuantity)
	}
	if reloaded.IsOutOfStock {
		t.Fatal("product with remaining stock should not be flagged")
	}
}

func TestRemoveStockUsesLatestRestockCostBasis(t *testing.T) {
	svc, db := testService(t)
	actor, p := seedActorAndProduct(t, db, 10)

	_, svcErr := svc.AddStock(context.Background(), actor, AddStockInput{
		ProductID: p.ID, Quantity: 5, UnitCost: 60, SellingPrice: 110,
	})
	if svcErr != nil {
		t.Fatalf("add stock: %v", svcErr)
	}

	removal, svcErr := svc.RemoveStock(context.Background(), actor, RemoveStockInput{
		ProductID: p.ID, Quantity: 2, Reason: "expired",
	})
	if svcErr != nil {
		t.Fatalf("remove stock: %v", svcErr)
	}
	if removal.UnitCost != 60 || removal.SellingPrice != 110 {
		t.Fatalf("expected latest restock basis, got %+v", removal)
	}
	if removal.ExpectedLoss != 220 {
		t.Fatalf("expected loss 220, got %v", removal.ExpectedLoss)
	}
}

func TestRemoveStockToZeroFlagsOutOfStock(t *testing.T) {
	svc, db := testService(t)
	actor, p := seedActorAndProduct(t, db, 3)

	_, svcErr := svc.RemoveStock(context.Background(), actor, RemoveStockInput{
		ProductID: p.ID, Quantity: 3, Reason: "writeoff",
	})
	if svcErr != nil {
		t.Fatalf("remove stock: %v", svcErr)
	}

	reloaded := reloadProduct(t, db, p.ID)
	if reloaded.AvailableQuantity != 0 {
		t.Fatalf("expected quantity 0, got %d", reloaded.AvailableQuantity)
	}
	if !reloaded.IsOutOfStock {
		t.Fatal("empty product should be flagged out of stock")
	}
}

func TestRemoveStockRejectsOverdraw(t *testing.T) {
	svc, db := testService(t)
	actor, p := seedActorAndProduct(t, db, 3)

	_, svcErr := svc.RemoveStock(context.Background(), actor, RemoveStockInput{
		ProductID: p.ID, Quantity: 4, Reason: "writeoff",
	})
	if svcErr == nil || svcErr.Status != http.StatusBadRequest {
		t.Fatalf("expected rejection, got %v", svcErr)
	}

	reloaded := reloadProduct(t, db, p.ID)
	if reloaded.AvailableQuantity != 3 {
		t.Fatalf("failed removal must not change quantity, got %d", reloaded.AvailableQuantity)
	}

	var count int64
	db.Model(&models.StockRemoval{}).Count(&count)
	if count != 0 {
		t.Fatal("failed removal must not persist an audit record")
	}
}

func TestListStockEntriesByProduct(t *testing.T) {
	svc, db := testService(t)
	actor, p := seedActorAndProduct(t, db, 10)

	other := &models.Product{
		Name: "Gadget", Price: 80, Cost: 40, Code: "P000002",
		AvailableQuantity: 5, Status: models.ProductStatusActive,
	}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	ctx := context.Background()
	for _, id := range []string{p.ID, p.ID, other.ID} {
		if _, svcErr := svc.AddStock(ctx, actor, AddStockInput{
			ProductID: id, Quantity: 1, UnitCost: 40, SellingPrice: 80,
		}); svcErr != nil {
			t.Fatalf("add stock: %v", svcErr)
		}
	}

	page, svcErr := svc.ListStockEntries(ListParams{ProductID: p.ID})
	if svcErr != nil {
		t.Fatalf("list: %v", svcErr)
	}
	if page.ItemsCount != 2 {
		t.Fatalf("expected 2 entries, got %d", page.ItemsCount)
	}
}
