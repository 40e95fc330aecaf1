package product

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"shopstack/config"
	"shopstack/internal/database"
	"shopstack/internal/database/models"
	"shopstack/internal/response"
)

func testService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := database.OpenTestDB(t)
	return NewService(db, &config.Config{}, nil), db
}

func testActor(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	actor := &models.User{
		FirstName: "Root",
		LastName:  "Admin",
		Email:     "admin@store.test",
		Phone:     "08000000000",
		Status:    models.UserStatusActive,
		IsAdmin:   true,
	}
	if err := db.Create(actor).Error; err != nil {
		t.Fatalf("seed actor: %v", err)
	}
	return actor
}

func TestCreateProductMintsSequentialCodes(t *testing.T) {
	svc, db := testService(t)
	actor := testActor(t, db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		product, svcErr := svc.CreateProduct(ctx, actor, CreateProductInput{
			Name:     fmt.Sprintf("Widget %d", i),
			Price:    100,
			Cost:     50,
			Quantity: 20,
		})
		if svcErr != nil {
			t.Fatalf("create product: %v", svcErr)
		}
		want := fmt.Sprintf("P%06d", i)
		if product.Code != want {
			t.Fatalf("expected code %s, got %s", want, product.Code)
		}
	}
}

func TestCreateProductWritesOpeningStockEntry(t *testing.T) {
	svc, db := testService(t)
	actor := testActor(t, db)

	product, svcErr := svc.CreateProduct(context.Background(), actor, CreateProductInput{
		Name: "Widget", Price: 100, Cost: 50, Quantity: 20,
	})
	if svcErr != nil {
		t.Fatalf("create product: %v", svcErr)
	}

	if product.AvailableQuantity != 20 {
		t.Fatalf("expected quantity 20, got %d", product.AvailableQuantity)
	}
	if product.IsOutOfStock {
		t.Fatal("stocked product should not be out of stock")
	}

	var entry models.StockEntry
	if err := db.First(&entry, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("expected opening stock entry: %v", err)
	}
	if entry.Quantity != 20 || entry.UnitCost != 50 || entry.SellingPrice != 100 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.ExpectedProfit != 1000 {
		t.Fatalf("expected profit 1000, got %v", entry.ExpectedProfit)
	}
}

func TestCreateProductPriceBelowCost(t *testing.T) {
	svc, db := testService(t)
	actor := testActor(t, db)

	_, svcErr := svc.CreateProduct(context.Background(), actor, CreateProductInput{
		Name: "Widget", Price: 40, Cost: 50, Quantity: 5,
	})
	if svcErr == nil || svcErr.Status != 400 {
		t.Fatalf("expected rejection, got %v", svcErr)
	}

	var count int64
	db.Model(&models.Product{}).Count(&count)
	if count != 0 {
		t.Fatal("rejected product must not be persisted")
	}
}

func TestCreateProductDuplicateNameRollsBackSequence(t *testing.T) {
	svc, db := testService(t)
	actor := testActor(t, db)
	ctx := context.Background()

	if _, svcErr := svc.CreateProduct(ctx, actor, CreateProductInput{Name: "Widget", Price: 100, Cost: 50, Quantity: 1}); svcErr != nil {
		t.Fatalf("first create: %v", svcErr)
	}

	_, svcErr := svc.CreateProduct(ctx, actor, CreateProductInput{Name: "Widget", Price: 100, Cost: 50, Quantity: 1})
	if svcErr == nil {
		t.Fatal("expected duplicate name to fail")
	}
	if !response.IsDuplicate(svcErr.Err) {
		t.Fatalf("expected duplicate key cause, got %v", svcErr.Err)
	}

	next, svcErr := svc.CreateProduct(ctx, actor, CreateProductInput{Name: "Gadget", Price: 100, Cost: 50, Quantity: 1})
	if svcErr != nil {
		t.Fatalf("create after failure: %v", svcErr)
	}
	// the failed create rolled its increment back with the transaction
	if next.Code != "P000002" {
		t.Fatalf("expected code P000002, got %s", next.Code)
	}
}

func TestUpdateProductGuardsPriceCostInvariant(t *testing.T) {
	svc, db := testService(t)
	actor := testActor(t, db)
	ctx := context.Background()

	product, svcErr := svc.CreateProduct(ctx, actor, CreateProductInput{Name: "Widget", Price: 100, Cost: 50, Quantity: 1})
	if svcErr != nil {
		t.Fatalf("create: %v", svcErr)
	}

	lowPrice := 40.0
	if _, svcErr = svc.UpdateProduct(ctx, actor, product.ID, UpdateProductInput{Price: &lowPrice}); svcErr == nil {
		t.Fatal("price below existing cost should be rejected")
	}

	highCost := 120.0
	if _, svcErr = svc.UpdateProduct(ctx, actor, product.ID, UpdateProductInput{Cost: &highCost}); svcErr == nil {
		t.Fatal("cost above existing price should be rejected")
	}

	newPrice, newCost := 150.0, 120.0
	updated, svcErr := svc.UpdateProduct(ctx, actor, product.ID, UpdateProductInput{Price: &newPrice, Cost: &newCost})
	if svcErr != nil {
		t.Fatalf("valid update: %v", svcErr)
	}
	if updated.Price != 150 || updated.Cost != 120 {
		t.Fatalf("unexpected update %+v", updated)
	}
}

func TestUpdateProductStatusValues(t *testing.T) {
	svc, db := testService(t)
	actor := testActor(t, db)
	ctx := context.Background()

	product, svcErr := svc.CreateProduct(ctx, actor, CreateProductInput{Name: "Widget", Price: 100, Cost: 50, Quantity: 1})
	if svcErr != nil {
		t.Fatalf("create: %v", svcErr)
	}

	for _, status := range []string{
		models.ProductStatusDeactivated,
		models.ProductStatusSuspended,
		models.ProductStatusBanned,
		models.ProductStatusActive,
	} {
		s := status
		updated, svcErr := svc.UpdateProduct(ctx, actor, product.ID, UpdateProductInput{Status: &s})
		if svcErr != nil {
			t.Fatalf("update to %s: %v", status, svcErr)
		}
		if updated.Status != status {
			t.Fatalf("expected status %s, got %s", status, updated.Status)
		}
	}

	deleted := models.ProductStatusDeleted
	if _, svcErr = svc.UpdateProduct(ctx, actor, product.ID, UpdateProductInput{Status: &deleted}); svcErr == nil {
		t.Fatal("deleted is not settable through update")
	}
}

func TestCreateDiscountDeactivatesPrior(t *testing.T) {
	svc, db := testService(t)
	actor := testActor(t, db)
	ctx := context.Background()

	product, svcErr := svc.CreateProduct(ctx, actor, CreateProductInput{Name: "Widget", Price: 100, Cost: 50, Quantity: 1})
	if svcErr != nil {
		t.Fatalf("create product: %v", svcErr)
	}

	first, svcErr := svc.CreateDiscount(ctx, actor, CreateDiscountInput{
		ProductID: product.ID, Type: models.DiscountTypePercentage, Amount: 10,
	})
	if svcErr != nil {
		t.Fatalf("first discount: %v", svcErr)
	}

	second, svcErr := svc.CreateDiscount(ctx, actor, CreateDiscountInput{
		ProductID: product.ID, Type: models.DiscountTypeFixed, Amount: 5,
	})
	if svcErr != nil {
		t.Fatalf("second discount: %v", svcErr)
	}

	var reloadedFirst models.Discount
	if err := db.First(&reloadedFirst, "id = ?", first.ID).Error; err != nil {
		t.Fatalf("reload first: %v", err)
	}
	if reloadedFirst.IsActive {
		t.Fatal("prior discount should be deactivated")
	}

	var count int64
	db.Model(&models.Discount{}).Where("product_id = ? AND is_active = ?", product.ID, true).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one active discount, got %d", count)
	}

	reloaded, svcErr := svc.GetProduct(product.ID)
	if svcErr != nil {
		t.Fatalf("get product: %v", svcErr)
	}
	if reloaded.DiscountID == nil || *reloaded.DiscountID != second.ID {
		t.Fatal("product should reference the latest discount")
	}
}

func TestCreateDiscountValidation(t *testing.T) {
	svc, db := testService(t)
	actor := testActor(t, db)
	ctx := context.Background()

	product, svcErr := svc.CreateProduct(ctx, actor, CreateProductInput{Name: "Widget", Price: 100, Cost: 50, Quantity: 1})
	if svcErr != nil {
		t.Fatalf("create product: %v", svcErr)
	}

	if _, svcErr = svc.CreateDiscount(ctx, actor, CreateDiscountInput{ProductID: product.ID, Type: "bogof", Amount: 10}); svcErr == nil {
		t.Fatal("unknown discount type should be rejected")
	}
	if _, svcErr = svc.CreateDiscount(ctx, actor, CreateDiscountInput{ProductID: product.ID, Type: models.DiscountTypePercentage, Amount: 150}); svcErr == nil {
		t.Fatal("percentage above 100 should be rejected")
	}
	if _, svcErr = svc.CreateDiscount(ctx, actor, CreateDiscountInput{ProductID: product.ID, Type: models.DiscountTypeFixed, Amount: 500}); svcErr == nil {
		t.Fatal("fixed discount above price should be rejected")
	}
}

func TestListProductsFilters(t *testing.T) {
	svc, db := testService(t)
	actor := testActor(t, db)
	ctx := context.Background()

	prices := []float64{50, 100, 200}
	for i, price := range prices {
		_, svcErr := svc.CreateProduct(ctx, actor, CreateProductInput{
			Name: fmt.Sprintf("Widget %d", i), Price: price, Cost: 10, Quantity: 1,
		})
		if svcErr != nil {
			t.Fatalf("create: %v", svcErr)
		}
	}

	page, svcErr := svc.ListProducts(ctx, ListProductsParams{StartPrice: 60, EndPrice: 150})
	if svcErr != nil {
		t.Fatalf("list: %v", svcErr)
	}
	if page.ItemsCount != 1 {
		t.Fatalf("expected 1 product in range, got %d", page.ItemsCount)
	}
	if page.Data[0].Price != 100 {
		t.Fatalf("unexpected product %+v", page.Data[0])
	}

	deleted, svcErr := svc.CreateProduct(ctx, actor, CreateProductInput{Name: "Gone", Price: 100, Cost: 10, Quantity: 1})
	if svcErr != nil {
		t.Fatalf("create: %v", svcErr)
	}
	if svcErr := svc.DeleteProduct(ctx, actor, deleted.ID); svcErr != nil {
		t.Fatalf("delete: %v", svcErr)
	}

	all, svcErr := svc.ListProducts(ctx, ListProductsParams{})
	if svcErr != nil {
		t.Fatalf("list: %v", svcErr)
	}
	if all.ItemsCount != 3 {
		t.Fatalf("deleted product should be excluded, got %d", all.ItemsCount)
	}
}
