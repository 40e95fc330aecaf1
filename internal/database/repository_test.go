package database

import (
	"fmt"
	"testing"

	"shopstack/internal/database/models"
)

func seedProducts(t *testing.T, repo *Repository[models.Product], n int, status string) []models.Product {
	t.Helper()
	products := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		p := models.Product{
			Name:   fmt.Sprintf("%s product %d", status, i),
			Price:  150,
			Cost:   100,
			Code:   fmt.Sprintf("P%s%04d", status[:1], i),
			Status: status,
		}
		saved, err := repo.Save(&p, nil)
		if err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
		products = append(products, *saved)
	}
	return products
}

func TestFindExcludesDeletedByDefault(t *testing.T) {
	db := OpenTestDB(t)
	repo := NewRepository[models.Product](db)

	seedProducts(t, repo, 3, models.ProductStatusActive)
	seedProducts(t, repo, 2, models.ItemStatusDeleted)

	found, err := repo.Find(NewQuery(), 0, nil)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("expected 3 products, got %d", len(found))
	}
	for _, p := range found {
		if p.Status == models.ItemStatusDeleted {
			t.Fatalf("deleted product %s leaked into default query", p.ID)
		}
	}
}

func TestFindStatusConstraintDisablesDefaultFilter(t *testing.T) {
	db := OpenTestDB(t)
	repo := NewRepository[models.Product](db)

	seedProducts(t, repo, 3, models.ProductStatusActive)
	seedProducts(t, repo, 2, models.ItemStatusDeleted)

	deleted, err := repo.Find(NewQuery().Eq("status", models.ItemStatusDeleted), 0, nil)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("expected 2 deleted products, got %d", len(deleted))
	}

	all, err := repo.Find(NewQuery().In("status", []string{models.ProductStatusActive, models.ItemStatusDeleted}), 0, nil)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 products, got %d", len(all))
	}
}

func TestPaginateDefaults(t *testing.T) {
	db := OpenTestDB(t)
	repo := NewRepository[models.Product](db)

	seedProducts(t, repo, 25, models.ProductStatusActive)
	seedProducts(t, repo, 4, models.ItemStatusDeleted)

	page, err := repo.Paginate(NewQuery(), 0, 0, nil)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if page.ItemsCount != 25 {
		t.Fatalf("expected items_count 25, got %d", page.ItemsCount)
	}
	if page.ItemsPerPage != DefaultPageSize {
		t.Fatalf("expected items_per_page %d, got %d", DefaultPageSize, page.ItemsPerPage)
	}
	if page.CurrentPage != 1 {
		t.Fatalf("expected current_page 1, got %d", page.CurrentPage)
	}
	if page.PageCount != 3 {
		t.Fatalf("expected page_count 3, got %d", page.PageCount)
	}
	if len(page.Data) != 10 {
		t.Fatalf("expected 10 items on first page, got %d", len(page.Data))
	}
	if page.NextPage == nil || *page.NextPage != 2 {
		t.Fatalf("expected next_page 2, got %v", page.NextPage)
	}
	if page.PreviousPage != nil {
		t.Fatalf("expected no previous_page on first page, got %d", *page.PreviousPage)
	}
}

func TestPaginateLastPage(t *testing.T) {
	db := OpenTestDB(t)
	repo := NewRepository[models.Product](db)

	seedProducts(t, repo, 25, models.ProductStatusActive)

	page, err := repo.Paginate(NewQuery(), 10, 3, nil)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(page.Data) != 5 {
		t.Fatalf("expected 5 items on last page, got %d", len(page.Data))
	}
	if page.NextPage != nil {
		t.Fatalf("expected no next_page on last page, got %d", *page.NextPage)
	}
	if page.PreviousPage == nil || *page.PreviousPage != 2 {
		t.Fatalf("expected previous_page 2, got %v", page.PreviousPage)
	}
}

func TestFindOneMissingReturnsNil(t *testing.T) {
	db := OpenTestDB(t)
	repo := NewRepository[models.Product](db)

	found, err := repo.FindOne(NewQuery().Eq("code", "nope"), nil)
	if err != nil {
		t.Fatalf("find one: %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil for missing record, got %+v", found)
	}
}

func TestFindByIDIgnoresSoftDeleteFilter(t *testing.T) {
	db := OpenTestDB(t)
	repo := NewRepository[models.Product](db)

	deleted := seedProducts(t, repo, 1, models.ItemStatusDeleted)[0]

	found, err := repo.FindByID(deleted.ID, nil)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil {
		t.Fatal("expected deleted record to be reachable by id")
	}
}

func TestUpdateByID(t *testing.T) {
	db := OpenTestDB(t)
	repo := NewRepository[models.Product](db)

	product := seedProducts(t, repo, 1, models.ProductStatusActive)[0]

	updated, err := repo.UpdateByID(product.ID, map[string]interface{}{"price": 200.0}, nil)
	if err != nil {
		t.Fatalf("update by id: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated record")
	}
	if updated.Price != 200 {
		t.Fatalf("expected price 200, got %v", updated.Price)
	}

	missing, err := repo.UpdateByID("no-such-id", map[string]interface{}{"price": 1.0}, nil)
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing id, got %+v", missing)
	}
}

func TestUpdateOrCreateNew(t *testing.T) {
	db := OpenTestDB(t)
	repo := NewRepository[models.SequenceCounter](db)

	created, err := repo.UpdateOrCreateNew(
		NewQuery().Eq("type", "invoice"),
		&models.SequenceCounter{Type: "invoice", CurrentCount: 1},
		nil,
	)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CurrentCount != 1 {
		t.Fatalf("expected count 1, got %d", created.CurrentCount)
	}

	updated, err := repo.UpdateOrCreateNew(
		NewQuery().Eq("type", "invoice"),
		&models.SequenceCounter{Type: "invoice", CurrentCount: 7},
		nil,
	)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected update of existing record, got new id %s", updated.ID)
	}
	if updated.CurrentCount != 7 {
		t.Fatalf("expected count 7, got %d", updated.CurrentCount)
	}

	count, err := repo.Count(NewQuery().Eq("type", "invoice"), nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single counter row, got %d", count)
	}
}

func TestSearchMatchesCaseInsensitively(t *testing.T) {
	db := OpenTestDB(t)
	repo := NewRepository[models.Product](db)

	seedProducts(t, repo, 3, models.ProductStatusActive)

	found, err := repo.Find(NewQuery().Search("ACTIVE PRODUCT 1", "name", "code"), 0, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 match, got %d", len(found))
	}
}

func TestUpdateMany(t *testing.T) {
	db := OpenTestDB(t)
	repo := NewRepository[models.Product](db)

	seedProducts(t, repo, 4, models.ProductStatusActive)

	affected, err := repo.UpdateMany(NewQuery(), map[string]interface{}{"status": models.ProductStatusSuspended}, nil)
	if err != nil {
		t.Fatalf("update many: %v", err)
	}
	if affected != 4 {
		t.Fatalf("expected 4 rows updated, got %d", affected)
	}
}
