package inventory

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"shopstack/config"
	"shopstack/internal/database"
	"shopstack/internal/database/models"
	"shopstack/internal/response"
	"shopstack/internal/services/product"
	"shopstack/internal/utils"
)

type Service struct {
	db       *gorm.DB
	cfg      *config.Config
	redis    *redis.Client
	products *database.Repository[models.Product]
	entries  *database.Repository[models.StockEntry]
	removals *database.Repository[models.StockRemoval]
}

func NewService(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *Service {
	return &Service{
		db:       db,
		cfg:      cfg,
		redis:    redisClient,
		products: database.NewRepository[models.Product](db),
		entries:  database.NewRepository[models.StockEntry](db, "Product"),
		removals: database.NewRepository[models.StockRemoval](db, "Product"),
	}
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, product.PRODUCTS_CACHE_KEY)
}

func (s *Service) activeProduct(productID string, tx *gorm.DB) (*models.Product, *response.ServiceError) {
	p, err := s.products.FindByID(productID, tx)
	if err != nil {
		return nil, response.Internal(err)
	}
	if p == nil || p.Status == models.ProductStatusDeleted {
		return nil, response.NewError(http.StatusBadRequest, response.ResourceNotFound("Product"))
	}
	return p, nil
}

type AddStockInput struct {
	ProductID    string  `json:"product_id" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required,gt=0"`
	UnitCost     float64 `json:"unit_cost" binding:"required,gt=0"`
	SellingPrice float64 `json:"selling_price" binding:"required,gt=0"`
	Description  string  `json:"description"`
}

// AddStock records a restock and raises the product's available quantity in
// the same transaction.
func (s *Service) AddStock(ctx context.Context, actor *models.User, input AddStockInput) (*models.StockEntry, *response.ServiceError) {
	if input.SellingPrice < input.UnitCost {
		return nil, response.NewError(http.StatusBadRequest, response.InvalidRequest("Selling price cannot be less than unit cost"))
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, response.Internal(tx.Error)
	}

	p, svcErr := s.activeProduct(input.ProductID, tx)
	if svcErr != nil {
		tx.Rollback()
		return nil, svcErr
	}

	entry := &models.StockEntry{
		Quantity:       input.Quantity,
		UnitCost:       input.UnitCost,
		TotalCost:      input.UnitCost * float64(input.Quantity),
		SellingPrice:   input.SellingPrice,
		ExpectedProfit: (input.SellingPrice - input.UnitCost) * float64(input.Quantity),
		Description:    input.Description,
		ProductID:      p.ID,
		Status:         models.ItemStatusActive,
		CreatedBy:      actor.ID,
	}
	if _, err := s.entries.Save(entry, tx); err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	// a restock re-prices the product to the latest figures
	err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"available_quantity": gorm.Expr("available_quantity + ?", input.Quantity),
		"is_out_of_stock":    false,
		"cost":               input.UnitCost,
		"price":              input.SellingPrice,
		"updated_by":         actor.ID,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, response.Internal(err)
	}

	s.invalidateCache(ctx)
	return entry, nil
}

type RemoveStockInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Reason    string `json:"reason"`
}

// RemoveStock records shrinkage. The decrement is a conditional update so a
// concurrent removal can never push the quantity below zero.
func (s *Service) RemoveStock(ctx context.Context, actor *models.User, input RemoveStockInput) (*models.StockRemoval, *response.ServiceError) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, response.Internal(tx.Error)
	}

	p, svcErr := s.activeProduct(input.ProductID, tx)
	if svcErr != nil {
		tx.Rollback()
		return nil, svcErr
	}

	// cost basis comes from the latest restock, falling back to the
	// product's own figures for never-restocked items
	unitCost := p.Cost
	sellingPrice := p.Price
	lastEntry, err := s.entries.FindOne(
		database.NewQuery().Eq("product_id", p.ID).Sort("-created_at"),
		tx,
	)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}
	if lastEntry != nil {
		unitCost = lastEntry.UnitCost
		sellingPrice = lastEntry.SellingPrice
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND available_quantity >= ?", p.ID, input.Quantity).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity - ?", input.Quantity),
			"updated_by":         actor.ID,
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, response.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, response.NewError(http.StatusBadRequest, response.InvalidRequest("Insufficient quantity in stock"))
	}

	reloaded, err := s.products.FindByID(p.ID, tx)
	if err != nil || reloaded == nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}
	if reloaded.AvailableQuantity <= 0 {
		if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Update("is_out_of_stock", true).Error; err != nil {
			tx.Rollback()
			return nil, response.Internal(err)
		}
	}

	removal := &models.StockRemoval{
		Quantity:     input.Quantity,
		UnitCost:     unitCost,
		TotalCost:    unitCost * float64(input.Quantity),
		SellingPrice: sellingPrice,
		ExpectedLoss: sellingPrice * float64(input.Quantity),
		Reason:       input.Reason,
		ProductID:    p.ID,
		Status:       models.ItemStatusActive,
		CreatedBy:    actor.ID,
	}
	if _, err := s.removals.Save(removal, tx); err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, response.Internal(err)
	}

	s.invalidateCache(ctx)
	return removal, nil
}

type ListParams struct {
	Size      int    `form:"size"`
	Page      int    `form:"page"`
	Sort      string `form:"sort"`
	ProductID string `form:"product"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

func (p ListParams) query() *database.Query {
	q := database.NewQuery().Sort(p.Sort)
	if p.ProductID != "" {
		q.Eq("product_id", p.ProductID)
	}
	if start, err := time.Parse("2006-01-02", p.StartDate); err == nil {
		q.Gte("created_at", utils.StartOfDay(start))
	}
	if end, err := time.Parse("2006-01-02", p.EndDate); err == nil {
		q.Lte("created_at", utils.EndOfDay(end))
	}
	return q
}

func (s *Service) ListStockEntries(params ListParams) (*database.Page[models.StockEntry], *response.ServiceError) {
	page, err := s.entries.PaginateAndPopulate(params.query(), params.Size, params.Page, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	return page, nil
}

func (s *Service) ListStockRemovals(params ListParams) (*database.Page[models.StockRemoval], *response.ServiceError) {
	page, err := s.removals.PaginateAndPopulate(params.query(), params.Size, params.Page, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	return page, nil
}
