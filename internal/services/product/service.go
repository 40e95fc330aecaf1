package product

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"shopstack/config"
	"shopstack/internal/database"
	"shopstack/internal/database/models"
	"shopstack/internal/response"
	"shopstack/internal/utils"
)

const (
	PRODUCTS_CACHE_KEY = "store:products"
	PRODUCTS_CACHE_TTL = 5 * time.Minute
)

type Service struct {
	db        *gorm.DB
	cfg       *config.Config
	redis     *redis.Client
	products  *database.Repository[models.Product]
	discounts *database.Repository[models.Discount]
	entries   *database.Repository[models.StockEntry]
}

func NewService(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *Service {
	return &Service{
		db:        db,
		cfg:       cfg,
		redis:     redisClient,
		products:  database.NewRepository[models.Product](db, "Discount", "Photos"),
		discounts: database.NewRepository[models.Discount](db),
		entries:   database.NewRepository[models.StockEntry](db),
	}
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, PRODUCTS_CACHE_KEY)
}

type CreateProductInput struct {
	Name        string     `json:"name" binding:"required"`
	Price       float64    `json:"price" binding:"required,gt=0"`
	Cost        float64    `json:"cost" binding:"required,gt=0"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	Categories  []string   `json:"categories"`
	ProductURL  string     `json:"product_url"`
	Quantity    int        `json:"quantity" binding:"gte=0"`
	ExpiryDate  *time.Time `json:"expiry_date"`
	PhotoURL    string     `json:"photo_url"`
}

// CreateProduct mints the external product code from the sequence counter
// and persists the product together with its opening stock entry in one
// transaction.
func (s *Service) CreateProduct(ctx context.Context, actor *models.User, input CreateProductInput) (*models.Product, *response.ServiceError) {
	if input.Price < input.Cost {
		return nil, response.NewError(http.StatusBadRequest, response.InvalidRequest("Price cannot be less than cost"))
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, response.Internal(tx.Error)
	}

	seq, err := database.NextSequence(tx, models.SequenceProductCode)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	product := &models.Product{
		Name:              input.Name,
		Price:             input.Price,
		Cost:              input.Cost,
		Code:              utils.FormatProductCode(seq),
		Description:       input.Description,
		Tags:              input.Tags,
		Categories:        input.Categories,
		ProductURL:        input.ProductURL,
		AvailableQuantity: input.Quantity,
		IsOutOfStock:      input.Quantity <= 0,
		ExpiryDate:        input.ExpiryDate,
		Status:            models.ProductStatusActive,
		CreatedBy:         actor.ID,
	}
	if _, err := s.products.Save(product, tx); err != nil {
		tx.Rollback()
		return nil, &response.ServiceError{Status: http.StatusBadRequest, Msg: response.UnableToSave, Err: err}
	}

	if input.PhotoURL != "" {
		photo := &models.ProductPhoto{
			ProductID: product.ID,
			URL:       input.PhotoURL,
			IsMain:    true,
			Status:    models.ItemStatusActive,
			CreatedBy: actor.ID,
		}
		if err := tx.Create(photo).Error; err != nil {
			tx.Rollback()
			return nil, response.Internal(err)
		}
	}

	if input.Quantity > 0 {
		entry := &models.StockEntry{
			Quantity:       input.Quantity,
			UnitCost:       input.Cost,
			TotalCost:      input.Cost * float64(input.Quantity),
			SellingPrice:   input.Price,
			ExpectedProfit: (input.Price - input.Cost) * float64(input.Quantity),
			Description:    "Opening stock",
			ProductID:      product.ID,
			Status:         models.ItemStatusActive,
			CreatedBy:      actor.ID,
		}
		if _, err := s.entries.Save(entry, tx); err != nil {
			tx.Rollback()
			return nil, response.Internal(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, response.Internal(err)
	}

	s.invalidateCache(ctx)
	return product, nil
}

type UpdateProductInput struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Cost        *float64 `json:"cost"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	Categories  []string `json:"categories"`
	ProductURL  *string  `json:"product_url"`
	Status      *string  `json:"status"`
}

// UpdateProduct applies a partial update. The minted code and the stock
// quantity are not updatable here; quantity only moves through stock
// entries and removals.
func (s *Service) UpdateProduct(ctx context.Context, actor *models.User, productID string, input UpdateProductInput) (*models.Product, *response.ServiceError) {
	existing, err := s.products.FindByID(productID, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	if existing == nil || existing.Status == models.ProductStatusDeleted {
		return nil, response.NewError(http.StatusBadRequest, response.ResourceNotFound("Product"))
	}

	price := existing.Price
	cost := existing.Cost
	if input.Price != nil {
		price = *input.Price
	}
	if input.Cost != nil {
		cost = *input.Cost
	}
	if price < cost {
		return nil, response.NewError(http.StatusBadRequest, response.InvalidRequest("Price cannot be less than cost"))
	}

	update := map[string]interface{}{"updated_by": actor.ID}
	if input.Name != nil {
		update["name"] = *input.Name
	}
	if input.Price != nil {
		update["price"] = price
	}
	if input.Cost != nil {
		update["cost"] = cost
	}
	if input.Description != nil {
		update["description"] = *input.Description
	}
	if input.ProductURL != nil {
		update["product_url"] = *input.ProductURL
	}
	if input.Tags != nil {
		update["tags"] = models.StringArray(input.Tags)
	}
	if input.Categories != nil {
		update["categories"] = models.StringArray(input.Categories)
	}
	if input.Status != nil {
		switch *input.Status {
		case models.ProductStatusActive, models.ProductStatusDeactivated,
			models.ProductStatusSuspended, models.ProductStatusBanned:
			update["status"] = *input.Status
		default:
			return nil, response.NewError(http.StatusBadRequest, response.InvalidValue("status"))
		}
	}

	updated, err := s.products.UpdateByID(productID, update, nil)
	if err != nil {
		return nil, &response.ServiceError{Status: http.StatusBadRequest, Msg: response.UnableToSave, Err: err}
	}

	s.invalidateCache(ctx)
	return updated, nil
}

// DeleteProduct soft-deletes; the record stays for invoices that reference it.
func (s *Service) DeleteProduct(ctx context.Context, actor *models.User, productID string) *response.ServiceError {
	existing, err := s.products.FindByID(productID, nil)
	if err != nil {
		return response.Internal(err)
	}
	if existing == nil || existing.Status == models.ProductStatusDeleted {
		return response.NewError(http.StatusBadRequest, response.ResourceNotFound("Product"))
	}

	_, err = s.products.UpdateByID(productID, map[string]interface{}{
		"status":     models.ProductStatusDeleted,
		"deleted_by": actor.ID,
	}, nil)
	if err != nil {
		return response.Internal(err)
	}

	s.invalidateCache(ctx)
	return nil
}

type CreateDiscountInput struct {
	ProductID   string  `json:"product_id" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description"`
}

// CreateDiscount activates a new discount for a product. A product carries
// at most one active discount, so prior active ones are deactivated in the
// same transaction.
func (s *Service) CreateDiscount(ctx context.Context, actor *models.User, input CreateDiscountInput) (*models.Discount, *response.ServiceError) {
	if input.Type != models.DiscountTypePercentage && input.Type != models.DiscountTypeFixed {
		return nil, response.NewError(http.StatusBadRequest, response.InvalidValue("type"))
	}

	product, err := s.products.FindByID(input.ProductID, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	if product == nil || product.Status == models.ProductStatusDeleted {
		return nil, response.NewError(http.StatusBadRequest, response.ResourceNotFound("Product"))
	}

	if input.Type == models.DiscountTypePercentage && input.Amount > 100 {
		return nil, response.NewError(http.StatusBadRequest, response.InvalidValue("amount"))
	}
	if input.Type == models.DiscountTypeFixed && input.Amount > product.Price {
		return nil, response.NewError(http.StatusBadRequest, response.InvalidRequest("Discount cannot exceed product price"))
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, response.Internal(tx.Error)
	}

	_, err = s.discounts.UpdateMany(
		database.NewQuery().Eq("product_id", input.ProductID).Eq("is_active", true),
		map[string]interface{}{"is_active": false, "status": models.ItemStatusDeactivated},
		tx,
	)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	discount := &models.Discount{
		Type:        input.Type,
		Amount:      input.Amount,
		Description: input.Description,
		ProductID:   input.ProductID,
		IsActive:    true,
		Status:      models.ItemStatusActive,
		CreatedBy:   actor.ID,
	}
	if _, err := s.discounts.Save(discount, tx); err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	_, err = s.products.UpdateByID(product.ID, map[string]interface{}{
		"discount_id": discount.ID,
		"updated_by":  actor.ID,
	}, tx)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, response.Internal(err)
	}

	s.invalidateCache(ctx)
	return discount, nil
}

type ListProductsParams struct {
	Size       int     `form:"size"`
	Page       int     `form:"page"`
	Sort       string  `form:"sort"`
	Search     string  `form:"search"`
	Status     string  `form:"status"`
	StartPrice float64 `form:"startPrice"`
	EndPrice   float64 `form:"endPrice"`
	OutOfStock *bool   `form:"outOfStock"`
}

func (p ListProductsParams) isDefault() bool {
	return p.Size == 0 && p.Page <= 1 && p.Sort == "" && p.Search == "" &&
		p.Status == "" && p.StartPrice == 0 && p.EndPrice == 0 && p.OutOfStock == nil
}

// ListProducts pages through the catalogue. The unfiltered first page is
// what the storefront polls constantly, so that one response is served
// through redis.
func (s *Service) ListProducts(ctx context.Context, params ListProductsParams) (*database.Page[models.Product], *response.ServiceError) {
	useCache := s.redis != nil && params.isDefault()

	if useCache {
		if val, err := s.redis.Get(ctx, PRODUCTS_CACHE_KEY).Result(); err == nil {
			var page database.Page[models.Product]
			if err := json.Unmarshal([]byte(val), &page); err == nil {
				return &page, nil
			}
		}
	}

	q := database.NewQuery().Sort(params.Sort)
	if params.Status != "" {
		q.Eq("status", params.Status)
	}
	if params.Search != "" {
		q.Search(params.Search, "name", "code", "description")
	}
	if params.StartPrice > 0 {
		q.Gte("price", params.StartPrice)
	}
	if params.EndPrice > 0 {
		q.Lte("price", params.EndPrice)
	}
	if params.OutOfStock != nil {
		q.Eq("is_out_of_stock", *params.OutOfStock)
	}

	page, err := s.products.PaginateAndPopulate(q, params.Size, params.Page, nil)
	if err != nil {
		return nil, response.Internal(err)
	}

	if useCache {
		if jsonData, err := json.Marshal(page); err == nil {
			s.redis.Set(ctx, PRODUCTS_CACHE_KEY, jsonData, PRODUCTS_CACHE_TTL)
		}
	}
	return page, nil
}

func (s *Service) GetProduct(productID string) (*models.Product, *response.ServiceError) {
	product, err := s.products.FindByIDAndPopulate(productID, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	if product == nil || product.Status == models.ProductStatusDeleted {
		return nil, response.NewError(http.StatusNotFound, response.ResourceNotFound("Product"))
	}
	return product, nil
}
