package sales

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
	sales    *database.Repository[models.Sales]
	items    *database.Repository[models.SalesItem]
}

func NewService(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *Service {
	return &Service{
		db:       db,
		cfg:      cfg,
		redis:    redisClient,
		products: database.NewRepository[models.Product](db, "Discount"),
		sales:    database.NewRepository[models.Sales](db),
		items:    database.NewRepository[models.SalesItem](db, "Product"),
	}
}

type CheckoutItemInput struct {
	ProductID string `json:"product" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type CheckoutInput struct {
	Customer string              `json:"customer" binding:"required"`
	UUID     string              `json:"uuid" binding:"required"`
	Items    []CheckoutItemInput `json:"items" binding:"required,min=1,dive"`
}

// CheckoutFailure lists every requested product that blocked the checkout,
// keyed by cause. Entries name the product; when the requested id matched
// nothing at all the raw id is listed instead, since no name exists for it.
// Nothing is persisted when it is returned.
type CheckoutFailure struct {
	InactiveProducts     []string `json:"inactive_products"`
	InsufficientQuantity []string `json:"insufficient_quantity"`
}

func (f *CheckoutFailure) empty() bool {
	return len(f.InactiveProducts) == 0 && len(f.InsufficientQuantity) == 0
}

type CheckoutResult struct {
	Invoice *models.Sales      `json:"invoice"`
	Items   []models.SalesItem `json:"items"`
}

// Checkout converts the requested line items into priced sales records and
// their aggregate invoice, decrementing inventory, all in one transaction.
func (s *Service) Checkout(ctx context.Context, actor *models.User, input CheckoutInput) (*CheckoutResult, *response.ServiceError) {
	seen := make(map[string]bool, len(input.Items))
	for _, item := range input.Items {
		if seen[item.ProductID] {
			return nil, response.NewError(http.StatusBadRequest, response.InvalidRequest("Duplicate product in items"))
		}
		seen[item.ProductID] = true
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, response.Internal(tx.Error)
	}

	products, failure, svcErr := s.fetchSalesItemsProducts(tx, input.Items)
	if svcErr != nil {
		tx.Rollback()
		return nil, svcErr
	}
	if !failure.empty() {
		tx.Rollback()
		return nil, response.NewErrorWithData(http.StatusBadRequest, response.UnableToCompleteRequest, failure)
	}

	invoiceID := uuid.NewString()
	now := time.Now()

	var (
		items     []models.SalesItem
		refs      models.ItemRefList
		discounts []models.ItemDiscount

		amount        = decimal.Zero
		totalProfit   = decimal.Zero
		totalCost     = decimal.Zero
		totalDiscount = decimal.Zero
	)

	for _, requested := range input.Items {
		p := products[requested.ProductID]
		qty := decimal.NewFromInt(int64(requested.Quantity))

		lineCost := decimal.NewFromFloat(p.Cost).Mul(qty)
		linePrice := decimal.NewFromFloat(p.Price).Mul(qty)

		var snapshot models.ItemDiscount
		if p.Discount != nil && p.Discount.IsActive {
			var discountAmount decimal.Decimal
			linePrice, discountAmount = applyDiscount(p.Discount, linePrice)
			snapshot = models.ItemDiscount{
				DiscountID: p.Discount.ID,
				Amount:     discountAmount.Round(2).InexactFloat64(),
			}
			discounts = append(discounts, snapshot)
			totalDiscount = totalDiscount.Add(discountAmount)
		}

		profit := linePrice.Sub(lineCost)

		item := models.SalesItem{
			Record:      models.Record{ID: uuid.NewString()},
			ProductID:   p.ID,
			SalesID:     invoiceID,
			ProductName: p.Name,
			Categories:  p.Categories,
			Quantity:    requested.Quantity,
			UnitCost:    p.Cost,
			TotalCost:   lineCost.Round(2).InexactFloat64(),
			UnitPrice:   p.Price,
			TotalPrice:  linePrice.Round(2).InexactFloat64(),
			Profit:      profit.Round(2).InexactFloat64(),
			Discount:    snapshot,
			Status:      models.ItemStatusActive,
			CreatedBy:   actor.ID,
		}
		items = append(items, item)
		refs = append(refs, models.ItemRef{SalesItemID: item.ID, Name: p.Name})

		amount = amount.Add(linePrice)
		totalProfit = totalProfit.Add(profit)
		totalCost = totalCost.Add(lineCost)

		// the validation read above can go stale under concurrent
		// checkouts; the conditional decrement is the authoritative check
		res := tx.Model(&models.Product{}).
			Where("id = ? AND available_quantity >= ?", p.ID, requested.Quantity).
			Update("available_quantity", gorm.Expr("available_quantity - ?", requested.Quantity))
		if res.Error != nil {
			tx.Rollback()
			return nil, response.Internal(res.Error)
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			return nil, response.NewErrorWithData(http.StatusBadRequest, response.UnableToCompleteRequest,
				&CheckoutFailure{InsufficientQuantity: []string{p.Name}})
		}
		err := tx.Model(&models.Product{}).Where("id = ?", p.ID).
			Update("is_out_of_stock", gorm.Expr("available_quantity <= 0")).Error
		if err != nil {
			tx.Rollback()
			return nil, response.Internal(err)
		}
	}

	if err := s.items.SaveMany(items, tx); err != nil {
		tx.Rollback()
		return nil, &response.ServiceError{Status: http.StatusBadRequest, Msg: response.UnableToCompleteRequest, Err: err}
	}

	vat := amount.Mul(decimal.NewFromFloat(s.cfg.VATRate))
	buckets := utils.BucketsFor(now)

	invoice := &models.Sales{
		Record:      models.Record{ID: invoiceID},
		Customer:    input.Customer,
		Items:       refs,
		Amount:      amount.Round(2).InexactFloat64(),
		VAT:         vat.Round(2).InexactFloat64(),
		TotalAmount: amount.Add(vat).Round(2).InexactFloat64(),
		Discount: models.SalesDiscount{
			Discounts: discounts,
			Total:     totalDiscount.Round(2).InexactFloat64(),
		},
		Profit:    totalProfit.Round(2).InexactFloat64(),
		Cost:      totalCost.Round(2).InexactFloat64(),
		UUID:      input.UUID,
		Status:    models.InvoiceStatusPaid,
		CreatedBy: actor.ID,

		DayCreated:     buckets.Day,
		WeekCreated:    buckets.Week,
		MonthCreated:   buckets.Month,
		YearCreated:    buckets.Year,
		WeekDayCreated: buckets.WeekDay,
		HourCreated:    buckets.Hour,
		AmOrPm:         buckets.AmOrPm,
	}
	if _, err := s.sales.Save(invoice, tx); err != nil {
		tx.Rollback()
		return nil, &response.ServiceError{Status: http.StatusBadRequest, Msg: response.UnableToCompleteRequest, Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, response.Internal(err)
	}

	if s.redis != nil {
		_ = s.redis.Del(ctx, product.PRODUCTS_CACHE_KEY)
	}
	return &CheckoutResult{Invoice: invoice, Items: items}, nil
}

// fetchSalesItemsProducts loads every requested product with its active
// discount and screens the request against product status and live
// quantity. Failures accumulate; the caller gets the full picture at once.
func (s *Service) fetchSalesItemsProducts(tx *gorm.DB, requested []CheckoutItemInput) (map[string]*models.Product, *CheckoutFailure, *response.ServiceError) {
	ids := make([]string, 0, len(requested))
	for _, item := range requested {
		ids = append(ids, item.ProductID)
	}

	found, err := s.products.FindAndPopulate(database.NewQuery().In("id", ids), 0, tx)
	if err != nil {
		return nil, nil, response.Internal(err)
	}

	byID := make(map[string]*models.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	failure := &CheckoutFailure{}
	for _, item := range requested {
		p, ok := byID[item.ProductID]
		if !ok {
			failure.InactiveProducts = append(failure.InactiveProducts, item.ProductID)
			continue
		}
		if p.Status != models.ProductStatusActive {
			failure.InactiveProducts = append(failure.InactiveProducts, p.Name)
			continue
		}
		if p.AvailableQuantity < item.Quantity {
			failure.InsufficientQuantity = append(failure.InsufficientQuantity, p.Name)
		}
	}
	return byID, failure, nil
}

// applyDiscount folds the product's active discount into the line total and
// returns the new total with the computed discount amount. The amount is
// added, not subtracted: the charged total stays whole and the discount is
// absorbed by profit.
func applyDiscount(d *models.Discount, totalPrice decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	var amount decimal.Decimal
	switch d.Type {
	case models.DiscountTypePercentage:
		amount = decimal.NewFromFloat(d.Amount).Div(decimal.NewFromInt(100)).Mul(totalPrice)
	case models.DiscountTypeFixed:
		amount = decimal.NewFromFloat(d.Amount)
	default:
		return totalPrice, decimal.Zero
	}
	return totalPrice.Add(amount), amount
}

type ListSalesParams struct {
	Size      int    `form:"size"`
	Page      int    `form:"page"`
	Sort      string `form:"sort"`
	Search    string `form:"search"`
	Status    string `form:"status"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

func (s *Service) ListSales(params ListSalesParams) (*database.Page[models.Sales], *response.ServiceError) {
	q := database.NewQuery().Sort(params.Sort)
	if params.Status != "" {
		q.Eq("status", params.Status)
	}
	if params.Search != "" {
		q.Search(params.Search, "customer", "uuid")
	}
	if start, err := time.Parse("2006-01-02", params.StartDate); err == nil {
		q.Gte("created_at", utils.StartOfDay(start))
	}
	if end, err := time.Parse("2006-01-02", params.EndDate); err == nil {
		q.Lte("created_at", utils.EndOfDay(end))
	}

	page, err := s.sales.Paginate(q, params.Size, params.Page, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	return page, nil
}

type ListSalesItemsParams struct {
	Size      int    `form:"size"`
	Page      int    `form:"page"`
	Sort      string `form:"sort"`
	ProductID string `form:"product"`
	SalesID   string `form:"sales_invoice"`
}

func (s *Service) ListSalesItems(params ListSalesItemsParams) (*database.Page[models.SalesItem], *response.ServiceError) {
	q := database.NewQuery().Sort(params.Sort)
	if params.ProductID != "" {
		q.Eq("product_id", params.ProductID)
	}
	if params.SalesID != "" {
		q.Eq("sales_id", params.SalesID)
	}

	page, err := s.items.PaginateAndPopulate(q, params.Size, params.Page, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	return page, nil
}

// GetSales returns an invoice with its line items.
func (s *Service) GetSales(salesID string) (*CheckoutResult, *response.ServiceError) {
	invoice, err := s.sales.FindByID(salesID, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	if invoice == nil {
		return nil, response.NewError(http.StatusNotFound, response.ResourceNotFound("Sales record"))
	}

	items, err := s.items.Find(database.NewQuery().Eq("sales_id", salesID), 0, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	return &CheckoutResult{Invoice: invoice, Items: items}, nil
}
