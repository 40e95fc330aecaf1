package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Product struct {
	Record
	Name              string         `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Price             float64        `gorm:"not null" json:"price"`
	Cost              float64        `gorm:"not null" json:"cost"`
	Code              string         `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Tags              StringArray    `gorm:"type:text" json:"tags"`
	Description       string         `gorm:"type:text" json:"description,omitempty"`
	ProductURL        string         `gorm:"size:255" json:"product_url"`
	Categories        StringArray    `gorm:"type:text" json:"categories"`
	AvailableQuantity int            `gorm:"not null" json:"available_quantity"`
	IsOutOfStock      bool           `gorm:"default:false" json:"is_out_of_stock"`
	DiscountID        *string        `gorm:"size:36" json:"discount_id,omitempty"`
	Discount          *Discount      `gorm:"foreignKey:DiscountID" json:"discount,omitempty"`
	IsExpired         bool           `gorm:"default:false" json:"is_expired"`
	ExpiryDate        *time.Time     `json:"expiry_date,omitempty"`
	Status            string         `gorm:"size:32;index;default:'active'" json:"status"`
	Photos            []ProductPhoto `gorm:"foreignKey:ProductID" json:"photos,omitempty"`
	CreatedBy         string         `gorm:"size:36" json:"created_by,omitempty"`
	UpdatedBy         string         `gorm:"size:36" json:"updated_by,omitempty"`
	DeletedBy         string         `gorm:"size:36" json:"deleted_by,omitempty"`
}

type ProductPhoto struct {
	Record
	ProductID string `gorm:"size:36;index" json:"product_id"`
	URL       string `gorm:"size:255;not null" json:"url"`
	PublicID  string `gorm:"size:255" json:"public_id,omitempty"`
	IsMain    bool   `gorm:"default:false" json:"is_main"`
	Status    string `gorm:"size:32;default:'active'" json:"status"`
	CreatedBy string `gorm:"size:36" json:"created_by,omitempty"`
}

type Discount struct {
	Record
	Type        string  `gorm:"size:32;not null" json:"type"`
	Amount      float64 `gorm:"not null" json:"amount"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	ProductID   string  `gorm:"size:36;index" json:"product_id"`
	IsActive    bool    `gorm:"default:true;index" json:"is_active"`
	Status      string  `gorm:"size:32;default:'active'" json:"status"`
	CreatedBy   string  `gorm:"size:36" json:"created_by,omitempty"`
}

// StockEntry tracks restocking of products in the store.
type StockEntry struct {
	Record
	Quantity       int      `gorm:"not null" json:"quantity"`
	UnitCost       float64  `gorm:"not null" json:"unit_cost"`
	TotalCost      float64  `gorm:"not null" json:"total_cost"`
	SellingPrice   float64  `gorm:"not null" json:"selling_price"`
	ExpectedProfit float64  `gorm:"not null" json:"expected_profit"`
	Description    string   `gorm:"type:text" json:"description,omitempty"`
	ProductID      string   `gorm:"size:36;index;not null" json:"product_id"`
	Product        *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Status         string   `gorm:"size:32;default:'active'" json:"status"`
	CreatedBy      string   `gorm:"size:36" json:"created_by,omitempty"`
}

// StockRemoval tracks shrinkage and manual removal of products.
type StockRemoval struct {
	Record
	Quantity     int      `gorm:"not null" json:"quantity"`
	UnitCost     float64  `gorm:"not null" json:"unit_cost"`
	TotalCost    float64  `gorm:"not null" json:"total_cost"`
	SellingPrice float64  `gorm:"not null" json:"selling_price"`
	ExpectedLoss float64  `gorm:"not null" json:"expected_loss"`
	Reason       string   `gorm:"type:text" json:"reason,omitempty"`
	ProductID    string   `gorm:"size:36;index;not null" json:"product_id"`
	Product      *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Status       string   `gorm:"size:32;default:'active'" json:"status"`
	CreatedBy    string   `gorm:"size:36" json:"created_by,omitempty"`
}

// ItemDiscount is the snapshot of a discount applied to a sales item at
// checkout time.
type ItemDiscount struct {
	DiscountID string  `json:"discount"`
	Amount     float64 `json:"amount"`
}

type SalesItem struct {
	Record
	ProductID    string       `gorm:"size:36;index;not null" json:"product_id"`
	Product      *Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SalesID      string       `gorm:"size:36;index;not null" json:"sales_invoice"`
	ProductName  string       `gorm:"size:255;index" json:"product_name"`
	Categories   StringArray  `gorm:"type:text" json:"categories"`
	Quantity     int          `gorm:"not null" json:"quantity"`
	UnitCost     float64      `gorm:"not null" json:"unit_cost"`
	TotalCost    float64      `gorm:"not null" json:"total_cost"`
	UnitPrice    float64      `gorm:"not null" json:"unit_price"`
	TotalPrice   float64      `gorm:"not null" json:"total_price"`
	Profit       float64      `gorm:"not null" json:"profit"`
	Discount     ItemDiscount `gorm:"embedded;embeddedPrefix:discount_" json:"discount"`
	Status       string       `gorm:"size:32;default:'active'" json:"status"`
	CreatedBy    string       `gorm:"size:36" json:"created_by,omitempty"`
}

// ItemRef is the denormalized (id, name) pair kept on the invoice for
// reporting without a join.
type ItemRef struct {
	SalesItemID string `json:"sales_item"`
	Name        string `json:"name"`
}

type ItemRefList []ItemRef

func (l *ItemRefList) Scan(value interface{}) error {
	if value == nil {
		*l = ItemRefList{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan ItemRefList: %v", value)
	}
	return json.Unmarshal(bytes, l)
}

func (l ItemRefList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// SalesDiscount aggregates the discount snapshots of an invoice's items.
type SalesDiscount struct {
	Discounts []ItemDiscount `json:"discounts"`
	Total     float64        `json:"total"`
}

func (d *SalesDiscount) Scan(value interface{}) error {
	if value == nil {
		*d = SalesDiscount{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan SalesDiscount: %v", value)
	}
	return json.Unmarshal(bytes, d)
}

func (d SalesDiscount) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Sales is the aggregate invoice for one checkout.
type Sales struct {
	Record
	Customer    string        `gorm:"size:100;index;not null" json:"customer"`
	Items       ItemRefList   `gorm:"type:text" json:"items"`
	Amount      float64       `gorm:"not null" json:"amount"`
	VAT         float64       `gorm:"column:vat;not null" json:"vat"`
	TotalAmount float64       `gorm:"not null" json:"total_amount"`
	Discount    SalesDiscount `gorm:"type:text" json:"discount"`
	Profit      float64       `gorm:"not null" json:"profit"`
	Cost        float64       `gorm:"not null" json:"cost"`
	UUID        string        `gorm:"column:uuid;size:36;uniqueIndex;not null" json:"uuid"`
	Status      string        `gorm:"size:32;index;default:'pending'" json:"status"`
	CreatedBy   string        `gorm:"size:36" json:"created_by"`

	DayCreated     int    `gorm:"index" json:"day_created"`
	WeekCreated    int    `gorm:"index" json:"week_created"`
	MonthCreated   int    `gorm:"index" json:"month_created"`
	YearCreated    int    `gorm:"index" json:"year_created"`
	WeekDayCreated string `gorm:"size:16;index" json:"week_day_created"`
	HourCreated    int    `gorm:"index" json:"hour_created"`
	AmOrPm         string `gorm:"size:2" json:"am_or_pm"`
}

type SequenceCounter struct {
	Record
	Type         string `gorm:"size:64;uniqueIndex;not null" json:"type"`
	CurrentCount int64  `gorm:"not null" json:"current_count"`
	Status       string `gorm:"size:32;default:'active'" json:"status"`
}
