package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product statuses persisted on seller_products.
const (
	ProductStatusActive   = "Active"
	ProductStatusInactive = "Inactive"
)

// SellerProduct is one catalog entry for a seller marketplace, carrying the
// cached per-product issue count.
type SellerProduct struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	Country  string    `gorm:"column:country;not null"`
	Region   string    `gorm:"column:region;not null"`

	ASIN     string          `gorm:"column:asin;not null"`
	SKU      *string         `gorm:"column:sku"`
	ItemName *string         `gorm:"column:item_name"`
	Price    decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	Status   string          `gorm:"column:status;not null;default:'Inactive'"`

	IssueCount          int        `gorm:"column:issue_count;not null;default:0"`
	IssueCountUpdatedAt *time.Time `gorm:"column:issue_count_updated_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (SellerProduct) TableName() string { return "seller_products" }
