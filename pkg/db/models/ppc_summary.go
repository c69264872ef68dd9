package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PPCSummary caches the rolled-up advertising position for one seller
// marketplace.
type PPCSummary struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	Country  string    `gorm:"column:country;not null"`
	Region   string    `gorm:"column:region;not null"`

	Spend decimal.Decimal `gorm:"column:spend;type:numeric(14,2);not null;default:0"`
	Sales decimal.Decimal `gorm:"column:sales;type:numeric(14,2);not null;default:0"`
	ACOS  decimal.Decimal `gorm:"column:acos;type:numeric(7,2);not null;default:0"`

	// Spend attributed to keywords flagged as wasteful.
	KeywordWaste       decimal.Decimal `gorm:"column:keyword_waste;type:numeric(14,2);not null;default:0"`
	ProductsWithErrors int             `gorm:"column:products_with_errors;not null;default:0"`

	LastCalculatedAt time.Time `gorm:"column:last_calculated_at;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (PPCSummary) TableName() string { return "ppc_summaries" }
