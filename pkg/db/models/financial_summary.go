package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialSummary caches the rolled-up financial position for one seller
// marketplace, read by the phased dashboard loaders.
type FinancialSummary struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	Country  string    `gorm:"column:country;not null"`
	Region   string    `gorm:"column:region;not null"`

	GrossRevenue decimal.Decimal `gorm:"column:gross_revenue;type:numeric(14,2);not null;default:0"`
	UnitsSold    int             `gorm:"column:units_sold;not null;default:0"`
	AdSpend      decimal.Decimal `gorm:"column:ad_spend;type:numeric(14,2);not null;default:0"`
	AmazonFees   decimal.Decimal `gorm:"column:amazon_fees;type:numeric(14,2);not null;default:0"`
	GrossProfit  decimal.Decimal `gorm:"column:gross_profit;type:numeric(14,2);not null;default:0"`
	ProfitMargin decimal.Decimal `gorm:"column:profit_margin;type:numeric(7,2);not null;default:0"`

	LastCalculatedAt time.Time `gorm:"column:last_calculated_at;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (FinancialSummary) TableName() string { return "financial_summaries" }
