package models

import (
	"time"

	"github.com/google/uuid"
)

// Calculation sources recorded on the cache rows.
const (
	CalculationSourceAPI       = "api"
	CalculationSourceWorker    = "worker"
	CalculationSourceCron      = "cron"
	CalculationSourceMigration = "migration"
)

// IssueSummary caches the per-category issue counts for one seller
// marketplace. One row per (seller_id, country, region), overwritten
// wholesale on each recalculation.
type IssueSummary struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	Country  string    `gorm:"column:country;not null"`
	Region   string    `gorm:"column:region;not null"`

	TotalIssues         int `gorm:"column:total_issues;not null;default:0"`
	RankingIssues       int `gorm:"column:ranking_issues;not null;default:0"`
	ConversionIssues    int `gorm:"column:conversion_issues;not null;default:0"`
	InventoryIssues     int `gorm:"column:inventory_issues;not null;default:0"`
	AccountIssues       int `gorm:"column:account_issues;not null;default:0"`
	ProfitabilityIssues int `gorm:"column:profitability_issues;not null;default:0"`
	SponsoredAdsIssues  int `gorm:"column:sponsored_ads_issues;not null;default:0"`

	TotalProducts      int `gorm:"column:total_products;not null;default:0"`
	ActiveProducts     int `gorm:"column:active_products;not null;default:0"`
	ProductsWithIssues int `gorm:"column:products_with_issues;not null;default:0"`

	LastCalculatedAt  time.Time `gorm:"column:last_calculated_at;not null"`
	IsStale           bool      `gorm:"column:is_stale;not null;default:false"`
	CalculationSource string    `gorm:"column:calculation_source;not null;default:'api'"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (IssueSummary) TableName() string { return "issue_summaries" }
