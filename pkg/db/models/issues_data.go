package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db/types"
)

// IssuesData caches the full aggregated dashboard payload for one seller
// marketplace as a JSONB document. One row per (seller_id, country, region).
type IssuesData struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	Country  string    `gorm:"column:country;not null"`
	Region   string    `gorm:"column:region;not null"`

	Payload types.JSONB `gorm:"column:payload;type:jsonb;not null"`

	LastCalculatedAt  time.Time `gorm:"column:last_calculated_at;not null"`
	IsStale           bool      `gorm:"column:is_stale;not null;default:false"`
	CalculationSource string    `gorm:"column:calculation_source;not null;default:'api'"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (IssuesData) TableName() string { return "issues_data" }
