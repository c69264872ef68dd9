package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db/types"
)

// AccountHealthRecord caches the scored account health for one seller
// marketplace, with the full check breakdown in a JSONB column.
type AccountHealthRecord struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	Country  string    `gorm:"column:country;not null"`
	Region   string    `gorm:"column:region;not null"`

	Status      string      `gorm:"column:status;not null;default:'Data Not Available'"`
	Percentage  int         `gorm:"column:percentage;not null;default:0"`
	TotalErrors int         `gorm:"column:total_errors;not null;default:0"`
	Checks      types.JSONB `gorm:"column:checks;type:jsonb;not null"`

	LastCalculatedAt time.Time `gorm:"column:last_calculated_at;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (AccountHealthRecord) TableName() string { return "account_health_records" }
