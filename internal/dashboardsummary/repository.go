package dashboardsummary

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db/models"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

var sellerKeyColumns = []clause.Column{
	{Name: "seller_id"}, {Name: "country"}, {Name: "region"},
}

// Repository persists and reads the summary metric tables used by the
// phased dashboard loaders.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertFinancial overwrites the financial summary for the row's seller key.
func (r *Repository) UpsertFinancial(ctx context.Context, row *models.FinancialSummary) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: sellerKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{
			"gross_revenue", "units_sold", "ad_spend", "amazon_fees",
			"gross_profit", "profit_margin", "last_calculated_at", "updated_at",
		}),
	}).Create(row).Error
}

// UpsertPPC overwrites the advertising summary for the row's seller key.
func (r *Repository) UpsertPPC(ctx context.Context, row *models.PPCSummary) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: sellerKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{
			"spend", "sales", "acos", "keyword_waste",
			"products_with_errors", "last_calculated_at", "updated_at",
		}),
	}).Create(row).Error
}

// UpsertAccountHealth overwrites the account health record for the row's
// seller key.
func (r *Repository) UpsertAccountHealth(ctx context.Context, row *models.AccountHealthRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: sellerKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "percentage", "total_errors", "checks",
			"last_calculated_at", "updated_at",
		}),
	}).Create(row).Error
}

// FindFinancial returns the cached financial summary, or nil when none
// exists.
func (r *Repository) FindFinancial(ctx context.Context, key types.SellerKey) (*models.FinancialSummary, error) {
	var row models.FinancialSummary
	err := r.keyScope(ctx, key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindPPC returns the cached advertising summary, or nil when none exists.
func (r *Repository) FindPPC(ctx context.Context, key types.SellerKey) (*models.PPCSummary, error) {
	var row models.PPCSummary
	err := r.keyScope(ctx, key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindAccountHealth returns the cached health record, or nil when none
// exists.
func (r *Repository) FindAccountHealth(ctx context.Context, key types.SellerKey) (*models.AccountHealthRecord, error) {
	var row models.AccountHealthRecord
	err := r.keyScope(ctx, key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) keyScope(ctx context.Context, key types.SellerKey) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("seller_id = ? AND country = ? AND region = ?", key.SellerID, key.Country, key.Region)
}
