package issues

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db/models"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

// sellerKeyColumns is the unique key every cache table shares.
var sellerKeyColumns = []clause.Column{
	{Name: "seller_id"}, {Name: "country"}, {Name: "region"},
}

// Repository persists the issue caches and the per-product issue counts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertSummary overwrites the cached summary for the row's seller key.
func (r *Repository) UpsertSummary(ctx context.Context, row *models.IssueSummary) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: sellerKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{
			"total_issues", "ranking_issues", "conversion_issues",
			"inventory_issues", "account_issues", "profitability_issues",
			"sponsored_ads_issues", "total_products", "active_products",
			"products_with_issues", "last_calculated_at", "is_stale",
			"calculation_source", "updated_at",
		}),
	}).Create(row).Error
}

// UpsertData overwrites the cached dashboard payload for the row's seller key.
func (r *Repository) UpsertData(ctx context.Context, row *models.IssuesData) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: sellerKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{
			"payload", "last_calculated_at", "is_stale",
			"calculation_source", "updated_at",
		}),
	}).Create(row).Error
}

// FindSummary returns the cached summary, or nil when none exists.
func (r *Repository) FindSummary(ctx context.Context, key types.SellerKey) (*models.IssueSummary, error) {
	var row models.IssueSummary
	err := r.keyScope(ctx, key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindData returns the cached dashboard payload, or nil when none exists.
func (r *Repository) FindData(ctx context.Context, key types.SellerKey) (*models.IssuesData, error) {
	var row models.IssuesData
	err := r.keyScope(ctx, key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkStale flags both caches for the key so the next recalculation pass
// picks them up.
func (r *Repository) MarkStale(ctx context.Context, key types.SellerKey) error {
	for _, model := range []any{&models.IssueSummary{}, &models.IssuesData{}} {
		err := r.db.WithContext(ctx).Model(model).
			Where("seller_id = ? AND country = ? AND region = ?", key.SellerID, key.Country, key.Region).
			Update("is_stale", true).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// ListStaleKeys returns seller keys whose cached payload is flagged stale,
// oldest first.
func (r *Repository) ListStaleKeys(ctx context.Context, limit int) ([]types.SellerKey, error) {
	var rows []models.IssuesData
	err := r.db.WithContext(ctx).Model(&models.IssuesData{}).
		Where("is_stale = ?", true).
		Order("last_calculated_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	keys := make([]types.SellerKey, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, types.SellerKey{SellerID: row.SellerID, Country: row.Country, Region: row.Region})
	}
	return keys, nil
}

// ListProducts returns every catalog entry for the seller marketplace.
func (r *Repository) ListProducts(ctx context.Context, key types.SellerKey) ([]models.SellerProduct, error) {
	var rows []models.SellerProduct
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND country = ? AND region = ?", key.SellerID, key.Country, key.Region).
		Order("asin ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateProductIssueCounts writes the computed per-ASIN counts onto the
// seller's products, touching only rows whose stored count differs. Returns
// the number of products updated.
func (r *Repository) UpdateProductIssueCounts(ctx context.Context, key types.SellerKey, counts map[string]int, now time.Time) (int, error) {
	updated := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for asin, count := range counts {
			res := tx.Model(&models.SellerProduct{}).
				Where("seller_id = ? AND country = ? AND region = ? AND asin = ? AND issue_count <> ?",
					key.SellerID, key.Country, key.Region, asin, count).
				Updates(map[string]any{
					"issue_count":            count,
					"issue_count_updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			updated += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (r *Repository) keyScope(ctx context.Context, key types.SellerKey) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("seller_id = ? AND country = ? AND region = ?", key.SellerID, key.Country, key.Region)
}
