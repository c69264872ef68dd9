package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/EstoreFactory109/SellerQI-sub007/api/middleware"
	"github.com/EstoreFactory109/SellerQI-sub007/api/responses"
	"github.com/EstoreFactory109/SellerQI-sub007/api/validators"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/issues"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db/models"
	pkgerrors "github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/pagination"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

const (
	maxSearchLen = 120
	maxPage      = 1 << 16
)

// SummaryReader serves the cached per-category issue counts.
type SummaryReader interface {
	Get(ctx context.Context, key types.SellerKey) (*models.IssueSummary, error)
}

// IssuesLister serves one paginated issue category.
type IssuesLister interface {
	List(ctx context.Context, key types.SellerKey, q issues.Query) (*issues.Page, error)
}

// ProductLister serves the per-product issue counts.
type ProductLister interface {
	ListProducts(ctx context.Context, key types.SellerKey) ([]models.SellerProduct, error)
}

type issueSummaryResponse struct {
	RankingIssues       int       `json:"rankingIssues"`
	ConversionIssues    int       `json:"conversionIssues"`
	InventoryIssues     int       `json:"inventoryIssues"`
	AccountIssues       int       `json:"accountIssues"`
	ProfitabilityIssues int       `json:"profitabilityIssues"`
	SponsoredAdsIssues  int       `json:"sponsoredAdsIssues"`
	TotalIssues         int       `json:"totalIssues"`
	TotalProducts       int       `json:"totalProducts"`
	ActiveProducts      int       `json:"activeProducts"`
	ProductsWithIssues  int       `json:"productsWithIssues"`
	LastCalculatedAt    time.Time `json:"lastCalculatedAt"`
	CalculationSource   string    `json:"calculationSource"`
	IsStale             bool      `json:"isStale"`
}

// IssuesSummary returns the cached issue counts for one seller marketplace,
// computing them on first access.
func IssuesSummary(svc SummaryReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := middleware.SellerKeyFromContext(r.Context())
		row, err := svc.Get(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, issueSummaryResponse{
			RankingIssues:       row.RankingIssues,
			ConversionIssues:    row.ConversionIssues,
			InventoryIssues:     row.InventoryIssues,
			AccountIssues:       row.AccountIssues,
			ProfitabilityIssues: row.ProfitabilityIssues,
			SponsoredAdsIssues:  row.SponsoredAdsIssues,
			TotalIssues:         row.TotalIssues,
			TotalProducts:       row.TotalProducts,
			ActiveProducts:      row.ActiveProducts,
			ProductsWithIssues:  row.ProductsWithIssues,
			LastCalculatedAt:    row.LastCalculatedAt,
			CalculationSource:   row.CalculationSource,
			IsStale:             row.IsStale,
		})
	}
}

var validCategories = map[issues.Category]struct{}{
	issues.CategoryAll:           {},
	issues.CategoryRanking:       {},
	issues.CategoryConversion:    {},
	issues.CategoryInventory:     {},
	issues.CategoryProfitability: {},
	issues.CategorySponsoredAds:  {},
}

var validPriorities = map[string]struct{}{
	"":                    {},
	issues.PriorityHigh:   {},
	issues.PriorityMedium: {},
	issues.PriorityLow:    {},
}

// IssuesByCategory returns one paginated, filterable issue bucket.
func IssuesByCategory(svc IssuesLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := middleware.SellerKeyFromContext(r.Context())

		q, err := parseIssuesQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), key, q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseIssuesQuery(r *http.Request) (issues.Query, error) {
	category := issues.Category(strings.TrimSpace(r.URL.Query().Get("category")))
	if category == "" {
		category = issues.CategoryAll
	}
	if _, ok := validCategories[category]; !ok {
		return issues.Query{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown issue category").
			WithDetails(map[string]any{"field": "category"})
	}

	priority := strings.TrimSpace(r.URL.Query().Get("priority"))
	if _, ok := validPriorities[priority]; !ok {
		return issues.Query{}, pkgerrors.New(pkgerrors.CodeValidation, "priority must be high, medium or low").
			WithDetails(map[string]any{"field": "priority"})
	}

	page, err := validators.ParseQueryInt(r, "page", 1, 1, maxPage)
	if err != nil {
		return issues.Query{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return issues.Query{}, err
	}

	return issues.Query{
		Category: category,
		Search:   validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLen),
		Priority: priority,
		SortBy:   strings.TrimSpace(r.URL.Query().Get("sortBy")),
		SortDir:  strings.TrimSpace(r.URL.Query().Get("sortDir")),
		Page:     pagination.Params{Page: page, Limit: limit},
	}, nil
}

type productIssuesResponse struct {
	ASIN                string     `json:"asin"`
	SKU                 *string    `json:"sku,omitempty"`
	Name                *string    `json:"name,omitempty"`
	Status              string     `json:"status"`
	IssueCount          int        `json:"issueCount"`
	IssueCountUpdatedAt *time.Time `json:"issueCountUpdatedAt,omitempty"`
}

// IssuesByProduct returns the per-product issue counts, ASIN ascending.
func IssuesByProduct(repo ProductLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := middleware.SellerKeyFromContext(r.Context())
		rows, err := repo.ListProducts(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seller products read failed"))
			return
		}

		out := make([]productIssuesResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, productIssuesResponse{
				ASIN:                row.ASIN,
				SKU:                 row.SKU,
				Name:                row.ItemName,
				Status:              row.Status,
				IssueCount:          row.IssueCount,
				IssueCountUpdatedAt: row.IssueCountUpdatedAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}
