package issues

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db/models"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/pagination"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

// Category selects which issue bucket a paginated read serves.
type Category string

// Issue categories served by the pagination endpoints.
const (
	CategoryAll           Category = "all"
	CategoryRanking       Category = "ranking"
	CategoryConversion    Category = "conversion"
	CategoryInventory     Category = "inventory"
	CategoryProfitability Category = "profitability"
	CategorySponsoredAds  Category = "sponsoredAds"
)

// Priority filters by combined error count.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Item is one enriched issue row: the per-category detail joined with the
// product metadata for its ASIN.
type Item struct {
	ASIN    string  `json:"asin"`
	Name    string  `json:"name"`
	SKU     string  `json:"sku"`
	Price   float64 `json:"price"`
	Errors  int     `json:"errors"`
	Details any     `json:"details,omitempty"`
}

// Query are the read-side parameters for one paginated issues request.
type Query struct {
	Category Category
	Search   string
	Priority string
	SortBy   string
	SortDir  string
	Page     pagination.Params
}

// Page is one paginated slice plus its metadata.
type Page struct {
	Data       []Item          `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}

// DataReader reads the cached payload row for a seller key.
type DataReader interface {
	FindData(ctx context.Context, key types.SellerKey) (*models.IssuesData, error)
}

// DataCalculator recomputes and stores the payload on a cache miss.
type DataCalculator interface {
	CalculateAndStore(ctx context.Context, key types.SellerKey, source string) OpResult[*models.IssuesData]
}

// PaginationService serves filtered slices of the cached aggregate without
// re-running the aggregation. A cache miss triggers one synchronous
// recalculation before the read is retried.
type PaginationService struct {
	repo DataReader
	data DataCalculator
	log  *logger.Logger
}

// NewPaginationService builds the read-side service.
func NewPaginationService(repo DataReader, data DataCalculator, log *logger.Logger) *PaginationService {
	return &PaginationService{repo: repo, data: data, log: log}
}

// List reads the cached payload for the key and serves one page of the
// requested category.
func (s *PaginationService) List(ctx context.Context, key types.SellerKey, q Query) (*Page, error) {
	payload, err := s.loadPayload(ctx, key)
	if err != nil {
		return nil, err
	}

	items := itemsForCategory(payload, q.Category)
	items = applySearch(items, q.Search)
	items = applyPriority(items, q.Priority)
	sortItems(items, q.SortBy, q.SortDir)

	start, end := pagination.Bounds(q.Page, len(items))
	return &Page{
		Data:       items[start:end],
		Pagination: pagination.MetaFor(q.Page, len(items)),
	}, nil
}

// loadPayload reads the cached dashboard payload, computing it once on a
// miss. A concurrent in-flight computation is waited out by simply
// re-reading; if the retry still finds nothing the miss is surfaced.
func (s *PaginationService) loadPayload(ctx context.Context, key types.SellerKey) (*dashboard.Data, error) {
	row, err := s.repo.FindData(ctx, key)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "issues data read failed")
	}
	if row == nil {
		res := s.data.CalculateAndStore(ctx, key, models.CalculationSourceAPI)
		if !res.Success && !errors.Is(res.Err, ErrCalculationInFlight) {
			return nil, res.Err
		}
		row, err = s.repo.FindData(ctx, key)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "issues data read failed")
		}
		if row == nil {
			return nil, errors.New(errors.CodeNotFound, "no issues data for this seller marketplace")
		}
	}

	var payload dashboard.Data
	if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "cached payload is not decodable")
	}
	return &payload, nil
}

// itemsForCategory projects one issue bucket into enriched rows. Duplicate
// ASINs keep their first occurrence.
func itemsForCategory(data *dashboard.Data, category Category) []Item {
	meta := make(map[string]struct {
		name, sku string
		price     float64
	}, len(data.TotalProducts))
	for _, p := range data.TotalProducts {
		if _, ok := meta[p.ASIN]; !ok {
			meta[p.ASIN] = struct {
				name, sku string
				price     float64
			}{p.ItemName, p.SKU, p.Price}
		}
	}

	errorCounts := make(map[string]int, len(data.ProductWiseError))
	for _, pe := range data.ProductWiseError {
		if _, ok := errorCounts[pe.ASIN]; !ok {
			errorCounts[pe.ASIN] = pe.Errors
		}
	}

	enrich := func(asin string, errorsCount int, details any) Item {
		m := meta[asin]
		return Item{
			ASIN:    asin,
			Name:    m.name,
			SKU:     m.sku,
			Price:   m.price,
			Errors:  errorsCount,
			Details: details,
		}
	}

	var items []Item
	seen := make(map[string]bool)
	add := func(asin string, errorsCount int, details any) {
		if asin == "" || seen[asin] {
			return
		}
		seen[asin] = true
		items = append(items, enrich(asin, errorsCount, details))
	}

	switch category {
	case CategoryRanking:
		for i := range data.RankingProductWiseErrors {
			re := &data.RankingProductWiseErrors[i]
			add(re.ASIN, errorCounts[re.ASIN], re)
		}
	case CategoryConversion:
		for i := range data.ConversionProductWiseErrors {
			ce := &data.ConversionProductWiseErrors[i]
			add(ce.ASIN, errorCounts[ce.ASIN], ce)
		}
	case CategoryInventory:
		for i := range data.InventoryProductWiseErrors {
			ie := &data.InventoryProductWiseErrors[i]
			add(ie.ASIN, errorCounts[ie.ASIN], ie)
		}
	case CategoryProfitability:
		for i := range data.ProfitabilityErrors {
			pe := &data.ProfitabilityErrors[i]
			add(pe.ASIN, errorCounts[pe.ASIN], pe)
		}
	case CategorySponsoredAds:
		for i := range data.SponsoredAdsErrors {
			se := &data.SponsoredAdsErrors[i]
			add(se.ASIN, errorCounts[se.ASIN], se)
		}
	default:
		for _, pe := range data.ProductWiseError {
			add(pe.ASIN, pe.Errors, nil)
		}
	}
	return items
}

func applySearch(items []Item, search string) []Item {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return items
	}
	out := items[:0:0]
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), search) ||
			strings.Contains(strings.ToLower(item.ASIN), search) ||
			strings.Contains(strings.ToLower(item.SKU), search) {
			out = append(out, item)
		}
	}
	return out
}

func applyPriority(items []Item, priority string) []Item {
	if priority == "" {
		return items
	}
	out := items[:0:0]
	for _, item := range items {
		switch priority {
		case PriorityHigh:
			if item.Errors >= 5 {
				out = append(out, item)
			}
		case PriorityMedium:
			if item.Errors >= 2 && item.Errors <= 4 {
				out = append(out, item)
			}
		case PriorityLow:
			if item.Errors == 1 {
				out = append(out, item)
			}
		default:
			out = append(out, item)
		}
	}
	return out
}

func sortItems(items []Item, sortBy, dir string) {
	mult := 1
	if strings.EqualFold(dir, "desc") {
		mult = -1
	}
	less := func(a, b Item) int {
		switch sortBy {
		case "name":
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case "asin":
			return strings.Compare(a.ASIN, b.ASIN)
		case "price":
			switch {
			case a.Price < b.Price:
				return -1
			case a.Price > b.Price:
				return 1
			}
			return 0
		default:
			return a.Errors - b.Errors
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])*mult < 0
	})
}
