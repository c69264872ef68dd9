package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/accounthealth"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/profitability"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/metrics"
)

const maxTopProductNameLen = 50

// TaskNotifier receives the computed error arrays after an aggregation so
// follow-up work items can be created. Implementations must be safe for
// concurrent use.
type TaskNotifier interface {
	CreateIssueTasks(ctx context.Context, sellerID string, data *Data) error
}

// Analyser turns a raw integration snapshot into the aggregated dashboard
// payload. The computation itself is pure; the only side effect is the
// optional fire-and-forget task notification.
type Analyser struct {
	log      *logger.Logger
	metrics  *metrics.CalculationMetrics
	notifier TaskNotifier
}

// NewAnalyser builds an Analyser. notifier may be nil, in which case the
// task side effect is skipped.
func NewAnalyser(log *logger.Logger, calcMetrics *metrics.CalculationMetrics, notifier TaskNotifier) *Analyser {
	return &Analyser{log: log, metrics: calcMetrics, notifier: notifier}
}

// aggCtx carries the active-product universe and the filtered snapshot
// through the pipeline steps.
type aggCtx struct {
	snap *snapshot.Snapshot

	activeProducts []string
	activeSet      map[string]bool
	titles         map[string]string

	sales     []snapshot.SaleRecord
	ads       []snapshot.AdRecord
	fbaData   []snapshot.FBARecord
	fbaFees   []snapshot.FeeRecord
	economics map[string]snapshot.EconomicsEntry
	inventory *snapshot.InventoryAnalysis
}

// Analyse runs the full aggregation. sellerID is optional; when present the
// computed error arrays are handed to the task notifier after assembly.
// Analyse never returns an error: malformed or absent sections degrade to
// empty results, recorded in Data.Degraded.
func (a *Analyser) Analyse(ctx context.Context, snap *snapshot.Snapshot, sellerID string) *Data {
	start := time.Now()
	snap = snap.Normalize()

	data := a.analyse(ctx, snap)

	if a.metrics != nil {
		a.metrics.ObserveDuration("dashboard", time.Since(start))
		a.metrics.IncSuccess("dashboard")
	}

	if sellerID != "" && a.notifier != nil {
		a.notifyTasks(ctx, sellerID, data)
	}
	return data
}

func (a *Analyser) analyse(ctx context.Context, snap *snapshot.Snapshot) *Data {
	data := &Data{
		Country:                     snap.Country,
		StartDate:                   snap.StartDate,
		EndDate:                     snap.EndDate,
		TotalProducts:               snap.TotalProducts,
		ActiveProducts:              []string{},
		Profitability:               []profitability.Record{},
		ProductWiseError:            []ProductError{},
		RankingProductWiseErrors:    []RankingError{},
		InventoryProductWiseErrors:  []InventoryError{},
		ConversionProductWiseErrors: []ConversionError{},
		ProfitabilityErrors:         []ProfitabilityError{},
		SponsoredAdsErrors:          []SponsoredAdsError{},
		NegativeKeywordErrors:       []NegativeKeywordError{},
		Keywords:                    snap.AdsKeywordsPerformance,
		SearchTerms:                 snap.SearchTerms,
		CampaignData:                snap.CampaignData,
		FinanceData:                 snap.FinanceData,
		DateWiseCosts:               []DateCost{},
		CampaignWiseCosts:           []CampaignCost{},
	}

	data.AccountHealth = runStep(ctx, a, data, "accountHealth", func() accounthealth.Result {
		return accounthealth.CalculatePercentage(snap.AccountData.HealthPercentage)
	})
	data.AccountErrors = runStep(ctx, a, data, "accountErrors", func() *accounthealth.ErrorMap {
		return accounthealth.CheckAccountHealth(snap.AccountData.HealthV2, snap.AccountData.HealthV1)
	})

	if !snap.HasData() {
		return data
	}

	agg := buildAggCtx(snap)
	data.ActiveProducts = agg.activeProducts

	data.Profitability = runStep(ctx, a, data, "profitability", func() []profitability.Record {
		return profitability.Compute(agg.sales, agg.ads, agg.fbaData, agg.fbaFees, agg.economics)
	})
	data.AdsSummary = runStep(ctx, a, data, "adsSummary", func() AdsSummary {
		return summarizeAds(agg.ads)
	})
	data.NegativeKeywordErrors = runStep(ctx, a, data, "negativeKeywords", func() []NegativeKeywordError {
		return deriveNegativeKeywordErrors(snap.NegativeKeywords)
	})

	fanInProductErrors(agg, data)
	applyBackendKeywords(agg, data)
	computeTopFour(agg, data)

	data.ProfitabilityErrors = runStep(ctx, a, data, "profitabilityErrors", func() []ProfitabilityError {
		return deriveProfitabilityErrors(agg.sales, agg.ads, agg.fbaData, agg.fbaFees)
	})
	data.SponsoredAdsErrors = runStep(ctx, a, data, "sponsoredAdsErrors", func() []SponsoredAdsError {
		return deriveSponsoredAdsErrors(agg.ads)
	})

	data.DateWiseCosts = runStep(ctx, a, data, "dateWiseCosts", func() []DateCost {
		return CalculateDateWiseTotalCosts(snap.DateWisePPCSpend)
	})
	data.CampaignWiseCosts = runStep(ctx, a, data, "campaignWiseCosts", func() []CampaignCost {
		return CalculateCampaignWiseTotalSalesAndCost(snap.DateWisePPCSpend)
	})

	ensureNonNil(data)
	return data
}

// runStep isolates one sub-calculation: a panic degrades to the zero value
// and is recorded instead of aborting the whole aggregation.
func runStep[T any](ctx context.Context, a *Analyser, data *Data, name string, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			if a.log != nil {
				a.log.Error(ctx, "dashboard sub-calculation degraded", fmt.Errorf("%s: %v", name, r))
			}
			if a.metrics != nil {
				a.metrics.IncDegraded(name)
			}
			data.Degraded = append(data.Degraded, name)
			var zero T
			out = zero
		}
	}()
	return fn()
}

func (a *Analyser) notifyTasks(ctx context.Context, sellerID string, data *Data) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil && a.log != nil {
				a.log.Error(ctx, "task notification panicked", fmt.Errorf("%v", r))
			}
		}()
		if err := a.notifier.CreateIssueTasks(ctx, sellerID, data); err != nil && a.log != nil {
			a.log.Error(ctx, "task notification failed", err)
		}
	}()
}

func buildAggCtx(snap *snapshot.Snapshot) *aggCtx {
	agg := &aggCtx{
		snap:      snap,
		activeSet: make(map[string]bool),
		titles:    make(map[string]string),
	}
	for _, p := range snap.TotalProducts {
		if p.Status != snapshot.StatusActive || p.ASIN == "" {
			continue
		}
		if !agg.activeSet[p.ASIN] {
			agg.activeSet[p.ASIN] = true
			agg.activeProducts = append(agg.activeProducts, p.ASIN)
		}
		if agg.titles[p.ASIN] == "" {
			agg.titles[p.ASIN] = p.ItemName
		}
	}
	if agg.activeProducts == nil {
		agg.activeProducts = []string{}
	}

	for _, row := range snap.SalesByProducts {
		if agg.activeSet[row.ASIN] {
			agg.sales = append(agg.sales, row)
		}
	}
	for _, row := range snap.ProductWiseSponsoredAds {
		if agg.activeSet[row.ASIN] {
			agg.ads = append(agg.ads, row)
		}
	}
	for _, row := range snap.FBAData {
		if agg.activeSet[row.ASIN] {
			agg.fbaData = append(agg.fbaData, row)
		}
	}
	for _, row := range snap.FBAFees {
		if agg.activeSet[row.ASIN] {
			agg.fbaFees = append(agg.fbaFees, row)
		}
	}
	if len(snap.EconomicsByASIN) > 0 {
		agg.economics = make(map[string]snapshot.EconomicsEntry, len(snap.EconomicsByASIN))
		for asin, entry := range snap.EconomicsByASIN {
			if agg.activeSet[asin] {
				agg.economics[asin] = entry
			}
		}
	}

	inv := snap.InventoryAnalysis
	agg.inventory = &snapshot.InventoryAnalysis{
		InventoryPlanning:    filterInventory(inv.InventoryPlanning, agg.activeSet),
		StrandedInventory:    filterInventory(inv.StrandedInventory, agg.activeSet),
		InboundNonCompliance: filterInventory(inv.InboundNonCompliance, agg.activeSet),
		Replenishment:        filterInventory(inv.Replenishment, agg.activeSet),
	}
	return agg
}

func filterInventory(issues []snapshot.InventoryIssue, active map[string]bool) []snapshot.InventoryIssue {
	var out []snapshot.InventoryIssue
	for _, issue := range issues {
		if active[issue.ASIN] {
			out = append(out, issue)
		}
	}
	return out
}

// fanInProductErrors walks the ranking results, deduplicated by first
// occurrence and restricted to active products, and folds the conversion,
// inventory and ranking error counts into one productWiseError entry per
// ASIN. Active products without ranking data get a second pass so inventory
// issues are never dropped.
func fanInProductErrors(agg *aggCtx, data *Data) {
	seen := make(map[string]bool)
	for _, r := range agg.snap.RankingsData.RankingResultArray {
		if !agg.activeSet[r.ASIN] || seen[r.ASIN] {
			continue
		}
		seen[r.ASIN] = true

		conv := conversionBundle(agg, r.ASIN)
		inv := inventoryBundle(agg, r.ASIN)

		data.ProductWiseError = append(data.ProductWiseError, ProductError{
			ASIN:   r.ASIN,
			Errors: conv.TotalErrors + inv.TotalErrors + r.NumberOfErrors,
		})

		entry := RankingError{ASIN: r.ASIN, Title: r.Title}
		if entry.Title == "" {
			entry.Title = agg.titles[r.ASIN]
		}
		if r.NumberOfErrors > 0 {
			entry.NumberOfErrors = r.NumberOfErrors
			entry.Checks = r.Checks
		}
		data.RankingProductWiseErrors = append(data.RankingProductWiseErrors, entry)

		if inv.TotalErrors > 0 {
			data.InventoryProductWiseErrors = append(data.InventoryProductWiseErrors, inv)
		}
		if conv.TotalErrors > 0 {
			data.ConversionProductWiseErrors = append(data.ConversionProductWiseErrors, conv)
		}
	}

	// Second pass: active products the ranking checker never saw.
	for _, asin := range agg.activeProducts {
		if seen[asin] {
			continue
		}
		inv := inventoryBundle(agg, asin)
		if inv.TotalErrors == 0 {
			continue
		}
		data.ProductWiseError = append(data.ProductWiseError, ProductError{
			ASIN:   asin,
			Errors: inv.TotalErrors,
		})
		data.InventoryProductWiseErrors = append(data.InventoryProductWiseErrors, inv)
	}
}

func conversionBundle(agg *aggCtx, asin string) ConversionError {
	conv := ConversionError{ASIN: asin}
	cd := agg.snap.ConversionData

	pick := func(checks []snapshot.ConversionCheck) *snapshot.ConversionCheck {
		for i := range checks {
			if checks[i].ASIN == asin && checks[i].Status == snapshot.StatusError {
				return &checks[i]
			}
		}
		return nil
	}

	if c := pick(cd.APlusResult); c != nil {
		conv.APlus = c
		conv.TotalErrors++
	}
	if c := pick(cd.ImageResult); c != nil {
		conv.Image = c
		conv.TotalErrors++
	}
	if c := pick(cd.VideoResult); c != nil {
		conv.Video = c
		conv.TotalErrors++
	}
	if c := pick(cd.ProductReviewResult); c != nil {
		conv.ProductReview = c
		conv.TotalErrors++
	}
	if c := pick(cd.ProductStarRatingResult); c != nil {
		conv.StarRating = c
		conv.TotalErrors++
	}
	for _, b := range cd.ProductsWithoutBuybox {
		if b.ASIN == asin {
			conv.BuyboxMissing = true
			conv.TotalErrors++
			break
		}
	}
	return conv
}

func inventoryBundle(agg *aggCtx, asin string) InventoryError {
	inv := InventoryError{ASIN: asin}

	match := func(issues []snapshot.InventoryIssue) []snapshot.InventoryIssue {
		var out []snapshot.InventoryIssue
		for _, issue := range issues {
			if issue.ASIN == asin {
				out = append(out, issue)
			}
		}
		return out
	}

	inv.InventoryPlanning = match(agg.inventory.InventoryPlanning)
	inv.StrandedInventory = match(agg.inventory.StrandedInventory)
	inv.InboundNonCompliance = match(agg.inventory.InboundNonCompliance)
	inv.Replenishment = match(agg.inventory.Replenishment)
	inv.TotalErrors = len(inv.InventoryPlanning) + len(inv.StrandedInventory) +
		len(inv.InboundNonCompliance) + len(inv.Replenishment)
	return inv
}

// applyBackendKeywords folds the backend keyword checker output into the
// per-product counts and backfills the keyword check fields onto the ranking
// entries.
func applyBackendKeywords(agg *aggCtx, data *Data) {
	for i := range agg.snap.RankingsData.BackendKeywordResultArray {
		bk := &agg.snap.RankingsData.BackendKeywordResultArray[i]
		if !agg.activeSet[bk.ASIN] || bk.NumberOfErrors <= 0 {
			continue
		}

		found := false
		for j := range data.ProductWiseError {
			if data.ProductWiseError[j].ASIN == bk.ASIN {
				data.ProductWiseError[j].Errors += bk.NumberOfErrors
				found = true
				break
			}
		}
		if !found {
			data.ProductWiseError = append(data.ProductWiseError, ProductError{
				ASIN:   bk.ASIN,
				Errors: bk.NumberOfErrors,
			})
		}

		backfilled := false
		for j := range data.RankingProductWiseErrors {
			if data.RankingProductWiseErrors[j].ASIN == bk.ASIN {
				data.RankingProductWiseErrors[j].CharLim = bk.CharLim
				data.RankingProductWiseErrors[j].DuplicateWords = bk.DuplicateWords
				backfilled = true
				break
			}
		}
		if !backfilled {
			data.RankingProductWiseErrors = append(data.RankingProductWiseErrors, RankingError{
				ASIN:           bk.ASIN,
				Title:          agg.titles[bk.ASIN],
				CharLim:        bk.CharLim,
				DuplicateWords: bk.DuplicateWords,
			})
		}
	}
}

// computeTopFour picks the four worst products by error count. The
// backend-keyword bump below deliberately mutates the already-selected
// slots without re-sorting, so a bumped slot can end up out of order
// relative to the fifth place.
func computeTopFour(agg *aggCtx, data *Data) {
	deduped := make([]ProductError, 0, len(data.ProductWiseError))
	seen := make(map[string]bool)
	for _, pe := range data.ProductWiseError {
		if seen[pe.ASIN] {
			continue
		}
		seen[pe.ASIN] = true
		deduped = append(deduped, pe)
	}
	sort.SliceStable(deduped, func(i, j int) bool { return deduped[i].Errors > deduped[j].Errors })

	slots := make([]*TopProduct, 0, 4)
	for i := 0; i < len(deduped) && i < 4; i++ {
		name := agg.titles[deduped[i].ASIN]
		if runes := []rune(name); len(runes) > maxTopProductNameLen {
			name = string(runes[:maxTopProductNameLen])
		}
		slots = append(slots, &TopProduct{
			ASIN:   deduped[i].ASIN,
			Name:   name,
			Errors: deduped[i].Errors,
		})
	}

	for _, bk := range agg.snap.RankingsData.BackendKeywordResultArray {
		if bk.NumberOfErrors != 1 || !agg.activeSet[bk.ASIN] {
			continue
		}
		for _, slot := range slots {
			if slot.ASIN == bk.ASIN {
				slot.Errors++
				break
			}
		}
	}

	assign := []**TopProduct{&data.First, &data.Second, &data.Third, &data.Fourth}
	for i, slot := range slots {
		*assign[i] = slot
	}
}

func ensureNonNil(data *Data) {
	if data.TotalProducts == nil {
		data.TotalProducts = []snapshot.Product{}
	}
	if data.Profitability == nil {
		data.Profitability = []profitability.Record{}
	}
	if data.NegativeKeywordErrors == nil {
		data.NegativeKeywordErrors = []NegativeKeywordError{}
	}
	if data.ProfitabilityErrors == nil {
		data.ProfitabilityErrors = []ProfitabilityError{}
	}
	if data.SponsoredAdsErrors == nil {
		data.SponsoredAdsErrors = []SponsoredAdsError{}
	}
	if data.DateWiseCosts == nil {
		data.DateWiseCosts = []DateCost{}
	}
	if data.CampaignWiseCosts == nil {
		data.CampaignWiseCosts = []CampaignCost{}
	}
}
