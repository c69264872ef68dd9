package tasks

import (
	"context"
	"encoding/json"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/pubsub"
)

const publishTimeout = 10 * time.Second

// EventTypeIssuesComputed marks a task event carrying freshly computed
// issue arrays.
const EventTypeIssuesComputed = "seller.issues.computed"

// IssuesComputedEvent is the task event payload. Downstream task workers
// turn each error entry into an actionable to-do for the seller.
type IssuesComputedEvent struct {
	SellerID   string    `json:"sellerId"`
	Country    string    `json:"country"`
	ComputedAt time.Time `json:"computedAt"`

	ProductErrors         []dashboard.ProductError         `json:"productErrors"`
	RankingErrors         []dashboard.RankingError         `json:"rankingErrors"`
	InventoryErrors       []dashboard.InventoryError       `json:"inventoryErrors"`
	ConversionErrors      []dashboard.ConversionError      `json:"conversionErrors"`
	ProfitabilityErrors   []dashboard.ProfitabilityError   `json:"profitabilityErrors"`
	SponsoredAdsErrors    []dashboard.SponsoredAdsError    `json:"sponsoredAdsErrors"`
	NegativeKeywordErrors []dashboard.NegativeKeywordError `json:"negativeKeywordErrors"`
	AccountErrorCount     int                              `json:"accountErrorCount"`
}

// Publisher emits task events onto the tasks topic. Implements
// dashboard.TaskNotifier.
type Publisher struct {
	client *pubsub.Client
	log    *logger.Logger
}

// NewPublisher builds the task event publisher.
func NewPublisher(client *pubsub.Client, log *logger.Logger) *Publisher {
	return &Publisher{client: client, log: log}
}

// CreateIssueTasks publishes one task event with the computed error arrays.
func (p *Publisher) CreateIssueTasks(ctx context.Context, sellerID string, data *dashboard.Data) error {
	pub := p.client.TasksPublisher()
	if pub == nil {
		return errors.New(errors.CodeDependency, "tasks publisher not configured")
	}

	event := IssuesComputedEvent{
		SellerID:              sellerID,
		Country:               data.Country,
		ComputedAt:            time.Now().UTC(),
		ProductErrors:         data.ProductWiseError,
		RankingErrors:         data.RankingProductWiseErrors,
		InventoryErrors:       data.InventoryProductWiseErrors,
		ConversionErrors:      data.ConversionProductWiseErrors,
		ProfitabilityErrors:   data.ProfitabilityErrors,
		SponsoredAdsErrors:    data.SponsoredAdsErrors,
		NegativeKeywordErrors: data.NegativeKeywordErrors,
		AccountErrorCount:     data.AccountErrorCount(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "task event encoding failed")
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	result := pub.Publish(publishCtx, &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type": EventTypeIssuesComputed,
			"seller_id":  sellerID,
			"country":    data.Country,
		},
	})
	if _, err := result.Get(publishCtx); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "task event publish failed")
	}
	p.log.Info(p.log.WithSellerID(publishCtx, sellerID), "task event published")
	return nil
}

// NoopNotifier drops task events. Used where the tasks pipeline is not
// wired, such as local runs and tests.
type NoopNotifier struct{}

// CreateIssueTasks implements dashboard.TaskNotifier as a no-op.
func (NoopNotifier) CreateIssueTasks(context.Context, string, *dashboard.Data) error {
	return nil
}
