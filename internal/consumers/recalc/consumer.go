package recalc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/issues"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db/models"
	pkgerrors "github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

const recalcConsumerName = "issue-recalc"

// Integration event types that invalidate a seller marketplace cache.
const (
	EventTypeSnapshotSynced  = "seller.snapshot.synced"
	EventTypeRecalcRequested = "seller.recalc.requested"
)

// Envelope is one decoded integration event.
type Envelope struct {
	EventID    string
	EventType  string
	Key        types.SellerKey
	OccurredAt time.Time
}

type eventPayload struct {
	EventID    string    `json:"eventId"`
	SellerID   string    `json:"sellerId"`
	Country    string    `json:"country"`
	Region     string    `json:"region"`
	OccurredAt time.Time `json:"occurredAt"`
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type staleMarker interface {
	MarkStale(ctx context.Context, key types.SellerKey) error
}

type recalculator interface {
	Recalculate(ctx context.Context, key types.SellerKey, source string) (*dashboard.Data, error)
}

// Service consumes integration events and recomputes the affected seller
// marketplace, honoring Redis idempotency per event.
type Service struct {
	subscription *gcppubsub.Subscriber
	marker       staleMarker
	recalc       recalculator
	manager      idempotencyChecker
	logg         *logger.Logger
	eventFilter  map[string]struct{}
}

// NewService creates a new recalculation worker service.
func NewService(subscription *gcppubsub.Subscriber, marker staleMarker, recalc recalculator, manager idempotencyChecker, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("integration subscription is required")
	}
	if marker == nil {
		return nil, errors.New("stale marker is required")
	}
	if recalc == nil {
		return nil, errors.New("recalculator is required")
	}
	if manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		subscription: subscription,
		marker:       marker,
		recalc:       recalc,
		manager:      manager,
		logg:         logg,
		eventFilter: map[string]struct{}{
			EventTypeSnapshotSynced:  {},
			EventTypeRecalcRequested: {},
		},
	}, nil
}

type processResult struct {
	nack bool
}

// Run starts consuming integration messages until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{"message_id": msg.ID}
	logCtx := s.logg.WithFields(ctx, fields)

	envelope, err := buildEnvelope(msg)
	if err != nil {
		fields["error"] = err.Error()
		s.logg.Warn(s.logg.WithFields(ctx, fields), "invalid integration envelope")
		return processResult{}
	}
	return s.Process(logCtx, envelope)
}

// Process handles one decoded envelope. Unhandled event types and envelopes
// already seen are acknowledged without work.
func (s *Service) Process(ctx context.Context, envelope *Envelope) processResult {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": envelope.EventType,
	})
	logCtx = s.logg.WithSellerID(logCtx, envelope.Key.SellerID.String())
	logCtx = s.logg.WithMarketplace(logCtx, envelope.Key.Country, envelope.Key.Region)

	if _, ok := s.eventFilter[envelope.EventType]; !ok {
		s.logg.Info(logCtx, "event not handled by recalc consumer")
		return processResult{}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		s.logg.Warn(logCtx, "invalid event id")
		return processResult{}
	}

	already, err := s.manager.CheckAndMarkProcessed(logCtx, recalcConsumerName, eventID)
	if err != nil {
		s.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		s.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	// Flag the cache first so the cron sweep picks the seller up even if
	// the recalculation below cannot run right now.
	if err := s.marker.MarkStale(logCtx, envelope.Key); err != nil {
		s.logg.Error(logCtx, "failed to mark caches stale", err)
		_ = s.manager.Delete(logCtx, recalcConsumerName, eventID)
		return processResult{nack: true}
	}

	if _, err := s.recalc.Recalculate(logCtx, envelope.Key, models.CalculationSourceWorker); err != nil {
		if pkgerrors.Is(err, issues.ErrCalculationInFlight) {
			s.logg.Info(logCtx, "recalculation already in flight; stale sweep will retry")
			return processResult{}
		}
		s.logg.Error(logCtx, "recalculation failed", err)
		_ = s.manager.Delete(logCtx, recalcConsumerName, eventID)
		return processResult{nack: true}
	}

	s.logg.Info(logCtx, "seller marketplace recalculated")
	return processResult{}
}

func buildEnvelope(msg *gcppubsub.Message) (*Envelope, error) {
	var payload eventPayload
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode event payload: %w", err)
		}
	}

	eventType := strings.TrimSpace(msg.Attributes["event_type"])
	if eventType == "" {
		return nil, errors.New("event_type missing")
	}

	eventID := strings.TrimSpace(payload.EventID)
	if eventID == "" {
		eventID = strings.TrimSpace(msg.Attributes["event_id"])
	}
	if eventID == "" {
		return nil, errors.New("event_id missing")
	}

	sellerID := strings.TrimSpace(payload.SellerID)
	if sellerID == "" {
		sellerID = strings.TrimSpace(msg.Attributes["seller_id"])
	}
	country := strings.TrimSpace(payload.Country)
	if country == "" {
		country = strings.TrimSpace(msg.Attributes["country"])
	}
	region := strings.TrimSpace(payload.Region)
	if region == "" {
		region = strings.TrimSpace(msg.Attributes["region"])
	}

	key, err := types.NewSellerKey(sellerID, country, region)
	if err != nil {
		return nil, fmt.Errorf("seller key: %w", err)
	}

	occurredAt := payload.OccurredAt
	if occurredAt.IsZero() {
		if created := strings.TrimSpace(msg.Attributes["occurred_at"]); created != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, created); err == nil {
				occurredAt = parsed
			}
		}
	}

	return &Envelope{
		EventID:    eventID,
		EventType:  eventType,
		Key:        key,
		OccurredAt: occurredAt.UTC(),
	}, nil
}
