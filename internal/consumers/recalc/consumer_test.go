package recalc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/issues"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

type fakeMarker struct {
	keys []types.SellerKey
	err  error
}

func (f *fakeMarker) MarkStale(_ context.Context, key types.SellerKey) error {
	f.keys = append(f.keys, key)
	return f.err
}

type fakeServiceRecalc struct {
	seen    []types.SellerKey
	sources []string
	err     error
}

func (f *fakeServiceRecalc) Recalculate(_ context.Context, key types.SellerKey, source string) (*dashboard.Data, error) {
	f.seen = append(f.seen, key)
	f.sources = append(f.sources, source)
	if f.err != nil {
		return nil, f.err
	}
	return &dashboard.Data{Country: key.Country}, nil
}

type fakeIdempotency struct {
	check    func(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	deleteFn func(ctx context.Context, consumer string, eventID uuid.UUID) error
}

func (f fakeIdempotency) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	return f.check(ctx, consumer, eventID)
}

func (f fakeIdempotency) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	return f.deleteFn(ctx, consumer, eventID)
}

func freshIdempotency() fakeIdempotency {
	return fakeIdempotency{
		check: func(context.Context, string, uuid.UUID) (bool, error) {
			return false, nil
		},
		deleteFn: func(context.Context, string, uuid.UUID) error {
			return nil
		},
	}
}

func testService(marker *fakeMarker, recalc *fakeServiceRecalc, manager idempotencyChecker) *Service {
	return &Service{
		marker:  marker,
		recalc:  recalc,
		manager: manager,
		logg:    logger.New(logger.Options{ServiceName: "recalc-test"}),
		eventFilter: map[string]struct{}{
			EventTypeSnapshotSynced:  {},
			EventTypeRecalcRequested: {},
		},
	}
}

func testEnvelope(eventType string) *Envelope {
	return &Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		Key:        types.SellerKey{SellerID: uuid.New(), Country: "US", Region: "NA"},
		OccurredAt: time.Now().UTC(),
	}
}

func TestRecalcConsumerProcessesSnapshotSynced(t *testing.T) {
	marker := &fakeMarker{}
	recalc := &fakeServiceRecalc{}
	service := testService(marker, recalc, freshIdempotency())

	result := service.Process(context.Background(), testEnvelope(EventTypeSnapshotSynced))
	if result.nack {
		t.Fatalf("expected ack")
	}
	if len(marker.keys) != 1 {
		t.Fatalf("expected cache marked stale, got %d calls", len(marker.keys))
	}
	if len(recalc.seen) != 1 {
		t.Fatalf("expected 1 recalculation, got %d", len(recalc.seen))
	}
	if recalc.sources[0] != "worker" {
		t.Fatalf("unexpected source %q", recalc.sources[0])
	}
}

func TestRecalcConsumerIgnoresUnknownEventType(t *testing.T) {
	marker := &fakeMarker{}
	recalc := &fakeServiceRecalc{}
	service := testService(marker, recalc, freshIdempotency())

	result := service.Process(context.Background(), testEnvelope("seller.listing.viewed"))
	if result.nack {
		t.Fatalf("unknown event types should be acked")
	}
	if len(recalc.seen) != 0 {
		t.Fatalf("expected no recalculation for unknown event type")
	}
}

func TestRecalcConsumerIsIdempotent(t *testing.T) {
	marker := &fakeMarker{}
	recalc := &fakeServiceRecalc{}
	manager := fakeIdempotency{
		check: func(context.Context, string, uuid.UUID) (bool, error) {
			return true, nil
		},
		deleteFn: func(context.Context, string, uuid.UUID) error {
			return nil
		},
	}
	service := testService(marker, recalc, manager)

	result := service.Process(context.Background(), testEnvelope(EventTypeSnapshotSynced))
	if result.nack {
		t.Fatalf("expected ack for replayed event")
	}
	if len(marker.keys) != 0 || len(recalc.seen) != 0 {
		t.Fatalf("expected no work for replayed event")
	}
}

func TestRecalcConsumerNacksAndUnmarksOnFailure(t *testing.T) {
	marker := &fakeMarker{}
	recalc := &fakeServiceRecalc{err: errors.New("db down")}
	deleted := false
	manager := fakeIdempotency{
		check: func(context.Context, string, uuid.UUID) (bool, error) {
			return false, nil
		},
		deleteFn: func(context.Context, string, uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	service := testService(marker, recalc, manager)

	result := service.Process(context.Background(), testEnvelope(EventTypeRecalcRequested))
	if !result.nack {
		t.Fatalf("expected nack when recalculation fails")
	}
	if !deleted {
		t.Fatalf("expected idempotency key deletion on failure")
	}
}

func TestRecalcConsumerAcksInFlight(t *testing.T) {
	marker := &fakeMarker{}
	recalc := &fakeServiceRecalc{err: issues.ErrCalculationInFlight}
	deleted := false
	manager := freshIdempotency()
	manager.deleteFn = func(context.Context, string, uuid.UUID) error {
		deleted = true
		return nil
	}
	service := testService(marker, recalc, manager)

	// the stale flag stays set, so the cron sweep finishes the job later
	result := service.Process(context.Background(), testEnvelope(EventTypeSnapshotSynced))
	if result.nack {
		t.Fatalf("in-flight recalculation should not be redelivered")
	}
	if deleted {
		t.Fatalf("idempotency marker should be kept for in-flight skip")
	}
	if len(marker.keys) != 1 {
		t.Fatalf("expected cache marked stale before skip")
	}
}

func TestBuildEnvelopeFromPayload(t *testing.T) {
	sellerID := uuid.NewString()
	eventID := uuid.NewString()
	occurred := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	body, err := json.Marshal(eventPayload{
		EventID:    eventID,
		SellerID:   sellerID,
		Country:    "us",
		Region:     "na",
		OccurredAt: occurred,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	envelope, err := buildEnvelope(&gcppubsub.Message{
		Data:       body,
		Attributes: map[string]string{"event_type": EventTypeSnapshotSynced},
	})
	if err != nil {
		t.Fatalf("buildEnvelope() error: %v", err)
	}
	if envelope.EventID != eventID {
		t.Fatalf("event id mismatch")
	}
	if envelope.Key.Country != "US" || envelope.Key.Region != "NA" {
		t.Fatalf("seller key not normalized: %+v", envelope.Key)
	}
	if !envelope.OccurredAt.Equal(occurred) {
		t.Fatalf("occurred at mismatch: %v", envelope.OccurredAt)
	}
}

func TestBuildEnvelopeFallsBackToAttributes(t *testing.T) {
	envelope, err := buildEnvelope(&gcppubsub.Message{
		Attributes: map[string]string{
			"event_type": EventTypeRecalcRequested,
			"event_id":   uuid.NewString(),
			"seller_id":  uuid.NewString(),
			"country":    "CA",
			"region":     "NA",
		},
	})
	if err != nil {
		t.Fatalf("buildEnvelope() error: %v", err)
	}
	if envelope.Key.Country != "CA" {
		t.Fatalf("country mismatch: %q", envelope.Key.Country)
	}
}

func TestBuildEnvelopeRejectsMissingEventType(t *testing.T) {
	if _, err := buildEnvelope(&gcppubsub.Message{Attributes: map[string]string{}}); err == nil {
		t.Fatalf("expected error for missing event_type")
	}
}
