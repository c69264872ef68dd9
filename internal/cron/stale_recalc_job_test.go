package cron

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/issues"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

type fakeStaleLister struct {
	keys      []types.SellerKey
	err       error
	lastLimit int
}

func (f *fakeStaleLister) ListStaleKeys(_ context.Context, limit int) ([]types.SellerKey, error) {
	f.lastLimit = limit
	return f.keys, f.err
}

type fakeRecalculator struct {
	errs    map[string]error
	sources []string
	seen    []types.SellerKey
}

func (f *fakeRecalculator) Recalculate(_ context.Context, key types.SellerKey, source string) (*dashboard.Data, error) {
	f.seen = append(f.seen, key)
	f.sources = append(f.sources, source)
	if err, ok := f.errs[key.Country]; ok {
		return nil, err
	}
	return &dashboard.Data{Country: key.Country}, nil
}

func staleTestKey(country string) types.SellerKey {
	return types.SellerKey{SellerID: uuid.New(), Country: country, Region: "NA"}
}

func staleTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "cron-test"})
}

func TestNewStaleRecalcJobValidation(t *testing.T) {
	logg := staleTestLogger(t)
	lister := &fakeStaleLister{}
	recalc := &fakeRecalculator{}

	if _, err := NewStaleRecalcJob(StaleRecalcJobParams{Lister: lister, Recalculator: recalc}); err == nil {
		t.Fatalf("expected error without logger")
	}
	if _, err := NewStaleRecalcJob(StaleRecalcJobParams{Logger: logg, Recalculator: recalc}); err == nil {
		t.Fatalf("expected error without lister")
	}
	if _, err := NewStaleRecalcJob(StaleRecalcJobParams{Logger: logg, Lister: lister}); err == nil {
		t.Fatalf("expected error without recalculator")
	}

	job, err := NewStaleRecalcJob(StaleRecalcJobParams{Logger: logg, Lister: lister, Recalculator: recalc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Name() != "stale-issue-recalc" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
}

func TestStaleRecalcJobRecalculatesBatch(t *testing.T) {
	lister := &fakeStaleLister{keys: []types.SellerKey{staleTestKey("US"), staleTestKey("CA")}}
	recalc := &fakeRecalculator{}
	job, err := NewStaleRecalcJob(StaleRecalcJobParams{
		Logger:       staleTestLogger(t),
		Lister:       lister,
		Recalculator: recalc,
		BatchSize:    7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.lastLimit != 7 {
		t.Fatalf("expected batch size 7, got %d", lister.lastLimit)
	}
	if len(recalc.seen) != 2 {
		t.Fatalf("expected 2 recalculations, got %d", len(recalc.seen))
	}
	for _, source := range recalc.sources {
		if source != "cron" {
			t.Fatalf("expected cron source, got %q", source)
		}
	}
}

func TestStaleRecalcJobDefaultsBatchSize(t *testing.T) {
	lister := &fakeStaleLister{}
	job, err := NewStaleRecalcJob(StaleRecalcJobParams{
		Logger:       staleTestLogger(t),
		Lister:       lister,
		Recalculator: &fakeRecalculator{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.lastLimit != defaultStaleBatchSize {
		t.Fatalf("expected default batch size %d, got %d", defaultStaleBatchSize, lister.lastLimit)
	}
}

func TestStaleRecalcJobSkipsInFlight(t *testing.T) {
	lister := &fakeStaleLister{keys: []types.SellerKey{staleTestKey("US"), staleTestKey("CA")}}
	recalc := &fakeRecalculator{errs: map[string]error{"US": issues.ErrCalculationInFlight}}
	job, err := NewStaleRecalcJob(StaleRecalcJobParams{
		Logger:       staleTestLogger(t),
		Lister:       lister,
		Recalculator: recalc,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// an in-flight key is skipped, not counted as a failure
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recalc.seen) != 2 {
		t.Fatalf("expected both keys attempted, got %d", len(recalc.seen))
	}
}

func TestStaleRecalcJobContinuesPastFailures(t *testing.T) {
	lister := &fakeStaleLister{keys: []types.SellerKey{staleTestKey("US"), staleTestKey("CA"), staleTestKey("MX")}}
	recalc := &fakeRecalculator{errs: map[string]error{"CA": errors.New(errors.CodeDependency, "snapshot fetch failed")}}
	job, err := NewStaleRecalcJob(StaleRecalcJobParams{
		Logger:       staleTestLogger(t),
		Lister:       lister,
		Recalculator: recalc,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = job.Run(context.Background())
	if err == nil {
		t.Fatalf("expected aggregate error")
	}
	if !strings.Contains(err.Error(), "1 of 3") {
		t.Fatalf("unexpected error message: %v", err)
	}
	if len(recalc.seen) != 3 {
		t.Fatalf("expected all keys attempted, got %d", len(recalc.seen))
	}
}
