package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
)

type fakeLock struct {
	held     bool
	acquires int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	f.acquires++
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.held = false; return nil }

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func cronTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return service
}

func TestServiceSweepRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "ok"}
	bad := &testJob{name: "bad", err: errors.New("boom")}
	service := cronTestService(t, &fakeLock{}, ok, bad)

	if err := service.sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if ok.runs != 1 || bad.runs != 1 {
		t.Fatalf("expected both jobs to run once, got %d/%d", ok.runs, bad.runs)
	}
}

func TestServiceSweepSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "ok"}
	lock := &fakeLock{held: true}
	service := cronTestService(t, lock, job)

	if err := service.sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected no runs while lock is held elsewhere, got %d", job.runs)
	}
	if lock.acquires != 1 {
		t.Fatalf("expected one acquire attempt, got %d", lock.acquires)
	}
}

func TestServiceReleasesLockAfterSweep(t *testing.T) {
	lock := &fakeLock{}
	service := cronTestService(t, lock, &testJob{name: "ok"})

	if err := service.sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if lock.held {
		t.Fatalf("lock not released after sweep")
	}
}

func TestNewServiceRequiresLogger(t *testing.T) {
	if _, err := NewService(ServiceParams{Lock: &fakeLock{}}); err == nil {
		t.Fatal("expected error without logger")
	}
}
