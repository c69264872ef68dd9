package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "sweep"})
	registry.Register(&stubJob{name: "compact"})
	registry.Register(nil)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name() != "sweep" || jobs[1].Name() != "compact" {
		t.Fatalf("jobs out of order: %s, %s", jobs[0].Name(), jobs[1].Name())
	}

	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatal("internal slice leaked to caller")
	}
}
