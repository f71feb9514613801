package service

import (
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("21:00")
	if err != nil {
		t.Fatalf("buildDailySpec: %v", err)
	}
	if spec != "0 0 21 * * *" {
		t.Fatalf("unexpected spec %q", spec)
	}
	if _, err := buildDailySpec("21"); err == nil {
		t.Fatalf("expected error for malformed time")
	}
}

func TestSchedulerService_Register(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	if _, err := s.ScheduleDaily("21:00", func() {}); err != nil {
		t.Fatalf("ScheduleDaily: %v", err)
	}
	if _, err := s.ScheduleInterval(time.Hour, func() {}); err != nil {
		t.Fatalf("ScheduleInterval: %v", err)
	}
	if _, err := s.ScheduleInterval(0, func() {}); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if s.Entries() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Entries())
	}

	s.Start()
	s.Stop()
}
