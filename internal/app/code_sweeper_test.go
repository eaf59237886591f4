package app

import (
	"context"
	"testing"
	"time"
)

func TestCodeSweeper_SweepRemovesOnlyExpiredCodes(t *testing.T) {
	codes := newFakeCodeRepo()
	ctx := context.Background()

	if err := codes.Replace(ctx, "fresh@x.edu", "111111"); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if err := codes.Replace(ctx, "stale@x.edu", "222222"); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	codes.backdate("stale@x.edu", 11*time.Minute)

	sweeper := NewCodeSweeper(codes, 10*time.Minute, "")
	sweeper.sweep()

	if got := codes.storedCode("stale@x.edu"); got != "" {
		t.Errorf("expired code survived the sweep: %q", got)
	}
	if got := codes.storedCode("fresh@x.edu"); got != "111111" {
		t.Errorf("fresh code removed by the sweep, stored = %q", got)
	}
}

func TestNewCodeSweeper_DefaultsSchedule(t *testing.T) {
	sweeper := NewCodeSweeper(newFakeCodeRepo(), 10*time.Minute, "")
	if sweeper.schedule != DefaultSweepSchedule {
		t.Errorf("schedule = %q, want %q", sweeper.schedule, DefaultSweepSchedule)
	}

	sweeper = NewCodeSweeper(newFakeCodeRepo(), 10*time.Minute, "@hourly")
	if sweeper.schedule != "@hourly" {
		t.Errorf("schedule = %q, want @hourly", sweeper.schedule)
	}
}
