package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestEngineEmitsInDueOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	if err := engine.Schedule(DueEvent{ID: "later", Line: 1, DueAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(DueEvent{ID: "sooner", Line: 2, DueAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
}

func TestEngineEmitsOverdueImmediately(t *testing.T) {
	engine := NewEngine(2)
	engine.Start()
	defer engine.Stop()

	if err := engine.Schedule(DueEvent{ID: "overdue", Path: "daily.md", Line: 3, DueAt: time.Now().Add(-48 * time.Hour)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	ev := waitEvent(t, engine.C(), time.Second)
	if ev.Path != "daily.md" || ev.Line != 3 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	due := time.Now().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(DueEvent{ID: "evt", Line: i, DueAt: due}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}

func TestEngineReplace(t *testing.T) {
	engine := NewEngine(4)
	engine.Start()
	defer engine.Stop()

	far := time.Now().Add(time.Hour)
	for i := 0; i < 3; i++ {
		if err := engine.Schedule(DueEvent{ID: "old", Line: i, DueAt: far}); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}

	err := engine.Replace([]DueEvent{
		{ID: "new", Line: 7, DueAt: time.Now().Add(50 * time.Millisecond)},
		{ID: "undated", Line: 8},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := engine.Pending(); got != 1 {
		t.Fatalf("expected 1 pending event, got %d", got)
	}
	if ev := waitEvent(t, engine.C(), time.Second); ev.ID != "new" {
		t.Fatalf("expected replaced event, got %s", ev.ID)
	}
}

func TestScheduleValidatesDueTime(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(DueEvent{ID: "bad"}); !errors.Is(err, ErrInvalidDueTime) {
		t.Fatalf("expected ErrInvalidDueTime, got %v", err)
	}
}

func TestScheduleAfterStop(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	engine.Stop()

	if err := engine.Schedule(DueEvent{ID: "late", DueAt: time.Now()}); !errors.Is(err, ErrEngineStopped) {
		t.Fatalf("expected ErrEngineStopped, got %v", err)
	}
	if err := engine.Replace(nil); !errors.Is(err, ErrEngineStopped) {
		t.Fatalf("expected ErrEngineStopped from replace, got %v", err)
	}
}

func waitEvent(t *testing.T, ch <-chan DueEvent, timeout time.Duration) DueEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return DueEvent{}
	}
}
