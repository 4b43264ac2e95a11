package admission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"spendgate-hq/spendgate/pkg/budget"
	"spendgate-hq/spendgate/pkg/clock"
)

func newTestRegistry(t *testing.T, allowed float64) (*Registry, *clock.Mock) {
	t.Helper()

	cfg, err := budget.NewConfig(10*time.Second, 5*time.Second, time.Second, allowed)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	mock := clock.NewMock(time.Unix(100, 0))
	registry, err := NewRegistry(RegistryConfig{Budget: cfg.WithClock(mock)})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return registry, mock
}

func TestNewRegistry_RequiresBudget(t *testing.T) {
	if _, err := NewRegistry(RegistryConfig{}); err == nil {
		t.Error("Expected error for missing budget config")
	}
}

func TestRegistry_LazyCreation(t *testing.T) {
	registry, _ := newTestRegistry(t, 100)

	if registry.Len() != 0 {
		t.Errorf("Expected empty registry, got %d trackers", registry.Len())
	}

	registry.RecordSpend(context.Background(), "project-a", 10)
	registry.Check("project-b")

	if registry.Len() != 2 {
		t.Errorf("Expected 2 trackers after first use, got %d", registry.Len())
	}
}

func TestRegistry_RecordSpendDecision(t *testing.T) {
	registry, _ := newTestRegistry(t, 100)
	ctx := context.Background()

	if registry.RecordSpend(ctx, "project-a", 90) {
		t.Error("Expected under budget at 90")
	}
	if !registry.RecordSpend(ctx, "project-a", 20) {
		t.Error("Expected over budget at 110")
	}

	// A different entity has its own tracker.
	if registry.RecordSpend(ctx, "project-b", 90) {
		t.Error("Expected separate entity to be under budget")
	}
}

func TestRegistry_WindowSpend(t *testing.T) {
	registry, _ := newTestRegistry(t, 100)

	if got := registry.WindowSpend("unknown"); got != 0 {
		t.Errorf("Expected 0 spend for unknown entity, got %.2f", got)
	}
	if registry.Len() != 0 {
		t.Error("Expected WindowSpend to not create a tracker")
	}

	registry.RecordSpend(context.Background(), "project-a", 42)
	if got := registry.WindowSpend("project-a"); got != 42 {
		t.Errorf("Expected window spend 42, got %.2f", got)
	}
}

func TestRegistry_SweepEvictsStale(t *testing.T) {
	registry, mock := newTestRegistry(t, 100)
	ctx := context.Background()

	registry.RecordSpend(ctx, "project-a", 10)
	registry.RecordSpend(ctx, "project-b", 10)

	// Nothing is stale while spend is inside the window.
	if evicted := registry.Sweep(mock.Now()); evicted != 0 {
		t.Errorf("Expected no evictions, got %d", evicted)
	}

	mock.Advance(11 * time.Second)

	if evicted := registry.Sweep(mock.Now()); evicted != 2 {
		t.Errorf("Expected 2 evictions, got %d", evicted)
	}
	if registry.Len() != 0 {
		t.Errorf("Expected empty registry after sweep, got %d", registry.Len())
	}
}

func TestRegistry_SweepSparesPendingBackoff(t *testing.T) {
	cfg, err := budget.NewConfig(10*time.Second, 5*time.Second, time.Minute, 100)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	mock := clock.NewMock(time.Unix(100, 0))
	registry, err := NewRegistry(RegistryConfig{Budget: cfg.WithClock(mock)})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	// Flip to over budget, arming a one minute backoff.
	if !registry.RecordSpend(context.Background(), "project-a", 150) {
		t.Fatal("Expected over budget")
	}

	// The buckets age out of the window, but the backoff is still pending.
	mock.Advance(30 * time.Second)
	if evicted := registry.Sweep(mock.Now()); evicted != 0 {
		t.Errorf("Expected backoff-pending tracker to survive sweep, evicted %d", evicted)
	}

	mock.Advance(time.Minute)
	if evicted := registry.Sweep(mock.Now()); evicted != 1 {
		t.Errorf("Expected eviction after backoff elapsed, got %d", evicted)
	}
}

type fakeJournal struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeJournal) Append(_ context.Context, entity string, _ float64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, entity)
	return nil
}

func TestRegistry_JournalReceivesSpendEvents(t *testing.T) {
	cfg, err := budget.NewConfig(10*time.Second, 5*time.Second, time.Second, 100)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	journal := &fakeJournal{}
	registry, err := NewRegistry(RegistryConfig{
		Budget:  cfg.WithClock(clock.NewMock(time.Unix(100, 0))),
		Journal: journal,
	})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	registry.RecordSpend(context.Background(), "project-a", 10)
	registry.RecordSpend(context.Background(), "project-a", 20)

	journal.mu.Lock()
	defer journal.mu.Unlock()
	if len(journal.events) != 2 {
		t.Errorf("Expected 2 journal events, got %d", len(journal.events))
	}
}

func TestRegistry_WithMetrics(t *testing.T) {
	cfg, err := budget.NewConfig(10*time.Second, 5*time.Second, time.Second, 100)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	promReg := prometheus.NewRegistry()
	registry, err := NewRegistry(RegistryConfig{
		Budget:  cfg.WithClock(clock.NewMock(time.Unix(100, 0))),
		Metrics: NewMetrics(promReg),
	})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	registry.RecordSpend(context.Background(), "project-a", 150)
	registry.Check("project-a")

	families, err := promReg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}

	for _, want := range []string{
		"spendgate_admission_spend_records_total",
		"spendgate_admission_checks_total",
		"spendgate_admission_state_flips_total",
		"spendgate_admission_active_trackers",
	} {
		if !names[want] {
			t.Errorf("Expected metric %s to be registered", want)
		}
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	cfg, err := budget.NewConfig(time.Hour, time.Minute, time.Second, 1e9)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	registry, err := NewRegistry(RegistryConfig{Budget: cfg})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	var wg sync.WaitGroup
	numGoroutines := 10
	spendsPerGoroutine := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < spendsPerGoroutine; j++ {
				registry.RecordSpend(context.Background(), "project-a", 1)
				registry.Check("project-a")
			}
		}()
	}

	wg.Wait()

	expected := float64(numGoroutines * spendsPerGoroutine)
	if got := registry.WindowSpend("project-a"); got != expected {
		t.Errorf("Expected window spend %.2f, got %.2f", expected, got)
	}
}
