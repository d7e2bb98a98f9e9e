package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/oli5bo5/supabase-crypto-dashboard/internal/model"
)

// stubTable is a scriptable TableSource.
type stubTable struct {
	mu        sync.Mutex
	records   []model.PriceRecord
	err       error
	calls     int
	lastLimit int
	block     chan struct{} // when non-nil, calls wait here before returning
	started   chan struct{} // when non-nil, receives one signal per call start
}

func (s *stubTable) TopByMarketCap(ctx context.Context, limit int) ([]model.PriceRecord, error) {
	s.mu.Lock()
	s.calls++
	s.lastLimit = limit
	records, err := s.records, s.err
	block, started := s.block, s.started
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return records, err
}

func (s *stubTable) set(records []model.PriceRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records, s.err = records, err
}

func (s *stubTable) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func records(ids ...string) []model.PriceRecord {
	out := make([]model.PriceRecord, 0, len(ids))
	for i, id := range ids {
		out = append(out, model.PriceRecord{ID: id, MarketCap: float64(len(ids) - i)})
	}
	return out
}

func failingFeed() FeedSource {
	return FeedSourceFunc(func(ctx context.Context) ([]model.PriceRecord, error) {
		return nil, errors.New("feed unreachable")
	})
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition never held: %s", msg)
}

func startCoordinator(t *testing.T, cfg Config, table TableSource, feed FeedSource) *Coordinator {
	t.Helper()
	c := New(cfg, table, feed, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		c.Stop(ctx)
	})
	return c
}

func TestCoordinator_ColdStart(t *testing.T) {
	// Table holds 3 rows, feed is unreachable: after the initial fetch the
	// display list is the table snapshot and no error is surfaced.
	table := &stubTable{records: records("bitcoin", "ethereum", "solana")}

	c := startCoordinator(t, Config{PollInterval: time.Hour}, table, failingFeed())

	waitFor(t, func() bool {
		s := c.State()
		return !s.Loading && len(s.TableRecords) == 3
	}, "initial table snapshot applied")

	state := c.State()
	if state.LastError != "" {
		t.Errorf("LastError = %q, want empty", state.LastError)
	}
	if state.LivePresent {
		t.Error("LivePresent should be false while the feed is unreachable")
	}

	list := c.DisplayList()
	if len(list) != 3 {
		t.Fatalf("len(DisplayList) = %d, want 3", len(list))
	}
	// Ordering fixed at fetch time: market cap descending.
	for i := 1; i < len(list); i++ {
		if list[i].MarketCap > list[i-1].MarketCap {
			t.Errorf("rows out of market cap order at %d", i)
		}
	}
}

func TestCoordinator_PageSizePassedToTable(t *testing.T) {
	table := &stubTable{}
	startCoordinator(t, Config{PollInterval: time.Hour}, table, failingFeed())

	waitFor(t, func() bool { return table.callCount() >= 1 }, "initial fetch issued")

	table.mu.Lock()
	defer table.mu.Unlock()
	if table.lastLimit != DefaultConfig().PageSize {
		t.Errorf("limit = %d, want %d", table.lastLimit, DefaultConfig().PageSize)
	}
}

func TestCoordinator_FetchFailureThenRecovery(t *testing.T) {
	table := &stubTable{records: records("bitcoin", "ethereum")}
	c := startCoordinator(t, Config{PollInterval: time.Hour}, table, failingFeed())

	waitFor(t, func() bool { return len(c.State().TableRecords) == 2 }, "initial snapshot")

	// Failure: records unchanged, error surfaced.
	table.set(nil, errors.New("connection refused"))
	c.Notify()

	waitFor(t, func() bool { return c.State().LastError != "" }, "error surfaced")

	state := c.State()
	if len(state.TableRecords) != 2 {
		t.Errorf("TableRecords changed on failure: len = %d, want 2", len(state.TableRecords))
	}
	if state.TableRecords[0].ID != "bitcoin" {
		t.Errorf("TableRecords[0].ID = %q, want %q", state.TableRecords[0].ID, "bitcoin")
	}
	if state.Loading {
		t.Error("Loading should be cleared after a failed fetch")
	}

	// Recovery: fresh snapshot applied, error cleared.
	table.set(records("bitcoin", "ethereum", "solana"), nil)
	c.Notify()

	waitFor(t, func() bool {
		s := c.State()
		return s.LastError == "" && len(s.TableRecords) == 3
	}, "error cleared and snapshot replaced")
}

func TestCoordinator_LiveOverridesTable(t *testing.T) {
	table := &stubTable{records: records("a", "b", "c", "d", "e")}
	feed := FeedSourceFunc(func(ctx context.Context) ([]model.PriceRecord, error) {
		return records("bitcoin", "ethereum"), nil
	})

	c := startCoordinator(t, Config{PollInterval: time.Hour}, table, feed)

	waitFor(t, func() bool {
		s := c.State()
		return s.LivePresent && len(s.TableRecords) == 5
	}, "both sources populated")

	list := c.DisplayList()
	if len(list) != 2 {
		t.Fatalf("len(DisplayList) = %d, want the 2 feed records", len(list))
	}
	if list[0].ID != "bitcoin" {
		t.Errorf("DisplayList[0].ID = %q, want %q", list[0].ID, "bitcoin")
	}
}

func TestCoordinator_EmptyPollStillSupersedes(t *testing.T) {
	table := &stubTable{records: records("a", "b")}
	feed := FeedSourceFunc(func(ctx context.Context) ([]model.PriceRecord, error) {
		return []model.PriceRecord{}, nil
	})

	c := startCoordinator(t, Config{PollInterval: time.Hour}, table, feed)

	waitFor(t, func() bool { return c.State().LivePresent }, "poll completed")

	if got := c.DisplayList(); len(got) != 0 {
		t.Errorf("len(DisplayList) = %d, want 0 (empty poll wins)", len(got))
	}
}

func TestCoordinator_PollFailureKeepsLastResult(t *testing.T) {
	table := &stubTable{}

	var mu sync.Mutex
	fail := false
	feed := FeedSourceFunc(func(ctx context.Context) ([]model.PriceRecord, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, errors.New("rate limited")
		}
		return records("bitcoin"), nil
	})

	c := startCoordinator(t, Config{PollInterval: 20 * time.Millisecond}, table, feed)

	waitFor(t, func() bool { return c.State().LivePresent }, "first poll applied")

	mu.Lock()
	fail = true
	mu.Unlock()

	// Let a few failing ticks pass.
	time.Sleep(100 * time.Millisecond)

	state := c.State()
	if !state.LivePresent || len(state.LiveRecords) != 1 {
		t.Errorf("live records lost on poll failure: %+v", state)
	}
	if state.LastError != "" {
		t.Errorf("poll failures must not surface an error, got %q", state.LastError)
	}
}

func TestCoordinator_NotificationTriggersRefetch(t *testing.T) {
	table := &stubTable{records: records("stale")}
	c := startCoordinator(t, Config{PollInterval: time.Hour}, table, failingFeed())

	waitFor(t, func() bool { return len(c.State().TableRecords) == 1 }, "initial snapshot")

	// Any change notification re-pulls the full snapshot, regardless of
	// which row changed.
	table.set(records("fresh-1", "fresh-2"), nil)
	c.Notify()

	waitFor(t, func() bool {
		s := c.State()
		return len(s.TableRecords) == 2 && s.TableRecords[0].ID == "fresh-1"
	}, "snapshot replaced after notification")
}

func TestCoordinator_RefetchIdempotent(t *testing.T) {
	table := &stubTable{records: records("bitcoin", "ethereum")}
	c := startCoordinator(t, Config{PollInterval: time.Hour}, table, failingFeed())

	waitFor(t, func() bool { return table.callCount() >= 1 && !c.State().Loading }, "initial snapshot")
	first := c.State().TableRecords

	calls := table.callCount()
	c.Notify()
	waitFor(t, func() bool { return table.callCount() > calls && !c.State().Loading }, "second fetch")
	second := c.State().TableRecords

	if len(first) != len(second) {
		t.Fatalf("len mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("rows[%d] differ: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCoordinator_LateResponseDiscardedAfterStop(t *testing.T) {
	table := &stubTable{records: records("initial")}
	c := New(Config{PollInterval: time.Hour}, table, failingFeed(), nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, func() bool { return len(c.State().TableRecords) == 1 }, "initial snapshot")

	// Arrange a fetch that is still in flight when Stop is called.
	block := make(chan struct{})
	started := make(chan struct{}, 1)
	table.mu.Lock()
	table.records = records("late-1", "late-2")
	table.block = block
	table.started = started
	table.mu.Unlock()

	c.Notify()
	<-started

	stopDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		stopDone <- c.Stop(ctx)
	}()

	// Release the in-flight response after shutdown began.
	time.Sleep(20 * time.Millisecond)
	close(block)

	if err := <-stopDone; err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// The late response must have been dropped, not applied.
	state := c.State()
	if len(state.TableRecords) != 1 || state.TableRecords[0].ID != "initial" {
		t.Errorf("late response was applied after Stop: %+v", state.TableRecords)
	}
}

func TestCoordinator_StartStop(t *testing.T) {
	table := &stubTable{}
	c := New(Config{PollInterval: 50 * time.Millisecond}, table, failingFeed(), nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, func() bool { return table.callCount() >= 1 }, "initial fetch")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// Notify after Stop must not panic or refetch.
	calls := table.callCount()
	c.Notify()
	time.Sleep(30 * time.Millisecond)
	if table.callCount() != calls {
		t.Errorf("fetch issued after Stop")
	}
}
