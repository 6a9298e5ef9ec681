package store

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/swarmreport/swarmreport/pkg/types"
	"github.com/swarmreport/swarmreport/server/internal/freshness"
)

func report(host, cpu string) types.SystemReport {
	return types.SystemReport{Hostname: host, IPAddress: "10.0.0.1", CPUUsage: cpu}
}

func at(sec int64) time.Time { return time.Unix(sec, 0) }

func TestUpsert_InsertsAndGets(t *testing.T) {
	st := New()
	st.Upsert("h1", report("h1", "10%"), at(100))

	e, ok := st.Get("h1")
	if !ok {
		t.Fatal("Get: expected entry, got none")
	}
	if e.Report.CPUUsage != "10%" {
		t.Errorf("CPUUsage: got %q, want 10%%", e.Report.CPUUsage)
	}
	if !e.LastUpdated.Equal(at(100)) {
		t.Errorf("LastUpdated: got %v, want %v", e.LastUpdated, at(100))
	}
}

func TestGet_Missing(t *testing.T) {
	st := New()
	if _, ok := st.Get("unknown"); ok {
		t.Fatal("Get on empty store: expected false, got true")
	}
}

func TestUpsert_SameIdentityKeepsOneEntry(t *testing.T) {
	st := New()
	for i := 0; i < 10; i++ {
		st.Upsert("h1", report("h1", fmt.Sprintf("%d%%", i)), at(int64(100+i)))
	}

	if n := st.Len(); n != 1 {
		t.Fatalf("Len: got %d, want 1", n)
	}
	if got := st.Order(); !reflect.DeepEqual(got, []string{"h1"}) {
		t.Errorf("Order: got %v, want [h1]", got)
	}
	e, _ := st.Get("h1")
	if e.Report.CPUUsage != "9%" {
		t.Errorf("CPUUsage: got %q, want last applied 9%%", e.Report.CPUUsage)
	}
	if !e.LastUpdated.Equal(at(109)) {
		t.Errorf("LastUpdated: got %v, want %v", e.LastUpdated, at(109))
	}
}

func TestUpsert_OrderIsFirstSeen(t *testing.T) {
	st := New()
	seq := []string{"c", "a", "c", "b", "a", "a", "d", "b"}
	for i, id := range seq {
		st.Upsert(id, report(id, "1%"), at(int64(i)))
	}

	want := []string{"c", "a", "b", "d"}
	if got := st.Order(); !reflect.DeepEqual(got, want) {
		t.Errorf("Order: got %v, want %v", got, want)
	}
	ordered := st.Ordered()
	for i, e := range ordered {
		if e.Identity != want[i] {
			t.Errorf("Ordered[%d]: got %q, want %q", i, e.Identity, want[i])
		}
	}
}

func TestUpsert_OlderReceiptKeepsTimestamp(t *testing.T) {
	st := New()
	st.Upsert("h1", report("h1", "10%"), at(200))
	st.Upsert("h1", report("h1", "20%"), at(150))

	e, _ := st.Get("h1")
	if !e.LastUpdated.Equal(at(200)) {
		t.Errorf("LastUpdated moved backwards: got %v", e.LastUpdated)
	}
	if e.Report.CPUUsage != "20%" {
		t.Errorf("payload: got %q, want 20%%", e.Report.CPUUsage)
	}
}

func TestSweep_RemovesOnlyPastThreshold(t *testing.T) {
	st := New()
	st.Upsert("old", report("old", "1%"), at(100))
	st.Upsert("edge", report("edge", "1%"), at(140))
	st.Upsert("live", report("live", "1%"), at(195))

	// now=200, threshold=60: old silent 100s (evict), edge silent exactly 60s (keep).
	removed := st.Sweep(at(200), 60*time.Second)
	if removed != 1 {
		t.Errorf("Sweep: removed %d, want 1", removed)
	}
	if _, ok := st.Get("old"); ok {
		t.Error("old: still present after sweep")
	}
	if got, want := st.Order(), []string{"edge", "live"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Order: got %v, want %v", got, want)
	}
}

func TestSweep_SubSecondTimestampsAtThreshold(t *testing.T) {
	st := New()
	st.Upsert("edge", report("edge", "1%"), time.Unix(100, int64(900*time.Millisecond)))
	st.Upsert("past", report("past", "1%"), time.Unix(99, int64(100*time.Millisecond)))

	now := time.Unix(160, int64(950*time.Millisecond))
	if got := freshness.Since(now, time.Unix(100, int64(900*time.Millisecond))); got != 60 {
		t.Fatalf("Since: got %d, want 60", got)
	}

	// edge is 60s silent in whole seconds (60.05s in nanoseconds): kept.
	// past is 61s silent: evicted.
	if n := st.Sweep(now, 60*time.Second); n != 1 {
		t.Errorf("Sweep: removed %d, want 1", n)
	}
	if _, ok := st.Get("edge"); !ok {
		t.Error("edge: evicted while reported at exactly the threshold")
	}
	if _, ok := st.Get("past"); ok {
		t.Error("past: still present after sweep")
	}
}

func TestSweep_NoOpAllLive(t *testing.T) {
	st := New()
	st.Upsert("h1", report("h1", "1%"), at(100))
	if n := st.Sweep(at(101), time.Minute); n != 0 {
		t.Errorf("Sweep on live entry: removed %d, want 0", n)
	}
	if st.Len() != 1 {
		t.Errorf("Len: got %d, want 1", st.Len())
	}
}

func TestSweep_ReinsertAppendsAtEnd(t *testing.T) {
	st := New()
	st.Upsert("a", report("a", "1%"), at(0))
	st.Upsert("b", report("b", "1%"), at(100))
	st.Sweep(at(100), 60*time.Second)
	st.Upsert("a", report("a", "1%"), at(101))

	if got, want := st.Order(), []string{"b", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Order: got %v, want %v", got, want)
	}
}

func TestOrdered_IsACopy(t *testing.T) {
	st := New()
	r := report("h1", "1%")
	r.Services = []types.Service{{Name: "nginx", Status: "running"}}
	st.Upsert("h1", r, at(1))

	out := st.Ordered()
	out[0].Report.Services[0].Status = "stopped"
	out[0].Report.CPUUsage = "99%"

	e, _ := st.Get("h1")
	if e.Report.Services[0].Status != "running" || e.Report.CPUUsage != "1%" {
		t.Errorf("store mutated through Ordered copy: %+v", e.Report)
	}
}

// Every identity in order must be in entries and vice versa.
func checkInvariant(t *testing.T, st *Store) {
	t.Helper()
	st.mu.RLock()
	defer st.mu.RUnlock()
	if len(st.order) != len(st.entries) {
		t.Fatalf("order has %d ids, entries has %d", len(st.order), len(st.entries))
	}
	seen := make(map[string]bool, len(st.order))
	for _, id := range st.order {
		if seen[id] {
			t.Fatalf("identity %q appears twice in order", id)
		}
		seen[id] = true
		if _, ok := st.entries[id]; !ok {
			t.Fatalf("identity %q in order but not in entries", id)
		}
	}
}

func TestConcurrentReadersDuringWrites(t *testing.T) {
	st := New()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				for _, e := range st.Ordered() {
					if e.Report.Hostname != e.Identity {
						t.Errorf("torn entry: identity %q hostname %q", e.Identity, e.Report.Hostname)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("h%d", i%25)
		st.Upsert(id, report(id, "1%"), at(int64(i)))
		if i%100 == 0 {
			st.Sweep(at(int64(i)), 50*time.Second)
		}
	}
	close(stop)
	wg.Wait()
	checkInvariant(t, st)
}
