package view

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarmreport/swarmreport/pkg/types"
	"github.com/swarmreport/swarmreport/server/internal/freshness"
	"github.com/swarmreport/swarmreport/server/internal/store"
)

func fixedClock(sec int64) func() time.Time {
	return func() time.Time { return time.Unix(sec, 0) }
}

// scenario builds h1(10%) and h2(20%) at t=100, then h1(15%) at t=105.
func scenario() *store.Store {
	st := store.New()
	st.Upsert("h1", types.SystemReport{Hostname: "h1", CPUUsage: "10%"}, time.Unix(100, 0))
	st.Upsert("h2", types.SystemReport{Hostname: "h2", CPUUsage: "20%"}, time.Unix(100, 0))
	st.Upsert("h1", types.SystemReport{Hostname: "h1", CPUUsage: "15%"}, time.Unix(105, 0))
	return st
}

func TestSnapshot_Scenario(t *testing.T) {
	st := scenario()
	assert.Equal(t, 0, st.Sweep(time.Unix(106, 0), 60*time.Second))

	snap := New(st).WithClock(fixedClock(106)).Snapshot()
	require.Len(t, snap.Clients, 2)

	h1, h2 := snap.Clients[0], snap.Clients[1]
	assert.Equal(t, "h1", h1.Identity)
	assert.Equal(t, "h2", h2.Identity)
	assert.Equal(t, "15%", h1.Report.CPUUsage)
	assert.Equal(t, int64(1), h1.SecondsSinceUpdate)
	assert.Equal(t, int64(6), h2.SecondsSinceUpdate)

	// Six seconds is past the 0..4 Recent band.
	assert.Equal(t, freshness.Recent, h1.Class)
	assert.Equal(t, freshness.Normal, h2.Class)

	assert.Equal(t, 2, snap.Summary.Total)
	assert.InDelta(t, 17.5, snap.Summary.AvgCPU, 1e-9)
}

func TestSnapshot_ScenarioEvicted(t *testing.T) {
	st := scenario()
	assert.Equal(t, 2, st.Sweep(time.Unix(200, 0), 60*time.Second))

	v := New(st).WithClock(fixedClock(200))
	snap := v.Snapshot()
	assert.Empty(t, snap.Clients)
	assert.Equal(t, Summary{}, snap.Summary)
	assert.Equal(t, 0, v.Summary().Recent+v.Summary().Normal+v.Summary().Stale)
}

func TestByIndex(t *testing.T) {
	v := New(scenario()).WithClock(fixedClock(106))

	c, ok := v.ByIndex(1)
	require.True(t, ok)
	assert.Equal(t, "h2", c.Identity)

	for _, i := range []int{-1, 2, 100} {
		_, ok := v.ByIndex(i)
		assert.False(t, ok, "index %d", i)
	}
}

func TestByIdentity(t *testing.T) {
	v := New(scenario()).WithClock(fixedClock(106))

	c, ok := v.ByIdentity("h2")
	require.True(t, ok)
	assert.Equal(t, "20%", c.Report.CPUUsage)

	_, ok = v.ByIdentity("nope")
	assert.False(t, ok)
}

func TestSummarize_CountsAndServices(t *testing.T) {
	clients := []Client{
		{Class: freshness.Recent, Report: types.SystemReport{CPUUsage: "40%", Services: []types.Service{
			{Name: "nginx", Status: "running"},
			{Name: "postgres", Status: "stopped", NeedsUpdate: true},
		}}},
		{Class: freshness.Normal, Report: types.SystemReport{CPUUsage: "garbage"}},
		{Class: freshness.Stale, Report: types.SystemReport{CPUUsage: "20%", Services: []types.Service{
			{Name: "redis", Status: "running"},
		}}},
		{Class: freshness.Stale},
	}

	s := Summarize(clients)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Recent)
	assert.Equal(t, 1, s.Normal)
	assert.Equal(t, 2, s.Stale)
	assert.InDelta(t, 15.0, s.AvgCPU, 1e-9)
	assert.Equal(t, 2, s.ServicesRunning)
	assert.Equal(t, 3, s.ServicesTotal)
	assert.Equal(t, 1, s.ServicesNeedingUpdate)

	for _, c := range freshness.Classes() {
		assert.Positive(t, s.Count(c), "class %v", c)
	}
}

func TestSummary_AgreesWithClientClasses(t *testing.T) {
	st := store.New()
	for i, sec := range []int64{100, 98, 90, 70, 60} {
		id := string(rune('a' + i))
		st.Upsert(id, types.SystemReport{Hostname: id}, time.Unix(sec, 0))
	}
	snap := New(st).WithClock(fixedClock(100)).Snapshot()

	counts := map[freshness.Class]int{}
	for _, c := range snap.Clients {
		counts[c.Class]++
	}
	for _, c := range freshness.Classes() {
		assert.Equal(t, counts[c], snap.Summary.Count(c), "class %v", c)
	}
	assert.Equal(t, 2, snap.Summary.Recent)
	assert.Equal(t, 1, snap.Summary.Normal)
	assert.Equal(t, 2, snap.Summary.Stale)
}

func TestExport_Format(t *testing.T) {
	st := store.New()
	st.Upsert("test-host:192.168.1.100", types.SystemReport{
		NodeID:      "test-node-123",
		Hostname:    "test-host",
		IPAddress:   "192.168.1.100",
		CPUUsage:    "45.5%",
		MemoryUsage: "8.5/16 GB",
		DiskUsage:   "120.5 GB / 500.2 GB",
		Services: []types.Service{
			{Name: "nginx", Status: "running"},
			{Name: "postgres", Status: "stopped", NeedsUpdate: true},
		},
	}, time.Unix(1000, 0))

	out := ExportAll(New(st).WithClock(fixedClock(1010)).Snapshot())
	require.Len(t, out, 1)

	b, err := json.Marshal(out[0])
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	assert.Equal(t, "test-host", m["hostname"])
	assert.Equal(t, 45.5, m["cpu_usage"])
	assert.Equal(t, float64(1000), m["last_updated"])
	assert.Equal(t, float64(10), m["seconds_since_update"])
	assert.Equal(t, "normal", m["status"])
	svcs := m["services"].([]any)
	require.Len(t, svcs, 2)
	assert.Equal(t, "stopped", svcs[1].(map[string]any)["status"])
	assert.Equal(t, true, svcs[1].(map[string]any)["needs_update"])
}

func TestExport_KeepsReporterServiceState(t *testing.T) {
	c := Client{Report: types.SystemReport{Services: []types.Service{
		{Name: "worker", Status: "paused"},
		{Name: "cron", Status: "restarting"},
		{Name: "nginx", Status: "running"},
		{Name: "db", Status: "exited"},
	}}}

	svcs := Export(c).Services
	require.Len(t, svcs, 4)
	assert.Equal(t, WebService{Name: "worker", Status: "unknown", State: "paused"}, svcs[0])
	assert.Equal(t, WebService{Name: "cron", Status: "unknown", State: "restarting"}, svcs[1])
	assert.Equal(t, WebService{Name: "nginx", Status: "running"}, svcs[2])
	assert.Equal(t, WebService{Name: "db", Status: "stopped", State: "exited"}, svcs[3])

	b, err := json.Marshal(svcs[2])
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"state"`)
}

func TestExportAll_EmptyIsNotNil(t *testing.T) {
	out := ExportAll(Snapshot{})
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
