package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarmreport/swarmreport/pkg/types"
	"github.com/swarmreport/swarmreport/server/internal/store"
	"github.com/swarmreport/swarmreport/server/internal/view"
)

var now = time.Unix(1_700_000_000, 0)

func newFixture(hosts ...string) (*store.Store, *Model) {
	st := store.New()
	for i, h := range hosts {
		st.Upsert(h, types.SystemReport{
			Hostname:    h,
			IPAddress:   "10.0.0.1",
			CPUUsage:    "20%",
			MemoryUsage: "1.0/2.0 GB",
			Services:    []types.Service{{Name: "nginx", Status: "running"}, {Name: "redis", Status: "exited", NeedsUpdate: true}},
		}, now.Add(-time.Duration(i*15)*time.Second))
	}
	v := view.New(st).WithClock(func() time.Time { return now })
	m := New(v, time.Second)
	m.Init()
	return st, m
}

func press(m *Model, k string) {
	var msg tea.KeyMsg
	switch k {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "f5":
		msg = tea.KeyMsg{Type: tea.KeyF5}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	m.Update(msg)
}

func selectedHost(t *testing.T, m *Model) string {
	t.Helper()
	c, ok := m.Selected()
	require.True(t, ok)
	return c.Report.Hostname
}

func TestNavigation_Bounded(t *testing.T) {
	_, m := newFixture("a", "b", "c")

	assert.Equal(t, "a", selectedHost(t, m))
	press(m, "up")
	assert.Equal(t, "a", selectedHost(t, m))

	press(m, "j")
	press(m, "down")
	assert.Equal(t, "c", selectedHost(t, m))
	press(m, "down")
	assert.Equal(t, "c", selectedHost(t, m))

	press(m, "k")
	assert.Equal(t, "b", selectedHost(t, m))
}

func TestNavigation_EmptyDoesNothing(t *testing.T) {
	_, m := newFixture()
	press(m, "down")
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		_, m := newFixture("a")
		var msg tea.KeyMsg
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd, k)
		assert.IsType(t, tea.QuitMsg{}, cmd(), k)
	}
}

func TestTick_ReloadsAndReschedules(t *testing.T) {
	st, m := newFixture("a")
	st.Upsert("b", types.SystemReport{Hostname: "b"}, now)

	_, cmd := m.Update(tickMsg(now))
	assert.NotNil(t, cmd)
	assert.Len(t, m.snap.Clients, 2)
}

func TestRefreshKey_Reloads(t *testing.T) {
	st, m := newFixture("a")
	st.Upsert("b", types.SystemReport{Hostname: "b"}, now)

	press(m, "r")
	assert.Len(t, m.snap.Clients, 2)

	st.Upsert("c", types.SystemReport{Hostname: "c"}, now)
	press(m, "f5")
	assert.Len(t, m.snap.Clients, 3)
}

func TestReload_SelectionFollowsIdentity(t *testing.T) {
	st, m := newFixture("a", "b", "c")
	press(m, "down")
	press(m, "down")
	require.Equal(t, "c", selectedHost(t, m))

	// a is 0s old, b 15s, c 30s; a 20s threshold evicts only c.
	st.Sweep(now, 20*time.Second)
	press(m, "r")
	assert.Equal(t, "b", selectedHost(t, m))
}

func TestReload_EvictionAheadOfCursor(t *testing.T) {
	st := store.New()
	st.Upsert("a", types.SystemReport{Hostname: "a"}, now.Add(-time.Minute))
	st.Upsert("b", types.SystemReport{Hostname: "b"}, now)
	m := New(view.New(st).WithClock(func() time.Time { return now }), time.Second)
	m.Init()

	press(m, "down")
	require.Equal(t, "b", selectedHost(t, m))

	st.Sweep(now, 30*time.Second)
	press(m, "r")
	assert.Equal(t, "b", selectedHost(t, m))
	assert.Equal(t, 0, m.selected)
}

func TestView_Panels(t *testing.T) {
	_, m := newFixture("alpha", "beta", "gamma", "delta")
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})

	out := m.View()
	for _, want := range []string{
		"Clients (4)",
		"alpha", "beta",
		"●", "◐", "○",
		"Overview",
		"Client Details - alpha",
		"Services - alpha (2 total)",
		"update available",
		"SwarmReport Sentinel",
		"Clients: 4",
	} {
		assert.Contains(t, out, want)
	}
}

func TestView_Empty(t *testing.T) {
	_, m := newFixture()
	out := m.View()
	assert.Contains(t, out, "No clients connected")
	assert.Contains(t, out, "No client selected")
}

func TestView_FitsHeight(t *testing.T) {
	hosts := make([]string, 50)
	for i := range hosts {
		hosts[i] = string(rune('a'+i%26)) + strings.Repeat("x", i/26)
	}
	_, m := newFixture(hosts...)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	for i := 0; i < 45; i++ {
		press(m, "down")
	}

	out := m.View()
	assert.LessOrEqual(t, strings.Count(out, "\n")+1, 30)
	assert.Contains(t, out, "► ")
}

func TestGauge(t *testing.T) {
	_, m := newFixture()
	g := m.gauge(50, 10)
	assert.Equal(t, 5, strings.Count(g, "█"))
	assert.Equal(t, 5, strings.Count(g, "░"))
	assert.Contains(t, g, "50.0%")

	assert.Equal(t, 10, strings.Count(m.gauge(150, 10), "█"))
}
