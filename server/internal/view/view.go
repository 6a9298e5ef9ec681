package view

import (
	"time"

	"github.com/swarmreport/swarmreport/pkg/types"
	"github.com/swarmreport/swarmreport/server/internal/freshness"
	"github.com/swarmreport/swarmreport/server/internal/store"
)

// Reader is the read side of the store.
type Reader interface {
	Ordered() []store.Entry
}

// Client is one reporter as seen by a consumer at snapshot time.
type Client struct {
	Identity           string
	Report             types.SystemReport
	LastUpdated        time.Time
	SecondsSinceUpdate int64
	Class              freshness.Class
}

// Summary aggregates a snapshot: freshness counts plus figures folded from
// the payloads.
type Summary struct {
	Total                 int     `json:"total"`
	Recent                int     `json:"recent"`
	Normal                int     `json:"normal"`
	Stale                 int     `json:"stale"`
	AvgCPU                float64 `json:"avg_cpu"`
	ServicesRunning       int     `json:"services_running"`
	ServicesTotal         int     `json:"services_total"`
	ServicesNeedingUpdate int     `json:"services_needing_update"`
}

// Count returns the number of clients in class c.
func (s Summary) Count(c freshness.Class) int {
	switch c {
	case freshness.Recent:
		return s.Recent
	case freshness.Normal:
		return s.Normal
	default:
		return s.Stale
	}
}

// Snapshot is a point-in-time, internally consistent copy of the swarm.
type Snapshot struct {
	Clients     []Client
	Summary     Summary
	GeneratedAt time.Time
}

// At returns the client at index i, or false when i is out of range.
func (s Snapshot) At(i int) (Client, bool) {
	if i < 0 || i >= len(s.Clients) {
		return Client{}, false
	}
	return s.Clients[i], true
}

// Find returns the client with the given identity.
func (s Snapshot) Find(identity string) (Client, bool) {
	for _, c := range s.Clients {
		if c.Identity == identity {
			return c, true
		}
	}
	return Client{}, false
}

// View builds snapshots from a Reader.
type View struct {
	src Reader
	now func() time.Time
}

// New creates a View over src using the wall clock.
func New(src Reader) *View {
	return &View{src: src, now: time.Now}
}

// WithClock returns a copy of v that reads time from now.
func (v *View) WithClock(now func() time.Time) *View {
	return &View{src: v.src, now: now}
}

// Snapshot takes one read of the store and derives the ordered clients and
// their summary from it.
func (v *View) Snapshot() Snapshot {
	entries := v.src.Ordered()
	now := v.now()

	clients := make([]Client, 0, len(entries))
	for _, e := range entries {
		secs := freshness.Since(now, e.LastUpdated)
		clients = append(clients, Client{
			Identity:           e.Identity,
			Report:             e.Report,
			LastUpdated:        e.LastUpdated,
			SecondsSinceUpdate: secs,
			Class:              freshness.Classify(secs),
		})
	}
	return Snapshot{
		Clients:     clients,
		Summary:     Summarize(clients),
		GeneratedAt: now,
	}
}

// Ordered returns all clients in first-seen order.
func (v *View) Ordered() []Client {
	return v.Snapshot().Clients
}

// ByIndex returns the client at index i of the ordered list.
func (v *View) ByIndex(i int) (Client, bool) {
	return v.Snapshot().At(i)
}

// ByIdentity returns the client with the given identity.
func (v *View) ByIdentity(identity string) (Client, bool) {
	return v.Snapshot().Find(identity)
}

// Summary returns the aggregate summary of the current state.
func (v *View) Summary() Summary {
	return v.Snapshot().Summary
}

// Summarize folds clients into a Summary in one pass.
func Summarize(clients []Client) Summary {
	var (
		s      Summary
		cpuSum float64
	)
	s.Total = len(clients)
	for _, c := range clients {
		switch c.Class {
		case freshness.Recent:
			s.Recent++
		case freshness.Normal:
			s.Normal++
		case freshness.Stale:
			s.Stale++
		}
		cpuSum += types.ParseCPUUsage(c.Report.CPUUsage)
		for _, svc := range c.Report.Services {
			s.ServicesTotal++
			if svc.State() == types.ServiceRunning {
				s.ServicesRunning++
			}
			if svc.NeedsUpdate {
				s.ServicesNeedingUpdate++
			}
		}
	}
	if s.Total > 0 {
		s.AvgCPU = cpuSum / float64(s.Total)
	}
	return s
}
