package view

import (
	"strings"

	"github.com/swarmreport/swarmreport/pkg/types"
	"github.com/swarmreport/swarmreport/server/internal/freshness"
)

// WebClient is the status-annotated export format served to the dashboard.
type WebClient struct {
	Identity           string          `json:"identity"`
	Hostname           string          `json:"hostname"`
	IPAddress          string          `json:"ip_address"`
	NodeID             string          `json:"node_id"`
	CPUUsage           float64         `json:"cpu_usage"`
	MemoryUsage        string          `json:"memory_usage"`
	DiskUsage          string          `json:"disk_usage"`
	LastUpdated        int64           `json:"last_updated"` // unix seconds
	SecondsSinceUpdate int64           `json:"seconds_since_update"`
	Status             freshness.Class `json:"status"`
	Services           []WebService    `json:"services"`
}

// WebService is one service inside a WebClient. Status is the normalized
// running|stopped|unknown; State carries the reporter's own wording when
// normalizing lost it (paused, restarting).
type WebService struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	State       string `json:"state,omitempty"`
	NeedsUpdate bool   `json:"needs_update"`
}

// Export converts a client to its export form.
func Export(c Client) WebClient {
	svcs := make([]WebService, 0, len(c.Report.Services))
	for _, s := range c.Report.Services {
		ws := WebService{
			Name:        s.Name,
			Status:      s.State().String(),
			NeedsUpdate: s.NeedsUpdate,
		}
		if raw := strings.TrimSpace(s.Status); !strings.EqualFold(raw, ws.Status) {
			ws.State = raw
		}
		svcs = append(svcs, ws)
	}
	return WebClient{
		Identity:           c.Identity,
		Hostname:           c.Report.Hostname,
		IPAddress:          c.Report.IPAddress,
		NodeID:             c.Report.NodeID,
		CPUUsage:           types.ParseCPUUsage(c.Report.CPUUsage),
		MemoryUsage:        c.Report.MemoryUsage,
		DiskUsage:          c.Report.DiskUsage,
		LastUpdated:        c.LastUpdated.Unix(),
		SecondsSinceUpdate: c.SecondsSinceUpdate,
		Status:             c.Class,
		Services:           svcs,
	}
}

// ExportAll converts every client of s, preserving order. The result is never nil.
func ExportAll(s Snapshot) []WebClient {
	out := make([]WebClient, 0, len(s.Clients))
	for _, c := range s.Clients {
		out = append(out, Export(c))
	}
	return out
}
