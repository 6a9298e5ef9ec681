package types

import (
	"strconv"
	"strings"
)

// SystemReport is one reporter's view of its host at a point in time.
// Display fields are preformatted by the reporter ("45.2%", "8.5/16 GB").
type SystemReport struct {
	NodeID      string    `json:"node_id"`
	Hostname    string    `json:"hostname"`
	IPAddress   string    `json:"ip_address"`
	CPUUsage    string    `json:"cpu_usage"`
	MemoryUsage string    `json:"memory_usage"`
	DiskUsage   string    `json:"disk_usage"`
	Services    []Service `json:"services"`
}

// Service is one supervised workload on the reporting node (a container).
type Service struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	NeedsUpdate bool   `json:"needs_update"`
}

// ServiceStatus is the closed set of states a reported service can be in.
type ServiceStatus int

const (
	ServiceUnknown ServiceStatus = iota
	ServiceRunning
	ServiceStopped
)

func (s ServiceStatus) String() string {
	switch s {
	case ServiceRunning:
		return "running"
	case ServiceStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ParseServiceStatus maps a reporter-supplied status string onto ServiceStatus.
// Anything unrecognised is ServiceUnknown.
func ParseServiceStatus(s string) ServiceStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running", "up":
		return ServiceRunning
	case "stopped", "exited", "dead", "down":
		return ServiceStopped
	default:
		return ServiceUnknown
	}
}

// State returns the parsed status of the service.
func (s Service) State() ServiceStatus { return ParseServiceStatus(s.Status) }

// ParseCPUUsage converts a CPU usage string such as "45.2%" into 45.2.
// Malformed input yields 0 so a partially valid report is still usable.
func ParseCPUUsage(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 64)
	if err != nil {
		return 0
	}
	return v
}

// Clone returns a deep copy of r. The services slice is not shared.
func (r SystemReport) Clone() SystemReport {
	out := r
	if r.Services != nil {
		out.Services = make([]Service, len(r.Services))
		copy(out.Services, r.Services)
	}
	return out
}
