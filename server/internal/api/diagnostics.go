package api

import (
	"fmt"

	"github.com/swarmreport/swarmreport/pkg/types"
	"github.com/swarmreport/swarmreport/server/internal/freshness"
	"github.com/swarmreport/swarmreport/server/internal/view"
)

// DiagnosticHint is one human-readable insight about a reporter.
// The dashboard shows these as chips on the client row.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short chip label.
	Title string `json:"title"`
	// Detail is the full explanation shown on hover.
	Detail string `json:"detail"`
	// Value is an optional number tied to the hint (seconds, percent, count).
	Value *float64 `json:"value,omitempty"`
}

// CPU thresholds for the load hints.
const (
	cpuWarning  = 75.0
	cpuCritical = 90.0
)

// computeDiagnostics derives hints from a client. Freshness first, then load,
// then services. A client with nothing to report gets a single "ok" hint.
func computeDiagnostics(c view.Client) []DiagnosticHint {
	var hints []DiagnosticHint

	secs := float64(c.SecondsSinceUpdate)
	switch c.Class {
	case freshness.Stale:
		hints = append(hints, DiagnosticHint{
			Key:   "silent",
			Level: "warning",
			Title: "Reporter silent",
			Detail: fmt.Sprintf(
				"No report for %ds. The reporter may be down or unable to reach the sentinel. "+
					"It will be removed once the silence threshold passes.",
				c.SecondsSinceUpdate,
			),
			Value: &secs,
		})
	case freshness.Normal:
		hints = append(hints, DiagnosticHint{
			Key:    "delayed",
			Level:  "info",
			Title:  "Reports delayed",
			Detail: fmt.Sprintf("Last report %ds ago. Reporters normally push every half second.", c.SecondsSinceUpdate),
			Value:  &secs,
		})
	}

	if cpu := types.ParseCPUUsage(c.Report.CPUUsage); cpu >= cpuWarning {
		level, title := "warning", fmt.Sprintf("CPU %.0f%%", cpu)
		if cpu >= cpuCritical {
			level = "critical"
		}
		hints = append(hints, DiagnosticHint{
			Key:    "cpu_load",
			Level:  level,
			Title:  title,
			Detail: fmt.Sprintf("CPU usage is %.1f%% on %s.", cpu, c.Report.Hostname),
			Value:  &cpu,
		})
	}

	var stopped, outdated []string
	for _, s := range c.Report.Services {
		if s.State() == types.ServiceStopped {
			stopped = append(stopped, s.Name)
		}
		if s.NeedsUpdate {
			outdated = append(outdated, s.Name)
		}
	}
	if n := float64(len(stopped)); n > 0 {
		hints = append(hints, DiagnosticHint{
			Key:    "services_stopped",
			Level:  "warning",
			Title:  fmt.Sprintf("%d stopped", len(stopped)),
			Detail: fmt.Sprintf("Stopped services: %v.", stopped),
			Value:  &n,
		})
	}
	if n := float64(len(outdated)); n > 0 {
		hints = append(hints, DiagnosticHint{
			Key:    "services_outdated",
			Level:  "info",
			Title:  fmt.Sprintf("%d need update", len(outdated)),
			Detail: fmt.Sprintf("Services with a newer image available: %v.", outdated),
			Value:  &n,
		})
	}

	if len(hints) == 0 {
		hints = append(hints, DiagnosticHint{
			Key:    "healthy",
			Level:  "ok",
			Title:  "All clear",
			Detail: "Reporting on time with no stopped or outdated services.",
		})
	}
	return hints
}
