// Package probe collects the SystemReport a reporter sends each interval.
//
// Host metrics come from gopsutil: global CPU percent, virtual memory and the
// summed usage of every mounted physical partition. The address is the first
// `tailscale ip` result when tailscale is installed, otherwise the local
// address of an outbound route. Services are the host's docker containers
// with their state.
//
// Formats match what the dashboard and terminal display expect:
//
//	cpu_usage     "45.2%"
//	memory_usage  "8.5/16 GB"
//	disk_usage    "120.50 GB / 500.20 GB" (TB above 1000 GB)
//
// A metric that cannot be read is reported as "unknown"; Collect never fails.
package probe
