package probe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/swarmreport/swarmreport/pkg/types"
)

// Unknown stands in for any value that could not be read.
const Unknown = "unknown"

// gb is the unit used for memory and disk figures.
const gb = 1024.0 * 1024.0 * 1000.0

// Runner executes an external command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Prober collects SystemReports for one host.
type Prober struct {
	nodeID string
	run    Runner
	// outbound returns the local address used to reach the outside world.
	outbound func() (string, error)
}

// New creates a Prober that stamps every report with nodeID.
func New(nodeID string) *Prober {
	return &Prober{nodeID: nodeID, run: execRunner, outbound: outboundIP}
}

// WithRunner replaces the command runner used for tailscale and docker.
func (p *Prober) WithRunner(r Runner) *Prober {
	p.run = r
	return p
}

// Collect gathers a complete report.
func (p *Prober) Collect(ctx context.Context) types.SystemReport {
	return types.SystemReport{
		NodeID:      p.nodeID,
		Hostname:    Hostname(ctx),
		IPAddress:   p.ipAddress(ctx),
		CPUUsage:    cpuUsage(ctx),
		MemoryUsage: memoryUsage(ctx),
		DiskUsage:   diskUsage(ctx),
		Services:    p.services(ctx),
	}
}

// Hostname returns the host name, or Unknown.
func Hostname(ctx context.Context) string {
	if info, err := host.InfoWithContext(ctx); err == nil && info.Hostname != "" {
		return info.Hostname
	}
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return Unknown
}

// Platform returns the OS platform name and version.
func Platform(ctx context.Context) (string, string) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return Unknown, Unknown
	}
	return info.Platform, info.PlatformVersion
}

func cpuUsage(ctx context.Context) string {
	// Interval 0 measures against the previous call, so the probe never blocks.
	pct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil || len(pct) == 0 {
		slog.Debug("probe: cpu percent unavailable", "err", err)
		return Unknown
	}
	return fmt.Sprintf("%.1f%%", pct[0])
}

func memoryUsage(ctx context.Context) string {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		slog.Debug("probe: virtual memory unavailable", "err", err)
		return Unknown
	}
	return FormatMemory(vm.Used, vm.Total)
}

func diskUsage(ctx context.Context) string {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil || len(parts) == 0 {
		slog.Debug("probe: partitions unavailable", "err", err)
		return Unknown
	}

	var total, free float64
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		if seen[part.Device] {
			continue
		}
		seen[part.Device] = true

		u, err := disk.UsageWithContext(ctx, part.Mountpoint)
		if err != nil || u.Total == 0 {
			continue
		}
		total += float64(u.Total)
		free += float64(u.Free)
	}
	if total == 0 {
		return Unknown
	}
	return FormatStorage(total-free) + " / " + FormatStorage(total)
}

// FormatMemory renders used and total bytes as "used/total GB", used with one
// decimal and total rounded to a whole number.
func FormatMemory(used, total uint64) string {
	return fmt.Sprintf("%.1f/%s GB",
		float64(used)/gb,
		strconv.FormatFloat(math.Round(float64(total)/gb), 'f', -1, 64))
}

// FormatStorage renders a byte count in GB, or TB above 1000 GB.
func FormatStorage(bytes float64) string {
	const tb = gb * 1000
	if bytes > tb {
		return fmt.Sprintf("%.2f TB", bytes/tb)
	}
	return fmt.Sprintf("%.2f GB", bytes/gb)
}

// ipAddress prefers the tailscale address, then the outbound route address.
func (p *Prober) ipAddress(ctx context.Context) string {
	if out, err := p.run(ctx, "tailscale", "ip"); err == nil {
		if ip := firstLine(out); ip != "" {
			return ip
		}
	}
	if ip, err := p.outbound(); err == nil {
		return ip
	}
	return Unknown
}

// outboundIP asks the kernel which local address routes to a public host.
// UDP dial sends no packets.
func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

// services lists docker containers. No docker means no services.
func (p *Prober) services(ctx context.Context) []types.Service {
	out, err := p.run(ctx, "docker", "ps", "-a", "--format", "{{.Names}}\t{{.State}}")
	if err != nil {
		slog.Debug("probe: docker unavailable", "err", err)
		return []types.Service{}
	}
	return ParseDockerPS(out)
}

// ParseDockerPS parses `docker ps --format "{{.Names}}\t{{.State}}"` output.
// Known states are normalized to running/stopped; others pass through.
func ParseDockerPS(out []byte) []types.Service {
	svcs := []types.Service{}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		name, state, ok := strings.Cut(strings.TrimSpace(sc.Text()), "\t")
		if !ok || name == "" {
			continue
		}
		state = strings.ToLower(strings.TrimSpace(state))
		if st := types.ParseServiceStatus(state); st != types.ServiceUnknown {
			state = st.String()
		}
		svcs = append(svcs, types.Service{Name: name, Status: state})
	}
	return svcs
}

func firstLine(b []byte) string {
	line, _, _ := strings.Cut(string(b), "\n")
	return strings.TrimSpace(line)
}
