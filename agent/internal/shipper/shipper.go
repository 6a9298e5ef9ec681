package shipper

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/swarmreport/swarmreport/agent/internal/config"
	"github.com/swarmreport/swarmreport/pkg/types"
	"github.com/swarmreport/swarmreport/pkg/wire"
)

const (
	retryBase   = time.Second
	retryCap    = time.Minute
	maxShift    = 6
	callTimeout = 5 * time.Second
)

// Shipper buffers SystemReports and ships them to the sentinel.
type Shipper struct {
	cfg     config.ReporterConfig
	buf     chan types.SystemReport
	dialFn  dialFunc
	dropped atomic.Uint64
	sent    atomic.Uint64
}

// dialFunc opens a client connection to endpoint.
type dialFunc func(ctx context.Context, endpoint string) (*grpc.ClientConn, error)

// New creates a Shipper using the given reporter config.
func New(cfg config.ReporterConfig) *Shipper {
	size := cfg.BufferSize
	if size <= 0 {
		size = config.DefaultBufferSize
	}
	return &Shipper{
		cfg:    cfg,
		buf:    make(chan types.SystemReport, size),
		dialFn: defaultDial,
	}
}

// Ship enqueues r. If the buffer is full the oldest report is dropped.
func (s *Shipper) Ship(r types.SystemReport) {
	for {
		select {
		case s.buf <- r:
			return
		default:
		}
		select {
		case <-s.buf:
			s.dropped.Add(1)
			slog.Debug("shipper: buffer full, dropped oldest report", "buffer_cap", cap(s.buf))
		default:
		}
	}
}

// Dropped returns how many reports were dropped because the buffer was full.
func (s *Shipper) Dropped() uint64 { return s.dropped.Load() }

// Sent returns how many reports the sentinel accepted.
func (s *Shipper) Sent() uint64 { return s.sent.Load() }

// Run delivers buffered reports to the sentinel until ctx is done. A failed
// dial or a broken session is retried after an increasing, jittered delay.
func (s *Shipper) Run(ctx context.Context) {
	var r retry
	for ctx.Err() == nil {
		err := s.session(ctx, &r)
		if ctx.Err() != nil {
			return
		}
		delay := r.delay()
		slog.Warn("shipper: sentinel unreachable",
			"endpoint", s.cfg.ServerEndpoint,
			"attempt", r.attempts,
			"err", err,
			"retry_in", delay)
		if !sleep(ctx, delay) {
			return
		}
	}
}

// session dials once and drains until the connection fails.
func (s *Shipper) session(ctx context.Context, r *retry) error {
	conn, err := s.dialFn(ctx, s.cfg.ServerEndpoint)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	slog.Info("shipper: session open", "endpoint", s.cfg.ServerEndpoint)
	return s.drain(ctx, conn, r)
}

// drain sends buffered reports until a transient failure or ctx ends.
func (s *Shipper) drain(ctx context.Context, conn *grpc.ClientConn, r *retry) error {
	client := wire.NewSwarmReportServiceClient(conn)

	var query <-chan time.Time
	if s.cfg.SwarmQueryInterval > 0 {
		t := time.NewTicker(s.cfg.SwarmQueryInterval)
		defer t.Stop()
		query = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-query:
			s.querySwarm(ctx, client)

		case rep := <-s.buf:
			callCtx, done := context.WithTimeout(ctx, callTimeout)
			resp, err := client.SendSystemReport(callCtx, &rep)
			done()

			switch {
			case err == nil:
			case refused(err):
				slog.Error("shipper: sentinel refused report, discarding",
					"hostname", rep.Hostname, "err", err)
				continue
			default:
				// Requeue only when nothing newer is waiting.
				if len(s.buf) == 0 {
					select {
					case s.buf <- rep:
					default:
					}
				}
				return fmt.Errorf("send: %w", err)
			}

			r.succeeded()
			s.sent.Add(1)
			if !resp.Success {
				slog.Warn("shipper: sentinel rejected report", "message", resp.Message)
			} else {
				slog.Debug("shipper: report delivered", "message", resp.Message)
			}
		}
	}
}

func (s *Shipper) querySwarm(ctx context.Context, client wire.SwarmReportServiceClient) {
	qctx, done := context.WithTimeout(ctx, callTimeout)
	defer done()

	resp, err := client.GetSwarmReport(qctx, &wire.SwarmReportRequest{})
	if err != nil {
		slog.Warn("shipper: swarm query failed", "err", err)
		return
	}
	hosts := make([]string, 0, len(resp.Reports))
	for _, r := range resp.Reports {
		hosts = append(hosts, r.Hostname)
	}
	slog.Info("shipper: swarm view", "reporters", len(resp.Reports), "hosts", hosts)
}

// refused reports whether the sentinel rejected the report itself, so
// resending it cannot succeed.
func refused(err error) bool {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.Unimplemented:
		return true
	}
	return false
}

// defaultDial creates a plaintext client for endpoint. Connecting is lazy;
// failures surface on the first RPC.
func defaultDial(_ context.Context, endpoint string) (*grpc.ClientConn, error) {
	return grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retry tracks consecutive failures and yields capped exponential delays
// with +/-25% jitter.
type retry struct {
	attempts int
}

func (r *retry) delay() time.Duration {
	r.attempts++
	d := retryBase << min(r.attempts-1, maxShift)
	if d > retryCap {
		d = retryCap
	}
	spread := float64(d) * 0.25 * (2*rand.Float64() - 1) //nolint:gosec // jitter only
	return d + time.Duration(spread)
}

func (r *retry) succeeded() { r.attempts = 0 }
