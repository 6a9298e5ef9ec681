package receiver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/swarmreport/swarmreport/pkg/types"
	"github.com/swarmreport/swarmreport/pkg/wire"
	"github.com/swarmreport/swarmreport/server/internal/ingress"
	"github.com/swarmreport/swarmreport/server/internal/view"
)

// Publisher accepts reports for the aggregator. *ingress.Queue satisfies it.
type Publisher interface {
	Publish(ingress.Item)
}

// Lister returns the current ordered clients. *view.View satisfies it.
type Lister interface {
	Ordered() []view.Client
}

// Counter is notified of accepted and rejected reports.
type Counter interface {
	Received()
	Rejected()
}

// Receiver implements wire.SwarmReportServiceServer.
type Receiver struct {
	wire.UnimplementedSwarmReportServiceServer

	queue   Publisher
	clients Lister
	mode    types.IdentityMode
	counter Counter
	now     func() time.Time
}

// New creates a Receiver that publishes accepted reports to q and serves
// GetSwarmReport from clients.
func New(q Publisher, clients Lister, mode types.IdentityMode) *Receiver {
	return &Receiver{
		queue:   q,
		clients: clients,
		mode:    mode,
		now:     time.Now,
	}
}

// WithCounter attaches c. A nil counter is ignored.
func (r *Receiver) WithCounter(c Counter) *Receiver {
	r.counter = c
	return r
}

// WithClock replaces the receipt clock.
func (r *Receiver) WithClock(now func() time.Time) *Receiver {
	r.now = now
	return r
}

// SendSystemReport is the unary RPC handler called by reporters.
func (r *Receiver) SendSystemReport(_ context.Context, rep *wire.SystemReport) (*wire.ReportResponse, error) {
	if rep == nil || (rep.Hostname == "" && rep.NodeID == "") {
		if r.counter != nil {
			r.counter.Rejected()
		}
		return nil, status.Error(codes.InvalidArgument, "hostname or node_id is required")
	}

	id := types.Identity(*rep, r.mode)
	r.queue.Publish(ingress.Item{
		Identity:   id,
		Report:     rep.Clone(),
		ReceivedAt: r.now(),
	})
	if r.counter != nil {
		r.counter.Received()
	}

	slog.Debug("receiver: report queued",
		"identity", id,
		"node_id", rep.NodeID,
		"cpu", rep.CPUUsage,
		"services", len(rep.Services),
	)

	return &wire.ReportResponse{
		Message: fmt.Sprintf("report from %s received", rep.Hostname),
		Success: true,
	}, nil
}

// GetSwarmReport returns every live report in first-seen order.
func (r *Receiver) GetSwarmReport(_ context.Context, _ *wire.SwarmReportRequest) (*wire.SwarmReportResponse, error) {
	clients := r.clients.Ordered()
	reports := make([]wire.SystemReport, 0, len(clients))
	for _, c := range clients {
		reports = append(reports, c.Report)
	}
	return &wire.SwarmReportResponse{
		Reports: reports,
		Message: fmt.Sprintf("%d reporters", len(reports)),
	}, nil
}

// UnaryLogger logs each unary RPC with its method, duration and status code.
func UnaryLogger(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "receiver: rpc",
		"method", info.FullMethod,
		"code", code.String(),
		"duration", time.Since(start),
	)
	return resp, err
}
