// Package receiver implements wire.SwarmReportServiceServer, the gRPC
// endpoint reporters push SystemReports to.
//
// SendSystemReport rejects a report carrying neither hostname nor node_id
// (codes.InvalidArgument). Every other report is keyed by its identity,
// stamped with the sentinel's receipt time and published to the ingress
// queue. The call succeeds even when the queue later drops the report.
//
// GetSwarmReport answers with the reports currently held, in first-seen order.
//
// UnaryLogger is a server interceptor that logs every RPC with slog.
package receiver
