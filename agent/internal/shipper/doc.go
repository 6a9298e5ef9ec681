// Package shipper sends SystemReports to the sentinel over gRPC
// (SwarmReportService.SendSystemReport, JSON codec).
//
// Shipper.Ship() never blocks: reports go into an in-memory channel
// (reporter.buffer_size, default 100) and when it is full the oldest report
// is dropped so the newest state always gets through.
//
// Shipper.Run() drains the buffer, reconnecting with truncated exponential
// backoff (1s to 60s, ±25% jitter) on connection or send errors. A report the
// sentinel refuses as invalid is discarded rather than retried. A report that
// fails transiently is requeued only if nothing newer is waiting.
//
// While connected, Run also asks the sentinel for the swarm view every
// reporter.swarm_query_interval and logs how many reporters it holds.
//
// The dialFn field is injectable for tests.
package shipper
