// Package wire defines the SwarmReportService gRPC contract shared by the
// reporter and the sentinel.
//
// Messages are plain Go structs carried with a JSON codec registered under
// the "json" content-subtype, so both sides speak gRPC framing, deadlines,
// status codes and metadata without generated protobuf code. The service
// descriptor, client and server interfaces below follow the shape of
// protoc-gen-go-grpc output.
//
//	SendSystemReport(SystemReport) → ReportResponse
//	GetSwarmReport(SwarmReportRequest) → SwarmReportResponse
package wire
