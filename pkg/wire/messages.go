package wire

import "github.com/swarmreport/swarmreport/pkg/types"

// SystemReport is the request body of SendSystemReport.
type SystemReport = types.SystemReport

// Service is one entry of SystemReport.Services.
type Service = types.Service

// ReportResponse acknowledges a SendSystemReport call.
type ReportResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// SwarmReportRequest asks the sentinel for the reports it currently holds.
type SwarmReportRequest struct{}

// SwarmReportResponse carries the sentinel's ordered view of the swarm.
type SwarmReportResponse struct {
	Reports []SystemReport `json:"reports"`
	Message string         `json:"message"`
}
