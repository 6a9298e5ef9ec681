// Package types defines the report payload shared by the reporter and the
// sentinel. These are the canonical in-memory representations of a node's
// health report, independent of the gRPC wire encoding.
package types
