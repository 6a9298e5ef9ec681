package types

import "fmt"

// IdentityMode selects which report attributes form a reporter's identity.
type IdentityMode string

const (
	// IdentityHostAddr keys reporters by hostname and IP address. A node whose
	// address changes shows up as a new reporter; the old entry ages out.
	IdentityHostAddr IdentityMode = "host_addr"

	// IdentityNodeID keys reporters by the node-local token they send, falling
	// back to IdentityHostAddr for reports without one.
	IdentityNodeID IdentityMode = "node_id"
)

// ParseIdentityMode validates s. The empty string selects IdentityHostAddr.
func ParseIdentityMode(s string) (IdentityMode, error) {
	switch IdentityMode(s) {
	case "", IdentityHostAddr:
		return IdentityHostAddr, nil
	case IdentityNodeID:
		return IdentityNodeID, nil
	default:
		return "", fmt.Errorf("unknown identity mode %q: want host_addr|node_id", s)
	}
}

// Identity derives the deterministic key for r under mode.
func Identity(r SystemReport, mode IdentityMode) string {
	if mode == IdentityNodeID && r.NodeID != "" {
		return r.NodeID
	}
	return r.Hostname + ":" + r.IPAddress
}
