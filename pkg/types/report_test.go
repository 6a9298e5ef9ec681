package types

import "testing"

func TestParseCPUUsage(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"45.2%", 45.2},
		{" 10% ", 10},
		{"0.0%", 0},
		{"99", 99},
		{"", 0},
		{"n/a", 0},
		{"%", 0},
	}
	for _, c := range cases {
		if got := ParseCPUUsage(c.in); got != c.want {
			t.Errorf("ParseCPUUsage(%q): got %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseServiceStatus(t *testing.T) {
	cases := map[string]ServiceStatus{
		"running": ServiceRunning,
		"Running": ServiceRunning,
		"stopped": ServiceStopped,
		"exited":  ServiceStopped,
		"":        ServiceUnknown,
		"paused":  ServiceUnknown,
	}
	for in, want := range cases {
		if got := ParseServiceStatus(in); got != want {
			t.Errorf("ParseServiceStatus(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestIdentity(t *testing.T) {
	r := SystemReport{NodeID: "tok-1", Hostname: "h1", IPAddress: "10.0.0.1"}

	if got := Identity(r, IdentityHostAddr); got != "h1:10.0.0.1" {
		t.Errorf("host_addr: got %q", got)
	}
	if got := Identity(r, IdentityNodeID); got != "tok-1" {
		t.Errorf("node_id: got %q", got)
	}

	r.NodeID = ""
	if got := Identity(r, IdentityNodeID); got != "h1:10.0.0.1" {
		t.Errorf("node_id fallback: got %q", got)
	}
}

func TestParseIdentityMode(t *testing.T) {
	if m, err := ParseIdentityMode(""); err != nil || m != IdentityHostAddr {
		t.Errorf("empty: got %q, %v", m, err)
	}
	if m, err := ParseIdentityMode("node_id"); err != nil || m != IdentityNodeID {
		t.Errorf("node_id: got %q, %v", m, err)
	}
	if _, err := ParseIdentityMode("mac"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestClone_DoesNotShareServices(t *testing.T) {
	r := SystemReport{Services: []Service{{Name: "nginx", Status: "running"}}}
	c := r.Clone()
	c.Services[0].Status = "stopped"
	if r.Services[0].Status != "running" {
		t.Error("Clone shared the services slice")
	}
}
