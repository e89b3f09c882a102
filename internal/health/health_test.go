package health

import (
	"context"
	"testing"
	"time"
)

// mockChecker is a test double for health checks
type mockChecker struct {
	name   string
	result *Result
	delay  time.Duration
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) *Result {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Unhealthy("check cancelled").WithDetail("error", ctx.Err().Error())
		}
	}
	return m.result
}

func TestResultBuilders(t *testing.T) {
	r := Degraded("slow").
		WithDetail("a", 1).
		WithDetails(map[string]any{"b": "two"}).
		WithLatency(time.Millisecond)

	if r.Status != StatusDegraded || r.Message != "slow" {
		t.Fatalf("unexpected result %+v", r)
	}
	if r.Details["a"] != 1 || r.Details["b"] != "two" {
		t.Errorf("details = %v", r.Details)
	}
	if r.Latency != time.Millisecond {
		t.Errorf("latency = %v", r.Latency)
	}
}

func TestManagerRegistration(t *testing.T) {
	m := NewManager()
	m.AddChecker(&mockChecker{name: "a", result: Healthy("ok")})
	m.AddChecker(&mockChecker{name: "b", result: Healthy("ok")})
	m.AddChecker(&mockChecker{name: "a", result: Degraded("replaced")})

	if m.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", m.Count())
	}
	names := m.CheckNames()
	if names[0] != "a" || names[1] != "b" {
		t.Errorf("CheckNames() = %v", names)
	}

	results := m.Check(context.Background())
	if results["a"].Message != "replaced" {
		t.Errorf("same-name checker should replace, got %q", results["a"].Message)
	}

	if !m.RemoveChecker("a") {
		t.Error("RemoveChecker(a) = false")
	}
	if m.RemoveChecker("missing") {
		t.Error("RemoveChecker(missing) = true")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestManagerCheckTimeout(t *testing.T) {
	m := NewManager().WithTimeout(20 * time.Millisecond)
	m.AddChecker(&mockChecker{name: "slow", result: Healthy("late"), delay: time.Second})
	m.AddChecker(&mockChecker{name: "nil"})

	results := m.Check(context.Background())

	if results["slow"].Status != StatusUnhealthy {
		t.Errorf("slow check status = %s, want unhealthy", results["slow"].Status)
	}
	if results["slow"].Latency == 0 {
		t.Error("latency should be recorded")
	}
	if results["nil"].Status != StatusUnhealthy {
		t.Errorf("nil result status = %s, want unhealthy", results["nil"].Status)
	}
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]*Result
		want    Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", map[string]*Result{"a": Healthy(""), "b": Healthy("")}, StatusHealthy},
		{"one degraded", map[string]*Result{"a": Healthy(""), "b": Degraded("")}, StatusDegraded},
		{"unhealthy wins", map[string]*Result{"a": Degraded(""), "b": Unhealthy("")}, StatusUnhealthy},
	}

	m := NewManager()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestProbes(t *testing.T) {
	ctx := context.Background()
	pm := NewProbeManager("1.2.3")
	pm.AddChecker(&mockChecker{name: "data", result: Degraded("root missing")})

	if got := pm.CheckStartup(ctx).Status; got != StatusUnhealthy {
		t.Errorf("startup before init = %s", got)
	}
	pm.MarkInitialized()
	if got := pm.CheckStartup(ctx).Status; got != StatusHealthy {
		t.Errorf("startup after init = %s", got)
	}

	ready := pm.CheckReadiness(ctx)
	if ready.Status != StatusDegraded {
		t.Errorf("readiness = %s, want degraded", ready.Status)
	}
	if ready.Version != "1.2.3" || ready.Checks["data"] == nil {
		t.Errorf("readiness result = %+v", ready)
	}
	if got := pm.CheckLiveness(ctx).Status; got != StatusHealthy {
		t.Errorf("liveness = %s", got)
	}

	pm.MarkShutdown()
	if got := pm.CheckReadiness(ctx).Status; got != StatusUnhealthy {
		t.Errorf("readiness during shutdown = %s", got)
	}
	if got := pm.CheckLiveness(ctx).Status; got != StatusDegraded {
		t.Errorf("liveness during shutdown = %s", got)
	}
	if pm.Uptime() < 0 {
		t.Error("uptime is negative")
	}
}
