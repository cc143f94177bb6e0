package metric

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}
	if r.RequestsTotal == nil || r.RequestDuration == nil {
		t.Error("gateway metrics are nil")
	}
	if r.RenewalsTotal == nil || r.ForcedSignOutsTotal == nil || r.SignInsTotal == nil {
		t.Error("session metrics are nil")
	}
}

func TestObserveRequest(t *testing.T) {
	r := NewRegistry()

	r.ObserveRequest("GET", OutcomeOK, 10*time.Millisecond)
	r.ObserveRequest("GET", OutcomeOK, 20*time.Millisecond)
	r.ObserveRequest("POST", OutcomeUnauthorized, time.Millisecond)

	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("GET", OutcomeOK)); got != 2 {
		t.Errorf("GET ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("POST", OutcomeUnauthorized)); got != 1 {
		t.Errorf("POST unauthorized = %v, want 1", got)
	}
}

func TestSessionCounters(t *testing.T) {
	r := NewRegistry()

	r.IncRenewal("success")
	r.IncRenewal("failure")
	r.IncRenewal("success")
	r.IncForcedSignOut("renewal_failed")
	r.IncSignIn("login", true)
	r.IncSignIn("login", false)

	if got := testutil.ToFloat64(r.RenewalsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("renewals success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.ForcedSignOutsTotal.WithLabelValues("renewal_failed")); got != 1 {
		t.Errorf("forced signouts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.SignInsTotal.WithLabelValues("login", "failure")); got != 1 {
		t.Errorf("signins failure = %v, want 1", got)
	}
}

func TestOutcomeForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, OutcomeOK},
		{201, OutcomeOK},
		{400, OutcomeClientError},
		{401, OutcomeUnauthorized},
		{403, OutcomeClientError},
		{500, OutcomeServerError},
		{503, OutcomeServerError},
	}

	for _, tt := range tests {
		if got := OutcomeForStatus(tt.status); got != tt.want {
			t.Errorf("OutcomeForStatus(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestSnapshot(t *testing.T) {
	r := NewRegistry()
	r.ObserveRequest("GET", OutcomeOK, time.Millisecond)
	r.IncRenewal("success")

	samples, err := r.Snapshot("hostdeck_")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	found := map[string]float64{}
	for _, s := range samples {
		found[s.Name+"{"+s.Labels+"}"] = s.Value
	}

	if found["hostdeck_gateway_requests_total{method=GET,outcome=ok}"] != 1 {
		t.Errorf("requests sample missing: %v", found)
	}
	if found["hostdeck_gateway_request_duration_seconds{method=GET}"] != 1 {
		t.Errorf("histogram sample count missing: %v", found)
	}
	if found["hostdeck_session_renewals_total{result=success}"] != 1 {
		t.Errorf("renewal sample missing: %v", found)
	}
	for _, s := range samples {
		if s.Name[:9] != "hostdeck_" {
			t.Errorf("prefix filter leaked %q", s.Name)
		}
	}

	for i := 1; i < len(samples); i++ {
		if samples[i-1].Name > samples[i].Name {
			t.Fatal("samples should be sorted by name")
		}
	}
}

func TestSessionCollector(t *testing.T) {
	var authed bool
	var role string
	c := NewSessionCollector(func() (bool, string) { return authed, role })

	r := NewRegistry()
	r.Registerer().MustRegister(c)

	value := func(name string) float64 {
		samples, err := r.Snapshot(name)
		if err != nil || len(samples) != 1 {
			t.Fatalf("Snapshot(%q) = %v, %v", name, samples, err)
		}
		return samples[0].Value
	}

	if value("hostdeck_session_authenticated") != 0 {
		t.Error("signed-out session should report 0")
	}

	authed, role = true, "admin"
	if value("hostdeck_session_authenticated") != 1 || value("hostdeck_session_admin") != 1 {
		t.Error("admin session should report 1/1")
	}

	role = "user"
	if value("hostdeck_session_admin") != 0 {
		t.Error("user session should not report admin")
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.ObserveRequest("GET", OutcomeOK, time.Millisecond)
			r.IncRenewal("shared")
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("GET", OutcomeOK)); got != 100 {
		t.Errorf("requests = %v, want 100", got)
	}
}
