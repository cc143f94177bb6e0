package metric

import (
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "hostdeck"

// Outcome labels for gateway requests.
const (
	OutcomeOK           = "ok"
	OutcomeClientError  = "client_error"
	OutcomeServerError  = "server_error"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNetworkError = "network_error"
	OutcomeTimeout      = "timeout"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Gateway metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session lifecycle metrics
	RenewalsTotal       *prometheus.CounterVec
	ForcedSignOutsTotal *prometheus.CounterVec
	SignInsTotal        *prometheus.CounterVec
}

// NewRegistry creates a registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Outbound requests by method and outcome.",
		}, []string{"method", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Outbound request latency.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		RenewalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "renewals_total",
			Help:      "Credential renewal attempts by result.",
		}, []string{"result"}),
		ForcedSignOutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "forced_signouts_total",
			Help:      "Sessions cleared by the gateway, by reason.",
		}, []string{"reason"}),
		SignInsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "signins_total",
			Help:      "Sign-in and sign-up attempts by operation and result.",
		}, []string{"op", "result"}),
	}

	reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.RenewalsTotal,
		r.ForcedSignOutsTotal,
		r.SignInsTotal,
		collectors.NewGoCollector(),
	)
	return r
}

// Registerer exposes the underlying registerer for components that
// register their own collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer exposes the underlying gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveRequest records one gateway round trip.
func (r *Registry) ObserveRequest(method, outcome string, d time.Duration) {
	r.RequestsTotal.WithLabelValues(method, outcome).Inc()
	r.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// IncRenewal records a renewal attempt.
func (r *Registry) IncRenewal(result string) {
	r.RenewalsTotal.WithLabelValues(result).Inc()
}

// IncForcedSignOut records a gateway-initiated sign-out.
func (r *Registry) IncForcedSignOut(reason string) {
	r.ForcedSignOutsTotal.WithLabelValues(reason).Inc()
}

// IncSignIn records a facade sign-in or sign-up attempt.
func (r *Registry) IncSignIn(op string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	r.SignInsTotal.WithLabelValues(op, result).Inc()
}

// OutcomeForStatus maps an HTTP status code to an outcome label.
func OutcomeForStatus(status int) string {
	switch {
	case status == 401:
		return OutcomeUnauthorized
	case status >= 500:
		return OutcomeServerError
	case status >= 400:
		return OutcomeClientError
	default:
		return OutcomeOK
	}
}

// Sample is one flattened metric value.
type Sample struct {
	Name   string  `json:"name" yaml:"name"`
	Labels string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Value  float64 `json:"value" yaml:"value"`
}

// Snapshot gathers the registry into flat samples sorted by name.
// Histograms are reported as their sample count. When prefix is not
// empty only metrics whose name starts with it are returned.
func (r *Registry) Snapshot(prefix string) ([]Sample, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		name := mf.GetName()
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			pairs := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
			}

			s := Sample{Name: name, Labels: strings.Join(pairs, ",")}
			switch {
			case m.GetCounter() != nil:
				s.Value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				s.Value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				s.Value = float64(m.GetHistogram().GetSampleCount())
			case m.GetUntyped() != nil:
				s.Value = m.GetUntyped().GetValue()
			default:
				continue
			}
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}
