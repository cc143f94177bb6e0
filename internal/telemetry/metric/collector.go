package metric

import "github.com/prometheus/client_golang/prometheus"

// SessionView reports the current session for the collector.
type SessionView func() (authenticated bool, role string)

// SessionCollector exports the current session as gauges at gather time.
type SessionCollector struct {
	view          SessionView
	authenticated *prometheus.Desc
	admin         *prometheus.Desc
}

var _ prometheus.Collector = (*SessionCollector)(nil)

// NewSessionCollector creates a collector reading from view.
func NewSessionCollector(view SessionView) *SessionCollector {
	return &SessionCollector{
		view: view,
		authenticated: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "authenticated"),
			"1 when the console holds an authenticated session.",
			nil, nil,
		),
		admin: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "admin"),
			"1 when the authenticated session has the admin role.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.authenticated
	ch <- c.admin
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	authed, role := c.view()
	ch <- prometheus.MustNewConstMetric(c.authenticated, prometheus.GaugeValue, boolValue(authed))
	ch <- prometheus.MustNewConstMetric(c.admin, prometheus.GaugeValue, boolValue(authed && role == "admin"))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
