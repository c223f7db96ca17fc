package opcua

import "github.com/prometheus/client_golang/prometheus"

// ClientMetrics exports the Client's internal counters and gauges to
// Prometheus: state, renewals, the request table, and the publish pump
// (SPEC_FULL.md DOMAIN STACK). The shape mirrors the pack's own
// Observer pattern (a struct of collectors registered once at
// construction, with plain setter methods) rather than wrapping
// go-kit/metrics, since the client already depends on
// prometheus/client_golang directly and every collector here needs
// label-free Set/Inc semantics.
type ClientMetrics struct {
	state              prometheus.Gauge
	renewals           prometheus.Counter
	pendingRequests    prometheus.Gauge
	publishOutstanding prometheus.Gauge
	publishThrottled   prometheus.Counter
}

// NewMetrics registers a ClientMetrics on reg and returns it. Pass the
// result to the Metrics Option before Connect.
func NewMetrics(reg *prometheus.Registry) *ClientMetrics {
	m := &ClientMetrics{
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opcua_client_connection_state",
			Help: "Current ConnState of the client (Disconnected=0 .. SessionRenewed=4).",
		}),
		renewals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opcua_client_secure_channel_renewals_total",
			Help: "Secure channel token renewals completed.",
		}),
		pendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opcua_client_pending_requests",
			Help: "Entries currently in the request table awaiting a response.",
		}),
		publishOutstanding: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opcua_client_publish_requests_outstanding",
			Help: "PublishRequests currently outstanding at the server.",
		}),
		publishThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opcua_client_publish_throttled_total",
			Help: "Times the publish pump target was reduced after BadTooManyPublishRequests.",
		}),
	}
	reg.MustRegister(
		m.state,
		m.renewals,
		m.pendingRequests,
		m.publishOutstanding,
		m.publishThrottled,
	)
	return m
}

// newNopMetrics backs a Client that was never given a Metrics Option; every
// collector is unregistered so Set/Inc calls are cheap and side-effect
// free outside the client itself.
func newNopMetrics() *ClientMetrics {
	return &ClientMetrics{
		state:              prometheus.NewGauge(prometheus.GaugeOpts{Name: "opcua_client_connection_state_nop"}),
		renewals:           prometheus.NewCounter(prometheus.CounterOpts{Name: "opcua_client_secure_channel_renewals_total_nop"}),
		pendingRequests:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "opcua_client_pending_requests_nop"}),
		publishOutstanding: prometheus.NewGauge(prometheus.GaugeOpts{Name: "opcua_client_publish_requests_outstanding_nop"}),
		publishThrottled:   prometheus.NewCounter(prometheus.CounterOpts{Name: "opcua_client_publish_throttled_total_nop"}),
	}
}
