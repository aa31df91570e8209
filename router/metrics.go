package router

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the ambient observability counters for the router: how
// much payment traffic moves through it and how often channels need a
// reset. None of this is part of the cross-implementation wire contract;
// it exists purely for operating a running node.
type metrics struct {
	requestsForwarded  prometheus.Counter
	requestsCancelled  prometheus.Counter
	requestsSettled    prometheus.Counter
	resetsEntered      prometheus.Counter
}

// newMetrics registers a fresh counter set against reg. Passing a
// prometheus.NewRegistry() per Router keeps tests from colliding on the
// default global registry.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requestsForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corenet",
			Subsystem: "router",
			Name:      "requests_forwarded_total",
			Help:      "Number of McRequests forwarded to the next hop.",
		}),
		requestsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corenet",
			Subsystem: "router",
			Name:      "requests_cancelled_total",
			Help:      "Number of McRequests cancelled before reaching their destination.",
		}),
		requestsSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corenet",
			Subsystem: "router",
			Name:      "requests_settled_total",
			Help:      "Number of McRequests settled by a response reaching the originator.",
		}),
		resetsEntered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corenet",
			Subsystem: "router",
			Name:      "channel_resets_total",
			Help:      "Number of times a friend's token channel entered Inconsistent.",
		}),
	}
	reg.MustRegister(
		m.requestsForwarded,
		m.requestsCancelled,
		m.requestsSettled,
		m.resetsEntered,
	)
	return m
}
