package actor

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the runtime's per-actor Prometheus instruments, grounded on
// quickwit-common/src/metrics.rs: a thin wrapper that registers a small,
// fixed set of counters and gauges rather than building a general metric
// registration framework (the latter is explicitly out of scope; spec.md's
// Non-goals exclude a Prometheus-style registration surface, not the
// ambient act of recording metrics with one).
type Metrics struct {
	MessagesTotal *prometheus.CounterVec
	ErrorsTotal   *prometheus.CounterVec
	ActorState    *prometheus.GaugeVec
	MailboxDepth  *prometheus.GaugeVec
}

// NewMetrics registers the runtime's instruments against reg and returns
// them. Passing a fresh prometheus.NewRegistry() per test keeps repeated
// test runs from colliding on double-registration with the global
// DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corpus",
			Subsystem: "actor",
			Name:      "messages_total",
			Help:      "Total messages dispatched to an actor.",
		}, []string{"actor"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corpus",
			Subsystem: "actor",
			Name:      "errors_total",
			Help:      "Total handler errors returned by an actor.",
		}, []string{"actor"}),
		ActorState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "corpus",
			Subsystem: "actor",
			Name:      "state",
			Help:      "Current lifecycle state of an actor (ActorState enum value).",
		}, []string{"actor"}),
		MailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "corpus",
			Subsystem: "actor",
			Name:      "mailbox_depth",
			Help:      "Approximate number of regular messages queued for an actor.",
		}, []string{"actor"}),
	}

	reg.MustRegister(
		m.MessagesTotal, m.ErrorsTotal, m.ActorState, m.MailboxDepth,
	)
	return m
}

// observeDispatch wires a driver's dispatch loop into the shared Metrics. Called
// from dispatch when non-nil, keeping the hot path allocation-free when no
// Metrics were configured (the common case in unit tests).
func (m *Metrics) observeDispatch(actorName string, err error) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(actorName).Inc()
	if err != nil {
		m.ErrorsTotal.WithLabelValues(actorName).Inc()
	}
}

func (m *Metrics) observeState(actorName string, s ActorState) {
	if m == nil {
		return
	}
	m.ActorState.WithLabelValues(actorName).Set(float64(s))
}
