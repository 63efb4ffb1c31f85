package cart

import "github.com/prometheus/client_golang/prometheus"

const labelOp = "op"

type Metrics struct {
	Mutations       *prometheus.CounterVec
	PersistFailures prometheus.Counter
	Checkouts       prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_mutations_total",
				Help: "Cart mutations that changed state",
			},
			[]string{labelOp},
		),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cart_persist_failures_total",
			Help: "Cart reads or writes that fell back to memory",
		}),
		Checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cart_checkouts_total",
			Help: "Confirmed checkouts",
		}),
	}

	reg.MustRegister(m.Mutations, m.PersistFailures, m.Checkouts)
	return m
}

func (m *Metrics) mutation(op string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op).Inc()
}

func (m *Metrics) persistFailed() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}

func (m *Metrics) checkout() {
	if m == nil {
		return
	}
	m.Checkouts.Inc()
}
