package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// Metrics exposes the dispatch counters.
type Metrics struct {
	EventsDispatched *prometheus.CounterVec
	DispatchErrors   *prometheus.CounterVec
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		EventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siftbridge",
			Name:      "events_dispatched_total",
			Help:      "Events submitted to the scoring API, by event name.",
		}, []string{"event"}),
		DispatchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siftbridge",
			Name:      "dispatch_errors_total",
			Help:      "Dispatches that failed in transport or were rejected by the API.",
		}, []string{"event"}),
	}
	reg.MustRegister(m.EventsDispatched, m.DispatchErrors)
	return m
}

var Module = fx.Module("metrics",
	fx.Provide(NewRegistry),
	fx.Provide(New),
)
