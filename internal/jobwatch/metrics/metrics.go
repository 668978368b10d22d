package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
	"github.com/armadaproject/jobwatch/internal/jobwatch/routing"
)

const MetricsPrefix = "jobwatch_"

// Metrics records subscription and routing activity. It satisfies both
// subscription.Observer and routing.Observer.
type Metrics struct {
	streamsOpened  *prometheus.CounterVec
	streamFailures *prometheus.CounterVec
	eventsApplied  *prometheus.CounterVec
	eventsDropped  prometheus.Counter
	routesCreated  *prometheus.CounterVec
	routeFailures  *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		streamsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricsPrefix + "streams_opened_total",
			Help: "Number of job set event streams opened, grouped by queue",
		}, []string{"queue"}),
		streamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricsPrefix + "stream_failures_total",
			Help: "Number of job set event streams that ended in error, grouped by queue",
		}, []string{"queue"}),
		eventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricsPrefix + "events_applied_total",
			Help: "Number of job events applied to the registry, grouped by event type",
		}, []string{"event"}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricsPrefix + "events_dropped_total",
			Help: "Number of job events discarded because they could not be reconciled",
		}),
		routesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricsPrefix + "log_routes_created_total",
			Help: "Number of per-cluster log routes created, grouped by cluster and strategy",
		}, []string{"cluster", "strategy"}),
		routeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricsPrefix + "log_route_failures_total",
			Help: "Number of failed attempts to create a log route, grouped by cluster",
		}, []string{"cluster"}),
	}
	registerer.MustRegister(
		m.streamsOpened,
		m.streamFailures,
		m.eventsApplied,
		m.eventsDropped,
		m.routesCreated,
		m.routeFailures,
	)
	return m
}

func (m *Metrics) StreamOpened(key domain.JobSetKey) {
	m.streamsOpened.With(map[string]string{"queue": key.Queue}).Inc()
}

func (m *Metrics) StreamFailed(key domain.JobSetKey) {
	m.streamFailures.With(map[string]string{"queue": key.Queue}).Inc()
}

func (m *Metrics) EventApplied(kind domain.EventKind) {
	m.eventsApplied.With(map[string]string{"event": kind.String()}).Inc()
}

func (m *Metrics) EventDropped() {
	m.eventsDropped.Inc()
}

func (m *Metrics) RouteCreated(clusterId string, strategy routing.Strategy) {
	m.routesCreated.With(map[string]string{"cluster": clusterId, "strategy": strategy.String()}).Inc()
}

func (m *Metrics) RouteFailed(clusterId string) {
	m.routeFailures.With(map[string]string{"cluster": clusterId}).Inc()
}
