package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
	"github.com/armadaproject/jobwatch/internal/jobwatch/routing"
	"github.com/armadaproject/jobwatch/internal/jobwatch/subscription"
)

var (
	_ subscription.Observer = &Metrics{}
	_ routing.Observer      = &Metrics{}
)

func TestMetrics_Subscriptions(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	key := domain.NewJobSetKey("queue-a", "set-1")

	m.StreamOpened(key)
	m.StreamOpened(key)
	m.StreamFailed(key)
	m.EventApplied(domain.EventRunning)
	m.EventDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.streamsOpened.WithLabelValues("queue-a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.streamFailures.WithLabelValues("queue-a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsApplied.WithLabelValues("running")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsDropped))
}

func TestMetrics_Routes(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RouteCreated("cluster-1", routing.StrategyDerived)
	m.RouteFailed("cluster-2")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.routesCreated.WithLabelValues("cluster-1", routing.StrategyDerived.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.routeFailures.WithLabelValues("cluster-2")))
}

func TestNewMetrics_DoubleRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewMetrics(registry)
	assert.Panics(t, func() { NewMetrics(registry) })
}
