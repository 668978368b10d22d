package routing

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"

	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
)

// LogClient fetches logs from the Binoculars instance of one cluster.
type LogClient interface {
	Logs(ctx context.Context, req *domain.LogRequest) ([]domain.LogLine, error)
	Close() error
}

// ClientFactory constructs the client for a resolved address.
type ClientFactory func(clusterId string, address string) (LogClient, error)

type Route struct {
	ClusterId string
	Address   string
	Strategy  Strategy
	Client    LogClient
}

// Observer is told about route creation and failures; may be nil.
type Observer interface {
	RouteCreated(clusterId string, strategy Strategy)
	RouteFailed(clusterId string)
}

// Cache memoizes one Route per cluster id. Routes are created on first use and reused
// until Reset. Failures are never cached, so a later call retries derivation.
type Cache struct {
	config   AddressConfig
	factory  ClientFactory
	observer Observer

	routes map[string]*Route
	mutex  sync.Mutex
}

func NewCache(config AddressConfig, factory ClientFactory, observer Observer) *Cache {
	return &Cache{
		config:   config,
		factory:  factory,
		observer: observer,
		routes:   make(map[string]*Route),
	}
}

// RouteFor returns the route for clusterId, creating it if this is the first request.
func (c *Cache) RouteFor(clusterId string) (*Route, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if route, ok := c.routes[clusterId]; ok {
		return route, nil
	}

	address, strategy, err := DeriveAddress(c.config, clusterId)
	if err != nil {
		c.failed(clusterId)
		return nil, err
	}
	client, err := c.factory(clusterId, address)
	if err != nil {
		c.failed(clusterId)
		return nil, errors.Wrapf(err, "error creating binoculars client for cluster %s at %s", clusterId, address)
	}

	route := &Route{
		ClusterId: clusterId,
		Address:   address,
		Strategy:  strategy,
		Client:    client,
	}
	c.routes[clusterId] = route
	log.WithFields(log.Fields{
		"cluster_id": clusterId,
		"address":    address,
		"strategy":   strategy.String(),
	}).Info("created binoculars route")
	if c.observer != nil {
		c.observer.RouteCreated(clusterId, strategy)
	}
	return route, nil
}

func (c *Cache) failed(clusterId string) {
	if c.observer != nil {
		c.observer.RouteFailed(clusterId)
	}
}

// Clusters returns the ids of the clusters with a cached route.
func (c *Cache) Clusters() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return maps.Keys(c.routes)
}

// Reconfigure replaces the address configuration and drops every cached route.
func (c *Cache) Reconfigure(config AddressConfig) error {
	c.mutex.Lock()
	c.config = config
	c.mutex.Unlock()

	return c.Reset()
}

// Reset closes every cached client and empties the cache.
func (c *Cache) Reset() error {
	c.mutex.Lock()
	routes := c.routes
	c.routes = make(map[string]*Route)
	c.mutex.Unlock()

	var result *multierror.Error
	for clusterId, route := range routes {
		if err := route.Client.Close(); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "error closing route for cluster %s", clusterId))
		}
	}
	return result.ErrorOrNil()
}
