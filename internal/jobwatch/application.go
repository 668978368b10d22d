package jobwatch

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/jobwatch/internal/common/armadaerrors"
	"github.com/armadaproject/jobwatch/internal/common/logging"
	"github.com/armadaproject/jobwatch/internal/common/util"
	"github.com/armadaproject/jobwatch/internal/jobwatch/configuration"
	"github.com/armadaproject/jobwatch/internal/jobwatch/registry"
	"github.com/armadaproject/jobwatch/internal/jobwatch/repository"
	"github.com/armadaproject/jobwatch/internal/jobwatch/routing"
	"github.com/armadaproject/jobwatch/internal/jobwatch/subscription"
	"github.com/armadaproject/jobwatch/pkg/client"
)

// Observer receives subscription and routing notifications; metrics.Metrics implements it.
type Observer interface {
	subscription.Observer
	routing.Observer
}

// App ties the job registry to the Armada connection of the selected context: event
// streams feed the registry, polling refreshes it and logs are routed per cluster.
type App struct {
	config   configuration.JobWatchConfiguration
	registry *registry.JobRegistry
	store    repository.MonitoredJobSetStore
	connect  Connector
	observer Observer
	clock    util.Clock
	// jobId -> cluster of the job's latest run
	clusters *cache.Cache

	mux           sync.Mutex
	conn          *Connection
	routes        *routing.Cache
	subscriptions *subscription.Manager
}

// session is a snapshot of the context dependent state, taken under the App lock.
type session struct {
	conn          *Connection
	routes        *routing.Cache
	subscriptions *subscription.Manager
}

func New(
	config configuration.JobWatchConfiguration,
	store repository.MonitoredJobSetStore,
	connect Connector,
	observer Observer,
	clock util.Clock,
) *App {
	if clock == nil {
		clock = &util.DefaultClock{}
	}
	app := &App{
		config:   config,
		registry: registry.New(clock),
		store:    store,
		connect:  connect,
		observer: observer,
		clock:    clock,
	}
	if config.ClusterLookupTTL > 0 {
		app.clusters = cache.New(config.ClusterLookupTTL, 2*config.ClusterLookupTTL)
	}
	return app
}

// Connect opens the connection for a context. Nothing is monitored until Monitor or Restore is called.
func (a *App) Connect(resolved *client.ResolvedContext) error {
	a.mux.Lock()
	defer a.mux.Unlock()
	return a.connectLocked(resolved)
}

func (a *App) connectLocked(resolved *client.ResolvedContext) error {
	conn, err := a.connect(resolved)
	if err != nil {
		return errors.Wrapf(err, "error connecting to context %s", resolved.Name)
	}
	var subscriptionObserver subscription.Observer
	var routingObserver routing.Observer
	if a.observer != nil {
		subscriptionObserver, routingObserver = a.observer, a.observer
	}
	a.conn = conn
	a.routes = routing.NewCache(conn.Routing, conn.LogClients, routingObserver)
	a.subscriptions = subscription.NewManager(conn.Api, a.registry, subscription.Config{
		TerminalStatesAreFinal: a.config.TerminalStatesAreFinal,
		DiscoverJobs:           a.config.DiscoverJobs,
	}, subscriptionObserver)
	log.WithFields(log.Fields{
		"context":    resolved.Name,
		"armada_url": resolved.ArmadaUrl,
	}).Info("connected")
	return nil
}

func (a *App) session() (*session, error) {
	a.mux.Lock()
	defer a.mux.Unlock()

	if a.conn == nil {
		return nil, &armadaerrors.ErrNotConfigured{Setting: "context", Message: "no Armada context is connected"}
	}
	return &session{conn: a.conn, routes: a.routes, subscriptions: a.subscriptions}, nil
}

// ContextName is the name of the connected context, or "" before Connect.
func (a *App) ContextName() string {
	a.mux.Lock()
	defer a.mux.Unlock()

	if a.conn == nil {
		return ""
	}
	return a.conn.ContextName
}

// SwitchContext tears down every stream and route, clears the registry, connects to the
// new context and restores the persisted job sets against it.
func (a *App) SwitchContext(ctx context.Context, resolved *client.ResolvedContext) (int, error) {
	a.mux.Lock()
	if err := a.disconnectLocked(); err != nil {
		logging.WithStacktrace(log.WithField("context", resolved.Name), err).Warn("error closing previous connection")
	}
	a.registry.ClearAll()
	if a.clusters != nil {
		a.clusters.Flush()
	}
	err := a.connectLocked(resolved)
	a.mux.Unlock()
	if err != nil {
		return 0, err
	}
	return a.Restore(ctx)
}

func (a *App) disconnectLocked() error {
	if a.conn == nil {
		return nil
	}
	var result *multierror.Error
	a.subscriptions.CancelAll()
	if err := a.routes.Reset(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := a.conn.Api.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	a.conn, a.routes, a.subscriptions = nil, nil, nil
	return result.ErrorOrNil()
}

// Close cancels every stream and closes all connections and the store.
func (a *App) Close() error {
	a.mux.Lock()
	defer a.mux.Unlock()

	var result *multierror.Error
	if err := a.disconnectLocked(); err != nil {
		result = multierror.Append(result, err)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Restore monitors every persisted job set. Job sets that cannot be monitored are logged
// and skipped. Returns the number of job sets monitored.
func (a *App) Restore(ctx context.Context) (int, error) {
	s, err := a.session()
	if err != nil {
		return 0, err
	}
	if a.store == nil {
		return 0, nil
	}
	jobSets, err := a.store.Load(ctx)
	if err != nil {
		return 0, errors.WithMessage(err, "error loading monitored job sets")
	}
	if len(jobSets) == 0 {
		log.Info("no saved job sets to restore")
		return 0, nil
	}

	restored := 0
	for _, jobSet := range jobSets {
		key := jobSet.Key()
		if key.Queue == "" || key.JobSetId == "" {
			log.WithField("job_set", key.String()).Warn("skipping invalid saved job set")
			continue
		}
		a.registry.EnsureJobSet(key)
		s.subscriptions.Monitor(ctx, key)
		restored++
	}
	log.Infof("restored %d monitored job sets", restored)
	a.persist(ctx)
	return restored, nil
}

// persist saves the registry's job sets; failures are logged since the in-memory view is still valid.
func (a *App) persist(ctx context.Context) {
	if a.store == nil {
		return
	}
	if err := a.store.Save(ctx, a.registry.MonitoredJobSets()); err != nil {
		logging.WithStacktrace(log.WithField("JobWatch", "persist"), err).Warn("failed to save monitored job sets")
	}
}
