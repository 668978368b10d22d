package common

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// ConfigureCommandLineLogging sets up plain logging to stderr, leaving stdout for command output.
// The level is read from LOG_LEVEL and defaults to info.
func ConfigureCommandLineLogging() {
	commandLineFormatter := new(log.TextFormatter)
	commandLineFormatter.ForceColors = true
	commandLineFormatter.FullTimestamp = true
	log.SetFormatter(commandLineFormatter)
	log.SetOutput(os.Stderr)
	log.SetLevel(logLevelFromEnv())
}

// ConfigureLogging sets up structured logging for long running processes.
func ConfigureLogging() {
	log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	log.SetOutput(os.Stdout)
	log.SetLevel(logLevelFromEnv())
}

func logLevelFromEnv() log.Level {
	value, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(strings.TrimSpace(value))
	if err != nil {
		log.Warnf("invalid LOG_LEVEL %q, using info", value)
		return log.InfoLevel
	}
	return level
}

// ServeMetrics exposes the default prometheus registry on /metrics.
func ServeMetrics(port uint16) (shutdown func()) {
	return ServeMetricsFor(port, prometheus.DefaultGatherer)
}

func ServeMetricsFor(port uint16, gatherer prometheus.Gatherer) (shutdown func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return ServeHttp(port, mux)
}

// ServeHttp serves handler on port until the returned function is called.
func ServeHttp(port uint16, handler http.Handler) (shutdown func()) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	go func() {
		log.Printf("Starting http server listening on %d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("Stopping http server listening on %d", port)
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("failed to stop http server")
		}
	}
}
