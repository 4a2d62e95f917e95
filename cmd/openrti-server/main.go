// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command openrti-server runs a federation-execution server: a TCP
// listener accepting control-plane create/destroy/list requests and
// joined-federate traffic over the wire protocol.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luxfi/log"
	openrtilog "github.com/luxfi/openrti/log"

	"github.com/luxfi/openrti/federation"
	"github.com/luxfi/openrti/metrics"
	"github.com/luxfi/openrti/transport"
	"github.com/luxfi/openrti/version"
)

func main() {
	rtiNode := flag.String("rtinode", "localhost:8282", "address to listen on for federate connections")
	metricsAddr := flag.String("metrics", "", "address to serve Prometheus metrics on (empty disables)")
	dev := flag.Bool("dev", false, "use human-readable development logging instead of JSON")
	flag.Parse()

	logger, err := newLogger(*dev)
	if err != nil {
		os.Stderr.WriteString("openrti-server: " + err.Error() + "\n")
		os.Exit(2)
	}
	logger = logger.With().Str("module", "openrti-server").Logger()
	logger.Info("starting", "version", version.RTIVersion().String())

	reg := prometheus.NewRegistry()
	m, err := metrics.NewMetrics(reg)
	if err != nil {
		logger.Error("metrics registration failed", "error", err)
		os.Exit(2)
	}

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, reg, logger)
	}

	ln, err := net.Listen("tcp", *rtiNode)
	if err != nil {
		logger.Error("listen failed", "address", *rtiNode, "error", err)
		os.Exit(2)
	}
	logger.Info("listening", "address", ln.Addr().String())

	registry := federation.NewRegistry(logger, m)
	srv := transport.NewServer(registry, logger, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx, ln); err != nil && err != transport.ErrServerClosed {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shut down")
}

func serveMetrics(addr string, reg *prometheus.Registry, logger log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}

func newLogger(dev bool) (log.Logger, error) {
	if dev {
		return openrtilog.NewDevelopmentLogger()
	}
	return openrtilog.NewProductionLogger()
}
