package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/levenlabs/go-lflag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sitariff/sitariff/pkg/controller"
	"github.com/sitariff/sitariff/pkg/log"
	"github.com/sitariff/sitariff/pkg/metrics"
	"github.com/sitariff/sitariff/pkg/server"
	"github.com/sitariff/sitariff/pkg/storage"
)

func main() {
	// init packages
	s := storage.Configured()
	m := metrics.New(prometheus.DefaultRegisterer)
	c := controller.Configured(s, m)

	// init server
	srv := server.Configured(c, promhttp.Handler())

	// parse flags
	lflag.Configure()

	if err := log.Configure(); err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// If initialization inside lflag.Do failed, we wouldn't be here (panic).
	defer func() {
		if err := s.Close(); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to close storage", "error", err)
		}
	}()

	if err := c.Load(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := c.Run(ctx); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "status poller stopped", "error", err)
		}
	}()

	// Run will block until context is canceled or error happens
	if err := srv.Run(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "server failed", "error", err)
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "server exited cleanly")
}
