package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"tasktrack/internal/config"
	"tasktrack/internal/logging"
	"tasktrack/internal/server"
	"tasktrack/internal/storage/sqlstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("unable to read .env")
	}

	addrFlag := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbFlag := flag.String("db", cfg.DatabaseURL, "Database URL (sqlite://, postgres://, mysql://)")
	originFlag := flag.String("cors-origin", cfg.CORSOrigin, "Origin allowed to call the API from a browser")
	staticFlag := flag.String("static", cfg.StaticDir, "Directory with built frontend")
	flag.Parse()

	logger := logging.New("tasktrack", cfg.LogLevel, cfg.LogFormat)

	store, err := sqlstore.Open(*dbFlag, logger)
	if err != nil {
		logger.WithError(err).Error("unable to open database")
		os.Exit(1)
	}
	defer store.Close()

	srv := server.New(store, logger, server.Options{
		CORSOrigin: *originFlag,
		StaticDir:  *staticFlag,
	})

	httpServer := &http.Server{
		Addr:              *addrFlag,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": httpServer.Addr, "driver": store.Driver()}).Info("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("failed to shutdown server")
	}

	logger.Info("server stopped")
}
