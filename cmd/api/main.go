package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/almnar0/almeshkat25/internal/config"
	"github.com/almnar0/almeshkat25/internal/repository/jsonstore"
	"github.com/almnar0/almeshkat25/internal/router"
	"github.com/almnar0/almeshkat25/internal/service"
	"github.com/almnar0/almeshkat25/internal/store"
	"github.com/almnar0/almeshkat25/pkg/logger"
)

func main() {
	// config + logger
	cfg := config.Load()
	l := logger.New(cfg.Env)

	// durable store
	st, err := store.OpenFile(cfg.DataDir)
	if err != nil {
		l.Fatal().Err(err).Msg("store open failed")
	}

	// default admin on first boot
	if err := service.EnsureAdmin(context.Background(), jsonstore.NewUserRepo(st),
		cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		l.Fatal().Err(err).Msg("admin seed failed")
	}

	// http
	r := router.New(l, st, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	l.Info().Msg("shutdown complete")
}
