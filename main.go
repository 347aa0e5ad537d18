package main

import (
	"context"
	"lineagemap/app/config"
	"lineagemap/app/server"
	"lineagemap/app/service/account"
	"lineagemap/app/service/dataset"
	"lineagemap/app/service/demo"
	"lineagemap/app/service/view"
	"lineagemap/app/util/mylog"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, dataset.New)
	do.Provide(di, demo.New)
	do.Provide(di, view.New)
	do.Provide(di, account.New)
	do.Provide(di, server.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*server.Service](di).Run(appCtx)

	<-appCtx.Done()
}
