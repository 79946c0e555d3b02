package main

import (
	"context"
	"fmt"

	"github.com/ontoptea/orderhub/internal/adapter/config"
	"github.com/ontoptea/orderhub/internal/adapter/handler/http"
	"github.com/ontoptea/orderhub/internal/adapter/logger"
	"github.com/ontoptea/orderhub/internal/adapter/notifier"
	"github.com/ontoptea/orderhub/internal/adapter/storage"
	"github.com/ontoptea/orderhub/internal/adapter/storage/repository"
	"github.com/ontoptea/orderhub/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx := context.Background()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("repository creating error", zap.Error(err))
		return
	}

	hub, err := notifier.NewHub(log.Named("Hub"))
	if err != nil {
		log.Error("notification hub creating error", zap.Error(err))
		return
	}

	svc, err := service.NewService(repo, repo, repo, repo, hub, log.Named("Service"))
	if err != nil {
		log.Error("order service creating error", zap.Error(err))
		return
	}

	svc.StartRetentionSweeper(ctx, conf.Retention.SweepInterval, conf.Retention.MaxAge)

	orderHandler, err := http.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}
	wsHandler, err := http.NewWSHandler(hub)
	if err != nil {
		log.Error("ws handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(conf.HTTP, orderHandler, wsHandler)
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	err = r.Serve(conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}
