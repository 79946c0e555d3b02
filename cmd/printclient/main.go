package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/ontoptea/orderhub/internal/adapter/client/printfeed"
	"github.com/ontoptea/orderhub/internal/adapter/config"
	"github.com/ontoptea/orderhub/internal/adapter/logger"
	"github.com/ontoptea/orderhub/internal/adapter/printer"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewPrintClientConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(&conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() { _ = log.Sync() }()

	primary, err := printer.NewPrinter(conf, log.Named("Printer"))
	if err != nil {
		log.Error("printer creating error", zap.Error(err))
		return
	}
	fallback := printer.NewTextPrinter(conf.OutputDir, log.Named("Fallback"))

	sub, err := printfeed.NewSubscriber(conf, primary, fallback, log.Named("Feed"))
	if err != nil {
		log.Error("subscriber creating error", zap.Error(err))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("print client started",
		zap.String("server", conf.ServerURL),
		zap.String("printer", conf.PrinterType))

	err = sub.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("print feed stopped", zap.Error(err))
	}
}
