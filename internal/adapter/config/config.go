package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Database  *Database
	HTTP      *HTTP
	Retention *Retention
	App       *App
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
}

type Retention struct {
	SweepInterval time.Duration `env:"RETENTION_SWEEP_INTERVAL"`
	MaxAge        time.Duration `env:"RETENTION_MAX_AGE"`
}

func NewConfig() (*Config, error) {
	var db Database
	var http HTTP
	var retention Retention
	var app App

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&http.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	flag.DurationVar(&retention.SweepInterval, "s", 24*time.Hour, "Order retention sweep interval")
	flag.DurationVar(&retention.MaxAge, "t", 0, "Order retention age, 0 keeps orders permanently")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.Parse()

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}
	err = env.Parse(&retention)
	if err != nil {
		return nil, fmt.Errorf("error parsing retention config: %w", err)
	}

	config := Config{
		Database:  &db,
		HTTP:      &http,
		Retention: &retention,
		App:       &app,
	}

	return &config, nil
}

// PrintClient configures the standalone print client binary.
type PrintClient struct {
	ServerURL   string `env:"PRINT_SERVER_URL"`
	PrinterType string `env:"PRINTER_TYPE"` // escpos-usb / escpos-network / txt
	DevicePath  string `env:"PRINTER_DEVICE"`
	NetworkAddr string `env:"PRINTER_NETWORK_ADDR"`
	OutputDir   string `env:"PRINTER_OUTPUT_DIR"`
	App         App
}

func NewPrintClientConfig() (*PrintClient, error) {
	var cfg PrintClient

	flag.StringVar(&cfg.ServerURL, "u", `ws://localhost:8080/ws`, "Order server websocket URL")
	flag.StringVar(&cfg.PrinterType, "p", `txt`, "Printer type: escpos-usb / escpos-network / txt")
	flag.StringVar(&cfg.DevicePath, "dev", `/dev/usb/lp0`, "ESC/POS USB device path")
	flag.StringVar(&cfg.NetworkAddr, "n", `localhost:9100`, "ESC/POS network printer address")
	flag.StringVar(&cfg.OutputDir, "o", `.`, "Directory for text-file tickets")
	flag.StringVar(&cfg.App.LogLevel, "l", `info`, "Log level")
	flag.StringVar(&cfg.App.Mode, "m", `DEV`, "PROD / DEV")
	flag.Parse()

	err := env.Parse(&cfg)
	if err != nil {
		return nil, fmt.Errorf("error parsing print client config: %w", err)
	}

	return &cfg, nil
}
