package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress          string
	DatabaseURI         string
	GatewayAddress      string
	GatewayClientID     string
	GatewaySecret       string
	CarrierAddress      string
	CarrierAPIKey       string
	OriginPostalCode    string
	CapturePollInterval time.Duration
	CaptureBatchSize    int
	WorkerPoolSize      int
	ShutdownTimeout     time.Duration
}

const (
	defaultRunAddress          = ":8080"
	defaultCapturePollInterval = time.Minute
	defaultCaptureBatchSize    = 16
	defaultWorkerPoolSize      = 4
	defaultShutdownTimeout     = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		GatewayAddress:      getString(lookup, "GATEWAY_ADDRESS", ""),
		GatewayClientID:     getString(lookup, "GATEWAY_CLIENT_ID", ""),
		GatewaySecret:       getString(lookup, "GATEWAY_SECRET", ""),
		CarrierAddress:      getString(lookup, "CARRIER_ADDRESS", ""),
		CarrierAPIKey:       getString(lookup, "CARRIER_API_KEY", ""),
		OriginPostalCode:    getString(lookup, "ORIGIN_POSTAL_CODE", ""),
		CapturePollInterval: getDuration(lookup, "CAPTURE_POLL_INTERVAL", defaultCapturePollInterval),
		CaptureBatchSize:    getInt(lookup, "CAPTURE_BATCH_SIZE", defaultCaptureBatchSize),
		WorkerPoolSize:      getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.CapturePollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.GatewayAddress, "g", cfg.GatewayAddress, "Payment gateway base URL")
	fs.StringVar(&cfg.GatewayClientID, "gateway-client-id", cfg.GatewayClientID, "Payment gateway client id")
	fs.StringVar(&cfg.CarrierAddress, "c", cfg.CarrierAddress, "Shipping carrier base URL")
	fs.StringVar(&cfg.OriginPostalCode, "origin", cfg.OriginPostalCode, "Warehouse origin postal code")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent capture workers")
	fs.StringVar(&pollIntervalStr, "capture-poll-interval", pollIntervalStr, "Interval between capture reconciliation polls")
	fs.IntVar(&cfg.CaptureBatchSize, "capture-batch", cfg.CaptureBatchSize, "Maximum orders per reconciliation batch")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.CapturePollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid capture poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("GATEWAY_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read gateway secret file: %w", err)
		}
		cfg.GatewaySecret = string(content)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.CaptureBatchSize <= 0 {
		cfg.CaptureBatchSize = defaultCaptureBatchSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.GatewayAddress == "" {
		return nil, fmt.Errorf("gateway address must be provided")
	}

	if cfg.CarrierAddress == "" {
		return nil, fmt.Errorf("carrier address must be provided")
	}

	if cfg.OriginPostalCode == "" {
		return nil, fmt.Errorf("origin postal code must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
