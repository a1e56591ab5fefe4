package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func lookupFrom(env map[string]string) envLookup {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func requiredEnv() map[string]string {
	return map[string]string{
		"DATABASE_URI":       "postgres://localhost/storefront",
		"GATEWAY_ADDRESS":    "https://gateway.example",
		"CARRIER_ADDRESS":    "https://carrier.example",
		"ORIGIN_POSTAL_CODE": "K1A 0A6",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(nil, lookupFrom(requiredEnv()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RunAddress != defaultRunAddress {
		t.Fatalf("unexpected run address %q", cfg.RunAddress)
	}
	if cfg.CapturePollInterval != defaultCapturePollInterval {
		t.Fatalf("unexpected poll interval %s", cfg.CapturePollInterval)
	}
	if cfg.CaptureBatchSize != defaultCaptureBatchSize || cfg.WorkerPoolSize != defaultWorkerPoolSize {
		t.Fatalf("unexpected worker settings %+v", cfg)
	}
	if cfg.ShutdownTimeout != defaultShutdownTimeout {
		t.Fatalf("unexpected shutdown timeout %s", cfg.ShutdownTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	env := requiredEnv()
	env["RUN_ADDRESS"] = ":9090"
	env["CAPTURE_POLL_INTERVAL"] = "30s"
	env["WORKER_POOL_SIZE"] = "8"
	env["GATEWAY_SECRET"] = "s3cret"

	cfg, err := load(nil, lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RunAddress != ":9090" {
		t.Fatalf("unexpected run address %q", cfg.RunAddress)
	}
	if cfg.CapturePollInterval != 30*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.CapturePollInterval)
	}
	if cfg.WorkerPoolSize != 8 {
		t.Fatalf("unexpected pool size %d", cfg.WorkerPoolSize)
	}
	if cfg.GatewaySecret != "s3cret" {
		t.Fatalf("unexpected secret %q", cfg.GatewaySecret)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	env := requiredEnv()
	env["RUN_ADDRESS"] = ":9090"

	args := []string{
		"-a", ":7070",
		"-origin", "V6B 1A1",
		"-capture-poll-interval", "45s",
		"-worker-pool", "2",
	}
	cfg, err := load(args, lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RunAddress != ":7070" {
		t.Fatalf("unexpected run address %q", cfg.RunAddress)
	}
	if cfg.OriginPostalCode != "V6B 1A1" {
		t.Fatalf("unexpected origin %q", cfg.OriginPostalCode)
	}
	if cfg.CapturePollInterval != 45*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.CapturePollInterval)
	}
	if cfg.WorkerPoolSize != 2 {
		t.Fatalf("unexpected pool size %d", cfg.WorkerPoolSize)
	}
}

func TestLoadRequiredFields(t *testing.T) {
	for _, key := range []string{"DATABASE_URI", "GATEWAY_ADDRESS", "CARRIER_ADDRESS", "ORIGIN_POSTAL_CODE"} {
		env := requiredEnv()
		delete(env, key)
		if _, err := load(nil, lookupFrom(env)); err == nil {
			t.Fatalf("expected error when %s is missing", key)
		}
	}
}

func TestLoadGatewaySecretFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte("from-file"), 0o600); err != nil {
		t.Fatalf("write secret file: %v", err)
	}

	env := requiredEnv()
	env["GATEWAY_SECRET"] = "from-env"
	env["GATEWAY_SECRET_FILE"] = path

	cfg, err := load(nil, lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GatewaySecret != "from-file" {
		t.Fatalf("secret file must win, got %q", cfg.GatewaySecret)
	}
}

func TestLoadRejectsBadDurations(t *testing.T) {
	if _, err := load([]string{"-capture-poll-interval", "soon"}, lookupFrom(requiredEnv())); err == nil {
		t.Fatal("expected error for bad poll interval")
	}
	if _, err := load([]string{"-shutdown-timeout", "never"}, lookupFrom(requiredEnv())); err == nil {
		t.Fatal("expected error for bad shutdown timeout")
	}
}

func TestLoadSanitizesNonPositiveValues(t *testing.T) {
	env := requiredEnv()
	env["WORKER_POOL_SIZE"] = "-1"
	env["CAPTURE_BATCH_SIZE"] = "0"

	cfg, err := load(nil, lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkerPoolSize != defaultWorkerPoolSize || cfg.CaptureBatchSize != defaultCaptureBatchSize {
		t.Fatalf("non-positive values must fall back to defaults, got %+v", cfg)
	}
}
