package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Setenv("POSTURE_CONTROLLER_URL", "https://ctrl.example.com")
	defer os.Unsetenv("POSTURE_CONTROLLER_URL")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PollIntervalSeconds != 60 {
		t.Fatalf("expected default poll interval 60, got %d", cfg.PollIntervalSeconds)
	}
	if cfg.ControllerURL != "https://ctrl.example.com" {
		t.Fatalf("expected controller url from env, got %q", cfg.ControllerURL)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.LogLevel)
	}
}

func TestLoadMissingControllerURL(t *testing.T) {
	os.Unsetenv("POSTURE_CONTROLLER_URL")

	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for missing controllerurl")
	}
}

func TestValidatePollInterval(t *testing.T) {
	cfg := &Config{PollIntervalSeconds: 0, ControllerURL: "https://ctrl.example.com"}
	errs := cfg.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected one validation error, got %d: %v", len(errs), errs)
	}
}
