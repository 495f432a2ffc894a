package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("does-not-exist.env")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "medinv.sqlite3" {
		t.Errorf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.CriticalFraction != 0.3 {
		t.Errorf("expected default critical fraction, got %v", cfg.CriticalFraction)
	}
	if cfg.LockWait != 3*time.Second {
		t.Errorf("expected default lock wait, got %v", cfg.LockWait)
	}
	if cfg.ReconcileCron != "@hourly" {
		t.Errorf("expected default reconcile schedule, got %q", cfg.ReconcileCron)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MEDINV_DB", "/tmp/test.sqlite3")
	t.Setenv("MEDINV_CRITICAL_FRACTION", "0.5")
	t.Setenv("MEDINV_LOCK_WAIT", "250ms")
	t.Setenv("MEDINV_LOCALE", "sl")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/test.sqlite3" {
		t.Errorf("expected overridden db path, got %q", cfg.DBPath)
	}
	if cfg.CriticalFraction != 0.5 {
		t.Errorf("expected fraction 0.5, got %v", cfg.CriticalFraction)
	}
	if cfg.LockWait != 250*time.Millisecond {
		t.Errorf("expected 250ms lock wait, got %v", cfg.LockWait)
	}
	if cfg.Locale != "sl" {
		t.Errorf("expected locale sl, got %q", cfg.Locale)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("MEDINV_CRITICAL_FRACTION", "1.5")
	if _, err := Load(""); err == nil {
		t.Error("expected error for fraction above 1")
	}

	t.Setenv("MEDINV_CRITICAL_FRACTION", "0.3")
	t.Setenv("MEDINV_LOCK_WAIT", "banana")
	if _, err := Load(""); err == nil {
		t.Error("expected error for unparseable duration")
	}
}
