package config

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("CFG_TEST_KEY", "  value  ")
	if got := getEnvOrDefault("CFG_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := getEnvOrDefault("CFG_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestGetIntEnv(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "42")
	if got := getIntEnv("CFG_TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}

	t.Setenv("CFG_TEST_INT", "not-a-number")
	if got := getIntEnv("CFG_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}

	t.Setenv("CFG_TEST_INT", "-3")
	if got := getIntEnv("CFG_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback for non-positive, got %d", got)
	}
}

func TestGetDurationEnv(t *testing.T) {
	t.Setenv("CFG_TEST_TTL", "12")
	if got := getDurationEnv("CFG_TEST_TTL", 24, time.Hour); got != 12*time.Hour {
		t.Fatalf("expected 12h, got %v", got)
	}

	t.Setenv("CFG_TEST_TTL", "")
	if got := getDurationEnv("CFG_TEST_TTL", 24, time.Hour); got != 24*time.Hour {
		t.Fatalf("expected default 24h, got %v", got)
	}
}
