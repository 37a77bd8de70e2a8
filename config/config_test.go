package config

import (
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv(envMap(nil))
	if cfg.APIBase != "http://localhost:8080" {
		t.Fatalf("unexpected api base: %s", cfg.APIBase)
	}
	if cfg.WSURL != "ws://localhost:8080/ws" {
		t.Fatalf("unexpected ws url: %s", cfg.WSURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.HTTPTimeout)
	}
	if cfg.Port != "8080" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{
		"NEBULA_API_BASE":     "https://chat.example.com/",
		"NEBULA_HTTP_TIMEOUT": "3s",
		"NEBULA_API_RPS":      "2.5",
		"NEBULA_API_BURST":    "1",
		"NEBULA_STORE":        "postgres://u:p@db/nebula",
	}))
	if cfg.APIBase != "https://chat.example.com" {
		t.Fatalf("trailing slash not trimmed: %s", cfg.APIBase)
	}
	if cfg.WSURL != "wss://chat.example.com/ws" {
		t.Fatalf("unexpected ws url: %s", cfg.WSURL)
	}
	if cfg.HTTPTimeout != 3*time.Second || cfg.APIRPS != 2.5 || cfg.APIBurst != 1 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Store != "postgres://u:p@db/nebula" {
		t.Fatalf("unexpected store: %s", cfg.Store)
	}
}

func TestFromEnvIgnoresInvalidNumbers(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{
		"NEBULA_HTTP_TIMEOUT": "soon",
		"NEBULA_API_BURST":    "-4",
	}))
	if cfg.HTTPTimeout != 15*time.Second || cfg.APIBurst != 5 {
		t.Fatalf("invalid values should keep defaults: %+v", cfg)
	}
}

func TestDeriveWSURLKeepsBasePath(t *testing.T) {
	if got := DeriveWSURL("http://host:9000/chat"); got != "ws://host:9000/chat/ws" {
		t.Fatalf("unexpected ws url: %s", got)
	}
}
