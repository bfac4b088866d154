package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "REDIS_URL", "HTTP_PORT", "INFERENCE_API_KEY", "OPENAI_API_KEY",
		"INFERENCE_MODEL", "INFERENCE_SIGNAL_MODEL", "TIMEZONE", "MIN_SIGNAL_PROBABILITY", "SIGNAL_CACHE_ENABLED", "MCP_TRANSPORT",
		"INFERENCE_RATE_LIMIT_PER_MIN", "SIGNAL_RATE_LIMIT_PER_MIN",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default http port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.InferenceModel != defaultModel {
		t.Fatalf("expected default model, got %s", cfg.InferenceModel)
	}
	if cfg.InferenceSignalModel != defaultSignalModel {
		t.Fatalf("expected default signal model, got %s", cfg.InferenceSignalModel)
	}
	if cfg.InferenceRateLimitPerMin != 30 || cfg.SignalRateLimitPerMin != 10 {
		t.Fatalf("unexpected rate limits: %d/%d", cfg.InferenceRateLimitPerMin, cfg.SignalRateLimitPerMin)
	}
	if cfg.Timezone != "Asia/Dhaka" {
		t.Fatalf("expected default timezone, got %s", cfg.Timezone)
	}
	if cfg.MinProbability != 80 {
		t.Fatalf("expected default min probability 80, got %v", cfg.MinProbability)
	}
	if cfg.SignalCacheEnabled {
		t.Fatal("cache should be disabled without REDIS_URL")
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("expected stdio transport, got %s", cfg.MCPTransport)
	}
	if cfg.ClockTickMs != 1000 {
		t.Fatalf("expected 1000ms tick, got %d", cfg.ClockTickMs)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("INFERENCE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("INFERENCE_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/")
	t.Setenv("MIN_SIGNAL_PROBABILITY", "85")
	t.Setenv("MCP_TRANSPORT", "HTTP")
	t.Setenv("SIGNAL_CACHE_ENABLED", "")

	cfg := Load()
	if cfg.HTTPPort != 9000 || cfg.InferenceAPIKey != "sk-test" || cfg.MinProbability != 85 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.SignalCacheEnabled {
		t.Fatal("cache should default on when REDIS_URL is set")
	}
	if cfg.MCPTransport != "http" {
		t.Fatalf("expected http transport, got %s", cfg.MCPTransport)
	}

	t.Setenv("HTTP_PORT", "bad")
	t.Setenv("MIN_SIGNAL_PROBABILITY", "140")
	t.Setenv("MCP_TRANSPORT", "carrier-pigeon")
	t.Setenv("SIGNAL_CACHE_ENABLED", "false")
	cfg = Load()
	if cfg.HTTPPort != 8080 {
		t.Fatalf("invalid port should fall back to default, got %d", cfg.HTTPPort)
	}
	if cfg.MinProbability != 80 {
		t.Fatalf("invalid probability should fall back to 80, got %v", cfg.MinProbability)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("unsupported transport should fall back to stdio, got %s", cfg.MCPTransport)
	}
	if cfg.SignalCacheEnabled {
		t.Fatal("cache should honour SIGNAL_CACHE_ENABLED=false")
	}
}

func TestMinProbabilityCannotDropBelowFloor(t *testing.T) {
	for _, v := range []string{"50", "0", "79.9"} {
		t.Setenv("MIN_SIGNAL_PROBABILITY", v)
		if cfg := Load(); cfg.MinProbability != 80 {
			t.Fatalf("MIN_SIGNAL_PROBABILITY=%s: expected 80, got %v", v, cfg.MinProbability)
		}
	}
	t.Setenv("MIN_SIGNAL_PROBABILITY", "90")
	if cfg := Load(); cfg.MinProbability != 90 {
		t.Fatalf("expected raised floor 90, got %v", cfg.MinProbability)
	}
}

func TestSignalModelOverride(t *testing.T) {
	t.Setenv("INFERENCE_MODEL", "gpt-4o")
	t.Setenv("INFERENCE_SIGNAL_MODEL", "gpt-4o-search-preview")
	cfg := Load()
	if cfg.InferenceModel != "gpt-4o" || cfg.InferenceSignalModel != "gpt-4o-search-preview" {
		t.Fatalf("unexpected models: %s / %s", cfg.InferenceModel, cfg.InferenceSignalModel)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus_Mons"}
	if cfg.Location() != time.UTC {
		t.Fatal("expected UTC fallback")
	}
	cfg.Timezone = "UTC"
	if cfg.Location().String() != "UTC" {
		t.Fatal("expected UTC location")
	}
}
