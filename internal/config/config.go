package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultModel        = "gpt-4o-mini"
	defaultSignalModel  = "gpt-4o-mini-search-preview"
	minProbabilityFloor = 80.0
	defaultTimezone     = "Asia/Dhaka"
)

type Config struct {
	TelegramBotToken string
	RedisURL         string

	HTTPPort           int
	SessionIdleMinutes int

	SSHPort        int
	SSHHostKeyPath string

	MCPTransport          string
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPRequestTimeoutSecs int

	InferenceAPIKey          string
	InferenceBaseURL         string
	InferenceModel           string
	InferenceSignalModel     string
	InferenceTimeoutSecs     int
	InferenceRateLimitPerMin int
	SignalRateLimitPerMin    int
	SignalCacheEnabled       bool

	Timezone       string
	ClockTickMs    int
	MinProbability float64
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: unknown TIMEZONE=%q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		SSHHostKeyPath:   strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH")),
		InferenceBaseURL: strings.TrimSpace(os.Getenv("INFERENCE_BASE_URL")),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, signal dedup cache disabled")
	}
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}

	cfg.InferenceAPIKey = strings.TrimSpace(os.Getenv("INFERENCE_API_KEY"))
	if cfg.InferenceAPIKey == "" {
		cfg.InferenceAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	if cfg.InferenceAPIKey == "" {
		log.Println("Warning: INFERENCE_API_KEY / OPENAI_API_KEY not set, inference calls will fail")
	}

	cfg.InferenceModel = strings.TrimSpace(os.Getenv("INFERENCE_MODEL"))
	if cfg.InferenceModel == "" {
		cfg.InferenceModel = defaultModel
	}
	// generation sends web_search_options, which needs a search-capable model
	cfg.InferenceSignalModel = strings.TrimSpace(os.Getenv("INFERENCE_SIGNAL_MODEL"))
	if cfg.InferenceSignalModel == "" {
		cfg.InferenceSignalModel = defaultSignalModel
	}

	cfg.HTTPPort = positiveInt("HTTP_PORT", 8080)
	cfg.SessionIdleMinutes = positiveInt("SESSION_IDLE_MINUTES", 30)
	cfg.SSHPort = positiveInt("SSH_PORT", 2222)

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}
	cfg.MCPHTTPPort = positiveInt("MCP_HTTP_PORT", 8090)
	cfg.MCPRequestTimeoutSecs = positiveInt("MCP_REQUEST_TIMEOUT_SECS", 120)

	cfg.InferenceTimeoutSecs = positiveInt("INFERENCE_TIMEOUT_SECS", 90)
	cfg.InferenceRateLimitPerMin = positiveInt("INFERENCE_RATE_LIMIT_PER_MIN", 30)
	cfg.SignalRateLimitPerMin = positiveInt("SIGNAL_RATE_LIMIT_PER_MIN", 10)

	cfg.SignalCacheEnabled = cfg.RedisURL != ""
	if v := strings.TrimSpace(os.Getenv("SIGNAL_CACHE_ENABLED")); v != "" {
		cfg.SignalCacheEnabled = strings.EqualFold(v, "true") && cfg.RedisURL != ""
	}

	cfg.Timezone = strings.TrimSpace(os.Getenv("TIMEZONE"))
	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone
	}

	cfg.ClockTickMs = positiveInt("CLOCK_TICK_MS", 1000)

	// The floor can only be raised.
	cfg.MinProbability = minProbabilityFloor
	if v := strings.TrimSpace(os.Getenv("MIN_SIGNAL_PROBABILITY")); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		switch {
		case err != nil || n > 100:
			log.Printf("Warning: invalid MIN_SIGNAL_PROBABILITY=%q, using %.0f", v, minProbabilityFloor)
		case n < minProbabilityFloor:
			log.Printf("Warning: MIN_SIGNAL_PROBABILITY=%q is below %.0f, using %.0f", v, minProbabilityFloor, minProbabilityFloor)
		default:
			cfg.MinProbability = n
		}
	}

	return cfg
}

func positiveInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}
