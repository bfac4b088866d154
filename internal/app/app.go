// Package app assembles the inference stack shared by every binary.
package app

import (
	"log"
	"time"

	"signal-desk/internal/cache"
	"signal-desk/internal/config"
	"signal-desk/internal/inference"

	"go.opentelemetry.io/otel/trace"
)

var (
	newLLMClientFunc = inference.NewOpenAIClient
	redisClientFunc  = func() cache.RedisClient {
		if cache.Client == nil {
			return nil
		}
		return cache.Client
	}
)

// NewInferenceClient wires the model client, rate limiter, optional Redis batch cache and
// the metrics recorder (which may be nil).
func NewInferenceClient(cfg *config.Config, tracer trace.Tracer, rec inference.Recorder) *inference.Client {
	if cfg.InferenceAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY/INFERENCE_API_KEY not set, inference calls will fail")
	}

	llm := newLLMClientFunc(cfg.InferenceAPIKey, cfg.InferenceBaseURL)
	client := inference.NewClient(tracer, llm, inference.Settings{
		Model:          cfg.InferenceModel,
		SignalModel:    cfg.InferenceSignalModel,
		Location:       cfg.Location(),
		MinProbability: cfg.MinProbability,
		Timeout:        time.Duration(cfg.InferenceTimeoutSecs) * time.Second,
	})

	if cfg.InferenceRateLimitPerMin > 0 || cfg.SignalRateLimitPerMin > 0 {
		client.SetLimiter(inference.NewPerMinuteLimiter(cfg.InferenceRateLimitPerMin, cfg.SignalRateLimitPerMin))
	}

	if cfg.SignalCacheEnabled {
		if rdb := redisClientFunc(); rdb != nil {
			client.SetSignalCache(cache.NewSignalCache(tracer, rdb))
			log.Println("Signal batch cache enabled")
		} else {
			log.Println("Signal batch cache requested but Redis is unavailable")
		}
	}

	if rec != nil {
		client.SetRecorder(rec)
	}
	return client
}
