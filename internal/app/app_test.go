package app

import (
	"context"
	"testing"
	"time"

	"signal-desk/internal/cache"
	"signal-desk/internal/config"
	"signal-desk/internal/inference"

	"github.com/openai/openai-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

type stubLLM struct{}

func (stubLLM) CreateChatCompletion(context.Context, openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return &openai.ChatCompletion{}, nil
}

type replyLLM struct {
	reply  string
	models []string
}

func (s *replyLLM) CreateChatCompletion(_ context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.models = append(s.models, params.Model)
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: s.reply}}},
	}, nil
}

type stubRedis struct{ gets int }

func (s *stubRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	return redis.NewStatusResult("OK", nil)
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	s.gets++
	return redis.NewStringResult("", redis.Nil)
}

func stubDeps(rdb cache.RedisClient) (gotKey *string, restore func()) {
	origLLM := newLLMClientFunc
	origRedis := redisClientFunc
	var key string
	newLLMClientFunc = func(apiKey, baseURL string) inference.LLMClient {
		key = apiKey
		return stubLLM{}
	}
	redisClientFunc = func() cache.RedisClient { return rdb }
	return &key, func() {
		newLLMClientFunc = origLLM
		redisClientFunc = origRedis
	}
}

func TestNewInferenceClientUsesConfig(t *testing.T) {
	key, restore := stubDeps(nil)
	defer restore()

	cfg := &config.Config{
		InferenceAPIKey:          "sk-test",
		InferenceModel:           "gpt-4o-mini",
		Timezone:                 "Asia/Dhaka",
		MinProbability:           85,
		InferenceRateLimitPerMin: 30,
	}
	client := NewInferenceClient(cfg, trace.NewNoopTracerProvider().Tracer("test"), nil)
	if *key != "sk-test" {
		t.Fatalf("expected api key passed through, got %q", *key)
	}
	if client.MinProbability() != 85 {
		t.Fatalf("expected min probability 85, got %v", client.MinProbability())
	}
	if client.Location().String() != "Asia/Dhaka" {
		t.Fatalf("expected Asia/Dhaka, got %s", client.Location())
	}
}

func TestNewInferenceClientWiresSignalCache(t *testing.T) {
	rdb := &stubRedis{}
	_, restore := stubDeps(rdb)
	defer restore()

	cfg := &config.Config{Timezone: "UTC", SignalCacheEnabled: true}
	client := NewInferenceClient(cfg, trace.NewNoopTracerProvider().Tracer("test"), nil)

	// the stub model returns no choices, but the cache lookup happens first
	_, _ = client.GenerateSignals(context.Background(), []string{"EUR/USD"})
	if rdb.gets != 1 {
		t.Fatalf("expected one cache lookup, got %d", rdb.gets)
	}
}

func TestNewInferenceClientKeepsEightyFloor(t *testing.T) {
	_, restore := stubDeps(nil)
	defer restore()
	llm := &replyLLM{reply: `{"signals":[{"pair":"EUR/USD","time":"10:05","type":"CALL","probability":60,"logic":"x"}]}`}
	newLLMClientFunc = func(string, string) inference.LLMClient { return llm }

	t.Setenv("MIN_SIGNAL_PROBABILITY", "50")

	client := NewInferenceClient(config.Load(), trace.NewNoopTracerProvider().Tracer("test"), nil)
	signals, err := client.GenerateSignals(context.Background(), []string{"EUR/USD"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(signals) != 0 {
		t.Fatalf("expected the 60%% signal to be dropped, got %+v", signals)
	}
}

func TestNewInferenceClientRoutesModels(t *testing.T) {
	_, restore := stubDeps(nil)
	defer restore()
	llm := &replyLLM{reply: `{"signals":[]}`}
	newLLMClientFunc = func(string, string) inference.LLMClient { return llm }

	cfg := &config.Config{
		InferenceModel:        "gpt-4o-mini",
		InferenceSignalModel:  "gpt-4o-mini-search-preview",
		Timezone:              "UTC",
		SignalRateLimitPerMin: 10,
	}
	client := NewInferenceClient(cfg, trace.NewNoopTracerProvider().Tracer("test"), nil)
	if _, err := client.GenerateSignals(context.Background(), []string{"Bitcoin"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(llm.models) != 1 || llm.models[0] != "gpt-4o-mini-search-preview" {
		t.Fatalf("expected generation on the search model, got %v", llm.models)
	}
}
