package main

import (
	"context"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"

	"signal-desk/internal/app"
	"signal-desk/internal/cache"
	"signal-desk/internal/config"
	"signal-desk/pkg/tracing"

	"github.com/joho/godotenv"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newInferenceFunc = app.NewInferenceClient
	exitFunc         = os.Exit
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, stop := ossignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Setenv("REDIS_URL", cfg.RedisURL)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}

	newService := func() Inference {
		return newInferenceFunc(cfg, tracer, nil)
	}

	code := 0
	if err := newRootCmd(newService).ExecuteContext(ctx); err != nil {
		code = 1
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		log.Printf("error shutting down tracer provider: %v", err)
	}
	exitFunc(code)
}
