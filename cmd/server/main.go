package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal-desk/internal/app"
	"signal-desk/internal/bot"
	"signal-desk/internal/cache"
	"signal-desk/internal/clock"
	"signal-desk/internal/config"
	"signal-desk/internal/handler"
	"signal-desk/internal/session"
	"signal-desk/pkg/metrics"
	"signal-desk/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "signal-desk/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newRegistryFunc        = prometheus.NewRegistry
	newInferenceFunc       = app.NewInferenceClient
	startClockFunc         = func(t *clock.Ticker, ctx context.Context) { go t.Run(ctx, func(clock.Tick) {}) }
	startJanitorFunc       = func(s *session.Store) (func(), error) { return s.StartJanitor("@every 1m") }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Signal Desk API
// @version         1.0
// @description     Chart screenshot analysis and future signal generation over a hosted model.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("REDIS_URL", cfg.RedisURL)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	reg := newRegistryFunc()
	recorder := metrics.New(reg)

	client := newInferenceFunc(cfg, tracer, recorder)

	store := session.NewStore(tracer, client, time.Duration(cfg.SessionIdleMinutes)*time.Minute)
	store.SetGauge(recorder)
	stopJanitor, err := startJanitorFunc(store)
	if err != nil {
		log.Printf("session janitor disabled: %v", err)
		stopJanitor = func() {}
	}

	ticker := clock.NewTicker(time.Duration(cfg.ClockTickMs)*time.Millisecond, cfg.Location())
	startClockFunc(ticker, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(store)

	h := newHandlerFunc(tracer, store, ticker)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("signal-desk"))

	h.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()
	stopJanitor()
	store.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
