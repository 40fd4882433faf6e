package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grailify/internal/account"
	"grailify/internal/bot"
	"grailify/internal/cache"
	"grailify/internal/cart"
	"grailify/internal/chart"
	"grailify/internal/config"
	"grailify/internal/db"
	"grailify/internal/handler"
	"grailify/internal/job"
	"grailify/internal/observability"
	"grailify/internal/provider"
	"grailify/internal/service"
	"grailify/internal/session"
	"grailify/internal/store"
	"grailify/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "grailify/docs"
)

const serviceName = "grailify"

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newMetricsFunc         = observability.NewMetrics
	newCatalogProviderFunc = func(tracer trace.Tracer, cfg *config.Config, metrics *observability.Metrics) service.CatalogProvider {
		return provider.NewCatalogProvider(tracer, cfg.CatalogAPIURL,
			time.Duration(cfg.CatalogTimeoutSecs)*time.Second, cfg.CatalogRatePerSec, metrics)
	}
	openStoreFunc          = store.Open
	newTrendingWarmerFunc  = job.NewTrendingWarmer
	startWarmerFunc        = func(w *job.TrendingWarmer, ctx context.Context) { go w.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Grailify API
// @version         1.0
// @description     Item catalog, price charts and client-side cart for the Grailify storefront.

// @host      localhost:8081
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Redis backs the item cache and, by default, the client store.
	if err := initRedisFunc(ctx, cfg.RedisURL); err != nil {
		log.Printf("Warning: redis unavailable, item cache disabled: %v", err)
	}
	defer cache.Close()

	if cfg.DatabaseURL != "" {
		if err := initPostgresFunc(ctx, cfg.DatabaseURL); err != nil {
			log.Printf("Warning: postgres unavailable: %v", err)
		}
	}
	defer db.Close()

	metrics := newMetricsFunc(serviceName)

	clientStore := openClientStore(ctx, cfg, tracer)
	if closer, ok := clientStore.(io.Closer); ok {
		defer closer.Close()
	}

	var itemCache service.RedisClient
	if cache.Client != nil {
		itemCache = cache.Client
	}
	catalog := newCatalogProviderFunc(tracer, cfg, metrics)
	itemService := service.NewItemService(tracer, catalog, itemCache, metrics,
		time.Duration(cfg.ItemCacheSecs)*time.Second,
		chart.Surface{Width: cfg.ChartWidth, Height: cfg.ChartHeight})

	warmer := newTrendingWarmerFunc(tracer, itemService, metrics, cfg.WarmPollSecs, cfg.WarmBatch)
	purger, canPurge := clientStore.(handler.StorePurger)
	if canPurge {
		warmer.SetStorePurger(purger)
	}
	startWarmerFunc(warmer, ctx)

	if err := startTelegramBotFunc(ctx, cfg.TelegramBotToken, itemService); err != nil {
		log.Printf("telegram bot disabled: %v", err)
	}

	cartService := cart.NewService(tracer, clientStore, metrics)
	tokens := session.NewTokens(tracer, clientStore)
	h := newHandlerFunc(tracer, itemService, cartService, tokens, metrics,
		time.Duration(cfg.SessionTTLHours)*time.Hour)
	h.SetAdminKey(cfg.AdminAPIKey)
	if canPurge {
		h.SetStorePurger(purger)
	}
	if client, ok := catalog.(account.Client); ok {
		h.SetAccounts(account.NewService(tracer, client, tokens, cartService))
	}

	r := newRouterFunc()
	r.Use(otelgin.Middleware(serviceName))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	h.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("HTTP server listening on %s", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

// openClientStore opens the configured backend, falling back to memory when
// it cannot be reached.
func openClientStore(ctx context.Context, cfg *config.Config, tracer trace.Tracer) store.Store {
	opts := store.Options{
		Backend:    cfg.StoreBackend,
		TTL:        time.Duration(cfg.SessionTTLHours) * time.Hour,
		SQLitePath: cfg.SQLitePath,
		Tracer:     tracer,
	}
	if cache.Client != nil {
		opts.Redis = cache.Client
	}
	if db.Pool != nil {
		opts.Postgres = db.Pool
	}

	s, err := openStoreFunc(ctx, opts)
	if err != nil {
		log.Printf("Warning: %v, falling back to in-memory client store", err)
		opts.Backend = store.BackendMemory
		s, _ = openStoreFunc(ctx, opts)
	}
	log.Printf("client store backend: %s", opts.Backend)
	return s
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", session.HeaderName, "X-API-Key")
	c.ExposeHeaders = []string{session.HeaderName}
	return c
}
