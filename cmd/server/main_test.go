package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"grailify/internal/bot"
	"grailify/internal/config"
	"grailify/internal/domain"
	"grailify/internal/job"
	"grailify/internal/observability"
	"grailify/internal/service"
	"grailify/internal/store"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func TestOpenClientStoreFallsBackToMemory(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	cfg := &config.Config{StoreBackend: store.BackendRedis, SessionTTLHours: 1}

	s := openClientStore(context.Background(), cfg, tracer)
	if _, ok := s.(*store.Memory); !ok {
		t.Fatalf("expected memory fallback without redis, got %T", s)
	}
}

func TestOpenClientStoreSQLite(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	cfg := &config.Config{StoreBackend: store.BackendSQLite, SQLitePath: t.TempDir() + "/store.db"}

	s := openClientStore(context.Background(), cfg, tracer)
	sqlite, ok := s.(*store.SQLite)
	if !ok {
		t.Fatalf("expected sqlite store, got %T", s)
	}
	defer sqlite.Close()
}

func TestCORSConfig(t *testing.T) {
	c := corsConfig([]string{"https://grailify.com"})
	if !c.AllowCredentials || len(c.AllowOrigins) != 1 {
		t.Fatalf("unexpected cors config: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("invalid cors config: %v", err)
	}

	c = corsConfig(nil)
	if !c.AllowAllOrigins || c.AllowCredentials {
		t.Fatalf("expected open cors without origins: %+v", c)
	}
}

func stubServerDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewMetrics := newMetricsFunc
	origNewProvider := newCatalogProviderFunc
	origOpenStore := openStoreFunc
	origNewWarmer := newTrendingWarmerFunc
	origStartWarmer := startWarmerFunc
	origStartTelegram := startTelegramBotFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			Port:         "0",
			DatabaseURL:  "postgres://unused",
			StoreBackend: store.BackendMemory,
			CORSOrigins:  []string{"http://localhost:3000"},
			WarmPollSecs: 1,
			AdminAPIKey:  "secret",
		}
	}
	initPostgresFunc = func(context.Context, string) error { return errors.New("no database in tests") }
	initRedisFunc = func(context.Context, string) error { return errors.New("no redis in tests") }
	initTracerFunc = func(ctx context.Context, service string) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newMetricsFunc = func(string) *observability.Metrics { return observability.NewMetrics("test") }
	newCatalogProviderFunc = func(trace.Tracer, *config.Config, *observability.Metrics) service.CatalogProvider {
		return stubCatalog{}
	}
	openStoreFunc = store.Open
	newTrendingWarmerFunc = job.NewTrendingWarmer
	startWarmerFunc = func(*job.TrendingWarmer, context.Context) {}
	startTelegramBotFunc = func(context.Context, string, bot.ItemSource) error { return nil }
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newMetricsFunc = origNewMetrics
		newCatalogProviderFunc = origNewProvider
		openStoreFunc = origOpenStore
		newTrendingWarmerFunc = origNewWarmer
		startWarmerFunc = origStartWarmer
		startTelegramBotFunc = origStartTelegram
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}

type stubCatalog struct{}

func (stubCatalog) FetchItem(ctx context.Context, id int) (*domain.ItemDetail, error) {
	return &domain.ItemDetail{Item: domain.Item{ID: id, Name: "stub"}}, nil
}

func (stubCatalog) FetchTrending(ctx context.Context) (*domain.TrendingResponse, error) {
	return &domain.TrendingResponse{}, nil
}

func (stubCatalog) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	return nil, nil
}

func (stubCatalog) Browse(ctx context.Context, category string, page int) (*domain.BrowsePage, error) {
	return &domain.BrowsePage{Page: page}, nil
}

func (stubCatalog) Categories(ctx context.Context) ([]domain.Category, error) {
	return nil, nil
}

func (stubCatalog) SellPage(ctx context.Context) ([]domain.SellPageCategory, error) {
	return nil, nil
}
