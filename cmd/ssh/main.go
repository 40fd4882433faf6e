package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"grailify/internal/cache"
	"grailify/internal/chart"
	"grailify/internal/config"
	"grailify/internal/domain"
	"grailify/internal/observability"
	"grailify/internal/provider"
	"grailify/internal/service"
	"grailify/internal/tui"
	"grailify/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	gossh "golang.org/x/crypto/ssh"
)

const serviceName = "grailify-ssh"

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newCatalogProviderFunc = func(tracer trace.Tracer, cfg *config.Config, metrics *observability.Metrics) service.CatalogProvider {
		return provider.NewCatalogProvider(tracer, cfg.CatalogAPIURL,
			time.Duration(cfg.CatalogTimeoutSecs)*time.Second, cfg.CatalogRatePerSec, metrics)
	}
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

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

	if err := initRedisFunc(ctx, cfg.RedisURL); err != nil {
		log.Printf("Warning: redis unavailable, item cache disabled: %v", err)
	}
	defer cache.Close()

	var itemCache service.RedisClient
	if cache.Client != nil {
		itemCache = cache.Client
	}
	metrics := observability.NewMetrics(strings.ReplaceAll(serviceName, "-", "_"))
	itemService := service.NewItemService(tracer, newCatalogProviderFunc(tracer, cfg, metrics), itemCache, metrics,
		time.Duration(cfg.ItemCacheSecs)*time.Second,
		chart.Surface{Width: cfg.ChartWidth, Height: cfg.ChartHeight})

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)
	if len(cfg.SSHAuthorizedFingerprints) == 0 {
		log.Println("Warning: SSH_AUTHORIZED_FINGERPRINTS not set, accepting any public key")
	}

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(authorizer(cfg.SSHAuthorizedFingerprints)),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				itemID, tf := parseCommand(s.Command())
				model := tui.NewModel(itemService, itemID, tf)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}

// authorizer accepts keys whose SHA256 fingerprint is listed, or any key when
// the list is empty.
func authorizer(fingerprints []string) func(ctx ssh.Context, key ssh.PublicKey) bool {
	allowed := make(map[string]struct{}, len(fingerprints))
	for _, fp := range fingerprints {
		allowed[strings.TrimSpace(fp)] = struct{}{}
	}
	return func(ctx ssh.Context, key ssh.PublicKey) bool {
		fingerprint := gossh.FingerprintSHA256(key)
		if len(allowed) == 0 {
			return true
		}
		if _, ok := allowed[fingerprint]; !ok {
			log.Printf("SSH auth denied: fingerprint=%s", fingerprint)
			return false
		}
		log.Printf("SSH auth accepted: fingerprint=%s", fingerprint)
		return true
	}
}

// parseCommand reads "ssh host <item-id> [timeframe]". Anything unparseable
// falls back to the trending list and the default timeframe.
func parseCommand(args []string) (int, domain.Timeframe) {
	itemID := 0
	tf := domain.DefaultTimeframe
	if len(args) > 0 {
		if id, err := strconv.Atoi(args[0]); err == nil && id > 0 {
			itemID = id
		}
	}
	if len(args) > 1 {
		if parsed, err := domain.ParseTimeframe(args[1]); err == nil {
			tf = parsed
		}
	}
	return itemID, tf
}
