package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"grailify/internal/account"
	"grailify/internal/cart"
	"grailify/internal/domain"
	"grailify/internal/observability"
	"grailify/internal/provider"
	"grailify/internal/service"
	"grailify/internal/session"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// StorePurger drops expired client-store entries.
type StorePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type Handler struct {
	tracer      trace.Tracer
	itemService *service.ItemService
	cartService *cart.Service
	tokens      *session.Tokens
	metrics     *observability.Metrics

	sessionTTL    time.Duration
	secureCookies bool
	adminKey      string
	purger        StorePurger
	accounts      *account.Service
}

func New(
	tracer trace.Tracer,
	itemService *service.ItemService,
	cartService *cart.Service,
	tokens *session.Tokens,
	metrics *observability.Metrics,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		tracer:      tracer,
		itemService: itemService,
		cartService: cartService,
		tokens:      tokens,
		metrics:     metrics,
		sessionTTL:  sessionTTL,
	}
}

// SetAdminKey enables the /api/admin routes behind X-API-Key.
func (h *Handler) SetAdminKey(key string) {
	h.adminKey = key
}

func (h *Handler) SetStorePurger(p StorePurger) {
	h.purger = p
}

// SetAccounts enables the profile and order routes.
func (h *Handler) SetAccounts(a *account.Service) {
	h.accounts = a
}

// SetSecureCookies marks the session cookie Secure.
func (h *Handler) SetSecureCookies(secure bool) {
	h.secureCookies = secure
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/items", h.BrowseItems)
	api.GET("/categories", h.GetCategories)
	api.GET("/sell-page-items", h.GetSellPage)
	api.GET("/items/:id", h.GetItem)
	api.GET("/items/:id/chart.svg", h.GetChartSVG)
	api.GET("/items/:id/probe", h.GetProbe)
	api.GET("/trending", h.GetTrending)
	api.GET("/search", h.Search)

	withSession := api.Group("", h.Session())
	withSession.GET("/cart", h.GetCart)
	withSession.POST("/cart", h.AddToCart)
	withSession.DELETE("/cart", h.ClearCart)
	withSession.DELETE("/cart/:inventoryId", h.RemoveFromCart)
	withSession.GET("/session", h.GetSession)
	withSession.PUT("/session/token", h.SetToken)
	withSession.DELETE("/session/token", h.ClearToken)
	withSession.GET("/checkout", h.Checkout)
	withSession.POST("/checkout", h.PlaceOrder)
	withSession.GET("/account/profile", h.GetProfile)

	if h.adminKey != "" {
		admin := api.Group("/admin", APIKeyAuth(h.adminKey))
		admin.POST("/items/:id/refresh", h.RefreshItem)
		admin.POST("/store/purge", h.PurgeStore)
	}
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidItemID),
		errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidPriceRange):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, provider.ErrNotFound), errors.Is(err, cart.ErrNotInCart):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrAlreadyInCart):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
