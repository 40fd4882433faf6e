package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"grailify/internal/domain"
	"grailify/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultCatalogURL     = "http://localhost:8080"
	defaultCatalogTimeout = 10 * time.Second
	maxErrorBody          = 512
)

var (
	// ErrNotFound is returned when the catalog has no such item.
	ErrNotFound = errors.New("catalog: not found")

	// ErrUnauthorized is returned when the catalog rejects a forwarded token.
	ErrUnauthorized = errors.New("catalog: unauthorized")
)

type catalogRequest struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

// CatalogProvider reads item, trending and search data from the catalog API.
type CatalogProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
	metrics *observability.Metrics
}

func NewCatalogProvider(
	tracer trace.Tracer,
	baseURL string,
	timeout time.Duration,
	ratePerSec int,
	metrics *observability.Metrics,
) *CatalogProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultCatalogURL
	}
	if timeout <= 0 {
		timeout = defaultCatalogTimeout
	}
	return &CatalogProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		limiter: PerSecond(ratePerSec),
		metrics: metrics,
	}
}

// FetchItem loads an item with its price history, inventory and sizes.
func (p *CatalogProvider) FetchItem(ctx context.Context, id int) (detail *domain.ItemDetail, err error) {
	ctx, span := p.tracer.Start(ctx, "catalog.fetch-item")
	defer span.End()
	span.SetAttributes(attribute.Int("item_id", id))
	start := time.Now()
	defer func() { p.metrics.CatalogCall("fetch-item", start, err) }()

	q := url.Values{"id": {strconv.Itoa(id)}}
	body, err := p.doRequest(ctx, catalogRequest{path: "/api/item", query: q})
	if err != nil {
		return nil, fmt.Errorf("fetch item %d: %w", id, err)
	}

	detail = &domain.ItemDetail{}
	if err := json.Unmarshal(body, detail); err != nil {
		return nil, fmt.Errorf("parse item %d: %w", id, err)
	}
	return detail, nil
}

func (p *CatalogProvider) FetchTrending(ctx context.Context) (trending *domain.TrendingResponse, err error) {
	ctx, span := p.tracer.Start(ctx, "catalog.fetch-trending")
	defer span.End()
	start := time.Now()
	defer func() { p.metrics.CatalogCall("fetch-trending", start, err) }()

	body, err := p.doRequest(ctx, catalogRequest{path: "/api/trending"})
	if err != nil {
		return nil, fmt.Errorf("fetch trending: %w", err)
	}

	trending = &domain.TrendingResponse{}
	if err := json.Unmarshal(body, trending); err != nil {
		return nil, fmt.Errorf("parse trending: %w", err)
	}
	return trending, nil
}

// Search matches items by name or brand. A blank query returns no results
// without calling the catalog.
func (p *CatalogProvider) Search(ctx context.Context, query string) (results []domain.SearchResult, err error) {
	ctx, span := p.tracer.Start(ctx, "catalog.search")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	start := time.Now()
	defer func() { p.metrics.CatalogCall("search", start, err) }()

	body, err := p.doRequest(ctx, catalogRequest{path: "/api/search", query: url.Values{"q": {query}}})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}

// Browse loads one page of a category listing. Pages start at 1.
func (p *CatalogProvider) Browse(ctx context.Context, category string, page int) (result *domain.BrowsePage, err error) {
	ctx, span := p.tracer.Start(ctx, "catalog.browse")
	defer span.End()
	if page < 1 {
		page = 1
	}
	span.SetAttributes(attribute.String("category", category), attribute.Int("page", page))
	start := time.Now()
	defer func() { p.metrics.CatalogCall("browse", start, err) }()

	q := url.Values{"category": {category}, "page": {strconv.Itoa(page)}}
	body, err := p.doRequest(ctx, catalogRequest{path: "/api/items", query: q})
	if err != nil {
		return nil, fmt.Errorf("browse %s page %d: %w", category, page, err)
	}

	result = &domain.BrowsePage{}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("parse browse page: %w", err)
	}
	if result.Items == nil {
		result.Items = []domain.Item{}
	}
	return result, nil
}

func (p *CatalogProvider) Categories(ctx context.Context) (categories []domain.Category, err error) {
	ctx, span := p.tracer.Start(ctx, "catalog.categories")
	defer span.End()
	start := time.Now()
	defer func() { p.metrics.CatalogCall("categories", start, err) }()

	body, err := p.doRequest(ctx, catalogRequest{path: "/api/categories"})
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

// SellPage loads every category with its best-selling items.
func (p *CatalogProvider) SellPage(ctx context.Context) (groups []domain.SellPageCategory, err error) {
	ctx, span := p.tracer.Start(ctx, "catalog.sell-page")
	defer span.End()
	start := time.Now()
	defer func() { p.metrics.CatalogCall("sell-page", start, err) }()

	body, err := p.doRequest(ctx, catalogRequest{path: "/api/sell-page-items"})
	if err != nil {
		return nil, fmt.Errorf("fetch sell page: %w", err)
	}
	if err := json.Unmarshal(body, &groups); err != nil {
		return nil, fmt.Errorf("parse sell page: %w", err)
	}
	if groups == nil {
		groups = []domain.SellPageCategory{}
	}
	return groups, nil
}

// Profile loads the account behind token. A rejected token yields
// ErrUnauthorized.
func (p *CatalogProvider) Profile(ctx context.Context, token string) (profile *domain.Profile, err error) {
	ctx, span := p.tracer.Start(ctx, "catalog.profile")
	defer span.End()
	start := time.Now()
	defer func() { p.metrics.CatalogCall("profile", start, err) }()

	body, err := p.doRequest(ctx, catalogRequest{path: "/api/profile", token: token})
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	profile = &domain.Profile{}
	if err := json.Unmarshal(body, profile); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return profile, nil
}

func (p *CatalogProvider) PlaceOrder(ctx context.Context, token string, order domain.OrderRequest) (confirmation *domain.OrderConfirmation, err error) {
	ctx, span := p.tracer.Start(ctx, "catalog.place-order")
	defer span.End()
	span.SetAttributes(attribute.Int("line_count", len(order.CartItems)))
	start := time.Now()
	defer func() { p.metrics.CatalogCall("place-order", start, err) }()

	body, err := p.doRequest(ctx, catalogRequest{
		method: http.MethodPost,
		path:   "/api/orders",
		token:  token,
		body:   order,
	})
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	confirmation = &domain.OrderConfirmation{}
	if err := json.Unmarshal(body, confirmation); err != nil {
		return nil, fmt.Errorf("parse order confirmation: %w", err)
	}
	return confirmation, nil
}

func (p *CatalogProvider) doRequest(ctx context.Context, r catalogRequest) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := p.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}
	method := r.method
	if method == "" {
		method = http.MethodGet
	}

	var payload io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("catalog API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return io.ReadAll(resp.Body)
}
