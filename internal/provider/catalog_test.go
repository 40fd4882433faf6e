package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"grailify/internal/domain"
	"grailify/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func newTestProvider(t *testing.T, fn roundTripFunc) *CatalogProvider {
	t.Helper()
	p := NewCatalogProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://catalog/", time.Second, 100, nil)
	p.client = &http.Client{Transport: fn}
	return p
}

func TestNewCatalogProviderDefaults(t *testing.T) {
	p := NewCatalogProvider(trace.NewNoopTracerProvider().Tracer("test"), "", 0, 0, nil)
	if p.baseURL != defaultCatalogURL {
		t.Fatalf("unexpected base url: %s", p.baseURL)
	}
	if p.client.Timeout != defaultCatalogTimeout {
		t.Fatalf("unexpected timeout: %v", p.client.Timeout)
	}
}

func TestCatalogProviderFetchItem(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/item" || req.URL.Query().Get("id") != "7" {
			t.Fatalf("unexpected request: %s", req.URL.String())
		}
		if req.Header.Get("Accept") != "application/json" {
			t.Fatalf("missing accept header")
		}
		return jsonResponse(http.StatusOK, `{
			"item": {"id": 7, "name": "Dunk Low Panda", "brand": "Nike", "price": 110},
			"displayPrice": 130,
			"priceHistory": [
				{"id": 1, "item_id": 7, "price": 120, "type": "sale", "recorded_at": "2025-01-02T00:00:00Z"},
				{"id": 2, "item_id": 7, "price": 125, "type": "sale", "recorded_at": "2025-01-03T00:00:00Z"}
			],
			"inventory": [{"inventoryId": 3, "size": "9", "price": 128, "stock": 1, "seller": "kicks"}],
			"allSizes": [{"id": 1, "size": "9"}]
		}`), nil
	})

	detail, err := p.FetchItem(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Item.Name != "Dunk Low Panda" || len(detail.PriceHistory) != 2 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.Inventory[0].Seller != "kicks" {
		t.Fatalf("unexpected inventory: %+v", detail.Inventory)
	}
}

func TestCatalogProviderFetchItemNotFound(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, "Item not found"), nil
	})

	_, err := p.FetchItem(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogProviderServerError(t *testing.T) {
	t.Parallel()

	metrics := observability.NewMetrics("test")
	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, "Failed to query inventory\n"), nil
	})
	p.metrics = metrics

	_, err := p.FetchItem(context.Background(), 1)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a non-404 error, got %v", err)
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "Failed to query inventory") {
		t.Fatalf("error should carry status and body: %v", err)
	}
	if got := testutil.ToFloat64(metrics.CatalogErrors.WithLabelValues("fetch-item")); got != 1 {
		t.Fatalf("expected the failure to be counted, got %v", got)
	}
}

func TestCatalogProviderFetchItemBadJSON(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"item":`), nil
	})
	if _, err := p.FetchItem(context.Background(), 1); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCatalogProviderFetchTrending(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/trending" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{
			"trendingSneakers": [{"id": 1, "name": "A"}],
			"trendingApparelAccessories": [{"id": 2, "name": "B"}]
		}`), nil
	})

	trending, err := p.FetchTrending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trending.ItemIDs()) != 2 {
		t.Fatalf("unexpected trending: %+v", trending)
	}
}

func TestCatalogProviderSearch(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("q") != "yeezy 350" {
			t.Fatalf("unexpected query: %s", req.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, `[{"id": 4, "name": "Yeezy Boost 350", "brand": "Adidas", "imageUrl": "/y.png"}]`), nil
	})

	results, err := p.Search(context.Background(), " yeezy 350 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ImageURL != "/y.png" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestCatalogProviderSearchNullAndBlank(t *testing.T) {
	t.Parallel()

	calls := 0
	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusOK, `null`), nil
	})

	results, err := p.Search(context.Background(), "   ")
	if err != nil || len(results) != 0 || calls != 0 {
		t.Fatalf("blank query should short-circuit: %v %v %d", results, err, calls)
	}

	results, err = p.Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("null body should decode to an empty slice, got %#v", results)
	}
}

func TestCatalogProviderRespectsCancelledContext(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{}`), nil
	})
	p.limiter = NewRateLimiter(1, time.Hour)
	_ = p.limiter.Wait(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.FetchTrending(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCatalogProviderBrowse(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if req.URL.Path != "/api/items" || q.Get("category") != "sneakers" || q.Get("page") != "1" {
			t.Fatalf("unexpected request: %s", req.URL.String())
		}
		return jsonResponse(http.StatusOK, `{
			"items": [{"id": 1, "name": "Dunk Low", "brand": "Nike", "price": 120}],
			"totalPages": 3,
			"page": 1
		}`), nil
	})

	page, err := p.Browse(context.Background(), "sneakers", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.TotalPages != 3 || len(page.Items) != 1 || page.Items[0].Brand != "Nike" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestCatalogProviderBrowseNullItems(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"items": null, "totalPages": 0, "page": 9}`), nil
	})

	page, err := p.Browse(context.Background(), "electronics", 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("expected empty items, got %#v", page.Items)
	}
}

func TestCatalogProviderCategoriesAndSellPage(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/api/categories":
			return jsonResponse(http.StatusOK, `[{"id": 1, "name": "Sneakers", "slug": "sneakers"}]`), nil
		case "/api/sell-page-items":
			return jsonResponse(http.StatusOK, `[{"id": 1, "name": "Sneakers", "slug": "sneakers", "items": [{"id": 7, "name": "Jordan 1"}]}]`), nil
		}
		t.Fatalf("unexpected path: %s", req.URL.Path)
		return nil, nil
	})

	categories, err := p.Categories(context.Background())
	if err != nil || len(categories) != 1 || categories[0].Slug != "sneakers" {
		t.Fatalf("unexpected categories: %+v %v", categories, err)
	}

	groups, err := p.SellPage(context.Background())
	if err != nil || len(groups) != 1 || len(groups[0].Items) != 1 || groups[0].Items[0].ID != 7 {
		t.Fatalf("unexpected sell page: %+v %v", groups, err)
	}
}

func TestCatalogProviderProfileForwardsToken(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/profile" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		switch req.Header.Get("Authorization") {
		case "Bearer good-token":
			return jsonResponse(http.StatusOK, `{
				"user": {"id": 1, "username": "kicks", "email": "k@example.com"},
				"orderHistory": [{"id": 5, "totalAmount": 112.2, "status": "Completed"}]
			}`), nil
		default:
			return jsonResponse(http.StatusUnauthorized, "Invalid token"), nil
		}
	})

	profile, err := p.Profile(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.User.Username != "kicks" || len(profile.OrderHistory) != 1 || profile.OrderHistory[0].TotalAmount.String() != "112.2" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	if _, err := p.Profile(context.Background(), "expired"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCatalogProviderPlaceOrder(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost || req.URL.Path != "/api/orders" {
			t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
		}
		if req.Header.Get("Authorization") != "Bearer good-token" || req.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("unexpected headers: %v", req.Header)
		}
		var order domain.OrderRequest
		if err := json.NewDecoder(req.Body).Decode(&order); err != nil {
			t.Fatalf("decode order: %v", err)
		}
		if len(order.CartItems) != 1 || order.CartItems[0].Price != 90 || order.TotalAmount != 112.2 {
			t.Fatalf("unexpected order: %+v", order)
		}
		return jsonResponse(http.StatusCreated, `{"message": "Order placed successfully!", "orderId": 42}`), nil
	})

	confirmation, err := p.PlaceOrder(context.Background(), "good-token", domain.OrderRequest{
		CartItems:   []domain.OrderLine{{ID: 7, InventoryID: 11, Price: 90}},
		TotalAmount: 112.2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmation.OrderID != 42 {
		t.Fatalf("unexpected confirmation: %+v", confirmation)
	}
}
