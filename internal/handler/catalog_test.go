package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"grailify/internal/domain"

	"github.com/shopspring/decimal"
)

func browseCatalog() *stubCatalog {
	return &stubCatalog{listing: &domain.BrowsePage{
		Page:       1,
		TotalPages: 3,
		Items: []domain.Item{
			{ID: 1, Name: "Jordan 1", Brand: "Nike", Price: decimal.NewFromInt(200)},
			{ID: 2, Name: "Samba", Brand: "Adidas", Price: decimal.NewFromInt(110)},
			{ID: 3, Name: "Dunk Low", Brand: "Nike", Price: decimal.NewFromInt(6000)},
		},
	}}
}

func TestBrowseItems(t *testing.T) {
	r, _ := newTestRouter(t, browseCatalog(), "")

	tests := []struct {
		name    string
		path    string
		wantIDs []int
	}{
		{"everything", "/api/items", []int{1, 2, 3}},
		{"brand", "/api/items?category=sneakers&brand=Nike", []int{1, 3}},
		{"several brands", "/api/items?brand=Nike&brand=Adidas", []int{1, 2, 3}},
		{"price range", "/api/items?minPrice=150&maxPrice=5000", []int{1}},
		{"min only", "/api/items?minPrice=150", []int{1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.path, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			var body struct {
				TotalPages int           `json:"totalPages"`
				Items      []domain.Item `json:"items"`
				Brands     []string      `json:"brands"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if body.TotalPages != 3 || len(body.Brands) != 2 {
				t.Fatalf("unexpected paging or brands: %+v", body)
			}
			if len(body.Items) != len(tt.wantIDs) {
				t.Fatalf("expected %d items, got %+v", len(tt.wantIDs), body.Items)
			}
			for i, id := range tt.wantIDs {
				if body.Items[i].ID != id {
					t.Fatalf("item %d: expected id %d, got %d", i, id, body.Items[i].ID)
				}
			}
		})
	}
}

func TestBrowseItemsBadInput(t *testing.T) {
	r, _ := newTestRouter(t, browseCatalog(), "")

	for _, path := range []string{
		"/api/items?page=0",
		"/api/items?page=two",
		"/api/items?minPrice=cheap",
		"/api/items?maxPrice=lots",
		"/api/items?minPrice=300&maxPrice=100",
		"/api/items?category=%20",
	} {
		if w := do(r, http.MethodGet, path, ""); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}

	r, _ = newTestRouter(t, &stubCatalog{}, "")
	if w := do(r, http.MethodGet, "/api/items?category=nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown category, got %d", w.Code)
	}
}

func TestCategoriesAndSellPage(t *testing.T) {
	r, _ := newTestRouter(t, &stubCatalog{}, "")
	if w := do(r, http.MethodGet, "/api/categories", ""); w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("expected empty list, got %d: %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/api/sell-page-items", ""); w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("expected empty list, got %d: %s", w.Code, w.Body.String())
	}

	r, _ = newTestRouter(t, &stubCatalog{
		categories: []domain.Category{{ID: 1, Name: "Sneakers", Slug: "sneakers"}},
		sellPage: []domain.SellPageCategory{{ID: 1, Name: "Sneakers", Slug: "sneakers", Items: []domain.Item{
			{ID: 9, Name: "Samba", Brand: "Adidas", Price: decimal.NewFromInt(110)},
		}}},
	}, "")

	var categories []domain.Category
	w := do(r, http.MethodGet, "/api/categories", "")
	if err := json.Unmarshal(w.Body.Bytes(), &categories); err != nil || len(categories) != 1 || categories[0].Slug != "sneakers" {
		t.Fatalf("unexpected categories %v: %s", err, w.Body.String())
	}
	var groups []domain.SellPageCategory
	w = do(r, http.MethodGet, "/api/sell-page-items", "")
	if err := json.Unmarshal(w.Body.Bytes(), &groups); err != nil || len(groups) != 1 || groups[0].Items[0].ID != 9 {
		t.Fatalf("unexpected sell page %v: %s", err, w.Body.String())
	}
}
