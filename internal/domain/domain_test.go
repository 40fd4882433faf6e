package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseTimeframe(t *testing.T) {
	tests := map[string]Timeframe{
		"":     TimeframeAll,
		"7d":   Timeframe7D,
		"1M":   Timeframe1M,
		" 3m ": Timeframe3M,
		"all":  TimeframeAll,
		"1y":   Timeframe1Y,
	}
	for input, want := range tests {
		got, err := ParseTimeframe(input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", input, err)
		}
		if got != want {
			t.Fatalf("%q: expected %s, got %s", input, want, got)
		}
	}

	if _, err := ParseTimeframe("2W"); err == nil {
		t.Fatal("expected error for unsupported timeframe")
	}
}

func TestTimeframeStartUsesCalendarMonths(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

	start, ok := Timeframe1M.Start(now)
	if !ok {
		t.Fatal("expected bounded timeframe")
	}
	// AddDate normalizes Feb 31 to Mar 3
	if !start.Equal(time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected 1M start: %v", start)
	}

	start, _ = Timeframe7D.Start(now)
	if !start.Equal(now.Add(-7 * 24 * time.Hour)) {
		t.Fatalf("unexpected 7D start: %v", start)
	}

	if _, ok := TimeframeAll.Start(now); ok {
		t.Fatal("All should be unbounded")
	}
}

func TestTimeframeFilter(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	history := []PriceHistoryEntry{
		{ID: 1, Price: 100, RecordedAt: now.AddDate(0, 0, -30)},
		{ID: 2, Price: 110, RecordedAt: now.AddDate(0, 0, -7)},
		{ID: 3, Price: 120, RecordedAt: now.AddDate(0, 0, -1)},
	}

	got := Timeframe7D.Filter(history, now)
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("unexpected 7D filter result: %+v", got)
	}

	all := TimeframeAll.Filter(history, now)
	if len(all) != 3 {
		t.Fatalf("expected all entries, got %d", len(all))
	}
	all[0].Price = 0
	if history[0].Price != 100 {
		t.Fatal("filter should not alias the input")
	}
}

func TestTimeframeNextCycles(t *testing.T) {
	tf := Timeframe7D
	for range SupportedTimeframes {
		tf = tf.Next()
	}
	if tf != Timeframe7D {
		t.Fatalf("expected to cycle back to 7D, got %s", tf)
	}
	if TimeframeAll.Next() != Timeframe7D {
		t.Fatal("All should wrap to 7D")
	}
}

func TestItemDetailDecodesCatalogPayload(t *testing.T) {
	payload := `{
		"item": {"id": 7, "name": "Jordan 1", "brand": "Nike", "price": 180, "release_date": "0001-01-01T00:00:00Z"},
		"displayPrice": 250,
		"priceHistory": [{"id": 1, "item_id": 7, "price": 240.5, "type": "sale", "recorded_at": "2025-01-01T00:00:00Z"}],
		"inventory": [{"inventoryId": 11, "size": "10", "price": 255.99, "stock": 2, "seller": "Grailify Store"}],
		"allSizes": [{"id": 1, "size": "10"}]
	}`

	var detail ItemDetail
	if err := json.Unmarshal([]byte(payload), &detail); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Item.ID != 7 || detail.Item.Price.String() != "180" {
		t.Fatalf("unexpected item: %+v", detail.Item)
	}
	if detail.Item.HasReleaseDate() {
		t.Fatal("zero release date should be treated as missing")
	}
	if len(detail.PriceHistory) != 1 || detail.PriceHistory[0].Price != 240.5 {
		t.Fatalf("unexpected history: %+v", detail.PriceHistory)
	}

	inv, ok := detail.FindInventory(11)
	if !ok || inv.Price.String() != "255.99" {
		t.Fatalf("unexpected inventory lookup: %+v %v", inv, ok)
	}
	if _, ok := detail.FindInventory(99); ok {
		t.Fatal("expected missing inventory")
	}
}

func TestTrendingItemIDsDeduplicates(t *testing.T) {
	tr := TrendingResponse{
		TrendingSneakers:           []Item{{ID: 1}, {ID: 2}},
		TrendingApparelAccessories: []Item{{ID: 2}, {ID: 3}},
	}
	ids := tr.ItemIDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestBrowseFilter(t *testing.T) {
	items := []Item{
		{ID: 1, Brand: "Nike", Price: decimal.NewFromInt(120)},
		{ID: 2, Brand: "Adidas", Price: decimal.NewFromInt(80)},
		{ID: 3, Brand: "Nike", Price: decimal.NewFromInt(900)},
		{ID: 4, Brand: "", Price: decimal.NewFromInt(40)},
	}
	ceiling := decimal.NewFromInt(500)

	tests := []struct {
		name   string
		filter BrowseFilter
		want   []int
	}{
		{name: "no filter", filter: BrowseFilter{}, want: []int{1, 2, 3, 4}},
		{name: "brand", filter: BrowseFilter{Brands: []string{"Nike"}}, want: []int{1, 3}},
		{name: "min price", filter: BrowseFilter{MinPrice: decimal.NewFromInt(100)}, want: []int{1, 3}},
		{name: "max price inclusive", filter: BrowseFilter{MaxPrice: &ceiling}, want: []int{1, 2, 4}},
		{name: "brand and range", filter: BrowseFilter{Brands: []string{"Nike", "Adidas"}, MinPrice: decimal.NewFromInt(80), MaxPrice: &ceiling}, want: []int{1, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.filter.Apply(items)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %+v", tc.want, got)
			}
			for i, it := range got {
				if it.ID != tc.want[i] {
					t.Fatalf("expected %v, got %+v", tc.want, got)
				}
			}
		})
	}
}

func TestBrowseFilterValidate(t *testing.T) {
	low := decimal.NewFromInt(10)
	if err := (BrowseFilter{MinPrice: decimal.NewFromInt(20), MaxPrice: &low}).Validate(); !errors.Is(err, ErrInvalidPriceRange) {
		t.Fatalf("expected ErrInvalidPriceRange, got %v", err)
	}
	if err := (BrowseFilter{MinPrice: decimal.NewFromInt(10), MaxPrice: &low}).Validate(); err != nil {
		t.Fatalf("equal bounds should be valid: %v", err)
	}
}

func TestBrands(t *testing.T) {
	got := Brands([]Item{{Brand: "Nike"}, {Brand: " "}, {Brand: "Adidas"}, {Brand: "Nike"}})
	if len(got) != 2 || got[0] != "Nike" || got[1] != "Adidas" {
		t.Fatalf("unexpected brands: %v", got)
	}
	if got := Brands(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil brands, got %v", got)
	}
}
