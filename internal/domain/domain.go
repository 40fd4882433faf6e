package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PriceTypeSale    = "sale"
	PriceTypeListing = "listing"
)

// DefaultSize is shown for inventory rows without a size.
const DefaultSize = "One Size"

type Item struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	ItemsSold   int             `json:"items_sold"`
	CategoryID  int             `json:"category_id"`
	ReleaseDate time.Time       `json:"release_date"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
}

// HasReleaseDate reports whether the catalog sent a real release date.
func (i Item) HasReleaseDate() bool {
	return !i.ReleaseDate.IsZero() && i.ReleaseDate.Year() > 1
}

// PriceHistoryEntry is one recorded sale or listing price for an item.
type PriceHistoryEntry struct {
	ID         int       `json:"id"`
	ItemID     int       `json:"item_id"`
	Price      float64   `json:"price"`
	Type       string    `json:"type"`
	RecordedAt time.Time `json:"recorded_at"`
}

type InventoryInfo struct {
	InventoryID int             `json:"inventoryId"`
	Size        string          `json:"size"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Seller      string          `json:"seller"`
}

type AllSizeInfo struct {
	ID   int    `json:"id"`
	Size string `json:"size"`
}

// ItemDetail mirrors the catalog's item response.
type ItemDetail struct {
	Item         Item                `json:"item"`
	DisplayPrice decimal.Decimal     `json:"displayPrice"`
	PriceHistory []PriceHistoryEntry `json:"priceHistory"`
	Inventory    []InventoryInfo     `json:"inventory"`
	AllSizes     []AllSizeInfo       `json:"allSizes"`
}

// FindInventory returns the inventory row with the given id.
func (d *ItemDetail) FindInventory(inventoryID int) (InventoryInfo, bool) {
	for _, inv := range d.Inventory {
		if inv.InventoryID == inventoryID {
			return inv, true
		}
	}
	return InventoryInfo{}, false
}

type SearchResult struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	ImageURL string `json:"imageUrl"`
}

type TrendingResponse struct {
	TrendingSneakers           []Item `json:"trendingSneakers"`
	TrendingApparelAccessories []Item `json:"trendingApparelAccessories"`
}

// ItemIDs returns every trending item id, sneakers first, without duplicates.
func (t TrendingResponse) ItemIDs() []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, group := range [][]Item{t.TrendingSneakers, t.TrendingApparelAccessories} {
		for _, item := range group {
			if _, ok := seen[item.ID]; ok {
				continue
			}
			seen[item.ID] = struct{}{}
			ids = append(ids, item.ID)
		}
	}
	return ids
}
