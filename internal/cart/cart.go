package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"grailify/internal/observability"
	"grailify/internal/store"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	storeKey = "cart"

	// lockStripes bounds the per-session mutexes regardless of session count.
	lockStripes = 64
)

var (
	ErrAlreadyInCart = errors.New("item is already in your cart")
	ErrNotInCart     = errors.New("item is not in your cart")
	ErrInvalidItem   = errors.New("invalid cart item")
	ErrEmptyCart     = errors.New("cart is empty")
)

var (
	ShippingFee = decimal.NewFromInt(15)
	TaxRate     = decimal.RequireFromString("0.08")
)

// Item is one inventory listing held in a cart.
type Item struct {
	ID          int             `json:"id"`
	InventoryID int             `json:"inventoryId"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Size        string          `json:"size"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
}

type Summary struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Taxes     decimal.Decimal `json:"taxes"`
	Total     decimal.Decimal `json:"total"`
}

// Summarize totals a cart. An empty cart costs nothing, shipping included.
func Summarize(items []Item) Summary {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price)
	}
	shipping := decimal.Zero
	if len(items) > 0 {
		shipping = ShippingFee
	}
	taxes := subtotal.Mul(TaxRate).Round(2)
	return Summary{
		ItemCount: len(items),
		Subtotal:  subtotal,
		Shipping:  shipping,
		Taxes:     taxes,
		Total:     subtotal.Add(shipping).Add(taxes),
	}
}

// Service keeps each session's cart as a JSON array in the client store.
type Service struct {
	tracer  trace.Tracer
	store   store.Store
	metrics *observability.Metrics

	locks [lockStripes]sync.Mutex
}

func NewService(tracer trace.Tracer, s store.Store, metrics *observability.Metrics) *Service {
	return &Service{tracer: tracer, store: s, metrics: metrics}
}

// Items returns the session's cart, empty when nothing was stored yet.
func (s *Service) Items(ctx context.Context, sessionID string) ([]Item, error) {
	ctx, span := s.tracer.Start(ctx, "cart.items")
	defer span.End()

	return s.load(ctx, sessionID)
}

func (s *Service) Add(ctx context.Context, sessionID string, item Item) ([]Item, error) {
	ctx, span := s.tracer.Start(ctx, "cart.add")
	defer span.End()
	span.SetAttributes(attribute.Int("inventory_id", item.InventoryID))

	if item.InventoryID <= 0 || item.Price.IsNegative() {
		return nil, ErrInvalidItem
	}

	unlock := s.lock(sessionID)
	defer unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, existing := range items {
		if existing.InventoryID == item.InventoryID {
			return items, ErrAlreadyInCart
		}
	}

	items = append(items, item)
	if err := s.save(ctx, sessionID, items); err != nil {
		return nil, err
	}
	s.metrics.CartMutated("add")
	return items, nil
}

func (s *Service) Remove(ctx context.Context, sessionID string, inventoryID int) ([]Item, error) {
	ctx, span := s.tracer.Start(ctx, "cart.remove")
	defer span.End()
	span.SetAttributes(attribute.Int("inventory_id", inventoryID))

	unlock := s.lock(sessionID)
	defer unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := make([]Item, 0, len(items))
	for _, it := range items {
		if it.InventoryID != inventoryID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return items, ErrNotInCart
	}

	if err := s.save(ctx, sessionID, kept); err != nil {
		return nil, err
	}
	s.metrics.CartMutated("remove")
	return kept, nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "cart.clear")
	defer span.End()

	unlock := s.lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, store.SessionKey(sessionID, storeKey)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.metrics.CartMutated("clear")
	return nil
}

// Checkout hands the cart and its summary to place while holding the session
// lock, and empties the cart only when place succeeds. An empty cart returns
// ErrEmptyCart without calling place.
func (s *Service) Checkout(ctx context.Context, sessionID string, place func(items []Item, summary Summary) error) error {
	ctx, span := s.tracer.Start(ctx, "cart.checkout")
	defer span.End()

	unlock := s.lock(sessionID)
	defer unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return ErrEmptyCart
	}
	span.SetAttributes(attribute.Int("item_count", len(items)))

	if err := place(items, Summarize(items)); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, store.SessionKey(sessionID, storeKey)); err != nil {
		return fmt.Errorf("clear cart after checkout: %w", err)
	}
	s.metrics.CartMutated("checkout")
	return nil
}

func (s *Service) load(ctx context.Context, sessionID string) ([]Item, error) {
	raw, err := s.store.Get(ctx, store.SessionKey(sessionID, storeKey))
	if errors.Is(err, store.ErrNotFound) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *Service) save(ctx context.Context, sessionID string, items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.store.Set(ctx, store.SessionKey(sessionID, storeKey), string(data)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// lock serializes read-modify-write cycles for one session within this
// process. Sessions sharing a stripe also serialize with each other.
func (s *Service) lock(sessionID string) func() {
	mu := s.stripe(sessionID)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) stripe(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockStripes]
}
