package account

import (
	"context"
	"errors"
	"fmt"
	"log"

	"grailify/internal/cart"
	"grailify/internal/domain"
	"grailify/internal/provider"
	"grailify/internal/session"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrSignedOut means the session has no usable auth token. A token the
// catalog rejects is cleared before this is returned.
var ErrSignedOut = errors.New("sign in required")

// Client is the part of the catalog API that acts on behalf of a signed-in user.
type Client interface {
	Profile(ctx context.Context, token string) (*domain.Profile, error)
	PlaceOrder(ctx context.Context, token string, order domain.OrderRequest) (*domain.OrderConfirmation, error)
}

// Receipt confirms a placed order with the totals of the cart it emptied.
type Receipt struct {
	OrderID int64        `json:"orderId"`
	Message string       `json:"message"`
	Summary cart.Summary `json:"summary"`
}

type Service struct {
	tracer trace.Tracer
	client Client
	tokens *session.Tokens
	carts  *cart.Service
}

func NewService(tracer trace.Tracer, client Client, tokens *session.Tokens, carts *cart.Service) *Service {
	return &Service{tracer: tracer, client: client, tokens: tokens, carts: carts}
}

// Profile loads the signed-in user's account page.
func (s *Service) Profile(ctx context.Context, sessionID string) (*domain.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "account.profile")
	defer span.End()

	token, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	profile, err := s.client.Profile(ctx, token)
	if err != nil {
		return nil, s.rejected(ctx, sessionID, err)
	}
	return profile, nil
}

// PlaceOrder submits the session's cart as an order and empties the cart once
// the catalog accepts it. Address and payment ids of zero are left out.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, shippingAddressID, paymentMethodID int) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "account.place-order")
	defer span.End()

	token, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var receipt *Receipt
	err = s.carts.Checkout(ctx, sessionID, func(items []cart.Item, summary cart.Summary) error {
		placed, err := s.client.PlaceOrder(ctx, token, OrderRequest(items, summary, shippingAddressID, paymentMethodID))
		if err != nil {
			return err
		}
		receipt = &Receipt{OrderID: placed.OrderID, Message: placed.Message, Summary: summary}
		return nil
	})
	if err != nil {
		if receipt != nil {
			// The order exists upstream; a stale cart is the lesser problem.
			log.Printf("Warning: order %d placed but cart not cleared: %v", receipt.OrderID, err)
			return receipt, nil
		}
		return nil, s.rejected(ctx, sessionID, err)
	}
	span.SetAttributes(attribute.Int64("order_id", receipt.OrderID))
	return receipt, nil
}

// OrderRequest builds the catalog order payload for a cart.
func OrderRequest(items []cart.Item, summary cart.Summary, shippingAddressID, paymentMethodID int) domain.OrderRequest {
	lines := make([]domain.OrderLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.OrderLine{
			ID:          it.ID,
			InventoryID: it.InventoryID,
			Name:        it.Name,
			Size:        it.Size,
			Price:       it.Price.InexactFloat64(),
		})
	}
	return domain.OrderRequest{
		CartItems:         lines,
		TotalAmount:       summary.Total.InexactFloat64(),
		ShippingAddressID: shippingAddressID,
		PaymentMethodID:   paymentMethodID,
	}
}

func (s *Service) token(ctx context.Context, sessionID string) (string, error) {
	token, err := s.tokens.Token(ctx, sessionID)
	if errors.Is(err, session.ErrNoToken) {
		return "", ErrSignedOut
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) rejected(ctx context.Context, sessionID string, err error) error {
	if !errors.Is(err, provider.ErrUnauthorized) {
		return err
	}
	if clearErr := s.tokens.ClearToken(ctx, sessionID); clearErr != nil {
		return fmt.Errorf("clear rejected token: %w", clearErr)
	}
	return ErrSignedOut
}
