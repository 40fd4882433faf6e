package service

import (
	"context"
	"errors"
	"strings"

	"grailify/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

var ErrInvalidCategory = errors.New("category is required")

// BrowseView is a filtered listing page. Brands lists every brand on the
// unfiltered page so a client can offer them as filter choices.
type BrowseView struct {
	Category   string        `json:"category"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Items      []domain.Item `json:"items"`
	Brands     []string      `json:"brands"`
}

func (s *ItemService) Browse(ctx context.Context, category string, page int, filter domain.BrowseFilter) (*BrowseView, error) {
	ctx, span := s.tracer.Start(ctx, "item-service.browse")
	defer span.End()

	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return nil, ErrInvalidCategory
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("category", category), attribute.Int("page", page))

	listing, err := s.provider.Browse(ctx, category, page)
	if err != nil {
		return nil, err
	}
	return &BrowseView{
		Category:   category,
		Page:       listing.Page,
		TotalPages: listing.TotalPages,
		Items:      filter.Apply(listing.Items),
		Brands:     domain.Brands(listing.Items),
	}, nil
}

func (s *ItemService) Categories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "item-service.categories")
	defer span.End()

	return s.provider.Categories(ctx)
}

func (s *ItemService) SellPage(ctx context.Context) ([]domain.SellPageCategory, error) {
	ctx, span := s.tracer.Start(ctx, "item-service.sell-page")
	defer span.End()

	return s.provider.SellPage(ctx)
}
