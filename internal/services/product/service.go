package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

// maxUpdateAttempts bounds the read-modify-write loop used when the caller
// does not pin a version.
const maxUpdateAttempts = 3

type ProductStore interface {
	Products(ctx context.Context) ([]models.Product, error)
	Product(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, product models.Product) (models.Product, error)
	Update(ctx context.Context, product models.Product) (models.Product, error)
	Delete(ctx context.Context, id int64) error
}

// Patch lists the fields an update touches. Version pins the expected
// current version; without it the latest version is read and retried on
// conflict.
type Patch struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Quantity    *int
	Version     *int64
}

func (p Patch) apply(product models.Product) models.Product {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.PriceCents != nil {
		product.PriceCents = *p.PriceCents
	}
	if p.Quantity != nil {
		product.Quantity = *p.Quantity
	}

	return product
}

type Service struct {
	log   logger.Logger
	store ProductStore
}

func New(log logger.Logger, store ProductStore) *Service {
	return &Service{
		log:   log,
		store: store,
	}
}

func (s *Service) Products(ctx context.Context) ([]models.Product, error) {
	const op = "services.product.Products"

	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return products, nil
}

func (s *Service) Product(ctx context.Context, id int64) (*models.Product, error) {
	const op = "services.product.Product"

	product, err := s.store.Product(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return product, nil
}

func (s *Service) Create(ctx context.Context, product models.Product) (models.Product, error) {
	const op = "services.product.Create"

	created, err := s.store.Create(ctx, product)
	if err != nil {
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.InfoContext(ctx, "product created",
		slog.String("op", op),
		slog.Int64("product_id", created.ID),
		slog.Int("quantity", created.Quantity),
	)

	return created, nil
}

// Update writes the patch with a compare-and-swap on the product version, so
// a concurrent stock decrement is never overwritten by a stale read.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (models.Product, error) {
	const op = "services.product.Update"

	for attempt := 1; ; attempt++ {
		current, err := s.store.Product(ctx, id)
		if err != nil {
			return models.Product{}, fmt.Errorf("%s: %w", op, err)
		}

		next := patch.apply(*current)
		if patch.Version != nil {
			next.Version = *patch.Version
		}

		updated, err := s.store.Update(ctx, next)
		if err == nil {
			s.log.InfoContext(ctx, "product updated",
				slog.String("op", op),
				slog.Int64("product_id", id),
				slog.Int("quantity", updated.Quantity),
				slog.Int64("version", updated.Version),
			)

			return updated, nil
		}

		retry := errors.Is(err, internalErrors.ErrVersionConflict) && patch.Version == nil && attempt < maxUpdateAttempts
		if !retry {
			return models.Product{}, fmt.Errorf("%s: %w", op, err)
		}

		s.log.DebugContext(ctx, "version conflict, retrying",
			slog.String("op", op),
			slog.Int64("product_id", id),
			slog.Int("attempt", attempt),
		)
	}
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "services.product.Delete"

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.InfoContext(ctx, "product deleted", slog.String("op", op), slog.Int64("product_id", id))

	return nil
}
