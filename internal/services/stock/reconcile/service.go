package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/metrics"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

type StockDecrementer interface {
	ApplyDecrements(ctx context.Context, items []models.LineItem) ([]models.StockChange, error)
}

type Service struct {
	log  logger.Logger
	repo StockDecrementer
}

func New(log logger.Logger, repo StockDecrementer) *Service {
	return &Service{log: log, repo: repo}
}

// Reconcile applies every line item of the event in one transaction. Items
// for unknown products are skipped and reported, they never fail the event.
// Applying the same event twice decrements twice.
func (s *Service) Reconcile(ctx context.Context, event models.OrderEvent) error {
	const op = "services.stock.Reconcile"

	changes, err := s.repo.ApplyDecrements(ctx, event.LineItems)
	if err != nil {
		return fmt.Errorf("%s: order %d: %w", op, event.OrderID, err)
	}

	for _, change := range changes {
		if change.Skipped {
			metrics.ReconcilerSkippedItems.Inc()
			s.log.WarnContext(ctx, "unknown product skipped",
				slog.String("op", op),
				slog.Int64("order_id", event.OrderID),
				slog.Int64("product_id", change.ProductID),
				slog.Int("quantity", change.Requested),
			)
			continue
		}

		if change.After < 0 {
			s.log.WarnContext(ctx, "stock went negative",
				slog.String("op", op),
				slog.Int64("order_id", event.OrderID),
				slog.Int64("product_id", change.ProductID),
				slog.Int("quantity", change.After),
			)
		}

		s.log.DebugContext(ctx, "stock decremented",
			slog.String("op", op),
			slog.Int64("order_id", event.OrderID),
			slog.Int64("product_id", change.ProductID),
			slog.Int("before", change.Before),
			slog.Int("after", change.After),
		)
	}

	return nil
}
