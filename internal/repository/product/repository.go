package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/databases/postgres"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

type Repository struct {
	log logger.Logger
	db  *sqlx.DB
}

func NewProductRepository(log logger.Logger, db *sqlx.DB) *Repository {
	return &Repository{
		log: log,
		db:  db,
	}
}

const productColumns = `id, name, description, price_cents, quantity, version`

func (pr *Repository) Products(ctx context.Context) ([]models.Product, error) {
	const op = "repository.product.Products"

	products := []models.Product{}
	if err := pr.db.SelectContext(ctx, &products, `SELECT `+productColumns+` FROM products ORDER BY id`); err != nil {
		pr.log.ErrorContext(ctx, op, logger.Err(err))
		return nil, fmt.Errorf("%s: select products: %w", op, err)
	}

	return products, nil
}

func (pr *Repository) Product(ctx context.Context, id int64) (*models.Product, error) {
	const op = "repository.product.Product"

	var product models.Product
	if err := pr.db.GetContext(ctx, &product, `SELECT `+productColumns+` FROM products WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internalErrors.ErrProductNotFound
		}
		pr.log.ErrorContext(ctx, op, logger.Err(err))
		return nil, fmt.Errorf("%s: select product: %w", op, err)
	}

	return &product, nil
}

func (pr *Repository) Create(ctx context.Context, product models.Product) (models.Product, error) {
	const op = "repository.product.Create"

	const query = `
		INSERT INTO products (name, description, price_cents, quantity)
			VALUES ($1, $2, $3, $4)
			RETURNING id, version
	`

	err := pr.db.QueryRowxContext(ctx, query, product.Name, product.Description, product.PriceCents, product.Quantity).
		Scan(&product.ID, &product.Version)
	if err != nil {
		pr.log.ErrorContext(ctx, op, logger.Err(err))
		return models.Product{}, fmt.Errorf("%s: insert product: %w", op, err)
	}

	return product, nil
}

// Update overwrites the product only if its version still equals
// product.Version. A stale version yields ErrVersionConflict.
func (pr *Repository) Update(ctx context.Context, product models.Product) (models.Product, error) {
	const op = "repository.product.Update"

	const query = `
		UPDATE products
			SET name = $1, description = $2, price_cents = $3, quantity = $4, version = version + 1
			WHERE id = $5 AND version = $6
			RETURNING version
	`

	err := pr.db.QueryRowxContext(ctx, query,
		product.Name, product.Description, product.PriceCents, product.Quantity, product.ID, product.Version,
	).Scan(&product.Version)
	if err == nil {
		return product, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		pr.log.ErrorContext(ctx, op, logger.Err(err))
		return models.Product{}, fmt.Errorf("%s: update product: %w", op, err)
	}

	var exists bool
	if err = pr.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, product.ID); err != nil {
		pr.log.ErrorContext(ctx, op, logger.Err(err))
		return models.Product{}, fmt.Errorf("%s: check product: %w", op, err)
	}

	if !exists {
		return models.Product{}, internalErrors.ErrProductNotFound
	}

	return models.Product{}, internalErrors.ErrVersionConflict
}

func (pr *Repository) Delete(ctx context.Context, id int64) error {
	const op = "repository.product.Delete"

	res, err := pr.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		pr.log.ErrorContext(ctx, op, logger.Err(err))
		return fmt.Errorf("%s: delete product: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}

	if affected == 0 {
		return internalErrors.ErrProductNotFound
	}

	return nil
}

// ApplyDecrements subtracts every line item from stock inside one
// transaction. Each decrement is a single atomic UPDATE, so concurrent
// administrative writes cannot be lost. There is no floor: stock may go
// negative. Items for unknown products are reported as skipped.
func (pr *Repository) ApplyDecrements(ctx context.Context, items []models.LineItem) ([]models.StockChange, error) {
	const op = "repository.product.ApplyDecrements"

	changes := make([]models.StockChange, 0, len(items))

	err := postgres.WithTx(ctx, pr.db, nil, func(tx *sqlx.Tx) error {
		const query = `
			UPDATE products
				SET quantity = quantity - $1, version = version + 1
				WHERE id = $2
				RETURNING quantity
		`

		for _, item := range items {
			change := models.StockChange{ProductID: item.ProductID, Requested: item.Quantity}

			err := tx.QueryRowxContext(ctx, query, item.Quantity, item.ProductID).Scan(&change.After)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				change.Skipped = true
			case err != nil:
				return fmt.Errorf("decrement product %d: %w", item.ProductID, err)
			default:
				change.Before = change.After + item.Quantity
			}

			changes = append(changes, change)
		}

		return nil
	})
	if err != nil {
		pr.log.ErrorContext(ctx, op, logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return changes, nil
}
