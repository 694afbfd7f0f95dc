package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prasetyadi/marketcore/internal/postgres"
)

type Repo struct{ DB *pgxpool.Pool }

type PlaceOrderInput struct {
	ExternalID       string      `json:"external_id"`
	CustomerID       string      `json:"customer_id"`
	DeliveryFeeCents int         `json:"delivery_fee_cents"`
	Items            []ItemInput `json:"items"`
}

// PlaceOrder turns a cart into a durable order in one transaction:
// every product is locked, checked and decremented before the order row is
// written. Any missing product or short stock aborts the whole thing -
// check and decrement must not be separate steps or two buyers can both
// pass the check for the last unit.
//
// Idempotent via external_id: a repeat call returns the existing order.
func (r *Repo) PlaceOrder(ctx context.Context, in PlaceOrderInput) (order *Order, existed bool, err error) {
	if existing, err := r.getByExternalID(ctx, in.ExternalID); err == nil {
		return existing, true, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	for _, it := range in.Items {
		if it.Qty <= 0 {
			return nil, false, fmt.Errorf("invalid qty for product %s", it.ProductID)
		}
	}

	order = &Order{
		ID:               uuid.NewString(),
		ExternalID:       in.ExternalID,
		CustomerID:       in.CustomerID,
		Status:           StatusPending,
		DeliveryFeeCents: in.DeliveryFeeCents,
	}

	err = postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		order.Items = order.Items[:0] // reset bila transaksi di-retry
		total := 0

		for _, it := range in.Items {
			var p Product
			err := tx.QueryRow(ctx, `
				SELECT name, stock, price_cents, type, resell_status, image_url
				FROM products WHERE id=$1 FOR UPDATE`, it.ProductID,
			).Scan(&p.Name, &p.Stock, &p.PriceCents, &p.Type, &p.ResellStatus, &p.ImageURL)
			if errors.Is(err, pgx.ErrNoRows) {
				return &ProductNotFoundError{ProductID: it.ProductID}
			}
			if err != nil {
				return err
			}

			if p.Stock < it.Qty {
				return &InsufficientStockError{
					ProductID: it.ProductID, Requested: it.Qty, Available: p.Stock,
				}
			}

			newStock := p.Stock - it.Qty
			resellStatus := p.ResellStatus
			if p.Type == ProductResell && newStock <= 0 {
				// single-unit resale items are withdrawn from sale, not
				// merely out of stock
				resellStatus = ResellSold
			}
			if _, err := tx.Exec(ctx, `
				UPDATE products SET stock=$2, resell_status=$3, updated_at=now()
				WHERE id=$1`, it.ProductID, newStock, resellStatus); err != nil {
				return err
			}

			total += p.PriceCents * it.Qty
			order.Items = append(order.Items, OrderItem{
				ID:           uuid.NewString(),
				OrderID:      order.ID,
				ProductID:    it.ProductID,
				Qty:          it.Qty,
				PriceCents:   p.PriceCents,
				ProductName:  p.Name,
				ProductImage: p.ImageURL,
			})
		}

		order.TotalCents = total + in.DeliveryFeeCents

		if _, err := tx.Exec(ctx, `
			INSERT INTO orders(id, external_id, customer_id, status, total_cents, delivery_fee_cents)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, order.ExternalID, order.CustomerID, order.Status,
			order.TotalCents, order.DeliveryFeeCents,
		); err != nil {
			return err
		}

		for _, item := range order.Items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_items(id, order_id, product_id, qty, price_cents, product_name, product_image)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				item.ID, item.OrderID, item.ProductID, item.Qty,
				item.PriceCents, item.ProductName, item.ProductImage,
			); err != nil {
				return err
			}
		}

		// first history entry; UpdateStatus appends the rest
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_status_history(order_id, status) VALUES ($1, $2)`,
			order.ID, order.Status,
		); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	order.History = []StatusEntry{{Status: order.Status, At: time.Now().UTC()}}
	return order, false, nil
}

func (r *Repo) getByExternalID(ctx context.Context, externalID string) (*Order, error) {
	var id string
	err := r.DB.QueryRow(ctx, `SELECT id FROM orders WHERE external_id=$1`, externalID).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetOrder(ctx, id)
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, external_id, customer_id, status, total_cents, delivery_fee_cents, created_at, updated_at
		FROM orders WHERE id=$1`, orderID,
	).Scan(&o.ID, &o.ExternalID, &o.CustomerID, &o.Status, &o.TotalCents,
		&o.DeliveryFeeCents, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, qty, price_cents, product_name, product_image
		FROM order_items WHERE order_id=$1`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		it := OrderItem{OrderID: o.ID}
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Qty, &it.PriceCents,
			&it.ProductName, &it.ProductImage); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	o.History, err = r.StatusHistory(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// StatusHistory returns entries oldest first.
func (r *Repo) StatusHistory(ctx context.Context, orderID string) ([]StatusEntry, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT status, occurred_at FROM order_status_history
		WHERE order_id=$1 ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusEntry
	for rows.Next() {
		var e StatusEntry
		if err := rows.Scan(&e.Status, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, stock, price_cents, type, resell_status, image_url, created_at, updated_at
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Stock, &p.PriceCents, &p.Type,
			&p.ResellStatus, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, stock, price_cents, type, resell_status, image_url, created_at, updated_at
		FROM products WHERE id=$1`, productID,
	).Scan(&p.ID, &p.Name, &p.Stock, &p.PriceCents, &p.Type,
		&p.ResellStatus, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
