package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

// Compile-time check that *DB implements repository.OrderRepository.
var _ repository.OrderRepository = (*DB)(nil)

// CreateAndClearCart persists the order with its item snapshot and empties
// the user's cart — in one transaction.
//
// This is the atomicity requirement of checkout: an order without a
// cleared cart would let the customer buy the same items twice; a cleared
// cart without an order would lose the purchase. BeginTx + defer Rollback
// means any failure on the way to Commit unwinds everything.
func (db *DB) CreateAndClearCart(ctx context.Context, order *model.Order) error {
	order.ID = xid.New().String()
	order.CreatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning checkout tx: %w", err)
	}
	// Rollback after Commit is a no-op, so this is safe on every path.
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, total_amount, street, city, postal_code, country, phone, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.UserID,
		order.TotalAmount,
		order.Address.Street,
		order.Address.City,
		order.Address.PostalCode,
		order.Address.Country,
		order.Phone,
		string(order.Status),
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting order for user %s: %w", order.UserID, err)
	}

	for i := range order.Items {
		it := &order.Items[i]
		it.ID = xid.New().String()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, name, price, image, quantity, size, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID,
			order.ID,
			it.ProductID,
			it.Name,
			it.Price,
			it.Image,
			it.Quantity,
			it.Size,
			i,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting order item %d: %w", i, err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = ?`, order.UserID,
	); err != nil {
		return fmt.Errorf("sqlite: clearing cart for user %s: %w", order.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing checkout tx: %w", err)
	}

	return nil
}

// GetOrderByID retrieves one order with its items.
func (db *DB) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, total_amount, street, city, postal_code, country, phone, status, created_at
		 FROM orders WHERE id = ?`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("order", id)
		}
		return nil, fmt.Errorf("sqlite: getting order %s: %w", id, err)
	}

	items, err := db.orderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return o, nil
}

// ListByUser returns the user's orders, newest first.
func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, total_amount, street, city, postal_code, country, phone, status, created_at
		 FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing orders for user %s: %w", userID, err)
	}
	return db.collectOrders(ctx, rows)
}

// ListAll returns every order, newest first, with the owning user's email
// and username joined in for the admin dashboard.
func (db *DB) ListAll(ctx context.Context) ([]model.Order, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT o.id, o.user_id, o.total_amount, o.street, o.city, o.postal_code, o.country,
		        o.phone, o.status, o.created_at, u.email, u.username
		 FROM orders o JOIN users u ON u.id = o.user_id
		 ORDER BY o.created_at DESC, o.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing all orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.TotalAmount,
			&o.Address.Street, &o.Address.City, &o.Address.PostalCode, &o.Address.Country,
			&o.Phone, &o.Status, &o.CreatedAt,
			&o.UserEmail, &o.UserName,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating all orders: %w", err)
	}

	return db.attachItems(ctx, orders)
}

// UpdateStatus sets the order's status. Only the status column is ever
// written post-creation; items and total have no update path at all.
func (db *DB) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating status of order %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating status of order %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("order", id)
	}

	return nil
}

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.TotalAmount,
		&o.Address.Street, &o.Address.City, &o.Address.PostalCode, &o.Address.Country,
		&o.Phone, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (db *DB) collectOrders(ctx context.Context, rows *sql.Rows) ([]model.Order, error) {
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating orders: %w", err)
	}

	return db.attachItems(ctx, orders)
}

func (db *DB) attachItems(ctx context.Context, orders []model.Order) ([]model.Order, error) {
	for i := range orders {
		items, err := db.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (db *DB) orderItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, product_id, name, price, image, quantity, size
		 FROM order_items WHERE order_id = ? ORDER BY position`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing items of order %s: %w", orderID, err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.Price, &it.Image, &it.Quantity, &it.Size); err != nil {
			return nil, fmt.Errorf("sqlite: scanning order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating items of order %s: %w", orderID, err)
	}

	return items, nil
}
