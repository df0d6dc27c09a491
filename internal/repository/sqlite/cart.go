package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/xid"
	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

// Compile-time check that *DB implements repository.CartRepository.
var _ repository.CartRepository = (*DB)(nil)

// AddItem inserts a cart line, or merges quantities when the user already
// has a line for the same (product, size).
//
// THE MERGE IS A SINGLE STATEMENT:
// ON CONFLICT(user_id, product_id, size) DO UPDATE quantity = quantity +
// excluded.quantity makes SQLite do the read-modify-write atomically.
// Two concurrent adds for the same pair serialize inside the database and
// both increments land — no application-level locking, no lost updates.
// The conflicting insert's id/price/name are discarded; the original line
// keeps its identity and its add-time price snapshot.
func (db *DB) AddItem(ctx context.Context, userID string, item *model.CartItem) error {
	item.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO cart_items (id, user_id, product_id, name, price, image, quantity, size, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?,
		         (SELECT COALESCE(MAX(position), 0) + 1 FROM cart_items WHERE user_id = ?))
		 ON CONFLICT(user_id, product_id, size)
		 DO UPDATE SET quantity = quantity + excluded.quantity`,
		item.ID,
		userID,
		item.ProductID,
		item.Name,
		item.Price,
		item.Image,
		item.Quantity,
		item.Size,
		userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding cart item for user %s: %w", userID, err)
	}

	return nil
}

// UpdateQuantity sets the quantity of one of the user's cart lines.
// The WHERE clause scopes by user_id too, so a user can never touch a line
// in someone else's cart even with a guessed line ID.
func (db *DB) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ? WHERE id = ? AND user_id = ?`,
		quantity, lineID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating cart item %s: %w", lineID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating cart item %s: %w", lineID, err)
	}
	if affected == 0 {
		return apperror.NotFound("cart item", lineID)
	}

	return nil
}

// RemoveItem deletes one of the user's cart lines.
func (db *DB) RemoveItem(ctx context.Context, userID, lineID string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = ? AND user_id = ?`,
		lineID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing cart item %s: %w", lineID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: removing cart item %s: %w", lineID, err)
	}
	if affected == 0 {
		return apperror.NotFound("cart item", lineID)
	}

	return nil
}

// GetCart returns the user's cart lines in insertion order.
func (db *DB) GetCart(ctx context.Context, userID string) ([]model.CartItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, product_id, name, price, image, quantity, size
		 FROM cart_items WHERE user_id = ? ORDER BY position`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cart for user %s: %w", userID, err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.Price, &it.Image, &it.Quantity, &it.Size); err != nil {
			return nil, fmt.Errorf("sqlite: scanning cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cart for user %s: %w", userID, err)
	}

	return items, nil
}
