package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

// Compile-time check that *DB implements repository.ProductRepository.
var _ repository.ProductRepository = (*DB)(nil)

// Images and sizes are small string lists with no query requirements, so
// they're stored as JSON in TEXT columns rather than join tables.

func marshalList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalList(s string) ([]string, error) {
	list := []string{}
	if s == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateProduct inserts a new product; fills ID and timestamps.
func (db *DB) CreateProduct(ctx context.Context, product *model.Product) error {
	now := time.Now()
	product.ID = xid.New().String()
	product.CreatedAt = now
	product.UpdatedAt = now

	images, err := marshalList(product.Images)
	if err != nil {
		return fmt.Errorf("sqlite: encoding product images: %w", err)
	}
	sizes, err := marshalList(product.Sizes)
	if err != nil {
		return fmt.Errorf("sqlite: encoding product sizes: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price, images, category, sub_category, bestseller, sizes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		images,
		product.Category,
		product.SubCategory,
		product.Bestseller,
		sizes,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting product %s: %w", product.Name, err)
	}

	return nil
}

// GetProductByID retrieves a product by ID.
func (db *DB) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, price, images, category, sub_category, bestseller, sizes, created_at, updated_at
		 FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("product", id)
		}
		return nil, fmt.Errorf("sqlite: getting product %s: %w", id, err)
	}
	return p, nil
}

// ListProducts returns catalog entries, newest first.
func (db *DB) ListProducts(ctx context.Context, opts repository.ListOptions) ([]model.Product, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, price, images, category, sub_category, bestseller, sizes, created_at, updated_at
		 FROM products ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating products: %w", err)
	}

	return products, nil
}

// Update writes the full product row back. Returns ErrNotFound if the
// product no longer exists.
func (db *DB) Update(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now()

	images, err := marshalList(product.Images)
	if err != nil {
		return fmt.Errorf("sqlite: encoding product images: %w", err)
	}
	sizes, err := marshalList(product.Sizes)
	if err != nil {
		return fmt.Errorf("sqlite: encoding product sizes: %w", err)
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE products SET name = ?, description = ?, price = ?, images = ?, category = ?,
		        sub_category = ?, bestseller = ?, sizes = ?, updated_at = ?
		 WHERE id = ?`,
		product.Name,
		product.Description,
		product.Price,
		images,
		product.Category,
		product.SubCategory,
		product.Bestseller,
		sizes,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating product %s: %w", product.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating product %s: %w", product.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("product", product.ID)
	}

	return nil
}

// Delete removes a product from the catalog. Cart lines and order items
// referencing it keep their denormalized copy — that's the point of the
// add-time snapshot.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting product %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting product %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("product", id)
	}

	return nil
}

func scanProduct(row interface{ Scan(...any) error }) (*model.Product, error) {
	var (
		p      model.Product
		images string
		sizes  string
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &images,
		&p.Category, &p.SubCategory, &p.Bestseller, &sizes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.Images, err = unmarshalList(images); err != nil {
		return nil, fmt.Errorf("decoding product images: %w", err)
	}
	if p.Sizes, err = unmarshalList(sizes); err != nil {
		return nil, fmt.Errorf("decoding product sizes: %w", err)
	}

	return &p, nil
}
