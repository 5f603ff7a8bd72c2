package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bazarlab/marketplace-admin/internal/domain/catalog"
)

const (
	listShopsSQL = `SELECT id, name, description, logo
		FROM shops ORDER BY position, id`

	getShopSQL = `SELECT id, name, description, logo
		FROM shops WHERE id = $1`

	listShopProductsSQL = `SELECT id, shop_id, name, price, stock_level, description, image
		FROM products ORDER BY shop_id, position, id`

	getShopProductsSQL = `SELECT id, shop_id, name, price, stock_level, description, image
		FROM products WHERE shop_id = $1 ORDER BY position, id`

	insertShopSQL = `INSERT INTO shops (id, name, description, logo, position)
		VALUES ($1, $2, $3, $4, nextval('shops_position_seq'))`

	insertProductSQL = `INSERT INTO products (id, shop_id, name, price, stock_level, description, image, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, nextval('products_position_seq'))`

	deleteShopProductsSQL = `DELETE FROM products WHERE shop_id = $1`

	countShopProductsSQL = `SELECT count(*) FROM products WHERE shop_id = $1`

	deleteShopSQL = `DELETE FROM shops WHERE id = $1`

	touchShopSQL = `UPDATE shops SET updated_at = now() WHERE id = $1`
)

var _ catalog.Repository = (*ShopRepository)(nil)

// ShopRepository implements catalog.Repository backed by PostgreSQL.
type ShopRepository struct {
	pool *pgxpool.Pool
}

// NewShopRepository returns a ShopRepository that uses the given pool.
func NewShopRepository(pool *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{pool: pool}
}

// List returns every shop with its nested products, shops and products both
// in insertion order.
func (r *ShopRepository) List(ctx context.Context) ([]catalog.Shop, error) {
	rows, err := r.pool.Query(ctx, listShopsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing shops: %w", err)
	}
	shops, err := pgx.CollectRows(rows, scanShop)
	if err != nil {
		return nil, fmt.Errorf("listing shops: %w", err)
	}

	prodRows, err := r.pool.Query(ctx, listShopProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(prodRows, scanOwnedProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	byShop := make(map[string][]catalog.Product, len(shops))
	for _, p := range products {
		byShop[p.shopID] = append(byShop[p.shopID], p.Product)
	}
	for i := range shops {
		shops[i].Products = byShop[shops[i].ID]
		if shops[i].Products == nil {
			shops[i].Products = []catalog.Product{}
		}
	}
	return shops, nil
}

// GetByID returns a single shop with its products.
func (r *ShopRepository) GetByID(ctx context.Context, id string) (*catalog.Shop, error) {
	rows, err := r.pool.Query(ctx, getShopSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting shop %q: %w", id, err)
	}

	shop, err := pgx.CollectExactlyOneRow(rows, scanShop)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrShopNotFound
		}
		return nil, fmt.Errorf("getting shop %q: %w", id, err)
	}

	prodRows, err := r.pool.Query(ctx, getShopProductsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting products of shop %q: %w", id, err)
	}
	owned, err := pgx.CollectRows(prodRows, scanOwnedProduct)
	if err != nil {
		return nil, fmt.Errorf("getting products of shop %q: %w", id, err)
	}

	shop.Products = make([]catalog.Product, len(owned))
	for i, p := range owned {
		shop.Products[i] = p.Product
	}
	return &shop, nil
}

// Create persists a new shop together with any initial products.
func (r *ShopRepository) Create(ctx context.Context, shop *catalog.Shop) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("creating shop %q: %w", shop.ID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, insertShopSQL,
		shop.ID, shop.Name, shop.Description, shop.Logo,
	); err != nil {
		return fmt.Errorf("creating shop %q: %w", shop.ID, err)
	}
	for _, p := range shop.Products {
		if err := insertProduct(ctx, tx, shop.ID, p); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("creating shop %q: %w", shop.ID, err)
	}
	return nil
}

// Update applies a partial patch to a shop. A products replacement rewrites
// the whole product collection in one transaction, preserving the order of
// the incoming sequence.
func (r *ShopRepository) Update(ctx context.Context, id string, patch catalog.ShopPatch) (*catalog.Shop, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("updating shop %q: %w", id, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, touchShopSQL, id)
	if err != nil {
		return nil, fmt.Errorf("updating shop %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, catalog.ErrShopNotFound
	}

	if patch.Name != nil {
		if _, err := tx.Exec(ctx, `UPDATE shops SET name = $2 WHERE id = $1`, id, *patch.Name); err != nil {
			return nil, fmt.Errorf("updating shop %q: %w", id, err)
		}
	}
	if patch.Description != nil {
		if _, err := tx.Exec(ctx, `UPDATE shops SET description = $2 WHERE id = $1`, id, *patch.Description); err != nil {
			return nil, fmt.Errorf("updating shop %q: %w", id, err)
		}
	}
	if patch.Logo != nil {
		if _, err := tx.Exec(ctx, `UPDATE shops SET logo = $2 WHERE id = $1`, id, *patch.Logo); err != nil {
			return nil, fmt.Errorf("updating shop %q: %w", id, err)
		}
	}
	if patch.Products != nil {
		if _, err := tx.Exec(ctx, deleteShopProductsSQL, id); err != nil {
			return nil, fmt.Errorf("replacing products of shop %q: %w", id, err)
		}
		for _, p := range *patch.Products {
			if err := insertProduct(ctx, tx, id, p); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("updating shop %q: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a shop, failing with catalog.ErrShopNotEmpty when it still
// owns products. The count check and the delete share one transaction.
func (r *ShopRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("deleting shop %q: %w", id, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var count int
	if err := tx.QueryRow(ctx, countShopProductsSQL, id).Scan(&count); err != nil {
		return fmt.Errorf("deleting shop %q: %w", id, err)
	}
	if count > 0 {
		return catalog.ErrShopNotEmpty
	}

	tag, err := tx.Exec(ctx, deleteShopSQL, id)
	if err != nil {
		return fmt.Errorf("deleting shop %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrShopNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("deleting shop %q: %w", id, err)
	}
	return nil
}

func insertProduct(ctx context.Context, tx pgx.Tx, shopID string, p catalog.Product) error {
	if _, err := tx.Exec(ctx, insertProductSQL,
		p.ID, shopID, p.Name, p.Price, p.StockLevel, p.Description, p.Image,
	); err != nil {
		return fmt.Errorf("inserting product %q into shop %q: %w", p.ID, shopID, err)
	}
	return nil
}

func scanShop(row pgx.CollectableRow) (catalog.Shop, error) {
	var s catalog.Shop
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Logo)
	return s, err
}

// ownedProduct carries the shop_id alongside the product during scanning.
type ownedProduct struct {
	catalog.Product
	shopID string
}

func scanOwnedProduct(row pgx.CollectableRow) (ownedProduct, error) {
	var (
		p     ownedProduct
		price decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.shopID, &p.Name, &price, &p.StockLevel, &p.Description, &p.Image,
	)
	p.Price = price
	return p, err
}
