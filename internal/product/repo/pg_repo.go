package repo

import (
	"context"
	"errors"

	producterrors "github.com/storehub/storehub/internal/product/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository implements ProductRepository using a PostgreSQL connection pool.
type PgRepository struct {
	db *pgxpool.Pool
}

// NewPgRepository creates a new instance of PgRepository.
func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

const productColumns = `id, name, created_at, updated_at, deleted_at`

func (p *PgRepository) FindByID(ctx context.Context, id int64) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND deleted_at IS NULL`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, producterrors.ErrProductNotFound
		}
		return nil, producterrors.ErrFailedToFindProduct
	}
	return product, nil
}

func (p *PgRepository) FindAll(ctx context.Context, limit, offset int32) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE deleted_at IS NULL ORDER BY id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, producterrors.ErrFailedToListProducts
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, producterrors.ErrFailedToListProducts
		}
		products = append(products, *product)
	}
	if rows.Err() != nil {
		return nil, producterrors.ErrFailedToListProducts
	}
	return products, nil
}

func (p *PgRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND deleted_at IS NULL)`, id).Scan(&exists)
	if err != nil {
		return false, producterrors.ErrFailedToFindProduct
	}
	return exists, nil
}

func (p *PgRepository) Create(ctx context.Context, name string) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO products (name) VALUES ($1) RETURNING `+productColumns, name)

	product, err := scanProduct(row)
	if err != nil {
		return nil, producterrors.ErrCreateProduct
	}
	return product, nil
}

func (p *PgRepository) Update(ctx context.Context, id int64, name string) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE products SET name = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL RETURNING `+productColumns,
		id, name)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, producterrors.ErrProductNotFound
		}
		return nil, producterrors.ErrUpdateProduct
	}
	return product, nil
}

func (p *PgRepository) SoftDelete(ctx context.Context, id int64) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE products SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL RETURNING `+productColumns,
		id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, producterrors.ErrProductNotFound
		}
		return nil, producterrors.ErrDeleteProduct
	}
	return product, nil
}

func (p *PgRepository) FindStock(ctx context.Context, storeID, productID int64) (int32, error) {
	var stock int32
	err := p.db.QueryRow(ctx,
		`SELECT stock FROM store_product WHERE store_id = $1 AND product_id = $2`,
		storeID, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, producterrors.ErrStockNotFound
		}
		return 0, producterrors.ErrFailedToFindStock
	}
	return stock, nil
}

// DecrementStock is a single relative UPDATE so concurrent sales of the same
// pivot row cannot lose updates; the stock > 0 guard makes a raced-to-zero
// decrement fail instead of going negative.
func (p *PgRepository) DecrementStock(ctx context.Context, storeID, productID int64) (int32, error) {
	var stock int32
	err := p.db.QueryRow(ctx,
		`UPDATE store_product SET stock = stock - 1, updated_at = now()
		 WHERE store_id = $1 AND product_id = $2 AND stock > 0
		 RETURNING stock`,
		storeID, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, producterrors.ErrOutOfStock
		}
		return 0, producterrors.ErrDecrementStock
	}
	return stock, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var product Product
	err := row.Scan(&product.ID, &product.Name, &product.CreatedAt, &product.UpdatedAt, &product.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
