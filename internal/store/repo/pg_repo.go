package repo

import (
	"context"
	"errors"

	storeerrors "github.com/storehub/storehub/internal/store/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository implements StoreRepository using a PostgreSQL connection pool.
type PgRepository struct {
	db *pgxpool.Pool
}

// NewPgRepository creates a new instance of PgRepository.
func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

const storeColumns = `id, name, created_at, updated_at, deleted_at`

func (p *PgRepository) FindByID(ctx context.Context, id int64) (*Store, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE id = $1 AND deleted_at IS NULL`, id)

	store, err := scanStore(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storeerrors.ErrStoreNotFound
		}
		return nil, storeerrors.ErrFailedToFindStore
	}
	return store, nil
}

func (p *PgRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stores WHERE id = $1 AND deleted_at IS NULL)`, id).Scan(&exists)
	if err != nil {
		return false, storeerrors.ErrFailedToFindStore
	}
	return exists, nil
}

func (p *PgRepository) FindAll(ctx context.Context, limit, offset int32) ([]Store, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE deleted_at IS NULL ORDER BY id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, storeerrors.ErrFailedToListStores
	}
	defer rows.Close()

	stores := make([]Store, 0)
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return nil, storeerrors.ErrFailedToListStores
		}
		stores = append(stores, *store)
	}
	if rows.Err() != nil {
		return nil, storeerrors.ErrFailedToListStores
	}
	return stores, nil
}

func (p *PgRepository) FindWithProducts(ctx context.Context, id int64) (*StoreWithProducts, error) {
	store, err := p.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	products, err := p.findStoreProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StoreWithProducts{Store: *store, Products: products}, nil
}

func (p *PgRepository) FindAllWithProducts(ctx context.Context, limit, offset int32) ([]StoreWithProducts, error) {
	// Single join keyed on a limited store subquery; rows are grouped in Go
	// to avoid one pivot query per store.
	rows, err := p.db.Query(ctx,
		`SELECT s.id, s.name, s.created_at, s.updated_at, p.id, p.name, sp.stock
		 FROM (SELECT * FROM stores WHERE deleted_at IS NULL ORDER BY id DESC LIMIT $1 OFFSET $2) s
		 LEFT JOIN store_product sp ON sp.store_id = s.id
		 LEFT JOIN products p ON p.id = sp.product_id AND p.deleted_at IS NULL
		 ORDER BY s.id DESC, p.id`,
		limit, offset)
	if err != nil {
		return nil, storeerrors.ErrFailedToListStores
	}
	defer rows.Close()

	stores := make([]StoreWithProducts, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var store Store
		var productID *int64
		var productName *string
		var stock *int32
		if err := rows.Scan(&store.ID, &store.Name, &store.CreatedAt, &store.UpdatedAt, &productID, &productName, &stock); err != nil {
			return nil, storeerrors.ErrFailedToListStores
		}

		i, seen := index[store.ID]
		if !seen {
			stores = append(stores, StoreWithProducts{Store: store, Products: make([]StoreProduct, 0)})
			i = len(stores) - 1
			index[store.ID] = i
		}
		if productID != nil {
			stores[i].Products = append(stores[i].Products, StoreProduct{ID: *productID, Name: *productName, Stock: *stock})
		}
	}
	if rows.Err() != nil {
		return nil, storeerrors.ErrFailedToListStores
	}
	return stores, nil
}

func (p *PgRepository) FindAllWithProductsCount(ctx context.Context, limit, offset int32) ([]StoreWithCount, error) {
	rows, err := p.db.Query(ctx,
		`SELECT s.id, s.name, s.created_at, s.updated_at, COUNT(sp.product_id) AS products_count
		 FROM stores s
		 LEFT JOIN store_product sp ON sp.store_id = s.id
		 WHERE s.deleted_at IS NULL
		 GROUP BY s.id
		 ORDER BY s.id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, storeerrors.ErrFailedToListStores
	}
	defer rows.Close()

	stores := make([]StoreWithCount, 0)
	for rows.Next() {
		var store StoreWithCount
		if err := rows.Scan(&store.ID, &store.Name, &store.CreatedAt, &store.UpdatedAt, &store.ProductsCount); err != nil {
			return nil, storeerrors.ErrFailedToListStores
		}
		stores = append(stores, store)
	}
	if rows.Err() != nil {
		return nil, storeerrors.ErrFailedToListStores
	}
	return stores, nil
}

func (p *PgRepository) Create(ctx context.Context, name string) (*Store, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO stores (name) VALUES ($1) RETURNING `+storeColumns, name)

	store, err := scanStore(row)
	if err != nil {
		return nil, storeerrors.ErrCreateStore
	}
	return store, nil
}

func (p *PgRepository) Update(ctx context.Context, id int64, name string) (*Store, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE stores SET name = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL RETURNING `+storeColumns,
		id, name)

	store, err := scanStore(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storeerrors.ErrStoreNotFound
		}
		return nil, storeerrors.ErrUpdateStore
	}
	return store, nil
}

func (p *PgRepository) SoftDelete(ctx context.Context, id int64) (*Store, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE stores SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL RETURNING `+storeColumns,
		id)

	store, err := scanStore(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storeerrors.ErrStoreNotFound
		}
		return nil, storeerrors.ErrDeleteStore
	}
	return store, nil
}

func (p *PgRepository) AttachProduct(ctx context.Context, storeID int64, attachment ProductAttachment) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO store_product (store_id, product_id, stock) VALUES ($1, $2, $3)`,
		storeID, attachment.ProductID, attachment.Stock)
	if err != nil {
		return storeerrors.ErrAttachProducts
	}
	return nil
}

func (p *PgRepository) SyncProducts(ctx context.Context, storeID int64, plan []ProductAttachment) error {
	// Use transaction to replace the pivot set atomically
	return p.withTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM store_product WHERE store_id = $1`, storeID); err != nil {
			return storeerrors.ErrSyncProducts
		}
		for _, attachment := range plan {
			_, err := tx.Exec(ctx,
				`INSERT INTO store_product (store_id, product_id, stock) VALUES ($1, $2, $3)`,
				storeID, attachment.ProductID, attachment.Stock)
			if err != nil {
				return storeerrors.ErrSyncProducts
			}
		}
		return nil
	})
}

func (p *PgRepository) DetachAll(ctx context.Context, storeID int64) error {
	_, err := p.db.Exec(ctx, `DELETE FROM store_product WHERE store_id = $1`, storeID)
	if err != nil {
		return storeerrors.ErrDetachProducts
	}
	return nil
}

func (p *PgRepository) findStoreProducts(ctx context.Context, storeID int64) ([]StoreProduct, error) {
	rows, err := p.db.Query(ctx,
		`SELECT p.id, p.name, sp.stock
		 FROM store_product sp
		 JOIN products p ON p.id = sp.product_id AND p.deleted_at IS NULL
		 WHERE sp.store_id = $1
		 ORDER BY p.id`,
		storeID)
	if err != nil {
		return nil, storeerrors.ErrFailedToFindStore
	}
	defer rows.Close()

	products := make([]StoreProduct, 0)
	for rows.Next() {
		var product StoreProduct
		if err := rows.Scan(&product.ID, &product.Name, &product.Stock); err != nil {
			return nil, storeerrors.ErrFailedToFindStore
		}
		products = append(products, product)
	}
	if rows.Err() != nil {
		return nil, storeerrors.ErrFailedToFindStore
	}
	return products, nil
}

func (p *PgRepository) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return storeerrors.ErrTransactionBegin
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return storeerrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storeerrors.ErrTransactionCommit
	}
	return nil
}

func scanStore(row pgx.Row) (*Store, error) {
	var store Store
	err := row.Scan(&store.ID, &store.Name, &store.CreatedAt, &store.UpdatedAt, &store.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &store, nil
}
