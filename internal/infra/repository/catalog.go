package repository

import (
	"context"
	"errors"

	"storefront/internal/infra"
	"storefront/internal/pkg/money"
	"storefront/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository serves current product data. Prices read from here
// are authoritative; cart snapshots only cache them.
type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const findProductSQL = `
SELECT product_id, variant_key, display_name, image_ref, unit_price::text
FROM catalog_items
WHERE product_id = $1 AND variant_key = $2 AND active
`

func (r *CatalogRepository) FindProduct(ctx context.Context, ref commands.ProductRef) (*commands.CatalogProduct, error) {
	row := r.db.QueryRow(ctx, findProductSQL, ref.ProductID, ref.VariantKey)

	var (
		p         commands.CatalogProduct
		unitPrice string
	)
	err := row.Scan(&p.Ref.ProductID, &p.Ref.VariantKey, &p.DisplayName, &p.ImageRef, &unitPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find product", err)
	}

	p.UnitPrice, err = money.FromString(unitPrice)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to parse product price", err)
	}
	return &p, nil
}

const unitPricesSQL = `
SELECT c.product_id, c.variant_key, c.unit_price::text
FROM catalog_items c
JOIN unnest($1::uuid[], $2::text[]) AS want(product_id, variant_key)
  ON c.product_id = want.product_id AND c.variant_key = want.variant_key
WHERE c.active
`

// UnitPrices fetches current prices for a batch of refs in one round
// trip. Refs missing from the result are unavailable (delisted or
// unknown); the caller decides what that means.
func (r *CatalogRepository) UnitPrices(ctx context.Context, refs []commands.ProductRef) (map[commands.ProductRef]money.Money, error) {
	if len(refs) == 0 {
		return map[commands.ProductRef]money.Money{}, nil
	}

	ids := make([]uuid.UUID, len(refs))
	keys := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ProductID
		keys[i] = ref.VariantKey
	}

	rows, err := r.db.Query(ctx, unitPricesSQL, ids, keys)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to fetch unit prices", err)
	}
	defer rows.Close()

	prices := make(map[commands.ProductRef]money.Money, len(refs))
	for rows.Next() {
		var (
			ref      commands.ProductRef
			rawPrice string
		)
		if err := rows.Scan(&ref.ProductID, &ref.VariantKey, &rawPrice); err != nil {
			return nil, infra.WrapRepoErr("failed to scan unit price row", err)
		}
		price, err := money.FromString(rawPrice)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to parse unit price", err)
		}
		prices[ref] = price
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read unit price rows", err)
	}

	return prices, nil
}
