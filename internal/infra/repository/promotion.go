package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/promotion"
	"storefront/internal/infra"
	"storefront/internal/pkg/money"
	"storefront/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PromotionRepository reads promotion rows and spends redemptions.
// Decimal columns travel as text so that scanning never goes through a
// float.
type PromotionRepository struct {
	db *pgxpool.Pool
}

func NewPromotionRepository(db *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{db: db}
}

const findPromotionByCodeSQL = `
SELECT id, code, kind, value::text, min_cart_amount::text,
       valid_from, valid_until, max_redemptions, redemptions_used
FROM promotions
WHERE code = $1
`

func (r *PromotionRepository) FindByCode(ctx context.Context, code string) (*commands.PromotionSnapshot, error) {
	row := r.db.QueryRow(ctx, findPromotionByCodeSQL, code)

	var (
		snap          commands.PromotionSnapshot
		value         string
		minCartAmount string
		validFrom     *time.Time
		validUntil    *time.Time
	)
	err := row.Scan(
		&snap.ID,
		&snap.Code,
		&snap.Kind,
		&value,
		&minCartAmount,
		&validFrom,
		&validUntil,
		&snap.MaxRedemptions,
		&snap.RedemptionsUsed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("promotion not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find promotion by code", err)
	}

	snap.Value, err = decimal.NewFromString(value)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to parse promotion value", err)
	}
	snap.MinCartAmount, err = money.FromString(minCartAmount)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to parse promotion minimum", err)
	}
	snap.ValidFrom = validFrom
	snap.ValidUntil = validUntil

	return &snap, nil
}

// FindPromotionByCode is the read-side lookup; it converts straight to
// the domain entity.
func (r *PromotionRepository) FindPromotionByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	snap, err := r.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	p, err := snap.ToDomain()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert promotion row", err)
	}
	return p, nil
}

const incrementRedemptionSQL = `
UPDATE promotions
SET redemptions_used = redemptions_used + 1, updated_at = now()
WHERE id = $1
  AND (max_redemptions <= 0 OR redemptions_used < max_redemptions)
`

// IncrementRedemption spends one redemption inside the caller's
// transaction. The guard in the WHERE clause makes the budget check and
// the increment one atomic statement; zero rows means the budget was
// exhausted by a concurrent submission.
func (r *PromotionRepository) IncrementRedemption(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, incrementRedemptionSQL, id)
	if err != nil {
		return infra.WrapRepoErr("failed to increment promotion redemption", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("promotion redemption budget exhausted", nil, infra.KindConflict)
	}
	return nil
}
