//go:build unit || e2e

package builder

import (
	"time"

	"storefront/internal/domain/promotion"
	"storefront/internal/pkg/money"
	"storefront/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PromotionBuilder struct {
	ID              uuid.UUID
	Code            string
	Kind            promotion.Kind
	Value           decimal.Decimal
	MinCartAmount   string
	ValidFrom       *time.Time
	ValidUntil      *time.Time
	MaxRedemptions  int
	RedemptionsUsed int
}

func NewPromotionBuilder() *PromotionBuilder {
	return &PromotionBuilder{
		ID:              uuid.New(),
		Code:            "SPRING10",
		Kind:            promotion.KindPercentage,
		Value:           decimal.NewFromInt(10),
		MinCartAmount:   "0.00",
		MaxRedemptions:  0,
		RedemptionsUsed: 0,
	}
}

func (b *PromotionBuilder) With(mutate func(*PromotionBuilder)) *PromotionBuilder {
	mutate(b)
	return b
}

func (b *PromotionBuilder) BuildDomain() (*promotion.Promotion, error) {
	minCart, err := money.FromString(b.MinCartAmount)
	if err != nil {
		return nil, err
	}
	return promotion.NewPromotion(
		b.ID,
		b.Code,
		b.Kind,
		b.Value,
		minCart,
		b.ValidFrom,
		b.ValidUntil,
		b.MaxRedemptions,
		b.RedemptionsUsed,
	)
}

func (b *PromotionBuilder) BuildSnapshot() *commands.PromotionSnapshot {
	minCart, _ := money.FromString(b.MinCartAmount)
	return &commands.PromotionSnapshot{
		ID:              b.ID,
		Code:            b.Code,
		Kind:            string(b.Kind),
		Value:           b.Value,
		MinCartAmount:   minCart,
		ValidFrom:       b.ValidFrom,
		ValidUntil:      b.ValidUntil,
		MaxRedemptions:  b.MaxRedemptions,
		RedemptionsUsed: b.RedemptionsUsed,
	}
}
