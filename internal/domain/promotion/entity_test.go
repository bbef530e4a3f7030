//go:build unit

package promotion_test

import (
	"testing"
	"time"

	"storefront/internal/domain/promotion"
	"storefront/internal/pkg/money"
	"storefront/tests/common/builder"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.PromotionBuilder)
	errIs  error
}

func TestNewPromotion(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewPromotionBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.Equal(t, "SPRING10", actual.CodeValue().String())
		assert.Equal(t, promotion.KindPercentage, actual.Kind())
	})

	t.Run("code format validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "lowercase input is normalized",
				mutate: func(b *builder.PromotionBuilder) { b.Code = "spring10" },
			},
			{
				name:   "minimum length code",
				mutate: func(b *builder.PromotionBuilder) { b.Code = "AB1" },
			},
			{
				name:   "maximum length code",
				mutate: func(b *builder.PromotionBuilder) { b.Code = "A1234567890123456789" },
			},
			{
				name:   "too short",
				mutate: func(b *builder.PromotionBuilder) { b.Code = "AB" },
				errIs:  promotion.ErrInvalidCode,
			},
			{
				name:   "too long",
				mutate: func(b *builder.PromotionBuilder) { b.Code = "A12345678901234567890" },
				errIs:  promotion.ErrInvalidCode,
			},
			{
				name:   "special characters",
				mutate: func(b *builder.PromotionBuilder) { b.Code = "SPRING-10" },
				errIs:  promotion.ErrInvalidCode,
			},
			{
				name:   "empty code",
				mutate: func(b *builder.PromotionBuilder) { b.Code = "" },
				errIs:  promotion.ErrInvalidCode,
			},
		})
	})

	t.Run("value validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name: "percentage above 100",
				mutate: func(b *builder.PromotionBuilder) {
					b.Kind = promotion.KindPercentage
					b.Value = decimal.NewFromInt(101)
				},
				errIs: promotion.ErrInvalidPercentValue,
			},
			{
				name: "negative percentage",
				mutate: func(b *builder.PromotionBuilder) {
					b.Kind = promotion.KindPercentage
					b.Value = decimal.NewFromInt(-1)
				},
				errIs: promotion.ErrInvalidPercentValue,
			},
			{
				name: "negative fixed amount",
				mutate: func(b *builder.PromotionBuilder) {
					b.Kind = promotion.KindFixed
					b.Value = decimal.NewFromInt(-5)
				},
				errIs: promotion.ErrInvalidFixedValue,
			},
			{
				name:   "unknown kind",
				mutate: func(b *builder.PromotionBuilder) { b.Kind = promotion.Kind("bogo") },
				errIs:  promotion.ErrInvalidKind,
			},
		})
	})
}

func TestValidateForCart(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	subtotal := mustMoney(t, "50.00")

	t.Run("valid within window and budget", func(t *testing.T) {
		p := buildPromotion(t, nil)
		require.NoError(t, p.ValidateForCart(now, subtotal))
	})

	t.Run("not yet active", func(t *testing.T) {
		from := now.Add(time.Hour)
		p := buildPromotion(t, func(b *builder.PromotionBuilder) { b.ValidFrom = &from })
		require.ErrorIs(t, p.ValidateForCart(now, subtotal), promotion.ErrCodeExpired)
	})

	t.Run("expired", func(t *testing.T) {
		until := now.Add(-time.Hour)
		p := buildPromotion(t, func(b *builder.PromotionBuilder) { b.ValidUntil = &until })
		require.ErrorIs(t, p.ValidateForCart(now, subtotal), promotion.ErrCodeExpired)
	})

	t.Run("boundary instants are valid", func(t *testing.T) {
		from := now
		until := now
		p := buildPromotion(t, func(b *builder.PromotionBuilder) {
			b.ValidFrom = &from
			b.ValidUntil = &until
		})
		require.NoError(t, p.ValidateForCart(now, subtotal))
	})

	t.Run("redemption budget exhausted", func(t *testing.T) {
		p := buildPromotion(t, func(b *builder.PromotionBuilder) {
			b.MaxRedemptions = 100
			b.RedemptionsUsed = 100
		})
		require.ErrorIs(t, p.ValidateForCart(now, subtotal), promotion.ErrRedemptionLimitReached)
	})

	t.Run("zero max redemptions means unlimited", func(t *testing.T) {
		p := buildPromotion(t, func(b *builder.PromotionBuilder) {
			b.MaxRedemptions = 0
			b.RedemptionsUsed = 100000
		})
		require.NoError(t, p.ValidateForCart(now, subtotal))
	})

	t.Run("subtotal below minimum", func(t *testing.T) {
		p := buildPromotion(t, func(b *builder.PromotionBuilder) { b.MinCartAmount = "50.01" })
		require.ErrorIs(t, p.ValidateForCart(now, subtotal), promotion.ErrMinimumNotMet)
	})

	t.Run("subtotal exactly at minimum", func(t *testing.T) {
		p := buildPromotion(t, func(b *builder.PromotionBuilder) { b.MinCartAmount = "50.00" })
		require.NoError(t, p.ValidateForCart(now, subtotal))
	})
}

func TestDiscount(t *testing.T) {
	t.Run("percentage of subtotal", func(t *testing.T) {
		p := buildPromotion(t, func(b *builder.PromotionBuilder) {
			b.Kind = promotion.KindPercentage
			b.Value = decimal.NewFromInt(10)
		})
		assert.Equal(t, "5.00", p.Discount(mustMoney(t, "50.00")).String())
	})

	t.Run("fixed amount", func(t *testing.T) {
		p := buildPromotion(t, func(b *builder.PromotionBuilder) {
			b.Kind = promotion.KindFixed
			b.Value = decimal.NewFromInt(15)
		})
		assert.Equal(t, "15.00", p.Discount(mustMoney(t, "50.00")).String())
	})

	t.Run("fixed amount never exceeds subtotal", func(t *testing.T) {
		p := buildPromotion(t, func(b *builder.PromotionBuilder) {
			b.Kind = promotion.KindFixed
			b.Value = decimal.NewFromInt(80)
		})
		assert.Equal(t, "50.00", p.Discount(mustMoney(t, "50.00")).String())
	})

	t.Run("free shipping discounts nothing off the subtotal", func(t *testing.T) {
		p := buildPromotion(t, func(b *builder.PromotionBuilder) {
			b.Kind = promotion.KindFreeShipping
			b.Value = decimal.Zero
		})
		assert.True(t, p.Discount(mustMoney(t, "50.00")).IsZero())
		assert.True(t, p.GrantsFreeShipping())
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewPromotionBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.Error(t, err)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}

func buildPromotion(t *testing.T, mutate func(*builder.PromotionBuilder)) *promotion.Promotion {
	t.Helper()
	b := builder.NewPromotionBuilder()
	if mutate != nil {
		b.With(mutate)
	}
	p, err := b.BuildDomain()
	require.NoError(t, err)
	return p
}

func mustMoney(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.FromString(s)
	require.NoError(t, err)
	return m
}
