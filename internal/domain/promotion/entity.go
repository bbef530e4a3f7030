package promotion

import (
	"errors"
	"time"

	"storefront/internal/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Typed validation outcomes; the validator surfaces these verbatim so the
// checkout flow can map each to a distinct field-level message.
var (
	ErrCodeExpired            = errors.New("promotion code expired or not yet valid")
	ErrMinimumNotMet          = errors.New("cart subtotal below promotion minimum")
	ErrRedemptionLimitReached = errors.New("promotion redemption limit reached")
)

var oneHundred = decimal.NewFromInt(100)

// Promotion is immutable from this service's perspective: the owning
// service answers "is this code currently valid for this cart" and every
// pricing re-asks instead of caching the answer.
type Promotion struct {
	id              uuid.UUID
	code            Code
	kind            Kind
	value           decimal.Decimal // percent for percentage kind, amount for fixed
	minCartAmount   money.Money
	validFrom       *time.Time
	validUntil      *time.Time
	maxRedemptions  int
	redemptionsUsed int
}

func NewPromotion(
	id uuid.UUID,
	code string,
	kind Kind,
	value decimal.Decimal,
	minCartAmount money.Money,
	validFrom, validUntil *time.Time,
	maxRedemptions, redemptionsUsed int,
) (*Promotion, error) {
	promoCode, err := NewCode(code)
	if err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}
	switch kind {
	case KindPercentage:
		if value.IsNegative() || value.GreaterThan(oneHundred) {
			return nil, ErrInvalidPercentValue
		}
	case KindFixed:
		if value.IsNegative() {
			return nil, ErrInvalidFixedValue
		}
	}

	return &Promotion{
		id:              id,
		code:            promoCode,
		kind:            kind,
		value:           value,
		minCartAmount:   minCartAmount,
		validFrom:       validFrom,
		validUntil:      validUntil,
		maxRedemptions:  maxRedemptions,
		redemptionsUsed: redemptionsUsed,
	}, nil
}

func (p *Promotion) IsValidAt(t time.Time) bool {
	if p.validFrom != nil && t.Before(*p.validFrom) {
		return false
	}
	if p.validUntil != nil && t.After(*p.validUntil) {
		return false
	}
	return true
}

func (p *Promotion) HasRedemptionsLeft() bool {
	if p.maxRedemptions <= 0 {
		return true // unlimited
	}
	return p.redemptionsUsed < p.maxRedemptions
}

// ValidateForCart is the single eligibility check: date window, redemption
// budget, then cart minimum.
func (p *Promotion) ValidateForCart(now time.Time, subtotal money.Money) error {
	if !p.IsValidAt(now) {
		return ErrCodeExpired
	}
	if !p.HasRedemptionsLeft() {
		return ErrRedemptionLimitReached
	}
	if subtotal.LessThan(p.minCartAmount) {
		return ErrMinimumNotMet
	}
	return nil
}

// Discount returns the amount taken off the subtotal. Free-shipping
// promotions discount nothing here; they zero the shipping fee instead.
func (p *Promotion) Discount(subtotal money.Money) money.Money {
	switch p.kind {
	case KindPercentage:
		d := subtotal.Mul(p.value.Div(oneHundred))
		return d.Min(subtotal)
	case KindFixed:
		return money.New(p.value).Min(subtotal)
	default:
		return money.Zero
	}
}

func (p *Promotion) GrantsFreeShipping() bool {
	return p.kind == KindFreeShipping
}

func (p *Promotion) ID() uuid.UUID            { return p.id }
func (p *Promotion) CodeValue() Code          { return p.code }
func (p *Promotion) Kind() Kind               { return p.kind }
func (p *Promotion) Value() decimal.Decimal   { return p.value }
func (p *Promotion) MinCartAmount() money.Money { return p.minCartAmount }
func (p *Promotion) ValidFrom() *time.Time    { return p.validFrom }
func (p *Promotion) ValidUntil() *time.Time   { return p.validUntil }
func (p *Promotion) MaxRedemptions() int      { return p.maxRedemptions }
func (p *Promotion) RedemptionsUsed() int     { return p.redemptionsUsed }
