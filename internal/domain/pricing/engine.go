package pricing

import (
	"storefront/internal/domain/cart"
	"storefront/internal/domain/promotion"
	"storefront/internal/pkg/config"
	"storefront/internal/pkg/money"

	"github.com/shopspring/decimal"
)

// Result holds the derived totals for one cart + promotion combination.
// It is recomputed on every read and never persisted, so totals can never
// drift from cart content.
type Result struct {
	Subtotal    money.Money
	Discount    money.Money
	ShippingFee money.Money
	Tax         money.Money
	Total       money.Money
}

// LineAmount is the pricing engine's view of a cart line: an
// authoritative unit price and a quantity. Which price is authoritative
// (snapshot for preview, catalog for checkout) is the caller's decision.
type LineAmount struct {
	UnitPrice money.Money
	Quantity  int
}

// Engine is the single place totals are computed. Deterministic and free
// of I/O; eligibility checks that need the promotion service happen
// before a promotion reaches this point.
type Engine struct {
	taxRate               decimal.Decimal
	baseShippingFee       money.Money
	freeShippingThreshold money.Money
}

func NewEngine(taxRate decimal.Decimal, baseShippingFee, freeShippingThreshold money.Money) *Engine {
	return &Engine{
		taxRate:               taxRate,
		baseShippingFee:       baseShippingFee,
		freeShippingThreshold: freeShippingThreshold,
	}
}

func NewEngineFromConfig(cfg config.PricingConfig) (*Engine, error) {
	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return nil, err
	}
	baseFee, err := money.FromString(cfg.BaseShippingFee)
	if err != nil {
		return nil, err
	}
	threshold, err := money.FromString(cfg.FreeShippingThreshold)
	if err != nil {
		return nil, err
	}
	return NewEngine(taxRate, baseFee, threshold), nil
}

// Price computes subtotal, discount, shipping, tax and total.
//
//   - discount is zero without a promotion or below its cart minimum
//   - shipping is the flat base fee, zeroed when the post-discount
//     subtotal reaches the free-shipping threshold (inclusive) or the
//     promotion itself grants free shipping
//   - tax applies to the post-discount, pre-shipping amount; shipping is
//     not taxed
//
// All arithmetic is exact; rounding happens at serialization only.
func (e *Engine) Price(lines []LineAmount, promo *promotion.Promotion) Result {
	subtotal := money.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.MulInt(int64(l.Quantity)))
	}

	discount := money.Zero
	freeShippingPromo := false
	if promo != nil && subtotal.GreaterThanOrEqual(promo.MinCartAmount()) {
		discount = promo.Discount(subtotal)
		freeShippingPromo = promo.GrantsFreeShipping()
	}

	discounted := subtotal.Sub(discount)

	shippingFee := e.baseShippingFee
	if freeShippingPromo || discounted.GreaterThanOrEqual(e.freeShippingThreshold) {
		shippingFee = money.Zero
	}

	tax := discounted.Mul(e.taxRate)
	total := discounted.Add(shippingFee).Add(tax)

	return Result{
		Subtotal:    subtotal,
		Discount:    discount,
		ShippingFee: shippingFee,
		Tax:         tax,
		Total:       total,
	}
}

// PriceCartSnapshot prices a cart from its add-time price snapshots.
// Cart-preview display only.
func (e *Engine) PriceCartSnapshot(c *cart.Cart, promo *promotion.Promotion) Result {
	return e.Price(SnapshotAmounts(c), promo)
}

// SnapshotAmounts extracts preview line amounts from a cart.
func SnapshotAmounts(c *cart.Cart) []LineAmount {
	lines := c.Lines()
	amounts := make([]LineAmount, len(lines))
	for i, l := range lines {
		amounts[i] = LineAmount{UnitPrice: l.UnitPrice(), Quantity: l.Quantity()}
	}
	return amounts
}
