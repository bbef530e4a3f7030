package queries

import (
	"context"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/checkout"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/promotion"
	"storefront/internal/infra"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrCheckoutNotFound = errs.New("checkout session not found")

// CartReader is the read-side view of the cart snapshot store.
type CartReader interface {
	Load(ctx context.Context, userID uuid.UUID) (*cart.Cart, error)
}

// PromotionReader resolves an applied code to the current promotion
// state. No caching: redemption counts and date windows move under us.
type PromotionReader interface {
	FindPromotionByCode(ctx context.Context, code string) (*promotion.Promotion, error)
}

// SessionReader is the read-side view of the checkout session store.
type SessionReader interface {
	Find(ctx context.Context, userID uuid.UUID) (*checkout.Session, error)
}

type CartQueries interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartView, error)
}

type CheckoutQueries interface {
	Get(ctx context.Context, userID uuid.UUID) (*CheckoutView, error)
}

type cartQueriesImpl struct {
	carts  CartReader
	promos PromotionReader
	engine *pricing.Engine
	clock  clock.Clock
}

func NewCartQueries(carts CartReader, promos PromotionReader, engine *pricing.Engine, clock clock.Clock) CartQueries {
	return &cartQueriesImpl{carts: carts, promos: promos, engine: engine, clock: clock}
}

// Get builds the cart view with preview pricing from the add-time price
// snapshots. An applied promotion that no longer validates prices as if
// absent; the code stays attached so the UI can show why.
func (q *cartQueriesImpl) Get(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	c, err := q.carts.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	promo := q.resolvePromotion(ctx, c)
	return buildCartView(c, q.engine.PriceCartSnapshot(c, promo)), nil
}

func (q *cartQueriesImpl) resolvePromotion(ctx context.Context, c *cart.Cart) *promotion.Promotion {
	applied := c.Promotion()
	if applied == nil {
		return nil
	}
	promo, err := q.promos.FindPromotionByCode(ctx, applied.Code())
	if err != nil {
		return nil
	}
	if !promo.IsValidAt(q.clock.Now()) || !promo.HasRedemptionsLeft() {
		return nil
	}
	return promo
}

func buildCartView(c *cart.Cart, priced pricing.Result) *CartView {
	lines := c.Lines()
	view := &CartView{
		Lines:     make([]CartLineView, len(lines)),
		ItemCount: c.ItemCount(),
		Pricing:   ToPricingView(priced),
	}
	for i, l := range lines {
		view.Lines[i] = CartLineView{
			ProductID:   l.Identity().ProductID(),
			VariantKey:  l.Identity().VariantKey(),
			DisplayName: l.DisplayName(),
			ImageRef:    l.ImageRef(),
			UnitPrice:   l.UnitPrice(),
			Quantity:    l.Quantity(),
			LineTotal:   l.LineTotal(),
		}
	}
	if p := c.Promotion(); p != nil {
		view.Promotion = &AppliedPromotionView{ID: p.ID(), Code: p.Code()}
	}
	return view
}

func ToPricingView(r pricing.Result) PricingView {
	return PricingView{
		Subtotal:    r.Subtotal,
		Discount:    r.Discount,
		ShippingFee: r.ShippingFee,
		Tax:         r.Tax,
		Total:       r.Total,
	}
}

type checkoutQueriesImpl struct {
	sessions SessionReader
	carts    CartReader
	promos   PromotionReader
	engine   *pricing.Engine
	clock    clock.Clock
}

func NewCheckoutQueries(sessions SessionReader, carts CartReader, promos PromotionReader, engine *pricing.Engine, clock clock.Clock) CheckoutQueries {
	return &checkoutQueriesImpl{sessions: sessions, carts: carts, promos: promos, engine: engine, clock: clock}
}

func (q *checkoutQueriesImpl) Get(ctx context.Context, userID uuid.UUID) (*CheckoutView, error) {
	s, err := q.sessions.Find(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCheckoutNotFound
		}
		return nil, err
	}

	c, err := q.carts.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	cq := cartQueriesImpl{carts: q.carts, promos: q.promos, engine: q.engine, clock: q.clock}
	promo := cq.resolvePromotion(ctx, c)

	return BuildCheckoutView(s, q.engine.PriceCartSnapshot(c, promo)), nil
}

func BuildCheckoutView(s *checkout.Session, priced pricing.Result) *CheckoutView {
	return &CheckoutView{
		SessionID:       s.ID(),
		Step:            s.Step().String(),
		ShippingAddress: s.ShippingAddress(),
		BillingAddress:  s.BillingAddress(),
		SameAsShipping:  s.SameAsShipping(),
		PaymentMethod:   s.PaymentMethod().String(),
		Pricing:         ToPricingView(priced),
	}
}
