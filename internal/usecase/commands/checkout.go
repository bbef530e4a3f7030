package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/checkout"
	"storefront/internal/domain/order"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/promotion"
	"storefront/internal/infra"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/errs"
	"storefront/internal/pkg/money"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrCartEmpty               = errs.New("cart is empty")
	ErrCheckoutNotFound        = errs.New("checkout session not found")
	ErrProductUnavailable      = errs.New("product no longer available")
	ErrSubmissionInProgress    = errs.New("submission currently in progress")
	ErrDuplicateSubmission     = errs.New("duplicate submission with different parameters")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// PriceChangedError aborts a submission whose recomputed total differs
// from the total the customer last saw. It carries the fresh pricing so
// the review step can re-render instead of silently charging a
// different amount.
type PriceChangedError struct {
	Pricing queries.PricingView
}

func (e *PriceChangedError) Error() string {
	return "cart pricing changed since last displayed total"
}

type SubmitInput struct {
	ExpectedTotal money.Money
}

type SubmitResult struct {
	Order      *queries.OrderView
	IsReplayed bool
}

type CheckoutCommands interface {
	Start(ctx context.Context, userID uuid.UUID) (*queries.CheckoutView, error)
	SubmitShipping(ctx context.Context, userID uuid.UUID, addr checkout.Address) (*queries.CheckoutView, error)
	SubmitPayment(ctx context.Context, userID uuid.UUID, method checkout.PaymentMethod, sameAsShipping bool, billing *checkout.Address) (*queries.CheckoutView, error)
	Submit(ctx context.Context, userID uuid.UUID, idempotencyKey uuid.UUID, input SubmitInput) (*SubmitResult, error)
	Abandon(ctx context.Context, userID uuid.UUID) error
}

type checkoutUseCaseImpl struct {
	sessions        CheckoutSessionRepository
	carts           CartRepository
	promotions      PromotionRepository
	catalog         CatalogRepository
	orders          OrderRepository
	idempotency     IdempotencyRepository
	engine          *pricing.Engine
	checkoutQueries queries.CheckoutQueries
	orderQueries    queries.OrderQueries
	db              TxStarter
	clock           clock.Clock
}

func NewCheckoutUseCase(
	sessions CheckoutSessionRepository,
	carts CartRepository,
	promotions PromotionRepository,
	catalog CatalogRepository,
	orders OrderRepository,
	idempotency IdempotencyRepository,
	engine *pricing.Engine,
	checkoutQueries queries.CheckoutQueries,
	orderQueries queries.OrderQueries,
	db TxStarter,
	clock clock.Clock,
) CheckoutCommands {
	return &checkoutUseCaseImpl{
		sessions:        sessions,
		carts:           carts,
		promotions:      promotions,
		catalog:         catalog,
		orders:          orders,
		idempotency:     idempotency,
		engine:          engine,
		checkoutQueries: checkoutQueries,
		orderQueries:    orderQueries,
		db:              db,
		clock:           clock,
	}
}

// Start opens a checkout session for a non-empty cart. A session already
// in progress is resumed, not replaced.
func (u *checkoutUseCaseImpl) Start(ctx context.Context, userID uuid.UUID) (*queries.CheckoutView, error) {
	c, err := u.carts.Load(ctx, userID)
	if err != nil {
		return nil, errs.Mark(err, ErrStorageFailed)
	}
	if c.IsEmpty() {
		return nil, ErrCartEmpty
	}

	if _, err := u.sessions.Find(ctx, userID); err == nil {
		return u.checkoutQueries.Get(ctx, userID)
	} else if !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrStorageFailed)
	}

	session := checkout.NewSession(userID, u.clock.Now())
	if err := u.sessions.Save(ctx, userID, session); err != nil {
		return nil, errs.Mark(err, ErrStorageFailed)
	}
	return u.checkoutQueries.Get(ctx, userID)
}

func (u *checkoutUseCaseImpl) SubmitShipping(ctx context.Context, userID uuid.UUID, addr checkout.Address) (*queries.CheckoutView, error) {
	return u.mutateSession(ctx, userID, func(s *checkout.Session) error {
		return s.SubmitShipping(addr)
	})
}

func (u *checkoutUseCaseImpl) SubmitPayment(ctx context.Context, userID uuid.UUID, method checkout.PaymentMethod, sameAsShipping bool, billing *checkout.Address) (*queries.CheckoutView, error) {
	return u.mutateSession(ctx, userID, func(s *checkout.Session) error {
		return s.SubmitPayment(method, sameAsShipping, billing)
	})
}

// Submit turns the reviewed session into an order. The promotion is
// re-validated and the cart re-priced from the catalog at this moment,
// not at the moment the code was entered; a total that moved since the
// last display aborts the submission. The Idempotency-Key makes retries
// replay the original order instead of charging twice.
func (u *checkoutUseCaseImpl) Submit(ctx context.Context, userID uuid.UUID, idempotencyKey uuid.UUID, input SubmitInput) (*SubmitResult, error) {
	session, err := u.findSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	c, err := u.carts.Load(ctx, userID)
	if err != nil {
		return nil, errs.Mark(err, ErrStorageFailed)
	}
	if c.IsEmpty() {
		return nil, ErrCartEmpty
	}

	replayed, err := u.handleIdempotency(ctx, idempotencyKey, userID, u.requestHash(userID, input))
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return &SubmitResult{Order: replayed, IsReplayed: true}, nil
	}

	orderLines, amounts, promo, err := u.repriceForSubmission(ctx, c, input.ExpectedTotal)
	if err != nil {
		u.releaseIdempotency(ctx, idempotencyKey, userID)
		return nil, err
	}

	if err := session.MarkSubmitted(); err != nil {
		u.releaseIdempotency(ctx, idempotencyKey, userID)
		return nil, err
	}

	orderEntity, err := order.NewOrder(
		userID,
		orderLines,
		*session.ShippingAddress(),
		*session.BillingAddress(),
		session.PaymentMethod(),
		amounts,
		promoID(promo),
		promoCode(promo),
		u.clock.Now(),
	)
	if err != nil {
		u.releaseIdempotency(ctx, idempotencyKey, userID)
		return nil, errs.Mark(err, ErrCartEmpty)
	}

	if err := u.persistOrder(ctx, orderEntity, promo); err != nil {
		u.releaseIdempotency(ctx, idempotencyKey, userID)
		return nil, err
	}

	if err := u.idempotency.Complete(ctx, idempotencyKey, userID, orderEntity.ID()); err != nil {
		slog.Warn("failed to complete idempotency record", "error", err)
	}

	// The cart is consumed by the order; a failed cleanup only leaves a
	// stale snapshot behind, never an inconsistent order.
	if err := u.carts.Delete(ctx, userID); err != nil {
		slog.Warn("failed to clear cart after submission", "error", err)
	}
	if err := u.sessions.Delete(ctx, userID); err != nil {
		slog.Warn("failed to delete checkout session after submission", "error", err)
	}

	view, err := u.orderQueries.GetByIDSystem(ctx, orderEntity.ID())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return &SubmitResult{Order: view, IsReplayed: false}, nil
}

// Abandon discards the session; no order is created. Abandoning an
// absent session is a no-op.
func (u *checkoutUseCaseImpl) Abandon(ctx context.Context, userID uuid.UUID) error {
	if err := u.sessions.Delete(ctx, userID); err != nil {
		return errs.Mark(err, ErrStorageFailed)
	}
	return nil
}

func (u *checkoutUseCaseImpl) findSession(ctx context.Context, userID uuid.UUID) (*checkout.Session, error) {
	session, err := u.sessions.Find(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCheckoutNotFound
		}
		return nil, errs.Mark(err, ErrStorageFailed)
	}
	return session, nil
}

func (u *checkoutUseCaseImpl) mutateSession(ctx context.Context, userID uuid.UUID, fn func(*checkout.Session) error) (*queries.CheckoutView, error) {
	session, err := u.findSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := u.sessions.Save(ctx, userID, session); err != nil {
		return nil, errs.Mark(err, ErrStorageFailed)
	}
	return u.checkoutQueries.Get(ctx, userID)
}

// repriceForSubmission rebuilds the order lines from authoritative
// catalog prices, re-validates the applied promotion against the fresh
// subtotal, and compares the recomputed total to the last-displayed one.
func (u *checkoutUseCaseImpl) repriceForSubmission(ctx context.Context, c *cart.Cart, expectedTotal money.Money) ([]order.Line, order.Amounts, *promotion.Promotion, error) {
	cartLines := c.Lines()
	refs := make([]ProductRef, len(cartLines))
	for i, l := range cartLines {
		refs[i] = ProductRef{ProductID: l.Identity().ProductID(), VariantKey: l.Identity().VariantKey()}
	}

	prices, err := u.catalog.UnitPrices(ctx, refs)
	if err != nil {
		return nil, order.Amounts{}, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	orderLines := make([]order.Line, len(cartLines))
	amounts := make([]pricing.LineAmount, len(cartLines))
	for i, l := range cartLines {
		price, ok := prices[refs[i]]
		if !ok {
			return nil, order.Amounts{}, nil, ErrProductUnavailable
		}
		orderLines[i] = order.Line{
			ProductID:   l.Identity().ProductID(),
			VariantKey:  l.Identity().VariantKey(),
			DisplayName: l.DisplayName(),
			ImageRef:    l.ImageRef(),
			UnitPrice:   price,
			Quantity:    l.Quantity(),
		}
		amounts[i] = pricing.LineAmount{UnitPrice: price, Quantity: l.Quantity()}
	}

	promo, err := u.revalidatePromotion(ctx, c, amounts)
	if err != nil {
		return nil, order.Amounts{}, nil, err
	}

	// The client echoes back the total it displayed, which is the
	// 2-decimal rendering of the engine's exact result. Compare and
	// persist at that display precision, or a cart whose exact total
	// carries more decimals could never be submitted.
	result := u.engine.Price(amounts, promo)
	if !result.Total.Round().Equal(expectedTotal.Round()) {
		return nil, order.Amounts{}, nil, &PriceChangedError{Pricing: queries.ToPricingView(result)}
	}

	return orderLines, order.Amounts{
		Subtotal:    result.Subtotal.Round(),
		Discount:    result.Discount.Round(),
		ShippingFee: result.ShippingFee.Round(),
		Tax:         result.Tax.Round(),
		Total:       result.Total.Round(),
	}, promo, nil
}

func (u *checkoutUseCaseImpl) revalidatePromotion(ctx context.Context, c *cart.Cart, amounts []pricing.LineAmount) (*promotion.Promotion, error) {
	applied := c.Promotion()
	if applied == nil {
		return nil, nil
	}

	snapshot, err := u.promotions.FindByCode(ctx, applied.Code())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	promo, err := snapshot.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrPromotionNotFound)
	}

	subtotal := money.Zero
	for _, a := range amounts {
		subtotal = subtotal.Add(a.UnitPrice.MulInt(int64(a.Quantity)))
	}
	if err := promo.ValidateForCart(u.clock.Now(), subtotal); err != nil {
		return nil, err
	}
	return promo, nil
}

// persistOrder writes the order and spends the promotion redemption in
// one transaction, so a redemption is never consumed without its order
// and vice versa.
func (u *checkoutUseCaseImpl) persistOrder(ctx context.Context, o *order.Order, promo *promotion.Promotion) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback transaction", "error", rollbackErr)
		}
	}()

	if err := u.orders.Create(ctx, tx, o); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if promo != nil {
		if err := u.promotions.IncrementRedemption(ctx, tx, promo.ID()); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return promotion.ErrRedemptionLimitReached
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

// releaseIdempotency drops a claim whose submission aborted before an
// order existed. A failed release only costs the customer a fresh key;
// the record expires on its own either way.
func (u *checkoutUseCaseImpl) releaseIdempotency(ctx context.Context, key, userID uuid.UUID) {
	if err := u.idempotency.Delete(ctx, key, userID); err != nil {
		slog.Warn("failed to release idempotency record", "error", err)
	}
}

// handleIdempotency claims the key or resolves what a previous claim
// produced. A completed record replays the original order; a processing
// record with the same hash means a concurrent retry is racing us.
func (u *checkoutUseCaseImpl) handleIdempotency(ctx context.Context, key, userID uuid.UUID, requestHash string) (*queries.OrderView, error) {
	rec, inserted, err := u.idempotency.Begin(ctx, key, userID, requestHash)
	if err != nil {
		return nil, errs.Mark(err, ErrStorageFailed)
	}
	if inserted {
		return nil, nil
	}

	switch rec.Status {
	case IdempotencyCompleted:
		if rec.OrderID == nil {
			return nil, errs.New("completed submission missing order id")
		}
		return u.orderQueries.GetByIDSystem(ctx, *rec.OrderID)
	case IdempotencyProcessing:
		if rec.RequestHash != requestHash {
			return nil, ErrDuplicateSubmission
		}
		return nil, ErrSubmissionInProgress
	default:
		return nil, errs.New("invalid idempotency record status")
	}
}

func (u *checkoutUseCaseImpl) requestHash(userID uuid.UUID, input SubmitInput) string {
	data, _ := json.Marshal(map[string]string{
		"user_id":        userID.String(),
		"expected_total": input.ExpectedTotal.String(),
	})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func promoID(p *promotion.Promotion) *uuid.UUID {
	if p == nil {
		return nil
	}
	id := p.ID()
	return &id
}

func promoCode(p *promotion.Promotion) *string {
	if p == nil {
		return nil
	}
	code := p.CodeValue().String()
	return &code
}
