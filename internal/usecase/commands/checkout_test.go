//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/checkout"
	"storefront/internal/domain/order"
	"storefront/internal/domain/pricing"
	"storefront/internal/infra"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/money"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"
	"storefront/tests/common/builder"
	commandsmock "storefront/tests/mock/commands"
	pgxmock "storefront/tests/mock/pgx"
	queriesmock "storefront/tests/mock/queries"
)

type checkoutUseCaseMocks struct {
	sessions        *commandsmock.MockCheckoutSessionRepository
	carts           *commandsmock.MockCartRepository
	promotions      *commandsmock.MockPromotionRepository
	catalog         *commandsmock.MockCatalogRepository
	orders          *commandsmock.MockOrderRepository
	idempotency     *commandsmock.MockIdempotencyRepository
	checkoutQueries *queriesmock.MockCheckoutQueries
	orderQueries    *queriesmock.MockOrderQueries
	db              *commandsmock.MockTxStarter
	tx              *pgxmock.MockTx
	clock           *clock.MockClock
}

// 20% tax, 10.00 base shipping, free shipping from 100.00.
func testEngine(t *testing.T) *pricing.Engine {
	t.Helper()
	base, err := money.FromString("10.00")
	require.NoError(t, err)
	threshold, err := money.FromString("100.00")
	require.NoError(t, err)
	return pricing.NewEngine(decimal.RequireFromString("0.20"), base, threshold)
}

func newCheckoutUseCase(t *testing.T) (commands.CheckoutCommands, checkoutUseCaseMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := checkoutUseCaseMocks{
		sessions:        commandsmock.NewMockCheckoutSessionRepository(ctrl),
		carts:           commandsmock.NewMockCartRepository(ctrl),
		promotions:      commandsmock.NewMockPromotionRepository(ctrl),
		catalog:         commandsmock.NewMockCatalogRepository(ctrl),
		orders:          commandsmock.NewMockOrderRepository(ctrl),
		idempotency:     commandsmock.NewMockIdempotencyRepository(ctrl),
		checkoutQueries: queriesmock.NewMockCheckoutQueries(ctrl),
		orderQueries:    queriesmock.NewMockOrderQueries(ctrl),
		db:              commandsmock.NewMockTxStarter(ctrl),
		tx:              pgxmock.NewMockTx(ctrl),
		clock:           clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	uc := commands.NewCheckoutUseCase(
		m.sessions, m.carts, m.promotions, m.catalog, m.orders, m.idempotency,
		testEngine(t), m.checkoutQueries, m.orderQueries, m.db, m.clock,
	)
	return uc, m
}

func notFoundErr() error {
	return infra.WrapRepoErr("missing", nil, infra.KindNotFound)
}

func TestCheckoutUseCaseStart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	t.Run("empty cart cannot start checkout", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)
		m.carts.EXPECT().Load(gomock.Any(), userID).Return(cart.New(), nil)

		_, err := uc.Start(ctx, userID)
		assert.ErrorIs(t, err, commands.ErrCartEmpty)
	})

	t.Run("opens a fresh session at the shipping step", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)

		var saved *checkout.Session
		m.carts.EXPECT().Load(gomock.Any(), userID).Return(builder.BuildCart(builder.NewCartLineBuilder()), nil)
		m.sessions.EXPECT().Find(gomock.Any(), userID).Return(nil, notFoundErr())
		m.sessions.EXPECT().Save(gomock.Any(), userID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, s *checkout.Session) error {
				saved = s
				return nil
			})
		m.checkoutQueries.EXPECT().Get(gomock.Any(), userID).Return(&queries.CheckoutView{Step: "shipping"}, nil)

		view, err := uc.Start(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, "shipping", view.Step)
		require.NotNil(t, saved)
		assert.Equal(t, checkout.StepShipping, saved.Step())
		assert.Equal(t, userID, saved.UserID())
	})

	t.Run("an in-progress session is resumed, not replaced", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)
		existing := builder.NewCheckoutSessionBuilder().AtReview().BuildDomain()

		m.carts.EXPECT().Load(gomock.Any(), userID).Return(builder.BuildCart(builder.NewCartLineBuilder()), nil)
		m.sessions.EXPECT().Find(gomock.Any(), userID).Return(existing, nil)
		m.checkoutQueries.EXPECT().Get(gomock.Any(), userID).Return(&queries.CheckoutView{Step: "review"}, nil)

		view, err := uc.Start(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, "review", view.Step)
	})
}

func TestCheckoutUseCaseSubmitShipping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	t.Run("persists the advanced session", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)
		session := builder.NewCheckoutSessionBuilder().BuildDomain()

		m.sessions.EXPECT().Find(gomock.Any(), userID).Return(session, nil)
		m.sessions.EXPECT().Save(gomock.Any(), userID, session).Return(nil)
		m.checkoutQueries.EXPECT().Get(gomock.Any(), userID).Return(&queries.CheckoutView{Step: "payment"}, nil)

		_, err := uc.SubmitShipping(ctx, userID, builder.NewAddressBuilder().BuildDomain())

		require.NoError(t, err)
		assert.Equal(t, checkout.StepPayment, session.Step())
	})

	t.Run("no session means checkout was never started", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)
		m.sessions.EXPECT().Find(gomock.Any(), userID).Return(nil, notFoundErr())

		_, err := uc.SubmitShipping(ctx, userID, builder.NewAddressBuilder().BuildDomain())
		assert.ErrorIs(t, err, commands.ErrCheckoutNotFound)
	})

	t.Run("a failed gate is not persisted", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)
		session := builder.NewCheckoutSessionBuilder().BuildDomain()

		m.sessions.EXPECT().Find(gomock.Any(), userID).Return(session, nil)

		_, err := uc.SubmitPayment(ctx, userID, checkout.PaymentCard, true, nil)
		assert.ErrorIs(t, err, checkout.ErrInvalidStep)
	})
}

func TestCheckoutUseCaseSubmit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()
	key := uuid.New()

	expectTotal := func(t *testing.T, s string) commands.SubmitInput {
		t.Helper()
		total, err := money.FromString(s)
		require.NoError(t, err)
		return commands.SubmitInput{ExpectedTotal: total}
	}

	// one line, snapshot price 19.99 x 2
	seedCartAndSession := func(m checkoutUseCaseMocks, lb *builder.CartLineBuilder) {
		session := builder.NewCheckoutSessionBuilder().AtReview().BuildDomain()
		m.sessions.EXPECT().Find(gomock.Any(), userID).Return(session, nil)
		m.carts.EXPECT().Load(gomock.Any(), userID).Return(builder.BuildCart(lb), nil)
	}

	t.Run("unchanged prices submit at the displayed total", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)
		lb := builder.NewCartLineBuilder()
		seedCartAndSession(m, lb)

		m.idempotency.EXPECT().Begin(gomock.Any(), key, userID, gomock.Any()).
			Return(nil, true, nil)

		// snapshot price still current: 19.99 x 2
		ref := commands.ProductRef{ProductID: lb.ProductID, VariantKey: lb.VariantKey}
		m.catalog.EXPECT().UnitPrices(gomock.Any(), []commands.ProductRef{ref}).
			Return(map[commands.ProductRef]money.Money{ref: lb.BuildPriceInfo().UnitPrice}, nil)

		var created *order.Order
		m.db.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
		m.orders.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ pgx.Tx, o *order.Order) error {
				created = o
				return nil
			})
		m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
		m.tx.EXPECT().Rollback(gomock.Any()).Return(pgx.ErrTxClosed)

		m.idempotency.EXPECT().Complete(gomock.Any(), key, userID, gomock.Any()).Return(nil)
		m.carts.EXPECT().Delete(gomock.Any(), userID).Return(nil)
		m.sessions.EXPECT().Delete(gomock.Any(), userID).Return(nil)

		view := builder.NewOrderBuilder().BuildView()
		m.orderQueries.EXPECT().GetByIDSystem(gomock.Any(), gomock.Any()).Return(view, nil)

		// subtotal 39.98, shipping 10.00, tax 7.996: the customer saw 57.98
		result, err := uc.Submit(ctx, userID, key, expectTotal(t, "57.98"))

		require.NoError(t, err)
		assert.False(t, result.IsReplayed)
		assert.Equal(t, view, result.Order)
		require.NotNil(t, created)
		assert.Equal(t, "39.98", created.Amounts().Subtotal.String())
		assert.Equal(t, "8.00", created.Amounts().Tax.String())
		assert.Equal(t, "57.98", created.Amounts().Total.String())
		assert.True(t, created.Amounts().Total.Equal(created.Amounts().Total.Round()),
			"persisted amounts carry display precision")
	})

	t.Run("moved price aborts with the fresh pricing attached", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)
		lb := builder.NewCartLineBuilder()
		seedCartAndSession(m, lb)

		m.idempotency.EXPECT().Begin(gomock.Any(), key, userID, gomock.Any()).
			Return(nil, true, nil)

		// catalog price moved from 19.99 to 25.00
		fresh, err := money.FromString("25.00")
		require.NoError(t, err)
		ref := commands.ProductRef{ProductID: lb.ProductID, VariantKey: lb.VariantKey}
		m.catalog.EXPECT().UnitPrices(gomock.Any(), []commands.ProductRef{ref}).
			Return(map[commands.ProductRef]money.Money{ref: fresh}, nil)

		// the abort must release the key so the retry can reuse it
		m.idempotency.EXPECT().Delete(gomock.Any(), key, userID).Return(nil)

		// customer last saw the 19.99-based total
		_, err = uc.Submit(ctx, userID, key, expectTotal(t, "57.98"))

		var priceErr *commands.PriceChangedError
		require.ErrorAs(t, err, &priceErr)
		assert.Equal(t, "50.00", priceErr.Pricing.Subtotal.String())
		assert.Equal(t, "70.00", priceErr.Pricing.Total.String())
	})

	t.Run("delisted product aborts submission", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)
		lb := builder.NewCartLineBuilder()
		seedCartAndSession(m, lb)

		m.idempotency.EXPECT().Begin(gomock.Any(), key, userID, gomock.Any()).
			Return(nil, true, nil)
		m.catalog.EXPECT().UnitPrices(gomock.Any(), gomock.Any()).
			Return(map[commands.ProductRef]money.Money{}, nil)
		m.idempotency.EXPECT().Delete(gomock.Any(), key, userID).Return(nil)

		_, err := uc.Submit(ctx, userID, key, expectTotal(t, "57.98"))
		assert.ErrorIs(t, err, commands.ErrProductUnavailable)
	})

	t.Run("completed key replays the original order", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)
		lb := builder.NewCartLineBuilder()
		seedCartAndSession(m, lb)

		orderID := uuid.New()
		view := builder.NewOrderBuilder().
			With(func(b *builder.OrderBuilder) { b.ID = orderID }).
			BuildView()

		m.idempotency.EXPECT().Begin(gomock.Any(), key, userID, gomock.Any()).
			DoAndReturn(func(_ context.Context, k, u uuid.UUID, hash string) (*commands.IdempotencyRecord, bool, error) {
				return &commands.IdempotencyRecord{
					Key:         k,
					UserID:      u,
					RequestHash: hash,
					Status:      commands.IdempotencyCompleted,
					OrderID:     &orderID,
				}, false, nil
			})
		m.orderQueries.EXPECT().GetByIDSystem(gomock.Any(), orderID).Return(view, nil)

		result, err := uc.Submit(ctx, userID, key, expectTotal(t, "57.98"))

		require.NoError(t, err)
		assert.True(t, result.IsReplayed)
		assert.Equal(t, orderID, result.Order.ID)
	})

	t.Run("concurrent retry with the same parameters is in progress", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)
		lb := builder.NewCartLineBuilder()
		seedCartAndSession(m, lb)

		m.idempotency.EXPECT().Begin(gomock.Any(), key, userID, gomock.Any()).
			DoAndReturn(func(_ context.Context, k, u uuid.UUID, hash string) (*commands.IdempotencyRecord, bool, error) {
				return &commands.IdempotencyRecord{
					Key:         k,
					UserID:      u,
					RequestHash: hash,
					Status:      commands.IdempotencyProcessing,
				}, false, nil
			})

		_, err := uc.Submit(ctx, userID, key, expectTotal(t, "57.98"))
		assert.ErrorIs(t, err, commands.ErrSubmissionInProgress)
	})

	t.Run("key reuse with different parameters is rejected", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)
		lb := builder.NewCartLineBuilder()
		seedCartAndSession(m, lb)

		m.idempotency.EXPECT().Begin(gomock.Any(), key, userID, gomock.Any()).
			Return(&commands.IdempotencyRecord{
				Key:         key,
				UserID:      userID,
				RequestHash: "a-hash-from-another-request",
				Status:      commands.IdempotencyProcessing,
			}, false, nil)

		_, err := uc.Submit(ctx, userID, key, expectTotal(t, "57.98"))
		assert.ErrorIs(t, err, commands.ErrDuplicateSubmission)
	})

	t.Run("empty cart cannot submit", func(t *testing.T) {
		t.Parallel()
		uc, m := newCheckoutUseCase(t)
		session := builder.NewCheckoutSessionBuilder().AtReview().BuildDomain()

		m.sessions.EXPECT().Find(gomock.Any(), userID).Return(session, nil)
		m.carts.EXPECT().Load(gomock.Any(), userID).Return(cart.New(), nil)

		_, err := uc.Submit(ctx, userID, key, expectTotal(t, "0.00"))
		assert.ErrorIs(t, err, commands.ErrCartEmpty)
	})
}

func TestCheckoutUseCaseAbandon(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	uc, m := newCheckoutUseCase(t)
	m.sessions.EXPECT().Delete(gomock.Any(), userID).Return(nil)
	assert.NoError(t, uc.Abandon(ctx, userID))
}
