package commands

import (
	"context"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/checkout"
	"storefront/internal/domain/order"
	"storefront/internal/domain/promotion"
	"storefront/internal/pkg/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductRef identifies one purchasable variant in the catalog.
type ProductRef struct {
	ProductID  uuid.UUID
	VariantKey string
}

// CatalogProduct is the catalog's current answer for one ref; its price
// is authoritative and overrides any cart snapshot.
type CatalogProduct struct {
	Ref         ProductRef
	UnitPrice   money.Money
	DisplayName string
	ImageRef    string
}

// PromotionSnapshot is the raw promotion row; conversion to the domain
// entity (and with it format validation) happens in ToDomain.
type PromotionSnapshot struct {
	ID              uuid.UUID
	Code            string
	Kind            string
	Value           decimal.Decimal
	MinCartAmount   money.Money
	ValidFrom       *time.Time
	ValidUntil      *time.Time
	MaxRedemptions  int
	RedemptionsUsed int
}

func (s *PromotionSnapshot) ToDomain() (*promotion.Promotion, error) {
	return promotion.NewPromotion(
		s.ID,
		s.Code,
		promotion.Kind(s.Kind),
		s.Value,
		s.MinCartAmount,
		s.ValidFrom,
		s.ValidUntil,
		s.MaxRedemptions,
		s.RedemptionsUsed,
	)
}

// IdempotencyRecord tracks one submission attempt per Idempotency-Key.
type IdempotencyRecord struct {
	Key         uuid.UUID
	UserID      uuid.UUID
	RequestHash string
	Status      string // processing | completed
	OrderID     *uuid.UUID
}

const (
	IdempotencyProcessing = "processing"
	IdempotencyCompleted  = "completed"
)

// CartRepository persists the durable cart snapshot. Load never fails on
// corrupt payloads: it falls back to an empty cart and logs.
type CartRepository interface {
	Load(ctx context.Context, userID uuid.UUID) (*cart.Cart, error)
	Save(ctx context.Context, userID uuid.UUID, c *cart.Cart) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// CheckoutSessionRepository holds the ephemeral wizard state.
type CheckoutSessionRepository interface {
	Find(ctx context.Context, userID uuid.UUID) (*checkout.Session, error)
	Save(ctx context.Context, userID uuid.UUID, s *checkout.Session) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// PromotionRepository looks up promotions and spends redemptions. The
// increment is guarded: it fails with a conflict when the budget is
// already exhausted.
type PromotionRepository interface {
	FindByCode(ctx context.Context, code string) (*PromotionSnapshot, error)
	IncrementRedemption(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// CatalogRepository is the external catalog collaborator: current
// authoritative prices, used at add time for the snapshot and re-fetched
// wholesale at submission.
type CatalogRepository interface {
	FindProduct(ctx context.Context, ref ProductRef) (*CatalogProduct, error)
	UnitPrices(ctx context.Context, refs []ProductRef) (map[ProductRef]money.Money, error)
}

type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, o *order.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	// UpdateStatus persists a transitioned order guarded on the status it
	// was loaded with; a concurrent move surfaces as a conflict.
	UpdateStatus(ctx context.Context, o *order.Order, from order.Status) error
}

// IdempotencyRepository guards submission against double-charging.
// Begin atomically claims the key; inserted is false when a record
// already existed, in which case that record is returned. Delete
// releases a claim whose submission aborted before an order was
// created, so the same key stays usable for the retry.
type IdempotencyRepository interface {
	Begin(ctx context.Context, key, userID uuid.UUID, requestHash string) (rec *IdempotencyRecord, inserted bool, err error)
	Complete(ctx context.Context, key, userID uuid.UUID, orderID uuid.UUID) error
	Delete(ctx context.Context, key, userID uuid.UUID) error
}

// TxStarter opens a database transaction for write paths that span
// repositories. *pgxpool.Pool satisfies it.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
