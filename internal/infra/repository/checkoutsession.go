package repository

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/domain/checkout"
	"storefront/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const checkoutKeyPrefix = "checkout:"

type sessionRecord struct {
	ID              uuid.UUID             `json:"id"`
	UserID          uuid.UUID             `json:"user_id"`
	Step            checkout.Step         `json:"step"`
	ShippingAddress *checkout.Address     `json:"shipping_address,omitempty"`
	BillingAddress  *checkout.Address     `json:"billing_address,omitempty"`
	SameAsShipping  bool                  `json:"same_as_shipping"`
	PaymentMethod   checkout.PaymentMethod `json:"payment_method,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// CheckoutSessionRepository holds in-flight wizard state. Sessions are
// ephemeral: the TTL is the abandonment window, refreshed on every step.
type CheckoutSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCheckoutSessionRepository(client *redis.Client, ttl time.Duration) *CheckoutSessionRepository {
	return &CheckoutSessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *CheckoutSessionRepository) Find(ctx context.Context, userID uuid.UUID) (*checkout.Session, error) {
	raw, err := r.client.Get(ctx, checkoutKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, infra.WrapRepoErr("checkout session not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load checkout session", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, infra.WrapRepoErr("failed to decode checkout session", err)
	}

	return checkout.ReconstructSession(
		rec.ID,
		rec.UserID,
		rec.Step,
		rec.ShippingAddress,
		rec.BillingAddress,
		rec.SameAsShipping,
		rec.PaymentMethod,
		rec.CreatedAt,
	), nil
}

func (r *CheckoutSessionRepository) Save(ctx context.Context, userID uuid.UUID, s *checkout.Session) error {
	rec := sessionRecord{
		ID:              s.ID(),
		UserID:          s.UserID(),
		Step:            s.Step(),
		ShippingAddress: s.ShippingAddress(),
		BillingAddress:  s.BillingAddress(),
		SameAsShipping:  s.SameAsShipping(),
		PaymentMethod:   s.PaymentMethod(),
		CreatedAt:       s.CreatedAt(),
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return infra.WrapRepoErr("failed to encode checkout session", err)
	}
	if err := r.client.Set(ctx, checkoutKey(userID), raw, r.ttl).Err(); err != nil {
		return infra.WrapRepoErr("failed to save checkout session", err)
	}
	return nil
}

func (r *CheckoutSessionRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, checkoutKey(userID)).Err(); err != nil {
		return infra.WrapRepoErr("failed to delete checkout session", err)
	}
	return nil
}

func checkoutKey(userID uuid.UUID) string {
	return checkoutKeyPrefix + userID.String()
}
