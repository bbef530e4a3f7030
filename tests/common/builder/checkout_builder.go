//go:build unit || e2e

package builder

import (
	"time"

	"storefront/internal/domain/checkout"
	reqdto "storefront/internal/handler/dto/request"

	"github.com/google/uuid"
)

type AddressBuilder struct {
	FullName   string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
	Phone      string
}

func NewAddressBuilder() *AddressBuilder {
	return &AddressBuilder{
		FullName:   "Alex Martin",
		Line1:      "12 Harbour Street",
		City:       "Brighton",
		PostalCode: "BN1 1AA",
		Country:    "GB",
		Phone:      "+44 7700 900123",
	}
}

func (b *AddressBuilder) With(mutate func(*AddressBuilder)) *AddressBuilder {
	mutate(b)
	return b
}

func (b *AddressBuilder) BuildDomain() checkout.Address {
	return checkout.Address{
		FullName:   b.FullName,
		Line1:      b.Line1,
		Line2:      b.Line2,
		City:       b.City,
		PostalCode: b.PostalCode,
		Country:    b.Country,
		Phone:      b.Phone,
	}
}

func (b *AddressBuilder) BuildRequestDTO() reqdto.AddressPayload {
	return reqdto.AddressPayload{
		FullName:   b.FullName,
		Line1:      b.Line1,
		Line2:      b.Line2,
		City:       b.City,
		PostalCode: b.PostalCode,
		Country:    b.Country,
		Phone:      b.Phone,
	}
}

type CheckoutSessionBuilder struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Step           checkout.Step
	Shipping       *checkout.Address
	Billing        *checkout.Address
	SameAsShipping bool
	PaymentMethod  checkout.PaymentMethod
	CreatedAt      time.Time
}

func NewCheckoutSessionBuilder() *CheckoutSessionBuilder {
	return &CheckoutSessionBuilder{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Step:      checkout.StepShipping,
		CreatedAt: time.Now(),
	}
}

func (b *CheckoutSessionBuilder) With(mutate func(*CheckoutSessionBuilder)) *CheckoutSessionBuilder {
	mutate(b)
	return b
}

// AtReview fills the session as if shipping and payment were completed.
func (b *CheckoutSessionBuilder) AtReview() *CheckoutSessionBuilder {
	addr := NewAddressBuilder().BuildDomain()
	b.Step = checkout.StepReview
	b.Shipping = &addr
	b.Billing = &addr
	b.SameAsShipping = true
	b.PaymentMethod = checkout.PaymentCard
	return b
}

func (b *CheckoutSessionBuilder) BuildDomain() *checkout.Session {
	return checkout.ReconstructSession(
		b.ID,
		b.UserID,
		b.Step,
		b.Shipping,
		b.Billing,
		b.SameAsShipping,
		b.PaymentMethod,
		b.CreatedAt,
	)
}
