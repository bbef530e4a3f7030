package request

import (
	"storefront/internal/domain/checkout"
	"storefront/internal/pkg/money"
)

type AddressPayload struct {
	FullName   string `json:"full_name" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
}

func (p AddressPayload) ToDomain() checkout.Address {
	return checkout.Address{
		FullName:   p.FullName,
		Line1:      p.Line1,
		Line2:      p.Line2,
		City:       p.City,
		PostalCode: p.PostalCode,
		Country:    p.Country,
		Phone:      p.Phone,
	}
}

type SubmitShippingRequest struct {
	Address AddressPayload `json:"address" binding:"required"`
}

type SubmitPaymentRequest struct {
	PaymentMethod  string          `json:"payment_method" binding:"required"`
	SameAsShipping bool            `json:"same_as_shipping"`
	BillingAddress *AddressPayload `json:"billing_address,omitempty"`
}

func (r SubmitPaymentRequest) BillingDomain() *checkout.Address {
	if r.BillingAddress == nil {
		return nil
	}
	addr := r.BillingAddress.ToDomain()
	return &addr
}

// SubmitOrderRequest carries the total the customer saw at review; the
// server recomputes and rejects on mismatch.
type SubmitOrderRequest struct {
	ExpectedTotal string `json:"expected_total" binding:"required"`
}

func (r SubmitOrderRequest) ParseExpectedTotal() (money.Money, error) {
	return money.FromString(r.ExpectedTotal)
}
