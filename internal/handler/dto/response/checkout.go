package response

import (
	"storefront/internal/domain/checkout"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
)

type CheckoutResponse struct {
	SessionID       uuid.UUID         `json:"session_id"`
	Step            string            `json:"step"`
	ShippingAddress *checkout.Address `json:"shipping_address,omitempty"`
	BillingAddress  *checkout.Address `json:"billing_address,omitempty"`
	SameAsShipping  bool              `json:"same_as_shipping"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
	Pricing         PricingResponse   `json:"pricing"`
}

func FromCheckoutView(rm *queries.CheckoutView) *CheckoutResponse {
	return &CheckoutResponse{
		SessionID:       rm.SessionID,
		Step:            rm.Step,
		ShippingAddress: rm.ShippingAddress,
		BillingAddress:  rm.BillingAddress,
		SameAsShipping:  rm.SameAsShipping,
		PaymentMethod:   rm.PaymentMethod,
		Pricing:         FromPricingView(rm.Pricing),
	}
}
