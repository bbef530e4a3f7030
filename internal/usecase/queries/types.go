package queries

import (
	"time"

	"storefront/internal/domain/checkout"
	"storefront/internal/pkg/money"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

type CartLineView struct {
	ProductID   uuid.UUID   `json:"product_id"`
	VariantKey  string      `json:"variant_key"`
	DisplayName string      `json:"display_name"`
	ImageRef    string      `json:"image_ref,omitempty"`
	UnitPrice   money.Money `json:"unit_price"`
	Quantity    int         `json:"quantity"`
	LineTotal   money.Money `json:"line_total"`
}

type AppliedPromotionView struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

type PricingView struct {
	Subtotal    money.Money `json:"subtotal"`
	Discount    money.Money `json:"discount"`
	ShippingFee money.Money `json:"shipping_fee"`
	Tax         money.Money `json:"tax"`
	Total       money.Money `json:"total"`
}

type CartView struct {
	Lines     []CartLineView        `json:"lines"`
	ItemCount int                   `json:"item_count"`
	Promotion *AppliedPromotionView `json:"promotion,omitempty"`
	Pricing   PricingView           `json:"pricing"`
}

type CheckoutView struct {
	SessionID       uuid.UUID         `json:"session_id"`
	Step            string            `json:"step"`
	ShippingAddress *checkout.Address `json:"shipping_address,omitempty"`
	BillingAddress  *checkout.Address `json:"billing_address,omitempty"`
	SameAsShipping  bool              `json:"same_as_shipping"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
	Pricing         PricingView       `json:"pricing"`
}

type OrderLineView struct {
	ProductID   uuid.UUID   `json:"product_id"`
	VariantKey  string      `json:"variant_key"`
	DisplayName string      `json:"display_name"`
	ImageRef    string      `json:"image_ref,omitempty"`
	UnitPrice   money.Money `json:"unit_price"`
	Quantity    int         `json:"quantity"`
	LineTotal   money.Money `json:"line_total"`
}

type TrackingView struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

type OrderView struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	Lines           []OrderLineView  `json:"lines"`
	ShippingAddress checkout.Address `json:"shipping_address"`
	BillingAddress  checkout.Address `json:"billing_address"`
	PaymentMethod   string           `json:"payment_method"`
	Pricing         PricingView      `json:"pricing"`
	PromotionCode   *string          `json:"promotion_code,omitempty"`
	Status          string           `json:"status"`
	Tracking        *TrackingView    `json:"tracking,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type OrderListItem struct {
	ID        uuid.UUID   `json:"id"`
	Status    string      `json:"status"`
	Total     money.Money `json:"total"`
	ItemCount int         `json:"item_count"`
	CreatedAt time.Time   `json:"created_at"`
}
