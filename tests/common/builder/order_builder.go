//go:build unit || e2e

package builder

import (
	"time"

	"storefront/internal/domain/checkout"
	"storefront/internal/domain/order"
	"storefront/internal/pkg/money"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderBuilder struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Lines         []order.Line
	Shipping      checkout.Address
	Billing       checkout.Address
	PaymentMethod checkout.PaymentMethod
	Amounts       order.Amounts
	PromotionID   *uuid.UUID
	PromotionCode *string
	Status        order.Status
	Tracking      *order.Tracking
	CreatedAt     time.Time
}

func NewOrderBuilder() *OrderBuilder {
	now := time.Now()
	addr := NewAddressBuilder().BuildDomain()
	unitPrice, _ := money.FromString("25.00")
	return &OrderBuilder{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Lines: []order.Line{
			{
				ProductID:   uuid.New(),
				VariantKey:  "size:L",
				DisplayName: "Hooded Sweatshirt",
				UnitPrice:   unitPrice,
				Quantity:    2,
			},
		},
		Shipping:      addr,
		Billing:       addr,
		PaymentMethod: checkout.PaymentCard,
		Amounts:       buildAmounts("50.00", "0.00", "10.00", "10.00", "70.00"),
		Status:        order.StatusPending,
		CreatedAt:     now,
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) BuildDomain() (*order.Order, error) {
	return order.NewOrder(
		b.UserID,
		b.Lines,
		b.Shipping,
		b.Billing,
		b.PaymentMethod,
		b.Amounts,
		b.PromotionID,
		b.PromotionCode,
		b.CreatedAt,
	)
}

// BuildReconstructed gives a persisted-state order, so tests can start
// from any status rather than only pending.
func (b *OrderBuilder) BuildReconstructed() *order.Order {
	return order.ReconstructOrder(
		b.ID,
		b.UserID,
		b.Lines,
		b.Shipping,
		b.Billing,
		b.PaymentMethod,
		b.Amounts,
		b.PromotionID,
		b.PromotionCode,
		b.Status,
		b.Tracking,
		b.CreatedAt,
		b.CreatedAt,
	)
}

func (b *OrderBuilder) BuildView() *queries.OrderView {
	lines := make([]queries.OrderLineView, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = queries.OrderLineView{
			ProductID:   l.ProductID,
			VariantKey:  l.VariantKey,
			DisplayName: l.DisplayName,
			ImageRef:    l.ImageRef,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			LineTotal:   l.Total(),
		}
	}
	return &queries.OrderView{
		ID:              b.ID,
		UserID:          b.UserID,
		Lines:           lines,
		ShippingAddress: b.Shipping,
		BillingAddress:  b.Billing,
		PaymentMethod:   string(b.PaymentMethod),
		Pricing: queries.PricingView{
			Subtotal:    b.Amounts.Subtotal,
			Discount:    b.Amounts.Discount,
			ShippingFee: b.Amounts.ShippingFee,
			Tax:         b.Amounts.Tax,
			Total:       b.Amounts.Total,
		},
		PromotionCode: b.PromotionCode,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.CreatedAt,
	}
}

func buildAmounts(subtotal, discount, shipping, tax, total string) order.Amounts {
	s, _ := money.FromString(subtotal)
	d, _ := money.FromString(discount)
	sh, _ := money.FromString(shipping)
	t, _ := money.FromString(tax)
	tot, _ := money.FromString(total)
	return order.Amounts{
		Subtotal:    s,
		Discount:    d,
		ShippingFee: sh,
		Tax:         t,
		Total:       tot,
	}
}
