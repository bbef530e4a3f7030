package response

import (
	"time"

	"storefront/internal/domain/checkout"
	"storefront/internal/pkg/money"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderLineResponse struct {
	ProductID   uuid.UUID   `json:"product_id"`
	VariantKey  string      `json:"variant_key"`
	DisplayName string      `json:"display_name"`
	ImageRef    string      `json:"image_ref,omitempty"`
	UnitPrice   money.Money `json:"unit_price"`
	Quantity    int         `json:"quantity"`
	LineTotal   money.Money `json:"line_total"`
}

type TrackingResponse struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	Lines           []OrderLineResponse `json:"lines"`
	ShippingAddress checkout.Address    `json:"shipping_address"`
	BillingAddress  checkout.Address    `json:"billing_address"`
	PaymentMethod   string              `json:"payment_method"`
	Pricing         PricingResponse     `json:"pricing"`
	PromotionCode   *string             `json:"promotion_code,omitempty"`
	Status          string              `json:"status"`
	Tracking        *TrackingResponse   `json:"tracking,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type OrderListResponse struct {
	ID        uuid.UUID   `json:"id"`
	Status    string      `json:"status"`
	Total     money.Money `json:"total"`
	ItemCount int         `json:"item_count"`
	CreatedAt time.Time   `json:"created_at"`
}

func FromOrderView(rm *queries.OrderView) *OrderResponse {
	lines := make([]OrderLineResponse, len(rm.Lines))
	for i, l := range rm.Lines {
		lines[i] = OrderLineResponse{
			ProductID:   l.ProductID,
			VariantKey:  l.VariantKey,
			DisplayName: l.DisplayName,
			ImageRef:    l.ImageRef,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			LineTotal:   l.LineTotal,
		}
	}

	res := &OrderResponse{
		ID:              rm.ID,
		Lines:           lines,
		ShippingAddress: rm.ShippingAddress,
		BillingAddress:  rm.BillingAddress,
		PaymentMethod:   rm.PaymentMethod,
		Pricing:         FromPricingView(rm.Pricing),
		PromotionCode:   rm.PromotionCode,
		Status:          rm.Status,
		CreatedAt:       rm.CreatedAt,
		UpdatedAt:       rm.UpdatedAt,
	}
	if rm.Tracking != nil {
		res.Tracking = &TrackingResponse{
			Carrier:        rm.Tracking.Carrier,
			TrackingNumber: rm.Tracking.TrackingNumber,
		}
	}
	return res
}

func FromOrderListItem(rm *queries.OrderListItem) *OrderListResponse {
	return &OrderListResponse{
		ID:        rm.ID,
		Status:    rm.Status,
		Total:     rm.Total,
		ItemCount: rm.ItemCount,
		CreatedAt: rm.CreatedAt,
	}
}
