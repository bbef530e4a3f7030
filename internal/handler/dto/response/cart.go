package response

import (
	"storefront/internal/pkg/money"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
)

type CartLineResponse struct {
	ProductID   uuid.UUID   `json:"product_id"`
	VariantKey  string      `json:"variant_key"`
	DisplayName string      `json:"display_name"`
	ImageRef    string      `json:"image_ref,omitempty"`
	UnitPrice   money.Money `json:"unit_price"`
	Quantity    int         `json:"quantity"`
	LineTotal   money.Money `json:"line_total"`
}

type PromotionResponse struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

type PricingResponse struct {
	Subtotal    money.Money `json:"subtotal"`
	Discount    money.Money `json:"discount"`
	ShippingFee money.Money `json:"shipping_fee"`
	Tax         money.Money `json:"tax"`
	Total       money.Money `json:"total"`
}

type CartResponse struct {
	Lines     []CartLineResponse `json:"lines"`
	ItemCount int                `json:"item_count"`
	Promotion *PromotionResponse `json:"promotion,omitempty"`
	Pricing   PricingResponse    `json:"pricing"`
}

func FromCartView(rm *queries.CartView) *CartResponse {
	lines := make([]CartLineResponse, len(rm.Lines))
	for i, l := range rm.Lines {
		lines[i] = CartLineResponse{
			ProductID:   l.ProductID,
			VariantKey:  l.VariantKey,
			DisplayName: l.DisplayName,
			ImageRef:    l.ImageRef,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			LineTotal:   l.LineTotal,
		}
	}

	res := &CartResponse{
		Lines:     lines,
		ItemCount: rm.ItemCount,
		Pricing:   FromPricingView(rm.Pricing),
	}
	if rm.Promotion != nil {
		res.Promotion = &PromotionResponse{ID: rm.Promotion.ID, Code: rm.Promotion.Code}
	}
	return res
}

func FromPricingView(rm queries.PricingView) PricingResponse {
	return PricingResponse{
		Subtotal:    rm.Subtotal,
		Discount:    rm.Discount,
		ShippingFee: rm.ShippingFee,
		Tax:         rm.Tax,
		Total:       rm.Total,
	}
}
