package request

import (
	"strings"

	"storefront/internal/pkg/money"
	"storefront/internal/usecase/commands"

	"github.com/google/uuid"
)

type AddItemRequest struct {
	ProductID  uuid.UUID `json:"product_id" binding:"required"`
	VariantKey string    `json:"variant_key"`
	Quantity   int       `json:"quantity" binding:"required,gt=0"`
}

func (r AddItemRequest) ToInput() commands.AddItemInput {
	return commands.AddItemInput{
		Ref: commands.ProductRef{
			ProductID:  r.ProductID,
			VariantKey: r.VariantKey,
		},
		Quantity: r.Quantity,
	}
}

type SetQuantityRequest struct {
	ProductID  uuid.UUID `json:"product_id" binding:"required"`
	VariantKey string    `json:"variant_key"`
	Quantity   int       `json:"quantity"`
}

func (r SetQuantityRequest) ToInput() commands.SetQuantityInput {
	return commands.SetQuantityInput{
		Ref: commands.ProductRef{
			ProductID:  r.ProductID,
			VariantKey: r.VariantKey,
		},
		Quantity: r.Quantity,
	}
}

type RemoveItemRequest struct {
	ProductID  uuid.UUID `json:"product_id" binding:"required"`
	VariantKey string    `json:"variant_key"`
}

func (r RemoveItemRequest) ToRef() commands.ProductRef {
	return commands.ProductRef{
		ProductID:  r.ProductID,
		VariantKey: r.VariantKey,
	}
}

// MergeGuestLine carries one line of the client-held guest cart. Unit
// price travels as a string; it is only a display snapshot and never
// priced at checkout.
type MergeGuestLine struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	VariantKey  string    `json:"variant_key"`
	Quantity    int       `json:"quantity" binding:"required,gt=0"`
	UnitPrice   string    `json:"unit_price" binding:"required"`
	DisplayName string    `json:"display_name"`
	ImageRef    string    `json:"image_ref"`
}

type MergeCartRequest struct {
	Lines []MergeGuestLine `json:"lines" binding:"required"`
}

// ToGuestLines converts every well-formed line; lines with an unparsable
// price are handed over with a zero price and left to the use case's
// malformed-line filtering.
func (r MergeCartRequest) ToGuestLines() []commands.GuestLine {
	out := make([]commands.GuestLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		price, err := money.FromString(l.UnitPrice)
		if err != nil {
			price = money.Zero
		}
		out = append(out, commands.GuestLine{
			Ref: commands.ProductRef{
				ProductID:  l.ProductID,
				VariantKey: l.VariantKey,
			},
			Quantity:    l.Quantity,
			UnitPrice:   price,
			DisplayName: l.DisplayName,
			ImageRef:    l.ImageRef,
		})
	}
	return out
}

type ApplyPromotionRequest struct {
	Code string `json:"code" binding:"required"`
}

func (r ApplyPromotionRequest) NormalizedCode() string {
	return strings.ToUpper(strings.TrimSpace(r.Code))
}
