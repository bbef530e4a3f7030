//go:build unit || e2e

package builder

import (
	"storefront/internal/domain/cart"
	"storefront/internal/pkg/money"
	"storefront/internal/usecase/commands"

	"github.com/google/uuid"
)

type CartLineBuilder struct {
	ProductID   uuid.UUID
	VariantKey  string
	Quantity    int
	UnitPrice   string
	DisplayName string
	ImageRef    string
}

func NewCartLineBuilder() *CartLineBuilder {
	return &CartLineBuilder{
		ProductID:   uuid.New(),
		VariantKey:  "size:M|color:black",
		Quantity:    2,
		UnitPrice:   "19.99",
		DisplayName: "Classic Tee",
		ImageRef:    "imgs/classic-tee.jpg",
	}
}

func (b *CartLineBuilder) With(mutate func(*CartLineBuilder)) *CartLineBuilder {
	mutate(b)
	return b
}

func (b *CartLineBuilder) BuildDomain() (cart.Line, error) {
	identity, err := cart.NewIdentity(b.ProductID, b.VariantKey)
	if err != nil {
		return cart.Line{}, err
	}
	return cart.NewLine(identity, b.Quantity, b.BuildPriceInfo())
}

func (b *CartLineBuilder) BuildIdentity() cart.Identity {
	identity, _ := cart.NewIdentity(b.ProductID, b.VariantKey)
	return identity
}

func (b *CartLineBuilder) BuildPriceInfo() cart.PriceInfo {
	price, _ := money.FromString(b.UnitPrice)
	return cart.PriceInfo{
		UnitPrice:   price,
		DisplayName: b.DisplayName,
		ImageRef:    b.ImageRef,
	}
}

func (b *CartLineBuilder) BuildGuestLine() commands.GuestLine {
	price, _ := money.FromString(b.UnitPrice)
	return commands.GuestLine{
		Ref: commands.ProductRef{
			ProductID:  b.ProductID,
			VariantKey: b.VariantKey,
		},
		Quantity:    b.Quantity,
		UnitPrice:   price,
		DisplayName: b.DisplayName,
		ImageRef:    b.ImageRef,
	}
}

func (b *CartLineBuilder) BuildCatalogProduct() *commands.CatalogProduct {
	price, _ := money.FromString(b.UnitPrice)
	return &commands.CatalogProduct{
		Ref: commands.ProductRef{
			ProductID:  b.ProductID,
			VariantKey: b.VariantKey,
		},
		UnitPrice:   price,
		DisplayName: b.DisplayName,
		ImageRef:    b.ImageRef,
	}
}

// BuildCart assembles a cart holding each builder's line.
func BuildCart(lineBuilders ...*CartLineBuilder) *cart.Cart {
	c := cart.New()
	for _, lb := range lineBuilders {
		_ = c.AddItem(lb.BuildIdentity(), lb.Quantity, lb.BuildPriceInfo())
	}
	return c
}
