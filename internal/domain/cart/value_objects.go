package cart

import (
	"errors"

	"storefront/internal/pkg/money"

	"github.com/google/uuid"
)

var (
	ErrInvalidProduct  = errors.New("product id is required")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// Identity keys a cart line: one product plus one concrete variant
// selection (size/color composite, or empty for variant-less products).
// Two adds with the same identity accumulate quantity on one line.
type Identity struct {
	productID  uuid.UUID
	variantKey string
}

func NewIdentity(productID uuid.UUID, variantKey string) (Identity, error) {
	if productID == uuid.Nil {
		return Identity{}, ErrInvalidProduct
	}
	return Identity{productID: productID, variantKey: variantKey}, nil
}

func (i Identity) ProductID() uuid.UUID {
	return i.productID
}

func (i Identity) VariantKey() string {
	return i.variantKey
}

// PriceInfo is the catalog data captured when a line is added. The unit
// price is a snapshot: usable for cart preview, never trusted for
// checkout pricing without re-validation against the catalog.
type PriceInfo struct {
	UnitPrice   money.Money
	DisplayName string
	ImageRef    string
}

// AppliedPromotion is the cart's reference to its single active
// promotion. Only the code is held; validity and discount parameters are
// re-fetched from the owning service at every pricing.
type AppliedPromotion struct {
	id   uuid.UUID
	code string
}

func NewAppliedPromotion(id uuid.UUID, code string) AppliedPromotion {
	return AppliedPromotion{id: id, code: code}
}

func (p AppliedPromotion) ID() uuid.UUID {
	return p.id
}

func (p AppliedPromotion) Code() string {
	return p.code
}
