package commands

import (
	"context"
	"log/slog"

	"storefront/internal/domain/cart"
	"storefront/internal/infra"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/errs"
	"storefront/internal/pkg/money"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound   = errs.New("product not found")
	ErrPromotionNotFound = errs.New("promotion code not found")
	ErrInvalidCartInput  = errs.New("invalid cart input")
	ErrStorageFailed     = errs.New("cart storage operation failed")
)

type AddItemInput struct {
	Ref      ProductRef
	Quantity int
}

type SetQuantityInput struct {
	Ref      ProductRef
	Quantity int
}

// GuestLine is one line of a client-held guest cart offered for merging
// after login. Malformed lines are dropped, mirroring snapshot loading.
type GuestLine struct {
	Ref         ProductRef
	Quantity    int
	UnitPrice   money.Money
	DisplayName string
	ImageRef    string
}

type CartCommands interface {
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*queries.CartView, error)
	SetQuantity(ctx context.Context, userID uuid.UUID, input SetQuantityInput) (*queries.CartView, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, ref ProductRef) (*queries.CartView, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Merge(ctx context.Context, userID uuid.UUID, guest []GuestLine) (*queries.CartView, error)
	ApplyPromotion(ctx context.Context, userID uuid.UUID, code string) (*queries.CartView, error)
	ClearPromotion(ctx context.Context, userID uuid.UUID) (*queries.CartView, error)
}

type cartUseCaseImpl struct {
	carts       CartRepository
	catalog     CatalogRepository
	promotions  PromotionRepository
	cartQueries queries.CartQueries
	clock       clock.Clock
}

func NewCartUseCase(
	carts CartRepository,
	catalog CatalogRepository,
	promotions PromotionRepository,
	cartQueries queries.CartQueries,
	clock clock.Clock,
) CartCommands {
	return &cartUseCaseImpl{
		carts:       carts,
		catalog:     catalog,
		promotions:  promotions,
		cartQueries: cartQueries,
		clock:       clock,
	}
}

// AddItem captures the catalog's current price as the line snapshot and
// accumulates quantity onto an existing line with the same identity.
func (u *cartUseCaseImpl) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*queries.CartView, error) {
	product, err := u.catalog.FindProduct(ctx, input.Ref)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, errs.Mark(err, ErrStorageFailed)
	}

	return u.mutate(ctx, userID, func(c *cart.Cart) error {
		identity, err := cart.NewIdentity(input.Ref.ProductID, input.Ref.VariantKey)
		if err != nil {
			return errs.Mark(err, ErrInvalidCartInput)
		}
		if addErr := c.AddItem(identity, input.Quantity, cart.PriceInfo{
			UnitPrice:   product.UnitPrice,
			DisplayName: product.DisplayName,
			ImageRef:    product.ImageRef,
		}); addErr != nil {
			return errs.Mark(addErr, ErrInvalidCartInput)
		}
		return nil
	})
}

func (u *cartUseCaseImpl) SetQuantity(ctx context.Context, userID uuid.UUID, input SetQuantityInput) (*queries.CartView, error) {
	return u.mutate(ctx, userID, func(c *cart.Cart) error {
		identity, err := cart.NewIdentity(input.Ref.ProductID, input.Ref.VariantKey)
		if err != nil {
			return errs.Mark(err, ErrInvalidCartInput)
		}
		c.SetQuantity(identity, input.Quantity)
		return nil
	})
}

func (u *cartUseCaseImpl) RemoveItem(ctx context.Context, userID uuid.UUID, ref ProductRef) (*queries.CartView, error) {
	return u.mutate(ctx, userID, func(c *cart.Cart) error {
		identity, err := cart.NewIdentity(ref.ProductID, ref.VariantKey)
		if err != nil {
			return errs.Mark(err, ErrInvalidCartInput)
		}
		c.RemoveItem(identity)
		return nil
	})
}

func (u *cartUseCaseImpl) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := u.carts.Delete(ctx, userID); err != nil {
		return errs.Mark(err, ErrStorageFailed)
	}
	return nil
}

// Merge reconciles a guest cart into the authenticated cart. The merge
// runs into a fresh accumulator, so replaying the same guest cart does
// not double quantities beyond the defined sum-and-clamp.
func (u *cartUseCaseImpl) Merge(ctx context.Context, userID uuid.UUID, guest []GuestLine) (*queries.CartView, error) {
	guestCart := cart.New()
	for _, gl := range guest {
		identity, err := cart.NewIdentity(gl.Ref.ProductID, gl.Ref.VariantKey)
		if err != nil {
			slog.Warn("dropping malformed guest cart line", "error", err)
			continue
		}
		if addErr := guestCart.AddItem(identity, gl.Quantity, cart.PriceInfo{
			UnitPrice:   gl.UnitPrice,
			DisplayName: gl.DisplayName,
			ImageRef:    gl.ImageRef,
		}); addErr != nil {
			slog.Warn("dropping malformed guest cart line", "error", addErr)
		}
	}

	return u.mutateCart(ctx, userID, func(c *cart.Cart) (*cart.Cart, error) {
		return c.Merge(guestCart), nil
	})
}

// ApplyPromotion validates the code against the current cart subtotal
// and replaces any previously applied promotion. The validator call is a
// single external request honoring ctx cancellation; a stale in-flight
// validation can therefore never overwrite a newer application.
func (u *cartUseCaseImpl) ApplyPromotion(ctx context.Context, userID uuid.UUID, code string) (*queries.CartView, error) {
	snapshot, err := u.promotions.FindByCode(ctx, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, errs.Mark(err, ErrStorageFailed)
	}

	promo, err := snapshot.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrPromotionNotFound)
	}

	return u.mutate(ctx, userID, func(c *cart.Cart) error {
		if valErr := promo.ValidateForCart(u.clock.Now(), c.SnapshotSubtotal()); valErr != nil {
			return valErr
		}
		c.ApplyPromotion(cart.NewAppliedPromotion(promo.ID(), promo.CodeValue().String()))
		return nil
	})
}

func (u *cartUseCaseImpl) ClearPromotion(ctx context.Context, userID uuid.UUID) (*queries.CartView, error) {
	return u.mutate(ctx, userID, func(c *cart.Cart) error {
		c.ClearPromotion()
		return nil
	})
}

// mutate applies one functional update against the latest persisted
// state. Every mutation loads fresh, never a snapshot captured before an
// earlier call resolved; rapid repeated updates cannot lose increments.
func (u *cartUseCaseImpl) mutate(ctx context.Context, userID uuid.UUID, fn func(*cart.Cart) error) (*queries.CartView, error) {
	return u.mutateCart(ctx, userID, func(c *cart.Cart) (*cart.Cart, error) {
		if err := fn(c); err != nil {
			return nil, err
		}
		return c, nil
	})
}

func (u *cartUseCaseImpl) mutateCart(ctx context.Context, userID uuid.UUID, fn func(*cart.Cart) (*cart.Cart, error)) (*queries.CartView, error) {
	c, err := u.carts.Load(ctx, userID)
	if err != nil {
		return nil, errs.Mark(err, ErrStorageFailed)
	}

	next, err := fn(c)
	if err != nil {
		return nil, err
	}

	if err := u.carts.Save(ctx, userID, next); err != nil {
		return nil, errs.Mark(err, ErrStorageFailed)
	}

	return u.cartQueries.Get(ctx, userID)
}
