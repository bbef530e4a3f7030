package order

import (
	"errors"
	"time"

	"storefront/internal/domain/checkout"
	"storefront/internal/domain/identity"
	"storefront/internal/pkg/money"

	"github.com/google/uuid"
)

var (
	ErrNoLines             = errors.New("order requires at least one line")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrForbiddenTransition = errors.New("actor not allowed to perform this transition")
)

// Line is a frozen copy of a cart line at submission time, priced with
// the authoritative catalog price, not the cart snapshot.
type Line struct {
	ProductID   uuid.UUID
	VariantKey  string
	DisplayName string
	ImageRef    string
	UnitPrice   money.Money
	Quantity    int
}

func (l Line) Total() money.Money {
	return l.UnitPrice.MulInt(int64(l.Quantity))
}

// Amounts is the frozen pricing result the customer confirmed at review.
type Amounts struct {
	Subtotal    money.Money
	Discount    money.Money
	ShippingFee money.Money
	Tax         money.Money
	Total       money.Money
}

// Tracking is fulfillment metadata attached when the order ships.
type Tracking struct {
	Carrier        string
	TrackingNumber string
}

// Order is created once at checkout submission and immutable afterwards
// except for status and tracking, both of which change only through
// Transition.
type Order struct {
	id              uuid.UUID
	userID          uuid.UUID
	lines           []Line
	shippingAddress checkout.Address
	billingAddress  checkout.Address
	paymentMethod   checkout.PaymentMethod
	amounts         Amounts
	promotionID     *uuid.UUID
	promotionCode   *string
	status          Status
	tracking        *Tracking
	createdAt       time.Time
	updatedAt       time.Time
}

func NewOrder(
	userID uuid.UUID,
	lines []Line,
	shippingAddress, billingAddress checkout.Address,
	paymentMethod checkout.PaymentMethod,
	amounts Amounts,
	promotionID *uuid.UUID,
	promotionCode *string,
	now time.Time,
) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	frozen := make([]Line, len(lines))
	copy(frozen, lines)

	return &Order{
		id:              uuid.New(),
		userID:          userID,
		lines:           frozen,
		shippingAddress: shippingAddress,
		billingAddress:  billingAddress,
		paymentMethod:   paymentMethod,
		amounts:         amounts,
		promotionID:     promotionID,
		promotionCode:   promotionCode,
		status:          StatusPending,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func ReconstructOrder(
	id, userID uuid.UUID,
	lines []Line,
	shippingAddress, billingAddress checkout.Address,
	paymentMethod checkout.PaymentMethod,
	amounts Amounts,
	promotionID *uuid.UUID,
	promotionCode *string,
	status Status,
	tracking *Tracking,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:              id,
		userID:          userID,
		lines:           lines,
		shippingAddress: shippingAddress,
		billingAddress:  billingAddress,
		paymentMethod:   paymentMethod,
		amounts:         amounts,
		promotionID:     promotionID,
		promotionCode:   promotionCode,
		status:          status,
		tracking:        tracking,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// Transition moves the order to the requested status after checking the
// transition table and the actor's authority: customers may only cancel
// a pending order; every other move belongs to the fulfillment side
// (staff or admin), which may also cancel a confirmed order. Rejected
// transitions leave the order untouched.
func (o *Order) Transition(to Status, actor identity.Role, now time.Time) error {
	if !CanTransition(o.status, to) {
		return ErrInvalidTransition
	}

	if to == StatusCancelled {
		if !actor.IsBackoffice() && o.status != StatusPending {
			return ErrForbiddenTransition
		}
	} else if !actor.IsBackoffice() {
		return ErrForbiddenTransition
	}

	o.status = to
	o.updatedAt = now
	return nil
}

// AttachTracking records carrier metadata; only meaningful once shipped.
func (o *Order) AttachTracking(t Tracking, now time.Time) {
	o.tracking = &t
	o.updatedAt = now
}

func (o *Order) ID() uuid.UUID                          { return o.id }
func (o *Order) UserID() uuid.UUID                      { return o.userID }
func (o *Order) ShippingAddress() checkout.Address      { return o.shippingAddress }
func (o *Order) BillingAddress() checkout.Address       { return o.billingAddress }
func (o *Order) PaymentMethod() checkout.PaymentMethod  { return o.paymentMethod }
func (o *Order) Amounts() Amounts                       { return o.amounts }
func (o *Order) PromotionID() *uuid.UUID                { return o.promotionID }
func (o *Order) PromotionCode() *string                 { return o.promotionCode }
func (o *Order) Status() Status                         { return o.status }
func (o *Order) CreatedAt() time.Time                   { return o.createdAt }
func (o *Order) UpdatedAt() time.Time                   { return o.updatedAt }

func (o *Order) Lines() []Line {
	out := make([]Line, len(o.lines))
	copy(out, o.lines)
	return out
}

func (o *Order) TrackingInfo() *Tracking {
	if o.tracking == nil {
		return nil
	}
	t := *o.tracking
	return &t
}
