package checkout

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStep          = errors.New("operation not allowed in current checkout step")
	ErrSessionSubmitted     = errors.New("checkout session already submitted")
	ErrPaymentMethodMissing = errors.New("payment method is required")
	ErrBillingAddressMissing = errors.New("billing address is required")
)

// Session is the ephemeral state of one checkout wizard run:
// shipping → payment → review → submitted. Each transition is gated on
// the validation of the step being left; a failed gate leaves the step
// unchanged.
type Session struct {
	id              uuid.UUID
	userID          uuid.UUID
	step            Step
	shippingAddress *Address
	billingAddress  *Address
	sameAsShipping  bool
	paymentMethod   PaymentMethod
	createdAt       time.Time
}

func NewSession(userID uuid.UUID, now time.Time) *Session {
	return &Session{
		id:        uuid.New(),
		userID:    userID,
		step:      StepShipping,
		createdAt: now,
	}
}

func ReconstructSession(
	id, userID uuid.UUID,
	step Step,
	shippingAddress, billingAddress *Address,
	sameAsShipping bool,
	paymentMethod PaymentMethod,
	createdAt time.Time,
) *Session {
	return &Session{
		id:              id,
		userID:          userID,
		step:            step,
		shippingAddress: shippingAddress,
		billingAddress:  billingAddress,
		sameAsShipping:  sameAsShipping,
		paymentMethod:   paymentMethod,
		createdAt:       createdAt,
	}
}

// SubmitShipping validates the shipping address and advances to payment.
// Re-entering from the payment or review step is allowed (the customer
// went back to edit); the wizard then resumes at payment.
func (s *Session) SubmitShipping(addr Address) error {
	if s.step.IsTerminal() {
		return ErrSessionSubmitted
	}
	if err := addr.Validate(); err != nil {
		return err
	}
	s.shippingAddress = &addr
	s.step = StepPayment
	return nil
}

// SubmitPayment records the payment choice and advances to review. With
// sameAsShipping the billing address derives from shipping; otherwise the
// provided billing address must validate on its own.
func (s *Session) SubmitPayment(method PaymentMethod, sameAsShipping bool, billing *Address) error {
	if s.step.IsTerminal() {
		return ErrSessionSubmitted
	}
	if s.step == StepShipping {
		return ErrInvalidStep
	}
	if !method.IsValid() {
		return ErrPaymentMethodMissing
	}

	if sameAsShipping {
		derived := *s.shippingAddress
		s.billingAddress = &derived
	} else {
		if billing == nil {
			return ErrBillingAddressMissing
		}
		if err := billing.Validate(); err != nil {
			return err
		}
		b := *billing
		s.billingAddress = &b
	}

	s.paymentMethod = method
	s.sameAsShipping = sameAsShipping
	s.step = StepReview
	return nil
}

// MarkSubmitted consumes the session. Only reachable from review; the
// cart and pricing preconditions are enforced by the checkout usecase,
// which owns order construction.
func (s *Session) MarkSubmitted() error {
	if s.step.IsTerminal() {
		return ErrSessionSubmitted
	}
	if s.step != StepReview {
		return ErrInvalidStep
	}
	s.step = StepSubmitted
	return nil
}

// CanAbandon reports whether the session may still be discarded; a
// submitted session already produced an order.
func (s *Session) CanAbandon() bool {
	return !s.step.IsTerminal()
}

func (s *Session) ID() uuid.UUID               { return s.id }
func (s *Session) UserID() uuid.UUID           { return s.userID }
func (s *Session) Step() Step                  { return s.step }
func (s *Session) SameAsShipping() bool        { return s.sameAsShipping }
func (s *Session) PaymentMethod() PaymentMethod { return s.paymentMethod }
func (s *Session) CreatedAt() time.Time        { return s.createdAt }

func (s *Session) ShippingAddress() *Address {
	if s.shippingAddress == nil {
		return nil
	}
	a := *s.shippingAddress
	return &a
}

func (s *Session) BillingAddress() *Address {
	if s.billingAddress == nil {
		return nil
	}
	a := *s.billingAddress
	return &a
}
