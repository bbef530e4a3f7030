package checkout

// Step is the checkout wizard position. Submitted is terminal; a session
// that reaches it is consumed and never reused. Abandonment is not a
// step: the session is simply discarded from any non-terminal position.
type Step string

const (
	StepShipping  Step = "shipping"
	StepPayment   Step = "payment"
	StepReview    Step = "review"
	StepSubmitted Step = "submitted"
)

func (s Step) String() string {
	return string(s)
}

func (s Step) IsValid() bool {
	switch s {
	case StepShipping, StepPayment, StepReview, StepSubmitted:
		return true
	default:
		return false
	}
}

func (s Step) IsTerminal() bool {
	return s == StepSubmitted
}

// PaymentMethod is the closed set of payment choices. Gateway protocol
// details live outside this service.
type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentPaypal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (p PaymentMethod) String() string {
	return string(p)
}

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCard, PaymentPaypal, PaymentCashOnDelivery:
		return true
	default:
		return false
	}
}
