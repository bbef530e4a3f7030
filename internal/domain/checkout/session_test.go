//go:build unit

package checkout_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/checkout"
	"storefront/tests/common/builder"
)

func TestNewSession(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now()
	s := checkout.NewSession(userID, now)

	assert.Equal(t, userID, s.UserID())
	assert.Equal(t, checkout.StepShipping, s.Step())
	assert.Nil(t, s.ShippingAddress())
	assert.Nil(t, s.BillingAddress())
	assert.True(t, s.CanAbandon())
}

func TestSessionSubmitShipping(t *testing.T) {
	t.Parallel()

	t.Run("valid address advances to payment", func(t *testing.T) {
		t.Parallel()
		s := builder.NewCheckoutSessionBuilder().BuildDomain()
		addr := builder.NewAddressBuilder().BuildDomain()

		require.NoError(t, s.SubmitShipping(addr))

		assert.Equal(t, checkout.StepPayment, s.Step())
		require.NotNil(t, s.ShippingAddress())
		assert.Equal(t, addr, *s.ShippingAddress())
	})

	t.Run("incomplete address reports every missing field", func(t *testing.T) {
		t.Parallel()
		s := builder.NewCheckoutSessionBuilder().BuildDomain()
		addr := builder.NewAddressBuilder().
			With(func(b *builder.AddressBuilder) {
				b.FullName = ""
				b.PostalCode = "  "
			}).
			BuildDomain()

		err := s.SubmitShipping(addr)

		var fields checkout.FieldErrors
		require.ErrorAs(t, err, &fields)
		assert.Contains(t, fields, "full_name")
		assert.Contains(t, fields, "postal_code")
		assert.Len(t, fields, 2)
		assert.Equal(t, checkout.StepShipping, s.Step(), "failed gate must not advance")
	})

	t.Run("re-entry from review resets wizard to payment", func(t *testing.T) {
		t.Parallel()
		s := builder.NewCheckoutSessionBuilder().AtReview().BuildDomain()
		addr := builder.NewAddressBuilder().
			With(func(b *builder.AddressBuilder) { b.City = "Leeds" }).
			BuildDomain()

		require.NoError(t, s.SubmitShipping(addr))

		assert.Equal(t, checkout.StepPayment, s.Step())
		assert.Equal(t, "Leeds", s.ShippingAddress().City)
	})

	t.Run("submitted session rejects edits", func(t *testing.T) {
		t.Parallel()
		s := builder.NewCheckoutSessionBuilder().
			With(func(b *builder.CheckoutSessionBuilder) {
				b.AtReview()
				b.Step = checkout.StepSubmitted
			}).
			BuildDomain()

		err := s.SubmitShipping(builder.NewAddressBuilder().BuildDomain())
		assert.ErrorIs(t, err, checkout.ErrSessionSubmitted)
	})
}

func TestSessionSubmitPayment(t *testing.T) {
	t.Parallel()

	atPayment := func(t *testing.T) *checkout.Session {
		t.Helper()
		s := builder.NewCheckoutSessionBuilder().BuildDomain()
		require.NoError(t, s.SubmitShipping(builder.NewAddressBuilder().BuildDomain()))
		return s
	}

	t.Run("same as shipping derives billing", func(t *testing.T) {
		t.Parallel()
		s := atPayment(t)

		require.NoError(t, s.SubmitPayment(checkout.PaymentCard, true, nil))

		assert.Equal(t, checkout.StepReview, s.Step())
		assert.Equal(t, checkout.PaymentCard, s.PaymentMethod())
		assert.True(t, s.SameAsShipping())
		require.NotNil(t, s.BillingAddress())
		assert.Equal(t, *s.ShippingAddress(), *s.BillingAddress())
	})

	t.Run("separate billing address is validated", func(t *testing.T) {
		t.Parallel()
		s := atPayment(t)
		billing := builder.NewAddressBuilder().
			With(func(b *builder.AddressBuilder) {
				b.FullName = "Sam Rowe"
				b.Line1 = "4 Mill Lane"
			}).
			BuildDomain()

		require.NoError(t, s.SubmitPayment(checkout.PaymentPaypal, false, &billing))

		assert.False(t, s.SameAsShipping())
		assert.Equal(t, billing, *s.BillingAddress())
	})

	t.Run("separate billing must be present", func(t *testing.T) {
		t.Parallel()
		s := atPayment(t)

		err := s.SubmitPayment(checkout.PaymentCard, false, nil)
		assert.ErrorIs(t, err, checkout.ErrBillingAddressMissing)
		assert.Equal(t, checkout.StepPayment, s.Step())
	})

	t.Run("invalid separate billing leaves step unchanged", func(t *testing.T) {
		t.Parallel()
		s := atPayment(t)
		billing := builder.NewAddressBuilder().
			With(func(b *builder.AddressBuilder) { b.Country = "" }).
			BuildDomain()

		err := s.SubmitPayment(checkout.PaymentCard, false, &billing)

		var fields checkout.FieldErrors
		require.ErrorAs(t, err, &fields)
		assert.Equal(t, checkout.StepPayment, s.Step())
		assert.Nil(t, s.BillingAddress())
	})

	t.Run("unknown payment method rejected", func(t *testing.T) {
		t.Parallel()
		s := atPayment(t)

		err := s.SubmitPayment(checkout.PaymentMethod("barter"), true, nil)
		assert.ErrorIs(t, err, checkout.ErrPaymentMethodMissing)
	})

	t.Run("cannot pay before shipping", func(t *testing.T) {
		t.Parallel()
		s := builder.NewCheckoutSessionBuilder().BuildDomain()

		err := s.SubmitPayment(checkout.PaymentCard, true, nil)
		assert.ErrorIs(t, err, checkout.ErrInvalidStep)
	})

	t.Run("re-entry from review keeps review reachable", func(t *testing.T) {
		t.Parallel()
		s := builder.NewCheckoutSessionBuilder().AtReview().BuildDomain()

		require.NoError(t, s.SubmitPayment(checkout.PaymentCashOnDelivery, true, nil))
		assert.Equal(t, checkout.StepReview, s.Step())
		assert.Equal(t, checkout.PaymentCashOnDelivery, s.PaymentMethod())
	})
}

func TestSessionMarkSubmitted(t *testing.T) {
	t.Parallel()

	t.Run("only review may submit", func(t *testing.T) {
		t.Parallel()
		s := builder.NewCheckoutSessionBuilder().BuildDomain()

		assert.ErrorIs(t, s.MarkSubmitted(), checkout.ErrInvalidStep)
		assert.Equal(t, checkout.StepShipping, s.Step())
	})

	t.Run("submit from review is terminal", func(t *testing.T) {
		t.Parallel()
		s := builder.NewCheckoutSessionBuilder().AtReview().BuildDomain()

		require.NoError(t, s.MarkSubmitted())

		assert.Equal(t, checkout.StepSubmitted, s.Step())
		assert.False(t, s.CanAbandon())
		assert.ErrorIs(t, s.MarkSubmitted(), checkout.ErrSessionSubmitted)
	})
}

func TestAddressValidate(t *testing.T) {
	t.Parallel()

	t.Run("complete address passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, builder.NewAddressBuilder().BuildDomain().Validate())
	})

	t.Run("line2 is optional", func(t *testing.T) {
		t.Parallel()
		addr := builder.NewAddressBuilder().
			With(func(b *builder.AddressBuilder) { b.Line2 = "" }).
			BuildDomain()
		assert.NoError(t, addr.Validate())
	})

	t.Run("field errors sort deterministically", func(t *testing.T) {
		t.Parallel()
		err := checkout.Address{}.Validate()

		var fields checkout.FieldErrors
		require.True(t, errors.As(err, &fields))
		assert.Equal(t, "invalid fields: city, country, full_name, line1, phone, postal_code", err.Error())
	})
}
