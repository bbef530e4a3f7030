//go:build unit

package api_test

import (
	"net/http"
	stdhttptest "net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"storefront/internal/domain/checkout"
	"storefront/internal/domain/identity"
	"storefront/internal/handler/api"
	resdto "storefront/internal/handler/dto/response"
	"storefront/internal/pkg/money"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"
	"storefront/tests/common/builder"
	"storefront/tests/common/httptest"
	"storefront/tests/common/testutil"
	commandsmock "storefront/tests/mock/commands"
	queriesmock "storefront/tests/mock/queries"
)

type CheckoutHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCheckoutCommands
	mockQueries  *queriesmock.MockCheckoutQueries
	handler      *api.CheckoutHandler
	userID       uuid.UUID
}

func (s *CheckoutHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCheckoutCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockCheckoutQueries(s.mockCtrl)
	s.handler = api.NewCheckoutHandler(s.mockCommands, s.mockQueries)
	s.userID = uuid.New()

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", s.userID)
		c.Set("user_role", identity.RoleCustomer)
		c.Next()
	}

	s.router.POST("/checkout", authMiddleware, s.handler.StartCheckout)
	s.router.GET("/checkout", authMiddleware, s.handler.GetCheckout)
	s.router.DELETE("/checkout", authMiddleware, s.handler.AbandonCheckout)
	s.router.PUT("/checkout/shipping", authMiddleware, s.handler.SubmitShipping)
	s.router.PUT("/checkout/payment", authMiddleware, s.handler.SubmitPayment)
	s.router.POST("/checkout/submit", authMiddleware, s.handler.SubmitOrder)
}

func (s *CheckoutHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCheckoutHandlerSuite(t *testing.T) {
	suite.Run(t, new(CheckoutHandlerTestSuite))
}

func (s *CheckoutHandlerTestSuite) performSubmit(body any, idempotencyKey string) *stdhttptest.ResponseRecorder {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	return httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/checkout/submit", body, "bearer-token", headers)
}

func checkoutView(step checkout.Step) *queries.CheckoutView {
	return &queries.CheckoutView{
		SessionID: uuid.New(),
		Step:      string(step),
	}
}

// ================================================================================
// TestStartCheckout
// ================================================================================

func (s *CheckoutHandlerTestSuite) TestStartCheckout() {
	url := "/checkout"

	s.Run("success: wizard opens at the shipping step", func() {
		s.mockCommands.EXPECT().Start(gomock.Any(), s.userID).
			Return(checkoutView(checkout.StepShipping), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")

		var body resdto.CheckoutResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("shipping", body.Step)
	})

	s.Run("error: 409 when the cart is empty", func() {
		s.mockCommands.EXPECT().Start(gomock.Any(), s.userID).
			Return(nil, commands.ErrCartEmpty).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Cart is empty")
	})

	s.Run("error: 401 without token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})
}

// ================================================================================
// TestGetCheckout
// ================================================================================

func (s *CheckoutHandlerTestSuite) TestGetCheckout() {
	s.Run("success: returns the current step", func() {
		s.mockQueries.EXPECT().Get(gomock.Any(), s.userID).
			Return(checkoutView(checkout.StepPayment), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/checkout", nil, "bearer-token")

		var body resdto.CheckoutResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("payment", body.Step)
	})

	s.Run("error: 404 with nothing in progress", func() {
		s.mockQueries.EXPECT().Get(gomock.Any(), s.userID).
			Return(nil, queries.ErrCheckoutNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/checkout", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "No checkout in progress")
	})
}

// ================================================================================
// TestSubmitShipping
// ================================================================================

func (s *CheckoutHandlerTestSuite) TestSubmitShipping() {
	url := "/checkout/shipping"

	ab := builder.NewAddressBuilder()
	reqBody := map[string]any{"address": ab.BuildRequestDTO()}

	s.Run("success: advances to payment", func() {
		addr := ab.BuildDomain()
		view := checkoutView(checkout.StepPayment)
		view.ShippingAddress = &addr

		s.mockCommands.EXPECT().SubmitShipping(gomock.Any(), s.userID, addr).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody, "bearer-token")

		var body resdto.CheckoutResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("payment", body.Step)
		s.Require().NotNil(body.ShippingAddress)
		s.Equal("Brighton", body.ShippingAddress.City)
	})

	s.Run("error: 400 when the address envelope is missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: 422 with per-field validation detail", func() {
		fieldErrs := checkout.FieldErrors{"postal_code": "required"}
		s.mockCommands.EXPECT().SubmitShipping(gomock.Any(), s.userID, gomock.Any()).
			Return(nil, fieldErrs).Times(1)

		// binding: "required" only rejects absent fields; blank strings
		// reach the domain validator
		blankPostal := testutil.DtoMap(s.T(), reqBody, func(m map[string]any) {
			addr := m["address"].(map[string]any)
			addr["postal_code"] = " "
		})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, blankPostal, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "Address validation failed")

		var detail map[string]string
		httptest.DecodeErrorDetail(s.T(), rec, &detail)
		s.Equal("required", detail["postal_code"])
	})

	s.Run("error: 404 when no session exists", func() {
		s.mockCommands.EXPECT().SubmitShipping(gomock.Any(), s.userID, gomock.Any()).
			Return(nil, commands.ErrCheckoutNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "No checkout in progress")
	})
}

// ================================================================================
// TestSubmitPayment
// ================================================================================

func (s *CheckoutHandlerTestSuite) TestSubmitPayment() {
	url := "/checkout/payment"

	s.Run("success: same-as-shipping advances to review", func() {
		view := checkoutView(checkout.StepReview)
		view.SameAsShipping = true
		view.PaymentMethod = string(checkout.PaymentCard)

		s.mockCommands.EXPECT().
			SubmitPayment(gomock.Any(), s.userID, checkout.PaymentCard, true, gomock.Nil()).
			Return(view, nil).Times(1)

		reqBody := map[string]any{"payment_method": "card", "same_as_shipping": true}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody, "bearer-token")

		var body resdto.CheckoutResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("review", body.Step)
		s.True(body.SameAsShipping)
	})

	s.Run("success: separate billing address is passed through", func() {
		ab := builder.NewAddressBuilder().With(func(b *builder.AddressBuilder) {
			b.City = "Leeds"
		})
		billing := ab.BuildDomain()
		view := checkoutView(checkout.StepReview)
		view.BillingAddress = &billing

		s.mockCommands.EXPECT().
			SubmitPayment(gomock.Any(), s.userID, checkout.PaymentCard, false, &billing).
			Return(view, nil).Times(1)

		reqBody := map[string]any{
			"payment_method":  "card",
			"billing_address": ab.BuildRequestDTO(),
		}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody, "bearer-token")

		var body resdto.CheckoutResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().NotNil(body.BillingAddress)
		s.Equal("Leeds", body.BillingAddress.City)
	})

	s.Run("error: 400 on an unsupported payment method", func() {
		reqBody := map[string]any{"payment_method": "barter", "same_as_shipping": true}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid payment method")
	})

	s.Run("error: 409 when payment is not reachable yet", func() {
		s.mockCommands.EXPECT().
			SubmitPayment(gomock.Any(), s.userID, checkout.PaymentCard, true, gomock.Nil()).
			Return(nil, checkout.ErrInvalidStep).Times(1)

		reqBody := map[string]any{"payment_method": "card", "same_as_shipping": true}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Step not reachable")
	})
}

// ================================================================================
// TestSubmitOrder
// ================================================================================

func (s *CheckoutHandlerTestSuite) TestSubmitOrder() {
	reqBody := map[string]any{"expected_total": "70.00"}
	expectedTotal, _ := money.FromString("70.00")

	s.Run("success: fresh submission returns 201", func() {
		key := uuid.New()
		view := builder.NewOrderBuilder().BuildView()
		s.mockCommands.EXPECT().
			Submit(gomock.Any(), s.userID, key, commands.SubmitInput{ExpectedTotal: expectedTotal}).
			Return(&commands.SubmitResult{Order: view}, nil).Times(1)

		rec := s.performSubmit(reqBody, key.String())

		var body resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(view.ID, body.ID)
		s.Equal("pending", body.Status)
	})

	s.Run("success: replayed submission returns 200 with the same order", func() {
		key := uuid.New()
		view := builder.NewOrderBuilder().BuildView()
		s.mockCommands.EXPECT().
			Submit(gomock.Any(), s.userID, key, gomock.Any()).
			Return(&commands.SubmitResult{Order: view, IsReplayed: true}, nil).Times(1)

		rec := s.performSubmit(reqBody, key.String())

		var body resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.ID, body.ID)
	})

	s.Run("error: 400 without an Idempotency-Key header", func() {
		rec := s.performSubmit(reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "idempotency key required")
	})

	s.Run("error: 400 on a malformed key", func() {
		rec := s.performSubmit(reqBody, "not-a-uuid")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "invalid idempotency key format")
	})

	s.Run("error: 400 on an unparsable expected total", func() {
		rec := s.performSubmit(map[string]any{"expected_total": "seventy"}, uuid.NewString())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid expected total")
	})

	s.Run("error: 409 with fresh pricing when the total drifted", func() {
		key := uuid.New()
		freshTotal, _ := money.FromString("64.00")
		s.mockCommands.EXPECT().
			Submit(gomock.Any(), s.userID, key, gomock.Any()).
			Return(nil, &commands.PriceChangedError{Pricing: queries.PricingView{
				Subtotal:    expectedTotal,
				ShippingFee: money.Zero,
				Tax:         money.Zero,
				Discount:    money.Zero,
				Total:       freshTotal,
			}}).Times(1)

		rec := s.performSubmit(reqBody, key.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "pricing changed")

		var detail resdto.PricingResponse
		httptest.DecodeErrorDetail(s.T(), rec, &detail)
		s.Equal("64.00", detail.Total.String())
	})

	s.Run("error: 409 when the same key is mid-flight", func() {
		key := uuid.New()
		s.mockCommands.EXPECT().
			Submit(gomock.Any(), s.userID, key, gomock.Any()).
			Return(nil, commands.ErrSubmissionInProgress).Times(1)

		rec := s.performSubmit(reqBody, key.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "currently being processed")
	})

	s.Run("error: 409 when the key is reused with different parameters", func() {
		key := uuid.New()
		s.mockCommands.EXPECT().
			Submit(gomock.Any(), s.userID, key, gomock.Any()).
			Return(nil, commands.ErrDuplicateSubmission).Times(1)

		rec := s.performSubmit(reqBody, key.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Duplicate submission")
	})
}

// ================================================================================
// TestAbandonCheckout
// ================================================================================

func (s *CheckoutHandlerTestSuite) TestAbandonCheckout() {
	s.Run("success: returns 204 and keeps the cart", func() {
		s.mockCommands.EXPECT().Abandon(gomock.Any(), s.userID).Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/checkout", nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
	})
}
