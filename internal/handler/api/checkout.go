package api

import (
	"net/http"

	"storefront/internal/domain/checkout"
	"storefront/internal/domain/promotion"
	reqdto "storefront/internal/handler/dto/request"
	resdto "storefront/internal/handler/dto/response"
	"storefront/internal/handler/httperr"
	"storefront/internal/handler/middleware"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	checkoutCommands commands.CheckoutCommands
	checkoutQueries  queries.CheckoutQueries
}

func NewCheckoutHandler(checkoutCommands commands.CheckoutCommands, checkoutQueries queries.CheckoutQueries) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutCommands: checkoutCommands,
		checkoutQueries:  checkoutQueries,
	}
}

// @Summary Start checkout
// @Description Begin the checkout wizard for a non-empty cart
// @Tags checkout
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 409 {object} map[string]string
// @Router /checkout [post]
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}

	view, err := h.checkoutCommands.Start(c.Request.Context(), userID)
	if err != nil {
		if errs.Is(err, commands.ErrCartEmpty) {
			httperr.AbortWithError(c, http.StatusConflict, err, "Cart is empty", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to start checkout", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCheckoutView(view))
}

// @Summary Get checkout state
// @Description Get the current wizard step and captured data
// @Tags checkout
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 404 {object} map[string]string
// @Router /checkout [get]
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}

	view, err := h.checkoutQueries.Get(c.Request.Context(), userID)
	if err != nil {
		if errs.Is(err, queries.ErrCheckoutNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "No checkout in progress", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load checkout", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCheckoutView(view))
}

// @Summary Submit shipping step
// @Description Capture the shipping address and advance to payment
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.SubmitShippingRequest true "Shipping address"
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /checkout/shipping [put]
func (h *CheckoutHandler) SubmitShipping(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}

	var req reqdto.SubmitShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	view, err := h.checkoutCommands.SubmitShipping(c.Request.Context(), userID, req.Address.ToDomain())
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCheckoutView(view))
}

// @Summary Submit payment step
// @Description Capture payment method and billing address, advance to review
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.SubmitPaymentRequest true "Payment selection"
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /checkout/payment [put]
func (h *CheckoutHandler) SubmitPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}

	var req reqdto.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	method := checkout.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		httperr.AbortWithError(c, http.StatusBadRequest, nil, "Invalid payment method", nil)
		return
	}

	view, err := h.checkoutCommands.SubmitPayment(c.Request.Context(), userID, method, req.SameAsShipping, req.BillingDomain())
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCheckoutView(view))
}

// @Summary Submit order
// @Description Place the order from the review step
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.SubmitOrderRequest true "Expected total"
// @Success 201 {object} resdto.OrderResponse
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]any
// @Failure 422 {object} map[string]string
// @Router /checkout/submit [post]
func (h *CheckoutHandler) SubmitOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}

	idempotencyKey, err := h.getIdempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}

	var req reqdto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	expectedTotal, err := req.ParseExpectedTotal()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid expected total", nil)
		return
	}

	result, err := h.checkoutCommands.Submit(c.Request.Context(), userID, idempotencyKey, commands.SubmitInput{
		ExpectedTotal: expectedTotal,
	})
	if err != nil {
		h.respondSubmitError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromOrderView(result.Order))
}

// @Summary Abandon checkout
// @Description Discard the in-progress checkout session; the cart survives
// @Tags checkout
// @Produce json
// @Security BearerAuth
// @Success 204
// @Router /checkout [delete]
func (h *CheckoutHandler) AbandonCheckout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}

	if err := h.checkoutCommands.Abandon(c.Request.Context(), userID); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to abandon checkout", nil)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CheckoutHandler) respondCheckoutError(c *gin.Context, err error) {
	var fieldErrs checkout.FieldErrors
	switch {
	case errs.Is(err, commands.ErrCheckoutNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "No checkout in progress", nil)
	case errs.As(err, &fieldErrs):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Address validation failed", fieldErrs)
	case errs.Is(err, checkout.ErrInvalidStep):
		httperr.AbortWithError(c, http.StatusConflict, err, "Step not reachable from current checkout state", nil)
	case errs.Is(err, checkout.ErrSessionSubmitted):
		httperr.AbortWithError(c, http.StatusConflict, err, "Checkout already submitted", nil)
	case errs.Is(err, checkout.ErrBillingAddressMissing):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Billing address required", nil)
	case errs.Is(err, checkout.ErrPaymentMethodMissing):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Payment method required", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Checkout operation failed", nil)
	}
}

func (h *CheckoutHandler) respondSubmitError(c *gin.Context, err error) {
	var priceChanged *commands.PriceChangedError
	switch {
	case errs.As(err, &priceChanged):
		// the fresh pricing rides along so the review step can re-render
		httperr.AbortWithError(c, http.StatusConflict, err,
			"Cart pricing changed since last displayed total",
			resdto.FromPricingView(priceChanged.Pricing))
	case errs.Is(err, commands.ErrCartEmpty):
		httperr.AbortWithError(c, http.StatusConflict, err, "Cart is empty", nil)
	case errs.Is(err, commands.ErrProductUnavailable):
		httperr.AbortWithError(c, http.StatusConflict, err, "A product in the cart is no longer available", nil)
	case errs.Is(err, commands.ErrSubmissionInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Submission is currently being processed", nil)
	case errs.Is(err, commands.ErrDuplicateSubmission):
		httperr.AbortWithError(c, http.StatusConflict, err, "Duplicate submission with different parameters", nil)
	case errs.Is(err, promotion.ErrRedemptionLimitReached):
		httperr.AbortWithError(c, http.StatusConflict, err, "Promotion redemption limit reached", nil)
	case errs.Is(err, commands.ErrPromotionNotFound),
		errs.Is(err, promotion.ErrCodeExpired),
		errs.Is(err, promotion.ErrMinimumNotMet):
		httperr.AbortWithError(c, http.StatusConflict, err, "Applied promotion is no longer valid", nil)
	default:
		h.respondCheckoutError(c, err)
	}
}

func (h *CheckoutHandler) getIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	keyStr := c.GetHeader("Idempotency-Key")
	if keyStr == "" {
		return uuid.Nil, errs.New("idempotency key required")
	}

	key, err := uuid.Parse(keyStr)
	if err != nil {
		return uuid.Nil, errs.New("invalid idempotency key format")
	}

	return key, nil
}
