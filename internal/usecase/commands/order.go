package commands

import (
	"context"

	"storefront/internal/domain/identity"
	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errs.New("order not found")
	ErrOrderConflict = errs.New("order status changed concurrently")
	ErrInvalidStatus = errs.New("invalid order status")
)

type TransitionInput struct {
	To       order.Status
	Tracking *order.Tracking
}

type OrderCommands interface {
	// Cancel is the customer-facing cancellation request; ownership is
	// enforced here, the pending-only rule in the domain.
	Cancel(ctx context.Context, orderID, actorID uuid.UUID, role identity.Role) (*queries.OrderView, error)
	// Transition is the back-office move (confirm/ship/deliver/cancel).
	Transition(ctx context.Context, orderID uuid.UUID, input TransitionInput, role identity.Role) (*queries.OrderView, error)
}

type orderUseCaseImpl struct {
	orders       OrderRepository
	orderQueries queries.OrderQueries
	clock        clock.Clock
}

func NewOrderUseCase(orders OrderRepository, orderQueries queries.OrderQueries, clock clock.Clock) OrderCommands {
	return &orderUseCaseImpl{
		orders:       orders,
		orderQueries: orderQueries,
		clock:        clock,
	}
}

func (u *orderUseCaseImpl) Cancel(ctx context.Context, orderID, actorID uuid.UUID, role identity.Role) (*queries.OrderView, error) {
	o, err := u.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// A foreign order reads as not found rather than forbidden.
	if !role.IsBackoffice() && o.UserID() != actorID {
		return nil, ErrOrderNotFound
	}

	return u.applyTransition(ctx, o, order.StatusCancelled, role, nil)
}

func (u *orderUseCaseImpl) Transition(ctx context.Context, orderID uuid.UUID, input TransitionInput, role identity.Role) (*queries.OrderView, error) {
	if !input.To.IsValid() {
		return nil, ErrInvalidStatus
	}

	o, err := u.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return u.applyTransition(ctx, o, input.To, role, input.Tracking)
}

func (u *orderUseCaseImpl) findOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	o, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return o, nil
}

func (u *orderUseCaseImpl) applyTransition(ctx context.Context, o *order.Order, to order.Status, role identity.Role, tracking *order.Tracking) (*queries.OrderView, error) {
	from := o.Status()
	if err := o.Transition(to, role, u.clock.Now()); err != nil {
		return nil, err
	}
	if to == order.StatusShipped && tracking != nil {
		o.AttachTracking(*tracking, u.clock.Now())
	}

	if err := u.orders.UpdateStatus(ctx, o, from); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, ErrOrderConflict
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return u.orderQueries.GetByIDSystem(ctx, o.ID())
}
