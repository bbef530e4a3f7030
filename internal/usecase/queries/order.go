package queries

import (
	"context"

	"storefront/internal/domain/identity"
	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errs.New("order not found")

// OrderViewRepo is the read store for persisted orders.
type OrderViewRepo interface {
	FindViewByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*OrderListItem, error)
	ListAll(ctx context.Context, limit int) ([]*OrderListItem, error)
}

type OrderQueries interface {
	// GetByID enforces ownership: a customer only sees their own orders,
	// back-office roles see all. A foreign order reads as not found.
	GetByID(ctx context.Context, actorID uuid.UUID, role identity.Role, id uuid.UUID) (*OrderView, error)
	// GetByIDSystem bypasses ownership, for internal read-after-write.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*OrderListItem, error)
	ListAll(ctx context.Context, limit int) ([]*OrderListItem, error)
}

type orderQueriesImpl struct {
	repo OrderViewRepo
}

func NewOrderQueries(repo OrderViewRepo) OrderQueries {
	return &orderQueriesImpl{repo: repo}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, actorID uuid.UUID, role identity.Role, id uuid.UUID) (*OrderView, error) {
	view, err := q.repo.FindViewByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !role.IsBackoffice() && view.UserID != actorID {
		return nil, ErrOrderNotFound
	}
	return view, nil
}

func (q *orderQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	return q.repo.FindViewByID(ctx, id)
}

func (q *orderQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*OrderListItem, error) {
	return q.repo.ListByUser(ctx, userID)
}

func (q *orderQueriesImpl) ListAll(ctx context.Context, limit int) ([]*OrderListItem, error) {
	if limit <= 0 {
		limit = 50
	}
	return q.repo.ListAll(ctx, limit)
}
