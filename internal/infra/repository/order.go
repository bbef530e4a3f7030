package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/internal/domain/checkout"
	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/pkg/money"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// orderLineRecord is the JSONB shape of one frozen order line. Amounts
// marshal as fixed-point strings via money.Money.
type orderLineRecord struct {
	ProductID   uuid.UUID   `json:"product_id"`
	VariantKey  string      `json:"variant_key"`
	DisplayName string      `json:"display_name"`
	ImageRef    string      `json:"image_ref,omitempty"`
	UnitPrice   money.Money `json:"unit_price"`
	Quantity    int         `json:"quantity"`
}

// OrderRepository persists submitted orders. Lines and addresses are
// frozen documents, so they live in JSONB; amounts and status are
// columns because listings filter and sum on them.
type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

const createOrderSQL = `
INSERT INTO orders (
	id, user_id, lines, shipping_address, billing_address, payment_method,
	subtotal, discount, shipping_fee, tax, total,
	promotion_id, promotion_code, status, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6,
	$7, $8, $9, $10, $11,
	$12, $13, $14, $15, $16
)
`

// Create inserts the order inside the caller's transaction so that
// order creation and promotion redemption commit together.
func (r *OrderRepository) Create(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	lines, err := json.Marshal(encodeOrderLines(o.Lines()))
	if err != nil {
		return infra.WrapRepoErr("failed to encode order lines", err)
	}
	shipping, err := json.Marshal(o.ShippingAddress())
	if err != nil {
		return infra.WrapRepoErr("failed to encode shipping address", err)
	}
	billing, err := json.Marshal(o.BillingAddress())
	if err != nil {
		return infra.WrapRepoErr("failed to encode billing address", err)
	}

	amounts := o.Amounts()
	_, err = tx.Exec(ctx, createOrderSQL,
		o.ID(),
		o.UserID(),
		lines,
		shipping,
		billing,
		string(o.PaymentMethod()),
		amounts.Subtotal.String(),
		amounts.Discount.String(),
		amounts.ShippingFee.String(),
		amounts.Tax.String(),
		amounts.Total.String(),
		o.PromotionID(),
		o.PromotionCode(),
		string(o.Status()),
		o.CreatedAt(),
		o.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert order", err)
	}
	return nil
}

const findOrderByIDSQL = `
SELECT id, user_id, lines, shipping_address, billing_address, payment_method,
       subtotal::text, discount::text, shipping_fee::text, tax::text, total::text,
       promotion_id, promotion_code, status,
       tracking_carrier, tracking_number, created_at, updated_at
FROM orders
WHERE id = $1
`

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	row, err := r.scanOrderRow(r.db.QueryRow(ctx, findOrderByIDSQL, id))
	if err != nil {
		return nil, err
	}

	lines := make([]order.Line, len(row.lines))
	for i, l := range row.lines {
		lines[i] = order.Line{
			ProductID:   l.ProductID,
			VariantKey:  l.VariantKey,
			DisplayName: l.DisplayName,
			ImageRef:    l.ImageRef,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		}
	}

	return order.ReconstructOrder(
		row.id,
		row.userID,
		lines,
		row.shippingAddress,
		row.billingAddress,
		checkout.PaymentMethod(row.paymentMethod),
		row.amounts,
		row.promotionID,
		row.promotionCode,
		order.Status(row.status),
		row.tracking,
		row.createdAt,
		row.updatedAt,
	), nil
}

const updateOrderStatusSQL = `
UPDATE orders
SET status = $2, tracking_carrier = $3, tracking_number = $4, updated_at = $5
WHERE id = $1 AND status = $6
`

// UpdateStatus persists a transition guarded on the status the order was
// loaded with. Zero rows means another actor moved the order first.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *order.Order, from order.Status) error {
	var carrier, trackingNumber *string
	if t := o.TrackingInfo(); t != nil {
		carrier = &t.Carrier
		trackingNumber = &t.TrackingNumber
	}

	tag, err := r.db.Exec(ctx, updateOrderStatusSQL,
		o.ID(),
		string(o.Status()),
		carrier,
		trackingNumber,
		o.UpdatedAt(),
		string(from),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order status moved concurrently", nil, infra.KindConflict)
	}
	return nil
}

func (r *OrderRepository) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	row, err := r.scanOrderRow(r.db.QueryRow(ctx, findOrderByIDSQL, id))
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, queries.ErrOrderNotFound
		}
		return nil, err
	}
	return row.toView(), nil
}

const listOrdersByUserSQL = `
SELECT id, status, total::text, lines, created_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*queries.OrderListItem, error) {
	rows, err := r.db.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders by user", err)
	}
	defer rows.Close()

	return scanOrderListItems(rows)
}

const listAllOrdersSQL = `
SELECT id, status, total::text, lines, created_at
FROM orders
ORDER BY created_at DESC
LIMIT $1
`

func (r *OrderRepository) ListAll(ctx context.Context, limit int) ([]*queries.OrderListItem, error) {
	rows, err := r.db.Query(ctx, listAllOrdersSQL, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	return scanOrderListItems(rows)
}

type orderRow struct {
	id              uuid.UUID
	userID          uuid.UUID
	lines           []orderLineRecord
	shippingAddress checkout.Address
	billingAddress  checkout.Address
	paymentMethod   string
	amounts         order.Amounts
	promotionID     *uuid.UUID
	promotionCode   *string
	status          string
	tracking        *order.Tracking
	createdAt       time.Time
	updatedAt       time.Time
}

func (r *OrderRepository) scanOrderRow(row pgx.Row) (*orderRow, error) {
	var (
		out            orderRow
		rawLines       []byte
		rawShipping    []byte
		rawBilling     []byte
		subtotal       string
		discount       string
		shippingFee    string
		tax            string
		total          string
		carrier        *string
		trackingNumber *string
	)
	err := row.Scan(
		&out.id,
		&out.userID,
		&rawLines,
		&rawShipping,
		&rawBilling,
		&out.paymentMethod,
		&subtotal,
		&discount,
		&shippingFee,
		&tax,
		&total,
		&out.promotionID,
		&out.promotionCode,
		&out.status,
		&carrier,
		&trackingNumber,
		&out.createdAt,
		&out.updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan order row", err)
	}

	if err := json.Unmarshal(rawLines, &out.lines); err != nil {
		return nil, infra.WrapRepoErr("failed to decode order lines", err)
	}
	if err := json.Unmarshal(rawShipping, &out.shippingAddress); err != nil {
		return nil, infra.WrapRepoErr("failed to decode shipping address", err)
	}
	if err := json.Unmarshal(rawBilling, &out.billingAddress); err != nil {
		return nil, infra.WrapRepoErr("failed to decode billing address", err)
	}

	out.amounts, err = parseAmounts(subtotal, discount, shippingFee, tax, total)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to parse order amounts", err)
	}

	if carrier != nil && trackingNumber != nil {
		out.tracking = &order.Tracking{Carrier: *carrier, TrackingNumber: *trackingNumber}
	}

	return &out, nil
}

func (row *orderRow) toView() *queries.OrderView {
	lines := make([]queries.OrderLineView, len(row.lines))
	for i, l := range row.lines {
		lines[i] = queries.OrderLineView{
			ProductID:   l.ProductID,
			VariantKey:  l.VariantKey,
			DisplayName: l.DisplayName,
			ImageRef:    l.ImageRef,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			LineTotal:   l.UnitPrice.MulInt(int64(l.Quantity)),
		}
	}

	view := &queries.OrderView{
		ID:              row.id,
		UserID:          row.userID,
		Lines:           lines,
		ShippingAddress: row.shippingAddress,
		BillingAddress:  row.billingAddress,
		PaymentMethod:   row.paymentMethod,
		Pricing: queries.PricingView{
			Subtotal:    row.amounts.Subtotal,
			Discount:    row.amounts.Discount,
			ShippingFee: row.amounts.ShippingFee,
			Tax:         row.amounts.Tax,
			Total:       row.amounts.Total,
		},
		PromotionCode: row.promotionCode,
		Status:        row.status,
		CreatedAt:     row.createdAt,
		UpdatedAt:     row.updatedAt,
	}
	if row.tracking != nil {
		view.Tracking = &queries.TrackingView{
			Carrier:        row.tracking.Carrier,
			TrackingNumber: row.tracking.TrackingNumber,
		}
	}
	return view
}

func scanOrderListItems(rows pgx.Rows) ([]*queries.OrderListItem, error) {
	items := []*queries.OrderListItem{}
	for rows.Next() {
		var (
			item     queries.OrderListItem
			rawTotal string
			rawLines []byte
		)
		if err := rows.Scan(&item.ID, &item.Status, &rawTotal, &rawLines, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order list row", err)
		}

		total, err := money.FromString(rawTotal)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to parse order total", err)
		}
		item.Total = total

		var lines []orderLineRecord
		if err := json.Unmarshal(rawLines, &lines); err != nil {
			return nil, infra.WrapRepoErr("failed to decode order lines", err)
		}
		for _, l := range lines {
			item.ItemCount += l.Quantity
		}

		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order list rows", err)
	}
	return items, nil
}

func encodeOrderLines(lines []order.Line) []orderLineRecord {
	out := make([]orderLineRecord, len(lines))
	for i, l := range lines {
		out[i] = orderLineRecord{
			ProductID:   l.ProductID,
			VariantKey:  l.VariantKey,
			DisplayName: l.DisplayName,
			ImageRef:    l.ImageRef,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		}
	}
	return out
}

func parseAmounts(subtotal, discount, shippingFee, tax, total string) (order.Amounts, error) {
	var (
		a   order.Amounts
		err error
	)
	if a.Subtotal, err = money.FromString(subtotal); err != nil {
		return order.Amounts{}, err
	}
	if a.Discount, err = money.FromString(discount); err != nil {
		return order.Amounts{}, err
	}
	if a.ShippingFee, err = money.FromString(shippingFee); err != nil {
		return order.Amounts{}, err
	}
	if a.Tax, err = money.FromString(tax); err != nil {
		return order.Amounts{}, err
	}
	if a.Total, err = money.FromString(total); err != nil {
		return order.Amounts{}, err
	}
	return a, nil
}
