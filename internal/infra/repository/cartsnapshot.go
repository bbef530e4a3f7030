package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/infra"
	"storefront/internal/pkg/money"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

// snapshotLine is the wire shape of one persisted cart line.
type snapshotLine struct {
	ProductID   uuid.UUID   `json:"product_id"`
	VariantKey  string      `json:"variant_key"`
	Quantity    int         `json:"quantity"`
	UnitPrice   money.Money `json:"unit_price"`
	DisplayName string      `json:"display_name"`
	ImageRef    string      `json:"image_ref"`
}

type snapshotPromotion struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

type cartSnapshot struct {
	Lines     []snapshotLine     `json:"lines"`
	Promotion *snapshotPromotion `json:"promotion,omitempty"`
}

// CartSnapshotRepository is the durable cart store. One JSON document
// per user; the TTL is refreshed on every save so active carts never
// expire mid-session.
type CartSnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartSnapshotRepository(client *redis.Client, ttl time.Duration) *CartSnapshotRepository {
	return &CartSnapshotRepository{
		client: client,
		ttl:    ttl,
	}
}

// Load rebuilds the cart from its snapshot. A missing key is an empty
// cart, not an error. Corrupt payloads and malformed entries are dropped
// with a warning rather than failing the request: losing one stale line
// beats locking the customer out of their cart.
func (r *CartSnapshotRepository) Load(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	raw, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return cart.New(), nil
		}
		return nil, infra.WrapRepoErr("failed to load cart snapshot", err)
	}

	var snap cartSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		slog.Warn("discarding corrupt cart snapshot", "user_id", userID, "error", err)
		return cart.New(), nil
	}

	return decodeSnapshot(userID, snap), nil
}

func (r *CartSnapshotRepository) Save(ctx context.Context, userID uuid.UUID, c *cart.Cart) error {
	raw, err := json.Marshal(encodeSnapshot(c))
	if err != nil {
		return infra.WrapRepoErr("failed to encode cart snapshot", err)
	}
	if err := r.client.Set(ctx, cartKey(userID), raw, r.ttl).Err(); err != nil {
		return infra.WrapRepoErr("failed to save cart snapshot", err)
	}
	return nil
}

func (r *CartSnapshotRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return infra.WrapRepoErr("failed to delete cart snapshot", err)
	}
	return nil
}

func cartKey(userID uuid.UUID) string {
	return cartKeyPrefix + userID.String()
}

func encodeSnapshot(c *cart.Cart) cartSnapshot {
	lines := c.Lines()
	snap := cartSnapshot{Lines: make([]snapshotLine, 0, len(lines))}
	for _, l := range lines {
		snap.Lines = append(snap.Lines, snapshotLine{
			ProductID:   l.Identity().ProductID(),
			VariantKey:  l.Identity().VariantKey(),
			Quantity:    l.Quantity(),
			UnitPrice:   l.UnitPrice(),
			DisplayName: l.DisplayName(),
			ImageRef:    l.ImageRef(),
		})
	}
	if p := c.Promotion(); p != nil {
		snap.Promotion = &snapshotPromotion{ID: p.ID(), Code: p.Code()}
	}
	return snap
}

// decodeSnapshot filters entry by entry: a line that fails domain
// validation (nil product, non-positive quantity) is skipped, the rest
// of the cart survives.
func decodeSnapshot(userID uuid.UUID, snap cartSnapshot) *cart.Cart {
	lines := make([]cart.Line, 0, len(snap.Lines))
	for _, sl := range snap.Lines {
		identity, err := cart.NewIdentity(sl.ProductID, sl.VariantKey)
		if err != nil {
			slog.Warn("dropping malformed cart line", "user_id", userID, "error", err)
			continue
		}
		line, err := cart.NewLine(identity, sl.Quantity, cart.PriceInfo{
			UnitPrice:   sl.UnitPrice,
			DisplayName: sl.DisplayName,
			ImageRef:    sl.ImageRef,
		})
		if err != nil {
			slog.Warn("dropping malformed cart line", "user_id", userID, "error", err)
			continue
		}
		lines = append(lines, line)
	}

	var promo *cart.AppliedPromotion
	if snap.Promotion != nil && snap.Promotion.Code != "" {
		p := cart.NewAppliedPromotion(snap.Promotion.ID, snap.Promotion.Code)
		promo = &p
	}

	return cart.Reconstruct(lines, promo)
}
