package repository

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/infra"
	"storefront/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix = "idem:"
	idempotencyTTL       = 24 * time.Hour
)

// IdempotencyRepository claims submission keys atomically via SETNX.
// Records expire after a day; a replayed key past that window is treated
// as a fresh submission, which is safe because the cart it would
// resubmit is gone.
type IdempotencyRepository struct {
	client *redis.Client
}

func NewIdempotencyRepository(client *redis.Client) *IdempotencyRepository {
	return &IdempotencyRepository{client: client}
}

func (r *IdempotencyRepository) Begin(ctx context.Context, key, userID uuid.UUID, requestHash string) (*commands.IdempotencyRecord, bool, error) {
	rec := commands.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		RequestHash: requestHash,
		Status:      commands.IdempotencyProcessing,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, false, infra.WrapRepoErr("failed to encode idempotency record", err)
	}

	inserted, err := r.client.SetNX(ctx, idemKey(key, userID), raw, idempotencyTTL).Result()
	if err != nil {
		return nil, false, infra.WrapRepoErr("failed to claim idempotency key", err)
	}
	if inserted {
		return &rec, true, nil
	}

	existing, err := r.get(ctx, key, userID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *IdempotencyRepository) Complete(ctx context.Context, key, userID uuid.UUID, orderID uuid.UUID) error {
	rec, err := r.get(ctx, key, userID)
	if err != nil {
		return err
	}

	rec.Status = commands.IdempotencyCompleted
	rec.OrderID = &orderID

	raw, err := json.Marshal(rec)
	if err != nil {
		return infra.WrapRepoErr("failed to encode idempotency record", err)
	}
	// KeepTTL: completion must not extend the replay window.
	if err := r.client.Set(ctx, idemKey(key, userID), raw, redis.KeepTTL).Err(); err != nil {
		return infra.WrapRepoErr("failed to complete idempotency record", err)
	}
	return nil
}

// Delete releases an aborted claim. Deleting an absent key is a no-op.
func (r *IdempotencyRepository) Delete(ctx context.Context, key, userID uuid.UUID) error {
	if err := r.client.Del(ctx, idemKey(key, userID)).Err(); err != nil {
		return infra.WrapRepoErr("failed to delete idempotency record", err)
	}
	return nil
}

func (r *IdempotencyRepository) get(ctx context.Context, key, userID uuid.UUID) (*commands.IdempotencyRecord, error) {
	raw, err := r.client.Get(ctx, idemKey(key, userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, infra.WrapRepoErr("idempotency record not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load idempotency record", err)
	}

	var rec commands.IdempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, infra.WrapRepoErr("failed to decode idempotency record", err)
	}
	return &rec, nil
}

func idemKey(key, userID uuid.UUID) string {
	return idempotencyKeyPrefix + userID.String() + ":" + key.String()
}
