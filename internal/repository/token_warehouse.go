package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// TokenWarehouse records the single currently-valid refresh token per
// user in Redis, keyed by user id. Overwriting the entry supersedes
// any previously issued refresh token, which makes the warehouse the
// sole mechanism for refresh revocation. Access tokens already issued
// stay valid until their own expiry.
type TokenWarehouse struct {
	rdb    *redis.Client
	prefix string
}

// ErrWarehouseUnavailable is returned when no Redis connection was
// established at startup. Login treats it as best-effort; refresh is
// denied.
var ErrWarehouseUnavailable = errors.New("token warehouse unavailable")

func NewTokenWarehouse(rdb *redis.Client) *TokenWarehouse {
	return &TokenWarehouse{rdb: rdb, prefix: "refresh:"}
}

// Record stores the refresh token for a user, replacing any prior
// entry. The SET is a single atomic key write; last writer wins.
func (w *TokenWarehouse) Record(ctx context.Context, userID, token string) error {
	if w.rdb == nil {
		return ErrWarehouseUnavailable
	}
	return w.rdb.Set(ctx, w.prefix+userID, token, 0).Err()
}

// Exists reports whether any refresh token is recorded for the user.
func (w *TokenWarehouse) Exists(ctx context.Context, userID string) (bool, error) {
	if w.rdb == nil {
		return false, ErrWarehouseUnavailable
	}
	n, err := w.rdb.Exists(ctx, w.prefix+userID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Fresh reports whether the presented token is the one currently
// recorded for the user. A token superseded by a later login or
// refresh compares unequal and is rejected even though its own
// signature and expiry are still valid.
func (w *TokenWarehouse) Fresh(ctx context.Context, userID, token string) (bool, error) {
	if w.rdb == nil {
		return false, ErrWarehouseUnavailable
	}
	stored, err := w.rdb.Get(ctx, w.prefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return stored == token, nil
}

// Revoke drops the recorded refresh token for a user, ending their
// refresh capability. Used when an account is deleted.
func (w *TokenWarehouse) Revoke(ctx context.Context, userID string) error {
	if w.rdb == nil {
		return ErrWarehouseUnavailable
	}
	return w.rdb.Del(ctx, w.prefix+userID).Err()
}
