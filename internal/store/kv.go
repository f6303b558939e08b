package store

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// KV is the durable client-local store: the localStorage analog. Values
// survive restarts and are scoped to one profile.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Keys mirrored by the session and the local cart/wishlist stores.
const (
	KeyCart      = "cart"
	KeyWishlist  = "wishlist"
	KeyUser      = "user"
	KeyToken     = "token"
	KeyUserID    = "userId"
	KeyUserEmail = "userEmail"
)
