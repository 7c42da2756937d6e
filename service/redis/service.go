package redis

import (
	"errors"
	"time"

	"github.com/czConstant/constant-pawn-protocol/base/ctx"
)

// Forever means the key never expires
const Forever = time.Duration(-1)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("redis: key not found")

	// ErrGapTime is returned when no pool is available
	ErrGapTime = errors.New("redis: no pool available")
)

// Service is the redis operation surface used by caches and stores
type Service interface {
	Get(context ctx.Ctx, key string) ([]byte, error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(context ctx.Ctx, ks ...string) (int, error)
	Exists(context ctx.Ctx, key string) (bool, error)
	TTL(context ctx.Ctx, key string) (int, error)
	Incrby(context ctx.Ctx, key string, val int) (int64, error)
	Expire(context ctx.Ctx, key string, ttl time.Duration) error
	Name() string
}
