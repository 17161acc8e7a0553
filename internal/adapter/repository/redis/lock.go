package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotHeld is returned by Release when the lease expired or was
// taken over by another holder.
var ErrLockNotHeld = errors.New("lock not held")

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a lease on a single Redis key. Each Lock carries its own owner
// token, so replicas sharing the key exclude each other.
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// NewLock creates a lease on name.
func NewLock(client *redis.Client, name string) *Lock {
	return &Lock{
		client: client,
		key:    "lock:" + name,
		token:  uuid.NewString(),
	}
}

// Token identifies this holder.
func (l *Lock) Token() string {
	return l.token
}

// Acquire takes the lease with SET NX PX. It reports false when another
// holder has it.
func (l *Lock) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.token, ttl).Result()
}

// Release gives the lease up if this holder still owns it.
func (l *Lock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}
