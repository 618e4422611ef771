package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only if this holder still owns it, so a
// slow holder cannot release a lock that already expired and was re-acquired
// by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker implements a distributed mutex over redis SET NX with expiry. Losing
// the race is a normal outcome, not an error.
type Locker struct {
	rdb *redis.Client
}

func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{rdb: rdb}
}

type Lock struct {
	rdb   *redis.Client
	key   string
	token string
}

// Acquire attempts to take the named lock for ttl. The second return value is
// false when another holder already has it.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, bool, error) {
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	return &Lock{rdb: l.rdb, key: key, token: token}, true, nil
}

// Release drops the lock if this holder still owns it.
func (lk *Lock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, lk.rdb, []string{lk.key}, lk.token).Err()
}
