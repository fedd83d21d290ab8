// Package lock serializes work per key, across processes when redis is
// available and within the process otherwise.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blaisecz/cognitive-sync/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

const releaseTimeout = 2 * time.Second

// ErrLocked is returned when another holder has the key.
var ErrLocked = errors.New("lock held by another holder")

// Locker hands out exclusive, non-blocking locks.
type Locker interface {
	// TryLock acquires key or fails with ErrLocked. The returned release
	// function must be called exactly once.
	TryLock(ctx context.Context, key string) (release func(), err error)
}

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisLocker locks with SET NX PX. ttl bounds how long a crashed holder
// can block others. Failed releases are logged to log, which may be nil.
func NewRedisLocker(rdb *goredis.Client, prefix string, ttl time.Duration, log *logger.Logger) Locker {
	if log == nil {
		log = logger.Nop()
	}
	return &redisLocker{rdb: rdb, prefix: prefix, ttl: ttl, log: log}
}

func (l *redisLocker) TryLock(ctx context.Context, key string) (func(), error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	fullKey := l.prefix + key
	ok, err := l.rdb.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", fullKey, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(fullKey, token) })
	}, nil
}

// release drops the key if token still owns it. A failure leaves the key
// in place until its TTL runs out.
func (l *redisLocker) release(fullKey, token string) {
	// The caller's context may already be done.
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	deleted, err := releaseScript.Run(ctx, l.rdb, []string{fullKey}, token).Int64()
	switch {
	case err != nil:
		l.log.Warn("lock release failed, key held until expiry",
			"key", fullKey,
			"ttl", l.ttl.String(),
			"error", err,
		)
	case deleted == 0:
		l.log.Warn("lock expired before release", "key", fullKey, "ttl", l.ttl.String())
	}
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

type localLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker locks within this process only.
func NewLocalLocker() Locker {
	return &localLocker{held: make(map[string]struct{})}
}

func (l *localLocker) TryLock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, ErrLocked
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
