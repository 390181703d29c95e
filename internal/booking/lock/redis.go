package lock

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-seating/internal/logger"
)

const keyPrefix = "seat_lock:"

// unlockScript deletes the key only while it still holds the owner token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis implements Locker with SETNX keys that expire after TTL, so a
// crashed writer cannot hold a seat forever.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log *logger.Logger) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{Client: client, TTL: ttl, Logger: log}
}

func seatKey(seat int) string {
	return keyPrefix + strconv.Itoa(seat)
}

// LockSeat locks a single seat
func (r *Redis) LockSeat(ctx context.Context, seat int, owner string) (bool, error) {
	ok, err := r.Client.SetNX(ctx, seatKey(seat), owner, r.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("lock seat %d: %w", seat, err)
	}
	return ok, nil
}

// UnlockSeat unlocks a seat if owner still holds it
func (r *Redis) UnlockSeat(ctx context.Context, seat int, owner string) error {
	deleted, err := unlockScript.Run(ctx, r.Client, []string{seatKey(seat)}, owner).Int()
	if err != nil {
		return fmt.Errorf("unlock seat %d: %w", seat, err)
	}
	if deleted == 0 && r.Logger != nil {
		r.Logger.Debug("LOCK", fmt.Sprintf("Seat %d was not held by %s on unlock", seat, owner))
	}
	return nil
}

// IsLocked checks if a seat is locked without locking it
func (r *Redis) IsLocked(ctx context.Context, seat int) (bool, error) {
	_, err := r.Client.Get(ctx, seatKey(seat)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Ping reports whether the Redis server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}
